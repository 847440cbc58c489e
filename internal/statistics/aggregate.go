package statistics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"estoque/internal/core"
	"estoque/internal/format"
)

// Aggregation constants.
const (
	// PriceTrendThreshold is the first-to-last price change, in percent,
	// above which a trend is reported as alta or baixa.
	PriceTrendThreshold = 5.0
	// ExpiringSoonDays is how far ahead an expiration date counts as soon.
	ExpiringSoonDays = 7
	// DashboardWindowDays is the transaction window of the dashboard snapshot.
	DashboardWindowDays = 30
)

const dayLayout = "2006-01-02"

// windowStart returns the first instant included in a window of days ending at now.
func windowStart(now time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
}

// InWindow keeps the transactions that happened within days of now.
func InWindow(txs []core.Transaction, now time.Time, days int) []core.Transaction {
	start := windowStart(now, days)
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		w := tx.When().Time
		if !w.Before(start) && !w.After(now) {
			out = append(out, tx)
		}
	}
	return out
}

func itemKey(tx core.Transaction) int64 {
	return tx.ItemID
}

// Summarize aggregates transactions already restricted to a window.
func Summarize(txs []core.Transaction) core.TransactionSummary {
	var s core.TransactionSummary
	items := make(map[int64]struct{})
	var total float64
	for _, tx := range txs {
		s.TotalTransactions++
		v := tx.Total()
		total += v
		if tx.Type.IsInbound() {
			s.TotalEntradas++
			s.ValorTotalEntradas += v
		} else {
			s.TotalSaidas++
			s.ValorTotalSaidas += v
		}
		items[itemKey(tx)] = struct{}{}
	}
	s.SaldoPeriodo = s.ValorTotalEntradas - s.ValorTotalSaidas
	if s.TotalTransactions > 0 {
		s.ValorMedioTransacao = total / float64(s.TotalTransactions)
	}
	s.ItemsDistintos = len(items)
	return s
}

// DailySeries returns one zero-filled point per day of the window, ascending.
func DailySeries(txs []core.Transaction, now time.Time, days int) []core.DailyTransaction {
	start := windowStart(now, days)
	if days < 1 {
		days = 1
	}
	out := make([]core.DailyTransaction, days)
	index := make(map[string]int, days)
	for i := range out {
		d := start.AddDate(0, 0, i).Format(dayLayout)
		out[i].Date = d
		index[d] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.When().In(now.Location()).Format(dayLayout)]
		if !ok {
			continue
		}
		p := &out[i]
		p.Total++
		if tx.Type.IsInbound() {
			p.Entrada += tx.Quantity
			p.ValorEntrada += tx.Total()
		} else {
			p.Saida += tx.Quantity
			p.ValorSaida += tx.Total()
		}
	}
	return out
}

// MostTransacted ranks items by moved quantity, largest first.
func MostTransacted(txs []core.Transaction, limit int) []core.MostTransactedItem {
	byItem := make(map[int64]*core.MostTransactedItem)
	var order []int64
	for _, tx := range txs {
		k := itemKey(tx)
		it, ok := byItem[k]
		if !ok {
			it = &core.MostTransactedItem{ItemID: tx.ItemID, ItemName: tx.ItemName}
			byItem[k] = it
			order = append(order, k)
		}
		it.TotalQuantity += tx.Quantity
		it.TotalTransactions++
		it.ValorTotal += tx.Total()
		if tx.Type.IsInbound() {
			it.TotalEntradas += tx.Quantity
		} else {
			it.TotalSaidas += tx.Quantity
		}
	}

	out := make([]core.MostTransactedItem, 0, len(order))
	for _, k := range order {
		out = append(out, *byItem[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalQuantity != out[j].TotalQuantity {
			return out[i].TotalQuantity > out[j].TotalQuantity
		}
		return out[i].ItemName < out[j].ItemName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ConsumptionRates estimates how long current stock lasts at the outbound
// rate of the window. Items without outbound movement are left out. Results
// are ordered by days to depletion, soonest first.
func ConsumptionRates(items []core.Item, txs []core.Transaction, days int) []core.ConsumptionRate {
	if days < 1 {
		days = 1
	}
	stock := make(map[int64]core.Item, len(items))
	for _, it := range items {
		stock[it.ID] = it
	}

	consumed := make(map[int64]*core.ConsumptionRate)
	var order []int64
	for _, tx := range txs {
		if tx.Type.IsInbound() {
			continue
		}
		k := itemKey(tx)
		c, ok := consumed[k]
		if !ok {
			c = &core.ConsumptionRate{ItemID: tx.ItemID, ItemName: tx.ItemName}
			if it, ok := stock[tx.ItemID]; ok {
				c.EstoqueAtual = it.Quantity
				if c.ItemName == "" {
					c.ItemName = it.Name
				}
			}
			consumed[k] = c
			order = append(order, k)
		}
		c.TotalConsumido += tx.Quantity
	}

	out := make([]core.ConsumptionRate, 0, len(order))
	for _, k := range order {
		c := consumed[k]
		c.TaxaDiaria = c.TotalConsumido / float64(days)
		if c.TaxaDiaria > 0 {
			d := roundTo(c.EstoqueAtual/c.TaxaDiaria, 1)
			c.DiasParaEsgotamento = &d
		}
		c.Status = core.StatusForDays(c.DiasParaEsgotamento)
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DiasParaEsgotamento, out[j].DiasParaEsgotamento
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return out
}

// PriceAnalyses summarises purchase prices per item, largest variation first.
func PriceAnalyses(txs []core.Transaction) []core.PriceAnalysis {
	type acc struct {
		core.PriceAnalysis
		sum         float64
		first, last core.Transaction
	}
	byItem := make(map[int64]*acc)
	var order []int64
	for _, tx := range txs {
		if !tx.Type.IsInbound() {
			continue
		}
		k := itemKey(tx)
		a, ok := byItem[k]
		if !ok {
			a = &acc{first: tx, last: tx}
			a.ItemID, a.ItemName = tx.ItemID, tx.ItemName
			a.PrecoMinimo, a.PrecoMaximo = tx.Price, tx.Price
			byItem[k] = a
			order = append(order, k)
		}
		a.TotalTransacoes++
		a.sum += tx.Price
		a.PrecoMinimo = math.Min(a.PrecoMinimo, tx.Price)
		a.PrecoMaximo = math.Max(a.PrecoMaximo, tx.Price)
		if tx.When().Before(a.first.When().Time) {
			a.first = tx
		}
		if !tx.When().Before(a.last.When().Time) {
			a.last = tx
		}
	}

	out := make([]core.PriceAnalysis, 0, len(order))
	for _, k := range order {
		a := byItem[k]
		p := a.PriceAnalysis
		p.PrecoMedio = roundTo(a.sum/float64(a.TotalTransacoes), 2)
		if p.PrecoMinimo > 0 {
			p.VariacaoPercentual = roundTo((p.PrecoMaximo-p.PrecoMinimo)/p.PrecoMinimo*100, 2)
		}
		p.Tendencia = priceTrend(a.first.Price, a.last.Price)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VariacaoPercentual > out[j].VariacaoPercentual
	})
	return out
}

func priceTrend(first, last float64) core.PriceTrend {
	if first <= 0 {
		return core.TrendEstavel
	}
	change := (last - first) / first * 100
	switch {
	case change > PriceTrendThreshold:
		return core.TrendAlta
	case change < -PriceTrendThreshold:
		return core.TrendBaixa
	default:
		return core.TrendEstavel
	}
}

// MonthlyExpenses returns purchase spending for the last months calendar
// months ending with now's month, ascending and zero-filled.
func MonthlyExpenses(txs []core.Transaction, now time.Time, months int) []core.MonthlyAggregate {
	if months < 1 {
		months = 1
	}
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, now.Location()).AddDate(0, -months, 0)

	// one extra leading month so the oldest returned month has a comparison base
	all := make([]core.MonthlyAggregate, months+1)
	index := make(map[[2]int]int, months+1)
	for i := range all {
		t := first.AddDate(0, i, 0)
		all[i].Year, all[i].Month = t.Year(), int(t.Month())
		all[i].MonthLabel = fmt.Sprintf("%s/%d", format.MonthAbbrev(all[i].Month), all[i].Year)
		index[[2]int{all[i].Year, all[i].Month}] = i
	}

	for _, tx := range txs {
		if !tx.Type.IsInbound() {
			continue
		}
		w := tx.When().In(now.Location())
		i, ok := index[[2]int{w.Year(), int(w.Month())}]
		if !ok {
			continue
		}
		all[i].TransactionCount++
		all[i].TotalSpent += tx.Total()
	}

	for i := 1; i < len(all); i++ {
		prev := all[i-1].TotalSpent
		all[i].TotalSpent = roundTo(all[i].TotalSpent, 2)
		all[i].DifferenceFromPrevious = roundTo(all[i].TotalSpent-prev, 2)
		if prev > 0 {
			all[i].PercentageChange = roundTo(all[i].DifferenceFromPrevious/prev*100, 2)
		}
	}
	return all[1:]
}

// Recent returns up to limit transactions, most recent first.
func Recent(txs []core.Transaction, limit int) []core.Transaction {
	out := append([]core.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].When(), out[j].When()
		if ti.Equal(tj.Time) {
			return out[i].ID > out[j].ID
		}
		return ti.After(tj.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Dashboard builds the inventory snapshot. txs should cover at least the
// last DashboardWindowDays days.
func Dashboard(items []core.Item, txs []core.Transaction, now time.Time) core.DashboardData {
	var d core.DashboardData
	inv := &d.Inventory
	inv.TotalItems = len(items)

	var priceSum float64
	soon := now.AddDate(0, 0, ExpiringSoonDays)
	for _, it := range items {
		inv.TotalQuantity += it.Quantity
		inv.TotalValue += it.Quantity * it.Price
		priceSum += it.Price
		if it.Quantity <= it.MinQuantity {
			inv.ItemsLowStock++
		}
		if exp := it.ExpirationDate; !exp.IsZero() && !exp.Before(windowStart(now, 1)) && !exp.After(soon) {
			d.ExpiringSoonCount++
		}
	}
	if inv.TotalItems > 0 {
		inv.AveragePrice = roundTo(priceSum/float64(inv.TotalItems), 2)
	}
	inv.TotalValue = roundTo(inv.TotalValue, 2)
	d.LowStockCount = inv.ItemsLowStock
	d.Transactions30d = Summarize(InWindow(txs, now, DashboardWindowDays))
	return d
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
