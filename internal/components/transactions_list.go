package components

import (
	"io"
	"time"

	"estoque/internal/core"
	"estoque/internal/format"
)

const (
	DefaultTransactionsLimit = 10
	transactionsSkeletonRows = 5
)

// TransactionsListProps configures the list. Transactions are expected most
// recent first and are shown in the given order.
type TransactionsListProps struct {
	Transactions []core.Transaction
	// Limit of rows shown, so the row count is min(Limit, len(Transactions)).
	// The zero value means unset, like Height on a chart: values below 1 use
	// DefaultTransactionsLimit and never hide every row.
	Limit int
	// OnViewDetails returns the URL that shows a transaction. A nil func
	// renders a non-interactive list.
	OnViewDetails func(core.Transaction) string
	Loading       bool
	// OnLoad is fetched once after the list placeholder is shown.
	OnLoad string
	// Now anchors relative times; zero means time.Now().
	Now time.Time
}

// TransactionRow is one rendered transaction.
type TransactionRow struct {
	ID         int64
	ItemName   string
	Modifier   string // entrada or saida
	BadgeLabel string
	Icon       string
	When       string
	Quantity   string
	Value      string
	Clickable  bool
	DetailsURL string
}

// TransactionsListView is what the template renders.
type TransactionsListView struct {
	State     ViewState
	OnLoad    string
	Skeletons []int
	Rows      []TransactionRow
}

// BuildTransactionsList derives the list view from its props.
func BuildTransactionsList(p TransactionsListProps) TransactionsListView {
	v := TransactionsListView{OnLoad: p.OnLoad}
	if p.Loading {
		v.State = StateLoading
		v.Skeletons = make([]int, transactionsSkeletonRows)
		for i := range v.Skeletons {
			v.Skeletons[i] = i + 1
		}
		return v
	}

	limit := p.Limit
	if limit < 1 {
		limit = DefaultTransactionsLimit
	}
	shown := p.Transactions
	if len(shown) > limit {
		shown = shown[:limit]
	}
	if len(shown) == 0 {
		v.State = StateEmpty
		return v
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	v.State = StatePopulated
	v.Rows = make([]TransactionRow, 0, len(shown))
	for _, tx := range shown {
		v.Rows = append(v.Rows, buildTransactionRow(tx, now, p.OnViewDetails))
	}
	return v
}

func buildTransactionRow(tx core.Transaction, now time.Time, details func(core.Transaction) string) TransactionRow {
	inbound := tx.Type.IsInbound()
	row := TransactionRow{
		ID:       tx.ID,
		ItemName: tx.ItemName,
		Quantity: format.Units(tx.Quantity),
		Value:    format.SignedCurrency(tx.Total(), inbound),
	}
	if inbound {
		row.Modifier, row.BadgeLabel, row.Icon = "entrada", "Entrada", "↑"
	} else {
		row.Modifier, row.BadgeLabel, row.Icon = "saida", "Saída", "↓"
	}
	if when := tx.When(); !when.IsZero() {
		row.When = format.RelativeTime(when.Time, now)
	}
	if details != nil {
		row.Clickable = true
		row.DetailsURL = details(tx)
	}
	return row
}

// TransactionsList renders the list.
func (r *Renderer) TransactionsList(w io.Writer, p TransactionsListProps) error {
	return r.Render(w, TemplateTransactionsList, BuildTransactionsList(p))
}

// TransactionDetailView is the expanded view of a single transaction.
type TransactionDetailView struct {
	Found       bool
	Row         TransactionRow
	Description string
	UnitPrice   string
	Date        string
	Type        string
}

// BuildTransactionDetail derives the detail view of tx.
func BuildTransactionDetail(tx *core.Transaction, now time.Time) TransactionDetailView {
	if tx == nil {
		return TransactionDetailView{}
	}
	v := TransactionDetailView{
		Found:       true,
		Row:         buildTransactionRow(*tx, now, nil),
		Description: tx.Description,
		UnitPrice:   format.Currency(tx.Price),
		Type:        string(tx.Type),
	}
	if when := tx.When(); !when.IsZero() {
		v.Date = when.Format("02/01/2006 15:04")
	}
	return v
}

// TransactionDetail renders the detail panel. A nil tx shows a not-found notice.
func (r *Renderer) TransactionDetail(w io.Writer, tx *core.Transaction, now time.Time) error {
	return r.Render(w, TemplateTransactionDetail, BuildTransactionDetail(tx, now))
}
