package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"estoque/internal/components"
	"estoque/internal/core"
	"estoque/internal/log"
	"estoque/internal/statistics"
)

const (
	monthlyExpensesPath = "/ui/monthly-expenses"
	transactionsPath    = "/ui/transactions"
	chartsPath          = "/ui/charts/"
)

// dashboardChart is one chart of the statistics page.
type dashboardChart struct {
	Key   string
	Title string
	Type  string
	XAxis string
	Keys  []core.SeriesSpec
	Data  func(statistics.State) ([]core.Record, error)
}

var dashboardCharts = []dashboardChart{
	{
		Key:   "daily",
		Title: "Movimentação diária",
		Type:  "area",
		XAxis: "date",
		Keys: []core.SeriesSpec{
			{Key: "entrada", Name: "Entradas", Color: core.ChartColors.Success},
			{Key: "saida", Name: "Saídas", Color: core.ChartColors.Danger},
		},
		Data: func(st statistics.State) ([]core.Record, error) { return core.ToRecords(st.DailyTransactions) },
	},
	{
		Key:   "most-transacted",
		Title: "Itens mais movimentados",
		Type:  "bar",
		XAxis: "item_name",
		Keys: []core.SeriesSpec{
			{Key: "total_quantity", Name: "Quantidade", Color: core.ChartColors.Primary},
		},
		Data: func(st statistics.State) ([]core.Record, error) { return core.ToRecords(st.MostTransacted) },
	},
	{
		Key:   "consumption",
		Title: "Consumo diário por item",
		Type:  "bar",
		XAxis: "item_name",
		Keys: []core.SeriesSpec{
			{Key: "taxa_diaria", Name: "Consumo/dia", Color: core.ChartColors.Warning},
			{Key: "estoque_atual", Name: "Estoque atual", Color: core.ChartColors.Teal},
		},
		Data: func(st statistics.State) ([]core.Record, error) { return core.ToRecords(st.ConsumptionRate) },
	},
	{
		Key:   "prices",
		Title: "Preços por item",
		Type:  "line",
		XAxis: "item_name",
		Keys: []core.SeriesSpec{
			{Key: "preco_minimo", Name: "Mínimo", Color: core.ChartColors.Success},
			{Key: "preco_medio", Name: "Médio", Color: core.ChartColors.Primary},
			{Key: "preco_maximo", Name: "Máximo", Color: core.ChartColors.Danger},
		},
		Data: func(st statistics.State) ([]core.Record, error) { return core.ToRecords(st.PriceAnalysis) },
	},
	{
		Key:   "types",
		Title: "Entradas x Saídas",
		Type:  "pie",
		XAxis: components.PieNameKey,
		Keys: []core.SeriesSpec{
			{Key: components.DefaultPieValueKey, Color: core.ChartColors.Success},
			{Key: components.DefaultPieValueKey, Color: core.ChartColors.Danger},
		},
		Data: func(st statistics.State) ([]core.Record, error) { return st.TypeBreakdown(), nil },
	},
}

func chartByKey(key string) (dashboardChart, bool) {
	for _, c := range dashboardCharts {
		if c.Key == key {
			return c, true
		}
	}
	return dashboardChart{}, false
}

func periodURL(path string, period core.PeriodOption, extra url.Values) string {
	q := url.Values{"period": {period.Key}}
	for k, v := range extra {
		q[k] = v
	}
	return path + "?" + q.Encode()
}

func transactionDetailsURL(tx core.Transaction) string {
	return transactionsPath + "/" + strconv.FormatInt(tx.ID, 10)
}

// loadState loads the statistics of the requested period, logging failures.
// The returned State always renders: failed slices stay empty.
func (s *Server) loadState(r *http.Request, period core.PeriodOption) statistics.State {
	ctx, cancel := context.WithTimeout(r.Context(), partialTimeout)
	defer cancel()

	st := s.stats.Load(ctx, period)
	if st.HasError() {
		s.logger.WarnContext(r.Context(), "Statistics loaded with errors",
			log.NewFields().
				WithComponent(log.ComponentStatistics).
				WithPeriod(period.Key).
				WithError(errors.New(*st.Error)).
				ToSlice()...)
	}
	return st
}

// handleDashboard renders the page with every component in its loading
// state. Each one fetches its partial once shown and again on statistics:refresh.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period := ParsePeriod(r.URL.Query())
	view := components.DashboardPageView{
		Period:  period,
		Periods: core.PeriodOptions,
		CardURL: periodURL(monthlyExpensesPath, period, nil),
		ListURL: periodURL(transactionsPath, period, url.Values{"limit": {strconv.Itoa(components.DefaultTransactionsLimit)}}),
	}
	view.Card = components.BuildMonthlyExpensesCard(components.MonthlyExpensesCardProps{Loading: true, OnLoad: view.CardURL})
	view.List = components.BuildTransactionsList(components.TransactionsListProps{Loading: true, OnLoad: view.ListURL})
	for _, c := range dashboardCharts {
		refresh := periodURL(chartsPath+c.Key, period, nil)
		view.Charts = append(view.Charts, components.ChartSlot{
			RefreshURL: refresh,
			View: components.BuildStatisticsChart(components.StatisticsChartProps{
				Type:    c.Type,
				Title:   c.Title,
				Loading: true,
				OnLoad:  refresh,
			}),
		})
	}

	s.renderHTML(w, r, http.StatusOK, "painel", func(w io.Writer) error { return s.renderer.DashboardPage(w, view) })
}

// handleMonthlyExpenses renders the populated monthly expenses card.
func (s *Server) handleMonthlyExpenses(w http.ResponseWriter, r *http.Request) {
	st := s.loadState(r, ParsePeriod(r.URL.Query()))
	props := components.MonthlyExpensesCardProps{MonthlyData: st.MonthlyExpenses}
	s.renderHTML(w, r, http.StatusOK, "gastos do mês", func(w io.Writer) error { return s.renderer.MonthlyExpensesCard(w, props) })
}

// handleChart renders one chart. The type query parameter overrides the
// chart's default type; unsupported values render a notice.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	chart, ok := chartByKey(chi.URLParam(r, "chart"))
	if !ok {
		ErrorFragment(http.StatusNotFound, "Gráfico não encontrado").Write(w)
		return
	}
	query := r.URL.Query()
	st := s.loadState(r, ParsePeriod(query))

	data, err := chart.Data(st)
	if err != nil {
		s.logger.WarnContext(r.Context(), "Chart data conversion failed", log.FieldChart, chart.Key, log.FieldError, err)
	}
	props := components.StatisticsChartProps{
		Data:     data,
		Type:     chart.Type,
		DataKeys: chart.Keys,
		XAxisKey: chart.XAxis,
		Title:    chart.Title,
	}
	if t := query.Get("type"); t != "" {
		props.Type = t
	}
	if h, err := strconv.Atoi(query.Get("height")); err == nil && h > 0 {
		props.Height = h
	}
	s.renderHTML(w, r, http.StatusOK, "gráfico", func(w io.Writer) error { return s.renderer.StatisticsChart(w, props) })
}

// handleTransactions renders the recent transactions list.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	st := s.loadState(r, ParsePeriod(query))
	props := components.TransactionsListProps{
		Transactions:  st.RecentTransactions,
		Limit:         ParseLimit(query, components.DefaultTransactionsLimit),
		OnViewDetails: transactionDetailsURL,
		Now:           s.now(),
	}
	s.renderHTML(w, r, http.StatusOK, "transações", func(w io.Writer) error { return s.renderer.TransactionsList(w, props) })
}

// handleTransactionDetail renders the detail panel of one transaction.
// Unknown ids render the panel's not-found notice.
func (s *Server) handleTransactionDetail(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(chi.URLParam(r, "id"))
	if err != nil {
		ErrorFragment(http.StatusBadRequest, "Identificador inválido").Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), partialTimeout)
	defer cancel()
	tx, err := s.stats.TransactionByID(ctx, id)
	switch {
	case errors.Is(err, statistics.ErrNotFound):
		// htmx only swaps 2xx, the panel itself shows the not-found notice
		tx = nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Failed to load transaction", log.FieldTransactionID, id, log.FieldError, err)
		ErrorFragment(http.StatusInternalServerError, "Erro ao carregar transação").Write(w)
		return
	}
	s.renderHTML(w, r, http.StatusOK, "transação", func(w io.Writer) error { return s.renderer.TransactionDetail(w, tx, s.now()) })
}
