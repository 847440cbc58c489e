package statistics

import (
	"time"

	"estoque/internal/core"
)

// State is everything the statistics page shows for one period. Slices that
// failed to load stay empty; Error carries the first failure.
type State struct {
	Period             core.PeriodOption         `json:"period"`
	Summary            *core.TransactionSummary  `json:"summary"`
	DailyTransactions  []core.DailyTransaction   `json:"daily_transactions"`
	MostTransacted     []core.MostTransactedItem `json:"most_transacted"`
	ConsumptionRate    []core.ConsumptionRate    `json:"consumption_rate"`
	PriceAnalysis      []core.PriceAnalysis      `json:"price_analysis"`
	DashboardData      *core.DashboardData       `json:"dashboard_data"`
	RecentTransactions []core.Transaction        `json:"recent_transactions"`
	MonthlyExpenses    []core.MonthlyAggregate   `json:"monthly_expenses"`
	Loading            bool                      `json:"loading"`
	Error              *string                   `json:"error"`
	LoadedAt           time.Time                 `json:"loaded_at"`
}

// LoadingState is the placeholder shown before data arrives.
func LoadingState(period core.PeriodOption) State {
	return State{Period: period, Loading: true}
}

// HasError reports whether any slice failed to load.
func (s State) HasError() bool {
	return s.Error != nil
}

// TypeBreakdown returns the inbound/outbound split of the period as pie chart
// rows with "name" and "value" fields.
func (s State) TypeBreakdown() []core.Record {
	if s.Summary == nil || s.Summary.TotalTransactions == 0 {
		return nil
	}
	return []core.Record{
		{"name": "Entradas", "value": float64(s.Summary.TotalEntradas)},
		{"name": "Saídas", "value": float64(s.Summary.TotalSaidas)},
	}
}
