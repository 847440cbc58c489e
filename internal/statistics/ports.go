// Package statistics loads and aggregates the inventory statistics shown on the dashboard.
package statistics

import (
	"context"
	"errors"

	"estoque/internal/core"
)

// ErrNotFound is returned by sources for unknown transaction ids.
var ErrNotFound = errors.New("not found")

// Source is where statistics come from. Windows are in days, counted back
// from now. MonthlyExpenses must be ascending by month and
// RecentTransactions most recent first.
type Source interface {
	Summary(ctx context.Context, days int) (core.TransactionSummary, error)
	DailyTransactions(ctx context.Context, days int) ([]core.DailyTransaction, error)
	MostTransacted(ctx context.Context, days, limit int) ([]core.MostTransactedItem, error)
	ConsumptionRate(ctx context.Context, days int) ([]core.ConsumptionRate, error)
	PriceAnalysis(ctx context.Context, days int) ([]core.PriceAnalysis, error)
	Dashboard(ctx context.Context) (core.DashboardData, error)
	RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error)
	MonthlyExpenses(ctx context.Context, months int) ([]core.MonthlyAggregate, error)
	TransactionByID(ctx context.Context, id int64) (*core.Transaction, error)
}

// Pinger is implemented by sources that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}
