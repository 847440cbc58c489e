package adapters

import (
	"context"
	"errors"
	"time"

	"estoque/internal/core"
	"estoque/internal/statistics"
	"estoque/internal/storage"
)

// SQLiteAdapter serves statistics from the local SQLite repository by
// aggregating its rows in process.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository) *SQLiteAdapter {
	return &SQLiteAdapter{storage: storage, now: time.Now}
}

// window loads the transactions of the last days days. The query starts a day
// early and InWindow trims to the exact calendar window.
func (a *SQLiteAdapter) window(ctx context.Context, days int) ([]core.Transaction, time.Time, error) {
	now := a.now()
	txs, err := a.storage.ListTransactions(ctx, now.AddDate(0, 0, -(days + 1)))
	if err != nil {
		return nil, now, err
	}
	return statistics.InWindow(txs, now, days), now, nil
}

func (a *SQLiteAdapter) Summary(ctx context.Context, days int) (core.TransactionSummary, error) {
	txs, _, err := a.window(ctx, days)
	if err != nil {
		return core.TransactionSummary{}, err
	}
	return statistics.Summarize(txs), nil
}

func (a *SQLiteAdapter) DailyTransactions(ctx context.Context, days int) ([]core.DailyTransaction, error) {
	txs, now, err := a.window(ctx, days)
	if err != nil {
		return nil, err
	}
	return statistics.DailySeries(txs, now, days), nil
}

func (a *SQLiteAdapter) MostTransacted(ctx context.Context, days, limit int) ([]core.MostTransactedItem, error) {
	txs, _, err := a.window(ctx, days)
	if err != nil {
		return nil, err
	}
	return statistics.MostTransacted(txs, limit), nil
}

func (a *SQLiteAdapter) ConsumptionRate(ctx context.Context, days int) ([]core.ConsumptionRate, error) {
	items, err := a.storage.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	txs, _, err := a.window(ctx, days)
	if err != nil {
		return nil, err
	}
	return statistics.ConsumptionRates(items, txs, days), nil
}

func (a *SQLiteAdapter) PriceAnalysis(ctx context.Context, days int) ([]core.PriceAnalysis, error) {
	txs, _, err := a.window(ctx, days)
	if err != nil {
		return nil, err
	}
	return statistics.PriceAnalyses(txs), nil
}

func (a *SQLiteAdapter) Dashboard(ctx context.Context) (core.DashboardData, error) {
	items, err := a.storage.ListItems(ctx)
	if err != nil {
		return core.DashboardData{}, err
	}
	txs, now, err := a.window(ctx, statistics.DashboardWindowDays)
	if err != nil {
		return core.DashboardData{}, err
	}
	return statistics.Dashboard(items, txs, now), nil
}

func (a *SQLiteAdapter) RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	return a.storage.RecentTransactions(ctx, limit)
}

func (a *SQLiteAdapter) MonthlyExpenses(ctx context.Context, months int) ([]core.MonthlyAggregate, error) {
	now := a.now()
	// one extra month for the comparison base of the oldest month
	y, m, _ := now.Date()
	since := time.Date(y, m, 1, 0, 0, 0, 0, now.Location()).AddDate(0, -months, 0)
	txs, err := a.storage.ListTransactions(ctx, since)
	if err != nil {
		return nil, err
	}
	return statistics.MonthlyExpenses(txs, now, months), nil
}

func (a *SQLiteAdapter) TransactionByID(ctx context.Context, id int64) (*core.Transaction, error) {
	tx, err := a.storage.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, statistics.ErrNotFound
	}
	return tx, err
}

// InsertTransaction records a movement in the repository.
func (a *SQLiteAdapter) InsertTransaction(ctx context.Context, req core.TransactionRequest) (core.Transaction, error) {
	tx, err := a.storage.InsertTransaction(ctx, req)
	if errors.Is(err, storage.ErrNotFound) {
		return tx, statistics.ErrNotFound
	}
	return tx, err
}

func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}
