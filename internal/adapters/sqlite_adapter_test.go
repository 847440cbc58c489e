package adapters

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/core"
	"estoque/internal/statistics"
	"estoque/internal/statistics/memory"
	"estoque/internal/storage"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newAdapter(t *testing.T) (*SQLiteAdapter, statistics.Dataset) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "estoque.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	data := statistics.DemoDataset(now)
	_, err = repo.Seed(context.Background(), data.Items, data.Transactions)
	require.NoError(t, err)

	a := NewSQLiteAdapter(repo)
	a.now = func() time.Time { return now }
	return a, data
}

func TestSQLiteAdapterMatchesMemorySource(t *testing.T) {
	a, data := newAdapter(t)
	mem := memory.New(data).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for _, days := range []int{7, 30, 90} {
		want, err := mem.Summary(ctx, days)
		require.NoError(t, err)
		got, err := a.Summary(ctx, days)
		require.NoError(t, err)
		assert.Equal(t, want.TotalTransactions, got.TotalTransactions, "days=%d", days)
		assert.InDelta(t, want.ValorTotalEntradas, got.ValorTotalEntradas, 1e-6, "days=%d", days)

		wantDaily, _ := mem.DailyTransactions(ctx, days)
		gotDaily, err := a.DailyTransactions(ctx, days)
		require.NoError(t, err)
		assert.Len(t, gotDaily, len(wantDaily))
	}

	wantMonths, _ := mem.MonthlyExpenses(ctx, 6)
	gotMonths, err := a.MonthlyExpenses(ctx, 6)
	require.NoError(t, err)
	require.Len(t, gotMonths, len(wantMonths))
	for i := range wantMonths {
		assert.InDelta(t, wantMonths[i].TotalSpent, gotMonths[i].TotalSpent, 1e-6)
		assert.InDelta(t, wantMonths[i].PercentageChange, gotMonths[i].PercentageChange, 1e-6)
	}

	wantDash, _ := mem.Dashboard(ctx)
	gotDash, err := a.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantDash.LowStockCount, gotDash.LowStockCount)
	assert.Equal(t, wantDash.ExpiringSoonCount, gotDash.ExpiringSoonCount)
}

func TestSQLiteAdapterRecentAndLookup(t *testing.T) {
	a, _ := newAdapter(t)
	ctx := context.Background()

	recent, err := a.RecentTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.True(t, core.IsMostRecentFirst(recent))

	tx, err := a.TransactionByID(ctx, recent[0].ID)
	require.NoError(t, err)
	assert.Equal(t, recent[0].ItemName, tx.ItemName)

	_, err = a.TransactionByID(ctx, -1)
	assert.ErrorIs(t, err, statistics.ErrNotFound)

	assert.NoError(t, a.Ping(ctx))
}

func TestSQLiteAdapterRanking(t *testing.T) {
	a, _ := newAdapter(t)
	ctx := context.Background()

	top, err := a.MostTransacted(ctx, 30, 3)
	require.NoError(t, err)
	assert.Len(t, top, 3)

	rates, err := a.ConsumptionRate(ctx, 30)
	require.NoError(t, err)
	assert.NotEmpty(t, rates)

	prices, err := a.PriceAnalysis(ctx, 180)
	require.NoError(t, err)
	assert.NotEmpty(t, prices)

	_, err = a.InsertTransaction(ctx, core.TransactionRequest{ItemID: 999, Type: core.Saida, Quantity: 1})
	assert.ErrorIs(t, err, statistics.ErrNotFound)
}
