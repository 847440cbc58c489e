package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/core"
	"estoque/internal/statistics"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixture() statistics.Dataset {
	at := func(days int) core.Timestamp { return core.NewTimestamp(now.AddDate(0, 0, -days)) }
	return statistics.Dataset{
		Items: []core.Item{
			{ID: 1, Name: "Arroz", Quantity: 8, Price: 5, MinQuantity: 10},
			{ID: 2, Name: "Feijão", Quantity: 4, Price: 8, MinQuantity: 1},
		},
		Transactions: []core.Transaction{
			{ID: 1, ItemID: 1, ItemName: "Arroz", Type: core.Entrada, Quantity: 10, Price: 5, Date: at(20)},
			{ID: 2, ItemID: 1, ItemName: "Arroz", Type: core.Saida, Quantity: 2, Price: 5, Date: at(3)},
			{ID: 3, ItemID: 2, ItemName: "Feijão", Type: core.Entrada, Quantity: 4, Price: 8, Date: at(1)},
		},
	}
}

func TestStoreImplementsSource(t *testing.T) {
	var _ statistics.Source = New(statistics.Dataset{})
}

func TestStoreAggregates(t *testing.T) {
	s := New(fixture()).WithClock(func() time.Time { return now })
	ctx := context.Background()

	sum, err := s.Summary(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalTransactions)

	daily, err := s.DailyTransactions(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, daily, 7)

	top, err := s.MostTransacted(ctx, 30, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Arroz", top[0].ItemName)

	rates, err := s.ConsumptionRate(ctx, 30)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, 8.0, rates[0].EstoqueAtual)

	dash, err := s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.LowStockCount)

	recent, err := s.RecentTransactions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(3), recent[0].ID)

	months, err := s.MonthlyExpenses(ctx, 6)
	require.NoError(t, err)
	assert.Len(t, months, 6)
	assert.True(t, core.IsChronological(months))
}

func TestStoreTransactionByID(t *testing.T) {
	s := New(fixture())
	tx, err := s.TransactionByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, core.Saida, tx.Type)

	_, err = s.TransactionByID(context.Background(), 99)
	assert.ErrorIs(t, err, statistics.ErrNotFound)
}

func TestStoreInsertTransactionAdjustsStock(t *testing.T) {
	s := New(fixture()).WithClock(func() time.Time { return now })
	ctx := context.Background()

	tx, err := s.InsertTransaction(ctx, core.TransactionRequest{ItemID: 1, Type: core.Saida, Quantity: 3, Price: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(4), tx.ID)
	assert.Equal(t, "Arroz", tx.ItemName)

	dash, _ := s.Dashboard(ctx)
	assert.Equal(t, 5.0+4.0, dash.Inventory.TotalQuantity)

	_, err = s.InsertTransaction(ctx, core.TransactionRequest{ItemID: 42, Type: core.Entrada, Quantity: 1})
	assert.ErrorIs(t, err, statistics.ErrNotFound)

	_, err = s.InsertTransaction(ctx, core.TransactionRequest{ItemID: 1, Type: "bogus", Quantity: 1})
	assert.ErrorIs(t, err, core.ErrInvalidTransactionType)
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()

	// missing file falls back to demo data
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	recent, _ := s.RecentTransactions(context.Background(), 5)
	assert.Len(t, recent, 5)

	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"items": [{"id": 1, "name": "Sal", "quantity": 1, "price": 2}],
		"transactions": [{"id": 1, "item_id": 1, "item_name": "Sal", "type": "entrada",
			"quantity": 1, "price": 2, "date": "2025-03-01T10:00:00"}]
	}`), 0o644))
	s, err = NewFromFile(path)
	require.NoError(t, err)
	tx, err := s.TransactionByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Sal", tx.ItemName)

	require.NoError(t, os.WriteFile(path, []byte(`{"items": [], "transactions": [{"id": 1, "item_id": 5,
		"item_name": "X", "type": "saida", "quantity": 1, "date": "2025-03-01"}]}`), 0o644))
	_, err = NewFromFile(path)
	assert.ErrorContains(t, err, "unknown item")
}
