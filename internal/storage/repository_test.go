package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estoque/internal/core"
)

var now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "estoque.db"), nil)
	require.NoError(t, err)
	repo.now = func() time.Time { return now }
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func seedData() ([]core.Item, []core.Transaction) {
	at := func(days int) core.Timestamp { return core.NewTimestamp(now.AddDate(0, 0, -days)) }
	total := 99.0
	items := []core.Item{
		{ID: 1, Name: "Arroz", Quantity: 8, Price: 5, MinQuantity: 10,
			ExpirationDate: core.NewTimestamp(now.AddDate(0, 1, 0))},
		{ID: 2, Name: "Feijão", Quantity: 4, Price: 8},
	}
	txs := []core.Transaction{
		{ID: 1, ItemID: 1, ItemName: "Arroz", Type: core.Entrada, Quantity: 10, Price: 5, Date: at(20)},
		{ID: 2, ItemID: 1, ItemName: "Arroz", Type: core.Saida, Quantity: 2, Price: 5, Date: at(3), Description: "jantar"},
		{ID: 3, ItemID: 2, ItemName: "Feijão", Type: core.Entrada, Quantity: 4, Price: 8, Date: at(1), TotalValue: &total},
	}
	return items, txs
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estoque.db")

	v, err := RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)

	v, err = RunMigrations(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
}

func TestSeedOnlyOnce(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	items, txs := seedData()

	seeded, err := repo.Seed(ctx, items, txs)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = repo.Seed(ctx, items, txs)
	require.NoError(t, err)
	assert.False(t, seeded)

	n, err := repo.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListItemsAndTransactions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	items, txs := seedData()
	_, err := repo.Seed(ctx, items, txs)
	require.NoError(t, err)

	gotItems, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, gotItems, 2)
	assert.Equal(t, "Arroz", gotItems[0].Name)
	assert.True(t, gotItems[0].ExpirationDate.Equal(items[0].ExpirationDate.Time))
	assert.True(t, gotItems[1].ExpirationDate.IsZero())

	all, err := repo.ListTransactions(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].ID, "oldest first")
	assert.Equal(t, "Arroz", all[0].ItemName)
	assert.Nil(t, all[0].TotalValue)
	require.NotNil(t, all[2].TotalValue)
	assert.Equal(t, 99.0, all[2].Total())

	recent, err := repo.ListTransactions(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestRecentTransactions(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	items, txs := seedData()
	_, err := repo.Seed(ctx, items, txs)
	require.NoError(t, err)

	recent, err := repo.RecentTransactions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(3), recent[0].ID)
	assert.True(t, core.IsMostRecentFirst(recent))
}

func TestGetTransaction(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	items, txs := seedData()
	_, err := repo.Seed(ctx, items, txs)
	require.NoError(t, err)

	tx, err := repo.GetTransaction(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "jantar", tx.Description)
	assert.Equal(t, core.Saida, tx.Type)
	assert.NoError(t, tx.Validate())

	_, err = repo.GetTransaction(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertTransactionUpdatesStock(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	items, txs := seedData()
	_, err := repo.Seed(ctx, items, txs)
	require.NoError(t, err)

	tx, err := repo.InsertTransaction(ctx, core.TransactionRequest{ItemID: 2, Type: core.Saida, Quantity: 10, Price: 8})
	require.NoError(t, err)
	assert.Equal(t, "Feijão", tx.ItemName)
	assert.Equal(t, int64(4), tx.ID)

	gotItems, err := repo.ListItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, gotItems[1].Quantity, "stock never goes negative")

	_, err = repo.InsertTransaction(ctx, core.TransactionRequest{ItemID: 1, Type: core.Entrada, Quantity: 2, Price: 5})
	require.NoError(t, err)
	gotItems, _ = repo.ListItems(ctx)
	assert.Equal(t, 10.0, gotItems[0].Quantity)

	_, err = repo.InsertTransaction(ctx, core.TransactionRequest{ItemID: 9, Type: core.Entrada, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.InsertTransaction(ctx, core.TransactionRequest{ItemID: 1, Type: core.Entrada, Quantity: 0})
	assert.ErrorIs(t, err, core.ErrInvalidQuantity)
}
