// Package memory is an in-process statistics source backed by a Dataset.
package memory

import (
	"context"
	"sync"
	"time"

	"estoque/internal/core"
	"estoque/internal/statistics"
)

type Store struct {
	mu    sync.RWMutex
	items []core.Item
	txs   []core.Transaction
	now   func() time.Time
}

func New(d statistics.Dataset) *Store {
	return &Store{
		items: append([]core.Item(nil), d.Items...),
		txs:   append([]core.Transaction(nil), d.Transactions...),
		now:   time.Now,
	}
}

// NewFromFile seeds the store from a JSON dataset, or demo data when the
// file is absent.
func NewFromFile(path string) (*Store, error) {
	d, err := statistics.LoadDatasetOrDemo(path, time.Now())
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

// WithClock overrides the store's notion of now. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) snapshot() ([]core.Item, []core.Transaction) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Item(nil), s.items...), append([]core.Transaction(nil), s.txs...)
}

func (s *Store) window(days int) []core.Transaction {
	_, txs := s.snapshot()
	return statistics.InWindow(txs, s.now(), days)
}

func (s *Store) Summary(_ context.Context, days int) (core.TransactionSummary, error) {
	return statistics.Summarize(s.window(days)), nil
}

func (s *Store) DailyTransactions(_ context.Context, days int) ([]core.DailyTransaction, error) {
	return statistics.DailySeries(s.window(days), s.now(), days), nil
}

func (s *Store) MostTransacted(_ context.Context, days, limit int) ([]core.MostTransactedItem, error) {
	return statistics.MostTransacted(s.window(days), limit), nil
}

func (s *Store) ConsumptionRate(_ context.Context, days int) ([]core.ConsumptionRate, error) {
	items, txs := s.snapshot()
	return statistics.ConsumptionRates(items, statistics.InWindow(txs, s.now(), days), days), nil
}

func (s *Store) PriceAnalysis(_ context.Context, days int) ([]core.PriceAnalysis, error) {
	return statistics.PriceAnalyses(s.window(days)), nil
}

func (s *Store) Dashboard(context.Context) (core.DashboardData, error) {
	items, txs := s.snapshot()
	return statistics.Dashboard(items, txs, s.now()), nil
}

func (s *Store) RecentTransactions(_ context.Context, limit int) ([]core.Transaction, error) {
	_, txs := s.snapshot()
	return statistics.Recent(txs, limit), nil
}

func (s *Store) MonthlyExpenses(_ context.Context, months int) ([]core.MonthlyAggregate, error) {
	_, txs := s.snapshot()
	return statistics.MonthlyExpenses(txs, s.now(), months), nil
}

func (s *Store) TransactionByID(_ context.Context, id int64) (*core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			tx := tx
			return &tx, nil
		}
	}
	return nil, statistics.ErrNotFound
}

// InsertTransaction records a movement and adjusts the item's stock.
func (s *Store) InsertTransaction(_ context.Context, req core.TransactionRequest) (core.Transaction, error) {
	if err := req.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, it := range s.items {
		if it.ID == req.ItemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Transaction{}, statistics.ErrNotFound
	}

	now := core.NewTimestamp(s.now())
	date := now
	if req.Date != nil && !req.Date.IsZero() {
		date = *req.Date
	}
	var maxID int64
	for _, tx := range s.txs {
		maxID = max(maxID, tx.ID)
	}
	tx := core.Transaction{
		ID:          maxID + 1,
		ItemID:      req.ItemID,
		ItemName:    s.items[idx].Name,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Date:        date,
		Description: req.Description,
		CreatedAt:   now,
	}

	if req.Type.IsInbound() {
		s.items[idx].Quantity += req.Quantity
	} else {
		s.items[idx].Quantity = max(0, s.items[idx].Quantity-req.Quantity)
	}
	s.txs = append(s.txs, tx)
	return tx, nil
}
