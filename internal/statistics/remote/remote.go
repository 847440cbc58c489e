// Package remote reads statistics from the inventory backend's REST API.
package remote

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"estoque/internal/apiclient"
	"estoque/internal/core"
	"estoque/internal/log"
	"estoque/internal/statistics"
)

// Backend paths, relative to the API base URL.
const (
	PathSummary         = "/transactions/statistics/summary"
	PathDaily           = "/transactions/statistics/daily"
	PathMostTransacted  = "/transactions/statistics/most-transacted"
	PathConsumptionRate = "/transactions/statistics/consumption-rate"
	PathPriceAnalysis   = "/transactions/statistics/price-analysis"
	PathDashboard       = "/transactions/statistics/dashboard"
	PathMonthlyExpenses = "/transactions/statistics/monthly-expenses"
	PathRecent          = "/transactions/recent"
	PathTransactions    = "/transactions"
	PathHealth          = "/health"
)

type Source struct {
	api    *apiclient.Client
	logger *log.Logger
}

func New(api *apiclient.Client, logger *log.Logger) *Source {
	if logger == nil {
		logger = log.Discard()
	}
	return &Source{api: api, logger: logger.WithComponent(log.ComponentBackend)}
}

func days(n int) url.Values {
	return url.Values{"days": {strconv.Itoa(n)}}
}

func (s *Source) Summary(ctx context.Context, d int) (core.TransactionSummary, error) {
	var out core.TransactionSummary
	err := s.api.GetJSON(ctx, PathSummary, days(d), &out)
	return out, err
}

func (s *Source) DailyTransactions(ctx context.Context, d int) ([]core.DailyTransaction, error) {
	var out []core.DailyTransaction
	if err := s.api.GetJSON(ctx, PathDaily, days(d), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Source) MostTransacted(ctx context.Context, d, limit int) ([]core.MostTransactedItem, error) {
	q := days(d)
	q.Set("limit", strconv.Itoa(limit))
	var out []core.MostTransactedItem
	if err := s.api.GetJSON(ctx, PathMostTransacted, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Source) ConsumptionRate(ctx context.Context, d int) ([]core.ConsumptionRate, error) {
	var out []core.ConsumptionRate
	if err := s.api.GetJSON(ctx, PathConsumptionRate, days(d), &out); err != nil {
		return nil, err
	}
	// older backends omit the status; derive it from the forecast
	for i := range out {
		if out[i].Status == "" {
			out[i].Status = core.StatusForDays(out[i].DiasParaEsgotamento)
		}
	}
	return out, nil
}

func (s *Source) PriceAnalysis(ctx context.Context, d int) ([]core.PriceAnalysis, error) {
	var out []core.PriceAnalysis
	if err := s.api.GetJSON(ctx, PathPriceAnalysis, days(d), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Source) Dashboard(ctx context.Context) (core.DashboardData, error) {
	var out core.DashboardData
	err := s.api.GetJSON(ctx, PathDashboard, nil, &out)
	return out, err
}

// RecentTransactions drops records that fail validation instead of failing
// the whole list.
func (s *Source) RecentTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	var raw []core.Transaction
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := s.api.GetJSON(ctx, PathRecent, q, &raw); err != nil {
		return nil, err
	}
	out := raw[:0]
	for _, tx := range raw {
		if err := tx.Validate(); err != nil {
			s.logger.WarnContext(ctx, "Dropping invalid transaction",
				log.NewFields().WithTransaction(tx.ID, tx.ItemName).WithError(err).ToSlice()...)
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Source) MonthlyExpenses(ctx context.Context, months int) ([]core.MonthlyAggregate, error) {
	var raw []core.MonthlyAggregate
	q := url.Values{"months": {strconv.Itoa(months)}}
	if err := s.api.GetJSON(ctx, PathMonthlyExpenses, q, &raw); err != nil {
		return nil, err
	}
	out := raw[:0]
	for _, m := range raw {
		if m.Month < 1 || m.Month > 12 {
			s.logger.WarnContext(ctx, "Dropping monthly aggregate with invalid month",
				"year", m.Year, "month", m.Month)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Source) TransactionByID(ctx context.Context, id int64) (*core.Transaction, error) {
	var tx core.Transaction
	err := s.api.GetJSON(ctx, fmt.Sprintf("%s/%d", PathTransactions, id), nil, &tx)
	if apiclient.IsNotFound(err) {
		return nil, statistics.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Ping checks the backend health endpoint.
func (s *Source) Ping(ctx context.Context) error {
	return s.api.GetJSON(ctx, PathHealth, nil, nil)
}
