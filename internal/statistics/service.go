package statistics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"estoque/internal/cache"
	"estoque/internal/core"
	"estoque/internal/log"
)

// Load parameters. RecentTransactionsLimit bounds the list kept in State;
// lists show fewer on request.
const (
	MostTransactedLimit     = 10
	RecentTransactionsLimit = 50
	MonthlyExpensesMonths   = 6
	DefaultCacheTTL         = 5 * time.Minute
	// one entry per period option is enough
	cacheSize = 16
)

// Service loads statistics from a Source and keeps one State per period.
type Service struct {
	source Source
	cache  *cache.LRUCache[State]
	logger *log.Logger
	now    func() time.Time

	// bumped by Invalidate so loads started before it are not cached
	mu         sync.Mutex
	generation uint64
}

// Option configures a Service.
type Option func(*Service)

// WithCacheTTL sets how long a loaded State is served from memory. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl <= 0 {
			s.cache = nil
			return
		}
		s.cache = cache.NewLRUCache[State](cacheSize, ttl)
	}
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentStatistics)
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(source Source, opts ...Option) *Service {
	s := &Service{
		source: source,
		cache:  cache.NewLRUCache[State](cacheSize, DefaultCacheTTL),
		logger: log.Discard().WithComponent(log.ComponentStatistics),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache exposes the state cache for registration with a cache.Manager. It is
// nil when caching is disabled.
func (s *Service) Cache() *cache.LRUCache[State] {
	return s.cache
}

// Source returns the underlying statistics source.
func (s *Service) Source() Source {
	return s.source
}

// Load returns the statistics for period. Every slice is fetched concurrently;
// slices that fail stay empty and the first failure is recorded in Error.
func (s *Service) Load(ctx context.Context, period core.PeriodOption) State {
	if s.cache != nil {
		if st, ok := s.cache.Get(period.Key); ok {
			s.logger.DebugContext(ctx, "Statistics served from cache", log.FieldPeriod, period.Key)
			return st
		}
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	start := s.now()
	st := s.fetch(ctx, period)
	st.LoadedAt = s.now()

	if st.Error != nil {
		s.logger.WarnContext(ctx, "Statistics loaded with errors",
			log.NewFields().WithPeriod(period.Key).WithOperation(log.OpLoad).
				WithError(errors.New(*st.Error)).ToSlice()...)
	} else {
		s.logger.InfoContext(ctx, "Statistics loaded",
			log.FieldPeriod, period.Key,
			log.FieldDuration, st.LoadedAt.Sub(start).Milliseconds())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache != nil && st.Error == nil && gen == s.generation {
		s.cache.Set(period.Key, st)
	}
	return st
}

func (s *Service) fetch(ctx context.Context, period core.PeriodOption) State {
	st := State{Period: period}
	days := period.Value

	var (
		g        errgroup.Group
		errOnce  sync.Once
		firstErr error
	)
	// fail soft: keep whatever loaded and remember the first error
	run := func(name string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				errOnce.Do(func() { firstErr = fmt.Errorf("%s: %w", name, err) })
				s.logger.ErrorContext(ctx, "Failed to load statistics slice",
					log.FieldChart, name, log.FieldPeriod, period.Key, log.FieldError, err.Error())
			}
			return nil
		})
	}

	run("summary", func() error {
		v, err := s.source.Summary(ctx, days)
		if err == nil {
			st.Summary = &v
		}
		return err
	})
	run("daily_transactions", func() (err error) {
		st.DailyTransactions, err = s.source.DailyTransactions(ctx, days)
		return err
	})
	run("most_transacted", func() (err error) {
		st.MostTransacted, err = s.source.MostTransacted(ctx, days, MostTransactedLimit)
		return err
	})
	run("consumption_rate", func() (err error) {
		st.ConsumptionRate, err = s.source.ConsumptionRate(ctx, days)
		return err
	})
	run("price_analysis", func() (err error) {
		st.PriceAnalysis, err = s.source.PriceAnalysis(ctx, days)
		return err
	})
	run("dashboard", func() error {
		v, err := s.source.Dashboard(ctx)
		if err == nil {
			st.DashboardData = &v
		}
		return err
	})
	run("recent_transactions", func() (err error) {
		st.RecentTransactions, err = s.source.RecentTransactions(ctx, RecentTransactionsLimit)
		return err
	})
	run("monthly_expenses", func() (err error) {
		st.MonthlyExpenses, err = s.source.MonthlyExpenses(ctx, MonthlyExpensesMonths)
		return err
	})
	_ = g.Wait()

	if firstErr != nil {
		msg := firstErr.Error()
		st.Error = &msg
	}

	// components rely on these orders; report violations but do not reorder
	if !core.IsChronological(st.MonthlyExpenses) {
		s.logger.WarnContext(ctx, "Monthly expenses are not in ascending order", log.FieldPeriod, period.Key)
	}
	if !core.IsMostRecentFirst(st.RecentTransactions) {
		s.logger.WarnContext(ctx, "Recent transactions are not most recent first", log.FieldPeriod, period.Key)
	}
	return st
}

// TransactionByID looks up a single transaction.
func (s *Service) TransactionByID(ctx context.Context, id int64) (*core.Transaction, error) {
	tx, err := s.source.TransactionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: %w", id, err)
	}
	return tx, nil
}

// Invalidate drops every cached State. Loads in flight are not cached.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.cache != nil {
		s.cache.Purge()
	}
	s.logger.Debug("Statistics cache invalidated", log.FieldOperation, log.OpInvalidate)
}

// Ping reports whether the source is reachable. Sources without a health
// check are always considered ready.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.source.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
