package worker

import (
	"context"
	"fmt"

	"estoque/internal/amqp"
	"estoque/internal/live"
	"estoque/internal/log"
)

// Invalidator drops cached statistics.
type Invalidator interface {
	Invalidate()
}

// Broadcaster delivers a live message to open pages.
type Broadcaster interface {
	Broadcast(msg live.Message)
}

// RefreshWorker turns transaction events into a cache invalidation followed
// by a refresh notification, so dashboards reload with fresh numbers.
type RefreshWorker struct {
	cache  Invalidator
	live   Broadcaster
	logger *log.Logger
}

func NewRefreshWorker(cache Invalidator, live Broadcaster, logger *log.Logger) *RefreshWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &RefreshWorker{cache: cache, live: live, logger: logger.WithComponent(log.ComponentWorker)}
}

// HandleEvent implements amqp.Handler.
func (w *RefreshWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	if ev == nil {
		return fmt.Errorf("nil transaction event")
	}
	w.logger.InfoContext(ctx, "Processing transaction event",
		"event", ev.Event,
		log.FieldTransactionID, ev.TransactionID)

	w.Refresh(ctx, ev.Event, ev.TransactionID)
	return nil
}

// Refresh invalidates cached statistics and notifies connected pages.
func (w *RefreshWorker) Refresh(ctx context.Context, reason string, transactionID int64) {
	if w.cache != nil {
		w.cache.Invalidate()
	}
	if w.live != nil {
		w.live.Broadcast(live.NewRefresh(reason, transactionID))
	}
	w.logger.DebugContext(ctx, "Statistics refresh broadcast",
		log.FieldOperation, log.OpBroadcast, "reason", reason)
}

// Run consumes events until ctx is done.
func (w *RefreshWorker) Run(ctx context.Context, consumer *amqp.Consumer) error {
	w.logger.InfoContext(ctx, "Refresh worker started")
	err := consumer.Run(ctx, w.HandleEvent)
	w.logger.InfoContext(ctx, "Refresh worker stopped")
	return err
}
