// Package amqp consumes the inventory backend's transaction events.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"estoque/internal/log"
)

const (
	// DefaultBindingKey matches every transaction event on the topic exchange.
	DefaultBindingKey = "transaction.*"

	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Handler reacts to one decoded event. Returning an error requeues the delivery.
type Handler func(ctx context.Context, ev *TransactionEvent) error

// Config describes the broker topology the consumer binds to.
type Config struct {
	URL        string
	Exchange   string
	Queue      string
	BindingKey string
}

// Consumer keeps a subscription alive across broker restarts.
type Consumer struct {
	cfg    Config
	logger *log.Logger
	dial   func(url string) (*amqp091.Connection, error)
}

// NewConsumer creates a consumer; nothing is dialled until Run.
func NewConsumer(cfg Config, logger *log.Logger) (*Consumer, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp url is required")
	}
	if cfg.Exchange == "" || cfg.Queue == "" {
		return nil, errors.New("amqp exchange and queue are required")
	}
	if cfg.BindingKey == "" {
		cfg.BindingKey = DefaultBindingKey
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger.WithComponent(log.ComponentAMQP),
		dial:   amqp091.Dial,
	}, nil
}

// Run consumes events until ctx is cancelled, reconnecting with capped
// exponential backoff whenever the connection drops.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	attempt := 0
	for {
		err := c.consumeOnce(ctx, handle, func() { attempt = 0 })
		if ctx.Err() != nil {
			c.logger.Info("Stopping event consumption", "reason", ctx.Err())
			return nil
		}

		wait := exponentialBackoff(attempt)
		if isConnectionError(err) {
			c.logger.Warn("Broker unavailable, reconnecting", log.FieldError, err, "retry_in", wait)
		} else {
			c.logger.Error("Event consumption failed, reconnecting", log.FieldError, err, "retry_in", wait)
		}
		attempt++

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func (c *Consumer) consumeOnce(ctx context.Context, handle Handler, connected func()) error {
	conn, err := c.dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := c.setup(ch); err != nil {
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	deliveries, err := ch.Consume(
		c.cfg.Queue, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	connected()
	c.logger.Info("Consuming transaction events",
		"exchange", c.cfg.Exchange, "queue", c.cfg.Queue, log.FieldRoutingKey, c.cfg.BindingKey)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("connection closed: delivery channel closed")
			}
			c.handleDelivery(ctx, d, handle)
		}
	}
}

func (c *Consumer) setup(ch *amqp091.Channel) error {
	if err := ch.ExchangeDeclare(
		c.cfg.Exchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	// each dashboard instance gets its own queue so every replica refreshes
	if _, err := ch.QueueDeclare(
		c.cfg.Queue, // name
		false,       // durable
		true,        // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(c.cfg.Queue, c.cfg.BindingKey, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp091.Delivery, handle Handler) {
	ev, err := TransactionEventFromJSON(d.Body, d.RoutingKey)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to decode event", log.FieldError, err, log.FieldRoutingKey, d.RoutingKey)
		_ = d.Nack(false, false)
		return
	}

	if err := handle(ctx, ev); err != nil {
		c.logger.ErrorContext(ctx, "Failed to handle event",
			log.FieldError, err, log.FieldTransactionID, ev.TransactionID, "event", ev.Event)
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
	c.logger.DebugContext(ctx, "Processed transaction event",
		log.FieldTransactionID, ev.TransactionID, "event", ev.Event)
}

// exponentialBackoff doubles from one second and caps at thirty.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := initialBackoff << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var amqpErr *amqp091.Error
	if errors.As(err, &amqpErr) && amqpErr.Code == amqp091.ConnectionForced {
		return true
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
