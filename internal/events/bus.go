// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/metrics"
	"github.com/tomtom215/lostfound/internal/models"
)

// transport is a publisher/subscriber pair plus whatever must be released
// with it.
type transport struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	close      func() error
}

// Bus owns the transport, the router and a circuit breaker around publishing.
type Bus struct {
	logger zerolog.Logger

	transport *transport
	router    *message.Router
	breaker   *gobreaker.CircuitBreaker[struct{}]

	mu     sync.RWMutex
	closed bool
}

// NewBus creates a bus for cfg. Handlers are registered with Subscribe
// before Run.
func NewBus(cfg *config.EventsConfig) (*Bus, error) {
	logger := logging.WithComponent("events")
	wmLogger := NewLoggerAdapter(logger)

	var (
		tr  *transport
		err error
	)
	switch cfg.Backend {
	case "", "gochannel":
		tr = newGoChannelTransport(wmLogger)
	case "nats":
		tr, err = newNATSTransport(cfg, wmLogger)
	default:
		err = fmt.Errorf("unknown event backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, wmLogger)
	if err != nil {
		_ = tr.close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	poisonQueue, err := middleware.PoisonQueue(tr.publisher, TopicItemPoison)
	if err != nil {
		_ = tr.close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		poisonQueue,
		middleware.Retry{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: backoff,
			MaxInterval:     30 * backoff,
			Multiplier:      2.0,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)

	b := &Bus{
		logger:    logger,
		transport: tr,
		router:    router,
	}
	b.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "events",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), float64(to))
		},
	})

	b.Subscribe("poison-logger", TopicItemPoison, b.logPoisoned)
	return b, nil
}

func newGoChannelTransport(logger watermill.LoggerAdapter) *transport {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
	return &transport{publisher: pubSub, subscriber: pubSub, close: pubSub.Close}
}

// Subscribe registers a consumer handler for topic.
func (b *Bus) Subscribe(name, topic string, handler message.NoPublishHandlerFunc) {
	b.router.AddConsumerHandler(name, topic, b.transport.subscriber, handler)
}

// Publish sends ev on topic. The correlation ID of ctx, if any, travels
// with the message.
func (b *Bus) Publish(ctx context.Context, topic string, ev *ItemEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	msg, err := ev.Message(logging.CorrelationIDFromContext(ctx))
	if err != nil {
		return err
	}

	_, err = b.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, b.transport.publisher.Publish(topic, msg)
	})
	metrics.RecordEventPublished(topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishItemApproved announces that item was approved.
func (b *Bus) PublishItemApproved(ctx context.Context, item *models.Item) error {
	return b.Publish(ctx, TopicItemApproved, NewItemEvent(item))
}

// Run starts the router and blocks until ctx is cancelled or Close is
// called.
func (b *Bus) Run(ctx context.Context) error {
	if err := b.router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return nil
}

// Running is closed once every handler is subscribed.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// Close stops the router and releases the transport.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	return errors.Join(b.router.Close(), b.transport.close())
}

func (b *Bus) logPoisoned(msg *message.Message) error {
	b.logger.Error().
		Str("message_uuid", msg.UUID).
		Str("item_id", msg.Metadata.Get("item_id")).
		Str("topic", msg.Metadata.Get(middleware.PoisonedTopicKey)).
		Str("reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey)).
		Msg("Event moved to poison queue")
	metrics.RecordEventHandled(TopicItemPoison, nil)
	return nil
}
