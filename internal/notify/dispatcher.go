// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/metrics"
	"github.com/tomtom215/lostfound/internal/models"
)

// BreakerName labels the SMTP circuit breaker in metrics.
const BreakerName = "smtp"

// Dispatcher queues match notices and delivers them from a worker pool.
// It implements matching.Notifier.
type Dispatcher struct {
	sender   Sender
	renderer Renderer
	ledger   Ledger
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[struct{}]
	timeout  time.Duration
	workers  int
	logger   zerolog.Logger

	queue chan models.MatchNotice

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLedger sets the cooldown ledger. The default never suppresses.
func WithLedger(l Ledger) Option {
	return func(d *Dispatcher) { d.ledger = l }
}

// WithLogger overrides the component logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// NewDispatcher creates a dispatcher. Call Start before notices are offered
// and Close to drain the queue on shutdown.
func NewDispatcher(cfg *config.NotifyConfig, sender Sender, renderer Renderer, opts ...Option) *Dispatcher {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := cfg.SMTP.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	d := &Dispatcher{
		sender:   sender,
		renderer: renderer,
		ledger:   NopLedger{},
		timeout:  timeout,
		workers:  workers,
		logger:   logging.WithComponent("notify"),
		queue:    make(chan models.MatchNotice, queueSize),
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	d.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A bad address says nothing about the server.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			d.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), float64(to))
		},
	})

	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the workers. Workers stop when ctx is cancelled or the
// queue is closed and drained.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
	d.logger.Info().Int("workers", d.workers).Int("queue_size", cap(d.queue)).Msg("Notification dispatcher started")
}

// NotifyMatch implements matching.Notifier. It never blocks on delivery: the
// notice is queued, suppressed by the cooldown ledger, or rejected.
func (d *Dispatcher) NotifyMatch(ctx context.Context, notice models.MatchNotice) error {
	if notice.Recipient.Email == "" {
		return ErrNoRecipientEmail
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrNotifierClosed
	}

	key := NoticeKey(&notice)
	seen, err := d.ledger.Seen(ctx, key)
	if err != nil {
		// Fail open: a broken ledger must not silence notifications.
		d.logger.Warn().Err(err).Msg("Notification ledger lookup failed")
	}
	if seen {
		metrics.RecordDelivery("suppressed", 0)
		d.logger.Debug().
			Str("lost_id", notice.Lost.ID).
			Str("found_id", notice.Found.ID).
			Msg("Notice suppressed by cooldown")
		return nil
	}

	select {
	case d.queue <- notice:
		metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
		return nil
	default:
		if err == nil {
			if ferr := d.ledger.Forget(ctx, key); ferr != nil {
				d.logger.Warn().Err(ferr).Msg("Notification ledger cleanup failed")
			}
		}
		metrics.RecordDelivery("dropped", 0)
		return ErrQueueFull
	}
}

// Close stops accepting notices, waits for queued ones to be delivered and
// releases the ledger. It is safe to call more than once.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if started {
		d.wg.Wait()
	}
	return d.ledger.Close()
}

// QueueDepth returns the number of notices waiting for a worker.
func (d *Dispatcher) QueueDepth() int {
	return len(d.queue)
}

// BreakerState returns the SMTP circuit breaker state.
func (d *Dispatcher) BreakerState() gobreaker.State {
	return d.breaker.State()
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case notice, ok := <-d.queue:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
			d.deliver(ctx, &notice)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, notice *models.MatchNotice) {
	logger := d.logger.With().
		Str("to", logging.RedactEmail(notice.Recipient.Email)).
		Str("lost_id", notice.Lost.ID).
		Str("found_id", notice.Found.ID).
		Int("score", notice.Score).
		Logger()

	msg, err := d.renderer.Render(notice)
	if err != nil {
		logger.Error().Err(err).Msg("Render match notice failed")
		metrics.RecordDelivery("failed", 0)
		d.forget(ctx, notice, logger)
		return
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			logger.Warn().Err(err).Msg("Notice dropped while waiting for send slot")
			metrics.RecordDelivery("dropped", 0)
			d.forget(ctx, notice, logger)
			return
		}
	}

	start := time.Now()
	_, err = d.breaker.Execute(func() (struct{}, error) {
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		return struct{}{}, d.sender.Send(sendCtx, msg)
	})
	duration := time.Since(start)

	switch {
	case err == nil:
		metrics.RecordDelivery("sent", duration)
		logger.Info().Dur("duration", duration).Msg("Match notice sent")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordDelivery("failed", 0)
		logger.Warn().Err(err).Msg("Match notice not sent, SMTP circuit open")
		d.forget(ctx, notice, logger)
	default:
		metrics.RecordDelivery("failed", duration)
		logger.Error().Err(err).Bool("transient", IsTransient(err)).Msg("Match notice send failed")
		d.forget(ctx, notice, logger)
	}
}

// forget clears the cooldown entry of a notice that was not delivered so the
// next sweep or approval can offer it again.
func (d *Dispatcher) forget(ctx context.Context, notice *models.MatchNotice, logger zerolog.Logger) {
	if err := d.ledger.Forget(context.WithoutCancel(ctx), NoticeKey(notice)); err != nil {
		logger.Warn().Err(err).Msg("Notification ledger cleanup failed")
	}
}

// LogNotifier logs notices instead of sending them. It is used when email
// delivery is disabled.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logging.WithComponent("notify")}
}

func (n *LogNotifier) NotifyMatch(ctx context.Context, notice models.MatchNotice) error {
	logger := logging.CtxWith(logging.ContextWithLogger(ctx, n.logger)).Logger()
	logger.Info().
		Str("to", logging.RedactEmail(notice.Recipient.Email)).
		Str("lost_id", notice.Lost.ID).
		Str("found_id", notice.Found.ID).
		Int("score", notice.Score).
		Msg("Match notice (email disabled)")
	return nil
}
