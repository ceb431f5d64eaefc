// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

// Package sweep runs the batch match sweep on an interval.
//
// A sweep re-processes every approved item and may notify again for pairs
// that were already notified, so the scheduler is opt-in. When a lock path
// is configured only the process holding the file lock runs a sweep; the
// others skip the tick.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/metrics"
)

// ErrLocked is returned by RunOnce when another sweep holds the lock, in this
// process or another.
var ErrLocked = errors.New("sweep already running")

// ErrAlreadyRunning is returned by Start on a running scheduler.
var ErrAlreadyRunning = errors.New("sweep scheduler already running")

// Sweeper runs one batch sweep.
type Sweeper interface {
	Sweep(ctx context.Context) (matching.SweepResult, error)
}

// Scheduler triggers sweeps on a ticker.
type Scheduler struct {
	sweeper Sweeper
	config  config.SweepConfig
	lock    *flock.Flock
	logger  zerolog.Logger

	// Serializes sweeps within the process; the file lock covers other
	// processes.
	sweepMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	last    *Run
}

// Run describes the outcome of the most recent sweep.
type Run struct {
	StartedAt time.Time
	Result    matching.SweepResult
	Err       error
}

// NewScheduler creates a scheduler for sweeper.
func NewScheduler(sweeper Sweeper, cfg config.SweepConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	s := &Scheduler{
		sweeper: sweeper,
		config:  cfg,
		logger:  logging.WithComponent("sweep"),
	}
	if cfg.LockPath != "" {
		s.lock = flock.New(cfg.LockPath)
	}
	return s
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info().Msg("Batch sweep disabled")
		go func() {
			defer close(s.doneCh)
			<-s.stopCh
		}()
		return nil
	}

	s.logger.Info().
		Dur("interval", s.config.Interval).
		Bool("run_on_start", s.config.RunOnStart).
		Str("lock_path", s.config.LockPath).
		Msg("Starting sweep scheduler")

	go s.run(ctx)
	return nil
}

// Stop stops the loop and waits for an in-flight sweep to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stopCh)
	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info().Msg("Sweep scheduler stopped")
	return nil
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastRun returns the most recent sweep, or nil before the first one.
func (s *Scheduler) LastRun() *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Cancel an in-flight sweep on Stop.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if s.config.RunOnStart {
		s.tick(ctx)
	}

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.RunOnce(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrLocked):
		s.logger.Info().Msg("Sweep skipped, another sweep is running")
	case errors.Is(err, context.Canceled):
		s.logger.Info().Msg("Sweep interrupted by shutdown")
	default:
		s.logger.Error().Err(err).Msg("Scheduled sweep failed")
	}
}

// RunOnce runs a sweep now, under the file lock when one is configured.
// Each sweep gets its own correlation ID.
func (s *Scheduler) RunOnce(ctx context.Context) (matching.SweepResult, error) {
	if !s.sweepMu.TryLock() {
		metrics.RecordSweepSkipped()
		return matching.SweepResult{}, ErrLocked
	}
	defer s.sweepMu.Unlock()

	if s.lock != nil {
		if err := os.MkdirAll(filepath.Dir(s.config.LockPath), 0o750); err != nil {
			return matching.SweepResult{}, fmt.Errorf("create lock directory: %w", err)
		}
		ok, err := s.lock.TryLock()
		if err != nil {
			return matching.SweepResult{}, fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !ok {
			metrics.RecordSweepSkipped()
			return matching.SweepResult{}, ErrLocked
		}
		defer func() {
			if err := s.lock.Unlock(); err != nil {
				s.logger.Warn().Err(err).Msg("Release sweep lock failed")
			}
		}()
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	started := time.Now()
	res, err := s.sweeper.Sweep(ctx)

	s.mu.Lock()
	s.last = &Run{StartedAt: started, Result: res, Err: err}
	s.mu.Unlock()

	if err == nil {
		logging.Ctx(ctx).Info().
			Int("items", res.Items).
			Int("matches", res.Matches).
			Dur("duration", res.Duration).
			Msg("Sweep complete")
	}
	return res, err
}
