// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateMatching(); err != nil {
		return err
	}

	if err := c.validateSweep(); err != nil {
		return err
	}

	if err := c.validateNotify(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

// validateMatching enforces 0 <= ui <= default <= 100 and sane limits.
// The notify threshold is only bounded; it is normally the strictest.
func (c *Config) validateMatching() error {
	m := c.Matching
	if m.UIMinScore < 0 || m.UIMinScore > 100 {
		return fmt.Errorf("MATCH_UI_MIN_SCORE must be between 0 and 100, got %d", m.UIMinScore)
	}
	if m.DefaultMinScore < m.UIMinScore || m.DefaultMinScore > 100 {
		return fmt.Errorf("MATCH_DEFAULT_MIN_SCORE must be between MATCH_UI_MIN_SCORE (%d) and 100, got %d",
			m.UIMinScore, m.DefaultMinScore)
	}
	if m.NotifyMinScore < 0 || m.NotifyMinScore > 100 {
		return fmt.Errorf("MATCH_NOTIFY_MIN_SCORE must be between 0 and 100, got %d", m.NotifyMinScore)
	}
	if m.CacheSize < 1 {
		return fmt.Errorf("MATCH_CACHE_SIZE must be at least 1, got %d", m.CacheSize)
	}
	if m.LostNotifyLimit < 0 || m.FoundNotifyLimit < 0 {
		return fmt.Errorf("match notify limits must be >= 0")
	}
	if m.SweepParallelism < 1 {
		return fmt.Errorf("MATCH_SWEEP_PARALLELISM must be at least 1, got %d", m.SweepParallelism)
	}
	return nil
}

func (c *Config) validateSweep() error {
	if c.Sweep.Enabled && c.Sweep.Interval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive when SWEEP_ENABLED=true")
	}
	return nil
}

func (c *Config) validateNotify() error {
	n := c.Notify
	switch strings.ToLower(n.Ledger) {
	case "", "none", "memory":
	case "badger":
		if n.LedgerPath == "" {
			return fmt.Errorf("NOTIFY_LEDGER_PATH is required when NOTIFY_LEDGER=badger")
		}
	default:
		return fmt.Errorf("NOTIFY_LEDGER must be one of none, memory, badger; got %q", n.Ledger)
	}
	if n.Cooldown < 0 {
		return fmt.Errorf("NOTIFY_COOLDOWN must be >= 0, got %v", n.Cooldown)
	}

	if !n.Enabled {
		return nil
	}
	if n.SMTP.Host == "" {
		return fmt.Errorf("SMTP_HOST is required when NOTIFY_ENABLED=true")
	}
	if n.SMTP.From == "" {
		return fmt.Errorf("SMTP_FROM is required when NOTIFY_ENABLED=true")
	}
	if n.SMTP.Port < 1 || n.SMTP.Port > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535, got %d", n.SMTP.Port)
	}
	if n.Workers < 1 {
		return fmt.Errorf("NOTIFY_WORKERS must be at least 1, got %d", n.Workers)
	}
	if n.QueueSize < 1 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be at least 1, got %d", n.QueueSize)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	switch c.Events.Backend {
	case "gochannel":
	case "nats":
		if !c.Events.EmbeddedNATS && c.Events.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when EVENTS_BACKEND=nats without an embedded server")
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be gochannel or nats, got %q", c.Events.Backend)
	}
	if c.Events.MaxRetries < 0 {
		return fmt.Errorf("EVENTS_MAX_RETRIES must be >= 0, got %d", c.Events.MaxRetries)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console", "auto":
	default:
		return fmt.Errorf("LOG_FORMAT must be json, console or auto, got %q", c.Logging.Format)
	}
	return nil
}
