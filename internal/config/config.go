// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

// Package config loads and validates runtime configuration for the matching
// service.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML file (CONFIG_PATH or config.yaml)
//  3. Environment Variables: explicit env-to-key mappings, highest priority
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
	Matching MatchingConfig `koanf:"matching"`
	Sweep    SweepConfig    `koanf:"sweep"`
	Notify   NotifyConfig   `koanf:"notify"`
	Events   EventsConfig   `koanf:"events"`
	Security SecurityConfig `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
//   - BASE_URL: public URL used in notification links
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
	BaseURL string        `koanf:"base_url"`
}

// DatabaseConfig holds DuckDB settings for the item store.
type DatabaseConfig struct {
	// Path is the DuckDB file. ":memory:" opens a private in-memory database.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads limits DuckDB worker threads; 0 uses runtime.NumCPU().
	Threads     int  `koanf:"threads"`
	SeedOnStart bool `koanf:"seed_on_start"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, console or auto
	Caller bool   `koanf:"caller"`
}

// MatchingConfig holds the thresholds and fan-out limits used by the
// matching engine. The default values are calibrated against the fixed
// 100-point scoring scale and should only change together with it.
type MatchingConfig struct {
	UIMinScore       int `koanf:"ui_min_score"`
	DefaultMinScore  int `koanf:"default_min_score"`
	NotifyMinScore   int `koanf:"notify_min_score"`
	CacheSize        int `koanf:"cache_size"`
	LostNotifyLimit  int `koanf:"lost_notify_limit"`
	FoundNotifyLimit int `koanf:"found_notify_limit"`

	// SweepParallelism is the number of items processed concurrently by a
	// batch sweep. 1 keeps the sweep sequential.
	SweepParallelism int `koanf:"sweep_parallelism"`
}

// SweepConfig controls the periodic batch sweep.
type SweepConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Interval   time.Duration `koanf:"interval"`
	RunOnStart bool          `koanf:"run_on_start"`

	// LockPath is an optional lock file; when set, only the process holding
	// the lock runs a sweep.
	LockPath string `koanf:"lock_path"`
}

// NotifyConfig holds match notification delivery settings.
type NotifyConfig struct {
	Enabled bool       `koanf:"enabled"`
	SMTP    SMTPConfig `koanf:"smtp"`

	QueueSize int `koanf:"queue_size"`
	Workers   int `koanf:"workers"`

	// RatePerSecond limits outgoing emails; 0 disables limiting.
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`

	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`

	// Cooldown suppresses repeated notices for the same lost/found pair.
	// Zero disables it, which means every sweep may notify again.
	Cooldown       time.Duration `koanf:"cooldown"`
	Ledger         string        `koanf:"ledger"` // none, memory or badger
	LedgerPath     string        `koanf:"ledger_path"`
	LedgerCapacity int           `koanf:"ledger_capacity"`
}

// SMTPConfig holds SMTP server settings.
type SMTPConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"`
	FromName string        `koanf:"from_name"`
	UseTLS   bool          `koanf:"use_tls"`
	Timeout  time.Duration `koanf:"timeout"`
}

// EventsConfig controls the item lifecycle event bus.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`

	// Backend selects the transport: gochannel (in-process) or nats.
	// The nats backend requires a binary built with -tags nats.
	Backend      string        `koanf:"backend"`
	NATSURL      string        `koanf:"nats_url"`
	EmbeddedNATS bool          `koanf:"embedded_nats"`
	StoreDir     string        `koanf:"store_dir"`
	MaxRetries   int           `koanf:"max_retries"`
	RetryBackoff time.Duration `koanf:"retry_backoff"`
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Load reads configuration from defaults, the optional config file and the
// environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
