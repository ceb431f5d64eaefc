// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lostfound/config.yaml",
	"/etc/lostfound/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    3000,
			Timeout: 30 * time.Second,
			BaseURL: "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Path:        "/data/lostfound.duckdb",
			MaxMemory:   "512MB",
			Threads:     0,
			SeedOnStart: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Matching: MatchingConfig{
			UIMinScore:       40,
			DefaultMinScore:  50,
			NotifyMinScore:   60,
			CacheSize:        10,
			LostNotifyLimit:  1,
			FoundNotifyLimit: 3,
			SweepParallelism: 1,
		},
		Sweep: SweepConfig{
			Enabled:    false, // opt-in: every run may re-notify
			Interval:   24 * time.Hour,
			RunOnStart: false,
			LockPath:   "",
		},
		Notify: NotifyConfig{
			Enabled: false,
			SMTP: SMTPConfig{
				Port:     587,
				FromName: "Campus Lost & Found",
				UseTLS:   true,
				Timeout:  30 * time.Second,
			},
			QueueSize:        256,
			Workers:          2,
			RatePerSecond:    5,
			Burst:            10,
			BreakerThreshold: 5,
			BreakerTimeout:   60 * time.Second,
			Cooldown:         0,
			Ledger:           "none",
			LedgerPath:       "/data/notify-ledger",
			LedgerCapacity:   10000,
		},
		Events: EventsConfig{
			Enabled:      true,
			Backend:      "gochannel",
			NATSURL:      "nats://127.0.0.1:4222",
			EmbeddedNATS: true,
			StoreDir:     "/data/nats",
			MaxRetries:   3,
			RetryBackoff: 200 * time.Millisecond,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Config file (YAML)
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak in.
var envMappings = map[string]string{
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"base_url":     "server.base_url",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_on_start":     "database.seed_on_start",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"match_ui_min_score":       "matching.ui_min_score",
	"match_default_min_score":  "matching.default_min_score",
	"match_notify_min_score":   "matching.notify_min_score",
	"match_cache_size":         "matching.cache_size",
	"match_lost_notify_limit":  "matching.lost_notify_limit",
	"match_found_notify_limit": "matching.found_notify_limit",
	"match_sweep_parallelism":  "matching.sweep_parallelism",

	"sweep_enabled":      "sweep.enabled",
	"sweep_interval":     "sweep.interval",
	"sweep_run_on_start": "sweep.run_on_start",
	"sweep_lock_path":    "sweep.lock_path",

	"notify_enabled":           "notify.enabled",
	"smtp_host":                "notify.smtp.host",
	"smtp_port":                "notify.smtp.port",
	"smtp_username":            "notify.smtp.username",
	"smtp_password":            "notify.smtp.password",
	"smtp_from":                "notify.smtp.from",
	"smtp_from_name":           "notify.smtp.from_name",
	"smtp_use_tls":             "notify.smtp.use_tls",
	"smtp_timeout":             "notify.smtp.timeout",
	"notify_queue_size":        "notify.queue_size",
	"notify_workers":           "notify.workers",
	"notify_rate_per_second":   "notify.rate_per_second",
	"notify_burst":             "notify.burst",
	"notify_breaker_threshold": "notify.breaker_threshold",
	"notify_breaker_timeout":   "notify.breaker_timeout",
	"notify_cooldown":          "notify.cooldown",
	"notify_ledger":            "notify.ledger",
	"notify_ledger_path":       "notify.ledger_path",
	"notify_ledger_capacity":   "notify.ledger_capacity",

	"events_enabled":       "events.enabled",
	"events_backend":       "events.backend",
	"nats_url":             "events.nats_url",
	"nats_embedded":        "events.embedded_nats",
	"nats_store_dir":       "events.store_dir",
	"events_max_retries":   "events.max_retries",
	"events_retry_backoff": "events.retry_backoff",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc transforms environment variable names to koanf paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - MATCH_NOTIFY_MIN_SCORE -> matching.notify_min_score
//   - SMTP_HOST -> notify.smtp.host
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
