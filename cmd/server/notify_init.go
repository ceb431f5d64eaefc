// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package main

import (
	"fmt"

	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/notify"
)

// notifierSet carries the notifier handed to the engine and, when email is
// enabled, the dispatcher behind it. dispatcher is nil otherwise.
type notifierSet struct {
	matcher    matching.Notifier
	dispatcher *notify.Dispatcher
}

// initNotifier builds the SMTP dispatcher when notifications are enabled and
// a log-only notifier otherwise.
func initNotifier(cfg *config.Config) (notifierSet, error) {
	if !cfg.Notify.Enabled {
		logging.Info().Msg("Email notifications disabled, match notices will be logged")
		return notifierSet{matcher: notify.NewLogNotifier()}, nil
	}

	ledger, err := notify.NewLedger(&cfg.Notify)
	if err != nil {
		return notifierSet{}, fmt.Errorf("notification ledger: %w", err)
	}

	d := notify.NewDispatcher(&cfg.Notify,
		notify.NewSMTPSender(cfg.Notify.SMTP),
		notify.NewMatchRenderer(cfg.Server.BaseURL),
		notify.WithLedger(ledger),
	)

	logging.Info().
		Str("smtp_host", cfg.Notify.SMTP.Host).
		Int("workers", cfg.Notify.Workers).
		Dur("cooldown", cfg.Notify.Cooldown).
		Str("ledger", cfg.Notify.Ledger).
		Msg("Email notifications enabled")

	return notifierSet{matcher: d, dispatcher: d}, nil
}
