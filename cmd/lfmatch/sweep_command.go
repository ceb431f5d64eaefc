// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/notify"
)

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the batch sweep once",
		Long: "Processes every approved item: recomputes its match cache and sends\n" +
			"notifications for strong matches. Email is only sent when notify.enabled\n" +
			"is set; otherwise notices are logged.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := ctx.openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			notifier, closeNotifier, err := sweepNotifier(cmd, cfg)
			if err != nil {
				return err
			}

			engine := matching.NewEngine(db, db, notifier, matching.ConfigFrom(&cfg.Matching))
			res, sweepErr := engine.Sweep(cmd.Context())

			// Drain queued notices before reporting.
			if err := closeNotifier(); err != nil {
				return fmt.Errorf("notifier: %w", err)
			}
			if sweepErr != nil {
				return sweepErr
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Swept %d approved items, %d matches in %s\n",
				res.Items, res.Matches, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
}

// sweepNotifier starts a dispatcher when email is enabled. The returned
// func drains and closes it.
func sweepNotifier(cmd *cobra.Command, cfg *config.Config) (matching.Notifier, func() error, error) {
	if !cfg.Notify.Enabled {
		return notify.NewLogNotifier(), func() error { return nil }, nil
	}
	ledger, err := notify.NewLedger(&cfg.Notify)
	if err != nil {
		return nil, nil, err
	}
	d := notify.NewDispatcher(&cfg.Notify,
		notify.NewSMTPSender(cfg.Notify.SMTP),
		notify.NewMatchRenderer(cfg.Server.BaseURL),
		notify.WithLedger(ledger),
	)
	d.Start(cmd.Context())
	return d, d.Close, nil
}
