// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package main

import (
	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/events"
	"github.com/tomtom215/lostfound/internal/logging"
)

// initEvents creates the event bus and subscribes the approval handler.
// It returns nil when events are disabled; approval then matches inline.
func initEvents(cfg *config.Config, processor events.Processor) (*events.Bus, error) {
	if !cfg.Events.Enabled {
		logging.Info().Msg("Event bus disabled, approvals are processed inline")
		return nil, nil
	}

	bus, err := events.NewBus(&cfg.Events)
	if err != nil {
		return nil, err
	}
	events.NewApprovalHandler(processor).Register(bus)
	return bus, nil
}
