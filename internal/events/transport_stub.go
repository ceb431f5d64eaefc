// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

//go:build !nats

package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/lostfound/internal/config"
)

func newNATSTransport(_ *config.EventsConfig, _ watermill.LoggerAdapter) (*transport, error) {
	return nil, ErrNATSNotEnabled
}
