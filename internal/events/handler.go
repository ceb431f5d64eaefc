// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/metrics"
	"github.com/tomtom215/lostfound/internal/models"
)

// Processor runs match processing for one item.
type Processor interface {
	ProcessAndNotify(ctx context.Context, itemID string) []models.Match
}

// ApprovalHandler consumes item.approved and processes matches for the item.
type ApprovalHandler struct {
	processor Processor
	logger    zerolog.Logger
}

// NewApprovalHandler creates a handler backed by processor.
func NewApprovalHandler(processor Processor) *ApprovalHandler {
	return &ApprovalHandler{
		processor: processor,
		logger:    logging.WithComponent("events"),
	}
}

// Register subscribes the handler on bus.
func (h *ApprovalHandler) Register(bus *Bus) {
	bus.Subscribe("match-on-approval", TopicItemApproved, h.Handle)
}

// Handle processes one message. Malformed payloads return an error and end
// up in the poison queue once retries run out.
func (h *ApprovalHandler) Handle(msg *message.Message) error {
	ev, err := DecodeItemEvent(msg.Payload)
	if err != nil {
		h.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Malformed item event")
		metrics.RecordEventHandled(TopicItemApproved, err)
		return err
	}

	correlationID := middleware.MessageCorrelationID(msg)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}
	ctx := logging.ContextWithCorrelationID(msg.Context(), correlationID)
	ctx = logging.ContextWithLogger(ctx, h.logger)

	matches := h.processor.ProcessAndNotify(ctx, ev.ItemID)

	logging.Ctx(ctx).Debug().
		Str("item_id", ev.ItemID).
		Str("item_type", string(ev.ItemType)).
		Int("matches", len(matches)).
		Msg("Processed approved item")
	metrics.RecordEventHandled(TopicItemApproved, nil)
	return nil
}
