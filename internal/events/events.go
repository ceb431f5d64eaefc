// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

// Package events carries item lifecycle events over a Watermill bus.
//
// Approving an item publishes item.approved; the approval handler runs match
// processing for it outside the request path. The default transport is an
// in-process gochannel. Builds with -tags nats can use NATS JetStream,
// optionally with an embedded server.
//
// Router middleware, outer to inner:
//   - CorrelationID copies the correlation ID onto produced messages
//   - PoisonQueue moves messages that exhausted their retries to item.poison
//   - Retry re-runs failed handlers with exponential backoff
//   - Recoverer turns handler panics into errors
package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/lostfound/internal/models"
)

// Topics.
const (
	TopicItemApproved = "item.approved"
	TopicItemPoison   = "item.poison"
)

var (
	// ErrNATSNotEnabled is returned when the nats backend is selected in a
	// binary built without the nats tag.
	ErrNATSNotEnabled = errors.New("NATS event bus not enabled (build with -tags nats)")

	// ErrBusClosed is returned for publishes after Close.
	ErrBusClosed = errors.New("event bus closed")
)

// ItemEvent is the payload of an item lifecycle event.
type ItemEvent struct {
	EventID    string            `json:"event_id"`
	ItemID     string            `json:"item_id"`
	ItemType   models.ItemType   `json:"item_type"`
	Status     models.ItemStatus `json:"status"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewItemEvent builds an event describing item's current state.
func NewItemEvent(item *models.Item) *ItemEvent {
	return &ItemEvent{
		EventID:    uuid.New().String(),
		ItemID:     item.ID,
		ItemType:   item.Type,
		Status:     item.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// Message encodes the event as a Watermill message carrying correlationID.
func (e *ItemEvent) Message(correlationID string) (*message.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode item event: %w", err)
	}
	msg := message.NewMessage(e.EventID, data)
	msg.Metadata.Set("item_id", e.ItemID)
	msg.Metadata.Set("item_type", string(e.ItemType))
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, msg)
	}
	return msg, nil
}

// DecodeItemEvent parses a message payload.
func DecodeItemEvent(payload []byte) (*ItemEvent, error) {
	var ev ItemEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode item event: %w", err)
	}
	if ev.ItemID == "" {
		return nil, errors.New("decode item event: missing item_id")
	}
	return &ev, nil
}
