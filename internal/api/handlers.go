// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lostfound/internal/database"
	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/models"
	"github.com/tomtom215/lostfound/internal/sweep"
	"github.com/tomtom215/lostfound/internal/validation"
)

// maxBodyBytes caps request bodies. Score requests carry two item snapshots.
const maxBodyBytes = 64 << 10

// ItemStore is the part of the item store the handlers read and write.
type ItemStore interface {
	GetItem(ctx context.Context, id string) (*models.Item, error)
	UpdateStatus(ctx context.Context, id string, next models.ItemStatus) (*models.Item, error)
	DismissMatch(ctx context.Context, itemID, matchedID string) error
	Ping(ctx context.Context) error
}

// Matcher is the matching engine surface used by the handlers.
type Matcher interface {
	FindMatches(ctx context.Context, item *models.Item, minScore int) []models.Match
	GetItemMatches(ctx context.Context, itemID string) []models.Match
	CachedMatches(ctx context.Context, itemID string) ([]models.CachedMatch, error)
	ProcessAndNotify(ctx context.Context, itemID string) []models.Match
}

// EventPublisher hands approvals to the event bus.
type EventPublisher interface {
	PublishItemApproved(ctx context.Context, item *models.Item) error
}

// SweepRunner runs one batch sweep on demand.
type SweepRunner interface {
	RunOnce(ctx context.Context) (matching.SweepResult, error)
	LastRun() *sweep.Run
}

// NotifierStatus reports the state of the notification dispatcher.
type NotifierStatus interface {
	QueueDepth() int
	BreakerState() gobreaker.State
}

// Handler serves the HTTP API.
type Handler struct {
	store     ItemStore
	matcher   Matcher
	events    EventPublisher
	sweeper   SweepRunner
	notifier  NotifierStatus
	logger    zerolog.Logger
	startTime time.Time
	version   string
}

// HandlerOption configures optional collaborators.
type HandlerOption func(*Handler)

// WithEventPublisher routes approvals through the event bus. Without one,
// approval runs the matching pass inline.
func WithEventPublisher(p EventPublisher) HandlerOption {
	return func(h *Handler) { h.events = p }
}

// WithSweepRunner enables POST /api/v1/matching/sweep.
func WithSweepRunner(s SweepRunner) HandlerOption {
	return func(h *Handler) { h.sweeper = s }
}

// WithNotifierStatus adds dispatcher state to the health report.
func WithNotifierStatus(n NotifierStatus) HandlerOption {
	return func(h *Handler) { h.notifier = n }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

// NewHandler creates the API handler.
func NewHandler(store ItemStore, matcher Matcher, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:     store,
		matcher:   matcher,
		logger:    logging.WithComponent("api"),
		startTime: time.Now(),
		version:   "dev",
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// log returns the component logger enriched with the request's IDs.
func (h *Handler) log(r *http.Request) *zerolog.Logger {
	l := logging.CtxWith(logging.ContextWithLogger(r.Context(), h.logger)).Logger()
	return &l
}

// loadItem fetches an item and writes the error response when it fails.
func (h *Handler) loadItem(rw *ResponseWriter, r *http.Request, id string) (*models.Item, bool) {
	item, err := h.store.GetItem(r.Context(), id)
	if err != nil {
		h.writeStoreError(rw, err)
		return nil, false
	}
	return item, true
}

// writeStoreError maps store errors to responses.
func (h *Handler) writeStoreError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		rw.NotFound("Item not found")
	case errors.Is(err, database.ErrMatchNotCached):
		rw.NotFound("Match not found in the item's match cache")
	case errors.Is(err, models.ErrInvalidTransition):
		rw.Conflict(err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		rw.ServiceUnavailable("Request cancelled")
	default:
		rw.DatabaseError(err)
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. On failure
// the 400 response is already written.
func decodeAndValidate(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	data, err := io.ReadAll(http.MaxBytesReader(rw.w, r.Body, maxBodyBytes))
	if err != nil {
		rw.BadRequest("Request body too large or unreadable")
		return false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		rw.BadRequest("Request body is required")
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return false
	}
	return true
}
