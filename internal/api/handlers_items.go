// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/lostfound/internal/models"
	"github.com/tomtom215/lostfound/internal/validation"
)

const (
	// maxMatchViews caps the matches returned to the item page.
	maxMatchViews = 10

	// descriptionPreviewLen is the preview length in characters.
	descriptionPreviewLen = 100
)

// MatchView is the item-page projection of a match.
type MatchView struct {
	ID            string          `json:"id"`
	ItemName      string          `json:"item_name"`
	Description   string          `json:"description"`
	Location      string          `json:"location"`
	Type          models.ItemType `json:"type"`
	ImagePath     *string         `json:"image_path,omitempty"`
	Category      string          `json:"category,omitempty"`
	DateLostFound *time.Time      `json:"date_lost_found,omitempty"`
	Score         int             `json:"score"`
}

// NewMatchView projects one match.
func NewMatchView(m *models.Match) MatchView {
	return MatchView{
		ID:            m.Item.ID,
		ItemName:      m.Item.ItemName,
		Description:   previewDescription(m.Item.Description),
		Location:      m.Item.Location,
		Type:          m.Item.Type,
		ImagePath:     m.Item.ImagePath,
		Category:      m.Item.CategoryName(),
		DateLostFound: m.Item.DateLostFound,
		Score:         m.Score,
	}
}

// matchViews projects at most maxMatchViews matches, keeping rank order.
func matchViews(matches []models.Match) []MatchView {
	n := min(len(matches), maxMatchViews)
	views := make([]MatchView, n)
	for i := range views {
		views[i] = NewMatchView(&matches[i])
	}
	return views
}

// previewDescription keeps the first 100 characters and always appends an
// ellipsis, so a preview is never mistaken for the full text.
func previewDescription(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) > descriptionPreviewLen {
		runes = runes[:descriptionPreviewLen]
	}
	return string(runes) + "..."
}

// GetItem handles GET /api/v1/items/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	item, ok := h.loadItem(rw, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	rw.Success(item)
}

type matchesQuery struct {
	MinScore *int `json:"min_score" validate:"omitempty,minscore"`
}

// ItemMatches handles GET /api/v1/items/{id}/matches. Matches are computed
// fresh at the interactive threshold unless min_score overrides it; the
// persisted cache is not read.
func (h *Handler) ItemMatches(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var q matchesQuery
	if raw := r.URL.Query().Get("min_score"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			rw.ValidationError("min_score must be an integer", map[string]interface{}{"field": "min_score"})
			return
		}
		q.MinScore = &v
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	item, ok := h.loadItem(rw, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var matches []models.Match
	if q.MinScore != nil {
		matches = h.matcher.FindMatches(r.Context(), item, *q.MinScore)
	} else {
		matches = h.matcher.GetItemMatches(r.Context(), item.ID)
	}

	views := matchViews(matches)
	rw.SuccessList(views, len(views))
}

// CachedMatches handles GET /api/v1/items/{id}/matches/cached.
func (h *Handler) CachedMatches(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	cached, err := h.matcher.CachedMatches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(rw, err)
		return
	}
	rw.SuccessList(cached, len(cached))
}

// ProcessMatches handles POST /api/v1/items/{id}/matches/process. It runs
// the full pass: compute, notify, and rewrite the cache.
func (h *Handler) ProcessMatches(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	item, ok := h.loadItem(rw, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	matches := h.matcher.ProcessAndNotify(r.Context(), item.ID)
	h.log(r).Info().
		Str("item_id", item.ID).
		Str("item_type", string(item.Type)).
		Int("matches", len(matches)).
		Msg("Processed item matches on request")

	views := matchViews(matches)
	rw.SuccessList(views, len(views))
}

// DismissMatch handles POST /api/v1/items/{id}/matches/{matchedId}/dismiss.
func (h *Handler) DismissMatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	itemID, matchedID := chi.URLParam(r, "id"), chi.URLParam(r, "matchedId")

	if err := h.store.DismissMatch(r.Context(), itemID, matchedID); err != nil {
		h.writeStoreError(rw, err)
		return
	}
	rw.Success(map[string]interface{}{
		"item_id":    itemID,
		"matched_id": matchedID,
		"dismissed":  true,
	})
}

// ApprovalResult reports how matching was triggered for an approved item.
type ApprovalResult struct {
	Item     *models.Item `json:"item"`
	Matching string       `json:"matching"` // queued | processed | none
	Matches  []MatchView  `json:"matches,omitempty"`
}

// ApproveItem handles POST /api/v1/items/{id}/approve.
func (h *Handler) ApproveItem(w http.ResponseWriter, r *http.Request) {
	h.transition(NewResponseWriter(w, r), r, chi.URLParam(r, "id"), models.StatusApproved)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,itemstatus"`
}

// UpdateStatus handles POST /api/v1/items/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req statusRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	h.transition(rw, r, chi.URLParam(r, "id"), models.ItemStatus(req.Status))
}

// transition applies a status change. Entering approved triggers matching,
// through the event bus when one is configured and inline otherwise. A
// failed publish falls back to the inline pass.
func (h *Handler) transition(rw *ResponseWriter, r *http.Request, id string, next models.ItemStatus) {
	item, err := h.store.UpdateStatus(r.Context(), id, next)
	if err != nil {
		h.writeStoreError(rw, err)
		return
	}

	logger := h.log(r)
	logger.Info().
		Str("item_id", item.ID).
		Str("item_type", string(item.Type)).
		Str("status", string(next)).
		Msg("Item status changed")

	result := ApprovalResult{Item: item, Matching: "none"}
	if next != models.StatusApproved {
		rw.Success(result)
		return
	}

	if h.events != nil {
		err := h.events.PublishItemApproved(r.Context(), item)
		if err == nil {
			result.Matching = "queued"
			rw.Accepted(result)
			return
		}
		logger.Warn().Err(err).Str("item_id", item.ID).Msg("Publish approval failed, matching inline")
	}

	result.Matching = "processed"
	result.Matches = matchViews(h.matcher.ProcessAndNotify(r.Context(), item.ID))
	rw.Success(result)
}
