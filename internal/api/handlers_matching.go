// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/models"
	"github.com/tomtom215/lostfound/internal/sweep"
)

// ItemSnapshot carries the fields the score function reads.
type ItemSnapshot struct {
	CategoryID    *string    `json:"category_id"`
	Location      string     `json:"location" validate:"max=500"`
	ItemName      string     `json:"item_name" validate:"max=200"`
	Description   string     `json:"description" validate:"max=5000"`
	DateLostFound *time.Time `json:"date_lost_found"`
}

func (s *ItemSnapshot) item(typ models.ItemType) *models.Item {
	return &models.Item{
		Type:          typ,
		CategoryID:    s.CategoryID,
		Location:      s.Location,
		ItemName:      s.ItemName,
		Description:   s.Description,
		DateLostFound: s.DateLostFound,
	}
}

// ScoreRequest is the body of POST /api/v1/matching/score.
type ScoreRequest struct {
	Lost  *ItemSnapshot `json:"lost" validate:"required"`
	Found *ItemSnapshot `json:"found" validate:"required"`
}

// ScoreItems scores two snapshots without touching the store and returns
// the per-feature breakdown.
func (h *Handler) ScoreItems(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	var req ScoreRequest
	if !decodeAndValidate(rw, r, &req) {
		return
	}
	rw.Success(matching.Explain(req.Lost.item(models.ItemTypeLost), req.Found.item(models.ItemTypeFound)))
}

// SweepResponse is the body of a sweep reply.
type SweepResponse struct {
	Items      int   `json:"items"`
	Matches    int   `json:"matches"`
	DurationMs int64 `json:"duration_ms"`
}

// RunSweep handles POST /api/v1/matching/sweep. The sweep runs under the
// scheduler's lock, so a concurrent scheduled run is reported as a conflict.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.sweeper == nil {
		rw.ServiceUnavailable("Batch sweep is not configured")
		return
	}

	res, err := h.sweeper.RunOnce(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, sweep.ErrLocked):
		rw.Conflict("A sweep is already running")
		return
	default:
		h.writeStoreError(rw, err)
		return
	}

	rw.Success(SweepResponse{
		Items:      res.Items,
		Matches:    res.Matches,
		DurationMs: res.Duration.Milliseconds(),
	})
}
