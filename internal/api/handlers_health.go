// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string      `json:"status"` // healthy | degraded
	Version           string      `json:"version"`
	DatabaseConnected bool        `json:"database_connected"`
	Uptime            float64     `json:"uptime_seconds"`
	Notifier          *NotifierHC `json:"notifier,omitempty"`
	LastSweep         *SweepHC    `json:"last_sweep,omitempty"`
}

// NotifierHC summarizes the dispatcher.
type NotifierHC struct {
	QueueDepth int    `json:"queue_depth"`
	Breaker    string `json:"breaker"`
}

// SweepHC summarizes the most recent sweep.
type SweepHC struct {
	StartedAt time.Time `json:"started_at"`
	Items     int       `json:"items"`
	Matches   int       `json:"matches"`
	Error     string    `json:"error,omitempty"`
}

// healthPingTimeout bounds the database ping so a wedged store cannot hang
// the health check.
const healthPingTimeout = 2 * time.Second

// Health handles GET /health. It answers 200 while the database responds
// and 503 otherwise; the notifier and sweep sections are informational.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	dbConnected := h.store != nil && h.store.Ping(ctx) == nil

	health := HealthStatus{
		Status:            "healthy",
		Version:           h.version,
		DatabaseConnected: dbConnected,
		Uptime:            time.Since(h.startTime).Seconds(),
	}
	if h.notifier != nil {
		health.Notifier = &NotifierHC{
			QueueDepth: h.notifier.QueueDepth(),
			Breaker:    h.notifier.BreakerState().String(),
		}
	}
	if h.sweeper != nil {
		if last := h.sweeper.LastRun(); last != nil {
			health.LastSweep = &SweepHC{
				StartedAt: last.StartedAt,
				Items:     last.Result.Items,
				Matches:   last.Result.Matches,
			}
			if last.Err != nil {
				health.LastSweep.Error = last.Err.Error()
			}
		}
	}

	if !dbConnected {
		health.Status = "degraded"
		rw.writeJSON(http.StatusServiceUnavailable, APIResponse{Success: false, Data: health, Meta: rw.meta()})
		return
	}
	rw.Success(health)
}
