// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package database

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/models"
)

type noticeRecorder struct {
	mu      sync.Mutex
	notices []models.MatchNotice
}

func (r *noticeRecorder) NotifyMatch(_ context.Context, n models.MatchNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func TestEngineOverDuckDB_ProcessAndNotify(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.Seed(ctx, true); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	lostItems, err := db.FindItems(ctx, models.ItemFilter{Type: models.ItemTypeLost, Status: models.StatusApproved})
	if err != nil {
		t.Fatalf("FindItems() error = %v", err)
	}
	if len(lostItems) != 1 {
		t.Fatalf("expected the one approved lost sample, got %d", len(lostItems))
	}
	phone := lostItems[0]

	rec := &noticeRecorder{}
	engine := matching.NewEngine(db, db, rec, matching.DefaultConfig(), matching.WithLogger(zerolog.Nop()))

	matches := engine.ProcessAndNotify(ctx, phone.ID)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match above the notify threshold, got %d", len(matches))
	}
	if matches[0].Item.ItemName != "Black iPhone" || matches[0].Score < 60 {
		t.Errorf("unexpected match %s scoring %d", matches[0].Item.ItemName, matches[0].Score)
	}

	if len(rec.notices) != 1 {
		t.Fatalf("expected 1 notice, got %d", len(rec.notices))
	}
	notice := rec.notices[0]
	if notice.Recipient.ID != "john" || notice.Recipient.Email != "john@campus.edu" {
		t.Errorf("recipient = %+v, want john", notice.Recipient)
	}
	if notice.Lost.ID != phone.ID || notice.Found.ID != matches[0].Item.ID {
		t.Errorf("notice pairs lost %s with found %s", notice.Lost.ID, notice.Found.ID)
	}

	cached, err := engine.CachedMatches(ctx, phone.ID)
	if err != nil {
		t.Fatalf("CachedMatches() error = %v", err)
	}
	if len(cached) != 1 || cached[0].Item == nil || cached[0].Entry.Score != matches[0].Score {
		t.Errorf("cache = %+v, want the single match", cached)
	}

	// The interactive threshold surfaces at least what the notify path did.
	if ui := engine.GetItemMatches(ctx, phone.ID); len(ui) < len(matches) {
		t.Errorf("GetItemMatches() returned %d, fewer than %d", len(ui), len(matches))
	}
}
