// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/models"
)

// testDBSemaphore serializes DuckDB instances across parallel tests. Each
// test holds it until cleanup so only one connection is active at a time.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates a new in-memory test database with timeout protection.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "256MB",
		Threads:   2,
	}

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		db, err := New(cfg)
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

func strPtr(s string) *string { return &s }

func dayPtr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func mustCreateItem(t *testing.T, db *DB, item models.Item) models.Item {
	t.Helper()
	if err := db.CreateItem(context.Background(), &item); err != nil {
		t.Fatalf("CreateItem(%s) error = %v", item.ItemName, err)
	}
	return item
}

func TestCreateAndGetItem(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.Seed(ctx, false); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	owner := models.User{Username: "alice", Email: "alice@uni.edu", NotificationPreferences: models.DefaultNotificationPreferences()}
	if err := db.CreateUser(ctx, &owner); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	created := mustCreateItem(t, db, models.Item{
		Type:          models.ItemTypeLost,
		CategoryID:    strPtr("wallets"),
		LocationID:    strPtr("main-library"),
		ItemName:      "Black Wallet",
		Description:   "leather wallet with cards",
		DateLostFound: dayPtr("2024-01-10"),
		ReportedBy:    &owner.ID,
		ReporterName:  "Alice",
		ContactInfo:   "call 555-0101",
	})
	if created.ID == "" {
		t.Fatal("CreateItem should assign an ID")
	}

	got, err := db.GetItem(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}

	if got.Status != models.StatusPending {
		t.Errorf("Status = %s, want pending by default", got.Status)
	}
	if got.Location != "Main Library" {
		t.Errorf("Location = %q, want the resolved location name", got.Location)
	}
	if got.CategoryName() != "Wallets & Cards" {
		t.Errorf("CategoryName() = %q, want Wallets & Cards", got.CategoryName())
	}
	if got.Reporter == nil || got.Reporter.Username != "alice" || got.Reporter.Email != "alice@uni.edu" {
		t.Errorf("Reporter = %+v, want resolved alice", got.Reporter)
	}
	if got.DateLostFound == nil || !got.DateLostFound.Equal(*dayPtr("2024-01-10")) {
		t.Errorf("DateLostFound = %v, want 2024-01-10", got.DateLostFound)
	}
	if got.ContactInfo != "call 555-0101" {
		t.Errorf("ContactInfo = %q", got.ContactInfo)
	}
	if got.PotentialMatches == nil || len(got.PotentialMatches) != 0 {
		t.Errorf("PotentialMatches = %#v, want empty", got.PotentialMatches)
	}
}

func TestCreateItem_CustomLocationAndValidation(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, db, models.Item{
		Type:           models.ItemTypeFound,
		ItemName:       "Umbrella",
		CustomLocation: strPtr("Bus stop near gate 3"),
	})
	got, err := db.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if got.Location != "Bus stop near gate 3" {
		t.Errorf("Location = %q, want the custom location", got.Location)
	}
	if got.CategoryID != nil || got.Category != nil || got.DateLostFound != nil || got.Reporter != nil {
		t.Errorf("optional fields should stay empty, got %+v", got)
	}

	if err := db.CreateItem(ctx, &models.Item{Type: "misplaced", ItemName: "x"}); err == nil {
		t.Error("expected invalid type to be rejected")
	}
}

func TestGetItem_NotFound(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)

	_, err := db.GetItem(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrItemNotFound) || !errors.Is(err, models.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestFindItems_FiltersInStorageOrder(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	lost := mustCreateItem(t, db, models.Item{Type: models.ItemTypeLost, Status: models.StatusApproved, ItemName: "Wallet"})
	f1 := mustCreateItem(t, db, models.Item{Type: models.ItemTypeFound, Status: models.StatusApproved, ItemName: "Wallet A"})
	mustCreateItem(t, db, models.Item{Type: models.ItemTypeFound, Status: models.StatusPending, ItemName: "Wallet B"})
	f3 := mustCreateItem(t, db, models.Item{Type: models.ItemTypeFound, Status: models.StatusApproved, ItemName: "Wallet C"})

	got, err := db.FindItems(ctx, models.ItemFilter{
		Type:      models.ItemTypeFound,
		Status:    models.StatusApproved,
		ExcludeID: lost.ID,
	})
	if err != nil {
		t.Fatalf("FindItems() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != f1.ID || got[1].ID != f3.ID {
		t.Errorf("FindItems() = %v, want [%s %s] in insertion order", ids(got), f1.ID, f3.ID)
	}

	all, err := db.FindItems(ctx, models.ItemFilter{Status: models.StatusApproved, ExcludeID: f1.ID})
	if err != nil {
		t.Fatalf("FindItems() error = %v", err)
	}
	if len(all) != 2 || all[0].ID != lost.ID || all[1].ID != f3.ID {
		t.Errorf("FindItems() = %v, want [%s %s]", ids(all), lost.ID, f3.ID)
	}

	none, err := db.FindItems(ctx, models.ItemFilter{Status: models.StatusClaimed})
	if err != nil {
		t.Fatalf("FindItems() error = %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}
}

func TestUpdateMatchCache_Overwrites(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, db, models.Item{Type: models.ItemTypeLost, ItemName: "Keys"})
	at := time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC)

	first := []models.MatchEntry{
		{ItemID: "a", Score: 90, MatchedAt: at},
		{ItemID: "b", Score: 70, MatchedAt: at},
	}
	if err := db.UpdateMatchCache(ctx, item.ID, first); err != nil {
		t.Fatalf("UpdateMatchCache() error = %v", err)
	}
	got, err := db.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if len(got.PotentialMatches) != 2 || got.PotentialMatches[0].ItemID != "a" || got.PotentialMatches[1].Score != 70 {
		t.Errorf("PotentialMatches = %+v", got.PotentialMatches)
	}
	if !got.PotentialMatches[0].MatchedAt.Equal(at) {
		t.Errorf("MatchedAt = %v, want %v", got.PotentialMatches[0].MatchedAt, at)
	}

	if err := db.UpdateMatchCache(ctx, item.ID, nil); err != nil {
		t.Fatalf("UpdateMatchCache(nil) error = %v", err)
	}
	got, err = db.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if len(got.PotentialMatches) != 0 {
		t.Errorf("expected cache cleared, got %+v", got.PotentialMatches)
	}

	if err := db.UpdateMatchCache(ctx, "missing", first); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestDismissMatch(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, db, models.Item{Type: models.ItemTypeLost, ItemName: "Keys"})
	if err := db.UpdateMatchCache(ctx, item.ID, []models.MatchEntry{
		{ItemID: "a", Score: 90},
		{ItemID: "b", Score: 70},
	}); err != nil {
		t.Fatalf("UpdateMatchCache() error = %v", err)
	}

	if err := db.DismissMatch(ctx, item.ID, "b"); err != nil {
		t.Fatalf("DismissMatch() error = %v", err)
	}
	got, err := db.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if got.PotentialMatches[0].Dismissed || !got.PotentialMatches[1].Dismissed {
		t.Errorf("only b should be dismissed, got %+v", got.PotentialMatches)
	}

	if err := db.DismissMatch(ctx, item.ID, "zzz"); !errors.Is(err, ErrMatchNotCached) {
		t.Errorf("expected ErrMatchNotCached, got %v", err)
	}
	if err := db.DismissMatch(ctx, "missing", "a"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, db, models.Item{Type: models.ItemTypeFound, ItemName: "Laptop"})

	if _, err := db.UpdateStatus(ctx, item.ID, models.StatusClaimed); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("pending -> claimed: expected ErrInvalidTransition, got %v", err)
	}

	got, err := db.UpdateStatus(ctx, item.ID, models.StatusApproved)
	if err != nil {
		t.Fatalf("pending -> approved error = %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("Status = %s, want approved", got.Status)
	}

	if _, err := db.UpdateStatus(ctx, item.ID, models.StatusClaimed); err != nil {
		t.Errorf("approved -> claimed error = %v", err)
	}
	if _, err := db.UpdateStatus(ctx, item.ID, models.StatusApproved); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("claimed -> approved: expected ErrInvalidTransition, got %v", err)
	}
	if _, err := db.UpdateStatus(ctx, "missing", models.StatusApproved); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	item := mustCreateItem(t, db, models.Item{Type: models.ItemTypeFound, ItemName: "Scarf"})
	if err := db.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	if _, err := db.GetItem(ctx, item.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected deleted item to be gone, got %v", err)
	}
	if err := db.DeleteItem(ctx, item.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("second delete: expected ErrItemNotFound, got %v", err)
	}
}

func TestUsersAndPreferences(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	user := models.User{Username: "bob", Email: "bob@uni.edu", NotificationPreferences: models.DefaultNotificationPreferences()}
	if err := db.CreateUser(ctx, &user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := db.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Email != "bob@uni.edu" || got.NotificationPreferences != models.DefaultNotificationPreferences() {
		t.Errorf("GetUser() = %+v", got)
	}

	wants, err := db.GetMatchNotificationPreference(ctx, user.ID)
	if err != nil || !wants {
		t.Errorf("GetMatchNotificationPreference() = %v, %v; want true, nil", wants, err)
	}

	prefs := models.DefaultNotificationPreferences()
	prefs.EmailOnMatch = false
	if err := db.UpdateNotificationPreferences(ctx, user.ID, prefs); err != nil {
		t.Fatalf("UpdateNotificationPreferences() error = %v", err)
	}
	wants, err = db.GetMatchNotificationPreference(ctx, user.ID)
	if err != nil || wants {
		t.Errorf("after opt-out: got %v, %v; want false, nil", wants, err)
	}

	// Unknown users get the default.
	wants, err = db.GetMatchNotificationPreference(ctx, "nobody")
	if err != nil || !wants {
		t.Errorf("unknown user: got %v, %v; want true, nil", wants, err)
	}

	if _, err := db.GetUser(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if err := db.UpdateNotificationPreferences(ctx, "nobody", prefs); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSeed_Idempotent(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	res, err := db.Seed(ctx, true)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if res.Items != 6 || res.Users != 3 {
		t.Errorf("Seed() = %+v, want 6 items and 3 users", res)
	}

	if _, err := db.Seed(ctx, true); err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}

	categories, err := db.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != len(defaultCategories) {
		t.Errorf("expected %d categories, got %d", len(defaultCategories), len(categories))
	}
	locations, err := db.ListLocations(ctx)
	if err != nil {
		t.Fatalf("ListLocations() error = %v", err)
	}
	if len(locations) != len(defaultLocations) {
		t.Errorf("expected %d locations, got %d", len(defaultLocations), len(locations))
	}

	items, err := db.FindItems(ctx, models.ItemFilter{})
	if err != nil {
		t.Fatalf("FindItems() error = %v", err)
	}
	if len(items) != 6 {
		t.Errorf("expected sample items inserted once, got %d", len(items))
	}
}

func ids(items []models.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}
