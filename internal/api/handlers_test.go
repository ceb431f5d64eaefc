// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/database"
	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/models"
	"github.com/tomtom215/lostfound/internal/notify"
	"github.com/tomtom215/lostfound/internal/sweep"
)

// ===================================================================================================
// Fakes
// ===================================================================================================

// memStore is an in-memory item store satisfying both ItemStore and
// matching.Store.
type memStore struct {
	mu      sync.Mutex
	items   []models.Item
	pingErr error
}

func (s *memStore) find(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *memStore) GetItem(_ context.Context, id string) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(id)
	if i < 0 {
		return nil, fmt.Errorf("item %s: %w", id, models.ErrItemNotFound)
	}
	item := s.items[i]
	return &item, nil
}

func (s *memStore) FindItems(_ context.Context, f models.ItemFilter) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Item
	for _, it := range s.items {
		if (f.Type != "" && it.Type != f.Type) || (f.Status != "" && it.Status != f.Status) || it.ID == f.ExcludeID {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *memStore) UpdateMatchCache(_ context.Context, itemID string, entries []models.MatchEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(itemID)
	if i < 0 {
		return fmt.Errorf("item %s: %w", itemID, models.ErrItemNotFound)
	}
	s.items[i].PotentialMatches = entries
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, id string, next models.ItemStatus) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(id)
	if i < 0 {
		return nil, fmt.Errorf("item %s: %w", id, models.ErrItemNotFound)
	}
	if !s.items[i].Status.CanTransition(next) {
		return nil, fmt.Errorf("%s to %s: %w", s.items[i].Status, next, models.ErrInvalidTransition)
	}
	s.items[i].Status = next
	item := s.items[i]
	return &item, nil
}

func (s *memStore) DismissMatch(_ context.Context, itemID, matchedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(itemID)
	if i < 0 {
		return fmt.Errorf("item %s: %w", itemID, models.ErrItemNotFound)
	}
	for j := range s.items[i].PotentialMatches {
		if s.items[i].PotentialMatches[j].ItemID == matchedID {
			s.items[i].PotentialMatches[j].Dismissed = true
			return nil
		}
	}
	return database.ErrMatchNotCached
}

func (s *memStore) Ping(context.Context) error { return s.pingErr }

func (s *memStore) cache(itemID string) []models.MatchEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[s.find(itemID)].PotentialMatches
}

type noUsers struct{}

func (noUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	return nil, fmt.Errorf("user %s: %w", id, models.ErrUserNotFound)
}

func (noUsers) GetMatchNotificationPreference(context.Context, string) (bool, error) {
	return true, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	err       error
	published []string
}

func (p *fakePublisher) PublishItemApproved(_ context.Context, item *models.Item) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, item.ID)
	return nil
}

type fakeSweeper struct {
	res  matching.SweepResult
	err  error
	last *sweep.Run
}

func (f *fakeSweeper) RunOnce(context.Context) (matching.SweepResult, error) {
	return f.res, f.err
}

func (f *fakeSweeper) LastRun() *sweep.Run { return f.last }

type fakeNotifierStatus struct{}

func (fakeNotifierStatus) QueueDepth() int { return 3 }
func (fakeNotifierStatus) BreakerState() gobreaker.State { return gobreaker.StateOpen }

// ===================================================================================================
// Fixtures
// ===================================================================================================

const phoneDescription = "Blue case with a cracked screen protector, a lock screen photo of a " +
	"golden retriever, and a campus ID card tucked in the back pocket."

var fixtureDay = time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func phoneItem(id string, typ models.ItemType, status models.ItemStatus) models.Item {
	day := fixtureDay
	return models.Item{
		ID:            id,
		Type:          typ,
		Status:        status,
		CategoryID:    strPtr("cat-electronics"),
		Category:      &models.Category{ID: "cat-electronics", Name: "Electronics"},
		Location:      "Main Library",
		ItemName:      "Blue iPhone 13",
		Description:   phoneDescription,
		ImagePath:     strPtr("/uploads/phone.jpg"),
		DateLostFound: &day,
	}
}

func fixtureItems() []models.Item {
	return []models.Item{
		phoneItem("lost-1", models.ItemTypeLost, models.StatusApproved),
		phoneItem("found-1", models.ItemTypeFound, models.StatusApproved),
		{
			ID:          "found-2",
			Type:        models.ItemTypeFound,
			Status:      models.StatusApproved,
			CategoryID:  strPtr("cat-keys"),
			Location:    "Gym",
			ItemName:    "Car keys",
			Description: "Toyota key fob",
		},
		phoneItem("pending-1", models.ItemTypeLost, models.StatusPending),
	}
}

type testServer struct {
	store   *memStore
	handler http.Handler
}

func newTestServer(t *testing.T, opts ...HandlerOption) *testServer {
	t.Helper()
	store := &memStore{items: fixtureItems()}
	engine := matching.NewEngine(store, noUsers{}, notify.NewLogNotifier(), matching.DefaultConfig())
	mw := NewChiMiddleware(NewChiMiddlewareConfig(&config.SecurityConfig{RateLimitDisabled: true}))
	return &testServer{
		store:   store,
		handler: NewRouter(NewHandler(store, engine, opts...), mw).Setup(),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: response is not an envelope: %v\n%s", method, path, err, rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v\n%s", err, env.Data)
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, env envelope, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("status = %d, want %d (%s)", rec.Code, status, rec.Body.String())
	}
	if env.Success || env.Error == nil || env.Error.Code != code {
		t.Errorf("error = %+v, want code %s", env.Error, code)
	}
}

// ===================================================================================================
// Items
// ===================================================================================================

func TestGetItem(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/items/lost-1", "")
	if rec.Code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var item models.Item
	decodeData(t, env, &item)
	if item.ID != "lost-1" || item.Type != models.ItemTypeLost {
		t.Errorf("item = %+v", item)
	}
	if env.Meta == nil || env.Meta.RequestID == "" || env.Meta.RequestID != rec.Header().Get("X-Request-ID") {
		t.Errorf("meta = %+v, header = %q", env.Meta, rec.Header().Get("X-Request-ID"))
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/items/missing", "")
	expectError(t, rec, env, http.StatusNotFound, ErrCodeNotFound)
}

func TestItemMatches(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/items/lost-1/matches", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var views []MatchView
	decodeData(t, env, &views)
	if len(views) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(views), views)
	}
	v := views[0]
	if v.ID != "found-1" || v.Score != 100 || v.Category != "Electronics" || v.Type != models.ItemTypeFound {
		t.Errorf("view = %+v", v)
	}
	if v.ImagePath == nil || *v.ImagePath != "/uploads/phone.jpg" {
		t.Errorf("image path = %v", v.ImagePath)
	}
	if want := phoneDescription[:100] + "..."; v.Description != want {
		t.Errorf("description = %q, want %q", v.Description, want)
	}
	if env.Meta.Count == nil || *env.Meta.Count != 1 {
		t.Errorf("meta count = %v", env.Meta.Count)
	}

	// Fresh computation never writes the cache.
	if got := ts.store.cache("lost-1"); len(got) != 0 {
		t.Errorf("cache written by read path: %+v", got)
	}
}

func TestItemMatches_MinScoreOverride(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	_, env := ts.do(t, http.MethodGet, "/api/v1/items/found-2/matches?min_score=0", "")
	var views []MatchView
	decodeData(t, env, &views)
	// Both approved lost items: lost-1 only, pending-1 is not approved.
	if len(views) != 1 || views[0].ID != "lost-1" || views[0].Score != 0 {
		t.Errorf("views = %+v", views)
	}

	tests := []struct {
		name  string
		query string
	}{
		{"not a number", "abc"},
		{"above 100", "101"},
		{"negative", "-5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, env := ts.do(t, http.MethodGet, "/api/v1/items/lost-1/matches?min_score="+tt.query, "")
			expectError(t, rec, env, http.StatusBadRequest, ErrCodeValidationFailed)
		})
	}
}

func TestItemMatches_UnknownItem(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	rec, env := ts.do(t, http.MethodGet, "/api/v1/items/missing/matches", "")
	expectError(t, rec, env, http.StatusNotFound, ErrCodeNotFound)
}

// routeRecorder wraps the engine and counts which entry point served a read.
type routeRecorder struct {
	*matching.Engine
	mu       sync.Mutex
	itemRead int
	override []int
}

func (r *routeRecorder) GetItemMatches(ctx context.Context, itemID string) []models.Match {
	r.mu.Lock()
	r.itemRead++
	r.mu.Unlock()
	return r.Engine.GetItemMatches(ctx, itemID)
}

func (r *routeRecorder) FindMatches(ctx context.Context, item *models.Item, minScore int) []models.Match {
	r.mu.Lock()
	r.override = append(r.override, minScore)
	r.mu.Unlock()
	return r.Engine.FindMatches(ctx, item, minScore)
}

func TestItemMatches_RoutesThroughEngine(t *testing.T) {
	t.Parallel()
	store := &memStore{items: fixtureItems()}
	rec := &routeRecorder{Engine: matching.NewEngine(store, noUsers{}, notify.NewLogNotifier(), matching.DefaultConfig())}
	mw := NewChiMiddleware(NewChiMiddlewareConfig(&config.SecurityConfig{RateLimitDisabled: true}))
	ts := &testServer{store: store, handler: NewRouter(NewHandler(store, rec), mw).Setup()}

	if resp, _ := ts.do(t, http.MethodGet, "/api/v1/items/lost-1/matches", ""); resp.Code != http.StatusOK {
		t.Fatalf("default status = %d", resp.Code)
	}
	if resp, _ := ts.do(t, http.MethodGet, "/api/v1/items/lost-1/matches?min_score=10", ""); resp.Code != http.StatusOK {
		t.Fatalf("override status = %d", resp.Code)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.itemRead != 1 {
		t.Errorf("GetItemMatches calls = %d, want 1", rec.itemRead)
	}
	// The default read reaches FindMatches through the embedded engine, not the
	// handler, so only the override is recorded here.
	if len(rec.override) != 1 || rec.override[0] != 10 {
		t.Errorf("FindMatches overrides = %v, want [10]", rec.override)
	}
}

func TestProcessCachedAndDismiss(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/items/found-1/matches/process", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("process status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var processed []MatchView
	decodeData(t, env, &processed)
	if len(processed) != 1 || processed[0].ID != "lost-1" {
		t.Fatalf("processed = %+v", processed)
	}

	_, env = ts.do(t, http.MethodGet, "/api/v1/items/found-1/matches/cached", "")
	var cached []models.CachedMatch
	decodeData(t, env, &cached)
	if len(cached) != 1 || cached[0].Entry.ItemID != "lost-1" || cached[0].Item == nil || cached[0].Entry.Dismissed {
		t.Fatalf("cached = %+v", cached)
	}

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/items/found-1/matches/lost-1/dismiss", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dismiss status = %d", rec.Code)
	}
	if entries := ts.store.cache("found-1"); !entries[0].Dismissed {
		t.Error("entry not dismissed")
	}

	rec, env = ts.do(t, http.MethodPost, "/api/v1/items/found-1/matches/found-2/dismiss", "")
	expectError(t, rec, env, http.StatusNotFound, ErrCodeNotFound)

	// A recompute overwrites the cache and clears the flag.
	ts.do(t, http.MethodPost, "/api/v1/items/found-1/matches/process", "")
	if entries := ts.store.cache("found-1"); len(entries) != 1 || entries[0].Dismissed {
		t.Errorf("cache after recompute = %+v", entries)
	}
}

func TestCachedMatches_UnknownItem(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	rec, env := ts.do(t, http.MethodGet, "/api/v1/items/missing/matches/cached", "")
	expectError(t, rec, env, http.StatusNotFound, ErrCodeNotFound)
}

// ===================================================================================================
// Status changes
// ===================================================================================================

func TestApproveItem_PublishesEvent(t *testing.T) {
	t.Parallel()
	pub := &fakePublisher{}
	ts := newTestServer(t, WithEventPublisher(pub))

	rec, env := ts.do(t, http.MethodPost, "/api/v1/items/pending-1/approve", "")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res ApprovalResult
	decodeData(t, env, &res)
	if res.Matching != "queued" || res.Item.Status != models.StatusApproved {
		t.Errorf("result = %+v", res)
	}
	if len(pub.published) != 1 || pub.published[0] != "pending-1" {
		t.Errorf("published = %v", pub.published)
	}
	if got := ts.store.cache("pending-1"); len(got) != 0 {
		t.Error("matching should be left to the event consumer")
	}
}

func TestApproveItem_Inline(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		opts []HandlerOption
	}{
		{"no event bus", nil},
		{"publish fails", []HandlerOption{WithEventPublisher(&fakePublisher{err: errors.New("bus closed")})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, tt.opts...)

			rec, env := ts.do(t, http.MethodPost, "/api/v1/items/pending-1/approve", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			var res ApprovalResult
			decodeData(t, env, &res)
			if res.Matching != "processed" || len(res.Matches) != 1 || res.Matches[0].ID != "found-1" {
				t.Errorf("result = %+v", res)
			}
			if got := ts.store.cache("pending-1"); len(got) != 1 || got[0].ItemID != "found-1" {
				t.Errorf("cache = %+v", got)
			}
		})
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"claim approved item", "/api/v1/items/found-1/status", `{"status":"claimed"}`, http.StatusOK, ""},
		{"reject pending item", "/api/v1/items/pending-1/status", `{"status":"rejected"}`, http.StatusOK, ""},
		{"invalid transition", "/api/v1/items/found-1/status", `{"status":"pending"}`, http.StatusConflict, ErrCodeConflict},
		{"unknown status", "/api/v1/items/found-1/status", `{"status":"stolen"}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"missing status", "/api/v1/items/found-1/status", `{}`, http.StatusBadRequest, ErrCodeValidationFailed},
		{"unknown field", "/api/v1/items/found-1/status", `{"status":"claimed","by":"x"}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"malformed json", "/api/v1/items/found-1/status", `{"status":`, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown item", "/api/v1/items/missing/status", `{"status":"approved"}`, http.StatusNotFound, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)
			rec, env := ts.do(t, http.MethodPost, tt.path, tt.body)
			if tt.wantErr != "" {
				expectError(t, rec, env, tt.wantCode, tt.wantErr)
				return
			}
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			var res ApprovalResult
			decodeData(t, env, &res)
			if res.Matching != "none" {
				t.Errorf("matching = %q, want none", res.Matching)
			}
		})
	}
}

func TestUpdateStatus_EmptyBody(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/found-1/status", http.NoBody)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Request body is required") {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

// ===================================================================================================
// Matching
// ===================================================================================================

func TestScoreItems(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	body := `{
		"lost":  {"category_id":"c1","location":"Main Library","item_name":"Blue iPhone 13","description":"blue case","date_lost_found":"2026-09-14T10:00:00Z"},
		"found": {"category_id":"c1","location":"Main Library","item_name":"Blue iPhone 13","description":"blue case","date_lost_found":"2026-09-13T10:00:00Z"}
	}`
	rec, env := ts.do(t, http.MethodPost, "/api/v1/matching/score", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var b matching.Breakdown
	decodeData(t, env, &b)
	// Found a day before it was lost: full date points, then the penalty.
	if b.Date != 20 || b.Penalty != 10 || b.Score != 90 {
		t.Errorf("breakdown = %+v", b)
	}

	rec, env = ts.do(t, http.MethodPost, "/api/v1/matching/score", `{"lost":{"item_name":"x"}}`)
	expectError(t, rec, env, http.StatusBadRequest, ErrCodeValidationFailed)
}

func TestRunSweep(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		sweeper  *fakeSweeper
		wantCode int
	}{
		{"not configured", nil, http.StatusServiceUnavailable},
		{"lock held", &fakeSweeper{err: sweep.ErrLocked}, http.StatusConflict},
		{"store failure", &fakeSweeper{err: errors.New("list failed")}, http.StatusInternalServerError},
		{"ok", &fakeSweeper{res: matching.SweepResult{Items: 7, Matches: 3, Duration: 1500 * time.Millisecond}}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var opts []HandlerOption
			if tt.sweeper != nil {
				opts = append(opts, WithSweepRunner(tt.sweeper))
			}
			ts := newTestServer(t, opts...)

			rec, env := ts.do(t, http.MethodPost, "/api/v1/matching/sweep", "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var res SweepResponse
			decodeData(t, env, &res)
			if res.Items != 7 || res.Matches != 3 || res.DurationMs != 1500 {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

// ===================================================================================================
// Health and routing
// ===================================================================================================

func TestHealth(t *testing.T) {
	t.Parallel()
	last := &sweep.Run{StartedAt: fixtureDay, Result: matching.SweepResult{Items: 4, Matches: 2}, Err: errors.New("partial")}
	ts := newTestServer(t, WithNotifierStatus(fakeNotifierStatus{}), WithSweepRunner(&fakeSweeper{last: last}), WithVersion("1.2.3"))

	rec, env := ts.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var h HealthStatus
	decodeData(t, env, &h)
	if h.Status != "healthy" || !h.DatabaseConnected || h.Version != "1.2.3" {
		t.Errorf("health = %+v", h)
	}
	if h.Notifier == nil || h.Notifier.QueueDepth != 3 || h.Notifier.Breaker != "open" {
		t.Errorf("notifier = %+v", h.Notifier)
	}
	if h.LastSweep == nil || h.LastSweep.Matches != 2 || h.LastSweep.Error != "partial" {
		t.Errorf("last sweep = %+v", h.LastSweep)
	}

	ts.store.pingErr = errors.New("database is locked")
	rec, env = ts.do(t, http.MethodGet, "/health", "")
	decodeData(t, env, &h)
	if rec.Code != http.StatusServiceUnavailable || h.Status != "degraded" || h.DatabaseConnected {
		t.Errorf("status = %d, health = %+v", rec.Code, h)
	}
}

func TestRouting_Fallbacks(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/nothing", "")
	expectError(t, rec, env, http.StatusNotFound, ErrCodeNotFound)

	rec, env = ts.do(t, http.MethodDelete, "/api/v1/items/lost-1/approve", "")
	expectError(t, rec, env, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/api/v1/items/lost-1", "")

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !bytes.Contains(rec.Body.Bytes(), []byte("api_requests_total")) {
		t.Errorf("status = %d, metrics missing api_requests_total", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()
	store := &memStore{items: fixtureItems()}
	engine := matching.NewEngine(store, noUsers{}, notify.NewLogNotifier(), matching.DefaultConfig())
	mw := NewChiMiddleware(NewChiMiddlewareConfig(&config.SecurityConfig{RateLimitReqs: 1, RateLimitWindow: time.Minute}))
	handler := NewRouter(NewHandler(store, engine), mw).Setup()

	codes := make([]int, 2)
	for i := range codes {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/items/lost-1", nil))
		codes[i] = rec.Code
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}

	// Health is outside the limited group.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()
	store := &memStore{items: fixtureItems()}
	engine := matching.NewEngine(store, noUsers{}, notify.NewLogNotifier(), matching.DefaultConfig())
	mw := NewChiMiddleware(NewChiMiddlewareConfig(&config.SecurityConfig{
		CORSOrigins:       []string{"https://lostfound.campus.example"},
		RateLimitDisabled: true,
	}))
	handler := NewRouter(NewHandler(store, engine), mw).Setup()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/matching/score", nil)
	req.Header.Set("Origin", "https://lostfound.campus.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://lostfound.campus.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestMatchViews_CapAndPreview(t *testing.T) {
	t.Parallel()
	matches := make([]models.Match, 12)
	for i := range matches {
		matches[i] = models.Match{Item: models.Item{ID: fmt.Sprintf("f-%02d", i)}, Score: 90 - i}
	}
	views := matchViews(matches)
	if len(views) != maxMatchViews || views[0].ID != "f-00" || views[9].ID != "f-09" {
		t.Errorf("views = %+v", views)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short", "Black umbrella", "Black umbrella..."},
		{"exactly 100", strings.Repeat("x", 100), strings.Repeat("x", 100) + "..."},
		{"long", strings.Repeat("y", 140), strings.Repeat("y", 100) + "..."},
		{"multibyte", strings.Repeat("é", 120), strings.Repeat("é", 100) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := previewDescription(tt.in); got != tt.want {
				t.Errorf("previewDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}
