// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package matching

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/metrics"
	"github.com/tomtom215/lostfound/internal/models"
)

// Store is the read side of the item store plus the single cache write the
// engine performs.
type Store interface {
	// FindItems returns items matching filter in storage order.
	FindItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)

	// GetItem returns one item with its category and reporter resolved.
	// It returns an error wrapping models.ErrItemNotFound when the id is unknown.
	GetItem(ctx context.Context, id string) (*models.Item, error)

	// UpdateMatchCache replaces the item's match cache with entries.
	UpdateMatchCache(ctx context.Context, itemID string, entries []models.MatchEntry) error
}

// Users resolves notification recipients.
type Users interface {
	GetUser(ctx context.Context, id string) (*models.User, error)

	// GetMatchNotificationPreference reports whether the user wants match
	// emails. Unknown preferences default to true.
	GetMatchNotificationPreference(ctx context.Context, userID string) (bool, error)
}

// Notifier delivers match notices. Implementations are fire-and-forget: a
// returned error means the notice was not accepted, delivery failures after
// acceptance are handled and logged by the notifier.
type Notifier interface {
	NotifyMatch(ctx context.Context, notice models.MatchNotice) error
}

// Config holds engine thresholds and fan-out limits.
type Config struct {
	UIMinScore       int
	DefaultMinScore  int
	NotifyMinScore   int
	CacheSize        int
	LostNotifyLimit  int
	FoundNotifyLimit int
	SweepParallelism int
}

// DefaultConfig returns the thresholds the scoring scale is calibrated for.
func DefaultConfig() Config {
	return Config{
		UIMinScore:       40,
		DefaultMinScore:  50,
		NotifyMinScore:   60,
		CacheSize:        10,
		LostNotifyLimit:  1,
		FoundNotifyLimit: 3,
		SweepParallelism: 1,
	}
}

// ConfigFrom maps the matching section of the service configuration.
func ConfigFrom(c *config.MatchingConfig) Config {
	return Config{
		UIMinScore:       c.UIMinScore,
		DefaultMinScore:  c.DefaultMinScore,
		NotifyMinScore:   c.NotifyMinScore,
		CacheSize:        c.CacheSize,
		LostNotifyLimit:  c.LostNotifyLimit,
		FoundNotifyLimit: c.FoundNotifyLimit,
		SweepParallelism: c.SweepParallelism,
	}
}

// Engine scores lost items against found items and orchestrates the
// notify-and-cache path. It holds no mutable state between calls.
type Engine struct {
	store    Store
	users    Users
	notifier Notifier
	cfg      Config
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for matchedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger overrides the component logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine. Zero values in cfg fall back to DefaultConfig.
func NewEngine(store Store, users Users, notifier Notifier, cfg Config, opts ...Option) *Engine {
	def := DefaultConfig()
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if cfg.SweepParallelism <= 0 {
		cfg.SweepParallelism = def.SweepParallelism
	}
	if cfg.UIMinScore == 0 && cfg.DefaultMinScore == 0 && cfg.NotifyMinScore == 0 {
		cfg.UIMinScore, cfg.DefaultMinScore, cfg.NotifyMinScore = def.UIMinScore, def.DefaultMinScore, def.NotifyMinScore
	}

	e := &Engine{
		store:    store,
		users:    users,
		notifier: notifier,
		cfg:      cfg,
		logger:   logging.WithComponent("matching"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// FindMatches returns approved items of the opposite type scoring at least
// minScore against item, best first. Storage order breaks ties.
//
// A storage failure is logged and yields an empty result, so an empty list
// means either "no matches" or "could not determine"; use FindMatchesE to
// tell them apart.
func (e *Engine) FindMatches(ctx context.Context, item *models.Item, minScore int) []models.Match {
	matches, err := e.FindMatchesE(ctx, item, minScore)
	if err != nil {
		e.log(ctx).Error().Err(err).
			Str("item_id", item.ID).
			Str("item_type", string(item.Type)).
			Int("min_score", minScore).
			Msg("Find matches failed")
		metrics.RecordMatchError("fetch")
		return []models.Match{}
	}
	return matches
}

// FindMatchesE is FindMatches with the storage error returned.
func (e *Engine) FindMatchesE(ctx context.Context, item *models.Item, minScore int) ([]models.Match, error) {
	if !item.Type.Valid() {
		return nil, fmt.Errorf("item %s has invalid type %q", item.ID, item.Type)
	}

	candidates, err := e.store.FindItems(ctx, models.ItemFilter{
		Type:      item.Type.Opposite(),
		Status:    models.StatusApproved,
		ExcludeID: item.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s candidates: %w", item.Type.Opposite(), err)
	}

	now := e.now()
	matches := make([]models.Match, 0, len(candidates))
	for i := range candidates {
		cand := &candidates[i]
		// Never the item itself, never its own type.
		if cand.ID == item.ID || cand.Type == item.Type {
			continue
		}

		var score int
		if item.IsLost() {
			score = Score(item, cand)
		} else {
			score = Score(cand, item)
		}
		if score >= minScore {
			matches = append(matches, models.Match{Item: *cand, Score: score, MatchedAt: now})
		}
	}

	slices.SortStableFunc(matches, func(a, b models.Match) int {
		return b.Score - a.Score
	})

	metrics.RecordScored(string(item.Type), len(candidates))
	metrics.RecordMatchResults(strconv.Itoa(minScore), scoresOf(matches))
	return matches, nil
}

// ProcessAndNotify recomputes matches for the item at the notify threshold,
// notifies the affected reporters, and overwrites the item's match cache with
// the top entries.
//
// A lost item notifies its own reporter about the single best match. A found
// item notifies the reporters of its best matching lost items, up to
// FoundNotifyLimit. Any failure is logged and an empty result returned; a
// failed notification only skips that recipient.
func (e *Engine) ProcessAndNotify(ctx context.Context, itemID string) []models.Match {
	start := time.Now()
	defer func() { metrics.MatchProcessDuration.Observe(time.Since(start).Seconds()) }()

	logger := e.log(ctx).With().Str("item_id", itemID).Logger()

	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, models.ErrItemNotFound) {
			logger.Warn().Msg("Item vanished before match processing")
		} else {
			logger.Error().Err(err).Msg("Load item for match processing failed")
		}
		metrics.RecordMatchError("fetch")
		return []models.Match{}
	}

	matches, err := e.FindMatchesE(ctx, item, e.cfg.NotifyMinScore)
	if err != nil {
		logger.Error().Err(err).Msg("Find matches failed")
		metrics.RecordMatchError("fetch")
		return []models.Match{}
	}

	if item.IsLost() {
		e.notifyLostReporter(ctx, logger, item, matches)
	} else {
		e.notifyFoundCandidates(ctx, logger, item, matches)
	}

	entries := models.ToEntries(matches, e.cfg.CacheSize)
	if err := e.store.UpdateMatchCache(ctx, item.ID, entries); err != nil {
		logger.Error().Err(err).Msg("Persist match cache failed")
		metrics.RecordMatchError("cache")
		return []models.Match{}
	}

	logger.Debug().
		Str("item_type", string(item.Type)).
		Int("matches", len(matches)).
		Int("cached", len(entries)).
		Msg("Matches processed")
	return matches
}

func (e *Engine) notifyLostReporter(ctx context.Context, logger zerolog.Logger, lost *models.Item, matches []models.Match) {
	if len(matches) == 0 || e.cfg.LostNotifyLimit == 0 {
		return
	}
	if lost.ReportedBy == nil {
		metrics.RecordMatchNotification("no_reporter")
		return
	}
	user := e.recipient(ctx, logger, *lost.ReportedBy, lost.Reporter)
	if user == nil {
		return
	}

	limit := min(e.cfg.LostNotifyLimit, len(matches))
	for _, m := range matches[:limit] {
		e.send(ctx, logger, models.MatchNotice{
			Recipient: *user,
			Lost:      *lost,
			Found:     m.Item,
			Score:     m.Score,
		})
	}
}

func (e *Engine) notifyFoundCandidates(ctx context.Context, logger zerolog.Logger, found *models.Item, matches []models.Match) {
	limit := min(e.cfg.FoundNotifyLimit, len(matches))
	for _, m := range matches[:limit] {
		lost := m.Item
		if lost.ReportedBy == nil {
			metrics.RecordMatchNotification("no_reporter")
			continue
		}
		user := e.recipient(ctx, logger, *lost.ReportedBy, lost.Reporter)
		if user == nil {
			continue
		}
		e.send(ctx, logger, models.MatchNotice{
			Recipient: *user,
			Lost:      lost,
			Found:     *found,
			Score:     m.Score,
		})
	}
}

// recipient resolves a reporter and checks the match opt-out. It returns nil
// when the user must not be notified.
func (e *Engine) recipient(ctx context.Context, logger zerolog.Logger, userID string, resolved *models.User) *models.User {
	user := resolved
	if user == nil || user.ID != userID {
		u, err := e.users.GetUser(ctx, userID)
		if err != nil {
			logger.Warn().Err(err).Str("user_id", userID).Msg("Resolve match recipient failed")
			metrics.RecordMatchError("preference")
			return nil
		}
		user = u
	}

	wants, err := e.users.GetMatchNotificationPreference(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Str("user_id", userID).Msg("Read match notification preference failed")
		metrics.RecordMatchError("preference")
		return nil
	}
	if !wants {
		metrics.RecordMatchNotification("opted_out")
		return nil
	}
	return user
}

func (e *Engine) send(ctx context.Context, logger zerolog.Logger, notice models.MatchNotice) {
	if err := e.notifier.NotifyMatch(ctx, notice); err != nil {
		logger.Warn().Err(err).
			Str("user_id", notice.Recipient.ID).
			Str("lost_id", notice.Lost.ID).
			Str("found_id", notice.Found.ID).
			Msg("Match notification failed")
		metrics.RecordMatchNotification("failed")
		metrics.RecordMatchError("notify")
		return
	}
	metrics.RecordMatchNotification("queued")
}

// GetItemMatches loads the item and returns freshly computed matches at the
// interactive threshold. The persisted cache is not consulted.
func (e *Engine) GetItemMatches(ctx context.Context, itemID string) []models.Match {
	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		if !errors.Is(err, models.ErrItemNotFound) {
			e.log(ctx).Error().Err(err).Str("item_id", itemID).Msg("Load item for matches failed")
			metrics.RecordMatchError("fetch")
		}
		return []models.Match{}
	}
	return e.FindMatches(ctx, item, e.cfg.UIMinScore)
}

// CachedMatches returns the item's persisted match cache with each entry's
// item resolved. Entries whose item no longer exists keep a nil Item.
func (e *Engine) CachedMatches(ctx context.Context, itemID string) ([]models.CachedMatch, error) {
	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	out := make([]models.CachedMatch, 0, len(item.PotentialMatches))
	for _, entry := range item.PotentialMatches {
		cm := models.CachedMatch{Entry: entry}
		matched, err := e.store.GetItem(ctx, entry.ItemID)
		switch {
		case err == nil:
			cm.Item = matched
		case errors.Is(err, models.ErrItemNotFound):
		default:
			return nil, fmt.Errorf("resolve cached match %s: %w", entry.ItemID, err)
		}
		out = append(out, cm)
	}
	return out, nil
}

// SweepResult summarizes one batch sweep.
type SweepResult struct {
	Items    int           `json:"items"`
	Matches  int           `json:"matches"`
	Duration time.Duration `json:"duration"`
}

// RunBatchSweep processes every approved item and returns the total number
// of matches found. Items are independent: one item's failure is logged
// inside ProcessAndNotify and the sweep moves on. Rerunning a sweep
// reprocesses everything and may notify again.
func (e *Engine) RunBatchSweep(ctx context.Context) int {
	res, err := e.Sweep(ctx)
	if err != nil {
		e.log(ctx).Error().Err(err).Msg("Batch matching failed")
		return 0
	}
	return res.Matches
}

// Sweep is RunBatchSweep with the full result and the listing error.
// Context cancellation stops the sweep between items and returns the partial
// result together with the context error.
func (e *Engine) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	logger := e.log(ctx)

	items, err := e.store.FindItems(ctx, models.ItemFilter{Status: models.StatusApproved})
	if err != nil {
		err = fmt.Errorf("list approved items: %w", err)
		metrics.RecordSweep(time.Since(start), 0, 0, err)
		return SweepResult{}, err
	}

	logger.Info().Int("items", len(items)).Msg("Starting batch matching")

	var (
		total     atomic.Int64
		processed atomic.Int64
		wg        sync.WaitGroup
		sem       = make(chan struct{}, e.cfg.SweepParallelism)
	)

	for i := range items {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			n := len(e.ProcessAndNotify(ctx, id))
			total.Add(int64(n))
			processed.Add(1)
		}(items[i].ID)
	}
	wg.Wait()

	res := SweepResult{
		Items:    int(processed.Load()),
		Matches:  int(total.Load()),
		Duration: time.Since(start),
	}
	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Int("items", res.Items).Msg("Batch matching interrupted")
		metrics.RecordSweep(res.Duration, res.Items, res.Matches, err)
		return res, err
	}

	logger.Info().
		Int("items", res.Items).
		Int("matches", res.Matches).
		Dur("duration", res.Duration).
		Msg("Batch matching complete")
	metrics.RecordSweep(res.Duration, res.Items, res.Matches, nil)
	return res, nil
}

func (e *Engine) log(ctx context.Context) *zerolog.Logger {
	l := logging.CtxWith(logging.ContextWithLogger(ctx, e.logger)).Logger()
	return &l
}

func scoresOf(matches []models.Match) []int {
	scores := make([]int, len(matches))
	for i, m := range matches {
		scores[i] = m.Score
	}
	return scores
}
