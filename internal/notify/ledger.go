// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/lostfound/internal/cache"
	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/models"
)

// Ledger backends.
const (
	LedgerNone   = "none"
	LedgerMemory = "memory"
	LedgerBadger = "badger"
)

// Ledger remembers which notices were sent recently.
type Ledger interface {
	// Seen reports whether key was recorded within the cooldown window and
	// records it when it was not. The check and the record are atomic.
	Seen(ctx context.Context, key string) (bool, error)

	// Forget drops key so the next Seen reports false.
	Forget(ctx context.Context, key string) error

	Close() error
}

// NoticeKey identifies a notice for cooldown purposes.
func NoticeKey(n *models.MatchNotice) string {
	return n.Recipient.ID + "|" + n.Lost.ID + "|" + n.Found.ID
}

// NewLedger builds the ledger selected by cfg. A zero cooldown always
// yields a ledger that never suppresses.
func NewLedger(cfg *config.NotifyConfig) (Ledger, error) {
	if cfg.Cooldown <= 0 {
		return NopLedger{}, nil
	}
	switch cfg.Ledger {
	case "", LedgerNone:
		return NopLedger{}, nil
	case LedgerMemory:
		return NewMemoryLedger(cfg.LedgerCapacity, cfg.Cooldown), nil
	case LedgerBadger:
		return OpenBadgerLedger(cfg.LedgerPath, cfg.Cooldown)
	}
	return nil, fmt.Errorf("unknown notification ledger %q", cfg.Ledger)
}

// NopLedger never suppresses.
type NopLedger struct{}

func (NopLedger) Seen(context.Context, string) (bool, error) { return false, nil }
func (NopLedger) Forget(context.Context, string) error       { return nil }
func (NopLedger) Close() error                               { return nil }

// MemoryLedger keeps the cooldown window in a bounded LRU. It is lost on
// restart.
type MemoryLedger struct {
	lru *cache.LRU
}

// NewMemoryLedger creates a ledger remembering up to capacity keys for ttl.
func NewMemoryLedger(capacity int, ttl time.Duration, opts ...cache.Option) *MemoryLedger {
	return &MemoryLedger{lru: cache.NewLRU(capacity, ttl, opts...)}
}

func (l *MemoryLedger) Seen(_ context.Context, key string) (bool, error) {
	return l.lru.Seen(key), nil
}

func (l *MemoryLedger) Forget(_ context.Context, key string) error {
	l.lru.Remove(key)
	return nil
}

func (l *MemoryLedger) Close() error { return nil }

// BadgerLedger persists the cooldown window so it survives restarts. Keys
// expire through BadgerDB's native TTL.
type BadgerLedger struct {
	db  *badger.DB
	ttl time.Duration
}

var ledgerPrefix = []byte("notice:")

// OpenBadgerLedger opens (or creates) a ledger stored under path.
func OpenBadgerLedger(path string, ttl time.Duration) (*BadgerLedger, error) {
	if path == "" {
		return nil, errors.New("badger ledger requires a path")
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", path).
		Dur("cooldown", ttl).
		Msg("Notification ledger opened")
	return &BadgerLedger{db: db, ttl: ttl}, nil
}

func (l *BadgerLedger) key(k string) []byte {
	return append(append([]byte{}, ledgerPrefix...), k...)
}

// Seen implements Ledger. Conflicting concurrent writers are serialized by
// Badger's optimistic transactions; the loser retries and then sees the key.
func (l *BadgerLedger) Seen(ctx context.Context, key string) (bool, error) {
	k := l.key(key)
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		seen := false
		err := l.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(k)
			switch {
			case err == nil:
				seen = true
				return nil
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			stamp := []byte(time.Now().UTC().Format(time.RFC3339))
			return txn.SetEntry(badger.NewEntry(k, stamp).WithTTL(l.ttl))
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("ledger lookup: %w", err)
		}
		return seen, nil
	}
}

func (l *BadgerLedger) Forget(_ context.Context, key string) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(l.key(key))
	})
}

func (l *BadgerLedger) Close() error {
	return l.db.Close()
}
