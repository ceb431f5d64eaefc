// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/lostfound/internal/models"
)

// UpdateMatchCache replaces the item's match cache with entries. The write
// is a full overwrite: previous entries, including dismissed flags, are gone.
func (db *DB) UpdateMatchCache(ctx context.Context, itemID string, entries []models.MatchEntry) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cache, err := marshalMatchCache(entries)
	if err != nil {
		return err
	}

	res, err := db.conn.ExecContext(ctx,
		`UPDATE items SET potential_matches = ?, updated_at = ? WHERE id = ?`,
		cache, db.now(), itemID)
	if err != nil {
		return fmt.Errorf("failed to update match cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("item %s: %w", itemID, ErrItemNotFound)
	}
	return nil
}

// DismissMatch flags one cached entry as dismissed. The flag lasts until the
// next recompute overwrites the cache.
func (db *DB) DismissMatch(ctx context.Context, itemID, matchedID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	var raw sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT potential_matches FROM items WHERE id = ?`, itemID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("item %s: %w", itemID, ErrItemNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read match cache: %w", err)
	}

	entries, err := unmarshalMatchCache(raw)
	if err != nil {
		return err
	}

	found := false
	for i := range entries {
		if entries[i].ItemID == matchedID {
			entries[i].Dismissed = true
			found = true
		}
	}
	if !found {
		return fmt.Errorf("item %s entry %s: %w", itemID, matchedID, ErrMatchNotCached)
	}

	cache, err := marshalMatchCache(entries)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET potential_matches = ?, updated_at = ? WHERE id = ?`,
		cache, db.now(), itemID); err != nil {
		return fmt.Errorf("failed to update match cache: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit dismissal: %w", err)
	}
	return nil
}
