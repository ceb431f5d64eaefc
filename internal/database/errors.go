// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package database

import (
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/tomtom215/lostfound/internal/models"
)

var (
	// ErrItemNotFound aliases the model sentinel so callers can test either.
	ErrItemNotFound = models.ErrItemNotFound

	// ErrUserNotFound aliases the model sentinel so callers can test either.
	ErrUserNotFound = models.ErrUserNotFound

	// ErrMatchNotCached is returned when dismissing an entry that is not in
	// the item's match cache.
	ErrMatchNotCached = errors.New("match not in cache")
)

// closeQuietly closes a resource and explicitly ignores any error
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// rollbackQuietly rolls back a transaction that may already be committed.
func rollbackQuietly(tx *sql.Tx) {
	_ = tx.Rollback()
}

// nullableString maps "" to NULL.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullablePtr maps a nil or empty pointer to NULL.
func nullablePtr(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

// nullableTime maps a nil or zero time to NULL and stores UTC otherwise.
func nullableTime(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}

func ptrFromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
