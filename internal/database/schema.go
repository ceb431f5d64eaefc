// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

/*
schema.go - Database Schema Management

Tables:
  - categories: item categories (electronics, keys, clothing...)
  - locations: the campus location list reporters pick from
  - users: reporters and their notification preferences
  - items: lost and found reports; potential_matches holds the JSON match cache

Items carry a seq column fed by a sequence. Candidate lookups order by it so
that tied scores keep storage order.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates tables and indexes. Every statement is idempotent.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range schemaQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func schemaQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			icon TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS locations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			building TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT,
			email_on_approval BOOLEAN NOT NULL DEFAULT TRUE,
			email_on_rejection BOOLEAN NOT NULL DEFAULT TRUE,
			email_on_claim BOOLEAN NOT NULL DEFAULT TRUE,
			email_on_match BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL
		)`,

		`CREATE SEQUENCE IF NOT EXISTS items_seq START 1`,

		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			seq BIGINT NOT NULL DEFAULT nextval('items_seq'),
			type TEXT NOT NULL CHECK (type IN ('lost', 'found')),
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending', 'approved', 'claimed', 'rejected')),
			category_id TEXT,
			location TEXT NOT NULL DEFAULT '',
			location_id TEXT,
			custom_location TEXT,
			item_name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			image_path TEXT,
			date_lost_found TIMESTAMP,
			date_reported TIMESTAMP NOT NULL,
			reported_by TEXT,
			reporter_name TEXT,
			reporter_email TEXT,
			contact_info TEXT,
			admin_notes TEXT,
			potential_matches TEXT NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_items_type_status ON items(type, status)`,
		`CREATE INDEX IF NOT EXISTS idx_items_reported_by ON items(reported_by)`,
	}
}
