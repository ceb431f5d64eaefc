// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/lostfound/internal/models"
)

// Location is an entry of the campus location list.
type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Building string `json:"building,omitempty"`
}

// ListCategories returns all categories ordered by name.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT id, name, description, icon FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var (
			c          models.Category
			desc, icon sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc, &icon); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.Description, c.Icon = desc.String, icon.String
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// ListLocations returns the campus location list ordered by name.
func (db *DB) ListLocations(ctx context.Context) ([]Location, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT id, name, building FROM locations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		var (
			l        Location
			building sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Name, &building); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		l.Building = building.String
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}
	return locations, nil
}
