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

	"github.com/google/uuid"

	"github.com/tomtom215/lostfound/internal/models"
)

// CreateUser inserts a user. An empty ID is generated.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = db.now()
	}
	prefs := user.NotificationPreferences

	query := `
		INSERT INTO users (
			id, username, email,
			email_on_approval, email_on_rejection, email_on_claim, email_on_match,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.conn.ExecContext(ctx, query,
		user.ID, user.Username, nullableString(user.Email),
		prefs.EmailOnApproval, prefs.EmailOnRejection, prefs.EmailOnClaim, prefs.EmailOnMatch,
		user.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser returns a user with notification preferences.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `
		SELECT id, username, email,
			email_on_approval, email_on_rejection, email_on_claim, email_on_match,
			created_at
		FROM users
		WHERE id = ?
	`
	var (
		user  models.User
		email sql.NullString
		prefs = &user.NotificationPreferences
	)
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Username, &email,
		&prefs.EmailOnApproval, &prefs.EmailOnRejection, &prefs.EmailOnClaim, &prefs.EmailOnMatch,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Email = email.String
	return &user, nil
}

// GetMatchNotificationPreference reports whether the user wants match
// emails. A user without a stored row gets the default, true.
func (db *DB) GetMatchNotificationPreference(ctx context.Context, userID string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var wants bool
	err := db.conn.QueryRowContext(ctx, `SELECT email_on_match FROM users WHERE id = ?`, userID).Scan(&wants)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultNotificationPreferences().EmailOnMatch, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read match preference: %w", err)
	}
	return wants, nil
}

// UpdateNotificationPreferences replaces a user's preferences.
func (db *DB) UpdateNotificationPreferences(ctx context.Context, userID string, prefs models.NotificationPreferences) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `
		UPDATE users SET
			email_on_approval = ?, email_on_rejection = ?, email_on_claim = ?, email_on_match = ?
		WHERE id = ?`,
		prefs.EmailOnApproval, prefs.EmailOnRejection, prefs.EmailOnClaim, prefs.EmailOnMatch, userID)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}
	return nil
}
