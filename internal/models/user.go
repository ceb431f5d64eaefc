// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package models

import "time"

// User is the subset of an account needed to route notifications.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"-"`

	NotificationPreferences NotificationPreferences `json:"notification_preferences"`

	CreatedAt time.Time `json:"created_at"`
}

// NotificationPreferences are per-user email opt-outs. Every flag defaults
// to true; only EmailOnMatch is consulted by the matching engine.
type NotificationPreferences struct {
	EmailOnApproval  bool `json:"email_on_approval"`
	EmailOnRejection bool `json:"email_on_rejection"`
	EmailOnClaim     bool `json:"email_on_claim"`
	EmailOnMatch     bool `json:"email_on_match"`
}

// DefaultNotificationPreferences returns all notifications enabled.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailOnApproval:  true,
		EmailOnRejection: true,
		EmailOnClaim:     true,
		EmailOnMatch:     true,
	}
}
