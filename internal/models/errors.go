// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package models

import "errors"

var (
	// ErrItemNotFound is returned when an item id is unknown.
	ErrItemNotFound = errors.New("item not found")

	// ErrUserNotFound is returned when a user id is unknown.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidTransition is returned for a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)
