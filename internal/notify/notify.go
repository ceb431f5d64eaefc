// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

// Package notify delivers match notices to reporters.
//
// The matching engine hands a models.MatchNotice to a Notifier and moves on.
// The Dispatcher accepts notices into a bounded queue and delivers them from
// a worker pool:
//   - an optional cooldown ledger suppresses a repeated notice for the same
//     recipient, lost item and found item within a window
//   - a token bucket (golang.org/x/time/rate) paces outgoing mail
//   - a circuit breaker (sony/gobreaker) stops hammering a failing SMTP
//     server; only transient failures count toward tripping it
//
// LogNotifier stands in when email is disabled.
package notify

import (
	"context"
	"errors"

	"github.com/tomtom215/lostfound/internal/models"
)

var (
	// ErrNotifierClosed is returned for notices offered after Close.
	ErrNotifierClosed = errors.New("notifier closed")

	// ErrNoRecipientEmail is returned when the recipient has no address.
	ErrNoRecipientEmail = errors.New("recipient has no email address")

	// ErrQueueFull is returned when the delivery queue cannot take more notices.
	ErrQueueFull = errors.New("notification queue full")
)

// Message is one rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Renderer turns a notice into a message.
type Renderer interface {
	Render(notice *models.MatchNotice) (*Message, error)
}

// Error classifies a delivery failure.
type Error struct {
	Code      string
	Transient bool
	Err       error
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a delivery failure worth retrying
// later. Unclassified errors are treated as permanent.
func IsTransient(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Transient
	}
	return errors.Is(err, context.DeadlineExceeded)
}
