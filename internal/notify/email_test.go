// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/lostfound/internal/config"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"john@campus.edu", false},
		{"", true},
		{"john", true},
		{"@campus.edu", true},
		{"john@campus", true},
		{"a@b@c.edu", true},
	}
	for _, tt := range tests {
		if err := ValidateEmail(tt.email); (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
		}
	}
	if !errors.Is(ValidateEmail(""), ErrNoRecipientEmail) {
		t.Error("empty address should be ErrNoRecipientEmail")
	}
}

func TestClassifyEmailError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		msg       string
		code      string
		transient bool
	}{
		{"SMTP authentication failed: 535", ErrorCodeAuthFailed, false},
		{"dial tcp: i/o timeout", ErrorCodeTimeout, true},
		{"failed to connect to SMTP server", ErrorCodeConnectionFailed, true},
		{"failed to set recipient: 550", ErrorCodeRecipientNotFound, false},
		{"421 rate exceeded", ErrorCodeRateLimited, true},
		{"something odd", ErrorCodeUnknown, false},
	}
	for _, tt := range tests {
		code := classifyEmailError(errors.New(tt.msg))
		if code != tt.code {
			t.Errorf("classifyEmailError(%q) = %s, want %s", tt.msg, code, tt.code)
		}
		if isTransientCode(code) != tt.transient {
			t.Errorf("isTransientCode(%s) = %v, want %v", code, !tt.transient, tt.transient)
		}
	}
}

func TestSMTPSender_BuildMessage(t *testing.T) {
	t.Parallel()
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.campus.edu", From: "noreply@campus.edu"})
	raw := s.buildMessage(&Message{To: "john@campus.edu", Subject: MatchSubject, HTML: "<p>hi</p>", Text: "hi"})

	for _, want := range []string{
		"From: Lost & Found <noreply@campus.edu>\r\n",
		"To: john@campus.edu\r\n",
		"Subject: " + MatchSubject + "\r\n",
		"Content-Type: multipart/alternative;",
		"Content-Type: text/plain; charset=UTF-8",
		"Content-Type: text/html; charset=UTF-8",
		"@smtp.campus.edu>",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSMTPSender_InvalidRecipient(t *testing.T) {
	t.Parallel()
	s := NewSMTPSender(config.SMTPConfig{Host: "127.0.0.1", Port: 1})
	err := s.Send(context.Background(), &Message{To: "not-an-address"})

	var de *Error
	if !errors.As(err, &de) || de.Code != ErrorCodeInvalidRecipient || de.Transient {
		t.Errorf("Send() error = %v, want permanent INVALID_RECIPIENT", err)
	}
}
