// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/lostfound/internal/config"
)

// Error codes for delivery failures.
const (
	ErrorCodeInvalidRecipient  = "INVALID_RECIPIENT"
	ErrorCodeConnectionFailed  = "CONNECTION_FAILED"
	ErrorCodeAuthFailed        = "AUTH_FAILED"
	ErrorCodeRateLimited       = "RATE_LIMITED"
	ErrorCodeRecipientNotFound = "RECIPIENT_NOT_FOUND"
	ErrorCodeTimeout           = "TIMEOUT"
	ErrorCodeUnknown           = "UNKNOWN"
)

// SMTPSender delivers messages through an SMTP server.
type SMTPSender struct {
	cfg     config.SMTPConfig
	timeout time.Duration
}

// NewSMTPSender creates a sender for cfg.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMTPSender{cfg: cfg, timeout: timeout}
}

// Send delivers msg. Failures are returned as *Error with a code and a
// transient flag.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if err := ValidateEmail(msg.To); err != nil {
		return &Error{Code: ErrorCodeInvalidRecipient, Err: err}
	}
	if err := s.sendSMTP(ctx, msg.To, s.buildMessage(msg)); err != nil {
		code := classifyEmailError(err)
		return &Error{Code: code, Transient: isTransientCode(code), Err: err}
	}
	return nil
}

// buildMessage constructs the email message with headers.
func (s *SMTPSender) buildMessage(m *Message) string {
	var msg strings.Builder

	fromName := s.cfg.FromName
	if fromName == "" {
		fromName = "Lost & Found"
	}

	fmt.Fprintf(&msg, "From: %s <%s>\r\n", fromName, s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", m.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", m.Subject)
	fmt.Fprintf(&msg, "Message-ID: <%s@%s>\r\n", uuid.New().String(), s.cfg.Host)
	msg.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case m.HTML != "" && m.Text != "":
		boundary := "lf_" + strings.ReplaceAll(uuid.New().String(), "-", "")
		fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		msg.WriteString(m.Text)
		msg.WriteString("\r\n")

		fmt.Fprintf(&msg, "--%s\r\n", boundary)
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		msg.WriteString(m.HTML)
		msg.WriteString("\r\n")

		fmt.Fprintf(&msg, "--%s--\r\n", boundary)
	case m.HTML != "":
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		msg.WriteString(m.HTML)
	default:
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		msg.WriteString(m.Text)
	}

	return msg.String()
}

// sendSMTP sends the email via SMTP.
func (s *SMTPSender) sendSMTP(ctx context.Context, to, msg string) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline) //nolint:errcheck // Best effort
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.timeout)) //nolint:errcheck // Best effort
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if s.cfg.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once Data is closed; a failed QUIT changes nothing.
	_ = client.Quit() //nolint:errcheck // Message already delivered
	return nil
}

// classifyEmailError classifies an error into an error code.
func classifyEmailError(err error) string {
	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "authentication") || strings.Contains(errStr, "auth"):
		return ErrorCodeAuthFailed
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline"):
		return ErrorCodeTimeout
	case strings.Contains(errStr, "connect") || strings.Contains(errStr, "connection"):
		return ErrorCodeConnectionFailed
	case strings.Contains(errStr, "recipient") || strings.Contains(errStr, "mailbox"):
		return ErrorCodeRecipientNotFound
	case strings.Contains(errStr, "rate") || strings.Contains(errStr, "limit"):
		return ErrorCodeRateLimited
	}
	return ErrorCodeUnknown
}

// isTransientCode returns true if the code describes a failure that may
// succeed on a later attempt.
func isTransientCode(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeRateLimited:
		return true
	}
	return false
}

// ValidateEmail validates an email address format.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrNoRecipientEmail
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid email address format: %s", email)
	}
	if !strings.Contains(parts[1], ".") {
		return fmt.Errorf("invalid email domain: %s", parts[1])
	}
	return nil
}
