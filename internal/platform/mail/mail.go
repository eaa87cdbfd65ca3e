// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package mail delivers transactional email for the Digital Hub API.

Two notifiers satisfy the auth service's reset contract:

  - SMTPNotifier: Sends through a relay with PLAIN authentication.
  - LogNotifier: Used when no relay is configured; logs the recipient only.

Neither implementation ever logs a reset token.
*/
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRecipient is returned for addresses that could smuggle headers.
var ErrInvalidRecipient = errors.New("mail: invalid recipient")

// SMTPConfig describes the outgoing relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// ResetURL is the front-end page that accepts ?token=.
	ResetURL string
}

// sendFunc matches [smtp.SendMail].
type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends password reset links by email.
type SMTPNotifier struct {
	config SMTPConfig
	send   sendFunc
	logger *slog.Logger
}

// NewSMTPNotifier creates a notifier bound to the configured relay.
func NewSMTPNotifier(config SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	return &SMTPNotifier{config: config, send: smtp.SendMail, logger: logger}
}

/*
SendResetEmail mails the reset link for token to email.

Parameters:
  - context: context.Context (checked before dialling the relay)
  - email: string
  - token: string (raw token, only ever embedded in the link)

Returns:
  - error: ErrInvalidRecipient, link construction, or relay failures
*/
func (notifier *SMTPNotifier) SendResetEmail(context context.Context, email, token string) error {
	if strings.ContainsAny(email, "\r\n") || email == "" {
		return ErrInvalidRecipient
	}

	link, err := resetLink(notifier.config.ResetURL, token)
	if err != nil {
		return err
	}

	if err := context.Err(); err != nil {
		return err
	}

	message := buildMessage(notifier.config.From, email, "Reset your Digital Hub password", resetBody(link))
	addr := net.JoinHostPort(notifier.config.Host, strconv.Itoa(notifier.config.Port))

	var auth smtp.Auth
	if notifier.config.Username != "" {
		auth = smtp.PlainAuth("", notifier.config.Username, notifier.config.Password, notifier.config.Host)
	}

	if err := notifier.send(addr, auth, notifier.config.From, []string{email}, message); err != nil {
		return fmt.Errorf("mail: failed to send reset email: %w", err)
	}

	notifier.logger.InfoContext(context, "password_reset_mail_sent", slog.String("email", email))
	return nil
}

// LogNotifier stands in for SMTP when no relay is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that only logs the recipient.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// SendResetEmail records that a reset was requested. The token is dropped.
func (notifier *LogNotifier) SendResetEmail(context context.Context, email, _ string) error {
	notifier.logger.WarnContext(context, "password_reset_mail_skipped",
		slog.String("email", email), slog.String("reason", "EMAIL_HOST not configured"))
	return nil
}

// # Message Assembly

func resetLink(base, token string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("mail: invalid reset url: %w", err)
	}

	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func resetBody(link string) string {
	return "You requested a password reset for your Digital Hub account.\r\n\r\n" +
		"Open the link below within one hour to choose a new password:\r\n\r\n" +
		link + "\r\n\r\n" +
		"If you did not request this, you can ignore this email.\r\n"
}

func buildMessage(from, to, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}
