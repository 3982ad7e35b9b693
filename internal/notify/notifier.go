// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package notify is the outbound delivery boundary. The engine hands a
// rendered message and a contact handle to a Notifier and learns nothing
// about the provider behind it.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/quixsi/muster/internal/model"
)

// Message is one rendered outbound unit for one recipient.
type Message struct {
	Recipient string
	Channel   model.Channel
	Subject   string
	Body      string
}

// Notifier delivers one message. Implementations classify failures via
// TransportError so callers can retry only what is retryable.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// TransportError marks a delivery failure. Retryable failures (timeouts,
// throttling) may be re-attempted with backoff; terminal ones may not.
type TransportError struct {
	Err       error
	Retryable bool
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a retryable transport failure.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable
}

// LogNotifier is the default provider: it logs the delivery and reports
// success. Real providers hang off the same interface.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, msg Message) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "outbound message",
		"channel", string(msg.Channel),
		"recipient", msg.Recipient,
		"subject", msg.Subject,
	)
	return nil
}
