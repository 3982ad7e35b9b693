// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import "errors"

var (
	// ErrNotFound covers unknown tokens and unknown member ids alike, so a
	// caller can never tell which lookup failed.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition means the operation is not valid from the
	// record's current stage. Surfaced to the caller, never retried.
	ErrInvalidTransition = errors.New("invalid stage transition")

	// ErrMissingReason means attending=false was declared without an
	// absence reason.
	ErrMissingReason = errors.New("absence reason required")

	// ErrNotEligible means a special vote was requested by a member whose
	// region/reason combination does not qualify.
	ErrNotEligible = errors.New("not eligible for special vote")

	// ErrNotAttending means a ticket was requested for a member who has
	// not confirmed attendance.
	ErrNotAttending = errors.New("member has not confirmed attendance")

	// ErrNoTicket means a check-in was attempted without an issued ticket.
	ErrNoTicket = errors.New("no ticket issued")

	// ErrUndeliverable means a recipient has no usable contact channel.
	ErrUndeliverable = errors.New("no deliverable contact channel")
)
