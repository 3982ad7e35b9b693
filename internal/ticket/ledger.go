// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package ticket tracks ticket issuance and check-in. Issuance is
// idempotent per member; check-in records exactly one authoritative
// arrival and logs every later attempt as a duplicate.
package ticket

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/model"
	"github.com/quixsi/muster/internal/registry"
)

// IssueResult reports one issuance. AlreadyIssued marks the idempotent
// no-op case, which is informational, not an error.
type IssueResult struct {
	Ticket        *model.Ticket
	AlreadyIssued bool
}

// CheckInResult reports one check-in attempt. First always points at the
// authoritative record, including on duplicate attempts.
type CheckInResult struct {
	First            *model.CheckInRecord
	AlreadyCheckedIn bool
}

func NewLedger(reg *registry.Service, tickets db.TicketStore) *Ledger {
	return &Ledger{
		registry: reg,
		tickets:  tickets,
		logger:   slog.Default().WithGroup("ticket"),
	}
}

type Ledger struct {
	registry *registry.Service
	tickets  db.TicketStore
	logger   *slog.Logger
}

// Issue mints the member's ticket, or returns the existing one. Valid
// only once attendance is confirmed. Runs under the member's lock, so
// two near-simultaneous issues yield one ticket reference.
func (l *Ledger) Issue(ctx context.Context, memberID uuid.UUID, operator string) (*IssueResult, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Ledger.Issue")
	defer span.End()

	result := &IssueResult{}
	_, err := l.registry.WithMember(ctx, memberID, func(m *model.Member) error {
		if m.TicketIssued {
			existing, err := l.tickets.GetTicketByMember(ctx, m.ID)
			if err != nil {
				span.RecordError(err)
				return err
			}
			result.Ticket = existing
			result.AlreadyIssued = true
			return nil
		}
		if m.Stage != model.StageAttendanceConfirmed {
			return model.ErrNotAttending
		}

		// A crash between ticket write and member write leaves an orphan
		// ticket; reuse it instead of minting a second reference.
		t, err := l.tickets.GetTicketByMember(ctx, m.ID)
		if err != nil {
			t = &model.Ticket{
				Reference: uuid.New(),
				MemberID:  m.ID,
				EventID:   m.EventID,
				IssuedAt:  time.Now(),
				IssuedBy:  operator,
			}
			if err := l.tickets.CreateTicket(ctx, t); err != nil {
				span.RecordError(err)
				return err
			}
		}

		issuedAt := t.IssuedAt
		m.Stage = model.StageTicketIssued
		m.TicketIssued = true
		m.TicketIssuedAt = &issuedAt
		m.AppendAudit(operator, "issue_ticket", t.Reference.String())
		result.Ticket = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CheckIn records the member's arrival. The first check-in wins; any
// later attempt leaves the authoritative record untouched, appends a
// duplicate entry to the ledger and reports AlreadyCheckedIn.
func (l *Ledger) CheckIn(ctx context.Context, memberID uuid.UUID, method model.CheckInMethod, operator, venue string) (*CheckInResult, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Ledger.CheckIn")
	defer span.End()

	result := &CheckInResult{}
	_, err := l.registry.WithMember(ctx, memberID, func(m *model.Member) error {
		if !m.TicketIssued {
			return model.ErrNoTicket
		}
		t, err := l.tickets.GetTicketByMember(ctx, m.ID)
		if err != nil {
			span.RecordError(err)
			return model.ErrNoTicket
		}

		record := model.CheckInRecord{
			At:       time.Now(),
			Method:   method,
			Operator: operator,
			Venue:    venue,
		}

		if m.CheckedIn {
			record.Duplicate = true
			t.CheckIns = append(t.CheckIns, record)
			if err := l.tickets.UpdateTicket(ctx, t); err != nil {
				span.RecordError(err)
				return err
			}
			result.First = t.FirstCheckIn()
			result.AlreadyCheckedIn = true
			l.logger.InfoContext(ctx, "duplicate check-in attempt",
				"member", m.ID.String(), "operator", operator)
			return nil
		}

		if m.Stage != model.StageTicketIssued {
			return model.ErrNoTicket
		}
		t.CheckIns = append(t.CheckIns, record)
		if err := l.tickets.UpdateTicket(ctx, t); err != nil {
			span.RecordError(err)
			return err
		}

		m.Stage = model.StageCheckedIn
		m.CheckedIn = true
		at := record.At
		m.CheckedInAt = &at
		m.AppendAudit(operator, "check_in", method.String()+" at "+venue)
		result.First = t.FirstCheckIn()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Ticket returns the member's issued ticket for re-delivery; it never
// creates one.
func (l *Ledger) Ticket(ctx context.Context, memberID uuid.UUID) (*model.Ticket, error) {
	t, err := l.tickets.GetTicketByMember(ctx, memberID)
	if err != nil {
		return nil, model.ErrNoTicket
	}
	return t, nil
}
