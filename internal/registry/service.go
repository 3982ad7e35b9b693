// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package registry owns the member registration lifecycle. Every mutation
// goes through one of the Service operations, which serialize per member
// and validate against the transition table before persisting.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/eligibility"
	"github.com/quixsi/muster/internal/model"
)

// transitions is the authoritative stage transition table for ordinary
// (non-override) operations. Self-loops mark idempotent re-submission.
var transitions = map[model.Stage]map[model.Stage]bool{
	model.StageInvited: {
		model.StagePreferenceSubmitted: true,
	},
	model.StagePreferenceSubmitted: {
		model.StagePreferenceSubmitted: true,
		model.StageVenueAssigned:       true,
	},
	model.StageVenueAssigned: {
		model.StageVenueAssigned:       true,
		model.StageAttendanceConfirmed: true,
		model.StageNotAttending:        true,
	},
	model.StageAttendanceConfirmed: {
		model.StageAttendanceConfirmed: true,
		model.StageNotAttending:        true,
		model.StageTicketIssued:        true,
	},
	model.StageNotAttending: {
		model.StageNotAttending:        true,
		model.StageAttendanceConfirmed: true,
	},
	model.StageTicketIssued: {
		model.StageCheckedIn: true,
	},
	model.StageCheckedIn: {},
}

func canTransition(from, to model.Stage) bool {
	return transitions[from][to]
}

func NewService(members db.MemberStore) *Service {
	return &Service{
		members: members,
		locks:   make(map[uuid.UUID]*sync.Mutex),
		logger:  slog.Default().WithGroup("registry"),
	}
}

type Service struct {
	members db.MemberStore
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// lockFor returns the mutex serializing mutations for one member. Locks
// are kept for the process lifetime; the population is bounded by the
// invite list.
func (s *Service) lockFor(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// WithMember runs fn on a clone of the member record under the member's
// lock and persists the clone if fn succeeds. Concurrent operations on
// the same member observe each other's committed result, never a race.
func (s *Service) WithMember(ctx context.Context, id uuid.UUID, fn func(*model.Member) error) (*model.Member, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Service.WithMember")
	defer span.End()

	span.AddEvent("Lock")
	l := s.lockFor(id)
	l.Lock()
	defer span.AddEvent("Unlock")
	defer l.Unlock()

	member, err := s.members.GetMemberByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, model.ErrNotFound
	}
	work := member.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	if err := s.members.UpdateMember(ctx, work); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return work, nil
}

func (s *Service) withMemberByToken(ctx context.Context, token uuid.UUID, fn func(*model.Member) error) (*model.Member, error) {
	member, err := s.members.GetMemberByToken(ctx, token)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return s.WithMember(ctx, member.ID, fn)
}

// GetByToken resolves one member record for the self-service views.
func (s *Service) GetByToken(ctx context.Context, token uuid.UUID) (*model.Member, error) {
	member, err := s.members.GetMemberByToken(ctx, token)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return member.Clone(), nil
}

// Invite creates a fresh registration record at the invited stage.
func (s *Service) Invite(ctx context.Context, member *model.Member) (*model.Member, error) {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if member.Token == uuid.Nil {
		member.Token = uuid.New()
	}
	member.Stage = model.StageInvited
	member.Attendance = model.AttendanceUndecided
	if _, err := s.members.CreateMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// SubmitPreference captures or overwrites the member's preference block.
// Allowed until venue assignment closes; a re-submission after assignment
// keeps the assigned stage.
func (s *Service) SubmitPreference(ctx context.Context, token uuid.UUID, prefs *model.Preferences) (*model.Member, error) {
	return s.withMemberByToken(ctx, token, func(m *model.Member) error {
		switch m.Stage {
		case model.StageInvited, model.StagePreferenceSubmitted:
			m.Stage = model.StagePreferenceSubmitted
		case model.StageVenueAssigned:
			// Assignment already happened; keep the stage, refresh the data.
		default:
			return model.ErrInvalidTransition
		}
		m.Preferences = prefs
		return nil
	})
}

// ConfirmAttendance records the attendance decision. Corrections are
// allowed until a ticket is issued. Declining requires a reason and
// derives special-vote eligibility.
func (s *Service) ConfirmAttendance(ctx context.Context, token uuid.UUID, attending bool, reason model.AbsenceReason, detail string) (*model.Member, error) {
	return s.withMemberByToken(ctx, token, func(m *model.Member) error {
		target := model.StageAttendanceConfirmed
		if !attending {
			target = model.StageNotAttending
		}
		if !canTransition(m.Stage, target) {
			return model.ErrInvalidTransition
		}

		if attending {
			m.Stage = model.StageAttendanceConfirmed
			m.Attendance = model.AttendanceYes
			m.AbsenceReason = model.AbsenceReasonUnknown
			m.AbsenceDetail = ""
			s.clearSpecialVote(m)
			return nil
		}

		if reason == model.AbsenceReasonUnknown && detail == "" {
			return model.ErrMissingReason
		}
		m.Stage = model.StageNotAttending
		m.Attendance = model.AttendanceNo
		m.AbsenceReason = reason
		m.AbsenceDetail = detail

		result := eligibility.EvaluateSpecialVote(m.Region, reason)
		m.SpecialVoteEligible = result.Eligible
		m.SpecialVoteRationale = result.Rationale
		if !result.Eligible {
			// A correction may drop eligibility; an open request cannot
			// outlive it.
			m.SpecialVoteRequested = false
			m.SpecialVoteReason = ""
			m.SpecialVoteStatus = model.SpecialVoteStatusNone
		}
		return nil
	})
}

// RequestSpecialVote records the member-initiated request. Valid only for
// non-attending, eligible members; the gate holds server-side regardless
// of what the caller's UI filtered.
func (s *Service) RequestSpecialVote(ctx context.Context, token uuid.UUID, wants bool, reason string) (*model.Member, error) {
	return s.withMemberByToken(ctx, token, func(m *model.Member) error {
		if m.Stage != model.StageNotAttending || !m.SpecialVoteEligible {
			return model.ErrNotEligible
		}
		if wants {
			m.SpecialVoteRequested = true
			m.SpecialVoteReason = reason
			m.SpecialVoteStatus = model.SpecialVoteStatusPending
		} else {
			m.SpecialVoteRequested = false
			m.SpecialVoteReason = ""
			m.SpecialVoteStatus = model.SpecialVoteStatusNone
		}
		return nil
	})
}

// AssignVenue is the administrative allocation step. Re-assignment
// overwrites and stays assigned.
func (s *Service) AssignVenue(ctx context.Context, memberID uuid.UUID, venue string, sessionAt time.Time, operator string) (*model.Member, error) {
	return s.WithMember(ctx, memberID, func(m *model.Member) error {
		if !canTransition(m.Stage, model.StageVenueAssigned) {
			return model.ErrInvalidTransition
		}
		m.Stage = model.StageVenueAssigned
		m.AssignedVenue = venue
		m.SessionAt = &sessionAt
		m.AppendAudit(operator, "assign_venue", fmt.Sprintf("venue=%s session=%s", venue, sessionAt.Format(time.RFC3339)))
		return nil
	})
}

// DecideSpecialVote is the admin approval/decline of a pending request.
func (s *Service) DecideSpecialVote(ctx context.Context, memberID uuid.UUID, approve bool, operator string) (*model.Member, error) {
	return s.WithMember(ctx, memberID, func(m *model.Member) error {
		if !m.SpecialVoteRequested {
			return model.ErrNotEligible
		}
		if approve {
			m.SpecialVoteStatus = model.SpecialVoteStatusApproved
		} else {
			m.SpecialVoteStatus = model.SpecialVoteStatusDeclined
		}
		m.AppendAudit(operator, "decide_special_vote", m.SpecialVoteStatus.String())
		return nil
	})
}

// OverrideStage forces a record to a target stage, bypassing the
// transition table. The cross-flag invariants still hold afterwards:
// flags inconsistent with the target stage are reconciled, and the
// override is always audited with operator and justification.
func (s *Service) OverrideStage(ctx context.Context, memberID uuid.UUID, target model.Stage, operator, justification string) (*model.Member, error) {
	if target == model.StageUnknown {
		return nil, model.ErrInvalidTransition
	}
	if justification == "" {
		return nil, errors.New("override requires a justification")
	}
	member, err := s.WithMember(ctx, memberID, func(m *model.Member) error {
		from := m.Stage
		m.Stage = target
		s.reconcileFlags(m, target)
		m.AppendAudit(operator, "override_stage", fmt.Sprintf("%s -> %s: %s", from, target, justification))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.WarnContext(ctx, "stage override",
		"member", memberID.String(),
		"target", target.String(),
		"operator", operator,
		"justification", justification,
	)
	return member, nil
}

func (s *Service) clearSpecialVote(m *model.Member) {
	m.SpecialVoteEligible = false
	m.SpecialVoteRationale = ""
	m.SpecialVoteRequested = false
	m.SpecialVoteReason = ""
	m.SpecialVoteStatus = model.SpecialVoteStatusNone
}

// reconcileFlags rewrites the attendance/ticket/check-in flags so the
// stage/flag mapping holds after an override. Ticket and check-in ledger
// records are never touched; only the member's current flags move.
func (s *Service) reconcileFlags(m *model.Member, target model.Stage) {
	now := time.Now()
	switch target {
	case model.StageInvited, model.StagePreferenceSubmitted, model.StageVenueAssigned:
		m.Attendance = model.AttendanceUndecided
		m.AbsenceReason = model.AbsenceReasonUnknown
		m.AbsenceDetail = ""
		s.clearSpecialVote(m)
		m.TicketIssued = false
		m.TicketIssuedAt = nil
		m.CheckedIn = false
		m.CheckedInAt = nil
		if target != model.StageVenueAssigned {
			m.AssignedVenue = ""
			m.SessionAt = nil
		}
	case model.StageAttendanceConfirmed:
		m.Attendance = model.AttendanceYes
		m.AbsenceReason = model.AbsenceReasonUnknown
		m.AbsenceDetail = ""
		s.clearSpecialVote(m)
		m.TicketIssued = false
		m.TicketIssuedAt = nil
		m.CheckedIn = false
		m.CheckedInAt = nil
	case model.StageNotAttending:
		m.Attendance = model.AttendanceNo
		result := eligibility.EvaluateSpecialVote(m.Region, m.AbsenceReason)
		m.SpecialVoteEligible = result.Eligible
		m.SpecialVoteRationale = result.Rationale
		if !result.Eligible {
			m.SpecialVoteRequested = false
			m.SpecialVoteReason = ""
			m.SpecialVoteStatus = model.SpecialVoteStatusNone
		}
		m.TicketIssued = false
		m.TicketIssuedAt = nil
		m.CheckedIn = false
		m.CheckedInAt = nil
	case model.StageTicketIssued:
		m.Attendance = model.AttendanceYes
		s.clearSpecialVote(m)
		m.TicketIssued = true
		if m.TicketIssuedAt == nil {
			m.TicketIssuedAt = &now
		}
		m.CheckedIn = false
		m.CheckedInAt = nil
	case model.StageCheckedIn:
		m.Attendance = model.AttendanceYes
		s.clearSpecialVote(m)
		m.TicketIssued = true
		if m.TicketIssuedAt == nil {
			m.TicketIssuedAt = &now
		}
		m.CheckedIn = true
		if m.CheckedInAt == nil {
			m.CheckedInAt = &now
		}
	}
}
