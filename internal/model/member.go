// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Stage is the position of a member registration in the meeting lifecycle.
// Transitions are owned by the registry service; nothing else may move a
// record between stages.
type Stage int

const (
	StageUnknown Stage = iota
	StageInvited
	StagePreferenceSubmitted
	StageVenueAssigned
	StageAttendanceConfirmed
	StageNotAttending
	StageTicketIssued
	StageCheckedIn
)

var stageNames = map[Stage]string{
	StageUnknown:             "unknown",
	StageInvited:             "invited",
	StagePreferenceSubmitted: "preference_submitted",
	StageVenueAssigned:       "venue_assigned",
	StageAttendanceConfirmed: "attendance_confirmed",
	StageNotAttending:        "not_attending",
	StageTicketIssued:        "ticket_issued",
	StageCheckedIn:           "checked_in",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

func ParseStage(raw string) Stage {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for stage, name := range stageNames {
		if name == normalized {
			return stage
		}
	}
	return StageUnknown
}

// Region is the canonical member region. Raw input such as
// "Central Region" is normalized exactly once via ParseRegion; downstream
// code only ever compares the enum.
type Region int

const (
	RegionUnknown Region = iota
	RegionNorthern
	RegionCentral
	RegionSouthern
)

func (r Region) String() string {
	switch r {
	case RegionNorthern:
		return "northern"
	case RegionCentral:
		return "central"
	case RegionSouthern:
		return "southern"
	}
	return "unknown"
}

func ParseRegion(raw string) Region {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.TrimSuffix(normalized, " region")
	switch normalized {
	case "northern", "north":
		return RegionNorthern
	case "central":
		return RegionCentral
	case "southern", "south":
		return RegionSouthern
	}
	return RegionUnknown
}

// AbsenceReason is the closed set of reasons a member may give for not
// attending. Free text goes into Member.AbsenceDetail, never here.
type AbsenceReason int

const (
	AbsenceReasonUnknown AbsenceReason = iota
	AbsenceReasonSick
	AbsenceReasonDistance
	AbsenceReasonWork
	AbsenceReasonOther
)

func (a AbsenceReason) String() string {
	switch a {
	case AbsenceReasonSick:
		return "sick"
	case AbsenceReasonDistance:
		return "distance"
	case AbsenceReasonWork:
		return "work"
	case AbsenceReasonOther:
		return "other"
	}
	return "unknown"
}

func ParseAbsenceReason(raw string) AbsenceReason {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sick", "illness":
		return AbsenceReasonSick
	case "distance", "travel":
		return AbsenceReasonDistance
	case "work":
		return AbsenceReasonWork
	case "other":
		return AbsenceReasonOther
	}
	return AbsenceReasonUnknown
}

// Attendance is the member's declared attendance decision.
type Attendance int

const (
	AttendanceUndecided Attendance = iota
	AttendanceYes
	AttendanceNo
)

func (a Attendance) String() string {
	switch a {
	case AttendanceYes:
		return "attending"
	case AttendanceNo:
		return "not_attending"
	}
	return "undecided"
}

func ParseAttendance(raw string) Attendance {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "attending", "yes", "true":
		return AttendanceYes
	case "not_attending", "no", "false":
		return AttendanceNo
	}
	return AttendanceUndecided
}

// SpecialVoteStatus is the admin-side decision on a special-vote request.
type SpecialVoteStatus int

const (
	SpecialVoteStatusNone SpecialVoteStatus = iota
	SpecialVoteStatusPending
	SpecialVoteStatusApproved
	SpecialVoteStatusDeclined
)

func (s SpecialVoteStatus) String() string {
	switch s {
	case SpecialVoteStatusPending:
		return "pending"
	case SpecialVoteStatusApproved:
		return "approved"
	case SpecialVoteStatusDeclined:
		return "declined"
	}
	return "none"
}

// Preferences is the member-submitted preference block, mutable until
// venue assignment closes.
type Preferences struct {
	Intent     Attendance `json:"intent" form:"intent"`
	VenuePrefs []string   `json:"venue_prefs"`
	TimePrefs  []string   `json:"time_prefs"`
	Comments   string     `json:"comments" form:"comments"`
}

// AuditEntry records one privileged mutation against a member record.
// Entries are append-only.
type AuditEntry struct {
	At       time.Time `json:"at"`
	Operator string    `json:"operator"`
	Action   string    `json:"action"`
	Detail   string    `json:"detail,omitempty"`
}

// Member is one registration record per (member, event) pair. Records are
// created on invite and never deleted.
type Member struct {
	ID               uuid.UUID  `json:"id"`
	EventID          uuid.UUID  `json:"event_id"`
	MembershipNumber string     `json:"membership_number"`
	Token            uuid.UUID  `json:"token"`
	FirstName        string     `json:"firstname"`
	LastName         string     `json:"lastname"`
	Email            string     `json:"email,omitempty"`
	Mobile           string     `json:"mobile,omitempty"`
	Region           Region     `json:"region"`
	Industry         string     `json:"industry,omitempty"`
	SubIndustry      string     `json:"sub_industry,omitempty"`
	CreatedAt        *time.Time `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`

	Stage       Stage        `json:"stage"`
	Preferences *Preferences `json:"preferences,omitempty"`

	AssignedVenue string     `json:"assigned_venue,omitempty"`
	SessionAt     *time.Time `json:"session_at,omitempty"`

	Attendance    Attendance    `json:"attendance"`
	AbsenceReason AbsenceReason `json:"absence_reason,omitempty"`
	AbsenceDetail string        `json:"absence_detail,omitempty"`

	SpecialVoteEligible  bool              `json:"special_vote_eligible"`
	SpecialVoteRationale string            `json:"special_vote_rationale,omitempty"`
	SpecialVoteRequested bool              `json:"special_vote_requested"`
	SpecialVoteReason    string            `json:"special_vote_reason,omitempty"`
	SpecialVoteStatus    SpecialVoteStatus `json:"special_vote_status"`

	TicketIssued   bool       `json:"ticket_issued"`
	TicketIssuedAt *time.Time `json:"ticket_issued_at,omitempty"`
	CheckedIn      bool       `json:"checked_in"`
	CheckedInAt    *time.Time `json:"checked_in_at,omitempty"`

	Audit []AuditEntry `json:"audit,omitempty"`
}

// HasEmail reports whether the record carries a usable email address.
// Targeting decisions read only this, never the raw value.
func (m *Member) HasEmail() bool {
	return strings.TrimSpace(m.Email) != ""
}

// HasMobile reports whether the record carries a usable mobile number.
func (m *Member) HasMobile() bool {
	return strings.TrimSpace(m.Mobile) != ""
}

// Registered reports whether the member has responded at all, i.e. moved
// past the invited stage.
func (m *Member) Registered() bool {
	return m.Stage != StageUnknown && m.Stage != StageInvited
}

// Clone returns a deep copy. Transitions mutate a clone and persist it in
// one store write, so a failed operation never leaves a partial update.
func (m *Member) Clone() *Member {
	out := *m
	if m.CreatedAt != nil {
		t := *m.CreatedAt
		out.CreatedAt = &t
	}
	if m.UpdatedAt != nil {
		t := *m.UpdatedAt
		out.UpdatedAt = &t
	}
	if m.SessionAt != nil {
		t := *m.SessionAt
		out.SessionAt = &t
	}
	if m.TicketIssuedAt != nil {
		t := *m.TicketIssuedAt
		out.TicketIssuedAt = &t
	}
	if m.CheckedInAt != nil {
		t := *m.CheckedInAt
		out.CheckedInAt = &t
	}
	if m.Preferences != nil {
		prefs := *m.Preferences
		prefs.VenuePrefs = append([]string(nil), m.Preferences.VenuePrefs...)
		prefs.TimePrefs = append([]string(nil), m.Preferences.TimePrefs...)
		out.Preferences = &prefs
	}
	out.Audit = append([]AuditEntry(nil), m.Audit...)
	return &out
}

// AppendAudit records a privileged action on the member record.
func (m *Member) AppendAudit(operator, action, detail string) {
	m.Audit = append(m.Audit, AuditEntry{
		At:       time.Now(),
		Operator: operator,
		Action:   action,
		Detail:   detail,
	})
}
