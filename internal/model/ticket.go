// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// CheckInMethod is how a ticket holder was recorded at the door.
type CheckInMethod int

const (
	CheckInMethodUnknown CheckInMethod = iota
	CheckInMethodQR
	CheckInMethodManual
	CheckInMethodKiosk
)

func (m CheckInMethod) String() string {
	switch m {
	case CheckInMethodQR:
		return "qr"
	case CheckInMethodManual:
		return "manual"
	case CheckInMethodKiosk:
		return "kiosk"
	}
	return "unknown"
}

func ParseCheckInMethod(raw string) CheckInMethod {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "qr":
		return CheckInMethodQR
	case "manual":
		return CheckInMethodManual
	case "kiosk":
		return CheckInMethodKiosk
	}
	return CheckInMethodUnknown
}

// CheckInRecord is one check-in attempt. The first non-duplicate record is
// authoritative for reporting; later attempts are appended as duplicates.
type CheckInRecord struct {
	At        time.Time     `json:"at"`
	Method    CheckInMethod `json:"method"`
	Operator  string        `json:"operator"`
	Venue     string        `json:"venue"`
	Duplicate bool          `json:"duplicate,omitempty"`
}

// Ticket is the at-most-one entry artifact per member per event. Reference
// is the opaque value handed to the external renderer; re-delivery reuses
// it rather than minting a new ticket.
type Ticket struct {
	Reference uuid.UUID       `json:"reference"`
	MemberID  uuid.UUID       `json:"member_id"`
	EventID   uuid.UUID       `json:"event_id"`
	IssuedAt  time.Time       `json:"issued_at"`
	IssuedBy  string          `json:"issued_by"`
	CheckIns  []CheckInRecord `json:"check_ins,omitempty"`
}

// FirstCheckIn returns the authoritative check-in record, or nil.
func (t *Ticket) FirstCheckIn() *CheckInRecord {
	for i := range t.CheckIns {
		if !t.CheckIns[i].Duplicate {
			return &t.CheckIns[i]
		}
	}
	return nil
}
