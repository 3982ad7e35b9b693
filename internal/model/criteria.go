// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import "github.com/google/uuid"

// SpecialVoteFilter narrows a segment on special-vote state.
type SpecialVoteFilter string

const (
	SpecialVoteFilterEligible         SpecialVoteFilter = "eligible"
	SpecialVoteFilterRequested        SpecialVoteFilter = "requested"
	SpecialVoteFilterApproved         SpecialVoteFilter = "approved"
	SpecialVoteFilterDeclined         SpecialVoteFilter = "declined"
	SpecialVoteFilterAbsentNoRequest  SpecialVoteFilter = "absent_no_request"
)

// ContactFilter narrows a segment on available contact channels. It is
// computed from the has-email/has-mobile booleans only.
type ContactFilter string

const (
	ContactFilterEmailOnly  ContactFilter = "email_only"
	ContactFilterMobileOnly ContactFilter = "mobile_only"
	ContactFilterBoth       ContactFilter = "both"
	ContactFilterEither     ContactFilter = "either"
)

// Criteria is the declarative segment filter. Every dimension is optional;
// an absent dimension matches everything, a present one narrows the set,
// and all present dimensions combine with logical AND. Contradictory
// combinations yield an empty segment, never an error.
type Criteria struct {
	EventID     *uuid.UUID `json:"event_id,omitempty"`
	Regions     []Region   `json:"regions,omitempty"`
	Industry    string     `json:"industry,omitempty"`
	SubIndustry string     `json:"sub_industry,omitempty"`

	// Search is a case-insensitive substring match on name, email and
	// membership number.
	Search string `json:"search,omitempty"`

	Registered          *bool       `json:"registered,omitempty"`
	Attendance          *Attendance `json:"attendance,omitempty"`
	Stages              []Stage     `json:"stages,omitempty"`
	PreferenceSubmitted *bool       `json:"preference_submitted,omitempty"`
	VenueAssigned       *bool       `json:"venue_assigned,omitempty"`

	SpecialVote SpecialVoteFilter `json:"special_vote,omitempty"`

	// IncludeVenues keeps only members assigned to the listed venues;
	// ExcludeVenues drops members assigned to the listed venues (venue
	// cancellation without touching records).
	IncludeVenues []string `json:"include_venues,omitempty"`
	ExcludeVenues []string `json:"exclude_venues,omitempty"`

	TimePreference string `json:"time_preference,omitempty"`

	Contact ContactFilter `json:"contact,omitempty"`
}
