// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package segment evaluates declarative filter criteria against the
// member population. Preview and send share the same evaluation, so a
// previewed segment is exactly what a campaign targets.
package segment

import (
	"context"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/model"
)

func NewFilter(members db.MemberStore) *Filter {
	return &Filter{members: members}
}

type Filter struct {
	members db.MemberStore
}

// Select returns the members matching the criteria. It is a pure read;
// retrying a preview has no side effects.
func (f *Filter) Select(ctx context.Context, criteria model.Criteria) ([]*model.Member, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Filter.Select")
	defer span.End()

	members, err := f.members.ListMembers(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	matched := Evaluate(members, criteria)
	span.SetAttributes(
		attribute.Int("segment.population", len(members)),
		attribute.Int("segment.matched", len(matched)),
	)
	return matched, nil
}

// Evaluate applies the criteria to a population. Deterministic and total:
// an empty dimension matches everything, a present one narrows, and all
// dimensions AND together. A contradictory combination simply yields an
// empty result.
func Evaluate(members []*model.Member, criteria model.Criteria) []*model.Member {
	var out []*model.Member
	for _, m := range members {
		if Matches(m, criteria) {
			out = append(out, m)
		}
	}
	return out
}

// Matches reports whether one member satisfies every present dimension.
func Matches(m *model.Member, c model.Criteria) bool {
	if c.EventID != nil && m.EventID != *c.EventID {
		return false
	}
	if len(c.Regions) > 0 && !slices.Contains(c.Regions, m.Region) {
		return false
	}
	if c.Industry != "" && !strings.EqualFold(c.Industry, m.Industry) {
		return false
	}
	if c.SubIndustry != "" && !strings.EqualFold(c.SubIndustry, m.SubIndustry) {
		return false
	}
	if c.Search != "" && !matchesSearch(m, c.Search) {
		return false
	}
	if c.Registered != nil && m.Registered() != *c.Registered {
		return false
	}
	if c.Attendance != nil && m.Attendance != *c.Attendance {
		return false
	}
	if len(c.Stages) > 0 && !slices.Contains(c.Stages, m.Stage) {
		return false
	}
	if c.PreferenceSubmitted != nil && (m.Preferences != nil) != *c.PreferenceSubmitted {
		return false
	}
	if c.VenueAssigned != nil && (m.AssignedVenue != "") != *c.VenueAssigned {
		return false
	}
	if c.SpecialVote != "" && !matchesSpecialVote(m, c.SpecialVote) {
		return false
	}
	if len(c.IncludeVenues) > 0 && !containsFold(c.IncludeVenues, m.AssignedVenue) {
		return false
	}
	if len(c.ExcludeVenues) > 0 && containsFold(c.ExcludeVenues, m.AssignedVenue) {
		return false
	}
	if c.TimePreference != "" && !matchesTimePreference(m, c.TimePreference) {
		return false
	}
	if c.Contact != "" && !matchesContact(m, c.Contact) {
		return false
	}
	return true
}

func matchesSearch(m *model.Member, search string) bool {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return true
	}
	haystacks := []string{
		m.FirstName + " " + m.LastName,
		m.Email,
		m.MembershipNumber,
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func matchesSpecialVote(m *model.Member, f model.SpecialVoteFilter) bool {
	switch f {
	case model.SpecialVoteFilterEligible:
		return m.SpecialVoteEligible
	case model.SpecialVoteFilterRequested:
		return m.SpecialVoteRequested
	case model.SpecialVoteFilterApproved:
		return m.SpecialVoteStatus == model.SpecialVoteStatusApproved
	case model.SpecialVoteFilterDeclined:
		return m.SpecialVoteStatus == model.SpecialVoteStatusDeclined
	case model.SpecialVoteFilterAbsentNoRequest:
		return m.Stage == model.StageNotAttending && !m.SpecialVoteRequested
	}
	return false
}

func matchesTimePreference(m *model.Member, pref string) bool {
	if m.Preferences == nil {
		return false
	}
	return containsFold(m.Preferences.TimePrefs, pref)
}

// matchesContact reads the has-email/has-mobile booleans only, never the
// raw contact values.
func matchesContact(m *model.Member, f model.ContactFilter) bool {
	email, mobile := m.HasEmail(), m.HasMobile()
	switch f {
	case model.ContactFilterEmailOnly:
		return email && !mobile
	case model.ContactFilterMobileOnly:
		return mobile && !email
	case model.ContactFilterBoth:
		return email && mobile
	case model.ContactFilterEither:
		return email || mobile
	}
	return false
}

func containsFold(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
