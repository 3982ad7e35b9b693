// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package segment

import (
	"testing"

	"github.com/google/uuid"

	"github.com/quixsi/muster/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func population() []*model.Member {
	return []*model.Member{
		{
			ID:               uuid.MustParse("00000000-0000-0000-0000-000000000001"),
			MembershipNumber: "M-0001",
			FirstName:        "Ada",
			LastName:         "Lovelace",
			Email:            "ada@example.com",
			Region:           model.RegionCentral,
			Industry:         "Engineering",
			Stage:            model.StageAttendanceConfirmed,
			Attendance:       model.AttendanceYes,
			AssignedVenue:    "Town Hall",
			Preferences:      &model.Preferences{TimePrefs: []string{"evening"}},
		},
		{
			ID:               uuid.MustParse("00000000-0000-0000-0000-000000000002"),
			MembershipNumber: "M-0002",
			FirstName:        "Grace",
			LastName:         "Hopper",
			Mobile:           "+64210000002",
			Region:           model.RegionSouthern,
			Industry:         "Engineering",
			Stage:            model.StageNotAttending,
			Attendance:       model.AttendanceNo,
			AssignedVenue:    "Civic Centre",

			SpecialVoteEligible:  true,
			SpecialVoteRequested: true,
			SpecialVoteStatus:    model.SpecialVoteStatusApproved,
		},
		{
			ID:               uuid.MustParse("00000000-0000-0000-0000-000000000003"),
			MembershipNumber: "M-0003",
			FirstName:        "Alan",
			LastName:         "Turing",
			Email:            "alan@example.com",
			Mobile:           "+64210000003",
			Region:           model.RegionNorthern,
			Industry:         "Research",
			Stage:            model.StageInvited,
		},
		{
			ID:               uuid.MustParse("00000000-0000-0000-0000-000000000004"),
			MembershipNumber: "M-0004",
			FirstName:        "Edsger",
			LastName:         "Dijkstra",
			Region:           model.RegionSouthern,
			Industry:         "Research",
			Stage:            model.StageNotAttending,
			Attendance:       model.AttendanceNo,

			SpecialVoteEligible: true,
		},
	}
}

func ids(members []*model.Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.MembershipNumber)
	}
	return out
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	attendanceNo := model.AttendanceNo
	tt := []struct {
		name     string
		criteria model.Criteria
		want     []string
	}{
		{
			name:     "empty criteria matches everyone",
			criteria: model.Criteria{},
			want:     []string{"M-0001", "M-0002", "M-0003", "M-0004"},
		},
		{
			name:     "region narrows",
			criteria: model.Criteria{Regions: []model.Region{model.RegionSouthern}},
			want:     []string{"M-0002", "M-0004"},
		},
		{
			name: "dimensions AND together",
			criteria: model.Criteria{
				Regions:  []model.Region{model.RegionSouthern},
				Industry: "engineering",
			},
			want: []string{"M-0002"},
		},
		{
			name:     "search is case-insensitive substring",
			criteria: model.Criteria{Search: "hoPPer"},
			want:     []string{"M-0002"},
		},
		{
			name:     "search hits membership number",
			criteria: model.Criteria{Search: "M-0003"},
			want:     []string{"M-0003"},
		},
		{
			name:     "registered filter",
			criteria: model.Criteria{Registered: boolPtr(false)},
			want:     []string{"M-0003"},
		},
		{
			name:     "attendance filter",
			criteria: model.Criteria{Attendance: &attendanceNo},
			want:     []string{"M-0002", "M-0004"},
		},
		{
			name:     "special vote requested",
			criteria: model.Criteria{SpecialVote: model.SpecialVoteFilterRequested},
			want:     []string{"M-0002"},
		},
		{
			name:     "absent without a request",
			criteria: model.Criteria{SpecialVote: model.SpecialVoteFilterAbsentNoRequest},
			want:     []string{"M-0004"},
		},
		{
			name:     "venue exclusion",
			criteria: model.Criteria{ExcludeVenues: []string{"civic centre"}},
			want:     []string{"M-0001", "M-0003", "M-0004"},
		},
		{
			name:     "time preference",
			criteria: model.Criteria{TimePreference: "Evening"},
			want:     []string{"M-0001"},
		},
		{
			name:     "contact channel",
			criteria: model.Criteria{Contact: model.ContactFilterMobileOnly},
			want:     []string{"M-0002"},
		},
		{
			name: "contradictory combination yields empty",
			criteria: model.Criteria{
				Stages:     []model.Stage{model.StageCheckedIn},
				Registered: boolPtr(false),
			},
			want: nil,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Evaluate(population(), tc.criteria))
			if len(got) != len(tc.want) {
				t.Fatalf("matched %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("matched %v, want %v", got, tc.want)
				}
			}
		})
	}
}

// The same criteria evaluated twice over the same population must yield
// the same segment; previews and sends share this evaluation.
func TestEvaluateDeterministic(t *testing.T) {
	t.Parallel()
	criteria := model.Criteria{
		Regions:     []model.Region{model.RegionSouthern},
		SpecialVote: model.SpecialVoteFilterEligible,
	}
	members := population()
	first := ids(Evaluate(members, criteria))
	second := ids(Evaluate(members, criteria))
	if len(first) != len(second) {
		t.Fatalf("evaluation not stable: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("evaluation not stable: %v vs %v", first, second)
		}
	}
}
