// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package eligibility decides whether an absent member qualifies for a
// special vote. The rules are pure functions of region and absence
// reason; they never read a member record.
package eligibility

import "github.com/quixsi/muster/internal/model"

// Result is the outcome of one evaluation. Rationale is only populated
// for eligible combinations.
type Result struct {
	Eligible  bool
	Rationale string
}

// EvaluateSpecialVote applies the region and reason gates. Only Central
// and Southern members qualify, and only for the closed reason set;
// free-text reasons and anything unrecognized fail closed.
func EvaluateSpecialVote(region model.Region, reason model.AbsenceReason) Result {
	if region != model.RegionCentral && region != model.RegionSouthern {
		return Result{}
	}

	switch reason {
	case model.AbsenceReasonSick:
		return Result{Eligible: true, Rationale: "unable to attend due to illness"}
	case model.AbsenceReasonDistance:
		return Result{Eligible: true, Rationale: "unable to attend due to travel distance"}
	case model.AbsenceReasonWork:
		return Result{Eligible: true, Rationale: "unable to attend due to work commitments"}
	}
	return Result{}
}
