// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package model

import (
	"time"

	"github.com/google/uuid"
)

// Channel is the outbound delivery channel picked for one recipient.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// JobStatus is the lifecycle of one recipient's outbound job.
type JobStatus int

const (
	JobStatusQueued JobStatus = iota
	JobStatusSent
	JobStatusFailed
	JobStatusSkipped
)

func (s JobStatus) String() string {
	switch s {
	case JobStatusSent:
		return "sent"
	case JobStatusFailed:
		return "failed"
	case JobStatusSkipped:
		return "skipped"
	}
	return "queued"
}

// Campaign is one bulk send: a criteria-selected recipient set plus a
// message template.
type Campaign struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"event_id"`
	Name      string     `json:"name"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Criteria  Criteria   `json:"criteria"`
	CreatedAt *time.Time `json:"created_at"`
	CreatedBy string     `json:"created_by"`
}

// Job is one recipient's outbound unit, keyed (campaign, member) so a
// rerun resumes over the unsent remainder only.
type Job struct {
	CampaignID uuid.UUID  `json:"campaign_id"`
	MemberID   uuid.UUID  `json:"member_id"`
	Channel    Channel    `json:"channel,omitempty"`
	Recipient  string     `json:"recipient,omitempty"`
	Status     JobStatus  `json:"status"`
	Attempts   int        `json:"attempts"`
	Error      string     `json:"error,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Report aggregates job outcomes for one campaign.
type Report struct {
	Queued  int `json:"queued"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Count rebuilds a report from job records.
func (r *Report) Count(jobs []*Job) {
	*r = Report{}
	for _, job := range jobs {
		switch job.Status {
		case JobStatusSent:
			r.Sent++
		case JobStatusFailed:
			r.Failed++
		case JobStatusSkipped:
			r.Skipped++
		default:
			r.Queued++
		}
	}
}
