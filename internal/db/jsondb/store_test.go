// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/quixsi/muster/internal/model"
)

func TestMemberStore(t *testing.T) {
	ctx := context.Background()
	filename := t.TempDir() + "/members.json"

	store, err := NewMemberStore(filename)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	member := &model.Member{
		Token:            uuid.New(),
		MembershipNumber: "M-0001",
		FirstName:        "Ada",
		Region:           model.RegionCentral,
		Stage:            model.StageInvited,
	}
	id, err := store.CreateMember(ctx, member)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateMember(ctx, member); err == nil {
		t.Fatal("duplicate create must fail")
	}

	member.Stage = model.StagePreferenceSubmitted
	if err := store.UpdateMember(ctx, member); err != nil {
		t.Fatalf("update: %v", err)
	}

	byToken, err := store.GetMemberByToken(ctx, member.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if byToken.ID != id {
		t.Fatalf("token lookup returned %s, want %s", byToken.ID, id)
	}

	// Reopen from disk, state must survive.
	reopened, err := NewMemberStore(filename)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.GetMemberByID(ctx, id)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Stage != model.StagePreferenceSubmitted || got.MembershipNumber != "M-0001" {
		t.Fatalf("unexpected record after reopen: %+v", got)
	}
}

func TestTicketStore(t *testing.T) {
	ctx := context.Background()
	filename := t.TempDir() + "/tickets.json"

	store, err := NewTicketStore(filename)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	tk := &model.Ticket{Reference: uuid.New(), MemberID: uuid.New()}
	if err := store.CreateTicket(ctx, tk); err != nil {
		t.Fatalf("create: %v", err)
	}

	tk.CheckIns = append(tk.CheckIns, model.CheckInRecord{Method: model.CheckInMethodQR, Operator: "door-1"})
	if err := store.UpdateTicket(ctx, tk); err != nil {
		t.Fatalf("update: %v", err)
	}

	reopened, err := NewTicketStore(filename)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.GetTicketByMember(ctx, tk.MemberID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Reference != tk.Reference || len(got.CheckIns) != 1 {
		t.Fatalf("unexpected ticket after reopen: %+v", got)
	}
	if _, err := reopened.GetTicketByMember(ctx, uuid.New()); err == nil {
		t.Fatal("unknown member must not resolve a ticket")
	}
}

func TestCampaignStore(t *testing.T) {
	ctx := context.Background()
	filename := t.TempDir() + "/campaigns.json"

	store, err := NewCampaignStore(filename)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	c := &model.Campaign{Name: "wave 1", Subject: "s", Body: "b"}
	if _, err := store.CreateCampaign(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	memberID := uuid.New()
	job := &model.Job{CampaignID: c.ID, MemberID: memberID, Status: model.JobStatusQueued}
	if err := store.PutJob(ctx, job); err != nil {
		t.Fatalf("put job: %v", err)
	}
	job.Status = model.JobStatusSent
	if err := store.PutJob(ctx, job); err != nil {
		t.Fatalf("upsert job: %v", err)
	}

	reopened, err := NewCampaignStore(filename)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.GetJob(ctx, c.ID, memberID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Status != model.JobStatusSent {
		t.Fatalf("job status = %s, want sent", got.Status)
	}
	jobs, err := reopened.ListJobs(ctx, c.ID)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected one job, got %d", len(jobs))
	}
}
