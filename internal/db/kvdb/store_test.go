// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"testing"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/quixsi/muster/internal/model"
)

func testDB(t *testing.T) *bolt.DB {
	t.Helper()
	db, err := bolt.Open(t.TempDir()+"/test.db", 0600, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMemberStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewMemberStore(testDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	member := &model.Member{
		Token:            uuid.New(),
		MembershipNumber: "M-0001",
		Region:           model.RegionSouthern,
		Stage:            model.StageInvited,
	}
	id, err := store.CreateMember(ctx, member)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateMember(ctx, member); err == nil {
		t.Fatal("duplicate create must fail")
	}

	byToken, err := store.GetMemberByToken(ctx, member.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if byToken.ID != id {
		t.Fatalf("token index returned %s, want %s", byToken.ID, id)
	}

	member.Stage = model.StageNotAttending
	if err := store.UpdateMember(ctx, member); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.GetMemberByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stage != model.StageNotAttending {
		t.Fatalf("stage = %s, want not_attending", got.Stage)
	}

	members, err := store.ListMembers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected one member, got %d", len(members))
	}
}

func TestTicketStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewTicketStore(testDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	tk := &model.Ticket{Reference: uuid.New(), MemberID: uuid.New()}
	if err := store.CreateTicket(ctx, tk); err != nil {
		t.Fatalf("create: %v", err)
	}
	tk.CheckIns = append(tk.CheckIns, model.CheckInRecord{Method: model.CheckInMethodKiosk, Operator: "door-1"})
	if err := store.UpdateTicket(ctx, tk); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetTicketByMember(ctx, tk.MemberID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Reference != tk.Reference || len(got.CheckIns) != 1 {
		t.Fatalf("unexpected ticket: %+v", got)
	}
	if _, err := store.GetTicketByMember(ctx, uuid.New()); err == nil {
		t.Fatal("unknown member must not resolve a ticket")
	}
}

func TestCampaignStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewCampaignStore(testDB(t))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	first := &model.Campaign{Name: "wave 1"}
	second := &model.Campaign{Name: "wave 2"}
	if _, err := store.CreateCampaign(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateCampaign(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Jobs in different campaigns must not bleed into each other's scans.
	for i := 0; i < 3; i++ {
		if err := store.PutJob(ctx, &model.Job{
			CampaignID: first.ID, MemberID: uuid.New(), Status: model.JobStatusSent,
		}); err != nil {
			t.Fatalf("put job: %v", err)
		}
	}
	otherMember := uuid.New()
	if err := store.PutJob(ctx, &model.Job{
		CampaignID: second.ID, MemberID: otherMember, Status: model.JobStatusQueued,
	}); err != nil {
		t.Fatalf("put job: %v", err)
	}

	jobs, err := store.ListJobs(ctx, first.ID)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected three jobs, got %d", len(jobs))
	}

	job, err := store.GetJob(ctx, second.ID, otherMember)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != model.JobStatusQueued {
		t.Fatalf("status = %s, want queued", job.Status)
	}

	job.Status = model.JobStatusSent
	if err := store.PutJob(ctx, job); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	job, err = store.GetJob(ctx, second.ID, otherMember)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Status != model.JobStatusSent {
		t.Fatalf("status = %s, want sent after upsert", job.Status)
	}

	campaigns, err := store.ListCampaigns(ctx)
	if err != nil {
		t.Fatalf("list campaigns: %v", err)
	}
	if len(campaigns) != 2 {
		t.Fatalf("expected two campaigns, got %d", len(campaigns))
	}
}
