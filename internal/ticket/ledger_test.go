// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package ticket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quixsi/muster/internal/model"
	"github.com/quixsi/muster/internal/registry"
)

type fakeMemberStore struct {
	mu      sync.Mutex
	members map[uuid.UUID]*model.Member
}

func newFakeMemberStore() *fakeMemberStore {
	return &fakeMemberStore{members: make(map[uuid.UUID]*model.Member)}
}

func (s *fakeMemberStore) CreateMember(_ context.Context, m *model.Member) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m.Clone()
	return m.ID, nil
}

func (s *fakeMemberStore) UpdateMember(_ context.Context, m *model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m.Clone()
	return nil
}

func (s *fakeMemberStore) GetMemberByID(_ context.Context, id uuid.UUID) (*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[id]
	if !ok {
		return nil, errors.New("member not found")
	}
	return m.Clone(), nil
}

func (s *fakeMemberStore) GetMemberByToken(_ context.Context, token uuid.UUID) (*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if m.Token == token {
			return m.Clone(), nil
		}
	}
	return nil, errors.New("member not found")
}

func (s *fakeMemberStore) ListMembers(_ context.Context) ([]*model.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m.Clone())
	}
	return out, nil
}

type fakeTicketStore struct {
	mu      sync.Mutex
	tickets map[uuid.UUID]*model.Ticket
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{tickets: make(map[uuid.UUID]*model.Ticket)}
}

func (s *fakeTicketStore) CreateTicket(_ context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.MemberID] = t
	return nil
}

func (s *fakeTicketStore) UpdateTicket(_ context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.MemberID] = t
	return nil
}

func (s *fakeTicketStore) GetTicketByMember(_ context.Context, memberID uuid.UUID) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[memberID]
	if !ok {
		return nil, errors.New("ticket not found")
	}
	return t, nil
}

func (s *fakeTicketStore) ListTickets(_ context.Context) ([]*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t)
	}
	return out, nil
}

// confirmedMember walks a fresh member to the attendance-confirmed stage.
func confirmedMember(t *testing.T, reg *registry.Service) *model.Member {
	t.Helper()
	ctx := context.Background()
	m, err := reg.Invite(ctx, &model.Member{
		MembershipNumber: "M-2002",
		FirstName:        "Grace",
		LastName:         "Hopper",
		Email:            "grace@example.com",
		Region:           model.RegionCentral,
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := reg.SubmitPreference(ctx, m.Token, &model.Preferences{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := reg.AssignVenue(ctx, m.ID, "Town Hall", time.Now(), "admin"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	m, err = reg.ConfirmAttendance(ctx, m.Token, true, model.AbsenceReasonUnknown, "")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	return m
}

func TestIssue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("issue then reissue returns same reference", func(t *testing.T) {
		members := newFakeMemberStore()
		reg := registry.NewService(members)
		ledger := NewLedger(reg, newFakeTicketStore())
		m := confirmedMember(t, reg)

		first, err := ledger.Issue(ctx, m.ID, "admin")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if first.AlreadyIssued {
			t.Fatal("first issue must not report already issued")
		}
		if first.Ticket.Reference == uuid.Nil {
			t.Fatal("expected a ticket reference")
		}

		got, err := members.GetMemberByID(ctx, m.ID)
		if err != nil {
			t.Fatalf("get member: %v", err)
		}
		if got.Stage != model.StageTicketIssued || !got.TicketIssued {
			t.Fatalf("unexpected member state after issue: %+v", got)
		}

		second, err := ledger.Issue(ctx, m.ID, "admin")
		if err != nil {
			t.Fatalf("reissue: %v", err)
		}
		if !second.AlreadyIssued {
			t.Fatal("reissue must report already issued")
		}
		if second.Ticket.Reference != first.Ticket.Reference {
			t.Fatalf("reissue minted a new reference: %s != %s",
				second.Ticket.Reference, first.Ticket.Reference)
		}
	})

	t.Run("rejected before attendance confirmation", func(t *testing.T) {
		members := newFakeMemberStore()
		reg := registry.NewService(members)
		ledger := NewLedger(reg, newFakeTicketStore())

		m, err := reg.Invite(ctx, &model.Member{Region: model.RegionCentral})
		if err != nil {
			t.Fatalf("invite: %v", err)
		}
		if _, err := ledger.Issue(ctx, m.ID, "admin"); !errors.Is(err, model.ErrNotAttending) {
			t.Fatalf("expected ErrNotAttending, got %v", err)
		}
	})

	t.Run("orphan ticket is reused", func(t *testing.T) {
		members := newFakeMemberStore()
		tickets := newFakeTicketStore()
		reg := registry.NewService(members)
		ledger := NewLedger(reg, tickets)
		m := confirmedMember(t, reg)

		// Simulates a crash after the ticket write but before the member
		// record was updated.
		orphan := &model.Ticket{
			Reference: uuid.New(),
			MemberID:  m.ID,
			EventID:   m.EventID,
			IssuedAt:  time.Now(),
			IssuedBy:  "admin",
		}
		if err := tickets.CreateTicket(ctx, orphan); err != nil {
			t.Fatalf("plant orphan: %v", err)
		}

		result, err := ledger.Issue(ctx, m.ID, "admin")
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if result.Ticket.Reference != orphan.Reference {
			t.Fatalf("expected orphan to be reused, got %s", result.Ticket.Reference)
		}
	})

	t.Run("unknown member", func(t *testing.T) {
		reg := registry.NewService(newFakeMemberStore())
		ledger := NewLedger(reg, newFakeTicketStore())
		if _, err := ledger.Issue(ctx, uuid.New(), "admin"); !errors.Is(err, model.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCheckIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first check-in wins", func(t *testing.T) {
		members := newFakeMemberStore()
		tickets := newFakeTicketStore()
		reg := registry.NewService(members)
		ledger := NewLedger(reg, tickets)
		m := confirmedMember(t, reg)

		if _, err := ledger.Issue(ctx, m.ID, "admin"); err != nil {
			t.Fatalf("issue: %v", err)
		}
		first, err := ledger.CheckIn(ctx, m.ID, model.CheckInMethodQR, "door-1", "Town Hall")
		if err != nil {
			t.Fatalf("check in: %v", err)
		}
		if first.AlreadyCheckedIn {
			t.Fatal("first check-in must not report a duplicate")
		}
		if first.First == nil || first.First.Operator != "door-1" {
			t.Fatalf("unexpected authoritative record: %+v", first.First)
		}

		got, err := members.GetMemberByID(ctx, m.ID)
		if err != nil {
			t.Fatalf("get member: %v", err)
		}
		if got.Stage != model.StageCheckedIn || !got.CheckedIn {
			t.Fatalf("unexpected member state after check-in: %+v", got)
		}

		second, err := ledger.CheckIn(ctx, m.ID, model.CheckInMethodManual, "door-2", "Town Hall")
		if err != nil {
			t.Fatalf("duplicate check in: %v", err)
		}
		if !second.AlreadyCheckedIn {
			t.Fatal("second check-in must report a duplicate")
		}
		if second.First.Operator != "door-1" {
			t.Fatalf("authoritative record changed: %+v", second.First)
		}

		tk, err := tickets.GetTicketByMember(ctx, m.ID)
		if err != nil {
			t.Fatalf("get ticket: %v", err)
		}
		if len(tk.CheckIns) != 2 {
			t.Fatalf("expected two ledger records, got %d", len(tk.CheckIns))
		}
		if tk.CheckIns[0].Duplicate || !tk.CheckIns[1].Duplicate {
			t.Fatalf("duplicate flags wrong: %+v", tk.CheckIns)
		}
	})

	t.Run("rejected without a ticket", func(t *testing.T) {
		members := newFakeMemberStore()
		reg := registry.NewService(members)
		ledger := NewLedger(reg, newFakeTicketStore())
		m := confirmedMember(t, reg)

		if _, err := ledger.CheckIn(ctx, m.ID, model.CheckInMethodQR, "door-1", "Town Hall"); !errors.Is(err, model.ErrNoTicket) {
			t.Fatalf("expected ErrNoTicket, got %v", err)
		}
	})
}

func TestURLRenderer(t *testing.T) {
	t.Parallel()
	ref := uuid.MustParse("39a502ac-ba10-430d-99ac-e0955eccb73b")
	r := URLRenderer{BaseURL: "https://meet.example.com/"}
	url, err := r.TicketURL(context.Background(), ref)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "https://meet.example.com/tickets/39a502ac-ba10-430d-99ac-e0955eccb73b"
	if url != want {
		t.Fatalf("url = %q, want %q", url, want)
	}
}
