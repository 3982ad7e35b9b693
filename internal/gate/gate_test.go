// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package gate

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quixsi/muster/internal/db/jsondb"
	"github.com/quixsi/muster/internal/model"
	"github.com/quixsi/muster/internal/registry"
	"github.com/quixsi/muster/internal/ticket"
)

func newTestGate(t *testing.T) (http.Handler, *model.Ticket) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	members, err := jsondb.NewMemberStore(dir + "/members.json")
	if err != nil {
		t.Fatalf("member store: %v", err)
	}
	tickets, err := jsondb.NewTicketStore(dir + "/tickets.json")
	if err != nil {
		t.Fatalf("ticket store: %v", err)
	}
	reg := registry.NewService(members)
	ledger := ticket.NewLedger(reg, tickets)

	m, err := reg.Invite(ctx, &model.Member{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Region:    model.RegionCentral,
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
	if _, err := reg.ConfirmAttendance(ctx, m.Token, true, model.AbsenceReasonUnknown, ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	issued, err := ledger.Issue(ctx, m.ID, "admin")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	g := NewGate(slog.Default(), "127.0.0.1:0", "door-1", ledger, tickets, members)
	mux := http.NewServeMux()
	mux.Handle("GET /", http.HandlerFunc(g.home))
	mux.Handle("GET /tickets/{reference}", http.HandlerFunc(g.ticket))
	mux.Handle("POST /checkin", http.HandlerFunc(g.checkin))
	return mux, issued.Ticket
}

func TestTicketPage(t *testing.T) {
	mux, tk := newTestGate(t)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/"+tk.Reference.String(), nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	page := w.Body.String()
	if !strings.Contains(page, "Ada Lovelace") || !strings.Contains(page, tk.Reference.String()) {
		t.Fatalf("unexpected ticket page: %s", page)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/"+uuid.New().String(), nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown reference status = %d", w.Code)
	}
}

func TestKioskCheckIn(t *testing.T) {
	mux, tk := newTestGate(t)

	form := url.Values{"reference": {tk.Reference.String()}}
	req := httptest.NewRequest(http.MethodPost, "/checkin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Checked in") {
		t.Fatalf("expected confirmation page, got: %s", w.Body.String())
	}

	// A second scan reports the earlier arrival rather than failing.
	req = httptest.NewRequest(http.MethodPost, "/checkin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("duplicate status = %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "already checked in") {
		t.Fatalf("expected duplicate notice, got: %s", w.Body.String())
	}
}
