// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package gate

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/quixsi/muster/internal/model"
)

var errUnknownReference = errors.New("unknown ticket reference")

// byReference resolves an opaque ticket reference. References are not a
// storage key, so this scans; door traffic is a trickle compared to the
// ticket population.
func (g *Gate) byReference(ctx context.Context, reference uuid.UUID) (*model.Ticket, *model.Member, error) {
	tickets, err := g.tickets.ListTickets(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, t := range tickets {
		if t.Reference == reference {
			m, err := g.members.GetMemberByID(ctx, t.MemberID)
			if err != nil {
				return nil, nil, err
			}
			return t, m, nil
		}
	}
	return nil, nil, errUnknownReference
}

type ticketPage struct {
	Station   string
	Reference string
	Name      string
	Venue     string
	Session   string
	CheckedIn bool
}

func (g *Gate) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := g.templates.home.Execute(w, ticketPage{Station: g.station}); err != nil {
		g.logger.ErrorContext(ctx, "failed to execute template", "error", err)
	}
}

func (g *Gate) ticket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reference, err := uuid.Parse(r.PathValue("reference"))
	if err != nil {
		http.Error(w, "unknown ticket", http.StatusNotFound)
		return
	}
	t, m, err := g.byReference(ctx, reference)
	if err != nil {
		if errors.Is(err, errUnknownReference) {
			http.Error(w, "unknown ticket", http.StatusNotFound)
			return
		}
		g.logger.ErrorContext(ctx, "ticket lookup failed", "error", err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	page := ticketPage{
		Station:   g.station,
		Reference: t.Reference.String(),
		Name:      m.FirstName + " " + m.LastName,
		Venue:     m.AssignedVenue,
		CheckedIn: m.CheckedIn,
	}
	if m.SessionAt != nil {
		page.Session = m.SessionAt.Format(time.RFC1123)
	}
	if err := g.templates.ticket.Execute(w, page); err != nil {
		g.logger.ErrorContext(ctx, "failed to execute template", "error", err)
	}
}

func (g *Gate) checkin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not parse form", http.StatusBadRequest)
		return
	}
	reference, err := uuid.Parse(r.PostFormValue("reference"))
	if err != nil {
		http.Error(w, "unknown ticket", http.StatusNotFound)
		return
	}
	t, m, err := g.byReference(ctx, reference)
	if err != nil {
		if errors.Is(err, errUnknownReference) {
			http.Error(w, "unknown ticket", http.StatusNotFound)
			return
		}
		g.logger.ErrorContext(ctx, "ticket lookup failed", "error", err)
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	result, err := g.ledger.CheckIn(ctx, m.ID, model.CheckInMethodKiosk, g.station, m.AssignedVenue)
	if err != nil {
		g.logger.ErrorContext(ctx, "check-in failed", "member", m.ID.String(), "error", err)
		http.Error(w, "check-in failed", http.StatusConflict)
		return
	}

	page := ticketPage{
		Station:   g.station,
		Reference: t.Reference.String(),
		Name:      m.FirstName + " " + m.LastName,
		Venue:     m.AssignedVenue,
		CheckedIn: true,
	}
	if result.AlreadyCheckedIn {
		page.Session = "already checked in at " + result.First.At.Format(time.Kitchen)
	}
	if err := g.templates.ticket.Execute(w, page); err != nil {
		g.logger.ErrorContext(ctx, "failed to execute template", "error", err)
	}
}
