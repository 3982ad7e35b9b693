// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/quixsi/muster/internal/model"
)

// TicketStore keys tickets by member id; at most one ticket exists per
// member per event. Check-in records live on the ticket.
type TicketStore interface {
	CreateTicket(context.Context, *model.Ticket) error
	UpdateTicket(context.Context, *model.Ticket) error
	GetTicketByMember(context.Context, uuid.UUID) (*model.Ticket, error)
	ListTickets(context.Context) ([]*model.Ticket, error)
}
