// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/model"
)

// TicketStore keeps tickets in a JSON file, keyed by member id.
type TicketStore struct {
	filename string
	mu       sync.RWMutex
	tickets  map[uuid.UUID]*model.Ticket
}

func NewTicketStore(filename string) (*TicketStore, error) {
	store := &TicketStore{
		filename: filename,
		tickets:  make(map[uuid.UUID]*model.Ticket),
	}
	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *TicketStore) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateTicket")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticket.MemberID]; ok {
		err := errors.New("ticket already exists")
		span.RecordError(err)
		return err
	}
	s.tickets[ticket.MemberID] = ticket

	return s.saveToFile(ctx)
}

func (s *TicketStore) UpdateTicket(ctx context.Context, ticket *model.Ticket) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateTicket")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	if _, ok := s.tickets[ticket.MemberID]; !ok {
		err := errors.New("ticket not found")
		span.RecordError(err)
		return err
	}
	s.tickets[ticket.MemberID] = ticket

	return s.saveToFile(ctx)
}

func (s *TicketStore) GetTicketByMember(ctx context.Context, memberID uuid.UUID) (*model.Ticket, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetTicketByMember")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	ticket, ok := s.tickets[memberID]
	if !ok {
		err := errors.New("ticket not found")
		span.RecordError(err)
		return nil, err
	}
	return ticket, nil
}

func (s *TicketStore) ListTickets(ctx context.Context) ([]*model.Ticket, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListTickets")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	ticketList := make([]*model.Ticket, 0, len(s.tickets))
	for _, ticket := range s.tickets {
		ticketList = append(ticketList, ticket)
	}
	return ticketList, nil
}

func (s *TicketStore) saveToFile(ctx context.Context) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(s.tickets, "", "  ")
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := os.WriteFile(s.filename, fileData, 0644); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *TicketStore) loadFromFile() error {
	if _, err := os.Stat(s.filename); os.IsNotExist(err) {
		return nil
	}
	fileData, err := os.ReadFile(s.filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return json.Unmarshal(fileData, &s.tickets)
}
