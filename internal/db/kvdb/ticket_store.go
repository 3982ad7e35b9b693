// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/model"
)

const bucketTicket = "ticket_store"

func NewTicketStore(db *bolt.DB) (*TicketStore, error) {
	return &TicketStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketTicket))
		return err
	})
}

type TicketStore struct {
	db *bolt.DB
}

func (s *TicketStore) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateTicket")
	defer span.End()

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketTicket))
		if bucket.Get(ticket.MemberID[:]) != nil {
			err := fmt.Errorf("cannot create ticket, member already has one")
			span.RecordError(err)
			return err
		}
		j, err := json.Marshal(ticket)
		if err != nil {
			return err
		}
		return bucket.Put(ticket.MemberID[:], j)
	})
}

func (s *TicketStore) UpdateTicket(ctx context.Context, ticket *model.Ticket) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateTicket")
	defer span.End()

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketTicket))
		if bucket.Get(ticket.MemberID[:]) == nil {
			err := fmt.Errorf("could not find ticket")
			span.RecordError(err)
			return err
		}
		j, err := json.Marshal(ticket)
		if err != nil {
			return err
		}
		return bucket.Put(ticket.MemberID[:], j)
	})
}

func (s *TicketStore) GetTicketByMember(ctx context.Context, memberID uuid.UUID) (*model.Ticket, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetTicketByMember")
	defer span.End()

	ticket := &model.Ticket{}
	return ticket, s.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketTicket)).Get(memberID[:])
		if res == nil {
			err := fmt.Errorf("could not find ticket")
			span.RecordError(err)
			return err
		}
		return json.Unmarshal(res, ticket)
	})
}

func (s *TicketStore) ListTickets(ctx context.Context) ([]*model.Ticket, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListTickets")
	defer span.End()

	var tickets []*model.Ticket
	return tickets, s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketTicket)).ForEach(func(_, v []byte) error {
			ticket := &model.Ticket{}
			if err := json.Unmarshal(v, ticket); err != nil {
				return err
			}
			tickets = append(tickets, ticket)
			return nil
		})
	})
}
