// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/model"
)

const bucketEvent = "event_store"

func NewEventStore(db *bolt.DB) (*EventStore, error) {
	return &EventStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketEvent))
		return err
	})
}

type EventStore struct {
	db *bolt.DB
}

func (s *EventStore) CreateEvent(ctx context.Context, event *model.Event) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateEvent")
	defer span.End()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	now := time.Now()
	event.CreatedAt = &now

	return event.ID, s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketEvent))
		if bucket.Get(event.ID[:]) != nil {
			err := fmt.Errorf("cannot create event, uuid already exists")
			span.RecordError(err)
			return err
		}
		j, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return bucket.Put(event.ID[:], j)
	})
}

func (s *EventStore) UpdateEvent(ctx context.Context, event *model.Event) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateEvent")
	defer span.End()

	now := time.Now()
	event.UpdatedAt = &now

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketEvent))
		if bucket.Get(event.ID[:]) == nil {
			err := fmt.Errorf("could not find event")
			span.RecordError(err)
			return err
		}
		j, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return bucket.Put(event.ID[:], j)
	})
}

func (s *EventStore) GetEventByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetEventByID")
	defer span.End()

	event := &model.Event{}
	return event, s.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketEvent)).Get(id[:])
		if res == nil {
			err := fmt.Errorf("could not find event")
			span.RecordError(err)
			return err
		}
		return json.Unmarshal(res, event)
	})
}

func (s *EventStore) ListEvents(ctx context.Context) ([]*model.Event, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListEvents")
	defer span.End()

	var events []*model.Event
	return events, s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketEvent)).ForEach(func(_, v []byte) error {
			event := &model.Event{}
			if err := json.Unmarshal(v, event); err != nil {
				return err
			}
			events = append(events, event)
			return nil
		})
	})
}
