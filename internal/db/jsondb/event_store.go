// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/model"
)

// EventStore keeps meeting metadata in a JSON file.
type EventStore struct {
	filename string
	mu       sync.RWMutex
	events   map[uuid.UUID]*model.Event
}

func NewEventStore(filename string) (*EventStore, error) {
	store := &EventStore{
		filename: filename,
		events:   make(map[uuid.UUID]*model.Event),
	}
	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *EventStore) CreateEvent(ctx context.Context, event *model.Event) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateEvent")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if _, ok := s.events[event.ID]; ok {
		err := errors.New("event already exists")
		span.RecordError(err)
		return uuid.Nil, err
	}
	now := time.Now()
	event.CreatedAt = &now
	s.events[event.ID] = event

	if err := s.saveToFile(ctx); err != nil {
		return uuid.Nil, err
	}
	return event.ID, nil
}

func (s *EventStore) UpdateEvent(ctx context.Context, event *model.Event) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateEvent")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; !ok {
		err := errors.New("event not found")
		span.RecordError(err)
		return err
	}
	now := time.Now()
	event.UpdatedAt = &now
	s.events[event.ID] = event

	return s.saveToFile(ctx)
}

func (s *EventStore) GetEventByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetEventByID")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		err := errors.New("event not found")
		span.RecordError(err)
		return nil, err
	}
	return event, nil
}

func (s *EventStore) ListEvents(ctx context.Context) ([]*model.Event, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListEvents")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	eventList := make([]*model.Event, 0, len(s.events))
	for _, event := range s.events {
		eventList = append(eventList, event)
	}
	return eventList, nil
}

func (s *EventStore) saveToFile(ctx context.Context) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(s.events, "", "  ")
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

func (s *EventStore) loadFromFile() error {
	if _, err := os.Stat(s.filename); os.IsNotExist(err) {
		return nil
	}
	fileData, err := os.ReadFile(s.filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return json.Unmarshal(fileData, &s.events)
}
