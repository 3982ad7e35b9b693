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

// MemberStore keeps registration records in a JSON file. Suitable for
// small events and local development; kvdb is the production backend.
type MemberStore struct {
	filename string
	mu       sync.RWMutex
	members  map[uuid.UUID]*model.Member
}

func NewMemberStore(filename string) (*MemberStore, error) {
	store := &MemberStore{
		filename: filename,
		members:  make(map[uuid.UUID]*model.Member),
	}
	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *MemberStore) CreateMember(ctx context.Context, member *model.Member) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateMember")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	if _, ok := s.members[member.ID]; ok {
		err := errors.New("member already exists")
		span.RecordError(err)
		return uuid.Nil, err
	}
	now := time.Now()
	member.CreatedAt = &now
	s.members[member.ID] = member

	if err := s.saveToFile(ctx); err != nil {
		return uuid.Nil, err
	}
	return member.ID, nil
}

func (s *MemberStore) UpdateMember(ctx context.Context, member *model.Member) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "UpdateMember")
	defer span.End()

	if member.ID == uuid.Nil {
		err := errors.New("member ID is required for updating")
		span.RecordError(err)
		return err
	}

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	if _, ok := s.members[member.ID]; !ok {
		err := errors.New("member not found")
		span.RecordError(err)
		return err
	}

	now := time.Now()
	member.UpdatedAt = &now
	s.members[member.ID] = member

	return s.saveToFile(ctx)
}

func (s *MemberStore) GetMemberByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetMemberByID")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	member, ok := s.members[id]
	if !ok {
		err := errors.New("member not found")
		span.RecordError(err)
		return nil, err
	}
	return member, nil
}

func (s *MemberStore) GetMemberByToken(ctx context.Context, token uuid.UUID) (*model.Member, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetMemberByToken")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	for _, member := range s.members {
		if member.Token == token {
			return member, nil
		}
	}
	err := errors.New("member not found")
	span.RecordError(err)
	return nil, err
}

func (s *MemberStore) ListMembers(ctx context.Context) ([]*model.Member, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListMembers")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	memberList := make([]*model.Member, 0, len(s.members))
	for _, member := range s.members {
		memberList = append(memberList, member)
	}
	return memberList, nil
}

func (s *MemberStore) saveToFile(ctx context.Context) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(s.members, "", "  ")
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

func (s *MemberStore) loadFromFile() error {
	if _, err := os.Stat(s.filename); os.IsNotExist(err) {
		return nil
	}
	fileData, err := os.ReadFile(s.filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return json.Unmarshal(fileData, &s.members)
}
