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

const (
	bucketMember      = "member_store"
	bucketMemberToken = "member_token_index"
)

func NewMemberStore(db *bolt.DB) (*MemberStore, error) {
	return &MemberStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketMember)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(bucketMemberToken))
		return err
	})
}

type MemberStore struct {
	db *bolt.DB
}

func (s *MemberStore) CreateMember(ctx context.Context, member *model.Member) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateMember")
	defer span.End()

	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	now := time.Now()
	member.CreatedAt = &now

	return member.ID, s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketMember))
		if bucket.Get(member.ID[:]) != nil {
			err := fmt.Errorf("cannot create member, uuid already exists")
			span.RecordError(err)
			return err
		}
		j, err := json.Marshal(member)
		if err != nil {
			return err
		}
		if err := bucket.Put(member.ID[:], j); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketMemberToken)).Put(member.Token[:], member.ID[:])
	})
}

func (s *MemberStore) UpdateMember(ctx context.Context, member *model.Member) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "UpdateMember")
	defer span.End()

	now := time.Now()
	member.UpdatedAt = &now

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketMember))
		if bucket.Get(member.ID[:]) == nil {
			err := fmt.Errorf("could not find member")
			span.RecordError(err)
			return err
		}
		j, err := json.Marshal(member)
		if err != nil {
			return err
		}
		return bucket.Put(member.ID[:], j)
	})
}

func (s *MemberStore) GetMemberByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetMemberByID")
	defer span.End()

	member := &model.Member{}
	return member, s.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketMember)).Get(id[:])
		if res == nil {
			err := fmt.Errorf("could not find member")
			span.RecordError(err)
			return err
		}
		return json.Unmarshal(res, member)
	})
}

func (s *MemberStore) GetMemberByToken(ctx context.Context, token uuid.UUID) (*model.Member, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetMemberByToken")
	defer span.End()

	member := &model.Member{}
	return member, s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket([]byte(bucketMemberToken)).Get(token[:])
		if id == nil {
			err := fmt.Errorf("could not find member")
			span.RecordError(err)
			return err
		}
		res := tx.Bucket([]byte(bucketMember)).Get(id)
		if res == nil {
			err := fmt.Errorf("could not find member")
			span.RecordError(err)
			return err
		}
		return json.Unmarshal(res, member)
	})
}

func (s *MemberStore) ListMembers(ctx context.Context) ([]*model.Member, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListMembers")
	defer span.End()

	var members []*model.Member
	return members, s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketMember)).ForEach(func(_, v []byte) error {
			member := &model.Member{}
			if err := json.Unmarshal(v, member); err != nil {
				return err
			}
			members = append(members, member)
			return nil
		})
	})
}
