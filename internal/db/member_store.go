// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/quixsi/muster/internal/model"
)

type MemberStore interface {
	CreateMember(context.Context, *model.Member) (uuid.UUID, error)
	UpdateMember(context.Context, *model.Member) error
	GetMemberByID(context.Context, uuid.UUID) (*model.Member, error)
	GetMemberByToken(context.Context, uuid.UUID) (*model.Member, error)
	ListMembers(context.Context) ([]*model.Member, error)
}
