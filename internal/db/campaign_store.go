// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/google/uuid"

	"github.com/quixsi/muster/internal/model"
)

type CampaignStore interface {
	CreateCampaign(context.Context, *model.Campaign) (uuid.UUID, error)
	GetCampaignByID(context.Context, uuid.UUID) (*model.Campaign, error)
	ListCampaigns(context.Context) ([]*model.Campaign, error)

	// PutJob upserts one job keyed (campaign, member).
	PutJob(context.Context, *model.Job) error
	GetJob(ctx context.Context, campaignID, memberID uuid.UUID) (*model.Job, error)
	ListJobs(ctx context.Context, campaignID uuid.UUID) ([]*model.Job, error)
}
