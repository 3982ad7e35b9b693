// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"bytes"
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
	bucketCampaign = "campaign_store"
	bucketJob      = "campaign_job_store"
)

// jobKey is campaignID followed by memberID, so jobs for one campaign
// share a key prefix and can be range-scanned.
func jobKey(campaignID, memberID uuid.UUID) []byte {
	key := make([]byte, 0, 32)
	key = append(key, campaignID[:]...)
	return append(key, memberID[:]...)
}

func NewCampaignStore(db *bolt.DB) (*CampaignStore, error) {
	return &CampaignStore{db: db}, db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketCampaign)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(bucketJob))
		return err
	})
}

type CampaignStore struct {
	db *bolt.DB
}

func (s *CampaignStore) CreateCampaign(ctx context.Context, c *model.Campaign) (uuid.UUID, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "CreateCampaign")
	defer span.End()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now()
	c.CreatedAt = &now

	return c.ID, s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketCampaign))
		if bucket.Get(c.ID[:]) != nil {
			err := fmt.Errorf("cannot create campaign, uuid already exists")
			span.RecordError(err)
			return err
		}
		j, err := json.Marshal(c)
		if err != nil {
			return err
		}
		return bucket.Put(c.ID[:], j)
	})
}

func (s *CampaignStore) GetCampaignByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetCampaignByID")
	defer span.End()

	c := &model.Campaign{}
	return c, s.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketCampaign)).Get(id[:])
		if res == nil {
			err := fmt.Errorf("could not find campaign")
			span.RecordError(err)
			return err
		}
		return json.Unmarshal(res, c)
	})
}

func (s *CampaignStore) ListCampaigns(ctx context.Context) ([]*model.Campaign, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListCampaigns")
	defer span.End()

	var campaigns []*model.Campaign
	return campaigns, s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketCampaign)).ForEach(func(_, v []byte) error {
			c := &model.Campaign{}
			if err := json.Unmarshal(v, c); err != nil {
				return err
			}
			campaigns = append(campaigns, c)
			return nil
		})
	})
}

func (s *CampaignStore) PutJob(ctx context.Context, job *model.Job) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "PutJob")
	defer span.End()

	return s.db.Update(func(tx *bolt.Tx) error {
		j, err := json.Marshal(job)
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketJob)).Put(jobKey(job.CampaignID, job.MemberID), j)
	})
}

func (s *CampaignStore) GetJob(ctx context.Context, campaignID, memberID uuid.UUID) (*model.Job, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetJob")
	defer span.End()

	job := &model.Job{}
	return job, s.db.View(func(tx *bolt.Tx) error {
		res := tx.Bucket([]byte(bucketJob)).Get(jobKey(campaignID, memberID))
		if res == nil {
			err := fmt.Errorf("could not find job")
			span.RecordError(err)
			return err
		}
		return json.Unmarshal(res, job)
	})
}

func (s *CampaignStore) ListJobs(ctx context.Context, campaignID uuid.UUID) ([]*model.Job, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListJobs")
	defer span.End()

	var jobs []*model.Job
	return jobs, s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket([]byte(bucketJob)).Cursor()
		prefix := campaignID[:]
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			job := &model.Job{}
			if err := json.Unmarshal(v, job); err != nil {
				return err
			}
			jobs = append(jobs, job)
		}
		return nil
	})
}
