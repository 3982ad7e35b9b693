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

type campaignFile struct {
	Campaigns map[uuid.UUID]*model.Campaign `json:"campaigns"`
	// Jobs is keyed campaignID, then memberID.
	Jobs map[uuid.UUID]map[uuid.UUID]*model.Job `json:"jobs"`
}

// CampaignStore keeps campaigns and their jobs in a JSON file.
type CampaignStore struct {
	filename string
	mu       sync.RWMutex
	data     campaignFile
}

func NewCampaignStore(filename string) (*CampaignStore, error) {
	store := &CampaignStore{
		filename: filename,
		data: campaignFile{
			Campaigns: make(map[uuid.UUID]*model.Campaign),
			Jobs:      make(map[uuid.UUID]map[uuid.UUID]*model.Job),
		},
	}
	if err := store.loadFromFile(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *CampaignStore) CreateCampaign(ctx context.Context, c *model.Campaign) (uuid.UUID, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateCampaign")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if _, ok := s.data.Campaigns[c.ID]; ok {
		err := errors.New("campaign already exists")
		span.RecordError(err)
		return uuid.Nil, err
	}
	now := time.Now()
	c.CreatedAt = &now
	s.data.Campaigns[c.ID] = c

	if err := s.saveToFile(ctx); err != nil {
		return uuid.Nil, err
	}
	return c.ID, nil
}

func (s *CampaignStore) GetCampaignByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetCampaignByID")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	c, ok := s.data.Campaigns[id]
	if !ok {
		err := errors.New("campaign not found")
		span.RecordError(err)
		return nil, err
	}
	return c, nil
}

func (s *CampaignStore) ListCampaigns(ctx context.Context) ([]*model.Campaign, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListCampaigns")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	campaignList := make([]*model.Campaign, 0, len(s.data.Campaigns))
	for _, c := range s.data.Campaigns {
		campaignList = append(campaignList, c)
	}
	return campaignList, nil
}

func (s *CampaignStore) PutJob(ctx context.Context, job *model.Job) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "PutJob")
	defer span.End()

	span.AddEvent("Lock")
	s.mu.Lock()
	defer span.AddEvent("Unlock")
	defer s.mu.Unlock()

	jobs, ok := s.data.Jobs[job.CampaignID]
	if !ok {
		jobs = make(map[uuid.UUID]*model.Job)
		s.data.Jobs[job.CampaignID] = jobs
	}
	jobs[job.MemberID] = job

	return s.saveToFile(ctx)
}

func (s *CampaignStore) GetJob(ctx context.Context, campaignID, memberID uuid.UUID) (*model.Job, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "GetJob")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	job, ok := s.data.Jobs[campaignID][memberID]
	if !ok {
		err := errors.New("job not found")
		span.RecordError(err)
		return nil, err
	}
	return job, nil
}

func (s *CampaignStore) ListJobs(ctx context.Context, campaignID uuid.UUID) ([]*model.Job, error) {
	var span trace.Span
	_, span = tracer.Start(ctx, "ListJobs")
	defer span.End()

	span.AddEvent("RLock")
	s.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer s.mu.RUnlock()

	jobs := s.data.Jobs[campaignID]
	jobList := make([]*model.Job, 0, len(jobs))
	for _, job := range jobs {
		jobList = append(jobList, job)
	}
	return jobList, nil
}

func (s *CampaignStore) saveToFile(ctx context.Context) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	fileData, err := json.MarshalIndent(s.data, "", "  ")
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

func (s *CampaignStore) loadFromFile() error {
	if _, err := os.Stat(s.filename); os.IsNotExist(err) {
		return nil
	}
	fileData, err := os.ReadFile(s.filename)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return json.Unmarshal(fileData, &s.data)
}
