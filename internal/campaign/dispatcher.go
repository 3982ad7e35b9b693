// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

// Package campaign turns a segment into per-recipient outbound jobs and
// drives them through the notifier. Jobs are independent: one recipient's
// failure never blocks the rest, and a rerun resumes over whatever has
// not been sent yet.
package campaign

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/muster/internal/db"
	"github.com/quixsi/muster/internal/model"
	"github.com/quixsi/muster/internal/notify"
)

// Config bounds the dispatch loop.
type Config struct {
	Workers       int
	Timeout       time.Duration
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
	BaseURL       string
}

func NewDispatcher(campaigns db.CampaignStore, notifier notify.Notifier, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = 5 * time.Second
	}
	return &Dispatcher{
		campaigns: campaigns,
		notifier:  notifier,
		cfg:       cfg,
		logger:    slog.Default().WithGroup("campaign"),
	}
}

type Dispatcher struct {
	campaigns db.CampaignStore
	notifier  notify.Notifier
	cfg       Config
	logger    *slog.Logger
}

// Dispatch sends the campaign to the recipient set. Recipients are
// deduplicated by member id; jobs already sent or skipped in an earlier
// run are left untouched. Returns the aggregate report over all jobs.
func (d *Dispatcher) Dispatch(ctx context.Context, c *model.Campaign, recipients []*model.Member) (*model.Report, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Dispatcher.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("campaign.id", c.ID.String()),
		attribute.Int("campaign.recipients", len(recipients)),
	)

	pending := make([]*model.Member, 0, len(recipients))
	seen := make(map[uuid.UUID]bool, len(recipients))
	for _, m := range recipients {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true

		job, err := d.campaigns.GetJob(ctx, c.ID, m.ID)
		if err == nil && (job.Status == model.JobStatusSent || job.Status == model.JobStatusSkipped) {
			continue
		}
		if err := d.putJob(ctx, &model.Job{
			CampaignID: c.ID,
			MemberID:   m.ID,
			Status:     model.JobStatusQueued,
		}); err != nil {
			span.RecordError(err)
			return nil, err
		}
		pending = append(pending, m)
	}

	work := make(chan *model.Member)
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range work {
				d.process(ctx, c, m)
			}
		}()
	}
	for _, m := range pending {
		work <- m
	}
	close(work)
	wg.Wait()

	jobs, err := d.campaigns.ListJobs(ctx, c.ID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	report := &model.Report{}
	report.Count(jobs)
	d.logger.InfoContext(ctx, "campaign dispatched",
		"campaign", c.ID.String(),
		"sent", report.Sent, "failed", report.Failed, "skipped", report.Skipped,
	)
	return report, nil
}

// Report rebuilds the aggregate counts for one campaign from its jobs.
func (d *Dispatcher) Report(ctx context.Context, campaignID uuid.UUID) (*model.Report, []*model.Job, error) {
	jobs, err := d.campaigns.ListJobs(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}
	report := &model.Report{}
	report.Count(jobs)
	return report, jobs, nil
}

// process runs one recipient's job end to end: channel selection, render,
// delivery with bounded retries, and the final status write.
func (d *Dispatcher) process(ctx context.Context, c *model.Campaign, m *model.Member) {
	job := &model.Job{CampaignID: c.ID, MemberID: m.ID}

	switch {
	case m.HasEmail():
		job.Channel = model.ChannelEmail
		job.Recipient = m.Email
	case m.HasMobile():
		job.Channel = model.ChannelSMS
		job.Recipient = m.Mobile
	default:
		job.Status = model.JobStatusSkipped
		job.Error = model.ErrUndeliverable.Error()
		d.finishJob(ctx, job)
		return
	}

	vars := Vars(m, d.cfg.BaseURL)
	subject, err := Render(c.Subject, vars)
	if err == nil {
		var body string
		body, err = Render(c.Body, vars)
		if err == nil {
			err = d.send(ctx, job, notify.Message{
				Recipient: job.Recipient,
				Channel:   job.Channel,
				Subject:   subject,
				Body:      body,
			})
		}
	}

	if err != nil {
		job.Status = model.JobStatusFailed
		job.Error = err.Error()
		d.logger.WarnContext(ctx, "campaign job failed",
			"campaign", c.ID.String(), "member", m.ID.String(), "error", err)
	} else {
		job.Status = model.JobStatusSent
	}
	d.finishJob(ctx, job)
}

// send delivers one message, retrying retryable transport failures with
// doubling backoff up to the attempt budget.
func (d *Dispatcher) send(ctx context.Context, job *model.Job, msg notify.Message) error {
	delay := d.cfg.RetryBackoff
	var err error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		job.Attempts = attempt
		sendCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
		err = d.notifier.Send(sendCtx, msg)
		cancel()
		if err == nil || !notify.IsRetryable(err) {
			return err
		}
		if attempt == d.cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > d.cfg.RetryMaxDelay {
			delay = d.cfg.RetryMaxDelay
		}
	}
	return err
}

func (d *Dispatcher) putJob(ctx context.Context, job *model.Job) error {
	now := time.Now()
	job.UpdatedAt = &now
	return d.campaigns.PutJob(ctx, job)
}

func (d *Dispatcher) finishJob(ctx context.Context, job *model.Job) {
	if err := d.putJob(ctx, job); err != nil {
		d.logger.ErrorContext(ctx, "could not persist job",
			"campaign", job.CampaignID.String(), "member", job.MemberID.String(), "error", err)
	}
}
