package scheduler

import (
	"context"
	"time"

	"leadflow_backend/platform/logger"
)

const (
	defaultFollowupScanInterval = time.Hour
	statDateLayout              = "2006-01-02"
)

// Periodic enqueues the recurring jobs: an hourly follow-up scan and a daily
// stats recompute shortly after local midnight (recomputing the day that just
// ended).
type Periodic struct {
	client   *Client
	location *time.Location
	interval time.Duration
	log      *logger.Logger
}

func NewPeriodic(client *Client, location *time.Location, interval time.Duration, log *logger.Logger) *Periodic {
	if interval <= 0 {
		interval = defaultFollowupScanInterval
	}
	if location == nil {
		location = time.UTC
	}
	return &Periodic{
		client:   client,
		location: location,
		interval: interval,
		log:      log,
	}
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.client == nil {
		return
	}

	p.enqueueFollowupScan(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	lastStatDay := time.Now().In(p.location).Format(statDateLayout)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.enqueueFollowupScan(ctx)

			today := time.Now().In(p.location).Format(statDateLayout)
			if today != lastStatDay {
				p.enqueueStatsRecompute(ctx, lastStatDay)
				lastStatDay = today
			}
		}
	}
}

func (p *Periodic) enqueueFollowupScan(ctx context.Context) {
	if err := p.client.EnqueueFollowupScan(ctx); err != nil {
		p.log.Warn("failed to enqueue follow-up scan", "error", err)
	}
}

func (p *Periodic) enqueueStatsRecompute(ctx context.Context, date string) {
	if err := p.client.EnqueueDailyStatsRecompute(ctx, DailyStatsRecomputePayload{Date: date}); err != nil {
		p.log.Warn("failed to enqueue daily stats recompute", "error", err, "date", date)
	}
}
