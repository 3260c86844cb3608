// Package service computes the read-side views: pipeline snapshot, funnel,
// daily digest and the persisted daily stats.
package service

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/internal/analytics/repository"
	"leadflow_backend/internal/leads/stage"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo   *repository.Repository
	policy config.PolicyConfig
	log    *logger.Logger
}

func New(repo *repository.Repository, policy config.PolicyConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, policy: policy, log: log}
}

// PipelineBucket is one status bucket of the snapshot.
type PipelineBucket struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Pipeline groups all leads by stage, emitting every stage so the view is
// stable even when buckets are empty.
func (s *Service) Pipeline(ctx context.Context, orgID uuid.UUID) ([]PipelineBucket, error) {
	counts, err := s.repo.CountByStatus(ctx, orgID)
	if err != nil {
		return nil, err
	}

	buckets := make([]PipelineBucket, 0, len(stage.All))
	for _, status := range stage.All {
		buckets = append(buckets, PipelineBucket{Status: string(status), Count: counts[status]})
	}
	return buckets, nil
}

// Funnel computes the conversion funnel over the current lead store.
func (s *Service) Funnel(ctx context.Context, orgID uuid.UUID) ([]FunnelStage, error) {
	counts, err := s.repo.CountMilestones(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return BuildFunnel(counts), nil
}

// Digest is the agent's daily summary with suggested action flags.
type Digest struct {
	Date             string `json:"date"`
	LeadsScraped     int    `json:"leadsScraped"`
	LeadsQualified   int    `json:"leadsQualified"`
	LeadsResponded   int    `json:"leadsResponded"`
	PendingFollowups int    `json:"pendingFollowups"`
	UpcomingCalls    int    `json:"upcomingCalls"`
	Actions          DigestActions `json:"actions"`
}

// DigestActions are threshold checks over the digest counts.
type DigestActions struct {
	SendFollowups   bool `json:"sendFollowups"`
	ReviewResponses bool `json:"reviewResponses"`
	PrepareCalls    bool `json:"prepareCalls"`
}

// BuildDigest derives the digest from its counters.
func BuildDigest(date string, day repository.DayCounters, pendingFollowups, upcomingCalls int) Digest {
	return Digest{
		Date:             date,
		LeadsScraped:     day.LeadsScraped,
		LeadsQualified:   day.LeadsQualified,
		LeadsResponded:   day.LeadsResponded,
		PendingFollowups: pendingFollowups,
		UpcomingCalls:    upcomingCalls,
		Actions: DigestActions{
			SendFollowups:   pendingFollowups > 0,
			ReviewResponses: day.LeadsResponded > 0,
			PrepareCalls:    upcomingCalls > 0,
		},
	}
}

// DailyDigest computes today's digest. Day boundaries are local midnight in
// the configured reporting zone.
func (s *Service) DailyDigest(ctx context.Context, orgID uuid.UUID) (Digest, error) {
	loc := s.policy.GetLocation()
	now := time.Now().In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	day, err := s.repo.CountDay(ctx, orgID, start, end)
	if err != nil {
		return Digest{}, err
	}

	cutoff := now.Add(-s.policy.GetFollowupWindow())
	pendingFollowups, err := s.repo.CountPendingFollowups(ctx, orgID, cutoff)
	if err != nil {
		return Digest{}, err
	}

	upcomingCalls, err := s.repo.CountUpcomingCalls(ctx, orgID, start, end)
	if err != nil {
		return Digest{}, err
	}

	return BuildDigest(start.Format("2006-01-02"), day, pendingFollowups, upcomingCalls), nil
}

// Recompute rebuilds the persisted daily stats for one organization and day.
// Counters come from a full rescan, so reruns against unchanged data write
// identical values.
func (s *Service) Recompute(ctx context.Context, orgID uuid.UUID, day time.Time) error {
	loc := s.policy.GetLocation()
	local := day.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	counters, err := s.repo.CountDay(ctx, orgID, start, end)
	if err != nil {
		return fmt.Errorf("count day %s: %w", start.Format("2006-01-02"), err)
	}

	return s.repo.UpsertDailyStats(ctx, orgID, start, counters)
}

// RecomputeAll rebuilds the daily stats of every organization for a day.
func (s *Service) RecomputeAll(ctx context.Context, day time.Time) error {
	orgs, err := s.repo.ListOrganizations(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for _, orgID := range orgs {
		if err := s.Recompute(ctx, orgID, day); err != nil {
			s.log.Error("daily stats recompute failed", "organizationId", orgID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// DailyStatsRange returns persisted stat days for the inclusive date range.
func (s *Service) DailyStatsRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]repository.DailyStats, error) {
	return s.repo.ListDailyStats(ctx, orgID, from, to)
}
