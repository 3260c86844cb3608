package service

import (
	"context"
	"errors"

	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ingestConcurrency bounds parallel inserts during a batch ingest so a large
// scraper dump does not exhaust the connection pool.
const ingestConcurrency = 8

// IngestOutcome describes what happened to a single candidate in a batch.
// Malformed candidates count as failed, they are not a category of their own.
type IngestOutcome string

const (
	OutcomeCreated IngestOutcome = "created"
	OutcomeExists  IngestOutcome = "exists"
	OutcomeFailed  IngestOutcome = "failed"
)

type IngestItemResult struct {
	Index     int           `json:"index"`
	SourceURL string        `json:"sourceUrl"`
	Outcome   IngestOutcome `json:"outcome"`
	LeadID    *uuid.UUID    `json:"leadId,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type IngestSummary struct {
	Total   int                `json:"total"`
	Created int                `json:"created"`
	Exists  int                `json:"exists"`
	Failed  int                `json:"failed"`
	Items   []IngestItemResult `json:"items"`
}

// Ingest inserts a batch of scraped candidates. Items are independent: a
// duplicate or malformed candidate never aborts the rest of the batch.
func (s *Service) Ingest(ctx context.Context, orgID uuid.UUID, candidates []CreateLeadInput) (IngestSummary, error) {
	if len(candidates) == 0 {
		return IngestSummary{}, apperr.Validation("at least one candidate is required")
	}

	results := make([]IngestItemResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestConcurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			results[i] = s.ingestOne(gctx, orgID, i, candidate)
			return nil
		})
	}
	// Workers report through results, never through the group error.
	_ = g.Wait()

	return summarize(results), nil
}

func (s *Service) ingestOne(ctx context.Context, orgID uuid.UUID, index int, candidate CreateLeadInput) IngestItemResult {
	result := IngestItemResult{Index: index, SourceURL: candidate.SourceURL}

	lead, err := s.Create(ctx, orgID, candidate)
	switch {
	case err == nil:
		result.Outcome = OutcomeCreated
		result.LeadID = &lead.ID
	case apperr.GetKind(err) == apperr.KindConflict:
		result.Outcome = OutcomeExists
		if lead.ID != uuid.Nil {
			result.LeadID = &lead.ID
		}
	default:
		result.Outcome = OutcomeFailed
		result.Error = err.Error()
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			s.log.Error("lead ingest failed", "index", index, "sourceUrl", candidate.SourceURL, "error", err)
		}
	}
	return result
}

// summarize tallies per-item outcomes into a batch summary.
func summarize(items []IngestItemResult) IngestSummary {
	summary := IngestSummary{Total: len(items), Items: items}
	for _, item := range items {
		switch item.Outcome {
		case OutcomeCreated:
			summary.Created++
		case OutcomeExists:
			summary.Exists++
		case OutcomeFailed:
			summary.Failed++
		}
	}
	return summary
}
