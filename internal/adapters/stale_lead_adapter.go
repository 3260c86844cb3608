package adapters

import (
	"context"
	"time"

	"leadflow_backend/internal/leads/repository"
	tasksvc "leadflow_backend/internal/tasks/service"
)

// StaleLeadAdapter surfaces contacted-but-silent leads to the tasks domain.
// It implements the tasks service.StaleLeadSource interface.
type StaleLeadAdapter struct {
	repo *repository.Repository
}

// NewStaleLeadAdapter creates a new adapter that wraps the leads repository.
func NewStaleLeadAdapter(repo *repository.Repository) *StaleLeadAdapter {
	return &StaleLeadAdapter{repo: repo}
}

func (a *StaleLeadAdapter) ListStaleContacted(ctx context.Context, cutoff time.Time) ([]tasksvc.StaleLead, error) {
	leads, err := a.repo.ListStaleContacted(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	stale := make([]tasksvc.StaleLead, len(leads))
	for i, lead := range leads {
		stale[i] = tasksvc.StaleLead{
			ID:             lead.ID,
			OrganizationID: lead.OrganizationID,
			Title:          lead.Title,
		}
	}
	return stale, nil
}
