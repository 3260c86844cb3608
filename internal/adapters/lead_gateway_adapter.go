package adapters

import (
	"context"

	"leadflow_backend/internal/leads/repository"
	leadsvc "leadflow_backend/internal/leads/service"
	"leadflow_backend/internal/leads/stage"
	outreachsvc "leadflow_backend/internal/outreach/service"

	"github.com/google/uuid"
)

// LeadGatewayAdapter adapts the leads service for use by the outreach domain.
// It implements the outreach service.LeadGateway interface.
type LeadGatewayAdapter struct {
	leads *leadsvc.Service
}

// NewLeadGatewayAdapter creates a new adapter that wraps the leads service.
func NewLeadGatewayAdapter(leads *leadsvc.Service) *LeadGatewayAdapter {
	return &LeadGatewayAdapter{leads: leads}
}

func (a *LeadGatewayAdapter) Get(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (outreachsvc.Lead, error) {
	lead, err := a.leads.Get(ctx, id, organizationID)
	if err != nil {
		return outreachsvc.Lead{}, err
	}
	return outreachsvc.Lead{
		ID:          lead.ID,
		Title:       lead.Title,
		Description: lead.Description,
		Source:      lead.Source,
		Author:      lead.Author,
		Email:       lead.Email,
	}, nil
}

func (a *LeadGatewayAdapter) MarkContacted(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	_, err := a.leads.SetStatus(ctx, id, organizationID, stage.StatusContacted)
	return err
}

func (a *LeadGatewayAdapter) MarkProposalSent(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	_, err := a.leads.SetStatus(ctx, id, organizationID, stage.StatusProposalSent)
	return err
}

func (a *LeadGatewayAdapter) MarkResponded(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	_, err := a.leads.SetStatus(ctx, id, organizationID, stage.StatusResponded)
	return err
}

func (a *LeadGatewayAdapter) AddAnalysisNote(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, content string) error {
	_, err := a.leads.AddNote(ctx, id, organizationID, leadsvc.AddNoteInput{
		Type:    repository.NoteAIAnalysis,
		Content: content,
	})
	return err
}
