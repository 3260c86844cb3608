// Package service implements lead management: creation with dedup, batch
// ingestion, listing, patching, status changes and deletion.
package service

import (
	"context"
	"errors"
	"strings"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/stage"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"

	"github.com/google/uuid"
)

// patchAttempts bounds the optimistic-concurrency retry loop.
const patchAttempts = 3

// Store is the slice of the leads repository the service operates on.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (repository.Lead, error)
	GetBySourceURL(ctx context.Context, sourceURL string, organizationID uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, organizationID uuid.UUID, params repository.ListLeadsParams) ([]repository.Lead, int, error)
	ApplyStatus(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, status stage.Status, stamp *stage.Stamp) (repository.Lead, error)
	Patch(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, expectedRevision int, params repository.PatchLeadParams) (repository.Lead, error)
	Delete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error
	CreateNote(ctx context.Context, params repository.CreateNoteParams) (repository.Note, error)
	ListNotes(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID) ([]repository.Note, error)
}

type Service struct {
	repo Store
	bus  events.Bus
	log  *logger.Logger
}

func New(repo Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

type CreateLeadInput struct {
	Source      string
	SourceURL   string
	Title       string
	Description string
	Author      string
	AuthorURL   string
	Score       int
	Email       *string
	Phone       *string
	Company     *string
	Tags        []string
}

// Create inserts a new lead. A duplicate sourceUrl yields a Conflict error
// carrying the existing record so the caller can reconcile.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, input CreateLeadInput) (repository.Lead, error) {
	if err := validateCandidate(input.SourceURL, input.Title); err != nil {
		return repository.Lead{}, err
	}

	if input.Phone != nil {
		normalized := phone.NormalizeE164(*input.Phone)
		input.Phone = &normalized
	}

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		OrganizationID: orgID,
		Source:         strings.TrimSpace(input.Source),
		SourceURL:      strings.TrimSpace(input.SourceURL),
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Author:         strings.TrimSpace(input.Author),
		AuthorURL:      strings.TrimSpace(input.AuthorURL),
		Score:          input.Score,
		Email:          input.Email,
		Phone:          input.Phone,
		Company:        input.Company,
		Tags:           input.Tags,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSourceURL) {
			existing, getErr := s.repo.GetBySourceURL(ctx, strings.TrimSpace(input.SourceURL), orgID)
			conflict := apperr.Conflict("lead with this source url already exists")
			if getErr == nil {
				conflict = conflict.WithDetails(existing)
			}
			return existing, conflict
		}
		return repository.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		OrganizationID: lead.OrganizationID,
		SourceURL:      lead.SourceURL,
		Source:         lead.Source,
		Title:          lead.Title,
	})

	return lead, nil
}

func validateCandidate(sourceURL, title string) error {
	if strings.TrimSpace(sourceURL) == "" {
		return apperr.Validation("sourceUrl is required")
	}
	if strings.TrimSpace(title) == "" {
		return apperr.Validation("title is required")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID, params repository.ListLeadsParams) ([]repository.Lead, int, error) {
	return s.repo.List(ctx, orgID, params)
}

// SetStatus changes the pipeline stage. The milestone timestamp policy comes
// from the stage table and is applied atomically with the status write.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, orgID uuid.UUID, status stage.Status) (repository.Lead, error) {
	var stamp *stage.Stamp
	if st, ok := stage.StampFor(status); ok {
		stamp = &st
	}

	lead, err := s.repo.ApplyStatus(ctx, id, orgID, status, stamp)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

type PatchLeadInput struct {
	Status *stage.Status
	repository.PatchLeadParams
}

// Patch applies a partial update. Field changes ride an optimistic revision
// check and are retried on concurrent modification; a status change goes
// through SetStatus so the stamp policy applies.
func (s *Service) Patch(ctx context.Context, id uuid.UUID, orgID uuid.UUID, input PatchLeadInput) (repository.Lead, error) {
	if input.Phone != nil {
		normalized := phone.NormalizeE164(*input.Phone)
		input.Phone = &normalized
	}

	lead, err := s.Get(ctx, id, orgID)
	if err != nil {
		return repository.Lead{}, err
	}

	if hasFieldChanges(input.PatchLeadParams) {
		for attempt := 0; ; attempt++ {
			lead, err = s.repo.Patch(ctx, id, orgID, lead.Revision, input.PatchLeadParams)
			if err == nil {
				break
			}
			if errors.Is(err, repository.ErrRevisionConflict) && attempt < patchAttempts-1 {
				lead, err = s.Get(ctx, id, orgID)
				if err != nil {
					return repository.Lead{}, err
				}
				continue
			}
			if errors.Is(err, repository.ErrNotFound) {
				return repository.Lead{}, apperr.NotFound("lead not found")
			}
			if errors.Is(err, repository.ErrRevisionConflict) {
				return repository.Lead{}, apperr.Conflict("lead was modified concurrently")
			}
			return repository.Lead{}, err
		}
	}

	if input.Status != nil {
		return s.SetStatus(ctx, id, orgID, *input.Status)
	}
	return lead, nil
}

func hasFieldChanges(p repository.PatchLeadParams) bool {
	return p.Title != nil || p.Description != nil || p.Email != nil || p.Phone != nil ||
		p.Company != nil || p.EmailSource != nil || p.EmailEnrichedAt != nil ||
		p.BudgetMin != nil || p.BudgetMax != nil || p.BudgetCurrency != nil || p.Tags != nil
}

// Delete removes a lead and cascades its notes, tasks and messages.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error {
	err := s.repo.Delete(ctx, id, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

type AddNoteInput struct {
	Type    repository.NoteType
	Content string
	Model   *string
}

func (s *Service) AddNote(ctx context.Context, leadID uuid.UUID, orgID uuid.UUID, input AddNoteInput) (repository.Note, error) {
	if strings.TrimSpace(input.Content) == "" {
		return repository.Note{}, apperr.Validation("note content is required")
	}
	if _, err := s.Get(ctx, leadID, orgID); err != nil {
		return repository.Note{}, err
	}
	return s.repo.CreateNote(ctx, repository.CreateNoteParams{
		LeadID:         leadID,
		OrganizationID: orgID,
		Type:           input.Type,
		Content:        input.Content,
		Model:          input.Model,
	})
}

func (s *Service) ListNotes(ctx context.Context, leadID uuid.UUID, orgID uuid.UUID) ([]repository.Note, error) {
	if _, err := s.Get(ctx, leadID, orgID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, leadID, orgID)
}
