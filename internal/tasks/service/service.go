// Package service implements work item management and the prioritized queue
// views.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/tasks/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// StaleLead is a contacted lead that never responded inside the follow-up
// window.
type StaleLead struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Title          string
}

// StaleLeadSource surfaces leads needing a follow-up. Implemented by an
// adapter over the leads context.
type StaleLeadSource interface {
	ListStaleContacted(ctx context.Context, cutoff time.Time) ([]StaleLead, error)
}

type Service struct {
	repo   *repository.Repository
	stale  StaleLeadSource
	policy config.PolicyConfig
	log    *logger.Logger
}

func New(repo *repository.Repository, policy config.PolicyConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, policy: policy, log: log}
}

// SetStaleLeadSource wires the leads adapter used by the follow-up scan.
func (s *Service) SetStaleLeadSource(stale StaleLeadSource) {
	s.stale = stale
}

type CreateTaskInput struct {
	LeadID      *uuid.UUID
	Title       string
	Description string
	Type        repository.TaskType
	Priority    repository.Priority
	DueAt       *time.Time
}

func (s *Service) Create(ctx context.Context, orgID uuid.UUID, input CreateTaskInput) (repository.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return repository.Task{}, apperr.Validation("title is required")
	}
	if input.Type == "" {
		input.Type = repository.TypeOther
	}
	if input.Priority == "" {
		input.Priority = repository.PriorityMedium
	}

	return s.repo.Create(ctx, repository.CreateTaskParams{
		OrganizationID: orgID,
		LeadID:         input.LeadID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Type:           input.Type,
		Priority:       input.Priority,
		DueAt:          input.DueAt,
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Task, error) {
	task, err := s.repo.GetByID(ctx, id, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Task{}, apperr.NotFound("task not found")
	}
	return task, err
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID, params repository.ListTasksParams) ([]repository.Task, error) {
	return s.repo.List(ctx, orgID, params)
}

// PendingQueue returns open tasks in queue order: priority descending, then
// due date ascending with undated tasks last.
func (s *Service) PendingQueue(ctx context.Context, orgID uuid.UUID) ([]repository.Task, error) {
	tasks, err := s.repo.ListOpen(ctx, orgID)
	if err != nil {
		return nil, err
	}
	sortQueue(tasks)
	return tasks, nil
}

// NextActions is the agent view: the pending queue capped at the configured
// limit.
func (s *Service) NextActions(ctx context.Context, orgID uuid.UUID) ([]repository.Task, error) {
	tasks, err := s.PendingQueue(ctx, orgID)
	if err != nil {
		return nil, err
	}
	limit := s.policy.GetNextActionsLimit()
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

// Overdue lists open tasks past their due date, most overdue first.
func (s *Service) Overdue(ctx context.Context, orgID uuid.UUID) ([]repository.Task, error) {
	return s.repo.ListOverdue(ctx, orgID, time.Now())
}

type PatchTaskInput struct {
	Title       *string
	Description *string
	Type        *repository.TaskType
	Priority    *repository.Priority
	Status      *repository.Status
	DueAt       *time.Time
	ClearDueAt  bool
}

// Patch updates a task. Terminal tasks are immutable; completion goes
// through Complete, never through a status patch.
func (s *Service) Patch(ctx context.Context, id uuid.UUID, orgID uuid.UUID, input PatchTaskInput) (repository.Task, error) {
	current, err := s.Get(ctx, id, orgID)
	if err != nil {
		return repository.Task{}, err
	}
	if current.Status == repository.StatusCompleted || current.Status == repository.StatusCancelled {
		return repository.Task{}, apperr.Conflict(fmt.Sprintf("task is %s and cannot be modified", current.Status))
	}
	if input.Status != nil && *input.Status == repository.StatusCompleted {
		return repository.Task{}, apperr.Validation("use the complete operation to finish a task")
	}

	task, err := s.repo.Patch(ctx, id, orgID, repository.PatchTaskParams{
		Title:       input.Title,
		Description: input.Description,
		Type:        input.Type,
		Priority:    input.Priority,
		Status:      input.Status,
		DueAt:       input.DueAt,
		ClearDueAt:  input.ClearDueAt,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Task{}, apperr.NotFound("task not found")
	}
	return task, err
}

// Complete finishes a task. One-way: completed and cancelled tasks stay
// terminal.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Task, error) {
	task, err := s.repo.Complete(ctx, id, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		current, getErr := s.repo.GetByID(ctx, id, orgID)
		if getErr == nil {
			return repository.Task{}, apperr.Conflict(fmt.Sprintf("task is already %s", current.Status))
		}
		return repository.Task{}, apperr.NotFound("task not found")
	}
	return task, err
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error {
	err := s.repo.Delete(ctx, id, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("task not found")
	}
	return err
}

// ScanStaleContacted creates HIGH priority follow-up tasks for contacted
// leads that went silent past the follow-up window. Runs from the background
// worker; returns the number of tasks created.
func (s *Service) ScanStaleContacted(ctx context.Context) (int, error) {
	if s.stale == nil {
		return 0, nil
	}

	cutoff := time.Now().Add(-s.policy.GetFollowupWindow())
	leads, err := s.stale.ListStaleContacted(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, lead := range leads {
		exists, err := s.repo.ExistsOpenFollowUp(ctx, lead.OrganizationID, lead.ID)
		if err != nil {
			s.log.Warn("follow-up scan lookup failed", "leadId", lead.ID, "error", err)
			continue
		}
		if exists {
			continue
		}

		leadID := lead.ID
		_, err = s.repo.Create(ctx, repository.CreateTaskParams{
			OrganizationID: lead.OrganizationID,
			LeadID:         &leadID,
			Title:          fmt.Sprintf("Follow up: %s", lead.Title),
			Description:    "No response since first contact; send a follow-up message.",
			Type:           repository.TypeFollowUp,
			Priority:       repository.PriorityHigh,
		})
		if err != nil {
			s.log.Warn("follow-up task creation failed", "leadId", lead.ID, "error", err)
			continue
		}
		created++
	}
	return created, nil
}
