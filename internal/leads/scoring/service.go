// Package scoring handles lead score updates and qualification, both the
// manual reviewer path and the automated agent path.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/stage"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// manualMarker tags reviewer-entered score reasons so automated reruns can
// tell them apart from machine-generated ones.
const manualMarker = "[Manual]"

// Store is the slice of the leads repository the scoring service writes
// through.
type Store interface {
	SetScore(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, score *int, reasons []string) (repository.Lead, error)
	ApplyStatus(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, status stage.Status, stamp *stage.Stamp) (repository.Lead, error)
	ApplyQualification(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, score int, reasons []string, status stage.Status, stamp *stage.Stamp) (repository.Lead, error)
	CreateNote(ctx context.Context, params repository.CreateNoteParams) (repository.Note, error)
}

type Service struct {
	repo   Store
	bus    events.Bus
	policy config.PolicyConfig
	log    *logger.Logger
}

func New(repo Store, bus events.Bus, policy config.PolicyConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, policy: policy, log: log}
}

type UpdateScoreInput struct {
	Score   *int
	Reasons []string
}

// UpdateScore applies a manual score override. Reviewer reasons get the
// manual marker exactly once, regardless of how the caller spelled them.
func (s *Service) UpdateScore(ctx context.Context, id uuid.UUID, orgID uuid.UUID, input UpdateScoreInput) (repository.Lead, error) {
	if input.Score == nil && input.Reasons == nil {
		return repository.Lead{}, apperr.Validation("score or reasons must be provided")
	}
	if input.Score != nil && (*input.Score < 0 || *input.Score > 100) {
		return repository.Lead{}, apperr.Validation("score must be between 0 and 100")
	}

	reasons := input.Reasons
	if reasons != nil {
		reasons = markManual(reasons)
	}

	lead, err := s.repo.SetScore(ctx, id, orgID, input.Score, reasons)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	return lead, err
}

// markManual ensures every reason carries the manual marker exactly once,
// prepended when absent and normalized when already present anywhere.
func markManual(reasons []string) []string {
	marked := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		cleaned := strings.TrimSpace(strings.ReplaceAll(reason, manualMarker, ""))
		if cleaned == "" {
			continue
		}
		marked = append(marked, manualMarker+" "+cleaned)
	}
	return marked
}

// MarkQualified is the manual qualification path. The qualified timestamp is
// first-write-wins so re-qualifying never rewrites pipeline history.
func (s *Service) MarkQualified(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Lead, error) {
	stamp, _ := stage.StampFor(stage.StatusQualified)
	lead, err := s.repo.ApplyStatus(ctx, id, orgID, stage.StatusQualified, &stamp)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return repository.Lead{}, err
	}

	s.bus.Publish(ctx, events.LeadQualified{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		OrganizationID: lead.OrganizationID,
		Score:          lead.Score,
		Automated:      false,
	})
	return lead, nil
}

type AutoQualifyInput struct {
	Score    int
	Reasons  []string
	Analysis *string
	Model    *string
}

// AutoQualifyResult reports the verdict alongside the updated lead.
type AutoQualifyResult struct {
	Lead      repository.Lead `json:"lead"`
	Qualified bool            `json:"qualified"`
	Threshold int             `json:"threshold"`
}

// AutoQualify is the automated agent path. The score decides the verdict
// against the configured threshold, and because the agent re-evaluates leads,
// its writes overwrite the qualified timestamp instead of preserving it.
func (s *Service) AutoQualify(ctx context.Context, id uuid.UUID, orgID uuid.UUID, input AutoQualifyInput) (AutoQualifyResult, error) {
	if input.Score < 0 || input.Score > 100 {
		return AutoQualifyResult{}, apperr.Validation("score must be between 0 and 100")
	}

	threshold := s.policy.GetQualifyThreshold()
	qualified := input.Score >= threshold

	status := stage.StatusArchived
	if qualified {
		status = stage.StatusQualified
	}

	// Every automated pass refreshes qualifiedAt, on both verdicts, so the
	// stamp records when the lead was last evaluated.
	stamp, _ := stage.StampFor(stage.StatusQualified)
	stamp.Mode = stage.ModeOverwrite

	lead, err := s.repo.ApplyQualification(ctx, id, orgID, input.Score, input.Reasons, status, &stamp)
	if errors.Is(err, repository.ErrNotFound) {
		return AutoQualifyResult{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return AutoQualifyResult{}, err
	}

	if input.Analysis != nil && strings.TrimSpace(*input.Analysis) != "" {
		_, noteErr := s.repo.CreateNote(ctx, repository.CreateNoteParams{
			LeadID:         lead.ID,
			OrganizationID: lead.OrganizationID,
			Type:           repository.NoteAIAnalysis,
			Content:        *input.Analysis,
			Model:          input.Model,
		})
		if noteErr != nil {
			s.log.Error("failed to record qualification analysis note", "leadId", lead.ID, "error", noteErr)
		}
	}

	if qualified {
		s.bus.Publish(ctx, events.LeadQualified{
			BaseEvent:      events.NewBaseEvent(),
			LeadID:         lead.ID,
			OrganizationID: lead.OrganizationID,
			Score:          lead.Score,
			Automated:      true,
		})
	}

	s.log.Info("automated qualification applied",
		"leadId", lead.ID,
		"score", input.Score,
		"verdict", fmt.Sprintf("%s (threshold %d)", status, threshold))

	return AutoQualifyResult{Lead: lead, Qualified: qualified, Threshold: threshold}, nil
}
