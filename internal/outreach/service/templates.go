package service

import (
	"context"
	"errors"
	"strings"

	"leadflow_backend/internal/outreach/repository"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

type CreateTemplateInput struct {
	Name      string
	Type      repository.TemplateType
	Channel   *repository.Channel
	Subject   string
	Content   string
	Variables []string
}

func (s *Service) CreateTemplate(ctx context.Context, orgID uuid.UUID, input CreateTemplateInput) (repository.Template, error) {
	if strings.TrimSpace(input.Name) == "" {
		return repository.Template{}, apperr.Validation("name is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return repository.Template{}, apperr.Validation("content is required")
	}

	return s.repo.CreateTemplate(ctx, repository.CreateTemplateParams{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(input.Name),
		Type:           input.Type,
		Channel:        input.Channel,
		Subject:        input.Subject,
		Content:        input.Content,
		Variables:      input.Variables,
	})
}

func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Template, error) {
	tmpl, err := s.repo.GetTemplate(ctx, id, orgID)
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return repository.Template{}, apperr.NotFound("template not found")
	}
	return tmpl, err
}

func (s *Service) ListTemplates(ctx context.Context, orgID uuid.UUID, params repository.ListTemplatesParams) ([]repository.Template, error) {
	return s.repo.ListTemplates(ctx, orgID, params)
}

func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, orgID uuid.UUID, params repository.UpdateTemplateParams) (repository.Template, error) {
	tmpl, err := s.repo.UpdateTemplate(ctx, id, orgID, params)
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return repository.Template{}, apperr.NotFound("template not found")
	}
	return tmpl, err
}

func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID, orgID uuid.UUID) error {
	err := s.repo.DeleteTemplate(ctx, id, orgID)
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return apperr.NotFound("template not found")
	}
	return err
}
