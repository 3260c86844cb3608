// Package repository persists outreach templates and messages.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/outreach/template"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrMessageNotFound  = errors.New("message not found")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TemplateType is the closed set of template buckets. It mirrors
// template.Bucket; parsing lives here because it guards database writes.
type TemplateType string

const (
	TemplateStartup    TemplateType = "startup"
	TemplateHiringPost TemplateType = "hiring_post"
	TemplateWeb3       TemplateType = "web3"
	TemplateFollowup   TemplateType = "followup"
)

func ParseTemplateType(raw string) (TemplateType, error) {
	switch TemplateType(strings.ToLower(strings.TrimSpace(raw))) {
	case TemplateStartup:
		return TemplateStartup, nil
	case TemplateHiringPost:
		return TemplateHiringPost, nil
	case TemplateWeb3:
		return TemplateWeb3, nil
	case TemplateFollowup:
		return TemplateFollowup, nil
	default:
		return "", fmt.Errorf("unknown template type %q", raw)
	}
}

type Template struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Type           TemplateType
	Channel        *Channel
	Subject        string
	Content        string
	Variables      []string
	UsageCount     int
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const templateColumns = `id, organization_id, name, template_type, channel, subject, content,
	variables, usage_count, is_active, created_at, updated_at`

func scanTemplate(row pgx.Row) (Template, error) {
	var t Template
	err := row.Scan(
		&t.ID, &t.OrganizationID, &t.Name, &t.Type, &t.Channel, &t.Subject, &t.Content,
		&t.Variables, &t.UsageCount, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, ErrTemplateNotFound
	}
	return t, err
}

type CreateTemplateParams struct {
	OrganizationID uuid.UUID
	Name           string
	Type           TemplateType
	Channel        *Channel
	Subject        string
	Content        string
	Variables      []string
}

func (r *Repository) CreateTemplate(ctx context.Context, params CreateTemplateParams) (Template, error) {
	variables := params.Variables
	if variables == nil {
		variables = []string{}
	}
	return scanTemplate(r.pool.QueryRow(ctx, `
		INSERT INTO templates (organization_id, name, template_type, channel, subject, content, variables)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+templateColumns,
		params.OrganizationID, params.Name, params.Type, params.Channel, params.Subject, params.Content, variables,
	))
}

func (r *Repository) GetTemplate(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
}

// GetDefaultByBucket returns the most recently updated active template for a
// bucket, used when a draft request names no template explicitly.
func (r *Repository) GetDefaultByBucket(ctx context.Context, organizationID uuid.UUID, bucket template.Bucket) (Template, error) {
	return scanTemplate(r.pool.QueryRow(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		WHERE organization_id = $1 AND template_type = $2 AND is_active
		ORDER BY updated_at DESC
		LIMIT 1
	`, organizationID, string(bucket)))
}

type ListTemplatesParams struct {
	Type       *TemplateType
	ActiveOnly bool
}

func (r *Repository) ListTemplates(ctx context.Context, organizationID uuid.UUID, params ListTemplatesParams) ([]Template, error) {
	where := []string{"organization_id = $1"}
	args := []interface{}{organizationID}

	if params.Type != nil {
		args = append(args, *params.Type)
		where = append(where, fmt.Sprintf("template_type = $%d", len(args)))
	}
	if params.ActiveOnly {
		where = append(where, "is_active")
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY name ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]Template, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

type UpdateTemplateParams struct {
	Name      *string
	Type      *TemplateType
	Channel   *Channel
	Subject   *string
	Content   *string
	Variables []string
	IsActive  *bool
}

func (r *Repository) UpdateTemplate(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, params UpdateTemplateParams) (Template, error) {
	set := []string{"updated_at = now()"}
	args := []interface{}{id, organizationID}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		addSet("name", *params.Name)
	}
	if params.Type != nil {
		addSet("template_type", *params.Type)
	}
	if params.Channel != nil {
		addSet("channel", *params.Channel)
	}
	if params.Subject != nil {
		addSet("subject", *params.Subject)
	}
	if params.Content != nil {
		addSet("content", *params.Content)
	}
	if params.Variables != nil {
		addSet("variables", params.Variables)
	}
	if params.IsActive != nil {
		addSet("is_active", *params.IsActive)
	}

	return scanTemplate(r.pool.QueryRow(ctx, `
		UPDATE templates
		SET `+strings.Join(set, ", ")+`
		WHERE id = $1 AND organization_id = $2
		RETURNING `+templateColumns, args...))
}

func (r *Repository) DeleteTemplate(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM templates WHERE id = $1 AND organization_id = $2
	`, id, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// IncrementUsage bumps the usage counter by exactly one. Called from the
// background worker, never from the render path itself.
func (r *Repository) IncrementUsage(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE templates SET usage_count = usage_count + 1, updated_at = now()
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
