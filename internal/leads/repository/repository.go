package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/leads/stage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound           = errors.New("lead not found")
	ErrDuplicateSourceURL = errors.New("lead with this source url already exists")
	ErrRevisionConflict   = errors.New("lead was modified concurrently")
)

const uniqueViolation = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Source          string
	SourceURL       string
	Title           string
	Description     string
	Author          string
	AuthorURL       string
	Score           int
	ScoreReasons    []string
	Status          stage.Status
	Email           *string
	Phone           *string
	Company         *string
	EmailSource     *string
	EmailEnrichedAt *time.Time
	BudgetMin       *float64
	BudgetMax       *float64
	BudgetCurrency  *string
	Tags            []string
	QualifiedAt     *time.Time
	ContactedAt     *time.Time
	RespondedAt     *time.Time
	CallAt          *time.Time
	ProposalAt      *time.Time
	ClosedAt        *time.Time
	ScrapedAt       time.Time
	Revision        int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const leadColumns = `id, organization_id, source, source_url, title, description, author, author_url,
	score, score_reasons, status, email, phone, company, email_source, email_enriched_at,
	budget_min, budget_max, budget_currency, tags,
	qualified_at, contacted_at, responded_at, call_at, proposal_at, closed_at,
	scraped_at, revision, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.OrganizationID, &lead.Source, &lead.SourceURL, &lead.Title, &lead.Description,
		&lead.Author, &lead.AuthorURL, &lead.Score, &lead.ScoreReasons, &lead.Status,
		&lead.Email, &lead.Phone, &lead.Company, &lead.EmailSource, &lead.EmailEnrichedAt,
		&lead.BudgetMin, &lead.BudgetMax, &lead.BudgetCurrency, &lead.Tags,
		&lead.QualifiedAt, &lead.ContactedAt, &lead.RespondedAt, &lead.CallAt, &lead.ProposalAt, &lead.ClosedAt,
		&lead.ScrapedAt, &lead.Revision, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type CreateLeadParams struct {
	OrganizationID uuid.UUID
	Source         string
	SourceURL      string
	Title          string
	Description    string
	Author         string
	AuthorURL      string
	Score          int
	ScoreReasons   []string
	Email          *string
	Phone          *string
	Company        *string
	Tags           []string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	reasons := params.ScoreReasons
	if reasons == nil {
		reasons = []string{}
	}
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (organization_id, source, source_url, title, description, author, author_url,
			score, score_reasons, email, phone, company, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+leadColumns,
		params.OrganizationID, params.Source, params.SourceURL, params.Title, params.Description,
		params.Author, params.AuthorURL, params.Score, reasons,
		params.Email, params.Phone, params.Company, tags,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Lead{}, ErrDuplicateSourceURL
		}
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
}

func (r *Repository) GetBySourceURL(ctx context.Context, sourceURL string, organizationID uuid.UUID) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE source_url = $1 AND organization_id = $2
	`, sourceURL, organizationID))
}

type ListLeadsParams struct {
	Status *stage.Status
	Search string
	Limit  int
	Offset int
}

func (r *Repository) List(ctx context.Context, organizationID uuid.UUID, params ListLeadsParams) ([]Lead, int, error) {
	where := []string{"organization_id = $1"}
	args := []interface{}{organizationID}

	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR company ILIKE $%d OR author ILIKE $%d)", len(args), len(args), len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT `+leadColumns+`
		FROM leads WHERE %s
		ORDER BY scraped_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}

	return leads, total, nil
}

// stampClause renders the milestone timestamp assignment for a status change.
// The column name comes from the stage policy table, never from user input.
func stampClause(stamp *stage.Stamp) string {
	if stamp == nil {
		return ""
	}
	if stamp.Mode == stage.ModeOverwrite {
		return fmt.Sprintf(", %s = now()", stamp.Column)
	}
	return fmt.Sprintf(", %s = COALESCE(%s, now())", stamp.Column, stamp.Column)
}

// ApplyStatus updates the lead status and its milestone timestamp in a single
// statement, so the first-write-wins policy holds even when the UI and the
// agent race on the same lead.
func (r *Repository) ApplyStatus(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, status stage.Status, stamp *stage.Stamp) (Lead, error) {
	query := fmt.Sprintf(`
		UPDATE leads
		SET status = $3%s, revision = revision + 1, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+leadColumns, stampClause(stamp))

	return scanLead(r.pool.QueryRow(ctx, query, id, organizationID, status))
}

// ApplyQualification writes score, reasons, status and the qualified_at stamp
// atomically. The automated path passes an overwrite stamp; the manual
// mark-qualified path passes the default set-if-null stamp.
func (r *Repository) ApplyQualification(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, score int, reasons []string, status stage.Status, stamp *stage.Stamp) (Lead, error) {
	if reasons == nil {
		reasons = []string{}
	}
	query := fmt.Sprintf(`
		UPDATE leads
		SET score = $3, score_reasons = $4, status = $5%s, revision = revision + 1, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+leadColumns, stampClause(stamp))

	return scanLead(r.pool.QueryRow(ctx, query, id, organizationID, score, reasons, status))
}

// SetScore updates score and/or reasons without touching status.
func (r *Repository) SetScore(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, score *int, reasons []string) (Lead, error) {
	set := []string{"revision = revision + 1", "updated_at = now()"}
	args := []interface{}{id, organizationID}

	if score != nil {
		args = append(args, *score)
		set = append(set, fmt.Sprintf("score = $%d", len(args)))
	}
	if reasons != nil {
		args = append(args, reasons)
		set = append(set, fmt.Sprintf("score_reasons = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $1 AND organization_id = $2
		RETURNING `+leadColumns, strings.Join(set, ", "))

	return scanLead(r.pool.QueryRow(ctx, query, args...))
}

type PatchLeadParams struct {
	Title           *string
	Description     *string
	Email           *string
	Phone           *string
	Company         *string
	EmailSource     *string
	EmailEnrichedAt *time.Time
	BudgetMin       *float64
	BudgetMax       *float64
	BudgetCurrency  *string
	Tags            []string
}

// Patch applies a partial update guarded by an optimistic revision check.
// All requested fields apply in one statement or none do.
func (r *Repository) Patch(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, expectedRevision int, params PatchLeadParams) (Lead, error) {
	set := []string{"revision = revision + 1", "updated_at = now()"}
	args := []interface{}{id, organizationID, expectedRevision}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Title != nil {
		addSet("title", *params.Title)
	}
	if params.Description != nil {
		addSet("description", *params.Description)
	}
	if params.Email != nil {
		addSet("email", *params.Email)
	}
	if params.Phone != nil {
		addSet("phone", *params.Phone)
	}
	if params.Company != nil {
		addSet("company", *params.Company)
	}
	if params.EmailSource != nil {
		addSet("email_source", *params.EmailSource)
	}
	if params.EmailEnrichedAt != nil {
		addSet("email_enriched_at", *params.EmailEnrichedAt)
	}
	if params.BudgetMin != nil {
		addSet("budget_min", *params.BudgetMin)
	}
	if params.BudgetMax != nil {
		addSet("budget_max", *params.BudgetMax)
	}
	if params.BudgetCurrency != nil {
		addSet("budget_currency", *params.BudgetCurrency)
	}
	if params.Tags != nil {
		addSet("tags", params.Tags)
	}

	query := fmt.Sprintf(`
		UPDATE leads SET %s
		WHERE id = $1 AND organization_id = $2 AND revision = $3
		RETURNING `+leadColumns, strings.Join(set, ", "))

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, ErrNotFound) {
		// Distinguish a missing lead from a lost revision race.
		if _, getErr := r.GetByID(ctx, id, organizationID); getErr == nil {
			return Lead{}, ErrRevisionConflict
		}
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// Delete removes a lead; notes, tasks and messages cascade at the store level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND organization_id = $2`, id, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStaleContacted returns leads across all organizations that were
// contacted before the cutoff, never responded, and still sit in an outreach
// stage. The follow-up scan uses this to queue work.
func (r *Repository) ListStaleContacted(ctx context.Context, cutoff time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE status IN ($1, $2, $3)
		  AND contacted_at IS NOT NULL AND contacted_at < $4
		  AND responded_at IS NULL
		ORDER BY contacted_at ASC
	`, stage.StatusContacted, stage.StatusFollowup1, stage.StatusFollowup2, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}
