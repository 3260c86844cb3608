// Package repository persists work items.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("task not found")

// TaskType is the closed set of work item categories.
type TaskType string

const (
	TypeFollowUp TaskType = "FOLLOW_UP"
	TypeOutreach TaskType = "OUTREACH"
	TypeCall     TaskType = "CALL"
	TypeProposal TaskType = "PROPOSAL"
	TypeResearch TaskType = "RESEARCH"
	TypeOther    TaskType = "OTHER"
)

func ParseTaskType(raw string) (TaskType, error) {
	switch TaskType(strings.ToUpper(strings.TrimSpace(raw))) {
	case TypeFollowUp, TypeOutreach, TypeCall, TypeProposal, TypeResearch, TypeOther:
		return TaskType(strings.ToUpper(strings.TrimSpace(raw))), nil
	default:
		return "", fmt.Errorf("unknown task type %q", raw)
	}
}

// Priority is the closed set of task priorities.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func ParsePriority(raw string) (Priority, error) {
	switch Priority(strings.ToUpper(strings.TrimSpace(raw))) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(strings.ToUpper(strings.TrimSpace(raw))), nil
	default:
		return "", fmt.Errorf("unknown priority %q", raw)
	}
}

// Status is the closed set of task states. COMPLETED and CANCELLED are
// terminal.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(strings.ToUpper(strings.TrimSpace(raw))), nil
	default:
		return "", fmt.Errorf("unknown task status %q", raw)
	}
}

type Task struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	LeadID         *uuid.UUID
	Title          string
	Description    string
	Type           TaskType
	Priority       Priority
	Status         Status
	DueAt          *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const taskColumns = `id, organization_id, lead_id, title, description, task_type,
	priority, status, due_at, completed_at, created_at, updated_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.OrganizationID, &t.LeadID, &t.Title, &t.Description, &t.Type,
		&t.Priority, &t.Status, &t.DueAt, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CreateTaskParams struct {
	OrganizationID uuid.UUID
	LeadID         *uuid.UUID
	Title          string
	Description    string
	Type           TaskType
	Priority       Priority
	DueAt          *time.Time
}

func (r *Repository) Create(ctx context.Context, params CreateTaskParams) (Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		INSERT INTO tasks (organization_id, lead_id, title, description, task_type, priority, due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+taskColumns,
		params.OrganizationID, params.LeadID, params.Title, params.Description,
		params.Type, params.Priority, params.DueAt,
	))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
}

type ListTasksParams struct {
	Status *Status
	LeadID *uuid.UUID
}

// List returns tasks matching the filter without imposing the queue order;
// ordering policy lives in the service layer.
func (r *Repository) List(ctx context.Context, organizationID uuid.UUID, params ListTasksParams) ([]Task, error) {
	where := []string{"organization_id = $1"}
	args := []interface{}{organizationID}

	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.LeadID != nil {
		args = append(args, *params.LeadID)
		where = append(where, fmt.Sprintf("lead_id = $%d", len(args)))
	}

	return r.queryTasks(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC
	`, args...)
}

// ListOpen returns PENDING and IN_PROGRESS tasks for queue views.
func (r *Repository) ListOpen(ctx context.Context, organizationID uuid.UUID) ([]Task, error) {
	return r.queryTasks(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE organization_id = $1 AND status IN ($2, $3)
	`, organizationID, StatusPending, StatusInProgress)
}

// ListOverdue returns open tasks past their due date, most overdue first.
func (r *Repository) ListOverdue(ctx context.Context, organizationID uuid.UUID, now time.Time) ([]Task, error) {
	return r.queryTasks(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE organization_id = $1 AND status IN ($2, $3)
		  AND due_at IS NOT NULL AND due_at < $4
		ORDER BY due_at ASC
	`, organizationID, StatusPending, StatusInProgress, now)
}

type PatchTaskParams struct {
	Title       *string
	Description *string
	Type        *TaskType
	Priority    *Priority
	Status      *Status
	DueAt       *time.Time
	ClearDueAt  bool
}

func (r *Repository) Patch(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, params PatchTaskParams) (Task, error) {
	set := []string{"updated_at = now()"}
	args := []interface{}{id, organizationID}

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
	if params.Type != nil {
		addSet("task_type", *params.Type)
	}
	if params.Priority != nil {
		addSet("priority", *params.Priority)
	}
	if params.Status != nil {
		addSet("status", *params.Status)
	}
	if params.ClearDueAt {
		set = append(set, "due_at = NULL")
	} else if params.DueAt != nil {
		addSet("due_at", *params.DueAt)
	}

	return scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET `+strings.Join(set, ", ")+`
		WHERE id = $1 AND organization_id = $2
		RETURNING `+taskColumns, args...))
}

// Complete marks the task done. The guard on current status makes completion
// one-way at the database level.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Task, error) {
	return scanTask(r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET status = $3, completed_at = now(), updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND status IN ($4, $5)
		RETURNING `+taskColumns,
		id, organizationID, StatusCompleted, StatusPending, StatusInProgress,
	))
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1 AND organization_id = $2
	`, id, organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsOpenFollowUp reports whether the lead already has an open follow-up
// task, so the periodic scan never duplicates work items.
func (r *Repository) ExistsOpenFollowUp(ctx context.Context, organizationID uuid.UUID, leadID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE organization_id = $1 AND lead_id = $2
			  AND task_type = $3 AND status IN ($4, $5)
		)
	`, organizationID, leadID, TypeFollowUp, StatusPending, StatusInProgress).Scan(&exists)
	return exists, err
}

func (r *Repository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
