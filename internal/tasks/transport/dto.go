// Package transport defines the HTTP request/response shapes for the tasks
// context.
package transport

import (
	"time"

	"leadflow_backend/internal/tasks/repository"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	LeadID      *uuid.UUID `json:"leadId"`
	Title       string     `json:"title" validate:"required,max=512"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	DueAt       *time.Time `json:"dueAt"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=512"`
	Description *string    `json:"description"`
	Type        *string    `json:"type"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	DueAt       *time.Time `json:"dueAt"`
	ClearDueAt  bool       `json:"clearDueAt"`
}

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	LeadID      *uuid.UUID `json:"leadId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueAt       *time.Time `json:"dueAt"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func ToTaskResponse(t repository.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		LeadID:      t.LeadID,
		Title:       t.Title,
		Description: t.Description,
		Type:        string(t.Type),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		DueAt:       t.DueAt,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToTaskResponses(tasks []repository.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskResponse(t)
	}
	return out
}
