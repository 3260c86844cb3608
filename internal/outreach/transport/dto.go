// Package transport defines the HTTP request/response shapes for the
// outreach context.
package transport

import (
	"time"

	"leadflow_backend/internal/outreach/repository"

	"github.com/google/uuid"
)

type CreateTemplateRequest struct {
	Name      string   `json:"name" validate:"required,max=256"`
	Type      string   `json:"type" validate:"required"`
	Channel   *string  `json:"channel"`
	Subject   string   `json:"subject" validate:"max=512"`
	Content   string   `json:"content" validate:"required"`
	Variables []string `json:"variables"`
}

type UpdateTemplateRequest struct {
	Name      *string  `json:"name" validate:"omitempty,max=256"`
	Type      *string  `json:"type"`
	Channel   *string  `json:"channel"`
	Subject   *string  `json:"subject" validate:"omitempty,max=512"`
	Content   *string  `json:"content"`
	Variables []string `json:"variables"`
	IsActive  *bool    `json:"isActive"`
}

type RenderPreviewRequest struct {
	LeadID    *uuid.UUID        `json:"leadId"`
	Variables map[string]string `json:"variables"`
}

type DraftRequest struct {
	TemplateID *uuid.UUID        `json:"templateId"`
	Channel    string            `json:"channel" validate:"required"`
	Variables  map[string]string `json:"variables"`
	Proposal   bool              `json:"proposal"`
}

type MarkSentRequest struct {
	ExternalID *string `json:"externalId"`
	ThreadID   *string `json:"threadId"`
	Proposal   bool    `json:"proposal"`
}

type RecordInboundRequest struct {
	Channel     string     `json:"channel" validate:"required"`
	Subject     string     `json:"subject"`
	Content     string     `json:"content" validate:"required"`
	ExternalID  *string    `json:"externalId"`
	ThreadID    *string    `json:"threadId"`
	Sentiment   *string    `json:"sentiment"`
	RepliedToID *uuid.UUID `json:"repliedToId"`
}

type UpdateMessageStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type TemplateResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Channel    *string   `json:"channel"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	Variables  []string  `json:"variables"`
	UsageCount int       `json:"usageCount"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func ToTemplateResponse(t repository.Template) TemplateResponse {
	var channel *string
	if t.Channel != nil {
		c := string(*t.Channel)
		channel = &c
	}
	return TemplateResponse{
		ID:         t.ID,
		Name:       t.Name,
		Type:       string(t.Type),
		Channel:    channel,
		Subject:    t.Subject,
		Content:    t.Content,
		Variables:  t.Variables,
		UsageCount: t.UsageCount,
		IsActive:   t.IsActive,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func ToTemplateResponses(templates []repository.Template) []TemplateResponse {
	out := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		out[i] = ToTemplateResponse(t)
	}
	return out
}

type MessageResponse struct {
	ID         uuid.UUID  `json:"id"`
	LeadID     uuid.UUID  `json:"leadId"`
	TemplateID *uuid.UUID `json:"templateId"`
	Channel    string     `json:"channel"`
	Direction  string     `json:"direction"`
	Subject    string     `json:"subject"`
	Content    string     `json:"content"`
	Status     string     `json:"status"`
	ExternalID *string    `json:"externalId"`
	ThreadID   *string    `json:"threadId"`
	SentAt     *time.Time `json:"sentAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func ToMessageResponse(m repository.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		LeadID:     m.LeadID,
		TemplateID: m.TemplateID,
		Channel:    string(m.Channel),
		Direction:  string(m.Direction),
		Subject:    m.Subject,
		Content:    m.Content,
		Status:     string(m.Status),
		ExternalID: m.ExternalID,
		ThreadID:   m.ThreadID,
		SentAt:     m.SentAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func ToMessageResponses(messages []repository.Message) []MessageResponse {
	out := make([]MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = ToMessageResponse(m)
	}
	return out
}
