// Package transport defines the HTTP request/response shapes for the leads
// context. Handlers bind these and translate them to service inputs.
package transport

import (
	"time"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/service"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	Source      string   `json:"source" validate:"required,max=64"`
	SourceURL   string   `json:"sourceUrl" validate:"required,max=2048"`
	Title       string   `json:"title" validate:"required,max=512"`
	Description string   `json:"description"`
	Author      string   `json:"author" validate:"max=256"`
	AuthorURL   string   `json:"authorUrl" validate:"omitempty,max=2048"`
	Score       int      `json:"score" validate:"gte=0,lte=100"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Phone       *string  `json:"phone"`
	Company     *string  `json:"company" validate:"omitempty,max=256"`
	Tags        []string `json:"tags"`
}

func (r CreateLeadRequest) ToInput() service.CreateLeadInput {
	return service.CreateLeadInput{
		Source:      r.Source,
		SourceURL:   r.SourceURL,
		Title:       r.Title,
		Description: r.Description,
		Author:      r.Author,
		AuthorURL:   r.AuthorURL,
		Score:       r.Score,
		Email:       r.Email,
		Phone:       r.Phone,
		Company:     r.Company,
		Tags:        r.Tags,
	}
}

type IngestRequest struct {
	Candidates []CreateLeadRequest `json:"candidates" validate:"required,min=1,max=500,dive"`
}

type UpdateLeadRequest struct {
	Status          *string    `json:"status"`
	Title           *string    `json:"title" validate:"omitempty,max=512"`
	Description     *string    `json:"description"`
	Email           *string    `json:"email" validate:"omitempty,email"`
	Phone           *string    `json:"phone"`
	Company         *string    `json:"company" validate:"omitempty,max=256"`
	EmailSource     *string    `json:"emailSource" validate:"omitempty,max=64"`
	EmailEnrichedAt *time.Time `json:"emailEnrichedAt"`
	BudgetMin       *float64   `json:"budgetMin" validate:"omitempty,gte=0"`
	BudgetMax       *float64   `json:"budgetMax" validate:"omitempty,gte=0"`
	BudgetCurrency  *string    `json:"budgetCurrency" validate:"omitempty,len=3"`
	Tags            []string   `json:"tags"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdateScoreRequest struct {
	Score   *int     `json:"score" validate:"omitempty,gte=0,lte=100"`
	Reasons []string `json:"reasons"`
}

type AutoQualifyRequest struct {
	Score    int      `json:"score" validate:"gte=0,lte=100"`
	Reasons  []string `json:"reasons"`
	Analysis *string  `json:"analysis"`
	Model    *string  `json:"model" validate:"omitempty,max=128"`
}

type AddNoteRequest struct {
	Type    string  `json:"type" validate:"required"`
	Content string  `json:"content" validate:"required"`
	Model   *string `json:"model" validate:"omitempty,max=128"`
}

// LeadResponse is the wire shape of a lead.
type LeadResponse struct {
	ID              uuid.UUID  `json:"id"`
	Source          string     `json:"source"`
	SourceURL       string     `json:"sourceUrl"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Author          string     `json:"author"`
	AuthorURL       string     `json:"authorUrl"`
	Score           int        `json:"score"`
	ScoreReasons    []string   `json:"scoreReasons"`
	Status          string     `json:"status"`
	Email           *string    `json:"email"`
	Phone           *string    `json:"phone"`
	Company         *string    `json:"company"`
	EmailSource     *string    `json:"emailSource"`
	EmailEnrichedAt *time.Time `json:"emailEnrichedAt"`
	BudgetMin       *float64   `json:"budgetMin"`
	BudgetMax       *float64   `json:"budgetMax"`
	BudgetCurrency  *string    `json:"budgetCurrency"`
	Tags            []string   `json:"tags"`
	QualifiedAt     *time.Time `json:"qualifiedAt"`
	ContactedAt     *time.Time `json:"contactedAt"`
	RespondedAt     *time.Time `json:"respondedAt"`
	CallAt          *time.Time `json:"callAt"`
	ProposalAt      *time.Time `json:"proposalAt"`
	ClosedAt        *time.Time `json:"closedAt"`
	ScrapedAt       time.Time  `json:"scrapedAt"`
	Revision        int        `json:"revision"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func ToLeadResponse(lead repository.Lead) LeadResponse {
	return LeadResponse{
		ID:              lead.ID,
		Source:          lead.Source,
		SourceURL:       lead.SourceURL,
		Title:           lead.Title,
		Description:     lead.Description,
		Author:          lead.Author,
		AuthorURL:       lead.AuthorURL,
		Score:           lead.Score,
		ScoreReasons:    lead.ScoreReasons,
		Status:          string(lead.Status),
		Email:           lead.Email,
		Phone:           lead.Phone,
		Company:         lead.Company,
		EmailSource:     lead.EmailSource,
		EmailEnrichedAt: lead.EmailEnrichedAt,
		BudgetMin:       lead.BudgetMin,
		BudgetMax:       lead.BudgetMax,
		BudgetCurrency:  lead.BudgetCurrency,
		Tags:            lead.Tags,
		QualifiedAt:     lead.QualifiedAt,
		ContactedAt:     lead.ContactedAt,
		RespondedAt:     lead.RespondedAt,
		CallAt:          lead.CallAt,
		ProposalAt:      lead.ProposalAt,
		ClosedAt:        lead.ClosedAt,
		ScrapedAt:       lead.ScrapedAt,
		Revision:        lead.Revision,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
}

func ToLeadResponses(leads []repository.Lead) []LeadResponse {
	out := make([]LeadResponse, len(leads))
	for i, lead := range leads {
		out[i] = ToLeadResponse(lead)
	}
	return out
}

// ListLeadsResponse wraps a page of leads with the unpaged total.
type ListLeadsResponse struct {
	Leads  []LeadResponse `json:"leads"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"leadId"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Model     *string   `json:"model,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToNoteResponse(note repository.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID,
		LeadID:    note.LeadID,
		Type:      string(note.Type),
		Content:   note.Content,
		Model:     note.Model,
		CreatedAt: note.CreatedAt,
	}
}

func ToNoteResponses(notes []repository.Note) []NoteResponse {
	out := make([]NoteResponse, len(notes))
	for i, note := range notes {
		out[i] = ToNoteResponse(note)
	}
	return out
}
