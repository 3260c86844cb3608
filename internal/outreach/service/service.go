// Package service implements outreach orchestration: template management,
// draft generation, delivery tracking and inbound response recording.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/outreach/delivery"
	"leadflow_backend/internal/outreach/repository"
	"leadflow_backend/internal/outreach/template"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Lead is the outreach view of a lead, fetched through the gateway. Outreach
// never touches the leads tables directly.
type Lead struct {
	ID          uuid.UUID
	Title       string
	Description string
	Source      string
	Author      string
	Email       *string
}

// LeadGateway is the anti-corruption boundary to the leads context.
type LeadGateway interface {
	Get(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Lead, error)
	// MarkContacted moves the lead to CONTACTED; the contact timestamp is
	// first-write-wins on the other side.
	MarkContacted(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error
	// MarkProposalSent moves the lead to PROPOSAL_SENT.
	MarkProposalSent(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error
	// MarkResponded moves the lead to RESPONDED.
	MarkResponded(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error
	// AddAnalysisNote appends an AI_ANALYSIS note to the lead.
	AddAnalysisNote(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, content string) error
}

type Service struct {
	repo  *repository.Repository
	leads LeadGateway
	email delivery.EmailSender
	usage scheduler.UsageRecorder
	bus   events.Bus
	log   *logger.Logger
}

func New(repo *repository.Repository, leads LeadGateway, email delivery.EmailSender, usage scheduler.UsageRecorder, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, leads: leads, email: email, usage: usage, bus: bus, log: log}
}

// Repository exposes the underlying repository for worker wiring.
func (s *Service) Repository() *repository.Repository {
	return s.repo
}

type DraftInput struct {
	LeadID     uuid.UUID
	TemplateID *uuid.UUID
	Channel    repository.Channel
	// Variables override or extend the derived variable set.
	Variables map[string]string
	// Proposal marks this draft as a proposal, which changes the lead stage
	// side effect when the message is later marked sent.
	Proposal bool
}

// DraftResult carries the created draft and how its template was chosen.
type DraftResult struct {
	Message  repository.Message
	Template repository.Template
	Bucket   template.Bucket
}

// Draft renders an outreach message for a lead and stores it as DRAFT.
// Without an explicit template the lead is classified into a bucket and the
// bucket's default template is used. Each draft counts one template usage,
// recorded asynchronously so a queue outage never blocks drafting.
func (s *Service) Draft(ctx context.Context, orgID uuid.UUID, input DraftInput) (DraftResult, error) {
	lead, err := s.leads.Get(ctx, input.LeadID, orgID)
	if err != nil {
		return DraftResult{}, err
	}

	facts := leadFacts(lead)
	bucket := template.Classify(facts)

	var tmpl repository.Template
	if input.TemplateID != nil {
		tmpl, err = s.repo.GetTemplate(ctx, *input.TemplateID, orgID)
	} else {
		tmpl, err = s.repo.GetDefaultByBucket(ctx, orgID, bucket)
	}
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return DraftResult{}, apperr.NotFound(fmt.Sprintf("no template available for bucket %q", bucket))
	}
	if err != nil {
		return DraftResult{}, err
	}

	variables := template.DeriveVariables(facts)
	for name, value := range input.Variables {
		variables[name] = value
	}

	subject, content := template.Render(tmpl.Subject, tmpl.Content, variables)

	message, err := s.repo.CreateMessage(ctx, repository.CreateMessageParams{
		OrganizationID: orgID,
		LeadID:         lead.ID,
		TemplateID:     &tmpl.ID,
		Channel:        input.Channel,
		Direction:      repository.DirectionOutbound,
		Subject:        subject,
		Content:        content,
		Status:         repository.MessageDraft,
	})
	if err != nil {
		return DraftResult{}, err
	}

	s.recordUsage(ctx, tmpl.ID, orgID)

	return DraftResult{Message: message, Template: tmpl, Bucket: bucket}, nil
}

// recordUsage enqueues a usage increment. Failures are logged and dropped;
// the counter is best-effort, the draft itself is not.
func (s *Service) recordUsage(ctx context.Context, templateID uuid.UUID, orgID uuid.UUID) {
	err := s.usage.EnqueueTemplateUsage(ctx, scheduler.TemplateUsagePayload{
		TemplateID:     templateID.String(),
		OrganizationID: orgID.String(),
	})
	if err != nil {
		s.log.Warn("failed to enqueue template usage", "templateId", templateID, "error", err)
	}
}

type PreviewInput struct {
	TemplateID uuid.UUID
	LeadID     *uuid.UUID
	Variables  map[string]string
}

type PreviewResult struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// Preview renders a template without creating a message and without counting
// usage.
func (s *Service) Preview(ctx context.Context, orgID uuid.UUID, input PreviewInput) (PreviewResult, error) {
	tmpl, err := s.repo.GetTemplate(ctx, input.TemplateID, orgID)
	if errors.Is(err, repository.ErrTemplateNotFound) {
		return PreviewResult{}, apperr.NotFound("template not found")
	}
	if err != nil {
		return PreviewResult{}, err
	}

	variables := map[string]string{}
	if input.LeadID != nil {
		lead, err := s.leads.Get(ctx, *input.LeadID, orgID)
		if err != nil {
			return PreviewResult{}, err
		}
		variables = template.DeriveVariables(leadFacts(lead))
	}
	for name, value := range input.Variables {
		variables[name] = value
	}

	subject, content := template.Render(tmpl.Subject, tmpl.Content, variables)
	return PreviewResult{Subject: subject, Content: content}, nil
}

// SendEmail delivers a DRAFT email message through SMTP and marks it sent.
// A delivery failure surfaces as a dependency error and leaves both the
// message and the lead untouched.
func (s *Service) SendEmail(ctx context.Context, orgID uuid.UUID, messageID uuid.UUID) (repository.Message, error) {
	message, err := s.getMessage(ctx, messageID, orgID)
	if err != nil {
		return repository.Message{}, err
	}
	if message.Channel != repository.ChannelEmail {
		return repository.Message{}, apperr.Validation("message channel is not EMAIL")
	}
	if message.Status != repository.MessageDraft && message.Status != repository.MessageScheduled {
		return repository.Message{}, apperr.Conflict(fmt.Sprintf("message is %s, only drafts can be sent", message.Status))
	}

	lead, err := s.leads.Get(ctx, message.LeadID, orgID)
	if err != nil {
		return repository.Message{}, err
	}
	if lead.Email == nil || strings.TrimSpace(*lead.Email) == "" {
		return repository.Message{}, apperr.Validation("lead has no email address")
	}

	if err := s.email.Send(ctx, *lead.Email, message.Subject, message.Content); err != nil {
		return repository.Message{}, apperr.Dependency("email delivery failed", err)
	}

	return s.MarkSent(ctx, orgID, messageID, MarkSentInput{})
}

type MarkSentInput struct {
	ExternalID *string
	ThreadID   *string
	// Proposal switches the lead stage side effect from CONTACTED to
	// PROPOSAL_SENT.
	Proposal bool
}

// MarkSent confirms an outbound message went out on its channel. The lead
// moves to CONTACTED (or PROPOSAL_SENT for proposals) and the send is
// announced on the bus.
func (s *Service) MarkSent(ctx context.Context, orgID uuid.UUID, messageID uuid.UUID, input MarkSentInput) (repository.Message, error) {
	current, err := s.getMessage(ctx, messageID, orgID)
	if err != nil {
		return repository.Message{}, err
	}
	if current.Direction != repository.DirectionOutbound {
		return repository.Message{}, apperr.Validation("only outbound messages can be marked sent")
	}

	message, err := s.repo.MarkSent(ctx, messageID, orgID, input.ExternalID, input.ThreadID)
	if err != nil {
		return repository.Message{}, err
	}

	if input.Proposal {
		err = s.leads.MarkProposalSent(ctx, message.LeadID, orgID)
	} else {
		err = s.leads.MarkContacted(ctx, message.LeadID, orgID)
	}
	if err != nil {
		s.log.Error("failed to update lead stage after send", "leadId", message.LeadID, "error", err)
	}

	s.bus.Publish(ctx, events.MessageSent{
		BaseEvent:      events.NewBaseEvent(),
		MessageID:      message.ID,
		LeadID:         message.LeadID,
		OrganizationID: orgID,
		Channel:        string(message.Channel),
	})

	return message, nil
}

type RecordInboundInput struct {
	LeadID     uuid.UUID
	Channel    repository.Channel
	Subject    string
	Content    string
	ExternalID *string
	ThreadID   *string
	// Sentiment, when supplied by the caller, is recorded as an analysis
	// note on the lead.
	Sentiment *string
	// RepliedToID optionally links the outbound message this responds to;
	// that message flips to REPLIED.
	RepliedToID *uuid.UUID
}

// RecordInbound stores a received response and moves the lead to RESPONDED.
func (s *Service) RecordInbound(ctx context.Context, orgID uuid.UUID, input RecordInboundInput) (repository.Message, error) {
	if strings.TrimSpace(input.Content) == "" {
		return repository.Message{}, apperr.Validation("content is required")
	}

	if _, err := s.leads.Get(ctx, input.LeadID, orgID); err != nil {
		return repository.Message{}, err
	}

	message, err := s.repo.CreateMessage(ctx, repository.CreateMessageParams{
		OrganizationID: orgID,
		LeadID:         input.LeadID,
		Channel:        input.Channel,
		Direction:      repository.DirectionInbound,
		Subject:        input.Subject,
		Content:        input.Content,
		Status:         repository.MessageRead,
		ExternalID:     input.ExternalID,
		ThreadID:       input.ThreadID,
	})
	if err != nil {
		return repository.Message{}, err
	}

	if input.RepliedToID != nil {
		if _, err := s.repo.SetMessageStatus(ctx, *input.RepliedToID, orgID, repository.MessageReplied); err != nil {
			s.log.Warn("failed to flag replied message", "messageId", *input.RepliedToID, "error", err)
		}
	}

	if err := s.leads.MarkResponded(ctx, input.LeadID, orgID); err != nil {
		s.log.Error("failed to mark lead responded", "leadId", input.LeadID, "error", err)
	}

	sentiment := ""
	if input.Sentiment != nil && strings.TrimSpace(*input.Sentiment) != "" {
		sentiment = strings.TrimSpace(*input.Sentiment)
		note := fmt.Sprintf("Response sentiment: %s", sentiment)
		if err := s.leads.AddAnalysisNote(ctx, input.LeadID, orgID, note); err != nil {
			s.log.Warn("failed to record sentiment note", "leadId", input.LeadID, "error", err)
		}
	}

	s.bus.Publish(ctx, events.ResponseRecorded{
		BaseEvent:      events.NewBaseEvent(),
		MessageID:      message.ID,
		LeadID:         message.LeadID,
		OrganizationID: orgID,
		Sentiment:      sentiment,
	})

	return message, nil
}

func (s *Service) ListMessagesForLead(ctx context.Context, leadID uuid.UUID, orgID uuid.UUID) ([]repository.Message, error) {
	if _, err := s.leads.Get(ctx, leadID, orgID); err != nil {
		return nil, err
	}
	return s.repo.ListMessagesForLead(ctx, leadID, orgID)
}

func (s *Service) UpdateMessageStatus(ctx context.Context, orgID uuid.UUID, messageID uuid.UUID, status repository.MessageStatus) (repository.Message, error) {
	message, err := s.repo.SetMessageStatus(ctx, messageID, orgID, status)
	if errors.Is(err, repository.ErrMessageNotFound) {
		return repository.Message{}, apperr.NotFound("message not found")
	}
	return message, err
}

// GetMessageByID fetches a single message scoped to the organization.
func (s *Service) GetMessageByID(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Message, error) {
	return s.getMessage(ctx, id, orgID)
}

func (s *Service) getMessage(ctx context.Context, id uuid.UUID, orgID uuid.UUID) (repository.Message, error) {
	message, err := s.repo.GetMessage(ctx, id, orgID)
	if errors.Is(err, repository.ErrMessageNotFound) {
		return repository.Message{}, apperr.NotFound("message not found")
	}
	return message, err
}

func leadFacts(lead Lead) template.LeadFacts {
	return template.LeadFacts{
		Title:       lead.Title,
		Description: lead.Description,
		Source:      lead.Source,
		Author:      lead.Author,
	}
}
