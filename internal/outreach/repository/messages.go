package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Channel is the closed set of outreach channels.
type Channel string

const (
	ChannelEmail    Channel = "EMAIL"
	ChannelRedditDM Channel = "REDDIT_DM"
	ChannelLinkedIn Channel = "LINKEDIN"
)

func ParseChannel(raw string) (Channel, error) {
	switch Channel(strings.ToUpper(strings.TrimSpace(raw))) {
	case ChannelEmail:
		return ChannelEmail, nil
	case ChannelRedditDM:
		return ChannelRedditDM, nil
	case ChannelLinkedIn:
		return ChannelLinkedIn, nil
	default:
		return "", fmt.Errorf("unknown channel %q", raw)
	}
}

// Direction distinguishes outbound drafts from recorded inbound replies.
type Direction string

const (
	DirectionOutbound Direction = "OUTBOUND"
	DirectionInbound  Direction = "INBOUND"
)

// MessageStatus is the closed set of message lifecycle states.
type MessageStatus string

const (
	MessageDraft     MessageStatus = "DRAFT"
	MessageScheduled MessageStatus = "SCHEDULED"
	MessageSent      MessageStatus = "SENT"
	MessageDelivered MessageStatus = "DELIVERED"
	MessageRead      MessageStatus = "READ"
	MessageReplied   MessageStatus = "REPLIED"
	MessageBounced   MessageStatus = "BOUNCED"
	MessageFailed    MessageStatus = "FAILED"
)

func ParseMessageStatus(raw string) (MessageStatus, error) {
	switch MessageStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case MessageDraft, MessageScheduled, MessageSent, MessageDelivered,
		MessageRead, MessageReplied, MessageBounced, MessageFailed:
		return MessageStatus(strings.ToUpper(strings.TrimSpace(raw))), nil
	default:
		return "", fmt.Errorf("unknown message status %q", raw)
	}
}

type Message struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	LeadID         uuid.UUID
	TemplateID     *uuid.UUID
	Channel        Channel
	Direction      Direction
	Subject        string
	Content        string
	Status         MessageStatus
	ExternalID     *string
	ThreadID       *string
	SentAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const messageColumns = `id, organization_id, lead_id, template_id, channel, direction,
	subject, content, status, external_id, thread_id, sent_at, created_at, updated_at`

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	err := row.Scan(
		&m.ID, &m.OrganizationID, &m.LeadID, &m.TemplateID, &m.Channel, &m.Direction,
		&m.Subject, &m.Content, &m.Status, &m.ExternalID, &m.ThreadID, &m.SentAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrMessageNotFound
	}
	return m, err
}

type CreateMessageParams struct {
	OrganizationID uuid.UUID
	LeadID         uuid.UUID
	TemplateID     *uuid.UUID
	Channel        Channel
	Direction      Direction
	Subject        string
	Content        string
	Status         MessageStatus
	ExternalID     *string
	ThreadID       *string
}

func (r *Repository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	return scanMessage(r.pool.QueryRow(ctx, `
		INSERT INTO messages (organization_id, lead_id, template_id, channel, direction, subject, content, status, external_id, thread_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+messageColumns,
		params.OrganizationID, params.LeadID, params.TemplateID, params.Channel, params.Direction,
		params.Subject, params.Content, params.Status, params.ExternalID, params.ThreadID,
	))
}

func (r *Repository) GetMessage(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Message, error) {
	return scanMessage(r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE id = $1 AND organization_id = $2
	`, id, organizationID))
}

func (r *Repository) ListMessagesForLead(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE lead_id = $1 AND organization_id = $2
		ORDER BY created_at DESC
	`, leadID, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkSent stamps the message SENT with the send time and optional provider
// correlation IDs, in one statement.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, externalID, threadID *string) (Message, error) {
	set := []string{"status = $3", "sent_at = now()", "updated_at = now()"}
	args := []interface{}{id, organizationID, MessageSent}

	if externalID != nil {
		args = append(args, *externalID)
		set = append(set, fmt.Sprintf("external_id = $%d", len(args)))
	}
	if threadID != nil {
		args = append(args, *threadID)
		set = append(set, fmt.Sprintf("thread_id = $%d", len(args)))
	}

	return scanMessage(r.pool.QueryRow(ctx, `
		UPDATE messages
		SET `+strings.Join(set, ", ")+`
		WHERE id = $1 AND organization_id = $2
		RETURNING `+messageColumns, args...))
}

func (r *Repository) SetMessageStatus(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, status MessageStatus) (Message, error) {
	return scanMessage(r.pool.QueryRow(ctx, `
		UPDATE messages
		SET status = $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING `+messageColumns, id, organizationID, status))
}
