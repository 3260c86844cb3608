package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NoteType is the closed set of note origins.
type NoteType string

const (
	NoteManual     NoteType = "MANUAL"
	NoteAIAnalysis NoteType = "AI_ANALYSIS"
	NoteAIResearch NoteType = "AI_RESEARCH"
	NoteSystem     NoteType = "SYSTEM"
)

// ParseNoteType rejects unknown note types.
func ParseNoteType(raw string) (NoteType, error) {
	switch NoteType(strings.ToUpper(strings.TrimSpace(raw))) {
	case NoteManual:
		return NoteManual, nil
	case NoteAIAnalysis:
		return NoteAIAnalysis, nil
	case NoteAIResearch:
		return NoteAIResearch, nil
	case NoteSystem:
		return NoteSystem, nil
	default:
		return "", fmt.Errorf("unknown note type %q", raw)
	}
}

type Note struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	Type           NoteType
	Content        string
	Model          *string
	CreatedAt      time.Time
}

type CreateNoteParams struct {
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	Type           NoteType
	Content        string
	Model          *string
}

// CreateNote appends a note to a lead. Notes are append-only; they are never
// mutated and only disappear through the lead cascade.
func (r *Repository) CreateNote(ctx context.Context, params CreateNoteParams) (Note, error) {
	var note Note
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_notes (lead_id, organization_id, note_type, content, model)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, lead_id, organization_id, note_type, content, model, created_at
	`, params.LeadID, params.OrganizationID, params.Type, params.Content, params.Model).Scan(
		&note.ID, &note.LeadID, &note.OrganizationID, &note.Type, &note.Content, &note.Model, &note.CreatedAt,
	)
	return note, err
}

func (r *Repository) ListNotes(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID) ([]Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, organization_id, note_type, content, model, created_at
		FROM lead_notes
		WHERE lead_id = $1 AND organization_id = $2
		ORDER BY created_at DESC
	`, leadID, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		var note Note
		if err := rows.Scan(&note.ID, &note.LeadID, &note.OrganizationID, &note.Type, &note.Content, &note.Model, &note.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return notes, nil
}
