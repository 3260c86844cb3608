// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadflow_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// LeadCreated is published when a new lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	SourceURL      string    `json:"sourceUrl"`
	Source         string    `json:"source"`
	Title          string    `json:"title"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadQualified is published after a lead passes (or fails) qualification.
type LeadQualified struct {
	BaseEvent
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Score          int       `json:"score"`
	Automated      bool      `json:"automated"`
}

func (e LeadQualified) EventName() string { return "leads.lead.qualified" }

// MessageSent is published when an outbound message is confirmed sent.
type MessageSent struct {
	BaseEvent
	MessageID      uuid.UUID `json:"messageId"`
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Channel        string    `json:"channel"`
}

func (e MessageSent) EventName() string { return "outreach.message.sent" }

// ResponseRecorded is published when an inbound response is recorded.
type ResponseRecorded struct {
	BaseEvent
	MessageID      uuid.UUID `json:"messageId"`
	LeadID         uuid.UUID `json:"leadId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Sentiment      string    `json:"sentiment,omitempty"`
}

func (e ResponseRecorded) EventName() string { return "outreach.response.recorded" }
