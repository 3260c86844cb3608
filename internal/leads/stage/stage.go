// Package stage defines the lead pipeline stages and the single
// stage-to-timestamp policy table. Every caller that changes a lead's status
// goes through this table; the set-if-null check is never duplicated at call
// sites.
package stage

import (
	"fmt"
	"strings"
)

// Status is a lead's pipeline position. The set is closed: unknown values are
// rejected at parse time. Transitions are deliberately unguarded - any status
// may follow any other.
type Status string

const (
	StatusNew           Status = "NEW"
	StatusQualified     Status = "QUALIFIED"
	StatusContacted     Status = "CONTACTED"
	StatusFollowup1     Status = "FOLLOWUP_1"
	StatusFollowup2     Status = "FOLLOWUP_2"
	StatusResponded     Status = "RESPONDED"
	StatusCallScheduled Status = "CALL_SCHEDULED"
	StatusCallDone      Status = "CALL_DONE"
	StatusProposalSent  Status = "PROPOSAL_SENT"
	StatusNegotiating   Status = "NEGOTIATING"
	StatusWon           Status = "WON"
	StatusLost          Status = "LOST"
	StatusArchived      Status = "ARCHIVED"
)

// All lists every valid status in intended progression order.
var All = []Status{
	StatusNew,
	StatusQualified,
	StatusContacted,
	StatusFollowup1,
	StatusFollowup2,
	StatusResponded,
	StatusCallScheduled,
	StatusCallDone,
	StatusProposalSent,
	StatusNegotiating,
	StatusWon,
	StatusLost,
	StatusArchived,
}

var valid = func() map[Status]struct{} {
	m := make(map[Status]struct{}, len(All))
	for _, s := range All {
		m[s] = struct{}{}
	}
	return m
}()

// Parse converts a raw string into a Status, rejecting unknown values.
func Parse(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := valid[s]; !ok {
		return "", fmt.Errorf("unknown lead status %q", raw)
	}
	return s, nil
}

// String returns the wire representation.
func (s Status) String() string { return string(s) }

// Mode controls how a milestone timestamp is written when its stage is entered.
type Mode int

const (
	// ModeSetIfNull writes the timestamp only when it is currently unset
	// (first-write-wins). This is the default policy for every milestone.
	ModeSetIfNull Mode = iota
	// ModeOverwrite unconditionally replaces the timestamp. Only the
	// automated qualify path uses it, so agent re-qualification always
	// refreshes qualifiedAt.
	ModeOverwrite
)

// Stamp names the milestone timestamp column a status transition touches.
type Stamp struct {
	Column string
	Mode   Mode
}

// stampTable is the one place mapping statuses to milestone timestamps.
var stampTable = map[Status]Stamp{
	StatusQualified:     {Column: "qualified_at", Mode: ModeSetIfNull},
	StatusContacted:     {Column: "contacted_at", Mode: ModeSetIfNull},
	StatusResponded:     {Column: "responded_at", Mode: ModeSetIfNull},
	StatusCallScheduled: {Column: "call_at", Mode: ModeSetIfNull},
	StatusProposalSent:  {Column: "proposal_at", Mode: ModeSetIfNull},
	StatusWon:           {Column: "closed_at", Mode: ModeSetIfNull},
	StatusLost:          {Column: "closed_at", Mode: ModeSetIfNull},
}

// StampFor returns the milestone stamp policy for a status, if any.
func StampFor(s Status) (Stamp, bool) {
	stamp, ok := stampTable[s]
	return stamp, ok
}
