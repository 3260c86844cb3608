package stage

import "testing"

func TestParse_AcceptsEveryKnownStatus(t *testing.T) {
	for _, s := range All {
		parsed, err := Parse(string(s))
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", s, err)
		}
		if parsed != s {
			t.Fatalf("Parse(%q) = %q", s, parsed)
		}
	}
}

func TestParse_NormalizesCaseAndWhitespace(t *testing.T) {
	parsed, err := Parse("  call_scheduled ")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if parsed != StatusCallScheduled {
		t.Fatalf("expected CALL_SCHEDULED, got %q", parsed)
	}
}

func TestParse_RejectsUnknownValues(t *testing.T) {
	for _, raw := range []string{"", "PENDING", "qualified!", "NEW LEAD"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q) should have failed", raw)
		}
	}
}

func TestStampFor_MilestoneMapping(t *testing.T) {
	cases := []struct {
		status Status
		column string
	}{
		{StatusQualified, "qualified_at"},
		{StatusContacted, "contacted_at"},
		{StatusResponded, "responded_at"},
		{StatusCallScheduled, "call_at"},
		{StatusProposalSent, "proposal_at"},
		{StatusWon, "closed_at"},
		{StatusLost, "closed_at"},
	}

	for _, tc := range cases {
		stamp, ok := StampFor(tc.status)
		if !ok {
			t.Fatalf("expected a stamp for %q", tc.status)
		}
		if stamp.Column != tc.column {
			t.Fatalf("stamp for %q: expected column %q, got %q", tc.status, tc.column, stamp.Column)
		}
		if stamp.Mode != ModeSetIfNull {
			t.Fatalf("stamp for %q: default mode must be set-if-null", tc.status)
		}
	}
}

func TestStampFor_NonMilestoneStagesHaveNoStamp(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusFollowup1, StatusFollowup2, StatusCallDone, StatusNegotiating, StatusArchived} {
		if _, ok := StampFor(s); ok {
			t.Fatalf("status %q must not stamp a timestamp", s)
		}
	}
}
