package service

import "testing"

func TestSummarizeCountsOutcomes(t *testing.T) {
	items := []IngestItemResult{
		{Index: 0, Outcome: OutcomeCreated},
		{Index: 1, Outcome: OutcomeExists},
		{Index: 2, Outcome: OutcomeCreated},
		{Index: 3, Outcome: OutcomeFailed},
		{Index: 4, Outcome: OutcomeExists},
	}

	summary := summarize(items)

	if summary.Total != 5 {
		t.Fatalf("Total = %d, want 5", summary.Total)
	}
	if summary.Created != 2 {
		t.Fatalf("Created = %d, want 2", summary.Created)
	}
	if summary.Exists != 2 {
		t.Fatalf("Exists = %d, want 2", summary.Exists)
	}
	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", summary.Failed)
	}
	if len(summary.Items) != 5 {
		t.Fatalf("Items length = %d, want 5", len(summary.Items))
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := summarize(nil)
	if summary.Total != 0 || summary.Created != 0 || summary.Exists != 0 || summary.Failed != 0 {
		t.Fatalf("empty summary should be all zeros, got %+v", summary)
	}
}

func TestValidateCandidate(t *testing.T) {
	cases := []struct {
		name      string
		sourceURL string
		title     string
		wantErr   bool
	}{
		{"valid", "https://reddit.com/r/startups/abc", "Need a dev", false},
		{"missing source url", "", "Need a dev", true},
		{"whitespace source url", "   ", "Need a dev", true},
		{"missing title", "https://reddit.com/r/startups/abc", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateCandidate(tc.sourceURL, tc.title)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
