package service

import (
	"testing"

	"leadflow_backend/internal/analytics/repository"
)

func TestBuildFunnelRates(t *testing.T) {
	funnel := BuildFunnel(repository.MilestoneCounts{
		Scraped:   200,
		Qualified: 50,
		Contacted: 40,
		Responded: 10,
		Calls:     5,
		Proposals: 2,
		Won:       1,
	})

	if len(funnel) != 7 {
		t.Fatalf("funnel has %d stages, want 7", len(funnel))
	}
	if funnel[0].Rate != 100 {
		t.Fatalf("stage 0 rate = %d, want 100", funnel[0].Rate)
	}
	if funnel[1].Rate != 25 {
		t.Fatalf("Qualified rate = %d, want 25", funnel[1].Rate)
	}
	if funnel[2].Rate != 80 {
		t.Fatalf("Contacted rate = %d, want 80", funnel[2].Rate)
	}
	if funnel[3].Rate != 25 {
		t.Fatalf("Responded rate = %d, want 25", funnel[3].Rate)
	}
	if funnel[6].Rate != 50 {
		t.Fatalf("Won rate = %d, want 50", funnel[6].Rate)
	}
}

func TestBuildFunnelEmptyPreviousStage(t *testing.T) {
	funnel := BuildFunnel(repository.MilestoneCounts{
		Scraped:   10,
		Qualified: 0,
		Contacted: 3,
	})

	if funnel[1].Rate != 0 {
		t.Fatalf("Qualified rate = %d, want 0", funnel[1].Rate)
	}
	// Contacted follows an empty stage; the rate must be 0, never NaN or Inf.
	if funnel[2].Rate != 0 {
		t.Fatalf("Contacted rate = %d, want 0 after empty stage", funnel[2].Rate)
	}
}

func TestBuildFunnelAllZero(t *testing.T) {
	funnel := BuildFunnel(repository.MilestoneCounts{})
	if funnel[0].Rate != 100 {
		t.Fatalf("stage 0 rate = %d, want 100 even with no leads", funnel[0].Rate)
	}
	for i := 1; i < len(funnel); i++ {
		if funnel[i].Rate != 0 {
			t.Fatalf("stage %d rate = %d, want 0", i, funnel[i].Rate)
		}
	}
}

func TestBuildFunnelRounding(t *testing.T) {
	funnel := BuildFunnel(repository.MilestoneCounts{Scraped: 3, Qualified: 1})
	// 1/3 is 33.33...; round, do not truncate.
	if funnel[1].Rate != 33 {
		t.Fatalf("Qualified rate = %d, want 33", funnel[1].Rate)
	}

	funnel = BuildFunnel(repository.MilestoneCounts{Scraped: 8, Qualified: 5})
	// 5/8 is 62.5; half rounds up.
	if funnel[1].Rate != 63 {
		t.Fatalf("Qualified rate = %d, want 63", funnel[1].Rate)
	}
}

func TestBuildDigestActions(t *testing.T) {
	digest := BuildDigest("2026-08-30", repository.DayCounters{
		LeadsScraped:   12,
		LeadsResponded: 2,
	}, 3, 0)

	if !digest.Actions.SendFollowups {
		t.Fatalf("SendFollowups should be true with pending followups")
	}
	if !digest.Actions.ReviewResponses {
		t.Fatalf("ReviewResponses should be true with responses today")
	}
	if digest.Actions.PrepareCalls {
		t.Fatalf("PrepareCalls should be false with no upcoming calls")
	}

	quiet := BuildDigest("2026-08-30", repository.DayCounters{}, 0, 1)
	if quiet.Actions.SendFollowups || quiet.Actions.ReviewResponses {
		t.Fatalf("quiet day should not suggest followups or reviews")
	}
	if !quiet.Actions.PrepareCalls {
		t.Fatalf("PrepareCalls should be true with an upcoming call")
	}
}
