package template

import (
	"strings"
	"testing"
)

func TestRenderSubstitutesAndPreservesUnresolved(t *testing.T) {
	subject, content := Render(
		"Quick question, {{name}}",
		"Hi {{name}}, re {{topic}}",
		map[string]string{"name": "Jane"},
	)

	if subject != "Quick question, Jane" {
		t.Fatalf("subject = %q", subject)
	}
	if content != "Hi Jane, re {{topic}}" {
		t.Fatalf("content = %q, want unresolved placeholder preserved", content)
	}
}

func TestRenderToleratesWhitespaceInPlaceholders(t *testing.T) {
	_, content := Render("", "Hello {{ firstName }} from {{company}}", map[string]string{
		"firstName": "Sam",
		"company":   "Acme",
	})
	if content != "Hello Sam from Acme" {
		t.Fatalf("content = %q", content)
	}
}

func TestRenderRepeatedPlaceholder(t *testing.T) {
	_, content := Render("", "{{name}} and {{name}} again", map[string]string{"name": "Kim"})
	if content != "Kim and Kim again" {
		t.Fatalf("content = %q", content)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		lead LeadFacts
		want Bucket
	}{
		{"web3 keyword in title", LeadFacts{Title: "Solidity dev needed"}, BucketWeb3},
		{"blockchain in description", LeadFacts{Title: "Startup gig", Description: "we build blockchain infra"}, BucketWeb3},
		{"hiring tag", LeadFacts{Title: "[Hiring] backend engineer"}, BucketHiringPost},
		{"hiring word", LeadFacts{Title: "We are hiring devs"}, BucketHiringPost},
		{"web3 beats hiring", LeadFacts{Title: "[Hiring] web3 engineer"}, BucketWeb3},
		{"fallback", LeadFacts{Title: "Need help with my MVP"}, BucketStartup},
		{"source counts", LeadFacts{Title: "Need a dev", Source: "web3-jobs"}, BucketWeb3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.lead); got != tc.want {
				t.Fatalf("Classify = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFirstName(t *testing.T) {
	cases := []struct {
		author string
		want   string
	}{
		{"u/jane_doe", "Jane"},
		{"@sam", "Sam"},
		{"John Smith", "John"},
		{"ALLCAPS", "ALLCAPS"},
		{"élodie", "Élodie"},
		{"", "there"},
		{"u/", "there"},
		{"   ", "there"},
	}

	for _, tc := range cases {
		if got := FirstName(tc.author); got != tc.want {
			t.Fatalf("FirstName(%q) = %q, want %q", tc.author, got, tc.want)
		}
	}
}

func TestCompany(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Acme - looking for devs", "Acme"},
		{"Acme | hiring", "Acme"},
		{"Just a title", "Just a title"},
		{"- no first segment", "your company"},
		{"", "your company"},
	}

	for _, tc := range cases {
		if got := Company(tc.title); got != tc.want {
			t.Fatalf("Company(%q) = %q, want %q", tc.title, got, tc.want)
		}
	}
}

func TestObservation(t *testing.T) {
	long := strings.Repeat("a", 120)
	if got := Observation(long); len([]rune(got)) != 80 {
		t.Fatalf("Observation of long text has length %d, want 80", len([]rune(got)))
	}
	if got := Observation("short note"); got != "short note" {
		t.Fatalf("Observation = %q", got)
	}
	if got := Observation("  "); got != "your recent post" {
		t.Fatalf("Observation of blank = %q", got)
	}
}
