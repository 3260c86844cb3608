// Package agent contains the Gemini-backed lead analyzer. It listens for new
// leads and runs an automated qualification pass over them.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

const analyzeTimeout = 60 * time.Second

type Analyzer struct {
	client  *genai.Client
	model   string
	repo    *repository.Repository
	scoring *scoring.Service
	log     *logger.Logger
}

// NewAnalyzer builds the analyzer. Returns an error when the Gemini client
// cannot be constructed; callers should treat the analyzer as optional and
// run without it when no API key is configured.
func NewAnalyzer(ctx context.Context, cfg config.AgentConfig, repo *repository.Repository, scoringSvc *scoring.Service, log *logger.Logger) (*Analyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Analyzer{
		client:  client,
		model:   cfg.GetAgentModel(),
		repo:    repo,
		scoring: scoringSvc,
		log:     log,
	}, nil
}

// Subscribe registers the analyzer on the event bus.
func (a *Analyzer) Subscribe(bus events.Bus) {
	bus.Subscribe("leads.lead.created", events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		created, ok := event.(events.LeadCreated)
		if !ok {
			return nil
		}
		return a.handleLeadCreated(created)
	}))
}

func (a *Analyzer) handleLeadCreated(event events.LeadCreated) error {
	// Handlers run on the bus goroutine with the publisher's context already
	// released, so analysis gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	lead, err := a.repo.GetByID(ctx, event.LeadID, event.OrganizationID)
	if err != nil {
		return fmt.Errorf("analyzer: fetch lead %s: %w", event.LeadID, err)
	}

	verdict, err := a.analyze(ctx, lead)
	if err != nil {
		a.log.Error("lead analysis failed", "leadId", lead.ID, "error", err)
		return err
	}

	model := a.model
	result, err := a.scoring.AutoQualify(ctx, lead.ID, lead.OrganizationID, scoring.AutoQualifyInput{
		Score:    verdict.Score,
		Reasons:  verdict.Reasons,
		Analysis: &verdict.Summary,
		Model:    &model,
	})
	if err != nil {
		return fmt.Errorf("analyzer: qualify lead %s: %w", lead.ID, err)
	}

	a.log.Info("lead analyzed",
		"leadId", lead.ID,
		"score", verdict.Score,
		"qualified", result.Qualified)
	return nil
}

type verdict struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
	Summary string   `json:"summary"`
}

func (a *Analyzer) analyze(ctx context.Context, lead repository.Lead) (verdict, error) {
	prompt := buildAnalysisPrompt(lead)

	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return verdict{}, fmt.Errorf("generate content: %w", err)
	}

	raw := strings.TrimSpace(resp.Text())
	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return verdict{}, fmt.Errorf("parse analysis response %q: %w", raw, err)
	}
	if v.Score < 0 {
		v.Score = 0
	}
	if v.Score > 100 {
		v.Score = 100
	}
	return v, nil
}

func buildAnalysisPrompt(lead repository.Lead) string {
	var b strings.Builder
	b.WriteString("You are a sales development analyst. Score this inbound lead from 0 to 100 for how likely it is to need freelance software development services.\n\n")
	fmt.Fprintf(&b, "Source: %s\n", lead.Source)
	fmt.Fprintf(&b, "Title: %s\n", lead.Title)
	fmt.Fprintf(&b, "Author: %s\n", lead.Author)
	if lead.Company != nil {
		fmt.Fprintf(&b, "Company: %s\n", *lead.Company)
	}
	fmt.Fprintf(&b, "Description:\n%s\n\n", lead.Description)
	b.WriteString(`Respond with JSON only, shaped as {"score": <0-100>, "reasons": ["<short reason>", ...], "summary": "<2-3 sentence assessment>"}.`)
	return b.String()
}
