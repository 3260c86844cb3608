// Package leads provides the lead pipeline bounded context module.
package leads

import (
	"context"

	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/agent"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	repo     *repository.Repository
	service  *service.Service
	scoring  *scoring.Service
	analyzer *agent.Analyzer
}

// NewModule creates and initializes the leads module with all its dependencies.
// The AI analyzer is optional; without a Gemini API key new leads simply wait
// for manual review.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)
	scoringSvc := scoring.New(repo, eventBus, cfg, log)

	var analyzer *agent.Analyzer
	if cfg.IsAgentEnabled() {
		a, err := agent.NewAnalyzer(context.Background(), cfg, repo, scoringSvc, log)
		if err != nil {
			return nil, err
		}
		a.Subscribe(eventBus)
		analyzer = a
		log.Info("lead analyzer enabled", "model", cfg.GetAgentModel())
	} else {
		log.Info("lead analyzer disabled, no GEMINI_API_KEY configured")
	}

	h := handler.New(svc, scoringSvc, val)

	return &Module{
		handler:  h,
		repo:     repo,
		service:  svc,
		scoring:  scoringSvc,
		analyzer: analyzer,
	}, nil
}

// Repository exposes the lead repository for cross-context adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead management service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// ScoringService returns the qualification service for external use.
func (m *Module) ScoringService() *scoring.Service {
	return m.scoring
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterAgentRoutes(ctx.Agent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
