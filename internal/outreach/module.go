// Package outreach provides the outreach bounded context module: templates,
// messages and delivery.
package outreach

import (
	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/outreach/delivery"
	"leadflow_backend/internal/outreach/handler"
	"leadflow_backend/internal/outreach/repository"
	"leadflow_backend/internal/outreach/service"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the outreach bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the outreach module. The leads gateway
// crosses the context boundary and is injected by the composition root.
func NewModule(pool *pgxpool.Pool, leads service.LeadGateway, usage scheduler.UsageRecorder, eventBus events.Bus, val *validator.Validator, cfg config.EmailConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	sender := delivery.NewSender(cfg)
	svc := service.New(repo, leads, sender, usage, eventBus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "outreach"
}

// Service returns the outreach service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the outreach repository, used by the background worker
// for usage counter processing.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts outreach routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
	m.handler.RegisterAgentRoutes(ctx.Agent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
