// Package analytics provides the reporting bounded context module.
package analytics

import (
	"leadflow_backend/internal/analytics/handler"
	"leadflow_backend/internal/analytics/repository"
	"leadflow_backend/internal/analytics/service"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the analytics bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the analytics module.
func NewModule(pool *pgxpool.Pool, policy config.PolicyConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, policy, log)
	h := handler.New(svc, policy)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analytics"
}

// Service returns the analytics service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts analytics routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/analytics"))
	m.handler.RegisterAgentRoutes(ctx.Agent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
