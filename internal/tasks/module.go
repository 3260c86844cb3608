// Package tasks provides the work item bounded context module.
package tasks

import (
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/tasks/handler"
	"leadflow_backend/internal/tasks/repository"
	"leadflow_backend/internal/tasks/service"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the tasks bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the tasks module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, policy config.PolicyConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, policy, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tasks"
}

// Service returns the tasks service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts task routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/tasks"))
	m.handler.RegisterAgentRoutes(ctx.Agent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
