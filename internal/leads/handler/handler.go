// Package handler exposes the leads context over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/internal/leads/stage"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	defaultListLimit = 50
	maxListLimit     = 200
)

type Handler struct {
	svc      *service.Service
	scoring  *scoring.Service
	validate *validator.Validator
}

func New(svc *service.Service, scoringSvc *scoring.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, scoring: scoringSvc, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/ingest", h.Ingest)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.PATCH("/:id/score", h.UpdateScore)
	rg.POST("/:id/qualify", h.Qualify)
	rg.GET("/:id/notes", h.ListNotes)
	rg.POST("/:id/notes", h.AddNote)
}

// RegisterAgentRoutes mounts the automated qualification endpoint on the
// agent surface.
func (h *Handler) RegisterAgentRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads/:id/qualify", h.AutoQualify)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.GetIdentity(c)
	lead, err := h.svc.Create(c.Request.Context(), identity.OrgID(), req.ToInput())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToLeadResponse(lead))
}

func (h *Handler) Ingest(c *gin.Context) {
	var req transport.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	candidates := make([]service.CreateLeadInput, len(req.Candidates))
	for i, candidate := range req.Candidates {
		candidates[i] = candidate.ToInput()
	}

	identity := httpkit.GetIdentity(c)
	summary, err := h.svc.Ingest(c.Request.Context(), identity.OrgID(), candidates)
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if summary.Created > 0 {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, summary)
}

func (h *Handler) List(c *gin.Context) {
	params := repository.ListLeadsParams{
		Search: c.Query("search"),
		Limit:  queryInt(c, "limit", defaultListLimit),
		Offset: queryInt(c, "offset", 0),
	}
	if params.Limit < 1 || params.Limit > maxListLimit {
		params.Limit = defaultListLimit
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	if raw := c.Query("status"); raw != "" {
		status, err := stage.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		params.Status = &status
	}

	identity := httpkit.GetIdentity(c)
	leads, total, err := h.svc.List(c.Request.Context(), identity.OrgID(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ListLeadsResponse{
		Leads:  transport.ToLeadResponses(leads),
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	lead, err := h.svc.Get(c.Request.Context(), id, identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	input := service.PatchLeadInput{
		PatchLeadParams: repository.PatchLeadParams{
			Title:           req.Title,
			Description:     req.Description,
			Email:           req.Email,
			Phone:           req.Phone,
			Company:         req.Company,
			EmailSource:     req.EmailSource,
			EmailEnrichedAt: req.EmailEnrichedAt,
			BudgetMin:       req.BudgetMin,
			BudgetMax:       req.BudgetMax,
			BudgetCurrency:  req.BudgetCurrency,
			Tags:            req.Tags,
		},
	}
	if req.Status != nil {
		status, err := stage.Parse(*req.Status)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		input.Status = &status
	}

	identity := httpkit.GetIdentity(c)
	lead, err := h.svc.Patch(c.Request.Context(), id, identity.OrgID(), input)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	if err := h.svc.Delete(c.Request.Context(), id, identity.OrgID()); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	status, err := stage.Parse(req.Status)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	lead, err := h.svc.SetStatus(c.Request.Context(), id, identity.OrgID(), status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) UpdateScore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.GetIdentity(c)
	lead, err := h.scoring.UpdateScore(c.Request.Context(), id, identity.OrgID(), scoring.UpdateScoreInput{
		Score:   req.Score,
		Reasons: req.Reasons,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) Qualify(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	lead, err := h.scoring.MarkQualified(c.Request.Context(), id, identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToLeadResponse(lead))
}

func (h *Handler) AutoQualify(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.AutoQualifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.GetIdentity(c)
	result, err := h.scoring.AutoQualify(c.Request.Context(), id, identity.OrgID(), scoring.AutoQualifyInput{
		Score:    req.Score,
		Reasons:  req.Reasons,
		Analysis: req.Analysis,
		Model:    req.Model,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"lead":      transport.ToLeadResponse(result.Lead),
		"qualified": result.Qualified,
		"threshold": result.Threshold,
	})
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
