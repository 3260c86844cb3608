// Package handler exposes the tasks context over HTTP.
package handler

import (
	"net/http"

	"leadflow_backend/internal/tasks/repository"
	"leadflow_backend/internal/tasks/service"
	"leadflow_backend/internal/tasks/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/queue", h.PendingQueue)
	rg.GET("/overdue", h.Overdue)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.POST("/:id/complete", h.Complete)
	rg.DELETE("/:id", h.Delete)
}

// RegisterAgentRoutes mounts the agent task queue.
func (h *Handler) RegisterAgentRoutes(rg *gin.RouterGroup) {
	rg.GET("/next-actions", h.NextActions)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	input := service.CreateTaskInput{
		LeadID:      req.LeadID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	}
	if req.Type != "" {
		taskType, err := repository.ParseTaskType(req.Type)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		input.Type = taskType
	}
	if req.Priority != "" {
		priority, err := repository.ParsePriority(req.Priority)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		input.Priority = priority
	}

	identity := httpkit.GetIdentity(c)
	task, err := h.svc.Create(c.Request.Context(), identity.OrgID(), input)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToTaskResponse(task))
}

func (h *Handler) List(c *gin.Context) {
	params := repository.ListTasksParams{}
	if raw := c.Query("status"); raw != "" {
		status, err := repository.ParseStatus(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		params.Status = &status
	}
	if raw := c.Query("leadId"); raw != "" {
		leadID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid leadId", nil)
			return
		}
		params.LeadID = &leadID
	}

	identity := httpkit.GetIdentity(c)
	tasks, err := h.svc.List(c.Request.Context(), identity.OrgID(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTaskResponses(tasks))
}

func (h *Handler) PendingQueue(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	tasks, err := h.svc.PendingQueue(c.Request.Context(), identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTaskResponses(tasks))
}

func (h *Handler) Overdue(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	tasks, err := h.svc.Overdue(c.Request.Context(), identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTaskResponses(tasks))
}

func (h *Handler) NextActions(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	tasks, err := h.svc.NextActions(c.Request.Context(), identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTaskResponses(tasks))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	task, err := h.svc.Get(c.Request.Context(), id, identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTaskResponse(task))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	input := service.PatchTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
		ClearDueAt:  req.ClearDueAt,
	}
	if req.Type != nil {
		taskType, err := repository.ParseTaskType(*req.Type)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		input.Type = &taskType
	}
	if req.Priority != nil {
		priority, err := repository.ParsePriority(*req.Priority)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		input.Priority = &priority
	}
	if req.Status != nil {
		status, err := repository.ParseStatus(*req.Status)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		input.Status = &status
	}

	identity := httpkit.GetIdentity(c)
	task, err := h.svc.Patch(c.Request.Context(), id, identity.OrgID(), input)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTaskResponse(task))
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	task, err := h.svc.Complete(c.Request.Context(), id, identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTaskResponse(task))
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

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
