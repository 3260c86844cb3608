// Package handler exposes the outreach context over HTTP.
package handler

import (
	"net/http"

	"leadflow_backend/internal/outreach/repository"
	"leadflow_backend/internal/outreach/service"
	"leadflow_backend/internal/outreach/transport"
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
	templates := rg.Group("/templates")
	templates.GET("", h.ListTemplates)
	templates.POST("", h.CreateTemplate)
	templates.GET("/:id", h.GetTemplate)
	templates.PATCH("/:id", h.UpdateTemplate)
	templates.DELETE("/:id", h.DeleteTemplate)
	templates.POST("/:id/render", h.RenderPreview)

	messages := rg.Group("/messages")
	messages.GET("/:id", h.GetMessage)
	messages.POST("/:id/send", h.SendEmail)
	messages.PATCH("/:id/status", h.UpdateMessageStatus)

	rg.GET("/leads/:id/messages", h.ListLeadMessages)
}

// RegisterAgentRoutes mounts the automation surface for outreach.
func (h *Handler) RegisterAgentRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads/:id/outreach-draft", h.Draft)
	rg.POST("/messages/:id/sent", h.MarkSent)
	rg.POST("/leads/:id/response", h.RecordInbound)
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var req transport.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	templateType, err := repository.ParseTemplateType(req.Type)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	channel, ok := optionalChannel(c, req.Channel)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	tmpl, err := h.svc.CreateTemplate(c.Request.Context(), identity.OrgID(), service.CreateTemplateInput{
		Name:      req.Name,
		Type:      templateType,
		Channel:   channel,
		Subject:   req.Subject,
		Content:   req.Content,
		Variables: req.Variables,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToTemplateResponse(tmpl))
}

func (h *Handler) ListTemplates(c *gin.Context) {
	params := repository.ListTemplatesParams{
		ActiveOnly: c.Query("active") == "true",
	}
	if raw := c.Query("type"); raw != "" {
		templateType, err := repository.ParseTemplateType(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		params.Type = &templateType
	}

	identity := httpkit.GetIdentity(c)
	templates, err := h.svc.ListTemplates(c.Request.Context(), identity.OrgID(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTemplateResponses(templates))
}

func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	tmpl, err := h.svc.GetTemplate(c.Request.Context(), id, identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTemplateResponse(tmpl))
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := repository.UpdateTemplateParams{
		Name:      req.Name,
		Subject:   req.Subject,
		Content:   req.Content,
		Variables: req.Variables,
		IsActive:  req.IsActive,
	}
	if req.Type != nil {
		templateType, err := repository.ParseTemplateType(*req.Type)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		params.Type = &templateType
	}
	channel, ok := optionalChannel(c, req.Channel)
	if !ok {
		return
	}
	params.Channel = channel

	identity := httpkit.GetIdentity(c)
	tmpl, err := h.svc.UpdateTemplate(c.Request.Context(), id, identity.OrgID(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTemplateResponse(tmpl))
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	if err := h.svc.DeleteTemplate(c.Request.Context(), id, identity.OrgID()); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) RenderPreview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.RenderPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	result, err := h.svc.Preview(c.Request.Context(), identity.OrgID(), service.PreviewInput{
		TemplateID: id,
		LeadID:     req.LeadID,
		Variables:  req.Variables,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

func optionalChannel(c *gin.Context, raw *string) (*repository.Channel, bool) {
	if raw == nil {
		return nil, true
	}
	channel, err := repository.ParseChannel(*raw)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return nil, false
	}
	return &channel, true
}
