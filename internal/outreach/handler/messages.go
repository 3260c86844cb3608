package handler

import (
	"net/http"

	"leadflow_backend/internal/outreach/repository"
	"leadflow_backend/internal/outreach/service"
	"leadflow_backend/internal/outreach/transport"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Draft(c *gin.Context) {
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	channel, err := repository.ParseChannel(req.Channel)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	result, err := h.svc.Draft(c.Request.Context(), identity.OrgID(), service.DraftInput{
		LeadID:     leadID,
		TemplateID: req.TemplateID,
		Channel:    channel,
		Variables:  req.Variables,
		Proposal:   req.Proposal,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{
		"message":  transport.ToMessageResponse(result.Message),
		"template": transport.ToTemplateResponse(result.Template),
		"bucket":   string(result.Bucket),
	})
}

func (h *Handler) GetMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	msg, err := h.svc.GetMessageByID(c.Request.Context(), id, identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMessageResponse(msg))
}

func (h *Handler) ListLeadMessages(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	messages, err := h.svc.ListMessagesForLead(c.Request.Context(), id, identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMessageResponses(messages))
}

func (h *Handler) SendEmail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	message, err := h.svc.SendEmail(c.Request.Context(), identity.OrgID(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMessageResponse(message))
}

func (h *Handler) MarkSent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.MarkSentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	message, err := h.svc.MarkSent(c.Request.Context(), identity.OrgID(), id, service.MarkSentInput{
		ExternalID: req.ExternalID,
		ThreadID:   req.ThreadID,
		Proposal:   req.Proposal,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMessageResponse(message))
}

func (h *Handler) RecordInbound(c *gin.Context) {
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.RecordInboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	channel, err := repository.ParseChannel(req.Channel)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	message, err := h.svc.RecordInbound(c.Request.Context(), identity.OrgID(), service.RecordInboundInput{
		LeadID:      leadID,
		Channel:     channel,
		Subject:     req.Subject,
		Content:     req.Content,
		ExternalID:  req.ExternalID,
		ThreadID:    req.ThreadID,
		Sentiment:   req.Sentiment,
		RepliedToID: req.RepliedToID,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToMessageResponse(message))
}

func (h *Handler) UpdateMessageStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.UpdateMessageStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	status, err := repository.ParseMessageStatus(req.Status)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	message, err := h.svc.UpdateMessageStatus(c.Request.Context(), identity.OrgID(), id, status)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToMessageResponse(message))
}
