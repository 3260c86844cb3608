package handler

import (
	"net/http"

	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListNotes(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	identity := httpkit.GetIdentity(c)
	notes, err := h.svc.ListNotes(c.Request.Context(), id, identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToNoteResponses(notes))
}

func (h *Handler) AddNote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	noteType, err := repository.ParseNoteType(req.Type)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	identity := httpkit.GetIdentity(c)
	note, err := h.svc.AddNote(c.Request.Context(), id, identity.OrgID(), service.AddNoteInput{
		Type:    noteType,
		Content: req.Content,
		Model:   req.Model,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToNoteResponse(note))
}
