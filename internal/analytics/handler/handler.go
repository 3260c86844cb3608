// Package handler exposes the analytics read-side over HTTP.
package handler

import (
	"net/http"
	"time"

	"leadflow_backend/internal/analytics/repository"
	"leadflow_backend/internal/analytics/service"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc    *service.Service
	policy config.PolicyConfig
}

func New(svc *service.Service, policy config.PolicyConfig) *Handler {
	return &Handler{svc: svc, policy: policy}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pipeline", h.Pipeline)
	rg.GET("/funnel", h.Funnel)
	rg.GET("/daily-stats", h.DailyStats)
	rg.POST("/daily-stats/recompute", h.Recompute)
}

// RegisterAgentRoutes mounts the digest on the agent surface.
func (h *Handler) RegisterAgentRoutes(rg *gin.RouterGroup) {
	rg.GET("/digest", h.Digest)
}

func (h *Handler) Pipeline(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	buckets, err := h.svc.Pipeline(c.Request.Context(), identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, buckets)
}

func (h *Handler) Funnel(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	funnel, err := h.svc.Funnel(c.Request.Context(), identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, funnel)
}

func (h *Handler) Digest(c *gin.Context) {
	identity := httpkit.GetIdentity(c)
	digest, err := h.svc.DailyDigest(c.Request.Context(), identity.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, digest)
}

func (h *Handler) DailyStats(c *gin.Context) {
	loc := h.policy.GetLocation()
	now := time.Now().In(loc)

	to := now
	from := now.AddDate(0, 0, -30)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid from date", nil)
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid to date", nil)
			return
		}
		to = parsed
	}

	identity := httpkit.GetIdentity(c)
	stats, err := h.svc.DailyStatsRange(c.Request.Context(), identity.OrgID(), from, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toDailyStatsResponses(stats))
}

type recomputeRequest struct {
	Date string `json:"date"`
}

func (h *Handler) Recompute(c *gin.Context) {
	var req recomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	loc := h.policy.GetLocation()
	day := time.Now().In(loc)
	if req.Date != "" {
		parsed, err := time.ParseInLocation(dateLayout, req.Date, loc)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid date", nil)
			return
		}
		day = parsed
	}

	identity := httpkit.GetIdentity(c)
	if err := h.svc.Recompute(c.Request.Context(), identity.OrgID(), day); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"date": day.Format(dateLayout), "status": "recomputed"})
}

type dailyStatsResponse struct {
	Date           string `json:"date"`
	LeadsScraped   int    `json:"leadsScraped"`
	LeadsQualified int    `json:"leadsQualified"`
	LeadsContacted int    `json:"leadsContacted"`
	LeadsResponded int    `json:"leadsResponded"`
	CallsScheduled int    `json:"callsScheduled"`
	ProposalsSent  int    `json:"proposalsSent"`
	DealsWon       int    `json:"dealsWon"`
	DealsLost      int    `json:"dealsLost"`
}

func toDailyStatsResponses(stats []repository.DailyStats) []dailyStatsResponse {
	out := make([]dailyStatsResponse, len(stats))
	for i, s := range stats {
		out[i] = dailyStatsResponse{
			Date:           s.StatDate.Format(dateLayout),
			LeadsScraped:   s.LeadsScraped,
			LeadsQualified: s.LeadsQualified,
			LeadsContacted: s.LeadsContacted,
			LeadsResponded: s.LeadsResponded,
			CallsScheduled: s.CallsScheduled,
			ProposalsSent:  s.ProposalsSent,
			DealsWon:       s.DealsWon,
			DealsLost:      s.DealsLost,
		}
	}
	return out
}
