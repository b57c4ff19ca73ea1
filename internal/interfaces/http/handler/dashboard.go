package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appfinance "github.com/himfirm/backend/internal/application/finance"
)

// DashboardHandler handles the financial dashboard endpoint
type DashboardHandler struct {
	BaseHandler
	service *appfinance.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *appfinance.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/summary", h.Summary)
}

// Summary returns the aggregated financial snapshot for a date range
func (h *DashboardHandler) Summary(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := now
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "from must be a date in YYYY-MM-DD form")
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "to must be a date in YYYY-MM-DD form")
			return
		}
		to = parsed
	}

	summary, err := h.service.Summary(c.Request.Context(), actor, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, summary)
}
