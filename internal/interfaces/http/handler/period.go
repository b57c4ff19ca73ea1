package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appfinance "github.com/himfirm/backend/internal/application/finance"
)

// PeriodHandler handles financial period and tax configuration endpoints
type PeriodHandler struct {
	BaseHandler
	service *appfinance.PeriodService
}

// NewPeriodHandler creates a new period handler
func NewPeriodHandler(service *appfinance.PeriodService) *PeriodHandler {
	return &PeriodHandler{service: service}
}

// RegisterRoutes registers period and tax routes
func (h *PeriodHandler) RegisterRoutes(rg *gin.RouterGroup) {
	periods := rg.Group("/financial-periods")
	{
		periods.POST("", h.CreatePeriod)
		periods.GET("", h.ListPeriods)
		periods.POST("/:id/close", h.ClosePeriod)
		periods.POST("/:id/reopen", h.ReopenPeriod)
	}

	taxes := rg.Group("/tax-configurations")
	{
		taxes.POST("", h.SetTaxRate)
		taxes.GET("", h.ListTaxConfigurations)
		taxes.GET("/rate", h.RateAsOf)
	}
}

// CreatePeriod opens a new financial period
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	period, err := h.service.CreatePeriod(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, period)
}

// ListPeriods lists financial periods
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	periods, err := h.service.ListPeriods(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, periods)
}

// ClosePeriod closes a period against further postings
func (h *PeriodHandler) ClosePeriod(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	period, err := h.service.ClosePeriod(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, period)
}

// ReopenPeriod reopens a closed period
func (h *PeriodHandler) ReopenPeriod(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	period, err := h.service.ReopenPeriod(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, period)
}

// SetTaxRate records a new effective-dated tax rate
func (h *PeriodHandler) SetTaxRate(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cfg, err := h.service.SetTaxRate(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, cfg)
}

// ListTaxConfigurations lists tax configurations
func (h *PeriodHandler) ListTaxConfigurations(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	configs, err := h.service.ListTaxConfigurations(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, configs)
}

// RateAsOf resolves the tax rate in force for a name on a date
func (h *PeriodHandler) RateAsOf(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		h.BadRequest(c, "name is required")
		return
	}

	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "date must be a date in YYYY-MM-DD form")
			return
		}
		date = parsed
	}

	cfg, err := h.service.RateAsOf(c.Request.Context(), name, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, cfg)
}
