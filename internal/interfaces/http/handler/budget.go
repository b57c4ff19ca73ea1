package handler

import (
	"github.com/gin-gonic/gin"

	appfinance "github.com/himfirm/backend/internal/application/finance"
)

// BudgetHandler handles budget and project cost endpoints
type BudgetHandler struct {
	BaseHandler
	service *appfinance.BudgetService
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(service *appfinance.BudgetService) *BudgetHandler {
	return &BudgetHandler{service: service}
}

// RegisterRoutes registers budget and project cost routes
func (h *BudgetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.Create)
		budgets.GET("", h.List)
		budgets.GET("/:id", h.Get)
		budgets.POST("/:id/deactivate", h.Deactivate)
	}

	costs := rg.Group("/project-costs")
	{
		costs.POST("", h.CreateCost)
		costs.POST("/:id/actual", h.RecordActual)
	}

	rg.GET("/projects/:projectId/costs", h.ListCosts)
}

// Create creates a new budget
func (h *BudgetHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	budget, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, budget)
}

// List lists budgets
func (h *BudgetHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	budgets, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, budgets)
}

// Get returns a single budget
func (h *BudgetHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	budget, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, budget)
}

// Deactivate retires a budget from consumption tracking
func (h *BudgetHandler) Deactivate(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	budget, err := h.service.Deactivate(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, budget)
}

// CreateCost records an estimated project cost
func (h *BudgetHandler) CreateCost(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreateProjectCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cost, err := h.service.CreateCost(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, cost)
}

// RecordActual converts an estimated cost to an actual one
func (h *BudgetHandler) RecordActual(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appfinance.RecordActualCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	cost, err := h.service.RecordActual(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, cost)
}

// ListCosts lists costs recorded against a project
func (h *BudgetHandler) ListCosts(c *gin.Context) {
	projectID, ok := h.ParseID(c, "projectId")
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	costs, err := h.service.ListCosts(c.Request.Context(), projectID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, costs)
}
