package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appfinance "github.com/himfirm/backend/internal/application/finance"
)

// CommissionHandler handles commission structure and commission endpoints
type CommissionHandler struct {
	BaseHandler
	service *appfinance.CommissionService
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(service *appfinance.CommissionService) *CommissionHandler {
	return &CommissionHandler{service: service}
}

// RegisterRoutes registers commission routes
func (h *CommissionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	structures := rg.Group("/commission-structures")
	{
		structures.POST("", h.CreateStructure)
		structures.GET("", h.ListStructures)
		structures.POST("/:id/deactivate", h.DeactivateStructure)
	}

	commissions := rg.Group("/commissions")
	{
		commissions.POST("", h.Create)
		commissions.GET("", h.List)
		commissions.GET("/:id", h.Get)
		commissions.POST("/:id/approve", h.Approve)
		commissions.POST("/:id/pay", h.Pay)
		commissions.POST("/:id/cancel", h.Cancel)
	}
}

// CreateStructure defines a new commission structure
func (h *CommissionHandler) CreateStructure(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreateCommissionStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	structure, err := h.service.CreateStructure(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, structure)
}

// ListStructures lists commission structures
func (h *CommissionHandler) ListStructures(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	structures, err := h.service.ListStructures(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, structures)
}

// DeactivateStructure retires a structure from new commissions
func (h *CommissionHandler) DeactivateStructure(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	structure, err := h.service.DeactivateStructure(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, structure)
}

// Create computes and records a commission against a structure
func (h *CommissionHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	commission, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, commission)
}

// List lists commissions
func (h *CommissionHandler) List(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	commissions, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, commissions)
}

// Get returns a single commission
func (h *CommissionHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	commission, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, commission)
}

// Approve approves a pending commission
func (h *CommissionHandler) Approve(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	commission, err := h.service.Approve(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, commission)
}

// Pay marks an approved commission as paid out
func (h *CommissionHandler) Pay(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		PaymentDate time.Time `json:"payment_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}
	if req.PaymentDate.IsZero() {
		req.PaymentDate = time.Now()
	}

	commission, err := h.service.MarkPaid(c.Request.Context(), actor, id, req.PaymentDate)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, commission)
}

// Cancel cancels a commission with a reason
func (h *CommissionHandler) Cancel(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	commission, err := h.service.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, commission)
}
