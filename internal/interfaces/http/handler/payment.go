package handler

import (
	"github.com/gin-gonic/gin"

	appfinance "github.com/himfirm/backend/internal/application/finance"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	service *appfinance.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *appfinance.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Record)
		payments.GET("", h.List)
		payments.GET("/:id", h.Get)
		payments.POST("/:id/clear", h.MarkCleared)
		payments.POST("/:id/bounce", h.MarkBounced)
		payments.POST("/:id/cancel", h.Cancel)
	}
}

// Record records a payment against an invoice
func (h *PaymentHandler) Record(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.service.Record(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, payment)
}

// List lists payments with filtering
func (h *PaymentHandler) List(c *gin.Context) {
	var filter appfinance.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get returns a single payment
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	payment, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, payment)
}

// MarkCleared clears a pending payment, settling the invoice and ledger
func (h *PaymentHandler) MarkCleared(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	payment, err := h.service.MarkCleared(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, payment)
}

// MarkBounced marks a payment as bounced, reversing any settlement
func (h *PaymentHandler) MarkBounced(c *gin.Context) {
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
		h.BadRequest(c, "A reason is required")
		return
	}

	payment, err := h.service.MarkBounced(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, payment)
}

// Cancel cancels a pending payment
func (h *PaymentHandler) Cancel(c *gin.Context) {
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
		h.BadRequest(c, "A reason is required")
		return
	}

	payment, err := h.service.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, payment)
}
