package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appfinance "github.com/himfirm/backend/internal/application/finance"
	"github.com/himfirm/backend/internal/domain/identity"
)

// reasonRequest carries the mandatory reason for destructive transitions
type reasonRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	service *appfinance.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(service *appfinance.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/overdue", h.ListOverdue)
		invoices.GET("/outstanding", h.OutstandingTotal)
		invoices.GET("/:id", h.Get)
		invoices.GET("/:id/verify", h.Verify)
		invoices.POST("/:id/submit", h.SubmitForApproval)
		invoices.POST("/:id/approve", h.Approve)
		invoices.POST("/:id/send", h.Send)
		invoices.POST("/:id/cancel", h.Cancel)
		invoices.POST("/:id/void", h.Void)
	}
}

// Create creates a new invoice
func (h *InvoiceHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, invoice)
}

// List lists invoices with filtering
func (h *InvoiceHandler) List(c *gin.Context) {
	var filter appfinance.InvoiceListFilter
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

// ListOverdue lists invoices past due as of now
func (h *InvoiceHandler) ListOverdue(c *gin.Context) {
	var filter appfinance.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoices, err := h.service.ListOverdue(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, invoices)
}

// OutstandingTotal returns the total balance due over open invoices
func (h *InvoiceHandler) OutstandingTotal(c *gin.Context) {
	total, err := h.service.OutstandingTotal(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"outstanding_total": total})
}

// Get returns a single invoice
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, invoice)
}

// Verify checks the invoice paid amount against its cleared payments
func (h *InvoiceHandler) Verify(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.VerifyPaidAmount(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"consistent": true})
}

// SubmitForApproval moves a draft invoice to pending approval
func (h *InvoiceHandler) SubmitForApproval(c *gin.Context) {
	h.transition(c, h.service.SubmitForApproval)
}

// Approve approves a pending invoice
func (h *InvoiceHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.Approve)
}

// Send marks an approved invoice as sent to the customer
func (h *InvoiceHandler) Send(c *gin.Context) {
	h.transition(c, h.service.Send)
}

// Cancel cancels an unsent invoice with a reason
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	h.transitionWithReason(c, h.service.Cancel)
}

// Void voids a sent invoice with a reason
func (h *InvoiceHandler) Void(c *gin.Context) {
	h.transitionWithReason(c, h.service.Void)
}

func (h *InvoiceHandler) transition(c *gin.Context, fn func(ctx context.Context, actor identity.Actor, id uuid.UUID) (*appfinance.InvoiceResponse, error)) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	invoice, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, invoice)
}

func (h *InvoiceHandler) transitionWithReason(c *gin.Context, fn func(ctx context.Context, actor identity.Actor, id uuid.UUID, reason string) (*appfinance.InvoiceResponse, error)) {
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

	invoice, err := fn(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, invoice)
}
