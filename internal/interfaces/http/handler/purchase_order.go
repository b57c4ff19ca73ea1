package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appfinance "github.com/himfirm/backend/internal/application/finance"
	"github.com/himfirm/backend/internal/domain/identity"
)

// PurchaseOrderHandler handles vendor and purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	service *appfinance.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new purchase order handler
func NewPurchaseOrderHandler(service *appfinance.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

// RegisterRoutes registers vendor and purchase order routes
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	vendors := rg.Group("/vendors")
	{
		vendors.POST("", h.CreateVendor)
		vendors.GET("", h.ListVendors)
		vendors.PUT("/:id/contact", h.UpdateVendorContact)
		vendors.POST("/:id/deactivate", h.DeactivateVendor)
	}

	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/submit", h.Submit)
		orders.POST("/:id/approve", h.Approve)
		orders.POST("/:id/send", h.Send)
		orders.POST("/:id/receive", h.Receive)
		orders.POST("/:id/cancel", h.Cancel)
	}
}

// CreateVendor registers a new vendor
func (h *PurchaseOrderHandler) CreateVendor(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	vendor, err := h.service.CreateVendor(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, vendor)
}

// ListVendors lists vendors with pagination
func (h *PurchaseOrderHandler) ListVendors(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListVendors(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// UpdateVendorContact replaces a vendor's contact details
func (h *PurchaseOrderHandler) UpdateVendorContact(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appfinance.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	vendor, err := h.service.UpdateVendorContact(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, vendor)
}

// DeactivateVendor retires a vendor from new orders
func (h *PurchaseOrderHandler) DeactivateVendor(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	vendor, err := h.service.DeactivateVendor(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, vendor)
}

// Create drafts a new purchase order
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, order)
}

// List lists purchase orders with filters and pagination
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var filter appfinance.PurchaseOrderListFilter
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

// Get returns a single purchase order
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, order)
}

// Submit submits a draft order for approval
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.transition(c, h.service.SubmitForApproval)
}

// Approve approves a submitted order
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.Approve)
}

// Send marks an approved order as sent to the vendor
func (h *PurchaseOrderHandler) Send(c *gin.Context) {
	h.transition(c, h.service.Send)
}

func (h *PurchaseOrderHandler) transition(c *gin.Context, fn func(ctx context.Context, actor identity.Actor, id uuid.UUID) (*appfinance.PurchaseOrderResponse, error)) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, order)
}

// Receive records goods received against order lines
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Items []appfinance.ReceiveItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.service.ReceiveItems(c.Request.Context(), actor, id, req.Items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels an order with a reason
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
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

	order, err := h.service.Cancel(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, order)
}
