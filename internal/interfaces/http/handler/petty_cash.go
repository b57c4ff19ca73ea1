package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appfinance "github.com/himfirm/backend/internal/application/finance"
	"github.com/himfirm/backend/internal/domain/identity"
)

// PettyCashHandler handles petty cash endpoints
type PettyCashHandler struct {
	BaseHandler
	service *appfinance.PettyCashService
}

// NewPettyCashHandler creates a new petty cash handler
func NewPettyCashHandler(service *appfinance.PettyCashService) *PettyCashHandler {
	return &PettyCashHandler{service: service}
}

// RegisterRoutes registers petty cash routes
func (h *PettyCashHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/petty-cash")
	{
		accounts.POST("", h.CreateAccount)
		accounts.GET("", h.ListAccounts)
		accounts.GET("/:id", h.GetAccount)
		accounts.GET("/:id/transactions", h.Transactions)
		accounts.POST("/:id/withdraw", h.Withdraw)
		accounts.POST("/:id/reimburse", h.Reimburse)
		accounts.POST("/:id/replenish", h.Replenish)
		accounts.POST("/:id/custodian", h.ChangeCustodian)
	}
}

// CreateAccount opens a new petty cash float
func (h *PettyCashHandler) CreateAccount(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreatePettyCashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.service.CreateAccount(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, account)
}

// ListAccounts lists petty cash floats
func (h *PettyCashHandler) ListAccounts(c *gin.Context) {
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	accounts, err := h.service.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, accounts)
}

// GetAccount returns a single petty cash float
func (h *PettyCashHandler) GetAccount(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	account, err := h.service.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, account)
}

// Transactions lists movements on a float, oldest first
func (h *PettyCashHandler) Transactions(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	filter, ok := h.ListFilter(c)
	if !ok {
		return
	}

	txns, err := h.service.Transactions(c.Request.Context(), id, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, txns)
}

// Withdraw takes cash out of the float
func (h *PettyCashHandler) Withdraw(c *gin.Context) {
	h.movement(c, h.service.Withdraw)
}

// Reimburse puts unspent cash back into the float
func (h *PettyCashHandler) Reimburse(c *gin.Context) {
	h.movement(c, h.service.Reimburse)
}

func (h *PettyCashHandler) movement(c *gin.Context, fn func(ctx context.Context, actor identity.Actor, accountID uuid.UUID, req appfinance.PettyCashMovementRequest) (*appfinance.PettyCashTransactionResponse, error)) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appfinance.PettyCashMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txn, err := fn(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, txn)
}

// Replenish tops the float back up from a bank account
func (h *PettyCashHandler) Replenish(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appfinance.ReplenishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txn, err := h.service.Replenish(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, txn)
}

// ChangeCustodian hands the float over to a new custodian
func (h *PettyCashHandler) ChangeCustodian(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		CustodianID   uuid.UUID `json:"custodian_id" binding:"required"`
		CustodianName string    `json:"custodian_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.service.ChangeCustodian(c.Request.Context(), actor, id, req.CustodianID, req.CustodianName)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, account)
}
