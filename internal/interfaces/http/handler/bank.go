package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appfinance "github.com/himfirm/backend/internal/application/finance"
)

// BankHandler handles bank account and ledger endpoints
type BankHandler struct {
	BaseHandler
	service *appfinance.BankService
}

// NewBankHandler creates a new bank handler
func NewBankHandler(service *appfinance.BankService) *BankHandler {
	return &BankHandler{service: service}
}

// RegisterRoutes registers bank routes
func (h *BankHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/bank-accounts")
	{
		accounts.POST("", h.CreateAccount)
		accounts.GET("", h.ListAccounts)
		accounts.GET("/:id", h.GetAccount)
		accounts.GET("/:id/statement", h.Statement)
		accounts.GET("/:id/balance", h.BalanceAsOf)
		accounts.POST("/:id/transactions", h.Post)
		accounts.POST("/:id/reconcile", h.Reconcile)
		accounts.POST("/:id/primary", h.SetPrimary)
		accounts.POST("/:id/deactivate", h.Deactivate)
	}

	transactions := rg.Group("/bank-transactions")
	{
		transactions.POST("/transfer", h.Transfer)
		transactions.POST("/:id/reverse", h.Reverse)
	}
}

// CreateAccount creates a new bank account
func (h *BankHandler) CreateAccount(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.CreateBankAccountRequest
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

// ListAccounts lists bank accounts
func (h *BankHandler) ListAccounts(c *gin.Context) {
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

// GetAccount returns a single bank account
func (h *BankHandler) GetAccount(c *gin.Context) {
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

// Statement returns the ledger entries for an account
func (h *BankHandler) Statement(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var filter appfinance.BankTransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, err := h.service.Statement(c.Request.Context(), id, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, entries)
}

// BalanceAsOf returns the reconstructed balance at a point in time
func (h *BankHandler) BalanceAsOf(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			h.BadRequest(c, "as_of must be an RFC 3339 timestamp")
			return
		}
		asOf = parsed
	}

	balance, err := h.service.BalanceAsOf(c.Request.Context(), id, asOf)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, gin.H{"account_id": id, "as_of": asOf, "balance": balance})
}

// Post records a manual ledger entry against an account
func (h *BankHandler) Post(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req appfinance.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txn, err := h.service.Post(c.Request.Context(), actor, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, txn)
}

// Transfer moves money between two accounts atomically
func (h *BankHandler) Transfer(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txn, err := h.service.Transfer(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, txn)
}

// Reverse offsets an earlier ledger entry with a compensating one
func (h *BankHandler) Reverse(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reference string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	txn, err := h.service.ReverseTransaction(c.Request.Context(), actor, id, req.Reference)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, txn)
}

// Reconcile checks the stored balance against the ledger
func (h *BankHandler) Reconcile(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Reconcile(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, result)
}

// SetPrimary marks an account as the primary deposit account
func (h *BankHandler) SetPrimary(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	account, err := h.service.SetPrimary(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, account)
}

// Deactivate deactivates an account
func (h *BankHandler) Deactivate(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	account, err := h.service.Deactivate(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, account)
}
