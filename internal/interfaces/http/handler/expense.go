package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appfinance "github.com/himfirm/backend/internal/application/finance"
)

// ExpenseHandler handles expense endpoints
type ExpenseHandler struct {
	BaseHandler
	service *appfinance.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(service *appfinance.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// RegisterRoutes registers expense routes
func (h *ExpenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.Submit)
		expenses.GET("", h.List)
		expenses.GET("/summary", h.Summary)
		expenses.GET("/:id", h.Get)
		expenses.POST("/:id/approve", h.Approve)
		expenses.POST("/:id/reject", h.Reject)
		expenses.POST("/:id/pay", h.Pay)
	}
}

// Submit records a new expense claim
func (h *ExpenseHandler) Submit(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req appfinance.SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.service.Submit(c.Request.Context(), actor, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, expense)
}

// List lists expenses with filters and pagination
func (h *ExpenseHandler) List(c *gin.Context) {
	var filter appfinance.ExpenseListFilter
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

// Summary returns paid expense totals grouped by category
func (h *ExpenseHandler) Summary(c *gin.Context) {
	from, to, ok := h.dateRange(c)
	if !ok {
		return
	}

	summary, err := h.service.CategorySummary(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *ExpenseHandler) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := now
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "from must be a date in YYYY-MM-DD form")
			return from, to, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "to must be a date in YYYY-MM-DD form")
			return from, to, false
		}
		to = parsed
	}
	return from, to, true
}

// Get returns a single expense
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	expense, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, expense)
}

// Approve approves a pending expense
func (h *ExpenseHandler) Approve(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	expense, err := h.service.Approve(c.Request.Context(), actor, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, expense)
}

// Reject rejects a pending expense with a reason
func (h *ExpenseHandler) Reject(c *gin.Context) {
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

	expense, err := h.service.Reject(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, expense)
}

// Pay settles an approved expense, either from its funding account or off
// the books for cash paid outside any tracked account
func (h *ExpenseHandler) Pay(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		OffLedger bool `json:"off_ledger"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.service.MarkPaid(c.Request.Context(), actor, id, req.OffLedger)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, expense)
}
