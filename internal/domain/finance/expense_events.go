package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
)

// ExpensePaidEvent is raised when an expense is paid. The budget tracker
// listens for this to record the spend against the matching budget.
type ExpensePaidEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID       `json:"expense_id"`
	ExpenseNumber string          `json:"expense_number"`
	Category      ExpenseCategory `json:"category"`
	ProjectID     *uuid.UUID      `json:"project_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ExpenseDate   time.Time       `json:"expense_date"`
	OffLedger     bool            `json:"off_ledger"`
}

// EventType returns the event type name
func (e *ExpensePaidEvent) EventType() string {
	return "ExpensePaid"
}

// NewExpensePaidEvent creates a new ExpensePaidEvent
func NewExpensePaidEvent(exp *Expense) *ExpensePaidEvent {
	return &ExpensePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpensePaid", "Expense", exp.ID),
		ExpenseID:       exp.ID,
		ExpenseNumber:   exp.ExpenseNumber,
		Category:        exp.Category,
		ProjectID:       exp.ProjectID,
		TotalAmount:     exp.TotalAmount,
		ExpenseDate:     exp.ExpenseDate,
		OffLedger:       exp.OffLedger,
	}
}

// BudgetExceededEvent is raised when recorded spend passes the total budget
type BudgetExceededEvent struct {
	shared.BaseDomainEvent
	BudgetID    uuid.UUID       `json:"budget_id"`
	BudgetName  string          `json:"budget_name"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	SpentAmount decimal.Decimal `json:"spent_amount"`
}

// EventType returns the event type name
func (e *BudgetExceededEvent) EventType() string {
	return "BudgetExceeded"
}

// NewBudgetExceededEvent creates a new BudgetExceededEvent
func NewBudgetExceededEvent(b *Budget) *BudgetExceededEvent {
	return &BudgetExceededEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BudgetExceeded", "Budget", b.ID),
		BudgetID:        b.ID,
		BudgetName:      b.Name,
		TotalBudget:     b.TotalBudget,
		SpentAmount:     b.SpentAmount,
	}
}

// ProjectCostActualizedEvent is raised when an estimated cost becomes actual.
// The budget tracker records the actual amount as spend.
type ProjectCostActualizedEvent struct {
	shared.BaseDomainEvent
	CostID       uuid.UUID       `json:"cost_id"`
	ProjectID    uuid.UUID       `json:"project_id"`
	Category     ExpenseCategory `json:"category"`
	ActualAmount decimal.Decimal `json:"actual_amount"`
	ActualDate   time.Time       `json:"actual_date"`
}

// EventType returns the event type name
func (e *ProjectCostActualizedEvent) EventType() string {
	return "ProjectCostActualized"
}

// NewProjectCostActualizedEvent creates a new ProjectCostActualizedEvent
func NewProjectCostActualizedEvent(pc *ProjectCost) *ProjectCostActualizedEvent {
	actualDate := time.Now()
	if pc.ActualDate != nil {
		actualDate = *pc.ActualDate
	}
	return &ProjectCostActualizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ProjectCostActualized", "ProjectCost", pc.ID),
		CostID:          pc.ID,
		ProjectID:       pc.ProjectID,
		Category:        pc.Category,
		ActualAmount:    pc.ActualAmount,
		ActualDate:      actualDate,
	}
}
