package finance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// BudgetLineItem is a value object within the Budget aggregate, stored as JSONB.
// It allocates a spending ceiling to one expense category.
type BudgetLineItem struct {
	ID              uuid.UUID       `json:"id"`
	Category        ExpenseCategory `json:"category"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
}

// NewBudgetLineItem creates a budget line for a category
func NewBudgetLineItem(category ExpenseCategory, allocated decimal.Decimal) (BudgetLineItem, error) {
	if !category.IsValid() {
		return BudgetLineItem{}, shared.NewDomainError("INVALID_CATEGORY", "Budget line category is not valid")
	}
	if allocated.LessThanOrEqual(decimal.Zero) {
		return BudgetLineItem{}, shared.NewDomainError("INVALID_AMOUNT", "Allocated amount must be positive")
	}
	return BudgetLineItem{
		ID:              uuid.New(),
		Category:        category,
		AllocatedAmount: allocated,
		SpentAmount:     decimal.Zero,
	}, nil
}

// Utilization returns spent/allocated as a percentage (0-100, may exceed 100)
func (l *BudgetLineItem) Utilization() decimal.Decimal {
	if l.AllocatedAmount.IsZero() {
		return decimal.Zero
	}
	return l.SpentAmount.Div(l.AllocatedAmount).Mul(decimal.NewFromInt(100)).Round(2)
}

// BudgetLineItems is a slice of BudgetLineItem that implements GORM Scanner/Valuer for JSONB storage
type BudgetLineItems []BudgetLineItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (b BudgetLineItems) Value() (driver.Value, error) {
	if b == nil {
		return "[]", nil
	}
	return json.Marshal(b)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (b *BudgetLineItems) Scan(value interface{}) error {
	if value == nil {
		*b = BudgetLineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan BudgetLineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*b = BudgetLineItems{}
		return nil
	}

	return json.Unmarshal(bytes, b)
}

// Budget represents a budget aggregate root.
// Spend is derived from paid expenses and actual project costs; it is never
// written directly, only recorded in response to those state changes.
type Budget struct {
	shared.AuditedAggregateRoot
	Name        string          `json:"name"`
	ProjectID   *uuid.UUID      `json:"project_id"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	SpentAmount decimal.Decimal `json:"spent_amount"`
	LineItems   BudgetLineItems `json:"line_items"`
	IsActive    bool            `json:"is_active"`
}

// NewBudget creates a new budget. The total must cover the line allocations.
func NewBudget(
	name string,
	projectID *uuid.UUID,
	periodStart, periodEnd time.Time,
	totalBudget valueobject.Money,
	lineItems BudgetLineItems,
	createdBy uuid.UUID,
) (*Budget, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Budget name cannot be empty")
	}
	if !periodEnd.After(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Budget period end must be after start")
	}
	if totalBudget.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total budget must be positive")
	}

	allocated := decimal.Zero
	seen := make(map[ExpenseCategory]bool, len(lineItems))
	for _, line := range lineItems {
		if seen[line.Category] {
			return nil, shared.NewDomainError("DUPLICATE_CATEGORY", fmt.Sprintf("Duplicate budget line for category %s", line.Category))
		}
		seen[line.Category] = true
		allocated = allocated.Add(line.AllocatedAmount)
	}
	if allocated.GreaterThan(totalBudget.Amount()) {
		return nil, shared.NewDomainError("OVER_ALLOCATED", "Line allocations exceed total budget")
	}

	return &Budget{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		Name:                 name,
		ProjectID:            projectID,
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		TotalBudget:          totalBudget.Amount(),
		SpentAmount:          decimal.Zero,
		LineItems:            lineItems,
		IsActive:             true,
	}, nil
}

// RecordSpend increments spend for a category in response to an expense or
// cost transitioning to paid/actual. Overspend is recorded, not blocked;
// the variance query surfaces it.
func (b *Budget) RecordSpend(category ExpenseCategory, amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Spend amount must be positive")
	}

	b.SpentAmount = b.SpentAmount.Add(amount.Amount())
	for i := range b.LineItems {
		if b.LineItems[i].Category == category {
			b.LineItems[i].SpentAmount = b.LineItems[i].SpentAmount.Add(amount.Amount())
			break
		}
	}
	b.Touch()
	b.IncrementVersion()

	if b.SpentAmount.GreaterThan(b.TotalBudget) {
		b.AddDomainEvent(NewBudgetExceededEvent(b))
	}

	return nil
}

// ReverseSpend decrements spend when a previously counted expense is reversed
func (b *Budget) ReverseSpend(category ExpenseCategory, amount valueobject.Money) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Spend amount must be positive")
	}

	b.SpentAmount = b.SpentAmount.Sub(amount.Amount())
	for i := range b.LineItems {
		if b.LineItems[i].Category == category {
			b.LineItems[i].SpentAmount = b.LineItems[i].SpentAmount.Sub(amount.Amount())
			break
		}
	}
	b.Touch()
	b.IncrementVersion()

	return nil
}

// RemainingBudget returns total budget minus spend
func (b *Budget) RemainingBudget() decimal.Decimal {
	return b.TotalBudget.Sub(b.SpentAmount)
}

// Variance returns the same figure as RemainingBudget; negative means overspent
func (b *Budget) Variance() decimal.Decimal {
	return b.RemainingBudget()
}

// GetRemainingBudgetMoney returns the remaining budget as Money
func (b *Budget) GetRemainingBudgetMoney() valueobject.Money {
	return valueobject.NewMoneyINR(b.RemainingBudget())
}

// Covers returns true if the date falls within the budget period
func (b *Budget) Covers(date time.Time) bool {
	return !date.Before(b.PeriodStart) && !date.After(b.PeriodEnd)
}

// Deactivate retires the budget
func (b *Budget) Deactivate() {
	b.IsActive = false
	b.Touch()
	b.IncrementVersion()
}
