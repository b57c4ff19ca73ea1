package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// CostStatus represents whether a project cost is still an estimate
type CostStatus string

const (
	CostStatusEstimated CostStatus = "estimated"
	CostStatusActual    CostStatus = "actual"
)

// IsValid checks if the cost status is valid
func (s CostStatus) IsValid() bool {
	return s == CostStatusEstimated || s == CostStatusActual
}

// ProjectCost tracks one cost element of a project, from estimate to actual.
// Actuals feed the budget tracker the same way paid expenses do.
type ProjectCost struct {
	shared.AuditedAggregateRoot
	ProjectID       uuid.UUID       `json:"project_id"`
	CostCenter      string          `json:"cost_center"`
	Category        ExpenseCategory `json:"category"`
	Description     string          `json:"description"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
	ActualAmount    decimal.Decimal `json:"actual_amount"`
	Status          CostStatus      `json:"status"`
	ActualDate      *time.Time      `json:"actual_date"`
}

// NewProjectCost creates an estimated cost entry
func NewProjectCost(
	projectID uuid.UUID,
	costCenter string,
	category ExpenseCategory,
	description string,
	estimated valueobject.Money,
	createdBy uuid.UUID,
) (*ProjectCost, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Cost category is not valid")
	}
	if estimated.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Estimated amount must be positive")
	}

	return &ProjectCost{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		ProjectID:            projectID,
		CostCenter:           costCenter,
		Category:             category,
		Description:          description,
		EstimatedAmount:      estimated.Amount(),
		ActualAmount:         decimal.Zero,
		Status:               CostStatusEstimated,
	}, nil
}

// RecordActual converts the estimate into an actual cost
func (pc *ProjectCost) RecordActual(actual valueobject.Money, actualDate time.Time) error {
	if pc.Status != CostStatusEstimated {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record actual for cost in %s status", pc.Status))
	}
	if actual.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Actual amount must be positive")
	}

	pc.ActualAmount = actual.Amount()
	pc.Status = CostStatusActual
	pc.ActualDate = &actualDate
	pc.Touch()
	pc.IncrementVersion()

	pc.AddDomainEvent(NewProjectCostActualizedEvent(pc))

	return nil
}

// CostVariance returns estimated minus actual; negative means overrun
func (pc *ProjectCost) CostVariance() decimal.Decimal {
	return pc.EstimatedAmount.Sub(pc.ActualAmount)
}
