package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/himfirm/backend/internal/domain/shared"
)

// PeriodStatus represents the status of a financial period
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "open"
	PeriodStatusClosed PeriodStatus = "closed"
)

// IsValid checks if the status is a valid PeriodStatus
func (s PeriodStatus) IsValid() bool {
	return s == PeriodStatusOpen || s == PeriodStatusClosed
}

// FinancialPeriod represents an accounting period. Once closed, no further
// postings dated within the period are accepted.
type FinancialPeriod struct {
	shared.AuditedAggregateRoot
	Name      string       `json:"name"`
	StartDate time.Time    `json:"start_date"`
	EndDate   time.Time    `json:"end_date"`
	Status    PeriodStatus `json:"status"`
	ClosedBy  *uuid.UUID   `json:"closed_by"`
	ClosedAt  *time.Time   `json:"closed_at"`
}

// NewFinancialPeriod creates a new open period
func NewFinancialPeriod(name string, startDate, endDate time.Time, createdBy uuid.UUID) (*FinancialPeriod, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Period name cannot be empty")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end must be after start")
	}

	return &FinancialPeriod{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		Name:                 name,
		StartDate:            startDate,
		EndDate:              endDate,
		Status:               PeriodStatusOpen,
	}, nil
}

// Close closes the period, recording who closed it
func (p *FinancialPeriod) Close(closedBy uuid.UUID) error {
	if p.Status != PeriodStatusOpen {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot close period in %s status", p.Status))
	}
	if closedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Closer ID cannot be empty")
	}

	now := time.Now()
	p.Status = PeriodStatusClosed
	p.ClosedBy = &closedBy
	p.ClosedAt = &now
	p.Touch()
	p.IncrementVersion()

	return nil
}

// Reopen reopens a closed period (admin correction path)
func (p *FinancialPeriod) Reopen() error {
	if p.Status != PeriodStatusClosed {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reopen period in %s status", p.Status))
	}

	p.Status = PeriodStatusOpen
	p.ClosedBy = nil
	p.ClosedAt = nil
	p.Touch()
	p.IncrementVersion()

	return nil
}

// Contains returns true if the date falls within the period
func (p *FinancialPeriod) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// IsClosed returns true if the period is closed
func (p *FinancialPeriod) IsClosed() bool {
	return p.Status == PeriodStatusClosed
}
