package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/identity"
	"github.com/himfirm/backend/internal/domain/shared"
)

// PeriodService manages financial periods and tax configurations
type PeriodService struct {
	periodRepo finance.FinancialPeriodRepository
	taxRepo    finance.TaxConfigurationRepository
}

// NewPeriodService creates a new PeriodService
func NewPeriodService(
	periodRepo finance.FinancialPeriodRepository,
	taxRepo finance.TaxConfigurationRepository,
) *PeriodService {
	return &PeriodService{
		periodRepo: periodRepo,
		taxRepo:    taxRepo,
	}
}

// CreatePeriodRequest represents a request to open a financial period
type CreatePeriodRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

// PeriodResponse represents a financial period in API responses
type PeriodResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Status    string     `json:"status"`
	ClosedBy  *uuid.UUID `json:"closed_by,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// CreatePeriod opens a new financial period. Overlapping an existing period
// is rejected.
func (s *PeriodService) CreatePeriod(ctx context.Context, actor identity.Actor, req CreatePeriodRequest) (*PeriodResponse, error) {
	if err := actor.Authorize(identity.CapPeriodClose); err != nil {
		return nil, err
	}

	for _, date := range []time.Time{req.StartDate, req.EndDate} {
		existing, err := s.periodRepo.FindCovering(ctx, date)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, shared.NewDomainError("PERIOD_OVERLAP", "Period overlaps existing period "+existing.Name)
		}
	}

	period, err := finance.NewFinancialPeriod(req.Name, req.StartDate, req.EndDate, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.periodRepo.Save(ctx, period); err != nil {
		return nil, err
	}
	return toPeriodResponse(period), nil
}

// ClosePeriod closes a period. Once closed, postings dated inside it are
// rejected until the period is reopened.
func (s *PeriodService) ClosePeriod(ctx context.Context, actor identity.Actor, periodID uuid.UUID) (*PeriodResponse, error) {
	if err := actor.Authorize(identity.CapPeriodClose); err != nil {
		return nil, err
	}

	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if err := period.Close(actor.UserID); err != nil {
		return nil, err
	}
	if err := s.periodRepo.SaveWithLock(ctx, period); err != nil {
		return nil, err
	}
	return toPeriodResponse(period), nil
}

// ReopenPeriod reopens a closed period for corrections
func (s *PeriodService) ReopenPeriod(ctx context.Context, actor identity.Actor, periodID uuid.UUID) (*PeriodResponse, error) {
	if err := actor.Authorize(identity.CapPeriodClose); err != nil {
		return nil, err
	}

	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if err := period.Reopen(); err != nil {
		return nil, err
	}
	if err := s.periodRepo.SaveWithLock(ctx, period); err != nil {
		return nil, err
	}
	return toPeriodResponse(period), nil
}

// ListPeriods lists financial periods
func (s *PeriodService) ListPeriods(ctx context.Context, filter shared.Filter) ([]PeriodResponse, error) {
	periods, err := s.periodRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = *toPeriodResponse(&periods[i])
	}
	return responses, nil
}

// ===================== Tax Configuration Operations =====================

// CreateTaxRequest represents a request to set a tax rate
type CreateTaxRequest struct {
	Name          string          `json:"name" binding:"required"`
	Rate          decimal.Decimal `json:"rate" binding:"required"`
	EffectiveFrom time.Time       `json:"effective_from" binding:"required"`
	EffectiveTo   *time.Time      `json:"effective_to"`
}

// TaxConfigurationResponse represents a tax configuration in API responses
type TaxConfigurationResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SetTaxRate introduces a new tax rate. The previous configuration with the
// same name is retired as of the new rate's effective date.
func (s *PeriodService) SetTaxRate(ctx context.Context, actor identity.Actor, req CreateTaxRequest) (*TaxConfigurationResponse, error) {
	if err := actor.Authorize(identity.CapTaxManage); err != nil {
		return nil, err
	}

	previous, err := s.taxRepo.FindRateAsOf(ctx, req.Name, req.EffectiveFrom)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		if err := previous.Retire(req.EffectiveFrom); err != nil {
			return nil, err
		}
		if err := s.taxRepo.Save(ctx, previous); err != nil {
			return nil, err
		}
	}

	config, err := finance.NewTaxConfiguration(req.Name, req.Rate, req.EffectiveFrom, req.EffectiveTo, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.taxRepo.Save(ctx, config); err != nil {
		return nil, err
	}
	return toTaxConfigurationResponse(config), nil
}

// RateAsOf returns the tax configuration in force on the given date
func (s *PeriodService) RateAsOf(ctx context.Context, name string, date time.Time) (*TaxConfigurationResponse, error) {
	config, err := s.taxRepo.FindRateAsOf(ctx, name, date)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No tax configuration named "+name+" is in force on that date")
	}
	return toTaxConfigurationResponse(config), nil
}

// ListTaxConfigurations lists tax configurations
func (s *PeriodService) ListTaxConfigurations(ctx context.Context, filter shared.Filter) ([]TaxConfigurationResponse, error) {
	configs, err := s.taxRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]TaxConfigurationResponse, len(configs))
	for i := range configs {
		responses[i] = *toTaxConfigurationResponse(&configs[i])
	}
	return responses, nil
}

func (s *PeriodService) findPeriod(ctx context.Context, id uuid.UUID) (*finance.FinancialPeriod, error) {
	period, err := s.periodRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Financial period not found")
	}
	return period, nil
}

func toPeriodResponse(p *finance.FinancialPeriod) *PeriodResponse {
	return &PeriodResponse{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    string(p.Status),
		ClosedBy:  p.ClosedBy,
		ClosedAt:  p.ClosedAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Version:   p.Version,
	}
}

func toTaxConfigurationResponse(t *finance.TaxConfiguration) *TaxConfigurationResponse {
	return &TaxConfigurationResponse{
		ID:            t.ID,
		Name:          t.Name,
		Rate:          t.Rate,
		EffectiveFrom: t.EffectiveFrom,
		EffectiveTo:   t.EffectiveTo,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
