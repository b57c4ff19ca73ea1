package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
)

// TaxConfiguration holds a named tax rate valid over a date range.
// Overlapping configurations are resolved by the most recent effective date.
type TaxConfiguration struct {
	shared.AuditedAggregateRoot
	Name          string          `json:"name"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to"`
	IsActive      bool            `json:"is_active"`
}

// NewTaxConfiguration creates a tax configuration
func NewTaxConfiguration(name string, rate decimal.Decimal, effectiveFrom time.Time, effectiveTo *time.Time, createdBy uuid.UUID) (*TaxConfiguration, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tax name cannot be empty")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_RATE", "Tax rate must be between 0 and 100")
	}
	if effectiveTo != nil && !effectiveTo.After(effectiveFrom) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Effective-to must be after effective-from")
	}

	return &TaxConfiguration{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		Name:                 name,
		Rate:                 rate,
		EffectiveFrom:        effectiveFrom,
		EffectiveTo:          effectiveTo,
		IsActive:             true,
	}, nil
}

// EffectiveOn returns true if the configuration is in force on the given date
func (t *TaxConfiguration) EffectiveOn(date time.Time) bool {
	if !t.IsActive {
		return false
	}
	if date.Before(t.EffectiveFrom) {
		return false
	}
	if t.EffectiveTo != nil && date.After(*t.EffectiveTo) {
		return false
	}
	return true
}

// TaxFor computes the tax amount for a base amount under this configuration
func (t *TaxConfiguration) TaxFor(base decimal.Decimal) decimal.Decimal {
	return base.Mul(t.Rate).Div(decimal.NewFromInt(100)).Round(2)
}

// Retire ends the configuration as of the given date
func (t *TaxConfiguration) Retire(asOf time.Time) error {
	if !asOf.After(t.EffectiveFrom) {
		return shared.NewDomainError("INVALID_PERIOD", "Retirement date must be after effective-from")
	}

	t.EffectiveTo = &asOf
	t.IsActive = false
	t.Touch()
	t.IncrementVersion()

	return nil
}
