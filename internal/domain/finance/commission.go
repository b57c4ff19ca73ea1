package finance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// CommissionType represents how a commission is computed
type CommissionType string

const (
	CommissionTypePercentage CommissionType = "percentage"
	CommissionTypeFixed      CommissionType = "fixed"
	CommissionTypeTiered     CommissionType = "tiered"
)

// IsValid checks if the commission type is valid
func (t CommissionType) IsValid() bool {
	switch t {
	case CommissionTypePercentage, CommissionTypeFixed, CommissionTypeTiered:
		return true
	}
	return false
}

// CommissionTier is one breakpoint of a tiered schedule. The rate applies
// to the portion of the base amount up to UpTo; a nil UpTo means unbounded.
type CommissionTier struct {
	UpTo *decimal.Decimal `json:"up_to"`
	Rate decimal.Decimal  `json:"rate"`
}

// CommissionTiers is a slice of CommissionTier that implements GORM Scanner/Valuer for JSONB storage
type CommissionTiers []CommissionTier

// Value implements driver.Valuer interface for GORM to store as JSONB
func (t CommissionTiers) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (t *CommissionTiers) Scan(value interface{}) error {
	if value == nil {
		*t = CommissionTiers{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan CommissionTiers: unsupported type")
	}

	if len(bytes) == 0 {
		*t = CommissionTiers{}
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// validate checks the tier schedule is well formed: at least one tier,
// strictly increasing bounds, at most one unbounded tier and only as the last
func (t CommissionTiers) validate() error {
	if len(t) == 0 {
		return shared.NewDomainError("INVALID_TIERS", "Tiered schedule requires at least one tier")
	}
	for i, tier := range t {
		if tier.Rate.IsNegative() {
			return shared.NewDomainError("INVALID_TIERS", "Tier rate cannot be negative")
		}
		if tier.UpTo == nil {
			if i != len(t)-1 {
				return shared.NewDomainError("INVALID_TIERS", "Only the last tier may be unbounded")
			}
			continue
		}
		if tier.UpTo.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_TIERS", "Tier bound must be positive")
		}
		if i > 0 && t[i-1].UpTo != nil && tier.UpTo.LessThanOrEqual(*t[i-1].UpTo) {
			return shared.NewDomainError("INVALID_TIERS", "Tier bounds must be strictly increasing")
		}
	}
	return nil
}

// CommissionStructure is a reusable rule for computing a payout from a
// base sale amount
type CommissionStructure struct {
	shared.AuditedAggregateRoot
	Name         string          `json:"name"`
	Type         CommissionType  `json:"type"`
	Rate         decimal.Decimal `json:"rate"`
	Tiers        CommissionTiers `json:"tiers"`
	ApplicableTo string          `json:"applicable_to"`
	IsActive     bool            `json:"is_active"`
}

// NewCommissionStructure creates a commission structure. Tiered structures
// must carry an explicit schedule; there is no silent percentage fallback.
func NewCommissionStructure(
	name string,
	commissionType CommissionType,
	rate decimal.Decimal,
	tiers CommissionTiers,
	applicableTo string,
	createdBy uuid.UUID,
) (*CommissionStructure, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Structure name cannot be empty")
	}
	if !commissionType.IsValid() {
		return nil, shared.NewDomainError("INVALID_COMMISSION_TYPE", "Commission type is not valid")
	}
	switch commissionType {
	case CommissionTypeTiered:
		if err := tiers.validate(); err != nil {
			return nil, err
		}
	default:
		if rate.IsNegative() {
			return nil, shared.NewDomainError("INVALID_RATE", "Commission rate cannot be negative")
		}
		if len(tiers) > 0 {
			return nil, shared.NewDomainError("INVALID_TIERS", fmt.Sprintf("%s structures cannot carry a tier schedule", commissionType))
		}
	}

	return &CommissionStructure{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		Name:                 name,
		Type:                 commissionType,
		Rate:                 rate,
		Tiers:                tiers,
		ApplicableTo:         applicableTo,
		IsActive:             true,
	}, nil
}

// Compute derives the commission amount for a base amount.
// percentage: base * rate / 100; fixed: rate; tiered: marginal rate per slab.
func (cs *CommissionStructure) Compute(baseAmount valueobject.Money) (valueobject.Money, error) {
	if baseAmount.Amount().IsNegative() {
		return valueobject.Money{}, shared.NewDomainError("INVALID_AMOUNT", "Base amount cannot be negative")
	}

	switch cs.Type {
	case CommissionTypePercentage:
		return baseAmount.CalculatePercentage(cs.Rate).Round(2), nil
	case CommissionTypeFixed:
		return valueobject.NewMoneyINR(cs.Rate), nil
	case CommissionTypeTiered:
		return cs.computeTiered(baseAmount)
	}
	return valueobject.Money{}, shared.NewDomainError("INVALID_COMMISSION_TYPE", "Commission type is not valid")
}

func (cs *CommissionStructure) computeTiered(baseAmount valueobject.Money) (valueobject.Money, error) {
	if err := cs.Tiers.validate(); err != nil {
		return valueobject.Money{}, err
	}

	tiers := make(CommissionTiers, len(cs.Tiers))
	copy(tiers, cs.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		if tiers[i].UpTo == nil {
			return false
		}
		if tiers[j].UpTo == nil {
			return true
		}
		return tiers[i].UpTo.LessThan(*tiers[j].UpTo)
	})

	base := baseAmount.Amount()
	total := decimal.Zero
	lower := decimal.Zero
	for _, tier := range tiers {
		upper := base
		if tier.UpTo != nil && tier.UpTo.LessThan(base) {
			upper = *tier.UpTo
		}
		if upper.LessThanOrEqual(lower) {
			break
		}
		slab := upper.Sub(lower)
		total = total.Add(slab.Mul(tier.Rate).Div(decimal.NewFromInt(100)))
		lower = upper
		if lower.GreaterThanOrEqual(base) {
			break
		}
	}

	return valueobject.NewMoneyINR(total.Round(2)), nil
}

// Deactivate retires the structure for new commissions
func (cs *CommissionStructure) Deactivate() {
	cs.IsActive = false
	cs.Touch()
	cs.IncrementVersion()
}

// CommissionStatus represents the status of a commission payout
type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusApproved  CommissionStatus = "approved"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

// IsValid checks if the status is a valid CommissionStatus
func (s CommissionStatus) IsValid() bool {
	switch s {
	case CommissionStatusPending, CommissionStatusApproved, CommissionStatusPaid, CommissionStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if the commission is in a terminal state
func (s CommissionStatus) IsTerminal() bool {
	return s == CommissionStatusPaid || s == CommissionStatusCancelled
}

// Commission represents a commission payout aggregate root, derived from a
// structure and a base transaction (allocation sale)
type Commission struct {
	shared.AuditedAggregateRoot
	StructureID      uuid.UUID        `json:"structure_id"`
	AllocationID     *uuid.UUID       `json:"allocation_id"`
	BrokerName       string           `json:"broker_name"`
	BaseAmount       decimal.Decimal  `json:"base_amount"`
	CommissionAmount decimal.Decimal  `json:"commission_amount"`
	Status           CommissionStatus `json:"status"`
	ApprovedBy       *uuid.UUID       `json:"approved_by"`
	ApprovedDate     *time.Time       `json:"approved_date"`
	PaymentDate      *time.Time       `json:"payment_date"`
	CancelledAt      *time.Time       `json:"cancelled_at"`
	CancelReason     string           `json:"cancel_reason"`
	Notes            string           `json:"notes"`
}

// NewCommission derives a commission payout from a structure and base amount
func NewCommission(
	structure *CommissionStructure,
	allocationID *uuid.UUID,
	brokerName string,
	baseAmount valueobject.Money,
	createdBy uuid.UUID,
) (*Commission, error) {
	if structure == nil {
		return nil, shared.NewDomainError("INVALID_STRUCTURE", "Commission structure is required")
	}
	if !structure.IsActive {
		return nil, shared.NewDomainError("INACTIVE_STRUCTURE", "Commission structure is inactive")
	}
	if brokerName == "" {
		return nil, shared.NewDomainError("INVALID_BROKER", "Broker name cannot be empty")
	}
	if baseAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Base amount must be positive")
	}

	amount, err := structure.Compute(baseAmount)
	if err != nil {
		return nil, err
	}

	return &Commission{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		StructureID:          structure.ID,
		AllocationID:         allocationID,
		BrokerName:           brokerName,
		BaseAmount:           baseAmount.Amount(),
		CommissionAmount:     amount.Amount(),
		Status:               CommissionStatusPending,
	}, nil
}

// Approve approves a pending commission, recording the approver
func (c *Commission) Approve(approverID uuid.UUID) error {
	if c.Status != CommissionStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve commission in %s status", c.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	c.Status = CommissionStatusApproved
	c.ApprovedBy = &approverID
	c.ApprovedDate = &now
	c.Touch()
	c.IncrementVersion()

	return nil
}

// MarkPaid transitions an approved commission to paid, stamping the payment date
func (c *Commission) MarkPaid(paymentDate time.Time) error {
	if c.Status != CommissionStatusApproved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay commission in %s status", c.Status))
	}

	c.Status = CommissionStatusPaid
	c.PaymentDate = &paymentDate
	c.Touch()
	c.IncrementVersion()

	return nil
}

// Cancel cancels a commission that has not been paid
func (c *Commission) Cancel(reason string) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel commission in %s status", c.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	c.Status = CommissionStatusCancelled
	c.CancelledAt = &now
	c.CancelReason = reason
	c.Touch()
	c.IncrementVersion()

	return nil
}

// GetCommissionAmountMoney returns the derived commission amount as Money
func (c *Commission) GetCommissionAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(c.CommissionAmount)
}
