package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// PettyCashTransactionType represents the type of a petty cash movement
type PettyCashTransactionType string

const (
	PettyCashWithdrawal    PettyCashTransactionType = "withdrawal"
	PettyCashReimbursement PettyCashTransactionType = "reimbursement"
	PettyCashReplenishment PettyCashTransactionType = "replenishment"
)

// IsValid checks if the petty cash transaction type is valid
func (t PettyCashTransactionType) IsValid() bool {
	switch t {
	case PettyCashWithdrawal, PettyCashReimbursement, PettyCashReplenishment:
		return true
	}
	return false
}

// IsCredit returns true for movements that add cash to the float
func (t PettyCashTransactionType) IsCredit() bool {
	return t == PettyCashReimbursement || t == PettyCashReplenishment
}

// PettyCashTransaction is an append-only ledger entry for a petty cash account
type PettyCashTransaction struct {
	shared.BaseEntity
	AccountID       uuid.UUID                `json:"account_id"`
	Type            PettyCashTransactionType `json:"type"`
	Amount          decimal.Decimal          `json:"amount"`
	BalanceAfter    decimal.Decimal          `json:"balance_after"`
	TransactionDate time.Time                `json:"transaction_date"`
	Purpose         string                   `json:"purpose"`
	RequestedBy     uuid.UUID                `json:"requested_by"`
	ApprovedBy      *uuid.UUID               `json:"approved_by"`
}

// SignedAmount returns the amount signed relative to the float balance
func (t *PettyCashTransaction) SignedAmount() decimal.Decimal {
	if t.Type.IsCredit() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// PettyCashAccount represents a petty cash float aggregate root.
// The float is capped at a maximum limit and never allowed to go negative.
type PettyCashAccount struct {
	shared.AuditedAggregateRoot
	Name           string          `json:"name"`
	CustodianID    uuid.UUID       `json:"custodian_id"`
	CustodianName  string          `json:"custodian_name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	MaximumLimit   decimal.Decimal `json:"maximum_limit"`
	IsActive       bool            `json:"is_active"`
}

// NewPettyCashAccount creates a new petty cash account
func NewPettyCashAccount(
	name string,
	custodianID uuid.UUID,
	custodianName string,
	openingBalance, maximumLimit valueobject.Money,
	createdBy uuid.UUID,
) (*PettyCashAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if custodianID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTODIAN", "Custodian ID cannot be empty")
	}
	if maximumLimit.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_LIMIT", "Maximum limit must be positive")
	}
	if openingBalance.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening balance cannot be negative")
	}
	if openingBalance.Amount().GreaterThan(maximumLimit.Amount()) {
		return nil, shared.NewDomainError("EXCEEDS_LIMIT", "Opening balance exceeds maximum limit")
	}

	return &PettyCashAccount{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		Name:                 name,
		CustodianID:          custodianID,
		CustodianName:        custodianName,
		CurrentBalance:       openingBalance.Amount(),
		MaximumLimit:         maximumLimit.Amount(),
		IsActive:             true,
	}, nil
}

// Withdraw draws cash from the float. The float never goes negative.
func (a *PettyCashAccount) Withdraw(amount valueobject.Money, date time.Time, purpose string, requestedBy uuid.UUID) (*PettyCashTransaction, error) {
	if err := a.checkActive(); err != nil {
		return nil, err
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Withdrawal amount must be positive")
	}
	if amount.Amount().GreaterThan(a.CurrentBalance) {
		return nil, shared.ErrInsufficientFunds
	}
	if purpose == "" {
		return nil, shared.NewDomainError("INVALID_PURPOSE", "Withdrawal purpose is required")
	}

	return a.append(PettyCashWithdrawal, amount, date, purpose, requestedBy, nil), nil
}

// Replenish tops up the float. The balance after replenishment must not
// exceed the maximum limit.
func (a *PettyCashAccount) Replenish(amount valueobject.Money, date time.Time, requestedBy, approvedBy uuid.UUID) (*PettyCashTransaction, error) {
	if err := a.checkActive(); err != nil {
		return nil, err
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Replenishment amount must be positive")
	}
	if approvedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APPROVER", "Replenishment requires an approver")
	}
	if a.CurrentBalance.Add(amount.Amount()).GreaterThan(a.MaximumLimit) {
		return nil, shared.NewDomainError("EXCEEDS_LIMIT",
			fmt.Sprintf("Replenishment would raise balance above maximum limit %s", a.MaximumLimit))
	}

	return a.append(PettyCashReplenishment, amount, date, "Float replenishment", requestedBy, &approvedBy), nil
}

// Reimburse returns previously withdrawn cash to the float (e.g., unspent
// advance returned by an employee)
func (a *PettyCashAccount) Reimburse(amount valueobject.Money, date time.Time, purpose string, requestedBy uuid.UUID) (*PettyCashTransaction, error) {
	if err := a.checkActive(); err != nil {
		return nil, err
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Reimbursement amount must be positive")
	}
	if a.CurrentBalance.Add(amount.Amount()).GreaterThan(a.MaximumLimit) {
		return nil, shared.NewDomainError("EXCEEDS_LIMIT",
			fmt.Sprintf("Reimbursement would raise balance above maximum limit %s", a.MaximumLimit))
	}

	return a.append(PettyCashReimbursement, amount, date, purpose, requestedBy, nil), nil
}

func (a *PettyCashAccount) append(
	txType PettyCashTransactionType,
	amount valueobject.Money,
	date time.Time,
	purpose string,
	requestedBy uuid.UUID,
	approvedBy *uuid.UUID,
) *PettyCashTransaction {
	delta := amount.Amount()
	if !txType.IsCredit() {
		delta = delta.Neg()
	}
	newBalance := a.CurrentBalance.Add(delta)

	txn := &PettyCashTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		AccountID:       a.ID,
		Type:            txType,
		Amount:          amount.Amount(),
		BalanceAfter:    newBalance,
		TransactionDate: date,
		Purpose:         purpose,
		RequestedBy:     requestedBy,
		ApprovedBy:      approvedBy,
	}

	a.CurrentBalance = newBalance
	a.Touch()
	a.IncrementVersion()

	return txn
}

func (a *PettyCashAccount) checkActive() error {
	if !a.IsActive {
		return shared.NewDomainError("INACTIVE_ACCOUNT", "Petty cash account is inactive")
	}
	return nil
}

// ChangeCustodian hands the float to a new custodian
func (a *PettyCashAccount) ChangeCustodian(custodianID uuid.UUID, custodianName string) error {
	if custodianID == uuid.Nil {
		return shared.NewDomainError("INVALID_CUSTODIAN", "Custodian ID cannot be empty")
	}

	a.CustodianID = custodianID
	a.CustodianName = custodianName
	a.Touch()
	a.IncrementVersion()

	return nil
}

// GetCurrentBalanceMoney returns the current balance as Money
func (a *PettyCashAccount) GetCurrentBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyINR(a.CurrentBalance)
}

// HeadroomMoney returns how much the float can still be topped up
func (a *PettyCashAccount) HeadroomMoney() valueobject.Money {
	return valueobject.NewMoneyINR(a.MaximumLimit.Sub(a.CurrentBalance))
}
