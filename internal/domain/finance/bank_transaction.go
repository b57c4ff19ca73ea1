package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// TransactionType represents the type of a bank ledger entry
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypeFee        TransactionType = "fee"
	TransactionTypeInterest   TransactionType = "interest"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer,
		TransactionTypeFee, TransactionTypeInterest:
		return true
	}
	return false
}

// TransactionFlow represents the direction of money relative to the account
type TransactionFlow string

const (
	FlowCredit TransactionFlow = "credit" // Money into the account
	FlowDebit  TransactionFlow = "debit"  // Money out of the account
)

// flowForType derives the flow from the transaction type.
// Transfers carry no inherent direction; callers must supply it explicitly.
func flowForType(t TransactionType) (TransactionFlow, bool) {
	switch t {
	case TransactionTypeDeposit, TransactionTypeInterest:
		return FlowCredit, true
	case TransactionTypeWithdrawal, TransactionTypeFee:
		return FlowDebit, true
	}
	return "", false
}

// oppositeType returns the compensating type used for reversals
func oppositeType(t TransactionType) TransactionType {
	switch t {
	case TransactionTypeDeposit:
		return TransactionTypeWithdrawal
	case TransactionTypeWithdrawal:
		return TransactionTypeDeposit
	case TransactionTypeInterest:
		return TransactionTypeFee
	case TransactionTypeFee:
		return TransactionTypeInterest
	}
	return t
}

// BankTransaction is an append-only ledger entry for a bank account.
// Entries are never mutated or deleted once committed; reversals are
// new offsetting entries referencing the original.
type BankTransaction struct {
	shared.BaseEntity
	AccountID             uuid.UUID       `json:"account_id"`
	Type                  TransactionType `json:"type"`
	Flow                  TransactionFlow `json:"flow"`
	Amount                decimal.Decimal `json:"amount"`
	BalanceAfter          decimal.Decimal `json:"balance_after"`
	TransactionDate       time.Time       `json:"transaction_date"`
	Reference             string          `json:"reference"`
	Description           string          `json:"description"`
	PaymentID             *uuid.UUID      `json:"payment_id"`
	ExpenseID             *uuid.UUID      `json:"expense_id"`
	CounterpartyAccountID *uuid.UUID      `json:"counterparty_account_id"`
	ReversesID            *uuid.UUID      `json:"reverses_id"`
	CreatedBy             uuid.UUID       `json:"created_by"`
}

// SignedAmount returns the amount with its sign relative to the account balance
func (t *BankTransaction) SignedAmount() decimal.Decimal {
	if t.Flow == FlowDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// GetAmountMoney returns the transaction amount as Money
func (t *BankTransaction) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(t.Amount)
}

// IsReversal returns true if this entry offsets an earlier one
func (t *BankTransaction) IsReversal() bool {
	return t.ReversesID != nil
}
