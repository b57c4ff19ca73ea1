package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
)

// BankTransactionPostedEvent is raised when a ledger entry is appended
type BankTransactionPostedEvent struct {
	shared.BaseDomainEvent
	AccountID     uuid.UUID       `json:"account_id"`
	AccountNumber string          `json:"account_number"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	Type          TransactionType `json:"transaction_type"`
	Flow          TransactionFlow `json:"flow"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Reference     string          `json:"reference"`
}

// EventType returns the event type name
func (e *BankTransactionPostedEvent) EventType() string {
	return "BankTransactionPosted"
}

// NewBankTransactionPostedEvent creates a new BankTransactionPostedEvent
func NewBankTransactionPostedEvent(a *BankAccount, txn *BankTransaction) *BankTransactionPostedEvent {
	return &BankTransactionPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BankTransactionPosted", "BankAccount", a.ID),
		AccountID:       a.ID,
		AccountNumber:   a.AccountNumber,
		TransactionID:   txn.ID,
		Type:            txn.Type,
		Flow:            txn.Flow,
		Amount:          txn.Amount,
		BalanceAfter:    txn.BalanceAfter,
		Reference:       txn.Reference,
	}
}
