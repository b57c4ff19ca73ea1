package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// PostingCause carries optional back-references from a ledger entry to the
// payment or expense that caused it
type PostingCause struct {
	PaymentID *uuid.UUID
	ExpenseID *uuid.UUID
}

// BankAccount represents a bank account aggregate root.
// Its current balance is authoritative and must always equal the opening
// balance plus the signed sum of its ledger entries.
type BankAccount struct {
	shared.AuditedAggregateRoot
	AccountName    string          `json:"account_name"`
	AccountNumber  string          `json:"account_number"`
	BankName       string          `json:"bank_name"`
	Branch         string          `json:"branch"`
	IFSCCode       string          `json:"ifsc_code"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	IsPrimary      bool            `json:"is_primary"`
	AllowNegative  bool            `json:"allow_negative"`
}

// NewBankAccount creates a new bank account.
// Bank accounts allow negative balances by default (overdraft facilities);
// non-negative enforcement is opt-in.
func NewBankAccount(
	accountName, accountNumber, bankName, branch, ifscCode string,
	openingBalance valueobject.Money,
	createdBy uuid.UUID,
) (*BankAccount, error) {
	if accountName == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	if accountNumber == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NUMBER", "Account number cannot be empty")
	}
	if bankName == "" {
		return nil, shared.NewDomainError("INVALID_BANK_NAME", "Bank name cannot be empty")
	}

	return &BankAccount{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		AccountName:          accountName,
		AccountNumber:        accountNumber,
		BankName:             bankName,
		Branch:               branch,
		IFSCCode:             ifscCode,
		OpeningBalance:       openingBalance.Amount(),
		CurrentBalance:       openingBalance.Amount(),
		IsActive:             true,
		AllowNegative:        true,
	}, nil
}

// Post appends a ledger entry and updates the current balance in one unit.
// The returned transaction carries balance_after equal to the new account
// balance. Transfers must go through PostTransfer.
func (a *BankAccount) Post(
	txType TransactionType,
	amount valueobject.Money,
	date time.Time,
	reference, description string,
	cause PostingCause,
	createdBy uuid.UUID,
) (*BankTransaction, error) {
	flow, ok := flowForType(txType)
	if !ok {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", fmt.Sprintf("Cannot post %s entries directly", txType))
	}
	return a.post(txType, flow, amount, date, reference, description, cause, nil, nil, createdBy)
}

// PostTransfer appends a transfer leg. Outgoing legs debit this account,
// incoming legs credit it; the counterparty account posts the matching leg.
func (a *BankAccount) PostTransfer(
	amount valueobject.Money,
	outgoing bool,
	counterpartyID uuid.UUID,
	date time.Time,
	reference, description string,
	createdBy uuid.UUID,
) (*BankTransaction, error) {
	if counterpartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Transfer counterparty account is required")
	}
	flow := FlowCredit
	if outgoing {
		flow = FlowDebit
	}
	return a.post(TransactionTypeTransfer, flow, amount, date, reference, description, PostingCause{}, &counterpartyID, nil, createdBy)
}

// Reverse posts an offsetting entry of the opposite flow and equal amount,
// referencing the original. The original entry is never mutated.
func (a *BankAccount) Reverse(original *BankTransaction, reference string, createdBy uuid.UUID) (*BankTransaction, error) {
	if original == nil {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Original transaction is required")
	}
	if original.AccountID != a.ID {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Transaction does not belong to this account")
	}

	flow := FlowCredit
	if original.Flow == FlowCredit {
		flow = FlowDebit
	}
	originalID := original.ID
	cause := PostingCause{PaymentID: original.PaymentID, ExpenseID: original.ExpenseID}
	if reference == "" {
		reference = "REV-" + original.Reference
	}

	return a.post(oppositeType(original.Type), flow, valueobject.NewMoneyINR(original.Amount),
		time.Now(), reference, "Reversal of "+original.Reference, cause, original.CounterpartyAccountID, &originalID, createdBy)
}

func (a *BankAccount) post(
	txType TransactionType,
	flow TransactionFlow,
	amount valueobject.Money,
	date time.Time,
	reference, description string,
	cause PostingCause,
	counterpartyID *uuid.UUID,
	reversesID *uuid.UUID,
	createdBy uuid.UUID,
) (*BankTransaction, error) {
	if !a.IsActive {
		return nil, shared.NewDomainError("INACTIVE_ACCOUNT", "Cannot post to an inactive account")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}

	delta := amount.Amount()
	if flow == FlowDebit {
		delta = delta.Neg()
	}
	newBalance := a.CurrentBalance.Add(delta)
	if newBalance.IsNegative() && !a.AllowNegative {
		return nil, shared.ErrInsufficientFunds
	}

	txn := &BankTransaction{
		BaseEntity:            shared.NewBaseEntity(),
		AccountID:             a.ID,
		Type:                  txType,
		Flow:                  flow,
		Amount:                amount.Amount(),
		BalanceAfter:          newBalance,
		TransactionDate:       date,
		Reference:             reference,
		Description:           description,
		PaymentID:             cause.PaymentID,
		ExpenseID:             cause.ExpenseID,
		CounterpartyAccountID: counterpartyID,
		ReversesID:            reversesID,
		CreatedBy:             createdBy,
	}

	a.CurrentBalance = newBalance
	a.Touch()
	a.IncrementVersion()

	a.AddDomainEvent(NewBankTransactionPostedEvent(a, txn))

	return txn, nil
}

// VerifyBalance checks the fundamental ledger invariant: current balance
// equals opening balance plus the signed sum of all entries. A mismatch is
// a consistency failure that must abort the enclosing transaction.
func (a *BankAccount) VerifyBalance(entries []BankTransaction) error {
	computed := a.OpeningBalance
	for i := range entries {
		computed = computed.Add(entries[i].SignedAmount())
	}
	if !computed.Equal(a.CurrentBalance) {
		return shared.NewDomainError("CONSISTENCY",
			fmt.Sprintf("Account %s balance mismatch: stored %s, computed %s", a.AccountNumber, a.CurrentBalance, computed))
	}
	return nil
}

// Activate marks the account active
func (a *BankAccount) Activate() {
	a.IsActive = true
	a.Touch()
	a.IncrementVersion()
}

// Deactivate marks the account inactive; no further postings are accepted
func (a *BankAccount) Deactivate() {
	a.IsActive = false
	a.Touch()
	a.IncrementVersion()
}

// SetPrimary marks this as the default deposit account
func (a *BankAccount) SetPrimary(primary bool) {
	a.IsPrimary = primary
	a.Touch()
	a.IncrementVersion()
}

// GetCurrentBalanceMoney returns the current balance as Money
func (a *BankAccount) GetCurrentBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyINR(a.CurrentBalance)
}
