package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// PaymentMethod represents how a payment was received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodOnline       PaymentMethod = "online"
	PaymentMethodPDC          PaymentMethod = "pdc" // Post-dated cheque
	PaymentMethodDD           PaymentMethod = "dd"  // Demand draft
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodBankTransfer,
		PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodOnline,
		PaymentMethodPDC, PaymentMethodDD:
		return true
	}
	return false
}

// DefersClearing returns true for methods that start in pending status.
// A post-dated cheque is not cash in hand until it clears.
func (m PaymentMethod) DefersClearing() bool {
	return m == PaymentMethodPDC
}

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCleared   PaymentStatus = "cleared"
	PaymentStatusBounced   PaymentStatus = "bounced"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCleared, PaymentStatusBounced, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the payment is in a terminal state
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusBounced || s == PaymentStatusCancelled
}

// Payment represents a payment aggregate root.
// It records a receipt of money, optionally applied against one invoice
// and deposited into one bank account.
type Payment struct {
	shared.AuditedAggregateRoot
	ReceiptNumber    string          `json:"receipt_number"`
	InvoiceID        *uuid.UUID      `json:"invoice_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	Amount           decimal.Decimal `json:"amount"`
	Method           PaymentMethod   `json:"method"`
	Status           PaymentStatus   `json:"status"`
	DepositAccountID *uuid.UUID      `json:"deposit_account_id"`
	PaymentDate      time.Time       `json:"payment_date"`
	ChequeNumber     string          `json:"cheque_number"`
	ChequeDate       *time.Time      `json:"cheque_date"`
	BankName         string          `json:"bank_name"`
	ReferenceNumber  string          `json:"reference_number"`
	ReceivedBy       uuid.UUID       `json:"received_by"`
	ClearedAt        *time.Time      `json:"cleared_at"`
	BouncedAt        *time.Time      `json:"bounced_at"`
	BounceReason     string          `json:"bounce_reason"`
	CancelledAt      *time.Time      `json:"cancelled_at"`
	CancelReason     string          `json:"cancel_reason"`
	Notes            string          `json:"notes"`
}

// NewPayment creates a new payment.
// Payments start cleared unless the method defers clearing (post-dated cheque).
func NewPayment(
	receiptNumber string,
	invoiceID *uuid.UUID,
	customerID uuid.UUID,
	customerName string,
	amount valueobject.Money,
	method PaymentMethod,
	depositAccountID *uuid.UUID,
	paymentDate time.Time,
	receivedBy uuid.UUID,
) (*Payment, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}
	if receivedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECEIVER", "Receiver ID cannot be empty")
	}

	status := PaymentStatusCleared
	var clearedAt *time.Time
	if method.DefersClearing() {
		status = PaymentStatusPending
	} else {
		now := time.Now()
		clearedAt = &now
	}

	p := &Payment{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(receivedBy),
		ReceiptNumber:        receiptNumber,
		InvoiceID:            invoiceID,
		CustomerID:           customerID,
		CustomerName:         customerName,
		Amount:               amount.Amount(),
		Method:               method,
		Status:               status,
		DepositAccountID:     depositAccountID,
		PaymentDate:          paymentDate,
		ReceivedBy:           receivedBy,
		ClearedAt:            clearedAt,
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))

	return p, nil
}

// MarkCleared transitions a pending payment to cleared.
// Only pending payments (post-dated cheques awaiting clearance) can clear.
func (p *Payment) MarkCleared() error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot clear payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusCleared
	p.ClearedAt = &now
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentClearedEvent(p))

	return nil
}

// MarkBounced transitions a cleared payment to bounced.
// The deposit is compensated by an offsetting ledger entry, never deleted.
func (p *Payment) MarkBounced(reason string) error {
	if p.Status != PaymentStatusCleared {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot bounce payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusBounced
	p.BouncedAt = &now
	p.BounceReason = reason
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentBouncedEvent(p))

	return nil
}

// Cancel cancels a payment that never cleared
func (p *Payment) Cancel(reason string) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel payment in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusCancelled
	p.CancelledAt = &now
	p.CancelReason = reason
	p.Touch()
	p.IncrementVersion()

	return nil
}

// SetChequeDetails records cheque metadata for cheque-based methods
func (p *Payment) SetChequeDetails(chequeNumber string, chequeDate time.Time, bankName string) error {
	if p.Method != PaymentMethodCheque && p.Method != PaymentMethodPDC {
		return shared.NewDomainError("INVALID_METHOD", "Cheque details only apply to cheque payments")
	}
	if chequeNumber == "" {
		return shared.NewDomainError("INVALID_CHEQUE", "Cheque number cannot be empty")
	}

	p.ChequeNumber = chequeNumber
	p.ChequeDate = &chequeDate
	p.BankName = bankName
	p.Touch()
	p.IncrementVersion()

	return nil
}

// BounceReference returns the ledger reference for the compensating withdrawal
func (p *Payment) BounceReference() string {
	return "BOUNCED-" + p.ReceiptNumber
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(p.Amount)
}

// IsCleared returns true if the payment has cleared
func (p *Payment) IsCleared() bool {
	return p.Status == PaymentStatusCleared
}
