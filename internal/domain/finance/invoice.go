package finance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// InvoiceType represents the kind of invoice issued to a customer
type InvoiceType string

const (
	InvoiceTypeSale       InvoiceType = "sale"
	InvoiceTypeAdvance    InvoiceType = "advance"
	InvoiceTypeProgress   InvoiceType = "progress"
	InvoiceTypeFinal      InvoiceType = "final"
	InvoiceTypeRetention  InvoiceType = "retention"
	InvoiceTypeCreditNote InvoiceType = "credit_note"
	InvoiceTypeDebitNote  InvoiceType = "debit_note"
)

// IsValid checks if the invoice type is valid
func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceTypeSale, InvoiceTypeAdvance, InvoiceTypeProgress, InvoiceTypeFinal,
		InvoiceTypeRetention, InvoiceTypeCreditNote, InvoiceTypeDebitNote:
		return true
	}
	return false
}

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft           InvoiceStatus = "draft"
	InvoiceStatusPendingApproval InvoiceStatus = "pending_approval"
	InvoiceStatusApproved        InvoiceStatus = "approved"
	InvoiceStatusSent            InvoiceStatus = "sent"
	InvoiceStatusUnpaid          InvoiceStatus = "unpaid"
	InvoiceStatusPartial         InvoiceStatus = "partial"
	InvoiceStatusPaid            InvoiceStatus = "paid"
	InvoiceStatusCancelled       InvoiceStatus = "cancelled"
	InvoiceStatusVoid            InvoiceStatus = "void"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPendingApproval, InvoiceStatusApproved,
		InvoiceStatusSent, InvoiceStatusUnpaid, InvoiceStatusPartial,
		InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled || s == InvoiceStatusVoid
}

// CanApplyPayment returns true if payments can be applied in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	switch s {
	case InvoiceStatusSent, InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusApproved:
		return true
	}
	return false
}

// InvoiceLineItem is a value object within the Invoice aggregate, stored as JSONB
type InvoiceLineItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// NewInvoiceLineItem creates a line item, deriving amount from quantity and unit price
func NewInvoiceLineItem(description string, quantity, unitPrice decimal.Decimal) (InvoiceLineItem, error) {
	if description == "" {
		return InvoiceLineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return InvoiceLineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return InvoiceLineItem{}, shared.NewDomainError("INVALID_LINE_ITEM", "Line item unit price cannot be negative")
	}
	return InvoiceLineItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
	}, nil
}

// InvoiceLineItems is a slice of InvoiceLineItem that implements GORM Scanner/Valuer for JSONB storage
type InvoiceLineItems []InvoiceLineItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (l InvoiceLineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (l *InvoiceLineItems) Scan(value interface{}) error {
	if value == nil {
		*l = InvoiceLineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceLineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*l = InvoiceLineItems{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Total returns the sum of all line item amounts
func (l InvoiceLineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l {
		total = total.Add(item.Amount)
	}
	return total
}

// Invoice represents an invoice aggregate root.
// It tracks a claim for money owed by a customer and the payments applied to it.
type Invoice struct {
	shared.AuditedAggregateRoot
	InvoiceNumber       string           `json:"invoice_number"`
	Type                InvoiceType      `json:"type"`
	CustomerID          uuid.UUID        `json:"customer_id"`
	CustomerName        string           `json:"customer_name"`
	ProjectID           *uuid.UUID       `json:"project_id"`
	AllocationID        *uuid.UUID       `json:"allocation_id"`
	LineItems           InvoiceLineItems `json:"line_items"`
	Amount              decimal.Decimal  `json:"amount"`
	PaidAmount          decimal.Decimal  `json:"paid_amount"`
	RetentionPercentage decimal.Decimal  `json:"retention_percentage"`
	RetentionAmount     decimal.Decimal  `json:"retention_amount"`
	Status              InvoiceStatus    `json:"status"`
	InvoiceDate         time.Time        `json:"invoice_date"`
	DueDate             *time.Time       `json:"due_date"`
	ApprovedBy          *uuid.UUID       `json:"approved_by"`
	ApprovedDate        *time.Time       `json:"approved_date"`
	SentAt              *time.Time       `json:"sent_at"`
	PaidAt              *time.Time       `json:"paid_at"`
	CancelledAt         *time.Time       `json:"cancelled_at"`
	CancelReason        string           `json:"cancel_reason"`
	VoidedAt            *time.Time       `json:"voided_at"`
	VoidReason          string           `json:"void_reason"`
	Notes               string           `json:"notes"`
}

// NewInvoice creates a new invoice in draft status
func NewInvoice(
	invoiceNumber string,
	invoiceType InvoiceType,
	customerID uuid.UUID,
	customerName string,
	lineItems InvoiceLineItems,
	retentionPercentage decimal.Decimal,
	invoiceDate time.Time,
	dueDate *time.Time,
	createdBy uuid.UUID,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if !invoiceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", "Invoice type is not valid")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(lineItems) == 0 {
		return nil, shared.NewDomainError("INVALID_LINE_ITEMS", "Invoice must have at least one line item")
	}
	if retentionPercentage.IsNegative() || retentionPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_RETENTION", "Retention percentage must be between 0 and 100")
	}

	amount := lineItems.Total()
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}
	retentionAmount := amount.Mul(retentionPercentage).Div(decimal.NewFromInt(100)).Round(2)

	inv := &Invoice{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		InvoiceNumber:        invoiceNumber,
		Type:                 invoiceType,
		CustomerID:           customerID,
		CustomerName:         customerName,
		LineItems:            lineItems,
		Amount:               amount,
		PaidAmount:           decimal.Zero,
		RetentionPercentage:  retentionPercentage,
		RetentionAmount:      retentionAmount,
		Status:               InvoiceStatusDraft,
		InvoiceDate:          invoiceDate,
		DueDate:              dueDate,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// SubmitForApproval moves a draft invoice into the approval queue
func (inv *Invoice) SubmitForApproval() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit invoice in %s status for approval", inv.Status))
	}

	inv.Status = InvoiceStatusPendingApproval
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// Approve approves a pending invoice, recording the approver
func (inv *Invoice) Approve(approverID uuid.UUID) error {
	if inv.Status != InvoiceStatusPendingApproval {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve invoice in %s status", inv.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	inv.Status = InvoiceStatusApproved
	inv.ApprovedBy = &approverID
	inv.ApprovedDate = &now
	inv.Touch()
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceApprovedEvent(inv))

	return nil
}

// Send marks the invoice as sent to the customer.
// Draft invoices may be sent directly, skipping the approval queue.
func (inv *Invoice) Send() error {
	if inv.Status != InvoiceStatusApproved && inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}

	now := time.Now()
	inv.Status = InvoiceStatusSent
	inv.SentAt = &now
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// ApplyPayment increments the paid amount and recomputes the status.
// Called only from the payment processor inside its atomic unit.
func (inv *Invoice) ApplyPayment(amount valueobject.Money) error {
	if !inv.Status.CanApplyPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.recomputePaymentStatus()
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// ReversePayment decrements the paid amount and recomputes the status.
// The symmetric inverse of ApplyPayment, used when a payment bounces.
func (inv *Invoice) ReversePayment(amount valueobject.Money) error {
	if inv.Status.IsTerminal() && inv.Status != InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reverse payment on invoice in %s status", inv.Status))
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reversal amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.PaidAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", fmt.Sprintf("Reversal amount %s exceeds paid amount %s", amount.Amount(), inv.PaidAmount))
	}

	inv.PaidAmount = inv.PaidAmount.Sub(amount.Amount())
	inv.PaidAt = nil
	inv.recomputePaymentStatus()
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// recomputePaymentStatus derives the status from paid amount.
// paid when paid_amount >= amount, partial when anything is paid,
// unpaid when a previously paid invoice drops back to zero.
func (inv *Invoice) recomputePaymentStatus() {
	switch {
	case inv.PaidAmount.GreaterThanOrEqual(inv.Amount):
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	case inv.PaidAmount.GreaterThan(decimal.Zero):
		inv.Status = InvoiceStatusPartial
	default:
		inv.Status = InvoiceStatusUnpaid
	}
}

// Cancel cancels the invoice (only if no payments have been applied)
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.PaidAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel invoice with existing payments")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// Void voids the invoice from any non-terminal state, keeping the record for audit
func (inv *Invoice) Void(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void invoice in %s status", inv.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusVoid
	inv.VoidedAt = &now
	inv.VoidReason = reason
	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// BalanceDue returns the outstanding balance
func (inv *Invoice) BalanceDue() decimal.Decimal {
	return inv.Amount.Sub(inv.PaidAmount)
}

// GetAmountMoney returns the invoice amount as Money
func (inv *Invoice) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(inv.Amount)
}

// GetPaidAmountMoney returns the paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(inv.PaidAmount)
}

// GetBalanceDueMoney returns the outstanding balance as Money
func (inv *Invoice) GetBalanceDueMoney() valueobject.Money {
	return valueobject.NewMoneyINR(inv.BalanceDue())
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsOverdue is a query-time classification; overdue is never stored as a status
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	if inv.DueDate == nil {
		return false
	}
	switch inv.Status {
	case InvoiceStatusSent, InvoiceStatusUnpaid, InvoiceStatusPartial:
		return asOf.After(*inv.DueDate)
	}
	return false
}

// DaysOverdue returns the number of days past due as of the given time (0 if not overdue)
func (inv *Invoice) DaysOverdue(asOf time.Time) int {
	if !inv.IsOverdue(asOf) {
		return 0
	}
	return int(asOf.Sub(*inv.DueDate).Hours() / 24)
}
