package finance

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
)

// PaymentRecordedEvent is raised when a payment is recorded
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	ReceiptNumber string          `json:"receipt_number"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Payment", p.ID),
		PaymentID:       p.ID,
		ReceiptNumber:   p.ReceiptNumber,
		InvoiceID:       p.InvoiceID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Method:          p.Method,
		Status:          p.Status,
	}
}

// PaymentClearedEvent is raised when a pending payment clears
type PaymentClearedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	ReceiptNumber string          `json:"receipt_number"`
	Amount        decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *PaymentClearedEvent) EventType() string {
	return "PaymentCleared"
}

// NewPaymentClearedEvent creates a new PaymentClearedEvent
func NewPaymentClearedEvent(p *Payment) *PaymentClearedEvent {
	return &PaymentClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentCleared", "Payment", p.ID),
		PaymentID:       p.ID,
		ReceiptNumber:   p.ReceiptNumber,
		Amount:          p.Amount,
	}
}

// PaymentBouncedEvent is raised when a cleared payment bounces
type PaymentBouncedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	ReceiptNumber string          `json:"receipt_number"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	BounceReason  string          `json:"bounce_reason"`
}

// EventType returns the event type name
func (e *PaymentBouncedEvent) EventType() string {
	return "PaymentBounced"
}

// NewPaymentBouncedEvent creates a new PaymentBouncedEvent
func NewPaymentBouncedEvent(p *Payment) *PaymentBouncedEvent {
	return &PaymentBouncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentBounced", "Payment", p.ID),
		PaymentID:       p.ID,
		ReceiptNumber:   p.ReceiptNumber,
		InvoiceID:       p.InvoiceID,
		Amount:          p.Amount,
		BounceReason:    p.BounceReason,
	}
}
