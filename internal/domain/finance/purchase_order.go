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

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft           PurchaseOrderStatus = "draft"
	PurchaseOrderStatusPendingApproval PurchaseOrderStatus = "pending_approval"
	PurchaseOrderStatusApproved        PurchaseOrderStatus = "approved"
	PurchaseOrderStatusSent            PurchaseOrderStatus = "sent"
	PurchaseOrderStatusPartial         PurchaseOrderStatus = "partial"
	PurchaseOrderStatusReceived        PurchaseOrderStatus = "received"
	PurchaseOrderStatusCancelled       PurchaseOrderStatus = "cancelled"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusPendingApproval, PurchaseOrderStatusApproved,
		PurchaseOrderStatusSent, PurchaseOrderStatusPartial, PurchaseOrderStatusReceived,
		PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the purchase order is in a terminal state
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusReceived || s == PurchaseOrderStatusCancelled
}

// CanReceive returns true if goods can be received against this status
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == PurchaseOrderStatusApproved || s == PurchaseOrderStatusSent || s == PurchaseOrderStatusPartial
}

// PurchaseOrderItem is a value object within the PurchaseOrder aggregate, stored as JSONB
type PurchaseOrderItem struct {
	ID               uuid.UUID       `json:"id"`
	Description      string          `json:"description"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	Unit             string          `json:"unit"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	Amount           decimal.Decimal `json:"amount"`
}

// NewPurchaseOrderItem creates a line item, deriving amount from quantity and unit price
func NewPurchaseOrderItem(description string, quantity decimal.Decimal, unit string, unitPrice decimal.Decimal) (PurchaseOrderItem, error) {
	if description == "" {
		return PurchaseOrderItem{}, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return PurchaseOrderItem{}, shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return PurchaseOrderItem{}, shared.NewDomainError("INVALID_ITEM", "Item unit price cannot be negative")
	}
	return PurchaseOrderItem{
		ID:               uuid.New(),
		Description:      description,
		Quantity:         quantity,
		ReceivedQuantity: decimal.Zero,
		Unit:             unit,
		UnitPrice:        unitPrice,
		Amount:           quantity.Mul(unitPrice),
	}, nil
}

// IsFullyReceived returns true when the received quantity reaches the ordered quantity
func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.ReceivedQuantity.GreaterThanOrEqual(i.Quantity)
}

// PurchaseOrderItems is a slice of PurchaseOrderItem that implements GORM Scanner/Valuer for JSONB storage
type PurchaseOrderItems []PurchaseOrderItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PurchaseOrderItems) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PurchaseOrderItems) Scan(value interface{}) error {
	if value == nil {
		*p = PurchaseOrderItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PurchaseOrderItems: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PurchaseOrderItems{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Total returns the sum of all item amounts
func (p PurchaseOrderItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p {
		total = total.Add(item.Amount)
	}
	return total
}

// PurchaseOrder represents a purchase order aggregate root.
// It tracks a commitment to buy from a vendor, per line item, until fully received.
type PurchaseOrder struct {
	shared.AuditedAggregateRoot
	OrderNumber  string              `json:"order_number"`
	VendorID     uuid.UUID           `json:"vendor_id"`
	VendorName   string              `json:"vendor_name"`
	ProjectID    *uuid.UUID          `json:"project_id"`
	Items        PurchaseOrderItems  `json:"items"`
	TotalAmount  decimal.Decimal     `json:"total_amount"`
	Status       PurchaseOrderStatus `json:"status"`
	OrderDate    time.Time           `json:"order_date"`
	ExpectedDate *time.Time          `json:"expected_date"`
	ApprovedBy   *uuid.UUID          `json:"approved_by"`
	ApprovedDate *time.Time          `json:"approved_date"`
	SentAt       *time.Time          `json:"sent_at"`
	CancelledAt  *time.Time          `json:"cancelled_at"`
	CancelReason string              `json:"cancel_reason"`
	Notes        string              `json:"notes"`
}

// NewPurchaseOrder creates a new purchase order in draft status
func NewPurchaseOrder(
	orderNumber string,
	vendorID uuid.UUID,
	vendorName string,
	projectID *uuid.UUID,
	items PurchaseOrderItems,
	orderDate time.Time,
	expectedDate *time.Time,
	createdBy uuid.UUID,
) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if vendorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor ID cannot be empty")
	}
	if vendorName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Purchase order must have at least one item")
	}

	total := items.Total()
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Purchase order total must be positive")
	}

	return &PurchaseOrder{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		OrderNumber:          orderNumber,
		VendorID:             vendorID,
		VendorName:           vendorName,
		ProjectID:            projectID,
		Items:                items,
		TotalAmount:          total,
		Status:               PurchaseOrderStatusDraft,
		OrderDate:            orderDate,
		ExpectedDate:         expectedDate,
	}, nil
}

// SubmitForApproval moves a draft order into the approval queue
func (po *PurchaseOrder) SubmitForApproval() error {
	if po.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit order in %s status for approval", po.Status))
	}

	po.Status = PurchaseOrderStatusPendingApproval
	po.Touch()
	po.IncrementVersion()

	return nil
}

// Approve approves a pending order, recording the approver
func (po *PurchaseOrder) Approve(approverID uuid.UUID) error {
	if po.Status != PurchaseOrderStatusPendingApproval {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve order in %s status", po.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	po.Status = PurchaseOrderStatusApproved
	po.ApprovedBy = &approverID
	po.ApprovedDate = &now
	po.Touch()
	po.IncrementVersion()

	return nil
}

// Send marks the order as sent to the vendor
func (po *PurchaseOrder) Send() error {
	if po.Status != PurchaseOrderStatusApproved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send order in %s status", po.Status))
	}

	now := time.Now()
	po.Status = PurchaseOrderStatusSent
	po.SentAt = &now
	po.Touch()
	po.IncrementVersion()

	return nil
}

// ReceiveItem records a goods receipt against one line item. Received
// quantity never exceeds the ordered quantity. The order becomes received
// when every item is fully received, partial otherwise.
func (po *PurchaseOrder) ReceiveItem(itemID uuid.UUID, quantity decimal.Decimal) error {
	if !po.Status.CanReceive() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive goods against order in %s status", po.Status))
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Received quantity must be positive")
	}

	found := false
	for i := range po.Items {
		if po.Items[i].ID != itemID {
			continue
		}
		found = true
		remaining := po.Items[i].Quantity.Sub(po.Items[i].ReceivedQuantity)
		if quantity.GreaterThan(remaining) {
			return shared.NewDomainError("EXCEEDS_ORDERED",
				fmt.Sprintf("Received quantity %s exceeds remaining quantity %s", quantity, remaining))
		}
		po.Items[i].ReceivedQuantity = po.Items[i].ReceivedQuantity.Add(quantity)
		break
	}
	if !found {
		return shared.NewDomainError("ITEM_NOT_FOUND", "Purchase order item not found")
	}

	po.recomputeReceiptStatus()
	po.Touch()
	po.IncrementVersion()

	return nil
}

func (po *PurchaseOrder) recomputeReceiptStatus() {
	allReceived := true
	for i := range po.Items {
		if !po.Items[i].IsFullyReceived() {
			allReceived = false
			break
		}
	}
	if allReceived {
		po.Status = PurchaseOrderStatusReceived
	} else {
		po.Status = PurchaseOrderStatusPartial
	}
}

// Cancel cancels the order before any goods have been received
func (po *PurchaseOrder) Cancel(reason string) error {
	if po.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", po.Status))
	}
	if po.Status == PurchaseOrderStatusPartial {
		return shared.NewDomainError("HAS_RECEIPTS", "Cannot cancel order with received goods")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	po.Status = PurchaseOrderStatusCancelled
	po.CancelledAt = &now
	po.CancelReason = reason
	po.Touch()
	po.IncrementVersion()

	return nil
}

// GetTotalAmountMoney returns the order total as Money
func (po *PurchaseOrder) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(po.TotalAmount)
}

// IsFullyReceived returns true when every item is fully received
func (po *PurchaseOrder) IsFullyReceived() bool {
	for i := range po.Items {
		if !po.Items[i].IsFullyReceived() {
			return false
		}
	}
	return true
}
