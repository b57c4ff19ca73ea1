package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/identity"
	"github.com/himfirm/backend/internal/domain/shared"
)

// PurchaseOrderService provides application-level purchase order and
// vendor operations
type PurchaseOrderService struct {
	orderRepo  finance.PurchaseOrderRepository
	vendorRepo finance.VendorRepository
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo finance.PurchaseOrderRepository,
	vendorRepo finance.VendorRepository,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo:  orderRepo,
		vendorRepo: vendorRepo,
	}
}

// ===================== Vendor Operations =====================

// CreateVendorRequest represents a request to register a vendor
type CreateVendorRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	GSTNumber     string `json:"gst_number"`
	Address       string `json:"address"`
}

// VendorResponse represents a vendor in API responses
type VendorResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	GSTNumber     string    `json:"gst_number,omitempty"`
	Address       string    `json:"address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateVendor registers a new vendor
func (s *PurchaseOrderService) CreateVendor(ctx context.Context, actor identity.Actor, req CreateVendorRequest) (*VendorResponse, error) {
	if err := actor.Authorize(identity.CapVendorManage); err != nil {
		return nil, err
	}

	vendor, err := finance.NewVendor(req.Name, req.ContactPerson, req.Phone, req.Email, req.GSTNumber, req.Address, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	return toVendorResponse(vendor), nil
}

// UpdateVendorContact updates a vendor's contact details
func (s *PurchaseOrderService) UpdateVendorContact(ctx context.Context, actor identity.Actor, vendorID uuid.UUID, req CreateVendorRequest) (*VendorResponse, error) {
	if err := actor.Authorize(identity.CapVendorManage); err != nil {
		return nil, err
	}

	vendor, err := s.findVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	vendor.UpdateContact(req.ContactPerson, req.Phone, req.Email, req.Address)
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	return toVendorResponse(vendor), nil
}

// DeactivateVendor marks a vendor inactive
func (s *PurchaseOrderService) DeactivateVendor(ctx context.Context, actor identity.Actor, vendorID uuid.UUID) (*VendorResponse, error) {
	if err := actor.Authorize(identity.CapVendorManage); err != nil {
		return nil, err
	}

	vendor, err := s.findVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	vendor.Deactivate()
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, err
	}
	return toVendorResponse(vendor), nil
}

// ListVendors lists vendors
func (s *PurchaseOrderService) ListVendors(ctx context.Context, filter shared.Filter) (*shared.Paginated[VendorResponse], error) {
	vendors, err := s.vendorRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.vendorRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]VendorResponse, len(vendors))
	for i := range vendors {
		responses[i] = *toVendorResponse(&vendors[i])
	}
	result := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ===================== Purchase Order Operations =====================

// PurchaseOrderItemRequest represents one line of a new purchase order
type PurchaseOrderItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	VendorID     uuid.UUID                  `json:"vendor_id" binding:"required"`
	ProjectID    *uuid.UUID                 `json:"project_id"`
	Items        []PurchaseOrderItemRequest `json:"items" binding:"required,min=1"`
	OrderDate    time.Time                  `json:"order_date" binding:"required"`
	ExpectedDate *time.Time                 `json:"expected_date"`
	Notes        string                     `json:"notes"`
}

// ReceiveItemRequest records a receipt of goods against one order item
type ReceiveItemRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	OrderNumber  string                      `json:"order_number"`
	VendorID     uuid.UUID                   `json:"vendor_id"`
	VendorName   string                      `json:"vendor_name"`
	ProjectID    *uuid.UUID                  `json:"project_id,omitempty"`
	Items        []finance.PurchaseOrderItem `json:"items"`
	TotalAmount  decimal.Decimal             `json:"total_amount"`
	Status       string                      `json:"status"`
	OrderDate    time.Time                   `json:"order_date"`
	ExpectedDate *time.Time                  `json:"expected_date,omitempty"`
	ApprovedBy   *uuid.UUID                  `json:"approved_by,omitempty"`
	ApprovedDate *time.Time                  `json:"approved_date,omitempty"`
	Notes        string                      `json:"notes,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	Version      int                         `json:"version"`
}

// PurchaseOrderListFilter defines filtering options for order list queries
type PurchaseOrderListFilter struct {
	Search    string     `form:"search"`
	VendorID  *uuid.UUID `form:"vendor_id"`
	ProjectID *uuid.UUID `form:"project_id"`
	Status    string     `form:"status"`
	FromDate  *time.Time `form:"from_date"`
	ToDate    *time.Time `form:"to_date"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// Create creates a new purchase order in draft status. The vendor must
// exist and be active.
func (s *PurchaseOrderService) Create(ctx context.Context, actor identity.Actor, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if err := actor.Authorize(identity.CapPurchaseOrderCreate); err != nil {
		return nil, err
	}

	vendor, err := s.findVendor(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	if !vendor.IsActive {
		return nil, shared.NewDomainError("INACTIVE_VENDOR", "Cannot order from an inactive vendor")
	}

	items := make(finance.PurchaseOrderItems, 0, len(req.Items))
	for _, it := range req.Items {
		item, err := finance.NewPurchaseOrderItem(it.Description, it.Quantity, it.Unit, it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	orderNumber, err := s.orderRepo.GenerateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := finance.NewPurchaseOrder(
		orderNumber,
		vendor.ID,
		vendor.Name,
		req.ProjectID,
		items,
		req.OrderDate,
		req.ExpectedDate,
		actor.UserID,
	)
	if err != nil {
		return nil, err
	}
	order.Notes = req.Notes

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(order), nil
}

// SubmitForApproval moves a draft order into the approval queue
func (s *PurchaseOrderService) SubmitForApproval(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	if err := actor.Authorize(identity.CapPurchaseOrderCreate); err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(po *finance.PurchaseOrder) error {
		return po.SubmitForApproval()
	})
}

// Approve approves a pending purchase order
func (s *PurchaseOrderService) Approve(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	if err := actor.Authorize(identity.CapPurchaseOrderApprove); err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(po *finance.PurchaseOrder) error {
		return po.Approve(actor.UserID)
	})
}

// Send marks the order as sent to the vendor
func (s *PurchaseOrderService) Send(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	if err := actor.Authorize(identity.CapPurchaseOrderCreate); err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(po *finance.PurchaseOrder) error {
		return po.Send()
	})
}

// ReceiveItems records receipt of goods against order items. Receiving more
// than the ordered quantity of any item rejects the whole receipt.
func (s *PurchaseOrderService) ReceiveItems(ctx context.Context, actor identity.Actor, orderID uuid.UUID, receipts []ReceiveItemRequest) (*PurchaseOrderResponse, error) {
	if err := actor.Authorize(identity.CapPurchaseOrderReceive); err != nil {
		return nil, err
	}
	if len(receipts) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one receipt line is required")
	}
	return s.mutate(ctx, orderID, func(po *finance.PurchaseOrder) error {
		for _, r := range receipts {
			if err := po.ReceiveItem(r.ItemID, r.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// Cancel cancels an order that has not received goods
func (s *PurchaseOrderService) Cancel(ctx context.Context, actor identity.Actor, orderID uuid.UUID, reason string) (*PurchaseOrderResponse, error) {
	if err := actor.Authorize(identity.CapPurchaseOrderCreate); err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(po *finance.PurchaseOrder) error {
		return po.Cancel(reason)
	})
}

// GetByID gets a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(order), nil
}

// List lists purchase orders with filtering
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) (*shared.Paginated[PurchaseOrderResponse], error) {
	domainFilter := finance.PurchaseOrderFilter{
		VendorID:  filter.VendorID,
		ProjectID: filter.ProjectID,
		FromDate:  filter.FromDate,
		ToDate:    filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := finance.PurchaseOrderStatus(filter.Status)
		domainFilter.Status = &status
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = *toPurchaseOrderResponse(&orders[i])
	}
	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

func (s *PurchaseOrderService) mutate(ctx context.Context, id uuid.UUID, fn func(*finance.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	order, err := s.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(order), nil
}

func (s *PurchaseOrderService) findOrder(ctx context.Context, id uuid.UUID) (*finance.PurchaseOrder, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Purchase order not found")
	}
	return order, nil
}

func (s *PurchaseOrderService) findVendor(ctx context.Context, id uuid.UUID) (*finance.Vendor, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Vendor not found")
	}
	return vendor, nil
}

func toVendorResponse(v *finance.Vendor) *VendorResponse {
	return &VendorResponse{
		ID:            v.ID,
		Name:          v.Name,
		ContactPerson: v.ContactPerson,
		Phone:         v.Phone,
		Email:         v.Email,
		GSTNumber:     v.GSTNumber,
		Address:       v.Address,
		IsActive:      v.IsActive,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func toPurchaseOrderResponse(po *finance.PurchaseOrder) *PurchaseOrderResponse {
	return &PurchaseOrderResponse{
		ID:           po.ID,
		OrderNumber:  po.OrderNumber,
		VendorID:     po.VendorID,
		VendorName:   po.VendorName,
		ProjectID:    po.ProjectID,
		Items:        po.Items,
		TotalAmount:  po.TotalAmount,
		Status:       string(po.Status),
		OrderDate:    po.OrderDate,
		ExpectedDate: po.ExpectedDate,
		ApprovedBy:   po.ApprovedBy,
		ApprovedDate: po.ApprovedDate,
		Notes:        po.Notes,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
		Version:      po.Version,
	}
}
