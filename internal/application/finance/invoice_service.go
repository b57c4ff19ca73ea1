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

// InvoiceService provides application-level invoice operations
type InvoiceService struct {
	invoiceRepo    finance.InvoiceRepository
	paymentRepo    finance.PaymentRepository
	periods        periodGuard
	eventPublisher shared.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo finance.InvoiceRepository,
	paymentRepo finance.PaymentRepository,
	periodRepo finance.FinancialPeriodRepository,
	eventPublisher shared.EventPublisher,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		periods:        periodGuard{periodRepo: periodRepo},
		eventPublisher: eventPublisher,
	}
}

// InvoiceLineItemRequest represents one line of a new invoice
type InvoiceLineItemRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	Type                string                   `json:"type" binding:"required"`
	CustomerID          uuid.UUID                `json:"customer_id" binding:"required"`
	CustomerName        string                   `json:"customer_name" binding:"required"`
	ProjectID           *uuid.UUID               `json:"project_id"`
	AllocationID        *uuid.UUID               `json:"allocation_id"`
	LineItems           []InvoiceLineItemRequest `json:"line_items" binding:"required,min=1"`
	RetentionPercentage decimal.Decimal          `json:"retention_percentage"`
	InvoiceDate         time.Time                `json:"invoice_date" binding:"required"`
	DueDate             *time.Time               `json:"due_date"`
	Notes               string                   `json:"notes"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                  uuid.UUID                 `json:"id"`
	InvoiceNumber       string                    `json:"invoice_number"`
	Type                string                    `json:"type"`
	CustomerID          uuid.UUID                 `json:"customer_id"`
	CustomerName        string                    `json:"customer_name"`
	ProjectID           *uuid.UUID                `json:"project_id,omitempty"`
	AllocationID        *uuid.UUID                `json:"allocation_id,omitempty"`
	LineItems           []finance.InvoiceLineItem `json:"line_items"`
	Amount              decimal.Decimal           `json:"amount"`
	PaidAmount          decimal.Decimal           `json:"paid_amount"`
	BalanceDue          decimal.Decimal           `json:"balance_due"`
	RetentionPercentage decimal.Decimal           `json:"retention_percentage"`
	RetentionAmount     decimal.Decimal           `json:"retention_amount"`
	Status              string                    `json:"status"`
	InvoiceDate         time.Time                 `json:"invoice_date"`
	DueDate             *time.Time                `json:"due_date,omitempty"`
	IsOverdue           bool                      `json:"is_overdue"`
	DaysOverdue         int                       `json:"days_overdue"`
	ApprovedBy          *uuid.UUID                `json:"approved_by,omitempty"`
	ApprovedDate        *time.Time                `json:"approved_date,omitempty"`
	SentAt              *time.Time                `json:"sent_at,omitempty"`
	PaidAt              *time.Time                `json:"paid_at,omitempty"`
	Notes               string                    `json:"notes,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
	UpdatedAt           time.Time                 `json:"updated_at"`
	Version             int                       `json:"version"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	ProjectID  *uuid.UUID `form:"project_id"`
	Type       string     `form:"type"`
	Status     string     `form:"status"`
	FromDate   *time.Time `form:"from_date"`
	ToDate     *time.Time `form:"to_date"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// Create creates a new invoice in draft status
func (s *InvoiceService) Create(ctx context.Context, actor identity.Actor, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if err := actor.Authorize(identity.CapInvoiceCreate); err != nil {
		return nil, err
	}
	if err := s.periods.ensureOpen(ctx, req.InvoiceDate); err != nil {
		return nil, err
	}

	lineItems := make(finance.InvoiceLineItems, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		item, err := finance.NewInvoiceLineItem(li.Description, li.Quantity, li.UnitPrice)
		if err != nil {
			return nil, err
		}
		lineItems = append(lineItems, item)
	}

	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := finance.NewInvoice(
		invoiceNumber,
		finance.InvoiceType(req.Type),
		req.CustomerID,
		req.CustomerName,
		lineItems,
		req.RetentionPercentage,
		req.InvoiceDate,
		req.DueDate,
		actor.UserID,
	)
	if err != nil {
		return nil, err
	}
	invoice.ProjectID = req.ProjectID
	invoice.AllocationID = req.AllocationID
	invoice.Notes = req.Notes

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, invoice)

	return toInvoiceResponse(invoice), nil
}

// GetByID gets an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(invoice), nil
}

// List lists invoices with filtering
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	domainFilter := s.toDomainFilter(filter)

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// ListOverdue lists invoices past due as of now
func (s *InvoiceService) ListOverdue(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindOverdue(ctx, time.Now(), s.toDomainFilter(filter))
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = *toInvoiceResponse(&invoices[i])
	}
	return responses, nil
}

// SubmitForApproval moves a draft invoice into the approval queue
func (s *InvoiceService) SubmitForApproval(ctx context.Context, actor identity.Actor, id uuid.UUID) (*InvoiceResponse, error) {
	if err := actor.Authorize(identity.CapInvoiceCreate); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(inv *finance.Invoice) error {
		return inv.SubmitForApproval()
	})
}

// Approve approves a pending invoice
func (s *InvoiceService) Approve(ctx context.Context, actor identity.Actor, id uuid.UUID) (*InvoiceResponse, error) {
	if err := actor.Authorize(identity.CapInvoiceApprove); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(inv *finance.Invoice) error {
		return inv.Approve(actor.UserID)
	})
}

// Send marks the invoice as sent to the customer
func (s *InvoiceService) Send(ctx context.Context, actor identity.Actor, id uuid.UUID) (*InvoiceResponse, error) {
	if err := actor.Authorize(identity.CapInvoiceSend); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(inv *finance.Invoice) error {
		return inv.Send()
	})
}

// Cancel cancels an invoice that has no payments
func (s *InvoiceService) Cancel(ctx context.Context, actor identity.Actor, id uuid.UUID, reason string) (*InvoiceResponse, error) {
	if err := actor.Authorize(identity.CapInvoiceVoid); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(inv *finance.Invoice) error {
		return inv.Cancel(reason)
	})
}

// Void voids an invoice from any non-terminal state
func (s *InvoiceService) Void(ctx context.Context, actor identity.Actor, id uuid.UUID, reason string) (*InvoiceResponse, error) {
	if err := actor.Authorize(identity.CapInvoiceVoid); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(inv *finance.Invoice) error {
		return inv.Void(reason)
	})
}

// OutstandingTotal returns the total balance due across open invoices
func (s *InvoiceService) OutstandingTotal(ctx context.Context) (decimal.Decimal, error) {
	return s.invoiceRepo.SumOutstanding(ctx)
}

// VerifyPaidAmount checks the payment invariant: the invoice's paid amount
// must equal the sum of its cleared payments
func (s *InvoiceService) VerifyPaidAmount(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return err
	}
	cleared, err := s.paymentRepo.SumClearedByInvoice(ctx, id)
	if err != nil {
		return err
	}
	if !cleared.Equal(invoice.PaidAmount) {
		return shared.NewDomainError("CONSISTENCY",
			"Invoice "+invoice.InvoiceNumber+" paid amount mismatch: stored "+invoice.PaidAmount.String()+", cleared payments "+cleared.String())
	}
	return nil
}

func (s *InvoiceService) mutate(ctx context.Context, id uuid.UUID, fn func(*finance.Invoice) error) (*InvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(invoice); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, invoice)

	return toInvoiceResponse(invoice), nil
}

func (s *InvoiceService) findInvoice(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return invoice, nil
}

func (s *InvoiceService) toDomainFilter(filter InvoiceListFilter) finance.InvoiceFilter {
	domainFilter := finance.InvoiceFilter{
		CustomerID: filter.CustomerID,
		ProjectID:  filter.ProjectID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Type != "" {
		invoiceType := finance.InvoiceType(filter.Type)
		domainFilter.Type = &invoiceType
	}
	if filter.Status != "" {
		status := finance.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}
	return domainFilter
}

func toInvoiceResponse(inv *finance.Invoice) *InvoiceResponse {
	now := time.Now()
	return &InvoiceResponse{
		ID:                  inv.ID,
		InvoiceNumber:       inv.InvoiceNumber,
		Type:                string(inv.Type),
		CustomerID:          inv.CustomerID,
		CustomerName:        inv.CustomerName,
		ProjectID:           inv.ProjectID,
		AllocationID:        inv.AllocationID,
		LineItems:           inv.LineItems,
		Amount:              inv.Amount,
		PaidAmount:          inv.PaidAmount,
		BalanceDue:          inv.BalanceDue(),
		RetentionPercentage: inv.RetentionPercentage,
		RetentionAmount:     inv.RetentionAmount,
		Status:              string(inv.Status),
		InvoiceDate:         inv.InvoiceDate,
		DueDate:             inv.DueDate,
		IsOverdue:           inv.IsOverdue(now),
		DaysOverdue:         inv.DaysOverdue(now),
		ApprovedBy:          inv.ApprovedBy,
		ApprovedDate:        inv.ApprovedDate,
		SentAt:              inv.SentAt,
		PaidAt:              inv.PaidAt,
		Notes:               inv.Notes,
		CreatedAt:           inv.CreatedAt,
		UpdatedAt:           inv.UpdatedAt,
		Version:             inv.Version,
	}
}
