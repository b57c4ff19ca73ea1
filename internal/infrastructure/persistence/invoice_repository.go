package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

// GormInvoiceRepository implements finance.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new invoice repository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an invoice by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	var invoice finance.Invoice
	if err := r.conn(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByInvoiceNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*finance.Invoice, error) {
	var invoice finance.Invoice
	if err := r.conn(ctx).First(&invoice, "invoice_number = ?", invoiceNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll finds invoices with filtering
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	var invoices []finance.Invoice
	query := r.applyInvoiceFilter(r.conn(ctx).Model(&finance.Invoice{}), filter)
	query = applyFilter(query, filter.Filter, "invoice_number", "customer_name")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOverdue finds invoices past due as of the given date. Overdue is
// computed from the due date at query time, never read from a status.
func (r *GormInvoiceRepository) FindOverdue(ctx context.Context, asOf time.Time, filter finance.InvoiceFilter) ([]finance.Invoice, error) {
	var invoices []finance.Invoice
	query := r.applyInvoiceFilter(r.conn(ctx).Model(&finance.Invoice{}), filter).
		Where("due_date IS NOT NULL AND due_date < ?", asOf).
		Where("status IN ?", outstandingInvoiceStatuses())
	query = applyFilter(query, filter.Filter, "invoice_number", "customer_name")
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	return r.conn(ctx).Save(invoice).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	return saveWithLock(ctx, dbFromContext(ctx, r.db), invoice, &invoice.BaseAggregateRoot)
}

// Count counts invoices with optional filters
func (r *GormInvoiceRepository) Count(ctx context.Context, filter finance.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyInvoiceFilter(r.conn(ctx).Model(&finance.Invoice{}), filter)
	query = applyFilterWithoutPagination(query, filter.Filter, "invoice_number", "customer_name")
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumOutstanding calculates the total balance due over non-terminal invoices
func (r *GormInvoiceRepository) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.conn(ctx).
		Model(&finance.Invoice{}).
		Select("COALESCE(SUM(amount - paid_amount), 0)").
		Where("status IN ?", outstandingInvoiceStatuses()).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ExistsByInvoiceNumber checks if an invoice number is taken
func (r *GormInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&finance.Invoice{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateInvoiceNumber issues the next invoice number
func (r *GormInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.conn(ctx), &finance.Invoice{}, "invoice_number", "INV")
}

func (r *GormInvoiceRepository) applyInvoiceFilter(query *gorm.DB, filter finance.InvoiceFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("invoice_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("invoice_date <= ?", *filter.ToDate)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}
	return query
}

// outstandingInvoiceStatuses are the statuses that still carry a balance due
func outstandingInvoiceStatuses() []finance.InvoiceStatus {
	return []finance.InvoiceStatus{
		finance.InvoiceStatusSent,
		finance.InvoiceStatusUnpaid,
		finance.InvoiceStatusPartial,
	}
}

var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
