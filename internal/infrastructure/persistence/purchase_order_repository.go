package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

// GormPurchaseOrderRepository implements finance.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new purchase order repository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

func (r *GormPurchaseOrderRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a purchase order by ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.PurchaseOrder, error) {
	var order finance.PurchaseOrder
	if err := r.conn(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber finds a purchase order by its number
func (r *GormPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*finance.PurchaseOrder, error) {
	var order finance.PurchaseOrder
	if err := r.conn(ctx).First(&order, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds purchase orders with filtering
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter finance.PurchaseOrderFilter) ([]finance.PurchaseOrder, error) {
	var orders []finance.PurchaseOrder
	query := r.applyOrderFilter(r.conn(ctx).Model(&finance.PurchaseOrder{}), filter)
	query = applyFilter(query, filter.Filter, "order_number", "vendor_name")
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a purchase order
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *finance.PurchaseOrder) error {
	return r.conn(ctx).Save(order).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *finance.PurchaseOrder) error {
	return saveWithLock(ctx, dbFromContext(ctx, r.db), order, &order.BaseAggregateRoot)
}

// Count counts purchase orders with optional filters
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter finance.PurchaseOrderFilter) (int64, error) {
	var count int64
	query := r.applyOrderFilter(r.conn(ctx).Model(&finance.PurchaseOrder{}), filter)
	query = applyFilterWithoutPagination(query, filter.Filter, "order_number", "vendor_name")
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByOrderNumber checks if an order number is taken
func (r *GormPurchaseOrderRepository) ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&finance.PurchaseOrder{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateOrderNumber issues the next order number
func (r *GormPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.conn(ctx), &finance.PurchaseOrder{}, "order_number", "PO")
}

func (r *GormPurchaseOrderRepository) applyOrderFilter(query *gorm.DB, filter finance.PurchaseOrderFilter) *gorm.DB {
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("order_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("order_date <= ?", *filter.ToDate)
	}
	return query
}

var _ finance.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
