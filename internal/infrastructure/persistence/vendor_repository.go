package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

// GormVendorRepository implements finance.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new vendor repository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

func (r *GormVendorRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a vendor by ID
func (r *GormVendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Vendor, error) {
	var vendor finance.Vendor
	if err := r.conn(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// FindAll finds vendors with filtering
func (r *GormVendorRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Vendor, error) {
	var vendors []finance.Vendor
	query := applyFilter(r.conn(ctx).Model(&finance.Vendor{}), filter, "name", "contact_person", "gst_number")
	if err := query.Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *finance.Vendor) error {
	return r.conn(ctx).Save(vendor).Error
}

// Count counts vendors with optional filters
func (r *GormVendorRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := applyFilterWithoutPagination(r.conn(ctx).Model(&finance.Vendor{}), filter, "name", "contact_person", "gst_number")
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ finance.VendorRepository = (*GormVendorRepository)(nil)
