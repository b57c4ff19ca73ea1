package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

// GormCommissionRepository implements finance.CommissionRepository using GORM.
// It persists both commission structures and individual payouts.
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewGormCommissionRepository creates a new commission repository
func NewGormCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

func (r *GormCommissionRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindStructureByID finds a commission structure by ID
func (r *GormCommissionRepository) FindStructureByID(ctx context.Context, id uuid.UUID) (*finance.CommissionStructure, error) {
	var structure finance.CommissionStructure
	if err := r.conn(ctx).First(&structure, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &structure, nil
}

// FindAllStructures finds commission structures with filtering
func (r *GormCommissionRepository) FindAllStructures(ctx context.Context, filter shared.Filter) ([]finance.CommissionStructure, error) {
	var structures []finance.CommissionStructure
	query := applyFilter(r.conn(ctx).Model(&finance.CommissionStructure{}), filter, "name")
	if err := query.Find(&structures).Error; err != nil {
		return nil, err
	}
	return structures, nil
}

// SaveStructure creates or updates a commission structure
func (r *GormCommissionRepository) SaveStructure(ctx context.Context, structure *finance.CommissionStructure) error {
	return r.conn(ctx).Save(structure).Error
}

// FindByID finds a commission payout by ID
func (r *GormCommissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Commission, error) {
	var commission finance.Commission
	if err := r.conn(ctx).First(&commission, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &commission, nil
}

// FindAll finds commission payouts with filtering
func (r *GormCommissionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Commission, error) {
	var commissions []finance.Commission
	query := applyFilter(r.conn(ctx).Model(&finance.Commission{}), filter, "broker_name")
	if err := query.Find(&commissions).Error; err != nil {
		return nil, err
	}
	return commissions, nil
}

// Save creates or updates a commission payout
func (r *GormCommissionRepository) Save(ctx context.Context, commission *finance.Commission) error {
	return r.conn(ctx).Save(commission).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormCommissionRepository) SaveWithLock(ctx context.Context, commission *finance.Commission) error {
	return saveWithLock(ctx, dbFromContext(ctx, r.db), commission, &commission.BaseAggregateRoot)
}

var _ finance.CommissionRepository = (*GormCommissionRepository)(nil)
