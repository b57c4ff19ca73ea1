package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

// GormFinancialPeriodRepository implements finance.FinancialPeriodRepository using GORM
type GormFinancialPeriodRepository struct {
	db *gorm.DB
}

// NewGormFinancialPeriodRepository creates a new period repository
func NewGormFinancialPeriodRepository(db *gorm.DB) *GormFinancialPeriodRepository {
	return &GormFinancialPeriodRepository{db: db}
}

func (r *GormFinancialPeriodRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a period by ID
func (r *GormFinancialPeriodRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.FinancialPeriod, error) {
	var period finance.FinancialPeriod
	if err := r.conn(ctx).First(&period, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// FindAll finds periods with filtering
func (r *GormFinancialPeriodRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.FinancialPeriod, error) {
	var periods []finance.FinancialPeriod
	query := applyFilter(r.conn(ctx).Model(&finance.FinancialPeriod{}), filter, "name")
	if err := query.Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

// FindCovering finds the period containing the given date, if any
func (r *GormFinancialPeriodRepository) FindCovering(ctx context.Context, date time.Time) (*finance.FinancialPeriod, error) {
	var period finance.FinancialPeriod
	err := r.conn(ctx).
		Where("start_date <= ? AND end_date >= ?", date, date).
		Order("start_date desc").
		First(&period).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &period, nil
}

// Save creates or updates a period
func (r *GormFinancialPeriodRepository) Save(ctx context.Context, period *finance.FinancialPeriod) error {
	return r.conn(ctx).Save(period).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormFinancialPeriodRepository) SaveWithLock(ctx context.Context, period *finance.FinancialPeriod) error {
	return saveWithLock(ctx, dbFromContext(ctx, r.db), period, &period.BaseAggregateRoot)
}

var _ finance.FinancialPeriodRepository = (*GormFinancialPeriodRepository)(nil)
