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

// GormBudgetRepository implements finance.BudgetRepository using GORM
type GormBudgetRepository struct {
	db *gorm.DB
}

// NewGormBudgetRepository creates a new budget repository
func NewGormBudgetRepository(db *gorm.DB) *GormBudgetRepository {
	return &GormBudgetRepository{db: db}
}

func (r *GormBudgetRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a budget by ID
func (r *GormBudgetRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Budget, error) {
	var budget finance.Budget
	if err := r.conn(ctx).First(&budget, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &budget, nil
}

// FindAll finds budgets with filtering
func (r *GormBudgetRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.Budget, error) {
	var budgets []finance.Budget
	query := applyFilter(r.conn(ctx).Model(&finance.Budget{}), filter, "name")
	if err := query.Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// FindActiveFor finds active budgets whose period covers the date. Budgets
// scoped to a project match only that project; company-wide budgets
// (no project) always match.
func (r *GormBudgetRepository) FindActiveFor(ctx context.Context, projectID *uuid.UUID, date time.Time) ([]finance.Budget, error) {
	query := r.conn(ctx).
		Model(&finance.Budget{}).
		Where("is_active = ?", true).
		Where("period_start <= ? AND period_end >= ?", date, date)

	if projectID != nil {
		query = query.Where("project_id = ? OR project_id IS NULL", *projectID)
	} else {
		query = query.Where("project_id IS NULL")
	}

	var budgets []finance.Budget
	if err := query.Order("created_at asc").Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// Save creates or updates a budget
func (r *GormBudgetRepository) Save(ctx context.Context, budget *finance.Budget) error {
	return r.conn(ctx).Save(budget).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormBudgetRepository) SaveWithLock(ctx context.Context, budget *finance.Budget) error {
	return saveWithLock(ctx, dbFromContext(ctx, r.db), budget, &budget.BaseAggregateRoot)
}

var _ finance.BudgetRepository = (*GormBudgetRepository)(nil)
