package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

// GormProjectCostRepository implements finance.ProjectCostRepository using GORM
type GormProjectCostRepository struct {
	db *gorm.DB
}

// NewGormProjectCostRepository creates a new project cost repository
func NewGormProjectCostRepository(db *gorm.DB) *GormProjectCostRepository {
	return &GormProjectCostRepository{db: db}
}

func (r *GormProjectCostRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a project cost by ID
func (r *GormProjectCostRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.ProjectCost, error) {
	var cost finance.ProjectCost
	if err := r.conn(ctx).First(&cost, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cost, nil
}

// FindByProject finds costs for a project
func (r *GormProjectCostRepository) FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]finance.ProjectCost, error) {
	var costs []finance.ProjectCost
	query := r.conn(ctx).
		Model(&finance.ProjectCost{}).
		Where("project_id = ?", projectID)
	query = applyFilter(query, filter, "description", "cost_center")
	if err := query.Find(&costs).Error; err != nil {
		return nil, err
	}
	return costs, nil
}

// Save creates or updates a project cost
func (r *GormProjectCostRepository) Save(ctx context.Context, cost *finance.ProjectCost) error {
	return r.conn(ctx).Save(cost).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormProjectCostRepository) SaveWithLock(ctx context.Context, cost *finance.ProjectCost) error {
	return saveWithLock(ctx, dbFromContext(ctx, r.db), cost, &cost.BaseAggregateRoot)
}

var _ finance.ProjectCostRepository = (*GormProjectCostRepository)(nil)
