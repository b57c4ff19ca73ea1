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

// GormTaxConfigurationRepository implements finance.TaxConfigurationRepository using GORM
type GormTaxConfigurationRepository struct {
	db *gorm.DB
}

// NewGormTaxConfigurationRepository creates a new tax configuration repository
func NewGormTaxConfigurationRepository(db *gorm.DB) *GormTaxConfigurationRepository {
	return &GormTaxConfigurationRepository{db: db}
}

func (r *GormTaxConfigurationRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a tax configuration by ID
func (r *GormTaxConfigurationRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.TaxConfiguration, error) {
	var cfg finance.TaxConfiguration
	if err := r.conn(ctx).First(&cfg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// FindAll finds tax configurations with filtering
func (r *GormTaxConfigurationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.TaxConfiguration, error) {
	var configs []finance.TaxConfiguration
	query := applyFilter(r.conn(ctx).Model(&finance.TaxConfiguration{}), filter, "name")
	if err := query.Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// FindRateAsOf finds the configuration in force on the given date,
// preferring the most recent effective-from
func (r *GormTaxConfigurationRepository) FindRateAsOf(ctx context.Context, name string, date time.Time) (*finance.TaxConfiguration, error) {
	var cfg finance.TaxConfiguration
	err := r.conn(ctx).
		Where("name = ? AND effective_from <= ?", name, date).
		Where("effective_to IS NULL OR effective_to >= ?", date).
		Order("effective_from desc").
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

// Save creates or updates a tax configuration
func (r *GormTaxConfigurationRepository) Save(ctx context.Context, cfg *finance.TaxConfiguration) error {
	return r.conn(ctx).Save(cfg).Error
}

var _ finance.TaxConfigurationRepository = (*GormTaxConfigurationRepository)(nil)
