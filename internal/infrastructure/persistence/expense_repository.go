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

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new expense repository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

func (r *GormExpenseRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an expense by ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	var expense finance.Expense
	if err := r.conn(ctx).First(&expense, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &expense, nil
}

// FindByExpenseNumber finds an expense by its number
func (r *GormExpenseRepository) FindByExpenseNumber(ctx context.Context, expenseNumber string) (*finance.Expense, error) {
	var expense finance.Expense
	if err := r.conn(ctx).First(&expense, "expense_number = ?", expenseNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &expense, nil
}

// FindAll finds expenses with filtering
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter finance.ExpenseFilter) ([]finance.Expense, error) {
	var expenses []finance.Expense
	query := r.applyExpenseFilter(r.conn(ctx).Model(&finance.Expense{}), filter)
	query = applyFilter(query, filter.Filter, "expense_number", "description")
	if err := query.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	return r.conn(ctx).Save(expense).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormExpenseRepository) SaveWithLock(ctx context.Context, expense *finance.Expense) error {
	return saveWithLock(ctx, dbFromContext(ctx, r.db), expense, &expense.BaseAggregateRoot)
}

// Count counts expenses with optional filters
func (r *GormExpenseRepository) Count(ctx context.Context, filter finance.ExpenseFilter) (int64, error) {
	var count int64
	query := r.applyExpenseFilter(r.conn(ctx).Model(&finance.Expense{}), filter)
	query = applyFilterWithoutPagination(query, filter.Filter, "expense_number", "description")
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumPaidByCategory sums paid expenses per category over a date range
func (r *GormExpenseRepository) SumPaidByCategory(ctx context.Context, from, to time.Time) (map[finance.ExpenseCategory]decimal.Decimal, error) {
	type categoryTotal struct {
		Category finance.ExpenseCategory
		Total    decimal.Decimal
	}

	var rows []categoryTotal
	err := r.conn(ctx).
		Model(&finance.Expense{}).
		Select("category, COALESCE(SUM(total_amount), 0) AS total").
		Where("status = ? AND expense_date >= ? AND expense_date <= ?", finance.ExpenseStatusPaid, from, to).
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[finance.ExpenseCategory]decimal.Decimal, len(rows))
	for _, row := range rows {
		result[row.Category] = row.Total
	}
	return result, nil
}

// GenerateExpenseNumber issues the next expense number
func (r *GormExpenseRepository) GenerateExpenseNumber(ctx context.Context) (string, error) {
	return nextDocumentNumber(ctx, r.conn(ctx), &finance.Expense{}, "expense_number", "EXP")
}

func (r *GormExpenseRepository) applyExpenseFilter(query *gorm.DB, filter finance.ExpenseFilter) *gorm.DB {
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("expense_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("expense_date <= ?", *filter.ToDate)
	}
	return query
}

var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
