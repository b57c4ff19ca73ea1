package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

// GormPettyCashRepository implements finance.PettyCashRepository using GORM
type GormPettyCashRepository struct {
	db *gorm.DB
}

// NewGormPettyCashRepository creates a new petty cash repository
func NewGormPettyCashRepository(db *gorm.DB) *GormPettyCashRepository {
	return &GormPettyCashRepository{db: db}
}

func (r *GormPettyCashRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a petty cash account by ID
func (r *GormPettyCashRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.PettyCashAccount, error) {
	var account finance.PettyCashAccount
	if err := r.conn(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAll finds petty cash accounts with filtering
func (r *GormPettyCashRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.PettyCashAccount, error) {
	var accounts []finance.PettyCashAccount
	query := applyFilter(r.conn(ctx).Model(&finance.PettyCashAccount{}), filter, "name", "custodian_name")
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save creates or updates a petty cash account
func (r *GormPettyCashRepository) Save(ctx context.Context, account *finance.PettyCashAccount) error {
	return r.conn(ctx).Save(account).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormPettyCashRepository) SaveWithLock(ctx context.Context, account *finance.PettyCashAccount) error {
	return saveWithLock(ctx, dbFromContext(ctx, r.db), account, &account.BaseAggregateRoot)
}

// AppendTransaction inserts a petty cash ledger entry
func (r *GormPettyCashRepository) AppendTransaction(ctx context.Context, txn *finance.PettyCashTransaction) error {
	return r.conn(ctx).Create(txn).Error
}

// FindTransactions finds ledger entries for an account, oldest first
func (r *GormPettyCashRepository) FindTransactions(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]finance.PettyCashTransaction, error) {
	var txns []finance.PettyCashTransaction
	query := r.conn(ctx).
		Model(&finance.PettyCashTransaction{}).
		Where("account_id = ?", accountID).
		Order("transaction_date asc, created_at asc")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	query = query.Offset((page - 1) * pageSize).Limit(pageSize)

	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

var _ finance.PettyCashRepository = (*GormPettyCashRepository)(nil)
