package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

// GormBankAccountRepository implements finance.BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new bank account repository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

func (r *GormBankAccountRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a bank account by ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BankAccount, error) {
	var account finance.BankAccount
	if err := r.conn(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByAccountNumber finds a bank account by its number
func (r *GormBankAccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*finance.BankAccount, error) {
	var account finance.BankAccount
	if err := r.conn(ctx).First(&account, "account_number = ?", accountNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAll finds bank accounts with filtering
func (r *GormBankAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.BankAccount, error) {
	var accounts []finance.BankAccount
	query := applyFilter(r.conn(ctx).Model(&finance.BankAccount{}), filter, "account_name", "account_number", "bank_name")
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindPrimary finds the primary deposit account
func (r *GormBankAccountRepository) FindPrimary(ctx context.Context) (*finance.BankAccount, error) {
	var account finance.BankAccount
	if err := r.conn(ctx).First(&account, "is_primary = ?", true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Save creates or updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *finance.BankAccount) error {
	return r.conn(ctx).Save(account).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormBankAccountRepository) SaveWithLock(ctx context.Context, account *finance.BankAccount) error {
	return saveWithLock(ctx, dbFromContext(ctx, r.db), account, &account.BaseAggregateRoot)
}

var _ finance.BankAccountRepository = (*GormBankAccountRepository)(nil)
