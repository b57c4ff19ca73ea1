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

// GormBankTransactionRepository implements the append-only bank ledger.
// Entries are inserted and read, never updated or deleted.
type GormBankTransactionRepository struct {
	db *gorm.DB
}

// NewGormBankTransactionRepository creates a new ledger repository
func NewGormBankTransactionRepository(db *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: db}
}

func (r *GormBankTransactionRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// Append inserts a new ledger entry
func (r *GormBankTransactionRepository) Append(ctx context.Context, txn *finance.BankTransaction) error {
	return r.conn(ctx).Create(txn).Error
}

// FindByID finds a ledger entry by ID
func (r *GormBankTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BankTransaction, error) {
	var txn finance.BankTransaction
	if err := r.conn(ctx).First(&txn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// FindByAccount finds entries for an account, oldest first
func (r *GormBankTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID, filter finance.BankTransactionFilter) ([]finance.BankTransaction, error) {
	var txns []finance.BankTransaction
	query := r.applyLedgerFilter(r.conn(ctx).Model(&finance.BankTransaction{}), filter).
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

// FindByPayment finds entries caused by a payment
func (r *GormBankTransactionRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]finance.BankTransaction, error) {
	var txns []finance.BankTransaction
	err := r.conn(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at asc").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// BalanceAsOf computes the account balance from the opening balance plus
// all entries dated up to and including the given date
func (r *GormBankTransactionRepository) BalanceAsOf(ctx context.Context, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	var opening decimal.Decimal
	err := r.conn(ctx).
		Model(&finance.BankAccount{}).
		Select("opening_balance").
		Where("id = ?", accountID).
		Scan(&opening).Error
	if err != nil {
		return decimal.Zero, err
	}

	var movement decimal.Decimal
	err = r.conn(ctx).
		Model(&finance.BankTransaction{}).
		Select("COALESCE(SUM(CASE WHEN flow = ? THEN amount ELSE -amount END), 0)", finance.FlowCredit).
		Where("account_id = ? AND transaction_date <= ?", accountID, asOf).
		Scan(&movement).Error
	if err != nil {
		return decimal.Zero, err
	}
	return opening.Add(movement), nil
}

// Count counts entries with optional filters
func (r *GormBankTransactionRepository) Count(ctx context.Context, filter finance.BankTransactionFilter) (int64, error) {
	var count int64
	query := r.applyLedgerFilter(r.conn(ctx).Model(&finance.BankTransaction{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormBankTransactionRepository) applyLedgerFilter(query *gorm.DB, filter finance.BankTransactionFilter) *gorm.DB {
	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", *filter.ToDate)
	}
	return query
}

var _ finance.BankTransactionRepository = (*GormBankTransactionRepository)(nil)
