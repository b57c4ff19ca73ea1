package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/identity"
	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

type pettyCashServiceFixture struct {
	service       *PettyCashService
	pettyCashRepo *MockPettyCashRepository
	accountRepo   *MockBankAccountRepository
	ledgerRepo    *MockBankTransactionRepository
	periodRepo    *MockFinancialPeriodRepository
}

func newPettyCashServiceFixture() *pettyCashServiceFixture {
	f := &pettyCashServiceFixture{
		pettyCashRepo: new(MockPettyCashRepository),
		accountRepo:   new(MockBankAccountRepository),
		ledgerRepo:    new(MockBankTransactionRepository),
		periodRepo:    new(MockFinancialPeriodRepository),
	}
	f.service = NewPettyCashService(f.pettyCashRepo, f.accountRepo, f.ledgerRepo, f.periodRepo, stubTxManager{})
	return f
}

func newSiteFloat(t *testing.T, balance, limit int64) *finance.PettyCashAccount {
	t.Helper()
	account, err := finance.NewPettyCashAccount("Site office cashFloat", uuid.New(), "Suresh Yadav",
		valueobject.NewMoneyINR(decimal.NewFromInt(balance)),
		valueobject.NewMoneyINR(decimal.NewFromInt(limit)), uuid.New())
	require.NoError(t, err)
	return account
}

func TestPettyCashServiceWithdraw(t *testing.T) {
	ctx := context.Background()
	actor := financeActor()

	t.Run("draws cash and appends a ledger entry", func(t *testing.T) {
		f := newPettyCashServiceFixture()
		cashFloat := newSiteFloat(t, 20000, 50000)

		f.periodRepo.On("FindCovering", mock.Anything, mock.Anything).Return(nil, nil)
		f.pettyCashRepo.On("FindByID", mock.Anything, cashFloat.ID).Return(cashFloat, nil)
		f.pettyCashRepo.On("SaveWithLock", mock.Anything, cashFloat).Return(nil)
		f.pettyCashRepo.On("AppendTransaction", mock.Anything, mock.AnythingOfType("*finance.PettyCashTransaction")).Return(nil)

		resp, err := f.service.Withdraw(ctx, actor, cashFloat.ID, PettyCashMovementRequest{
			Amount:          decimal.NewFromInt(3500),
			TransactionDate: time.Now(),
			Purpose:         "Courier and site consumables",
		})
		require.NoError(t, err)

		assert.True(t, resp.Amount.Equal(decimal.NewFromInt(3500)))
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(16500)))
		assert.True(t, cashFloat.CurrentBalance.Equal(decimal.NewFromInt(16500)))
	})

	t.Run("rejects a withdrawal beyond the balance", func(t *testing.T) {
		f := newPettyCashServiceFixture()
		cashFloat := newSiteFloat(t, 2000, 50000)

		f.periodRepo.On("FindCovering", mock.Anything, mock.Anything).Return(nil, nil)
		f.pettyCashRepo.On("FindByID", mock.Anything, cashFloat.ID).Return(cashFloat, nil)

		_, err := f.service.Withdraw(ctx, actor, cashFloat.ID, PettyCashMovementRequest{
			Amount:          decimal.NewFromInt(5000),
			TransactionDate: time.Now(),
			Purpose:         "Tools",
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
		f.pettyCashRepo.AssertNotCalled(t, "AppendTransaction", mock.Anything, mock.Anything)
	})

	t.Run("spend capability is required", func(t *testing.T) {
		f := newPettyCashServiceFixture()
		clerk := identity.Actor{UserID: uuid.New(), Name: "Site clerk", Role: identity.RoleEmployee}

		_, err := f.service.Withdraw(ctx, clerk, uuid.New(), PettyCashMovementRequest{
			Amount:          decimal.NewFromInt(100),
			TransactionDate: time.Now(),
			Purpose:         "Tea",
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestPettyCashServiceReplenish(t *testing.T) {
	ctx := context.Background()
	actor := financeActor()

	t.Run("funded replenishment posts the bank withdrawal in the same unit", func(t *testing.T) {
		f := newPettyCashServiceFixture()
		cashFloat := newSiteFloat(t, 5000, 50000)
		bank := newTestBankAccount(t, 200000)
		bankID := bank.ID

		f.periodRepo.On("FindCovering", mock.Anything, mock.Anything).Return(nil, nil)
		f.pettyCashRepo.On("FindByID", mock.Anything, cashFloat.ID).Return(cashFloat, nil)
		f.accountRepo.On("FindByID", mock.Anything, bankID).Return(bank, nil)
		f.accountRepo.On("SaveWithLock", mock.Anything, bank).Return(nil)
		f.ledgerRepo.On("Append", mock.Anything, mock.AnythingOfType("*finance.BankTransaction")).Return(nil)
		f.pettyCashRepo.On("SaveWithLock", mock.Anything, cashFloat).Return(nil)
		f.pettyCashRepo.On("AppendTransaction", mock.Anything, mock.AnythingOfType("*finance.PettyCashTransaction")).Return(nil)

		resp, err := f.service.Replenish(ctx, actor, cashFloat.ID, ReplenishRequest{
			Amount:           decimal.NewFromInt(30000),
			TransactionDate:  time.Now(),
			FundingAccountID: &bankID,
		})
		require.NoError(t, err)

		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(35000)))
		assert.True(t, bank.CurrentBalance.Equal(decimal.NewFromInt(170000)))

		f.ledgerRepo.AssertCalled(t, "Append", mock.Anything, mock.MatchedBy(func(txn *finance.BankTransaction) bool {
			return txn.Type == finance.TransactionTypeWithdrawal &&
				txn.Reference == "PETTY-Site office cashFloat" &&
				txn.Amount.Equal(decimal.NewFromInt(30000))
		}))
	})

	t.Run("rejects a top-up past the maximum limit", func(t *testing.T) {
		f := newPettyCashServiceFixture()
		cashFloat := newSiteFloat(t, 40000, 50000)

		f.periodRepo.On("FindCovering", mock.Anything, mock.Anything).Return(nil, nil)
		f.pettyCashRepo.On("FindByID", mock.Anything, cashFloat.ID).Return(cashFloat, nil)

		_, err := f.service.Replenish(ctx, actor, cashFloat.ID, ReplenishRequest{
			Amount:          decimal.NewFromInt(20000),
			TransactionDate: time.Now(),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EXCEEDS_LIMIT", domainErr.Code)
	})

	t.Run("replenish capability is restricted", func(t *testing.T) {
		f := newPettyCashServiceFixture()
		pm := identity.Actor{UserID: uuid.New(), Name: "Dinesh Kumar", Role: identity.RoleProjectManager}

		_, err := f.service.Replenish(ctx, pm, uuid.New(), ReplenishRequest{
			Amount:          decimal.NewFromInt(1000),
			TransactionDate: time.Now(),
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestPettyCashServiceChangeCustodian(t *testing.T) {
	ctx := context.Background()
	actor := financeActor()

	t.Run("hands the cashFloat to a new custodian", func(t *testing.T) {
		f := newPettyCashServiceFixture()
		cashFloat := newSiteFloat(t, 10000, 50000)
		newCustodian := uuid.New()

		f.pettyCashRepo.On("FindByID", mock.Anything, cashFloat.ID).Return(cashFloat, nil)
		f.pettyCashRepo.On("SaveWithLock", mock.Anything, cashFloat).Return(nil)

		resp, err := f.service.ChangeCustodian(ctx, actor, cashFloat.ID, newCustodian, "Anita Joshi")
		require.NoError(t, err)

		assert.Equal(t, newCustodian, resp.CustodianID)
		assert.Equal(t, "Anita Joshi", resp.CustodianName)
	})
}
