package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himfirm/backend/internal/domain/shared"
)

func TestGormTransactionManager_Commit(t *testing.T) {
	db := setupTestDB(t)
	manager := NewGormTransactionManager(db)
	accounts := NewGormBankAccountRepository(db)

	acct := mustBankAccount(t, "1000")
	err := manager.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return accounts.Save(ctx, acct)
	})
	require.NoError(t, err)

	found, err := accounts.FindByID(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.AccountNumber, found.AccountNumber)
}

func TestGormTransactionManager_RollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	manager := NewGormTransactionManager(db)
	accounts := NewGormBankAccountRepository(db)

	acct := mustBankAccount(t, "1000")
	boom := errors.New("boom")

	err := manager.WithinTransaction(context.Background(), func(ctx context.Context) error {
		if err := accounts.Save(ctx, acct); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = accounts.FindByID(context.Background(), acct.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransactionManager_RepositoriesJoinTransaction(t *testing.T) {
	db := setupTestDB(t)
	manager := NewGormTransactionManager(db)
	accounts := NewGormBankAccountRepository(db)

	acct := mustBankAccount(t, "1000")
	err := manager.WithinTransaction(context.Background(), func(ctx context.Context) error {
		if err := accounts.Save(ctx, acct); err != nil {
			return err
		}
		// the uncommitted row is visible through the transactional context
		_, err := accounts.FindByID(ctx, acct.ID)
		return err
	})
	require.NoError(t, err)
}

func TestDbFromContextFallsBack(t *testing.T) {
	db := setupTestDB(t)
	assert.Equal(t, db, dbFromContext(context.Background(), db))
}
