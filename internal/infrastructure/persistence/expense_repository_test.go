package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

func mustExpense(t *testing.T, number string, category finance.ExpenseCategory, amount string) *finance.Expense {
	t.Helper()
	e, err := finance.NewExpense(
		number, category, "Site expense",
		money(t, amount), money(t, "0"),
		time.Now(), nil, nil, nil, uuid.New(),
	)
	require.NoError(t, err)
	return e
}

func markPaid(t *testing.T, e *finance.Expense) {
	t.Helper()
	require.NoError(t, e.Approve(uuid.New()))
	require.NoError(t, e.MarkPaid(true))
}

func TestGormExpenseRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormExpenseRepository(db)
	ctx := context.Background()

	expense := mustExpense(t, "EXP-202608-00001", finance.ExpenseCategoryMaterial, "15000")
	require.NoError(t, repo.Save(ctx, expense))

	found, err := repo.FindByExpenseNumber(ctx, "EXP-202608-00001")
	require.NoError(t, err)
	assert.Equal(t, expense.ID, found.ID)
	assert.Equal(t, finance.ExpenseStatusPending, found.Status)
}

func TestGormExpenseRepository_FindAllByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormExpenseRepository(db)
	ctx := context.Background()

	pending := mustExpense(t, "EXP-202608-00001", finance.ExpenseCategoryMaterial, "1000")
	paid := mustExpense(t, "EXP-202608-00002", finance.ExpenseCategoryLabour, "2000")
	markPaid(t, paid)

	require.NoError(t, repo.Save(ctx, pending))
	require.NoError(t, repo.Save(ctx, paid))

	status := finance.ExpenseStatusPaid
	expenses, err := repo.FindAll(ctx, finance.ExpenseFilter{Filter: shared.DefaultFilter(), Status: &status})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "EXP-202608-00002", expenses[0].ExpenseNumber)
}

func TestGormExpenseRepository_SumPaidByCategory(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormExpenseRepository(db)
	ctx := context.Background()

	materialOne := mustExpense(t, "EXP-202608-00001", finance.ExpenseCategoryMaterial, "1000")
	materialTwo := mustExpense(t, "EXP-202608-00002", finance.ExpenseCategoryMaterial, "500")
	labour := mustExpense(t, "EXP-202608-00003", finance.ExpenseCategoryLabour, "2000")
	unpaid := mustExpense(t, "EXP-202608-00004", finance.ExpenseCategoryMaterial, "99999")

	markPaid(t, materialOne)
	markPaid(t, materialTwo)
	markPaid(t, labour)

	for _, e := range []*finance.Expense{materialOne, materialTwo, labour, unpaid} {
		require.NoError(t, repo.Save(ctx, e))
	}

	from := time.Now().AddDate(0, 0, -1)
	to := time.Now().AddDate(0, 0, 1)

	totals, err := repo.SumPaidByCategory(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.True(t, totals[finance.ExpenseCategoryMaterial].Equal(dec("1500")))
	assert.True(t, totals[finance.ExpenseCategoryLabour].Equal(dec("2000")))
}

func TestGormExpenseRepository_SaveWithLockConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormExpenseRepository(db)
	ctx := context.Background()

	expense := mustExpense(t, "EXP-202608-00001", finance.ExpenseCategoryOffice, "750")
	require.NoError(t, repo.Save(ctx, expense))

	winner, err := repo.FindByID(ctx, expense.ID)
	require.NoError(t, err)
	loser, err := repo.FindByID(ctx, expense.ID)
	require.NoError(t, err)

	require.NoError(t, winner.Approve(uuid.New()))
	require.NoError(t, repo.SaveWithLock(ctx, winner))

	require.NoError(t, loser.Approve(uuid.New()))
	assert.ErrorIs(t, repo.SaveWithLock(ctx, loser), shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.ExpenseStatusApproved, found.Status)
	assert.Equal(t, 2, found.Version)

	// paying the approved expense is the next transition and must land
	require.NoError(t, winner.MarkPaid(true))
	require.NoError(t, repo.SaveWithLock(ctx, winner))

	found, err = repo.FindByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.ExpenseStatusPaid, found.Status)
}
