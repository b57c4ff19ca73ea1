package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himfirm/backend/internal/domain/finance"
)

func mustBudget(t *testing.T, name string, projectID *uuid.UUID, start, end time.Time) *finance.Budget {
	t.Helper()
	b, err := finance.NewBudget(
		name, projectID, start, end,
		money(t, "500000"),
		finance.BudgetLineItems{
			{ID: uuid.New(), Category: finance.ExpenseCategoryMaterial, AllocatedAmount: dec("300000")},
			{ID: uuid.New(), Category: finance.ExpenseCategoryLabour, AllocatedAmount: dec("200000")},
		},
		uuid.New(),
	)
	require.NoError(t, err)
	return b
}

func TestGormBudgetRepository_FindActiveFor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBudgetRepository(db)
	ctx := context.Background()

	projectID := uuid.New()
	otherProject := uuid.New()
	start := time.Now().AddDate(0, -1, 0)
	end := time.Now().AddDate(0, 1, 0)

	companyWide := mustBudget(t, "Company FY27 Q2", nil, start, end)
	projectBudget := mustBudget(t, "Tower A", &projectID, start, end)
	otherBudget := mustBudget(t, "Tower B", &otherProject, start, end)
	expired := mustBudget(t, "Last quarter", &projectID, start.AddDate(0, -6, 0), end.AddDate(0, -6, 0))
	inactive := mustBudget(t, "Suspended", &projectID, start, end)
	inactive.IsActive = false

	for _, b := range []*finance.Budget{companyWide, projectBudget, otherBudget, expired, inactive} {
		require.NoError(t, repo.Save(ctx, b))
	}

	// a project expense charges the project budget and the company-wide one
	budgets, err := repo.FindActiveFor(ctx, &projectID, time.Now())
	require.NoError(t, err)
	require.Len(t, budgets, 2)

	names := []string{budgets[0].Name, budgets[1].Name}
	assert.Contains(t, names, "Company FY27 Q2")
	assert.Contains(t, names, "Tower A")

	// an unscoped expense only charges company-wide budgets
	budgets, err = repo.FindActiveFor(ctx, nil, time.Now())
	require.NoError(t, err)
	require.Len(t, budgets, 1)
	assert.Equal(t, "Company FY27 Q2", budgets[0].Name)
}

func TestGormBudgetRepository_SaveRoundTripsLineItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormBudgetRepository(db)
	ctx := context.Background()

	budget := mustBudget(t, "Tower A", nil, time.Now(), time.Now().AddDate(0, 3, 0))
	require.NoError(t, repo.Save(ctx, budget))

	found, err := repo.FindByID(ctx, budget.ID)
	require.NoError(t, err)
	require.Len(t, found.LineItems, 2)
	assert.True(t, found.TotalBudget.Equal(dec("500000")))
}
