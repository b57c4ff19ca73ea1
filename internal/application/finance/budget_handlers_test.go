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
	"go.uber.org/zap"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

func newMaterialBudget(t *testing.T, projectID *uuid.UUID, total int64) *finance.Budget {
	t.Helper()
	line, err := finance.NewBudgetLineItem(finance.ExpenseCategoryMaterial, decimal.NewFromInt(total))
	require.NoError(t, err)
	budget, err := finance.NewBudget("Tower B structure", projectID,
		time.Now().AddDate(0, -1, 0), time.Now().AddDate(0, 5, 0),
		valueobject.NewMoneyINR(decimal.NewFromInt(total)),
		finance.BudgetLineItems{line}, uuid.New())
	require.NoError(t, err)
	budget.ClearDomainEvents()
	return budget
}

func paidExpenseEvent(t *testing.T, projectID *uuid.UUID, amount int64) *finance.ExpensePaidEvent {
	t.Helper()
	expense, err := finance.NewExpense("EXP-202608-00031", finance.ExpenseCategoryMaterial,
		"Ready-mix concrete", valueobject.NewMoneyINR(decimal.NewFromInt(amount)),
		valueobject.NewMoneyINR(decimal.Zero), time.Now(), projectID, nil, nil, uuid.New())
	require.NoError(t, err)
	return finance.NewExpensePaidEvent(expense)
}

func TestExpensePaidHandler(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("records spend against covering budgets", func(t *testing.T) {
		budgetRepo := new(MockBudgetRepository)
		publisher := &recordingPublisher{}
		handler := NewExpensePaidHandler(budgetRepo, publisher, logger)

		projectID := uuid.New()
		budget := newMaterialBudget(t, &projectID, 500000)
		event := paidExpenseEvent(t, &projectID, 120000)

		budgetRepo.On("FindActiveFor", mock.Anything, &projectID, event.ExpenseDate).
			Return([]finance.Budget{*budget}, nil)
		budgetRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*finance.Budget")).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))

		budgetRepo.AssertCalled(t, "SaveWithLock", mock.Anything, mock.MatchedBy(func(b *finance.Budget) bool {
			return b.SpentAmount.Equal(decimal.NewFromInt(120000)) &&
				b.LineItems[0].SpentAmount.Equal(decimal.NewFromInt(120000))
		}))
	})

	t.Run("overrun surfaces a budget exceeded event", func(t *testing.T) {
		budgetRepo := new(MockBudgetRepository)
		publisher := &recordingPublisher{}
		handler := NewExpensePaidHandler(budgetRepo, publisher, logger)

		projectID := uuid.New()
		budget := newMaterialBudget(t, &projectID, 100000)
		event := paidExpenseEvent(t, &projectID, 150000)

		budgetRepo.On("FindActiveFor", mock.Anything, &projectID, event.ExpenseDate).
			Return([]finance.Budget{*budget}, nil)
		budgetRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*finance.Budget")).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))

		var sawExceeded bool
		for _, e := range publisher.events {
			if e.EventType() == "BudgetExceeded" {
				sawExceeded = true
			}
		}
		assert.True(t, sawExceeded)
	})

	t.Run("no covering budget is not an error", func(t *testing.T) {
		budgetRepo := new(MockBudgetRepository)
		handler := NewExpensePaidHandler(budgetRepo, &recordingPublisher{}, logger)

		event := paidExpenseEvent(t, nil, 5000)
		budgetRepo.On("FindActiveFor", mock.Anything, (*uuid.UUID)(nil), event.ExpenseDate).
			Return([]finance.Budget{}, nil)

		assert.NoError(t, handler.Handle(ctx, event))
		budgetRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("rejects foreign event types", func(t *testing.T) {
		handler := NewExpensePaidHandler(new(MockBudgetRepository), &recordingPublisher{}, logger)
		budget := newMaterialBudget(t, nil, 1000)

		err := handler.Handle(ctx, finance.NewBudgetExceededEvent(budget))
		assert.Error(t, err)
	})
}

func TestCostActualizedHandler(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("actualized cost becomes budget spend", func(t *testing.T) {
		budgetRepo := new(MockBudgetRepository)
		handler := NewCostActualizedHandler(budgetRepo, &recordingPublisher{}, logger)

		projectID := uuid.New()
		budget := newMaterialBudget(t, &projectID, 400000)

		cost, err := finance.NewProjectCost(projectID, "TOWER-B", finance.ExpenseCategoryMaterial,
			"Formwork material", valueobject.NewMoneyINR(decimal.NewFromInt(90000)), uuid.New())
		require.NoError(t, err)
		actualDate := time.Now()
		require.NoError(t, cost.RecordActual(valueobject.NewMoneyINR(decimal.NewFromInt(95000)), actualDate))

		var event *finance.ProjectCostActualizedEvent
		for _, e := range cost.GetDomainEvents() {
			if actualized, ok := e.(*finance.ProjectCostActualizedEvent); ok {
				event = actualized
			}
		}
		require.NotNil(t, event)

		budgetRepo.On("FindActiveFor", mock.Anything, mock.Anything, mock.Anything).
			Return([]finance.Budget{*budget}, nil)
		budgetRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*finance.Budget")).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))

		budgetRepo.AssertCalled(t, "SaveWithLock", mock.Anything, mock.MatchedBy(func(b *finance.Budget) bool {
			return b.SpentAmount.Equal(decimal.NewFromInt(95000))
		}))
	})

	t.Run("rejects foreign event types", func(t *testing.T) {
		handler := NewCostActualizedHandler(new(MockBudgetRepository), &recordingPublisher{}, logger)
		event := paidExpenseEvent(t, nil, 100)

		assert.Error(t, handler.Handle(ctx, event))
	})
}
