package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

func newTestBudget(t *testing.T) *Budget {
	t.Helper()
	material, err := NewBudgetLineItem(ExpenseCategoryMaterial, decimal.NewFromInt(600000))
	require.NoError(t, err)
	labour, err := NewBudgetLineItem(ExpenseCategoryLabour, decimal.NewFromInt(300000))
	require.NoError(t, err)
	b, err := NewBudget("Tower A Q3", nil, time.Now(), time.Now().Add(90*24*time.Hour),
		valueobject.NewMoneyINRFromFloat(1000000), BudgetLineItems{material, labour}, uuid.New())
	require.NoError(t, err)
	return b
}

func TestNewBudget(t *testing.T) {
	t.Run("rejects allocations above total", func(t *testing.T) {
		line, err := NewBudgetLineItem(ExpenseCategoryMaterial, decimal.NewFromInt(2000))
		require.NoError(t, err)
		_, err = NewBudget("Small", nil, time.Now(), time.Now().Add(time.Hour),
			valueobject.NewMoneyINRFromFloat(1000), BudgetLineItems{line}, uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects duplicate category lines", func(t *testing.T) {
		a, _ := NewBudgetLineItem(ExpenseCategoryMaterial, decimal.NewFromInt(100))
		b, _ := NewBudgetLineItem(ExpenseCategoryMaterial, decimal.NewFromInt(200))
		_, err := NewBudget("Dup", nil, time.Now(), time.Now().Add(time.Hour),
			valueobject.NewMoneyINRFromFloat(1000), BudgetLineItems{a, b}, uuid.New())
		assert.Error(t, err)
	})
}

func TestBudgetRecordSpend(t *testing.T) {
	t.Run("spend flows into total and the matching line", func(t *testing.T) {
		b := newTestBudget(t)
		require.NoError(t, b.RecordSpend(ExpenseCategoryMaterial, valueobject.NewMoneyINRFromFloat(150000)))

		assert.True(t, b.SpentAmount.Equal(decimal.NewFromInt(150000)))
		assert.True(t, b.RemainingBudget().Equal(decimal.NewFromInt(850000)))
		assert.True(t, b.LineItems[0].SpentAmount.Equal(decimal.NewFromInt(150000)))
		assert.True(t, b.LineItems[0].Utilization().Equal(decimal.NewFromInt(25)))
		assert.True(t, b.LineItems[1].SpentAmount.IsZero())
	})

	t.Run("spend on an unbudgeted category still counts in the total", func(t *testing.T) {
		b := newTestBudget(t)
		require.NoError(t, b.RecordSpend(ExpenseCategoryTravel, valueobject.NewMoneyINRFromFloat(5000)))
		assert.True(t, b.SpentAmount.Equal(decimal.NewFromInt(5000)))
		assert.True(t, b.LineItems[0].SpentAmount.IsZero())
	})

	t.Run("overspend is recorded and raises an event", func(t *testing.T) {
		b := newTestBudget(t)
		require.NoError(t, b.RecordSpend(ExpenseCategoryMaterial, valueobject.NewMoneyINRFromFloat(1200000)))
		assert.True(t, b.RemainingBudget().IsNegative())

		found := false
		for _, e := range b.GetDomainEvents() {
			if e.EventType() == "BudgetExceeded" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		b := newTestBudget(t)
		assert.Error(t, b.RecordSpend(ExpenseCategoryMaterial, valueobject.ZeroINR()))
	})
}

func TestBudgetReverseSpend(t *testing.T) {
	b := newTestBudget(t)
	require.NoError(t, b.RecordSpend(ExpenseCategoryLabour, valueobject.NewMoneyINRFromFloat(50000)))
	require.NoError(t, b.ReverseSpend(ExpenseCategoryLabour, valueobject.NewMoneyINRFromFloat(50000)))

	assert.True(t, b.SpentAmount.IsZero())
	assert.True(t, b.LineItems[1].SpentAmount.IsZero())
	assert.True(t, b.RemainingBudget().Equal(b.TotalBudget))
}

func TestBudgetCovers(t *testing.T) {
	b := newTestBudget(t)
	assert.True(t, b.Covers(time.Now().Add(24*time.Hour)))
	assert.False(t, b.Covers(time.Now().Add(-24*time.Hour)))
}
