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

func percentStructure(t *testing.T, rate int64) *CommissionStructure {
	t.Helper()
	cs, err := NewCommissionStructure("Standard broker", CommissionTypePercentage,
		decimal.NewFromInt(rate), nil, "allocation_sale", uuid.New())
	require.NoError(t, err)
	return cs
}

func TestCommissionStructureCompute(t *testing.T) {
	t.Run("percentage: 5 percent of 200000 is 10000", func(t *testing.T) {
		cs := percentStructure(t, 5)
		amount, err := cs.Compute(valueobject.NewMoneyINRFromFloat(200000))
		require.NoError(t, err)
		assert.True(t, amount.Amount().Equal(decimal.NewFromInt(10000)))
	})

	t.Run("fixed: rate is the payout regardless of base", func(t *testing.T) {
		cs, err := NewCommissionStructure("Flat referral", CommissionTypeFixed,
			decimal.NewFromInt(25000), nil, "allocation_sale", uuid.New())
		require.NoError(t, err)
		amount, err := cs.Compute(valueobject.NewMoneyINRFromFloat(9999999))
		require.NoError(t, err)
		assert.True(t, amount.Amount().Equal(decimal.NewFromInt(25000)))
	})

	t.Run("tiered: marginal rate per slab", func(t *testing.T) {
		oneLakh := decimal.NewFromInt(100000)
		fiveLakh := decimal.NewFromInt(500000)
		tiers := CommissionTiers{
			{UpTo: &oneLakh, Rate: decimal.NewFromInt(2)},
			{UpTo: &fiveLakh, Rate: decimal.NewFromInt(5)},
			{UpTo: nil, Rate: decimal.NewFromInt(8)},
		}
		cs, err := NewCommissionStructure("Slab broker", CommissionTypeTiered,
			decimal.Zero, tiers, "allocation_sale", uuid.New())
		require.NoError(t, err)

		// 100000*2% + 400000*5% + 100000*8% = 2000 + 20000 + 8000
		amount, err := cs.Compute(valueobject.NewMoneyINRFromFloat(600000))
		require.NoError(t, err)
		assert.True(t, amount.Amount().Equal(decimal.NewFromInt(30000)))

		// base inside the first slab
		amount, err = cs.Compute(valueobject.NewMoneyINRFromFloat(50000))
		require.NoError(t, err)
		assert.True(t, amount.Amount().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("tiered structure requires a schedule", func(t *testing.T) {
		_, err := NewCommissionStructure("Broken", CommissionTypeTiered,
			decimal.NewFromInt(5), nil, "allocation_sale", uuid.New())
		assert.Error(t, err)
	})

	t.Run("tier bounds must be increasing", func(t *testing.T) {
		a := decimal.NewFromInt(500000)
		b := decimal.NewFromInt(100000)
		tiers := CommissionTiers{
			{UpTo: &a, Rate: decimal.NewFromInt(2)},
			{UpTo: &b, Rate: decimal.NewFromInt(5)},
		}
		_, err := NewCommissionStructure("Broken", CommissionTypeTiered,
			decimal.Zero, tiers, "allocation_sale", uuid.New())
		assert.Error(t, err)
	})

	t.Run("non-tiered structure cannot carry tiers", func(t *testing.T) {
		bound := decimal.NewFromInt(100000)
		_, err := NewCommissionStructure("Broken", CommissionTypePercentage,
			decimal.NewFromInt(5), CommissionTiers{{UpTo: &bound, Rate: decimal.NewFromInt(2)}},
			"allocation_sale", uuid.New())
		assert.Error(t, err)
	})
}

func TestNewCommission(t *testing.T) {
	t.Run("derives amount from structure", func(t *testing.T) {
		cs := percentStructure(t, 5)
		c, err := NewCommission(cs, nil, "Sharma Estates", valueobject.NewMoneyINRFromFloat(200000), uuid.New())
		require.NoError(t, err)
		assert.Equal(t, CommissionStatusPending, c.Status)
		assert.True(t, c.CommissionAmount.Equal(decimal.NewFromInt(10000)))
	})

	t.Run("rejects inactive structure", func(t *testing.T) {
		cs := percentStructure(t, 5)
		cs.Deactivate()
		_, err := NewCommission(cs, nil, "Sharma Estates", valueobject.NewMoneyINRFromFloat(200000), uuid.New())
		assert.Error(t, err)
	})
}

func TestCommissionLifecycle(t *testing.T) {
	newCommission := func(t *testing.T) *Commission {
		cs := percentStructure(t, 5)
		c, err := NewCommission(cs, nil, "Sharma Estates", valueobject.NewMoneyINRFromFloat(200000), uuid.New())
		require.NoError(t, err)
		return c
	}

	t.Run("pending approves then pays with payment date", func(t *testing.T) {
		c := newCommission(t)
		require.NoError(t, c.Approve(uuid.New()))
		assert.Equal(t, CommissionStatusApproved, c.Status)

		payDate := time.Now()
		require.NoError(t, c.MarkPaid(payDate))
		assert.Equal(t, CommissionStatusPaid, c.Status)
		require.NotNil(t, c.PaymentDate)
		assert.Equal(t, payDate, *c.PaymentDate)
	})

	t.Run("pending cannot be paid directly", func(t *testing.T) {
		c := newCommission(t)
		assert.Error(t, c.MarkPaid(time.Now()))
	})

	t.Run("paid commission cannot be cancelled", func(t *testing.T) {
		c := newCommission(t)
		require.NoError(t, c.Approve(uuid.New()))
		require.NoError(t, c.MarkPaid(time.Now()))
		assert.Error(t, c.Cancel("clawback"))
	})

	t.Run("pending cancels with reason", func(t *testing.T) {
		c := newCommission(t)
		require.NoError(t, c.Cancel("sale fell through"))
		assert.Equal(t, CommissionStatusCancelled, c.Status)
	})
}
