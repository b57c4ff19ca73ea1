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

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	item, err := NewInvoiceLineItem("Foundation work", decimal.NewFromInt(1), decimal.NewFromInt(10000))
	require.NoError(t, err)
	due := time.Now().Add(30 * 24 * time.Hour)
	inv, err := NewInvoice("INV-20260815-00001", InvoiceTypeProgress, uuid.New(), "Skyline Developers",
		InvoiceLineItems{item}, decimal.Zero, time.Now(), &due, uuid.New())
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("creates draft invoice with amount from line items", func(t *testing.T) {
		inv := newTestInvoice(t)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.True(t, inv.Amount.Equal(decimal.NewFromInt(10000)))
		assert.True(t, inv.PaidAmount.IsZero())
		assert.Len(t, inv.GetDomainEvents(), 1)
	})

	t.Run("computes retention amount from percentage", func(t *testing.T) {
		item, err := NewInvoiceLineItem("Structural steel", decimal.NewFromInt(2), decimal.NewFromInt(50000))
		require.NoError(t, err)
		inv, err := NewInvoice("INV-20260815-00002", InvoiceTypeProgress, uuid.New(), "Skyline Developers",
			InvoiceLineItems{item}, decimal.NewFromInt(5), time.Now(), nil, uuid.New())
		require.NoError(t, err)
		assert.True(t, inv.RetentionAmount.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("rejects empty line items", func(t *testing.T) {
		_, err := NewInvoice("INV-20260815-00003", InvoiceTypeSale, uuid.New(), "Skyline Developers",
			nil, decimal.Zero, time.Now(), nil, uuid.New())
		assert.Error(t, err)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		item, _ := NewInvoiceLineItem("Misc", decimal.NewFromInt(1), decimal.NewFromInt(100))
		_, err := NewInvoice("INV-20260815-00004", InvoiceType("proforma"), uuid.New(), "Skyline Developers",
			InvoiceLineItems{item}, decimal.Zero, time.Now(), nil, uuid.New())
		assert.Error(t, err)
	})
}

func TestInvoiceApprovalFlow(t *testing.T) {
	t.Run("draft submits then approves", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.SubmitForApproval())
		assert.Equal(t, InvoiceStatusPendingApproval, inv.Status)

		approver := uuid.New()
		require.NoError(t, inv.Approve(approver))
		assert.Equal(t, InvoiceStatusApproved, inv.Status)
		require.NotNil(t, inv.ApprovedBy)
		assert.Equal(t, approver, *inv.ApprovedBy)
		assert.NotNil(t, inv.ApprovedDate)
	})

	t.Run("approving a draft invoice fails and leaves fields unchanged", func(t *testing.T) {
		inv := newTestInvoice(t)
		err := inv.Approve(uuid.New())
		assert.Error(t, err)
		assert.Equal(t, InvoiceStatusDraft, inv.Status)
		assert.Nil(t, inv.ApprovedBy)
		assert.Nil(t, inv.ApprovedDate)
	})

	t.Run("send allowed from approved and from draft", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Send())
		assert.Equal(t, InvoiceStatusSent, inv.Status)

		inv2 := newTestInvoice(t)
		require.NoError(t, inv2.SubmitForApproval())
		require.NoError(t, inv2.Approve(uuid.New()))
		require.NoError(t, inv2.Send())
		assert.Equal(t, InvoiceStatusSent, inv2.Status)
	})

	t.Run("send not allowed from pending approval", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.SubmitForApproval())
		assert.Error(t, inv.Send())
	})
}

func TestInvoiceApplyPayment(t *testing.T) {
	t.Run("partial then full payment", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Send())

		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(4000)))
		assert.Equal(t, InvoiceStatusPartial, inv.Status)
		assert.True(t, inv.BalanceDue().Equal(decimal.NewFromInt(6000)))

		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(6000)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.BalanceDue().IsZero())
		assert.NotNil(t, inv.PaidAt)
	})

	t.Run("rejects payment on draft invoice", func(t *testing.T) {
		inv := newTestInvoice(t)
		assert.Error(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(100)))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Send())
		assert.Error(t, inv.ApplyPayment(valueobject.ZeroINR()))
	})
}

func TestInvoiceReversePayment(t *testing.T) {
	t.Run("reversal is an exact inverse of apply", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Send())
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(4000)))
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(6000)))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)

		require.NoError(t, inv.ReversePayment(valueobject.NewMoneyINRFromFloat(6000)))
		assert.Equal(t, InvoiceStatusPartial, inv.Status)
		assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(4000)))
		assert.Nil(t, inv.PaidAt)
	})

	t.Run("reversal to zero goes back to unpaid", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Send())
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(4000)))
		require.NoError(t, inv.ReversePayment(valueobject.NewMoneyINRFromFloat(4000)))
		assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
		assert.True(t, inv.PaidAmount.IsZero())
	})

	t.Run("cannot reverse more than paid", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Send())
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(4000)))
		assert.Error(t, inv.ReversePayment(valueobject.NewMoneyINRFromFloat(5000)))
	})
}

func TestInvoiceCancelAndVoid(t *testing.T) {
	t.Run("cancel rejected once payments exist", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Send())
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(1000)))
		assert.Error(t, inv.Cancel("duplicate"))
	})

	t.Run("cancel allowed before payments", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Cancel("duplicate entry"))
		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	})

	t.Run("void reachable from any non-terminal state", func(t *testing.T) {
		inv := newTestInvoice(t)
		require.NoError(t, inv.Send())
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(1000)))
		require.NoError(t, inv.Void("written off"))
		assert.Equal(t, InvoiceStatusVoid, inv.Status)

		assert.Error(t, inv.Void("again"))
	})
}

func TestInvoiceIsOverdue(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)

	t.Run("sent invoice past due date is overdue", func(t *testing.T) {
		inv := newTestInvoice(t)
		inv.DueDate = &past
		require.NoError(t, inv.Send())
		assert.True(t, inv.IsOverdue(time.Now()))
		assert.Equal(t, 1, inv.DaysOverdue(time.Now().Add(24*time.Hour)))
	})

	t.Run("paid invoice is never overdue", func(t *testing.T) {
		inv := newTestInvoice(t)
		inv.DueDate = &past
		require.NoError(t, inv.Send())
		require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(10000)))
		assert.False(t, inv.IsOverdue(time.Now()))
	})

	t.Run("draft invoice is never overdue", func(t *testing.T) {
		inv := newTestInvoice(t)
		inv.DueDate = &past
		assert.False(t, inv.IsOverdue(time.Now()))
	})
}

func TestInvoiceBalanceInvariant(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Send())
	require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyINRFromFloat(3500.50)))

	assert.True(t, inv.BalanceDue().Equal(inv.Amount.Sub(inv.PaidAmount)))
	assert.Equal(t, inv.IsPaid(), inv.PaidAmount.GreaterThanOrEqual(inv.Amount))
}
