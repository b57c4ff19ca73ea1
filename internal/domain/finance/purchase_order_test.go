package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPurchaseOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	cement, err := NewPurchaseOrderItem("OPC 53 grade cement", decimal.NewFromInt(100), "bag", decimal.NewFromInt(420))
	require.NoError(t, err)
	steel, err := NewPurchaseOrderItem("TMT bars 12mm", decimal.NewFromInt(5), "tonne", decimal.NewFromInt(56000))
	require.NoError(t, err)
	po, err := NewPurchaseOrder("PO-20260815-00001", uuid.New(), "Shree Traders", nil,
		PurchaseOrderItems{cement, steel}, time.Now(), nil, uuid.New())
	require.NoError(t, err)
	return po
}

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("totals line items", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		assert.Equal(t, PurchaseOrderStatusDraft, po.Status)
		assert.True(t, po.TotalAmount.Equal(decimal.NewFromInt(322000)))
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewPurchaseOrder("PO-20260815-00002", uuid.New(), "Shree Traders", nil,
			nil, time.Now(), nil, uuid.New())
		assert.Error(t, err)
	})
}

func TestPurchaseOrderApprovalFlow(t *testing.T) {
	t.Run("draft submits, approves, sends", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		require.NoError(t, po.SubmitForApproval())
		require.NoError(t, po.Approve(uuid.New()))
		require.NoError(t, po.Send())
		assert.Equal(t, PurchaseOrderStatusSent, po.Status)
	})

	t.Run("approving a draft order fails", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		assert.Error(t, po.Approve(uuid.New()))
		assert.Equal(t, PurchaseOrderStatusDraft, po.Status)
	})
}

func TestPurchaseOrderReceiveItem(t *testing.T) {
	prepare := func(t *testing.T) *PurchaseOrder {
		po := newTestPurchaseOrder(t)
		require.NoError(t, po.SubmitForApproval())
		require.NoError(t, po.Approve(uuid.New()))
		require.NoError(t, po.Send())
		return po
	}

	t.Run("partial receipt sets partial status", func(t *testing.T) {
		po := prepare(t)
		require.NoError(t, po.ReceiveItem(po.Items[0].ID, decimal.NewFromInt(60)))
		assert.Equal(t, PurchaseOrderStatusPartial, po.Status)
		assert.True(t, po.Items[0].ReceivedQuantity.Equal(decimal.NewFromInt(60)))
	})

	t.Run("order becomes received only when every item is full", func(t *testing.T) {
		po := prepare(t)
		require.NoError(t, po.ReceiveItem(po.Items[0].ID, decimal.NewFromInt(100)))
		assert.Equal(t, PurchaseOrderStatusPartial, po.Status)

		require.NoError(t, po.ReceiveItem(po.Items[1].ID, decimal.NewFromInt(5)))
		assert.Equal(t, PurchaseOrderStatusReceived, po.Status)
		assert.True(t, po.IsFullyReceived())
	})

	t.Run("received quantity cannot exceed ordered", func(t *testing.T) {
		po := prepare(t)
		require.NoError(t, po.ReceiveItem(po.Items[0].ID, decimal.NewFromInt(90)))
		err := po.ReceiveItem(po.Items[0].ID, decimal.NewFromInt(11))
		assert.Error(t, err)
		assert.True(t, po.Items[0].ReceivedQuantity.Equal(decimal.NewFromInt(90)))
	})

	t.Run("unknown item rejected", func(t *testing.T) {
		po := prepare(t)
		assert.Error(t, po.ReceiveItem(uuid.New(), decimal.NewFromInt(1)))
	})

	t.Run("cannot receive against a draft order", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		assert.Error(t, po.ReceiveItem(po.Items[0].ID, decimal.NewFromInt(1)))
	})
}

func TestPurchaseOrderCancel(t *testing.T) {
	t.Run("cancel allowed before receipts", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		require.NoError(t, po.Cancel("vendor unavailable"))
		assert.Equal(t, PurchaseOrderStatusCancelled, po.Status)
	})

	t.Run("cancel rejected once goods received", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		require.NoError(t, po.SubmitForApproval())
		require.NoError(t, po.Approve(uuid.New()))
		require.NoError(t, po.ReceiveItem(po.Items[0].ID, decimal.NewFromInt(10)))
		assert.Error(t, po.Cancel("changed mind"))
	})
}
