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
)

type poServiceFixture struct {
	service    *PurchaseOrderService
	orderRepo  *MockPurchaseOrderRepository
	vendorRepo *MockVendorRepository
}

func newPOServiceFixture() *poServiceFixture {
	f := &poServiceFixture{
		orderRepo:  new(MockPurchaseOrderRepository),
		vendorRepo: new(MockVendorRepository),
	}
	f.service = NewPurchaseOrderService(f.orderRepo, f.vendorRepo)
	return f
}

func procurementActor() identity.Actor {
	return identity.Actor{UserID: uuid.New(), Name: "Vikram Desai", Role: identity.RoleProcurementManager}
}

func newTestVendor(t *testing.T) *finance.Vendor {
	t.Helper()
	vendor, err := finance.NewVendor("Shakti Steel Traders", "Ramesh Gupta", "+91 98200 11223",
		"sales@shaktisteel.in", "27AABCS1234F1Z5", "Plot 14, MIDC, Taloja", uuid.New())
	require.NoError(t, err)
	return vendor
}

func newSentOrder(t *testing.T, vendor *finance.Vendor, qty int64) *finance.PurchaseOrder {
	t.Helper()
	item, err := finance.NewPurchaseOrderItem("TMT bars, 12mm", decimal.NewFromInt(qty), "tonne", decimal.NewFromInt(52000))
	require.NoError(t, err)
	order, err := finance.NewPurchaseOrder("PO-202608-00017", vendor.ID, vendor.Name, nil,
		finance.PurchaseOrderItems{item}, time.Now(), nil, uuid.New())
	require.NoError(t, err)
	require.NoError(t, order.SubmitForApproval())
	require.NoError(t, order.Approve(uuid.New()))
	require.NoError(t, order.Send())
	return order
}

func TestPurchaseOrderServiceCreate(t *testing.T) {
	ctx := context.Background()
	actor := procurementActor()

	req := CreatePurchaseOrderRequest{
		Items: []PurchaseOrderItemRequest{
			{Description: "TMT bars, 12mm", Quantity: decimal.NewFromInt(10), Unit: "tonne", UnitPrice: decimal.NewFromInt(52000)},
		},
		OrderDate: time.Now(),
	}

	t.Run("creates a draft order for an active vendor", func(t *testing.T) {
		f := newPOServiceFixture()
		vendor := newTestVendor(t)
		create := req
		create.VendorID = vendor.ID

		f.vendorRepo.On("FindByID", mock.Anything, vendor.ID).Return(vendor, nil)
		f.orderRepo.On("GenerateOrderNumber", mock.Anything).Return("PO-202608-00018", nil)
		f.orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*finance.PurchaseOrder")).Return(nil)

		resp, err := f.service.Create(ctx, actor, create)
		require.NoError(t, err)

		assert.Equal(t, "PO-202608-00018", resp.OrderNumber)
		assert.Equal(t, vendor.Name, resp.VendorName)
		assert.Equal(t, string(finance.PurchaseOrderStatusDraft), resp.Status)
		assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(520000)))
	})

	t.Run("rejects an inactive vendor", func(t *testing.T) {
		f := newPOServiceFixture()
		vendor := newTestVendor(t)
		vendor.Deactivate()
		create := req
		create.VendorID = vendor.ID

		f.vendorRepo.On("FindByID", mock.Anything, vendor.ID).Return(vendor, nil)

		_, err := f.service.Create(ctx, actor, create)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INACTIVE_VENDOR", domainErr.Code)
		f.orderRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("only procurement roles may order", func(t *testing.T) {
		f := newPOServiceFixture()
		accountant := identity.Actor{UserID: uuid.New(), Name: "Ritu Shah", Role: identity.RoleAccountant}

		_, err := f.service.Create(ctx, accountant, req)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestPurchaseOrderServiceReceiveItems(t *testing.T) {
	ctx := context.Background()
	actor := procurementActor()

	t.Run("partial receipt moves the order to partial", func(t *testing.T) {
		f := newPOServiceFixture()
		order := newSentOrder(t, newTestVendor(t), 10)
		itemID := order.Items[0].ID

		f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil)

		resp, err := f.service.ReceiveItems(ctx, actor, order.ID, []ReceiveItemRequest{
			{ItemID: itemID, Quantity: decimal.NewFromInt(4)},
		})
		require.NoError(t, err)

		assert.Equal(t, string(finance.PurchaseOrderStatusPartial), resp.Status)
		assert.True(t, resp.Items[0].ReceivedQuantity.Equal(decimal.NewFromInt(4)))
	})

	t.Run("receiving everything completes the order", func(t *testing.T) {
		f := newPOServiceFixture()
		order := newSentOrder(t, newTestVendor(t), 10)
		itemID := order.Items[0].ID

		f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil)

		resp, err := f.service.ReceiveItems(ctx, actor, order.ID, []ReceiveItemRequest{
			{ItemID: itemID, Quantity: decimal.NewFromInt(10)},
		})
		require.NoError(t, err)

		assert.Equal(t, string(finance.PurchaseOrderStatusReceived), resp.Status)
	})

	t.Run("over-receipt rejects the whole receipt", func(t *testing.T) {
		f := newPOServiceFixture()
		order := newSentOrder(t, newTestVendor(t), 10)
		itemID := order.Items[0].ID

		f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.service.ReceiveItems(ctx, actor, order.ID, []ReceiveItemRequest{
			{ItemID: itemID, Quantity: decimal.NewFromInt(15)},
		})
		assert.Error(t, err)
		f.orderRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("empty receipt is rejected", func(t *testing.T) {
		f := newPOServiceFixture()
		_, err := f.service.ReceiveItems(ctx, actor, uuid.New(), nil)
		assert.Error(t, err)
	})
}

func TestPurchaseOrderServiceApprovalFlow(t *testing.T) {
	ctx := context.Background()
	actor := procurementActor()

	t.Run("draft walks to sent through approval", func(t *testing.T) {
		f := newPOServiceFixture()
		vendor := newTestVendor(t)
		item, err := finance.NewPurchaseOrderItem("Shuttering plywood", decimal.NewFromInt(200), "sheet", decimal.NewFromInt(1450))
		require.NoError(t, err)
		order, err := finance.NewPurchaseOrder("PO-202608-00019", vendor.ID, vendor.Name, nil,
			finance.PurchaseOrderItems{item}, time.Now(), nil, uuid.New())
		require.NoError(t, err)

		f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil)

		resp, err := f.service.SubmitForApproval(ctx, actor, order.ID)
		require.NoError(t, err)
		assert.Equal(t, string(finance.PurchaseOrderStatusPendingApproval), resp.Status)

		resp, err = f.service.Approve(ctx, actor, order.ID)
		require.NoError(t, err)
		assert.Equal(t, string(finance.PurchaseOrderStatusApproved), resp.Status)

		resp, err = f.service.Send(ctx, actor, order.ID)
		require.NoError(t, err)
		assert.Equal(t, string(finance.PurchaseOrderStatusSent), resp.Status)
	})

	t.Run("cancel after receipt is rejected", func(t *testing.T) {
		f := newPOServiceFixture()
		order := newSentOrder(t, newTestVendor(t), 10)
		require.NoError(t, order.ReceiveItem(order.Items[0].ID, decimal.NewFromInt(2)))

		f.orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err := f.service.Cancel(ctx, actor, order.ID, "Scope reduced")
		assert.Error(t, err)
	})
}
