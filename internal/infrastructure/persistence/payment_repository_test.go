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

func mustPayment(t *testing.T, number string, invoiceID *uuid.UUID, amount string, method finance.PaymentMethod) *finance.Payment {
	t.Helper()
	p, err := finance.NewPayment(
		number, invoiceID, uuid.New(), "Meridian Constructions",
		money(t, amount), method, nil, time.Now(), uuid.New(),
	)
	require.NoError(t, err)
	return p
}

func TestGormPaymentRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	payment := mustPayment(t, "RCP-202608-00001", nil, "75000", finance.PaymentMethodBankTransfer)
	require.NoError(t, repo.Save(ctx, payment))

	found, err := repo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ReceiptNumber, found.ReceiptNumber)

	byNumber, err := repo.FindByReceiptNumber(ctx, "RCP-202608-00001")
	require.NoError(t, err)
	assert.Equal(t, payment.ID, byNumber.ID)

	_, err = repo.FindByReceiptNumber(ctx, "RCP-202608-99999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPaymentRepository_FindByInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	invoiceID := uuid.New()
	first := mustPayment(t, "RCP-202608-00001", &invoiceID, "40000", finance.PaymentMethodCash)
	second := mustPayment(t, "RCP-202608-00002", &invoiceID, "60000", finance.PaymentMethodBankTransfer)
	other := mustPayment(t, "RCP-202608-00003", nil, "10000", finance.PaymentMethodCash)

	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, other))

	payments, err := repo.FindByInvoice(ctx, invoiceID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestGormPaymentRepository_SumClearedByInvoice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	invoiceID := uuid.New()

	// bank transfers clear immediately; a post-dated cheque stays pending
	cleared := mustPayment(t, "RCP-202608-00001", &invoiceID, "40000", finance.PaymentMethodBankTransfer)
	pending := mustPayment(t, "RCP-202608-00002", &invoiceID, "60000", finance.PaymentMethodPDC)

	require.NoError(t, repo.Save(ctx, cleared))
	require.NoError(t, repo.Save(ctx, pending))
	require.Equal(t, finance.PaymentStatusCleared, cleared.Status)
	require.Equal(t, finance.PaymentStatusPending, pending.Status)

	total, err := repo.SumClearedByInvoice(ctx, invoiceID)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("40000")), "got %s", total)
}

func TestGormPaymentRepository_FindAllByMethod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustPayment(t, "RCP-202608-00001", nil, "1000", finance.PaymentMethodCash)))
	require.NoError(t, repo.Save(ctx, mustPayment(t, "RCP-202608-00002", nil, "2000", finance.PaymentMethodBankTransfer)))

	method := finance.PaymentMethodCash
	payments, err := repo.FindAll(ctx, finance.PaymentFilter{Filter: shared.DefaultFilter(), Method: &method})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "RCP-202608-00001", payments[0].ReceiptNumber)
}

func TestGormPaymentRepository_GenerateReceiptNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	number, err := repo.GenerateReceiptNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RCP-"+time.Now().Format("200601")+"-00001", number)
}
