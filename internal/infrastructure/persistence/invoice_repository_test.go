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

func TestGormInvoiceRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := mustInvoice(t, "INV-202608-00001", "250000", nil)
	require.NoError(t, repo.Save(ctx, inv))

	found, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber, found.InvoiceNumber)
	assert.Equal(t, finance.InvoiceStatusDraft, found.Status)
	assert.True(t, found.Amount.Equal(dec("250000")))
	require.Len(t, found.LineItems, 1)
	assert.Equal(t, "Civil works", found.LineItems[0].Description)

	byNumber, err := repo.FindByInvoiceNumber(ctx, "INV-202608-00001")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byNumber.ID)
}

func TestGormInvoiceRepository_FindByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormInvoiceRepository_FindAllFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	first := mustInvoice(t, "INV-202608-00001", "100000", nil)
	second := mustInvoice(t, "INV-202608-00002", "200000", nil)
	second.Status = finance.InvoiceStatusSent
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	status := finance.InvoiceStatusSent
	filter := finance.InvoiceFilter{Filter: shared.DefaultFilter(), Status: &status}

	invoices, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV-202608-00002", invoices[0].InvoiceNumber)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGormInvoiceRepository_FindOverdue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	pastDue := time.Now().AddDate(0, 0, -10)
	futureDue := time.Now().AddDate(0, 0, 10)

	overdue := mustInvoice(t, "INV-202608-00001", "100000", &pastDue)
	overdue.Status = finance.InvoiceStatusSent
	current := mustInvoice(t, "INV-202608-00002", "100000", &futureDue)
	current.Status = finance.InvoiceStatusSent
	draft := mustInvoice(t, "INV-202608-00003", "100000", &pastDue)

	require.NoError(t, repo.Save(ctx, overdue))
	require.NoError(t, repo.Save(ctx, current))
	require.NoError(t, repo.Save(ctx, draft))

	invoices, err := repo.FindOverdue(ctx, time.Now(), finance.InvoiceFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV-202608-00001", invoices[0].InvoiceNumber)
}

func TestGormInvoiceRepository_SumOutstanding(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	sent := mustInvoice(t, "INV-202608-00001", "100000", nil)
	sent.Status = finance.InvoiceStatusSent
	partial := mustInvoice(t, "INV-202608-00002", "200000", nil)
	partial.Status = finance.InvoiceStatusPartial
	partial.PaidAmount = dec("50000")
	draft := mustInvoice(t, "INV-202608-00003", "999999", nil)

	require.NoError(t, repo.Save(ctx, sent))
	require.NoError(t, repo.Save(ctx, partial))
	require.NoError(t, repo.Save(ctx, draft))

	total, err := repo.SumOutstanding(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("250000")), "got %s", total)
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := mustInvoice(t, "INV-202608-00001", "100000", nil)
	require.NoError(t, repo.Save(ctx, inv))

	// an uncontended writer running a state transition must land
	first, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)

	require.NoError(t, first.SubmitForApproval())
	require.NoError(t, repo.SaveWithLock(ctx, first))
	assert.Equal(t, 2, first.Version)

	// a second writer holding the stale version must be rejected
	require.NoError(t, second.SubmitForApproval())
	err = repo.SaveWithLock(ctx, second)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	found, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.InvoiceStatusPendingApproval, found.Status)
	assert.Equal(t, 2, found.Version)

	// consecutive transitions by the committed writer keep landing
	require.NoError(t, first.Approve(uuid.New()))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	found, err = repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, finance.InvoiceStatusApproved, found.Status)
	assert.Equal(t, 3, found.Version)
}

func TestGormInvoiceRepository_ExistsByInvoiceNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustInvoice(t, "INV-202608-00001", "100000", nil)))

	exists, err := repo.ExistsByInvoiceNumber(ctx, "INV-202608-00001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByInvoiceNumber(ctx, "INV-202608-99999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormInvoiceRepository_GenerateInvoiceNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	yearMonth := time.Now().Format("200601")

	number, err := repo.GenerateInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-"+yearMonth+"-00001", number)

	require.NoError(t, repo.Save(ctx, mustInvoice(t, number, "100000", nil)))

	next, err := repo.GenerateInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-"+yearMonth+"-00002", next)
}
