package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// setupTestDB opens an in-memory database with the full finance schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&finance.Invoice{},
		&finance.Payment{},
		&finance.BankAccount{},
		&finance.BankTransaction{},
		&finance.PettyCashAccount{},
		&finance.PettyCashTransaction{},
		&finance.Vendor{},
		&finance.PurchaseOrder{},
		&finance.Expense{},
		&finance.Budget{},
		&finance.ProjectCost{},
		&finance.CommissionStructure{},
		&finance.Commission{},
		&finance.FinancialPeriod{},
		&finance.TaxConfiguration{},
	)
	require.NoError(t, err)

	return db
}

func money(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyINRFromString(amount)
	require.NoError(t, err)
	return m
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustInvoice(t *testing.T, number string, amount string, dueDate *time.Time) *finance.Invoice {
	t.Helper()

	item, err := finance.NewInvoiceLineItem("Civil works", dec("1"), dec(amount))
	require.NoError(t, err)

	inv, err := finance.NewInvoice(
		number,
		finance.InvoiceTypeProgress,
		uuid.New(),
		"Meridian Constructions",
		finance.InvoiceLineItems{item},
		decimal.Zero,
		time.Now().AddDate(0, 0, -30),
		dueDate,
		uuid.New(),
	)
	require.NoError(t, err)
	return inv
}

func mustBankAccount(t *testing.T, opening string) *finance.BankAccount {
	t.Helper()
	acct, err := finance.NewBankAccount(
		"Operations", "50100012345678", "HDFC Bank", "MG Road", "HDFC0001234",
		money(t, opening), uuid.New(),
	)
	require.NoError(t, err)
	return acct
}
