package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	ProjectID  *uuid.UUID
	Type       *InvoiceType
	Status     *InvoiceStatus
	FromDate   *time.Time
	ToDate     *time.Time
	DueBefore  *time.Time
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds an invoice by its number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindAll finds invoices with filtering
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// FindOverdue finds invoices past due as of the given date.
	// Overdue is a query-time classification, never a stored status.
	FindOverdue(ctx context.Context, asOf time.Time, filter InvoiceFilter) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Count counts invoices with optional filters
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// SumOutstanding calculates the total balance due over non-terminal invoices
	SumOutstanding(ctx context.Context) (decimal.Decimal, error)

	// ExistsByInvoiceNumber checks if an invoice number is taken
	ExistsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error)

	// GenerateInvoiceNumber issues the next invoice number (INV-YYYYMM-NNNNN)
	GenerateInvoiceNumber(ctx context.Context) (string, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	InvoiceID  *uuid.UUID
	Status     *PaymentStatus
	Method     *PaymentMethod
	FromDate   *time.Time
	ToDate     *time.Time
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByReceiptNumber finds a payment by its receipt number
	FindByReceiptNumber(ctx context.Context, receiptNumber string) (*Payment, error)

	// FindByInvoice finds all payments applied to an invoice
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)

	// FindAll finds payments with filtering
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *Payment) error

	// Count counts payments with optional filters
	Count(ctx context.Context, filter PaymentFilter) (int64, error)

	// SumClearedByInvoice sums cleared payments against an invoice.
	// The result must always equal the invoice's paid amount.
	SumClearedByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)

	// ExistsByReceiptNumber checks if a receipt number is taken
	ExistsByReceiptNumber(ctx context.Context, receiptNumber string) (bool, error)

	// GenerateReceiptNumber issues the next receipt number (RCP-YYYYMM-NNNNN)
	GenerateReceiptNumber(ctx context.Context) (string, error)
}

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	// FindByID finds a bank account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)

	// FindByAccountNumber finds a bank account by its number
	FindByAccountNumber(ctx context.Context, accountNumber string) (*BankAccount, error)

	// FindAll finds bank accounts with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]BankAccount, error)

	// FindPrimary finds the primary deposit account
	FindPrimary(ctx context.Context) (*BankAccount, error)

	// Save creates or updates a bank account
	Save(ctx context.Context, account *BankAccount) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, account *BankAccount) error
}

// BankTransactionFilter defines filtering options for ledger queries
type BankTransactionFilter struct {
	shared.Filter
	AccountID *uuid.UUID
	Type      *TransactionType
	FromDate  *time.Time
	ToDate    *time.Time
}

// BankTransactionRepository defines the interface for the append-only ledger.
// Entries are inserted and read, never updated or deleted.
type BankTransactionRepository interface {
	// Append inserts a new ledger entry
	Append(ctx context.Context, txn *BankTransaction) error

	// FindByID finds a ledger entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*BankTransaction, error)

	// FindByAccount finds entries for an account, oldest first
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter BankTransactionFilter) ([]BankTransaction, error)

	// FindByPayment finds entries caused by a payment
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]BankTransaction, error)

	// BalanceAsOf computes the account balance from opening balance plus all
	// entries dated up to and including the given date
	BalanceAsOf(ctx context.Context, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, error)

	// Count counts entries with optional filters
	Count(ctx context.Context, filter BankTransactionFilter) (int64, error)
}

// PettyCashRepository defines the interface for petty cash persistence
type PettyCashRepository interface {
	// FindByID finds a petty cash account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PettyCashAccount, error)

	// FindAll finds petty cash accounts with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]PettyCashAccount, error)

	// Save creates or updates a petty cash account
	Save(ctx context.Context, account *PettyCashAccount) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, account *PettyCashAccount) error

	// AppendTransaction inserts a petty cash ledger entry
	AppendTransaction(ctx context.Context, txn *PettyCashTransaction) error

	// FindTransactions finds ledger entries for an account, oldest first
	FindTransactions(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]PettyCashTransaction, error)
}

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Vendor, error)
	Save(ctx context.Context, vendor *Vendor) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PurchaseOrderFilter defines filtering options for purchase order queries
type PurchaseOrderFilter struct {
	shared.Filter
	VendorID  *uuid.UUID
	ProjectID *uuid.UUID
	Status    *PurchaseOrderStatus
	FromDate  *time.Time
	ToDate    *time.Time
}

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error
	Count(ctx context.Context, filter PurchaseOrderFilter) (int64, error)
	ExistsByOrderNumber(ctx context.Context, orderNumber string) (bool, error)

	// GenerateOrderNumber issues the next order number (PO-YYYYMM-NNNNN)
	GenerateOrderNumber(ctx context.Context) (string, error)
}

// ExpenseFilter defines filtering options for expense queries
type ExpenseFilter struct {
	shared.Filter
	ProjectID *uuid.UUID
	VendorID  *uuid.UUID
	Category  *ExpenseCategory
	Status    *ExpenseStatus
	FromDate  *time.Time
	ToDate    *time.Time
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindByExpenseNumber(ctx context.Context, expenseNumber string) (*Expense, error)
	FindAll(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	Save(ctx context.Context, expense *Expense) error
	SaveWithLock(ctx context.Context, expense *Expense) error
	Count(ctx context.Context, filter ExpenseFilter) (int64, error)

	// SumPaidByCategory sums paid expenses per category over a date range,
	// feeding budget and dashboard queries
	SumPaidByCategory(ctx context.Context, from, to time.Time) (map[ExpenseCategory]decimal.Decimal, error)

	// GenerateExpenseNumber issues the next expense number (EXP-YYYYMM-NNNNN)
	GenerateExpenseNumber(ctx context.Context) (string, error)
}

// BudgetRepository defines the interface for budget persistence
type BudgetRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Budget, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Budget, error)

	// FindActiveFor finds active budgets covering the project and date
	FindActiveFor(ctx context.Context, projectID *uuid.UUID, date time.Time) ([]Budget, error)

	Save(ctx context.Context, budget *Budget) error
	SaveWithLock(ctx context.Context, budget *Budget) error
}

// ProjectCostRepository defines the interface for project cost persistence
type ProjectCostRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProjectCost, error)
	FindByProject(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]ProjectCost, error)
	Save(ctx context.Context, cost *ProjectCost) error
	SaveWithLock(ctx context.Context, cost *ProjectCost) error
}

// CommissionRepository defines the interface for commission persistence
type CommissionRepository interface {
	FindStructureByID(ctx context.Context, id uuid.UUID) (*CommissionStructure, error)
	FindAllStructures(ctx context.Context, filter shared.Filter) ([]CommissionStructure, error)
	SaveStructure(ctx context.Context, structure *CommissionStructure) error

	FindByID(ctx context.Context, id uuid.UUID) (*Commission, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Commission, error)
	Save(ctx context.Context, commission *Commission) error
	SaveWithLock(ctx context.Context, commission *Commission) error
}

// FinancialPeriodRepository defines the interface for period persistence
type FinancialPeriodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FinancialPeriod, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]FinancialPeriod, error)

	// FindCovering finds the period containing the given date, if any
	FindCovering(ctx context.Context, date time.Time) (*FinancialPeriod, error)

	Save(ctx context.Context, period *FinancialPeriod) error
	SaveWithLock(ctx context.Context, period *FinancialPeriod) error
}

// TaxConfigurationRepository defines the interface for tax configuration persistence
type TaxConfigurationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TaxConfiguration, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]TaxConfiguration, error)

	// FindRateAsOf finds the configuration in force on the given date,
	// preferring the most recent effective-from
	FindRateAsOf(ctx context.Context, name string, date time.Time) (*TaxConfiguration, error)

	Save(ctx context.Context, config *TaxConfiguration) error
}
