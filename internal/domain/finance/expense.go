package finance

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// ExpenseCategory classifies what an expense was for
type ExpenseCategory string

const (
	ExpenseCategoryMaterial         ExpenseCategory = "material"
	ExpenseCategoryLabour           ExpenseCategory = "labour"
	ExpenseCategoryEquipment        ExpenseCategory = "equipment"
	ExpenseCategoryTransport        ExpenseCategory = "transport"
	ExpenseCategoryUtilities        ExpenseCategory = "utilities"
	ExpenseCategoryOffice           ExpenseCategory = "office"
	ExpenseCategoryProfessionalFees ExpenseCategory = "professional_fees"
	ExpenseCategoryMaintenance      ExpenseCategory = "maintenance"
	ExpenseCategoryTravel           ExpenseCategory = "travel"
	ExpenseCategoryMiscellaneous    ExpenseCategory = "miscellaneous"
)

// IsValid checks if the expense category is valid
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryMaterial, ExpenseCategoryLabour, ExpenseCategoryEquipment,
		ExpenseCategoryTransport, ExpenseCategoryUtilities, ExpenseCategoryOffice,
		ExpenseCategoryProfessionalFees, ExpenseCategoryMaintenance,
		ExpenseCategoryTravel, ExpenseCategoryMiscellaneous:
		return true
	}
	return false
}

// ExpenseStatus represents the status of an expense claim
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "pending"
	ExpenseStatusApproved ExpenseStatus = "approved"
	ExpenseStatusRejected ExpenseStatus = "rejected"
	ExpenseStatusPaid     ExpenseStatus = "paid"
)

// IsValid checks if the status is a valid ExpenseStatus
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected, ExpenseStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of ExpenseStatus
func (s ExpenseStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the expense is in a terminal state
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseStatusRejected || s == ExpenseStatusPaid
}

// Expense represents an expense claim aggregate root.
// Approval gates disbursement; paying an approved expense is a cash
// movement posted to the bank ledger, unless explicitly recorded off ledger.
type Expense struct {
	shared.AuditedAggregateRoot
	ExpenseNumber    string          `json:"expense_number"`
	Category         ExpenseCategory `json:"category"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Status           ExpenseStatus   `json:"status"`
	ExpenseDate      time.Time       `json:"expense_date"`
	ProjectID        *uuid.UUID      `json:"project_id"`
	VendorID         *uuid.UUID      `json:"vendor_id"`
	FundingAccountID *uuid.UUID      `json:"funding_account_id"`
	SubmittedBy      uuid.UUID       `json:"submitted_by"`
	ApprovedBy       *uuid.UUID      `json:"approved_by"`
	ApprovedDate     *time.Time      `json:"approved_date"`
	RejectedBy       *uuid.UUID      `json:"rejected_by"`
	RejectReason     string          `json:"reject_reason"`
	PaidAt           *time.Time      `json:"paid_at"`
	OffLedger        bool            `json:"off_ledger"`
	Notes            string          `json:"notes"`
}

// NewExpense creates a new expense claim in pending status
func NewExpense(
	expenseNumber string,
	category ExpenseCategory,
	description string,
	amount, taxAmount valueobject.Money,
	expenseDate time.Time,
	projectID, vendorID, fundingAccountID *uuid.UUID,
	submittedBy uuid.UUID,
) (*Expense, error) {
	if expenseNumber == "" {
		return nil, shared.NewDomainError("INVALID_EXPENSE_NUMBER", "Expense number cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if taxAmount.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Tax amount cannot be negative")
	}
	if submittedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUBMITTER", "Submitter ID cannot be empty")
	}

	return &Expense{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(submittedBy),
		ExpenseNumber:        expenseNumber,
		Category:             category,
		Description:          description,
		Amount:               amount.Amount(),
		TaxAmount:            taxAmount.Amount(),
		TotalAmount:          amount.Amount().Add(taxAmount.Amount()),
		Status:               ExpenseStatusPending,
		ExpenseDate:          expenseDate,
		ProjectID:            projectID,
		VendorID:             vendorID,
		FundingAccountID:     fundingAccountID,
		SubmittedBy:          submittedBy,
	}, nil
}

// Approve approves a pending expense, recording the approver
func (e *Expense) Approve(approverID uuid.UUID) error {
	if e.Status != ExpenseStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve expense in %s status", e.Status))
	}
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}

	now := time.Now()
	e.Status = ExpenseStatusApproved
	e.ApprovedBy = &approverID
	e.ApprovedDate = &now
	e.Touch()
	e.IncrementVersion()

	return nil
}

// Reject rejects a pending expense with a reason
func (e *Expense) Reject(rejectedBy uuid.UUID, reason string) error {
	if e.Status != ExpenseStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject expense in %s status", e.Status))
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Rejecter ID cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	e.Status = ExpenseStatusRejected
	e.RejectedBy = &rejectedBy
	e.RejectReason = reason
	e.Touch()
	e.IncrementVersion()

	return nil
}

// MarkPaid transitions an approved expense to paid. When the expense has
// no funding account the caller must explicitly accept an off-ledger
// payment; it is never a silent default.
func (e *Expense) MarkPaid(offLedger bool) error {
	if e.Status != ExpenseStatusApproved {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay expense in %s status", e.Status))
	}
	if e.FundingAccountID == nil && !offLedger {
		return shared.NewDomainError("NO_FUNDING_ACCOUNT", "Expense has no funding account; off-ledger payment must be explicit")
	}
	if e.FundingAccountID != nil && offLedger {
		return shared.NewDomainError("INVALID_INPUT", "Expense with a funding account cannot be paid off ledger")
	}

	now := time.Now()
	e.Status = ExpenseStatusPaid
	e.PaidAt = &now
	e.OffLedger = offLedger
	e.Touch()
	e.IncrementVersion()

	e.AddDomainEvent(NewExpensePaidEvent(e))

	return nil
}

// GetTotalAmountMoney returns the total amount (including tax) as Money
func (e *Expense) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyINR(e.TotalAmount)
}

// IsPaid returns true if the expense has been paid
func (e *Expense) IsPaid() bool {
	return e.Status == ExpenseStatusPaid
}
