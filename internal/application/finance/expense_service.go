package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/identity"
	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// ExpenseService provides application-level expense workflow operations
type ExpenseService struct {
	expenseRepo    finance.ExpenseRepository
	accountRepo    finance.BankAccountRepository
	ledgerRepo     finance.BankTransactionRepository
	taxRepo        finance.TaxConfigurationRepository
	periods        periodGuard
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo finance.ExpenseRepository,
	accountRepo finance.BankAccountRepository,
	ledgerRepo finance.BankTransactionRepository,
	taxRepo finance.TaxConfigurationRepository,
	periodRepo finance.FinancialPeriodRepository,
	txManager shared.TransactionManager,
	eventPublisher shared.EventPublisher,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo:    expenseRepo,
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		taxRepo:        taxRepo,
		periods:        periodGuard{periodRepo: periodRepo},
		txManager:      txManager,
		eventPublisher: eventPublisher,
	}
}

// SubmitExpenseRequest represents a request to submit an expense claim
type SubmitExpenseRequest struct {
	Category         string          `json:"category" binding:"required"`
	Description      string          `json:"description" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	TaxName          string          `json:"tax_name"`
	ExpenseDate      time.Time       `json:"expense_date" binding:"required"`
	ProjectID        *uuid.UUID      `json:"project_id"`
	VendorID         *uuid.UUID      `json:"vendor_id"`
	FundingAccountID *uuid.UUID      `json:"funding_account_id"`
	Notes            string          `json:"notes"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID               uuid.UUID       `json:"id"`
	ExpenseNumber    string          `json:"expense_number"`
	Category         string          `json:"category"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Status           string          `json:"status"`
	ExpenseDate      time.Time       `json:"expense_date"`
	ProjectID        *uuid.UUID      `json:"project_id,omitempty"`
	VendorID         *uuid.UUID      `json:"vendor_id,omitempty"`
	FundingAccountID *uuid.UUID      `json:"funding_account_id,omitempty"`
	SubmittedBy      uuid.UUID       `json:"submitted_by"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedDate     *time.Time      `json:"approved_date,omitempty"`
	RejectedBy       *uuid.UUID      `json:"rejected_by,omitempty"`
	RejectReason     string          `json:"reject_reason,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	OffLedger        bool            `json:"off_ledger"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ExpenseListFilter defines filtering options for expense list queries
type ExpenseListFilter struct {
	Search    string     `form:"search"`
	ProjectID *uuid.UUID `form:"project_id"`
	VendorID  *uuid.UUID `form:"vendor_id"`
	Category  string     `form:"category"`
	Status    string     `form:"status"`
	FromDate  *time.Time `form:"from_date"`
	ToDate    *time.Time `form:"to_date"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}

// Submit creates a new expense claim in pending status. When a tax name is
// given and no tax amount, the tax is derived from the rate in force on the
// expense date.
func (s *ExpenseService) Submit(ctx context.Context, actor identity.Actor, req SubmitExpenseRequest) (*ExpenseResponse, error) {
	if err := actor.Authorize(identity.CapExpenseSubmit); err != nil {
		return nil, err
	}
	if err := s.periods.ensureOpen(ctx, req.ExpenseDate); err != nil {
		return nil, err
	}

	taxAmount := req.TaxAmount
	if req.TaxName != "" && taxAmount.IsZero() {
		config, err := s.taxRepo.FindRateAsOf(ctx, req.TaxName, req.ExpenseDate)
		if err != nil {
			return nil, err
		}
		if config == nil {
			return nil, shared.NewDomainError("NOT_FOUND", "No tax configuration named "+req.TaxName+" is in force on the expense date")
		}
		taxAmount = config.TaxFor(req.Amount)
	}

	expenseNumber, err := s.expenseRepo.GenerateExpenseNumber(ctx)
	if err != nil {
		return nil, err
	}

	expense, err := finance.NewExpense(
		expenseNumber,
		finance.ExpenseCategory(req.Category),
		req.Description,
		valueobject.NewMoneyINR(req.Amount),
		valueobject.NewMoneyINR(taxAmount),
		req.ExpenseDate,
		req.ProjectID,
		req.VendorID,
		req.FundingAccountID,
		actor.UserID,
	)
	if err != nil {
		return nil, err
	}
	expense.Notes = req.Notes

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}
	return toExpenseResponse(expense), nil
}

// Approve approves a pending expense
func (s *ExpenseService) Approve(ctx context.Context, actor identity.Actor, expenseID uuid.UUID) (*ExpenseResponse, error) {
	if err := actor.Authorize(identity.CapExpenseApprove); err != nil {
		return nil, err
	}

	expense, err := s.findExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := expense.Approve(actor.UserID); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.SaveWithLock(ctx, expense); err != nil {
		return nil, err
	}
	return toExpenseResponse(expense), nil
}

// Reject rejects a pending expense with a reason
func (s *ExpenseService) Reject(ctx context.Context, actor identity.Actor, expenseID uuid.UUID, reason string) (*ExpenseResponse, error) {
	if err := actor.Authorize(identity.CapExpenseApprove); err != nil {
		return nil, err
	}

	expense, err := s.findExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := expense.Reject(actor.UserID, reason); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.SaveWithLock(ctx, expense); err != nil {
		return nil, err
	}
	return toExpenseResponse(expense), nil
}

// MarkPaid pays an approved expense. Funded expenses post a withdrawal to
// the funding account in the same transaction; unfunded expenses require
// the caller to explicitly accept an off-ledger payment.
func (s *ExpenseService) MarkPaid(ctx context.Context, actor identity.Actor, expenseID uuid.UUID, offLedger bool) (*ExpenseResponse, error) {
	if err := actor.Authorize(identity.CapExpensePay); err != nil {
		return nil, err
	}

	var expense *finance.Expense
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		expense, err = s.findExpense(txCtx, expenseID)
		if err != nil {
			return err
		}
		if err := s.periods.ensureOpen(txCtx, expense.ExpenseDate); err != nil {
			return err
		}

		if err := expense.MarkPaid(offLedger); err != nil {
			return err
		}

		if expense.FundingAccountID != nil {
			account, err := s.accountRepo.FindByID(txCtx, *expense.FundingAccountID)
			if err != nil {
				return err
			}
			if account == nil {
				return shared.NewDomainError("NOT_FOUND", "Funding account not found")
			}

			expenseRef := expense.ID
			entry, err := account.Post(
				finance.TransactionTypeWithdrawal,
				expense.GetTotalAmountMoney(),
				expense.ExpenseDate,
				expense.ExpenseNumber,
				"Expense "+expense.ExpenseNumber+": "+expense.Description,
				finance.PostingCause{ExpenseID: &expenseRef},
				actor.UserID,
			)
			if err != nil {
				return err
			}
			if err := s.accountRepo.SaveWithLock(txCtx, account); err != nil {
				return err
			}
			if err := s.ledgerRepo.Append(txCtx, entry); err != nil {
				return err
			}
			publishEvents(ctx, s.eventPublisher, account)
		}

		return s.expenseRepo.SaveWithLock(txCtx, expense)
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, expense)

	return toExpenseResponse(expense), nil
}

// GetByID gets an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.findExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	return toExpenseResponse(expense), nil
}

// List lists expenses with filtering
func (s *ExpenseService) List(ctx context.Context, filter ExpenseListFilter) (*shared.Paginated[ExpenseResponse], error) {
	domainFilter := finance.ExpenseFilter{
		ProjectID: filter.ProjectID,
		VendorID:  filter.VendorID,
		FromDate:  filter.FromDate,
		ToDate:    filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Category != "" {
		category := finance.ExpenseCategory(filter.Category)
		domainFilter.Category = &category
	}
	if filter.Status != "" {
		status := finance.ExpenseStatus(filter.Status)
		domainFilter.Status = &status
	}

	expenses, err := s.expenseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.expenseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = *toExpenseResponse(&expenses[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// CategorySummary sums paid expenses per category over a date range
func (s *ExpenseService) CategorySummary(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	sums, err := s.expenseRepo.SumPaidByCategory(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary := make(map[string]decimal.Decimal, len(sums))
	for category, sum := range sums {
		summary[string(category)] = sum
	}
	return summary, nil
}

func (s *ExpenseService) findExpense(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Expense not found")
	}
	return expense, nil
}

func toExpenseResponse(e *finance.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:               e.ID,
		ExpenseNumber:    e.ExpenseNumber,
		Category:         string(e.Category),
		Description:      e.Description,
		Amount:           e.Amount,
		TaxAmount:        e.TaxAmount,
		TotalAmount:      e.TotalAmount,
		Status:           string(e.Status),
		ExpenseDate:      e.ExpenseDate,
		ProjectID:        e.ProjectID,
		VendorID:         e.VendorID,
		FundingAccountID: e.FundingAccountID,
		SubmittedBy:      e.SubmittedBy,
		ApprovedBy:       e.ApprovedBy,
		ApprovedDate:     e.ApprovedDate,
		RejectedBy:       e.RejectedBy,
		RejectReason:     e.RejectReason,
		PaidAt:           e.PaidAt,
		OffLedger:        e.OffLedger,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
		Version:          e.Version,
	}
}
