package finance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/identity"
	"github.com/himfirm/backend/internal/domain/shared"
)

// DashboardService aggregates read-only figures for the finance dashboard
type DashboardService struct {
	invoiceRepo finance.InvoiceRepository
	accountRepo finance.BankAccountRepository
	expenseRepo finance.ExpenseRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	invoiceRepo finance.InvoiceRepository,
	accountRepo finance.BankAccountRepository,
	expenseRepo finance.ExpenseRepository,
) *DashboardService {
	return &DashboardService{
		invoiceRepo: invoiceRepo,
		accountRepo: accountRepo,
		expenseRepo: expenseRepo,
	}
}

// AgingBucket groups overdue invoices by days past due
type AgingBucket struct {
	Label  string          `json:"label"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// DashboardSummary is the headline figures for the finance dashboard
type DashboardSummary struct {
	OutstandingReceivables decimal.Decimal            `json:"outstanding_receivables"`
	OverdueCount           int                        `json:"overdue_count"`
	OverdueAmount          decimal.Decimal            `json:"overdue_amount"`
	Aging                  []AgingBucket              `json:"aging"`
	BankBalanceTotal       decimal.Decimal            `json:"bank_balance_total"`
	ExpensesByCategory     map[string]decimal.Decimal `json:"expenses_by_category"`
	From                   time.Time                  `json:"from"`
	To                     time.Time                  `json:"to"`
}

// Summary builds the dashboard for a date range. Overdue classification is
// computed against the current time, never read from stored state.
func (s *DashboardService) Summary(ctx context.Context, actor identity.Actor, from, to time.Time) (*DashboardSummary, error) {
	if err := actor.Authorize(identity.CapDashboardView); err != nil {
		return nil, err
	}

	now := time.Now()

	outstanding, err := s.invoiceRepo.SumOutstanding(ctx)
	if err != nil {
		return nil, err
	}

	overdue, err := s.invoiceRepo.FindOverdue(ctx, now, finance.InvoiceFilter{})
	if err != nil {
		return nil, err
	}

	buckets := []AgingBucket{
		{Label: "0-30", Amount: decimal.Zero},
		{Label: "31-60", Amount: decimal.Zero},
		{Label: "61-90", Amount: decimal.Zero},
		{Label: "90+", Amount: decimal.Zero},
	}
	overdueAmount := decimal.Zero
	for i := range overdue {
		balance := overdue[i].BalanceDue()
		overdueAmount = overdueAmount.Add(balance)

		days := overdue[i].DaysOverdue(now)
		idx := 0
		switch {
		case days > 90:
			idx = 3
		case days > 60:
			idx = 2
		case days > 30:
			idx = 1
		}
		buckets[idx].Count++
		buckets[idx].Amount = buckets[idx].Amount.Add(balance)
	}

	accountFilter := shared.Filter{Page: 1, PageSize: 500}
	accounts, err := s.accountRepo.FindAll(ctx, accountFilter)
	if err != nil {
		return nil, err
	}
	bankTotal := decimal.Zero
	for i := range accounts {
		if accounts[i].IsActive {
			bankTotal = bankTotal.Add(accounts[i].CurrentBalance)
		}
	}

	byCategory, err := s.expenseRepo.SumPaidByCategory(ctx, from, to)
	if err != nil {
		return nil, err
	}
	expenses := make(map[string]decimal.Decimal, len(byCategory))
	for category, sum := range byCategory {
		expenses[string(category)] = sum
	}

	return &DashboardSummary{
		OutstandingReceivables: outstanding,
		OverdueCount:           len(overdue),
		OverdueAmount:          overdueAmount,
		Aging:                  buckets,
		BankBalanceTotal:       bankTotal,
		ExpensesByCategory:     expenses,
		From:                   from,
		To:                     to,
	}, nil
}
