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

// BankService manages bank accounts and their append-only ledgers
type BankService struct {
	accountRepo    finance.BankAccountRepository
	ledgerRepo     finance.BankTransactionRepository
	periods        periodGuard
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
}

// NewBankService creates a new BankService
func NewBankService(
	accountRepo finance.BankAccountRepository,
	ledgerRepo finance.BankTransactionRepository,
	periodRepo finance.FinancialPeriodRepository,
	txManager shared.TransactionManager,
	eventPublisher shared.EventPublisher,
) *BankService {
	return &BankService{
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		periods:        periodGuard{periodRepo: periodRepo},
		txManager:      txManager,
		eventPublisher: eventPublisher,
	}
}

// CreateBankAccountRequest represents a request to create a bank account
type CreateBankAccountRequest struct {
	AccountName    string          `json:"account_name" binding:"required"`
	AccountNumber  string          `json:"account_number" binding:"required"`
	BankName       string          `json:"bank_name" binding:"required"`
	Branch         string          `json:"branch"`
	IFSCCode       string          `json:"ifsc_code"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	IsPrimary      bool            `json:"is_primary"`
	AllowNegative  *bool           `json:"allow_negative"`
}

// PostTransactionRequest represents a manual ledger posting
type PostTransactionRequest struct {
	Type            string          `json:"type" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
	Reference       string          `json:"reference"`
	Description     string          `json:"description" binding:"required"`
}

// TransferRequest represents a transfer between two accounts
type TransferRequest struct {
	FromAccountID   uuid.UUID       `json:"from_account_id" binding:"required"`
	ToAccountID     uuid.UUID       `json:"to_account_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
	Reference       string          `json:"reference"`
	Description     string          `json:"description"`
}

// BankAccountResponse represents a bank account in API responses
type BankAccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	AccountName    string          `json:"account_name"`
	AccountNumber  string          `json:"account_number"`
	BankName       string          `json:"bank_name"`
	Branch         string          `json:"branch,omitempty"`
	IFSCCode       string          `json:"ifsc_code,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	IsPrimary      bool            `json:"is_primary"`
	AllowNegative  bool            `json:"allow_negative"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// BankTransactionResponse represents a ledger entry in API responses
type BankTransactionResponse struct {
	ID                    uuid.UUID       `json:"id"`
	AccountID             uuid.UUID       `json:"account_id"`
	Type                  string          `json:"type"`
	Flow                  string          `json:"flow"`
	Amount                decimal.Decimal `json:"amount"`
	SignedAmount          decimal.Decimal `json:"signed_amount"`
	BalanceAfter          decimal.Decimal `json:"balance_after"`
	TransactionDate       time.Time       `json:"transaction_date"`
	Reference             string          `json:"reference,omitempty"`
	Description           string          `json:"description,omitempty"`
	PaymentID             *uuid.UUID      `json:"payment_id,omitempty"`
	ExpenseID             *uuid.UUID      `json:"expense_id,omitempty"`
	CounterpartyAccountID *uuid.UUID      `json:"counterparty_account_id,omitempty"`
	ReversesID            *uuid.UUID      `json:"reverses_id,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// BankTransactionListFilter defines filtering options for ledger queries
type BankTransactionListFilter struct {
	Type     string     `form:"type"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// CreateAccount creates a new bank account
func (s *BankService) CreateAccount(ctx context.Context, actor identity.Actor, req CreateBankAccountRequest) (*BankAccountResponse, error) {
	if err := actor.Authorize(identity.CapBankManage); err != nil {
		return nil, err
	}

	existing, err := s.accountRepo.FindByAccountNumber(ctx, req.AccountNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A bank account with this number already exists")
	}

	account, err := finance.NewBankAccount(
		req.AccountName,
		req.AccountNumber,
		req.BankName,
		req.Branch,
		req.IFSCCode,
		valueobject.NewMoneyINR(req.OpeningBalance),
		actor.UserID,
	)
	if err != nil {
		return nil, err
	}
	if req.IsPrimary {
		account.SetPrimary(true)
	}
	if req.AllowNegative != nil {
		account.AllowNegative = *req.AllowNegative
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toBankAccountResponse(account), nil
}

// GetAccount gets a bank account by ID
func (s *BankService) GetAccount(ctx context.Context, id uuid.UUID) (*BankAccountResponse, error) {
	account, err := s.findAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBankAccountResponse(account), nil
}

// ListAccounts lists bank accounts
func (s *BankService) ListAccounts(ctx context.Context, filter shared.Filter) ([]BankAccountResponse, error) {
	accounts, err := s.accountRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]BankAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = *toBankAccountResponse(&accounts[i])
	}
	return responses, nil
}

// Post appends a manual ledger entry (deposit, withdrawal, fee or interest)
// and moves the account balance in the same transaction
func (s *BankService) Post(ctx context.Context, actor identity.Actor, accountID uuid.UUID, req PostTransactionRequest) (*BankTransactionResponse, error) {
	if err := actor.Authorize(identity.CapBankManage); err != nil {
		return nil, err
	}
	if err := s.periods.ensureOpen(ctx, req.TransactionDate); err != nil {
		return nil, err
	}

	var entry *finance.BankTransaction
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.findAccount(txCtx, accountID)
		if err != nil {
			return err
		}

		entry, err = account.Post(
			finance.TransactionType(req.Type),
			valueobject.NewMoneyINR(req.Amount),
			req.TransactionDate,
			req.Reference,
			req.Description,
			finance.PostingCause{},
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
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toBankTransactionResponse(entry), nil
}

// Transfer moves money between two accounts: a debit leg on the source and
// a credit leg on the destination, both in one transaction
func (s *BankService) Transfer(ctx context.Context, actor identity.Actor, req TransferRequest) (*BankTransactionResponse, error) {
	if err := actor.Authorize(identity.CapBankManage); err != nil {
		return nil, err
	}
	if req.FromAccountID == req.ToAccountID {
		return nil, shared.NewDomainError("INVALID_TRANSFER", "Cannot transfer to the same account")
	}
	if err := s.periods.ensureOpen(ctx, req.TransactionDate); err != nil {
		return nil, err
	}

	amount := valueobject.NewMoneyINR(req.Amount)

	var outgoing *finance.BankTransaction
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		from, err := s.findAccount(txCtx, req.FromAccountID)
		if err != nil {
			return err
		}
		to, err := s.findAccount(txCtx, req.ToAccountID)
		if err != nil {
			return err
		}

		outgoing, err = from.PostTransfer(amount, true, to.ID, req.TransactionDate, req.Reference, req.Description, actor.UserID)
		if err != nil {
			return err
		}
		incoming, err := to.PostTransfer(amount, false, from.ID, req.TransactionDate, req.Reference, req.Description, actor.UserID)
		if err != nil {
			return err
		}

		if err := s.accountRepo.SaveWithLock(txCtx, from); err != nil {
			return err
		}
		if err := s.accountRepo.SaveWithLock(txCtx, to); err != nil {
			return err
		}
		if err := s.ledgerRepo.Append(txCtx, outgoing); err != nil {
			return err
		}
		if err := s.ledgerRepo.Append(txCtx, incoming); err != nil {
			return err
		}
		publishEvents(ctx, s.eventPublisher, from, to)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toBankTransactionResponse(outgoing), nil
}

// ReverseTransaction posts an offsetting entry for a ledger entry. The
// original is never mutated or deleted.
func (s *BankService) ReverseTransaction(ctx context.Context, actor identity.Actor, transactionID uuid.UUID, reference string) (*BankTransactionResponse, error) {
	if err := actor.Authorize(identity.CapBankManage); err != nil {
		return nil, err
	}

	var reversal *finance.BankTransaction
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		original, err := s.ledgerRepo.FindByID(txCtx, transactionID)
		if err != nil {
			return err
		}
		if original == nil {
			return shared.NewDomainError("NOT_FOUND", "Ledger entry not found")
		}

		account, err := s.findAccount(txCtx, original.AccountID)
		if err != nil {
			return err
		}

		reversal, err = account.Reverse(original, reference, actor.UserID)
		if err != nil {
			return err
		}

		if err := s.accountRepo.SaveWithLock(txCtx, account); err != nil {
			return err
		}
		if err := s.ledgerRepo.Append(txCtx, reversal); err != nil {
			return err
		}
		publishEvents(ctx, s.eventPublisher, account)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toBankTransactionResponse(reversal), nil
}

// Statement lists ledger entries for an account, oldest first
func (s *BankService) Statement(ctx context.Context, accountID uuid.UUID, filter BankTransactionListFilter) ([]BankTransactionResponse, error) {
	domainFilter := finance.BankTransactionFilter{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Type != "" {
		txType := finance.TransactionType(filter.Type)
		domainFilter.Type = &txType
	}

	entries, err := s.ledgerRepo.FindByAccount(ctx, accountID, domainFilter)
	if err != nil {
		return nil, err
	}
	responses := make([]BankTransactionResponse, len(entries))
	for i := range entries {
		responses[i] = *toBankTransactionResponse(&entries[i])
	}
	return responses, nil
}

// ReconciliationResult reports a reconciliation check over one account
type ReconciliationResult struct {
	AccountID       uuid.UUID       `json:"account_id"`
	AccountNumber   string          `json:"account_number"`
	StoredBalance   decimal.Decimal `json:"stored_balance"`
	ComputedBalance decimal.Decimal `json:"computed_balance"`
	EntryCount      int             `json:"entry_count"`
	Consistent      bool            `json:"consistent"`
}

// Reconcile recomputes the account balance from its full ledger and checks
// it against the stored balance. A mismatch surfaces a consistency error.
func (s *BankService) Reconcile(ctx context.Context, actor identity.Actor, accountID uuid.UUID) (*ReconciliationResult, error) {
	if err := actor.Authorize(identity.CapBankReconcile); err != nil {
		return nil, err
	}

	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.FindByAccount(ctx, accountID, finance.BankTransactionFilter{})
	if err != nil {
		return nil, err
	}

	computed := account.OpeningBalance
	for i := range entries {
		computed = computed.Add(entries[i].SignedAmount())
	}

	result := &ReconciliationResult{
		AccountID:       account.ID,
		AccountNumber:   account.AccountNumber,
		StoredBalance:   account.CurrentBalance,
		ComputedBalance: computed,
		EntryCount:      len(entries),
		Consistent:      computed.Equal(account.CurrentBalance),
	}
	if !result.Consistent {
		return result, account.VerifyBalance(entries)
	}
	return result, nil
}

// BalanceAsOf returns the account balance at the end of the given date
func (s *BankService) BalanceAsOf(ctx context.Context, accountID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	return s.ledgerRepo.BalanceAsOf(ctx, accountID, asOf)
}

// SetPrimary marks an account as the default deposit account
func (s *BankService) SetPrimary(ctx context.Context, actor identity.Actor, accountID uuid.UUID) (*BankAccountResponse, error) {
	if err := actor.Authorize(identity.CapBankManage); err != nil {
		return nil, err
	}

	var account *finance.BankAccount
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.accountRepo.FindPrimary(txCtx)
		if err != nil {
			return err
		}
		if current != nil && current.ID != accountID {
			current.SetPrimary(false)
			if err := s.accountRepo.SaveWithLock(txCtx, current); err != nil {
				return err
			}
		}

		account, err = s.findAccount(txCtx, accountID)
		if err != nil {
			return err
		}
		account.SetPrimary(true)
		return s.accountRepo.SaveWithLock(txCtx, account)
	})
	if err != nil {
		return nil, err
	}
	return toBankAccountResponse(account), nil
}

// Deactivate marks an account inactive; no further postings are accepted
func (s *BankService) Deactivate(ctx context.Context, actor identity.Actor, accountID uuid.UUID) (*BankAccountResponse, error) {
	if err := actor.Authorize(identity.CapBankManage); err != nil {
		return nil, err
	}
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	account.Deactivate()
	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	return toBankAccountResponse(account), nil
}

func (s *BankService) findAccount(ctx context.Context, id uuid.UUID) (*finance.BankAccount, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bank account not found")
	}
	return account, nil
}

func toBankAccountResponse(a *finance.BankAccount) *BankAccountResponse {
	return &BankAccountResponse{
		ID:             a.ID,
		AccountName:    a.AccountName,
		AccountNumber:  a.AccountNumber,
		BankName:       a.BankName,
		Branch:         a.Branch,
		IFSCCode:       a.IFSCCode,
		OpeningBalance: a.OpeningBalance,
		CurrentBalance: a.CurrentBalance,
		IsActive:       a.IsActive,
		IsPrimary:      a.IsPrimary,
		AllowNegative:  a.AllowNegative,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Version:        a.Version,
	}
}

func toBankTransactionResponse(t *finance.BankTransaction) *BankTransactionResponse {
	return &BankTransactionResponse{
		ID:                    t.ID,
		AccountID:             t.AccountID,
		Type:                  string(t.Type),
		Flow:                  string(t.Flow),
		Amount:                t.Amount,
		SignedAmount:          t.SignedAmount(),
		BalanceAfter:          t.BalanceAfter,
		TransactionDate:       t.TransactionDate,
		Reference:             t.Reference,
		Description:           t.Description,
		PaymentID:             t.PaymentID,
		ExpenseID:             t.ExpenseID,
		CounterpartyAccountID: t.CounterpartyAccountID,
		ReversesID:            t.ReversesID,
		CreatedAt:             t.CreatedAt,
	}
}
