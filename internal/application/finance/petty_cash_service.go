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

// PettyCashService manages petty cash floats and their ledgers. Replenishing
// from a bank account posts the matching withdrawal in the same transaction.
type PettyCashService struct {
	pettyCashRepo finance.PettyCashRepository
	accountRepo   finance.BankAccountRepository
	ledgerRepo    finance.BankTransactionRepository
	periods       periodGuard
	txManager     shared.TransactionManager
}

// NewPettyCashService creates a new PettyCashService
func NewPettyCashService(
	pettyCashRepo finance.PettyCashRepository,
	accountRepo finance.BankAccountRepository,
	ledgerRepo finance.BankTransactionRepository,
	periodRepo finance.FinancialPeriodRepository,
	txManager shared.TransactionManager,
) *PettyCashService {
	return &PettyCashService{
		pettyCashRepo: pettyCashRepo,
		accountRepo:   accountRepo,
		ledgerRepo:    ledgerRepo,
		periods:       periodGuard{periodRepo: periodRepo},
		txManager:     txManager,
	}
}

// CreatePettyCashRequest represents a request to open a petty cash float
type CreatePettyCashRequest struct {
	Name           string          `json:"name" binding:"required"`
	CustodianID    uuid.UUID       `json:"custodian_id" binding:"required"`
	CustodianName  string          `json:"custodian_name" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	MaximumLimit   decimal.Decimal `json:"maximum_limit" binding:"required"`
}

// PettyCashMovementRequest represents a withdrawal or reimbursement
type PettyCashMovementRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	TransactionDate time.Time       `json:"transaction_date" binding:"required"`
	Purpose         string          `json:"purpose" binding:"required"`
}

// ReplenishRequest represents a float top-up, optionally funded from a bank account
type ReplenishRequest struct {
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	TransactionDate  time.Time       `json:"transaction_date" binding:"required"`
	FundingAccountID *uuid.UUID      `json:"funding_account_id"`
}

// PettyCashAccountResponse represents a petty cash account in API responses
type PettyCashAccountResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	CustodianID    uuid.UUID       `json:"custodian_id"`
	CustodianName  string          `json:"custodian_name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	MaximumLimit   decimal.Decimal `json:"maximum_limit"`
	Headroom       decimal.Decimal `json:"headroom"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version"`
}

// PettyCashTransactionResponse represents a float ledger entry
type PettyCashTransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	TransactionDate time.Time       `json:"transaction_date"`
	Purpose         string          `json:"purpose,omitempty"`
	RequestedBy     uuid.UUID       `json:"requested_by"`
	ApprovedBy      *uuid.UUID      `json:"approved_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CreateAccount opens a new petty cash float
func (s *PettyCashService) CreateAccount(ctx context.Context, actor identity.Actor, req CreatePettyCashRequest) (*PettyCashAccountResponse, error) {
	if err := actor.Authorize(identity.CapPettyCashReplenish); err != nil {
		return nil, err
	}

	account, err := finance.NewPettyCashAccount(
		req.Name,
		req.CustodianID,
		req.CustodianName,
		valueobject.NewMoneyINR(req.OpeningBalance),
		valueobject.NewMoneyINR(req.MaximumLimit),
		actor.UserID,
	)
	if err != nil {
		return nil, err
	}
	if err := s.pettyCashRepo.Save(ctx, account); err != nil {
		return nil, err
	}
	return toPettyCashAccountResponse(account), nil
}

// Withdraw draws cash from the float
func (s *PettyCashService) Withdraw(ctx context.Context, actor identity.Actor, accountID uuid.UUID, req PettyCashMovementRequest) (*PettyCashTransactionResponse, error) {
	if err := actor.Authorize(identity.CapPettyCashSpend); err != nil {
		return nil, err
	}
	if err := s.periods.ensureOpen(ctx, req.TransactionDate); err != nil {
		return nil, err
	}

	var entry *finance.PettyCashTransaction
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.findFloat(txCtx, accountID)
		if err != nil {
			return err
		}

		entry, err = account.Withdraw(valueobject.NewMoneyINR(req.Amount), req.TransactionDate, req.Purpose, actor.UserID)
		if err != nil {
			return err
		}

		if err := s.pettyCashRepo.SaveWithLock(txCtx, account); err != nil {
			return err
		}
		return s.pettyCashRepo.AppendTransaction(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return toPettyCashTransactionResponse(entry), nil
}

// Replenish tops up the float. When a funding account is named, the bank
// withdrawal posts in the same transaction as the float credit.
func (s *PettyCashService) Replenish(ctx context.Context, actor identity.Actor, accountID uuid.UUID, req ReplenishRequest) (*PettyCashTransactionResponse, error) {
	if err := actor.Authorize(identity.CapPettyCashReplenish); err != nil {
		return nil, err
	}
	if err := s.periods.ensureOpen(ctx, req.TransactionDate); err != nil {
		return nil, err
	}

	var entry *finance.PettyCashTransaction
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.findFloat(txCtx, accountID)
		if err != nil {
			return err
		}

		entry, err = account.Replenish(valueobject.NewMoneyINR(req.Amount), req.TransactionDate, actor.UserID, actor.UserID)
		if err != nil {
			return err
		}

		if req.FundingAccountID != nil {
			bankAccount, err := s.accountRepo.FindByID(txCtx, *req.FundingAccountID)
			if err != nil {
				return err
			}
			if bankAccount == nil {
				return shared.NewDomainError("NOT_FOUND", "Funding account not found")
			}

			bankEntry, err := bankAccount.Post(
				finance.TransactionTypeWithdrawal,
				valueobject.NewMoneyINR(req.Amount),
				req.TransactionDate,
				"PETTY-"+account.Name,
				"Petty cash replenishment for "+account.Name,
				finance.PostingCause{},
				actor.UserID,
			)
			if err != nil {
				return err
			}
			if err := s.accountRepo.SaveWithLock(txCtx, bankAccount); err != nil {
				return err
			}
			if err := s.ledgerRepo.Append(txCtx, bankEntry); err != nil {
				return err
			}
		}

		if err := s.pettyCashRepo.SaveWithLock(txCtx, account); err != nil {
			return err
		}
		return s.pettyCashRepo.AppendTransaction(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return toPettyCashTransactionResponse(entry), nil
}

// Reimburse returns unspent cash to the float
func (s *PettyCashService) Reimburse(ctx context.Context, actor identity.Actor, accountID uuid.UUID, req PettyCashMovementRequest) (*PettyCashTransactionResponse, error) {
	if err := actor.Authorize(identity.CapPettyCashSpend); err != nil {
		return nil, err
	}
	if err := s.periods.ensureOpen(ctx, req.TransactionDate); err != nil {
		return nil, err
	}

	var entry *finance.PettyCashTransaction
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		account, err := s.findFloat(txCtx, accountID)
		if err != nil {
			return err
		}

		entry, err = account.Reimburse(valueobject.NewMoneyINR(req.Amount), req.TransactionDate, req.Purpose, actor.UserID)
		if err != nil {
			return err
		}

		if err := s.pettyCashRepo.SaveWithLock(txCtx, account); err != nil {
			return err
		}
		return s.pettyCashRepo.AppendTransaction(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	return toPettyCashTransactionResponse(entry), nil
}

// ChangeCustodian hands the float to a new custodian
func (s *PettyCashService) ChangeCustodian(ctx context.Context, actor identity.Actor, accountID, custodianID uuid.UUID, custodianName string) (*PettyCashAccountResponse, error) {
	if err := actor.Authorize(identity.CapPettyCashReplenish); err != nil {
		return nil, err
	}

	account, err := s.findFloat(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.ChangeCustodian(custodianID, custodianName); err != nil {
		return nil, err
	}
	if err := s.pettyCashRepo.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	return toPettyCashAccountResponse(account), nil
}

// GetAccount gets a petty cash account by ID
func (s *PettyCashService) GetAccount(ctx context.Context, id uuid.UUID) (*PettyCashAccountResponse, error) {
	account, err := s.findFloat(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPettyCashAccountResponse(account), nil
}

// ListAccounts lists petty cash accounts
func (s *PettyCashService) ListAccounts(ctx context.Context, filter shared.Filter) ([]PettyCashAccountResponse, error) {
	accounts, err := s.pettyCashRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]PettyCashAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = *toPettyCashAccountResponse(&accounts[i])
	}
	return responses, nil
}

// Transactions lists float ledger entries, oldest first
func (s *PettyCashService) Transactions(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]PettyCashTransactionResponse, error) {
	entries, err := s.pettyCashRepo.FindTransactions(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]PettyCashTransactionResponse, len(entries))
	for i := range entries {
		responses[i] = *toPettyCashTransactionResponse(&entries[i])
	}
	return responses, nil
}

func (s *PettyCashService) findFloat(ctx context.Context, id uuid.UUID) (*finance.PettyCashAccount, error) {
	account, err := s.pettyCashRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Petty cash account not found")
	}
	return account, nil
}

func toPettyCashAccountResponse(a *finance.PettyCashAccount) *PettyCashAccountResponse {
	return &PettyCashAccountResponse{
		ID:             a.ID,
		Name:           a.Name,
		CustodianID:    a.CustodianID,
		CustodianName:  a.CustodianName,
		CurrentBalance: a.CurrentBalance,
		MaximumLimit:   a.MaximumLimit,
		Headroom:       a.MaximumLimit.Sub(a.CurrentBalance),
		IsActive:       a.IsActive,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		Version:        a.Version,
	}
}

func toPettyCashTransactionResponse(t *finance.PettyCashTransaction) *PettyCashTransactionResponse {
	return &PettyCashTransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		Type:            string(t.Type),
		Amount:          t.Amount,
		BalanceAfter:    t.BalanceAfter,
		TransactionDate: t.TransactionDate,
		Purpose:         t.Purpose,
		RequestedBy:     t.RequestedBy,
		ApprovedBy:      t.ApprovedBy,
		CreatedAt:       t.CreatedAt,
	}
}
