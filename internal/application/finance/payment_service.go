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

// PaymentService processes customer payments. Recording, clearing and
// bouncing a payment each mutate the payment, its invoice and the bank
// ledger inside one transaction; partial effects never persist.
type PaymentService struct {
	paymentRepo    finance.PaymentRepository
	invoiceRepo    finance.InvoiceRepository
	accountRepo    finance.BankAccountRepository
	ledgerRepo     finance.BankTransactionRepository
	periods        periodGuard
	txManager      shared.TransactionManager
	eventPublisher shared.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo finance.PaymentRepository,
	invoiceRepo finance.InvoiceRepository,
	accountRepo finance.BankAccountRepository,
	ledgerRepo finance.BankTransactionRepository,
	periodRepo finance.FinancialPeriodRepository,
	txManager shared.TransactionManager,
	eventPublisher shared.EventPublisher,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		invoiceRepo:    invoiceRepo,
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		periods:        periodGuard{periodRepo: periodRepo},
		txManager:      txManager,
		eventPublisher: eventPublisher,
	}
}

// RecordPaymentRequest represents a request to record a payment
type RecordPaymentRequest struct {
	InvoiceID        *uuid.UUID      `json:"invoice_id"`
	CustomerID       uuid.UUID       `json:"customer_id" binding:"required"`
	CustomerName     string          `json:"customer_name" binding:"required"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	Method           string          `json:"method" binding:"required"`
	DepositAccountID *uuid.UUID      `json:"deposit_account_id"`
	PaymentDate      time.Time       `json:"payment_date" binding:"required"`
	ChequeNumber     string          `json:"cheque_number"`
	ChequeDate       *time.Time      `json:"cheque_date"`
	BankName         string          `json:"bank_name"`
	ReferenceNumber  string          `json:"reference_number"`
	Notes            string          `json:"notes"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID               uuid.UUID       `json:"id"`
	ReceiptNumber    string          `json:"receipt_number"`
	InvoiceID        *uuid.UUID      `json:"invoice_id,omitempty"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	Amount           decimal.Decimal `json:"amount"`
	Method           string          `json:"method"`
	Status           string          `json:"status"`
	DepositAccountID *uuid.UUID      `json:"deposit_account_id,omitempty"`
	PaymentDate      time.Time       `json:"payment_date"`
	ChequeNumber     string          `json:"cheque_number,omitempty"`
	ChequeDate       *time.Time      `json:"cheque_date,omitempty"`
	BankName         string          `json:"bank_name,omitempty"`
	ReferenceNumber  string          `json:"reference_number,omitempty"`
	ClearedAt        *time.Time      `json:"cleared_at,omitempty"`
	BouncedAt        *time.Time      `json:"bounced_at,omitempty"`
	BounceReason     string          `json:"bounce_reason,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	InvoiceID  *uuid.UUID `form:"invoice_id"`
	Status     string     `form:"status"`
	Method     string     `form:"method"`
	FromDate   *time.Time `form:"from_date"`
	ToDate     *time.Time `form:"to_date"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// Record records a payment against an invoice. Non-deferring methods clear
// immediately: the invoice paid amount and the bank ledger move in the same
// transaction as the payment row. Post-dated cheques stay pending and touch
// neither until they clear.
func (s *PaymentService) Record(ctx context.Context, actor identity.Actor, req RecordPaymentRequest) (*PaymentResponse, error) {
	if err := actor.Authorize(identity.CapPaymentRecord); err != nil {
		return nil, err
	}
	if err := s.periods.ensureOpen(ctx, req.PaymentDate); err != nil {
		return nil, err
	}

	method := finance.PaymentMethod(req.Method)
	amount := valueobject.NewMoneyINR(req.Amount)

	var payment *finance.Payment
	var touched []eventSource
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		receiptNumber, err := s.paymentRepo.GenerateReceiptNumber(txCtx)
		if err != nil {
			return err
		}

		depositAccountID, err := s.resolveDepositAccount(txCtx, req.DepositAccountID, method)
		if err != nil {
			return err
		}

		payment, err = finance.NewPayment(
			receiptNumber,
			req.InvoiceID,
			req.CustomerID,
			req.CustomerName,
			amount,
			method,
			depositAccountID,
			req.PaymentDate,
			actor.UserID,
		)
		if err != nil {
			return err
		}
		payment.ReferenceNumber = req.ReferenceNumber
		payment.Notes = req.Notes

		if req.ChequeNumber != "" {
			chequeDate := req.PaymentDate
			if req.ChequeDate != nil {
				chequeDate = *req.ChequeDate
			}
			if err := payment.SetChequeDetails(req.ChequeNumber, chequeDate, req.BankName); err != nil {
				return err
			}
		}

		if payment.IsCleared() {
			if touched, err = s.settle(txCtx, payment, actor.UserID); err != nil {
				return err
			}
		}

		return s.paymentRepo.Save(txCtx, payment)
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, append(touched, payment)...)

	return toPaymentResponse(payment), nil
}

// MarkCleared clears a pending post-dated cheque. The invoice and bank
// ledger effects deferred at record time are applied now, atomically.
func (s *PaymentService) MarkCleared(ctx context.Context, actor identity.Actor, paymentID uuid.UUID) (*PaymentResponse, error) {
	if err := actor.Authorize(identity.CapPaymentClear); err != nil {
		return nil, err
	}

	var payment *finance.Payment
	var touched []eventSource
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		payment, err = s.findPayment(txCtx, paymentID)
		if err != nil {
			return err
		}

		if err := payment.MarkCleared(); err != nil {
			return err
		}
		if touched, err = s.settle(txCtx, payment, actor.UserID); err != nil {
			return err
		}

		return s.paymentRepo.SaveWithLock(txCtx, payment)
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, append(touched, payment)...)

	return toPaymentResponse(payment), nil
}

// MarkBounced bounces a cleared payment. The invoice paid amount is rolled
// back and the deposit is compensated by an offsetting withdrawal referencing
// BOUNCED-<receipt_number>; the original ledger entry is never touched.
func (s *PaymentService) MarkBounced(ctx context.Context, actor identity.Actor, paymentID uuid.UUID, reason string) (*PaymentResponse, error) {
	if err := actor.Authorize(identity.CapPaymentBounce); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Bounce reason is required")
	}

	var payment *finance.Payment
	var touched []eventSource
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		payment, err = s.findPayment(txCtx, paymentID)
		if err != nil {
			return err
		}

		if err := payment.MarkBounced(reason); err != nil {
			return err
		}

		if payment.InvoiceID != nil {
			invoice, err := s.findInvoice(txCtx, *payment.InvoiceID)
			if err != nil {
				return err
			}
			if err := invoice.ReversePayment(payment.GetAmountMoney()); err != nil {
				return err
			}
			if err := s.invoiceRepo.SaveWithLock(txCtx, invoice); err != nil {
				return err
			}
			touched = append(touched, invoice)
		}

		if payment.DepositAccountID != nil {
			account, err := s.reverseDeposit(txCtx, payment, actor.UserID)
			if err != nil {
				return err
			}
			touched = append(touched, account)
		}

		return s.paymentRepo.SaveWithLock(txCtx, payment)
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, append(touched, payment)...)

	return toPaymentResponse(payment), nil
}

// Cancel cancels a pending payment that never cleared
func (s *PaymentService) Cancel(ctx context.Context, actor identity.Actor, paymentID uuid.UUID, reason string) (*PaymentResponse, error) {
	if err := actor.Authorize(identity.CapPaymentRecord); err != nil {
		return nil, err
	}

	payment, err := s.findPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.Cancel(reason); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// GetByID gets a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.findPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(payment), nil
}

// List lists payments with filtering
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) (*shared.Paginated[PaymentResponse], error) {
	domainFilter := finance.PaymentFilter{
		CustomerID: filter.CustomerID,
		InvoiceID:  filter.InvoiceID,
		FromDate:   filter.FromDate,
		ToDate:     filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := finance.PaymentStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Method != "" {
		method := finance.PaymentMethod(filter.Method)
		domainFilter.Method = &method
	}

	payments, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.paymentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *toPaymentResponse(&payments[i])
	}

	result := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &result, nil
}

// settle applies a cleared payment to its invoice and posts the deposit
// to the bank ledger. Must run inside the caller's transaction; the touched
// aggregates are returned so their events publish only after commit.
func (s *PaymentService) settle(ctx context.Context, payment *finance.Payment, actorID uuid.UUID) ([]eventSource, error) {
	var touched []eventSource

	if payment.InvoiceID != nil {
		invoice, err := s.findInvoice(ctx, *payment.InvoiceID)
		if err != nil {
			return nil, err
		}
		if err := invoice.ApplyPayment(payment.GetAmountMoney()); err != nil {
			return nil, err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			return nil, err
		}
		touched = append(touched, invoice)
	}

	if payment.DepositAccountID != nil {
		account, err := s.findAccount(ctx, *payment.DepositAccountID)
		if err != nil {
			return nil, err
		}
		paymentID := payment.ID
		entry, err := account.Post(
			finance.TransactionTypeDeposit,
			payment.GetAmountMoney(),
			payment.PaymentDate,
			payment.ReceiptNumber,
			"Payment "+payment.ReceiptNumber+" from "+payment.CustomerName,
			finance.PostingCause{PaymentID: &paymentID},
			actorID,
		)
		if err != nil {
			return nil, err
		}
		if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
			return nil, err
		}
		if err := s.ledgerRepo.Append(ctx, entry); err != nil {
			return nil, err
		}
		touched = append(touched, account)
	}

	return touched, nil
}

// reverseDeposit posts the compensating withdrawal for a bounced payment
// and returns the account so its events publish only after commit
func (s *PaymentService) reverseDeposit(ctx context.Context, payment *finance.Payment, actorID uuid.UUID) (*finance.BankAccount, error) {
	account, err := s.findAccount(ctx, *payment.DepositAccountID)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.FindByPayment(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	var original *finance.BankTransaction
	for i := range entries {
		if entries[i].Type == finance.TransactionTypeDeposit && !entries[i].IsReversal() {
			original = &entries[i]
			break
		}
	}
	if original == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "No deposit entry found for payment "+payment.ReceiptNumber)
	}

	reversal, err := account.Reverse(original, payment.BounceReference(), actorID)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Append(ctx, reversal); err != nil {
		return nil, err
	}

	return account, nil
}

// resolveDepositAccount defaults non-cash payments to the primary account
// when no deposit account was named. Cash stays off the bank ledger.
func (s *PaymentService) resolveDepositAccount(ctx context.Context, requested *uuid.UUID, method finance.PaymentMethod) (*uuid.UUID, error) {
	if requested != nil {
		return requested, nil
	}
	if method == finance.PaymentMethodCash {
		return nil, nil
	}
	primary, err := s.accountRepo.FindPrimary(ctx)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		return nil, nil
	}
	id := primary.ID
	return &id, nil
}

func (s *PaymentService) findPayment(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	return payment, nil
}

func (s *PaymentService) findInvoice(ctx context.Context, id uuid.UUID) (*finance.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	return invoice, nil
}

func (s *PaymentService) findAccount(ctx context.Context, id uuid.UUID) (*finance.BankAccount, error) {
	account, err := s.accountRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bank account not found")
	}
	return account, nil
}

func toPaymentResponse(p *finance.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:               p.ID,
		ReceiptNumber:    p.ReceiptNumber,
		InvoiceID:        p.InvoiceID,
		CustomerID:       p.CustomerID,
		CustomerName:     p.CustomerName,
		Amount:           p.Amount,
		Method:           string(p.Method),
		Status:           string(p.Status),
		DepositAccountID: p.DepositAccountID,
		PaymentDate:      p.PaymentDate,
		ChequeNumber:     p.ChequeNumber,
		ChequeDate:       p.ChequeDate,
		BankName:         p.BankName,
		ReferenceNumber:  p.ReferenceNumber,
		ClearedAt:        p.ClearedAt,
		BouncedAt:        p.BouncedAt,
		BounceReason:     p.BounceReason,
		Notes:            p.Notes,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}
