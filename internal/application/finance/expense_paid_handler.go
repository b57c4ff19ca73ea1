package finance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// ExpensePaidHandler records paid expenses as spend against the budgets
// covering the expense's project and date. This is the only write path into
// budget spend besides cost actualization.
type ExpensePaidHandler struct {
	budgetRepo     finance.BudgetRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewExpensePaidHandler creates a new handler for expense paid events
func NewExpensePaidHandler(
	budgetRepo finance.BudgetRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ExpensePaidHandler {
	return &ExpensePaidHandler{
		budgetRepo:     budgetRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ExpensePaidHandler) EventTypes() []string {
	return []string{"ExpensePaid"}
}

// Handle records the expense total against every active budget covering
// the expense's project and date
func (h *ExpensePaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paidEvent, ok := event.(*finance.ExpensePaidEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", "ExpensePaid"),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected ExpensePaid, got %s", event.EventType())
	}

	h.logger.Info("recording expense spend against budgets",
		zap.String("expense_id", paidEvent.ExpenseID.String()),
		zap.String("expense_number", paidEvent.ExpenseNumber),
		zap.String("category", string(paidEvent.Category)),
		zap.String("total_amount", paidEvent.TotalAmount.String()),
	)

	budgets, err := h.budgetRepo.FindActiveFor(ctx, paidEvent.ProjectID, paidEvent.ExpenseDate)
	if err != nil {
		h.logger.Error("failed to find budgets for expense",
			zap.String("expense_number", paidEvent.ExpenseNumber),
			zap.Error(err),
		)
		return fmt.Errorf("failed to find budgets: %w", err)
	}
	if len(budgets) == 0 {
		h.logger.Info("no active budget covers this expense",
			zap.String("expense_number", paidEvent.ExpenseNumber),
		)
		return nil
	}

	amount := valueobject.NewMoneyINR(paidEvent.TotalAmount)
	for i := range budgets {
		budget := &budgets[i]
		if err := budget.RecordSpend(paidEvent.Category, amount); err != nil {
			h.logger.Error("failed to record spend",
				zap.String("budget_id", budget.ID.String()),
				zap.String("expense_number", paidEvent.ExpenseNumber),
				zap.Error(err),
			)
			return fmt.Errorf("failed to record spend: %w", err)
		}
		if err := h.budgetRepo.SaveWithLock(ctx, budget); err != nil {
			h.logger.Error("failed to save budget",
				zap.String("budget_id", budget.ID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("failed to save budget: %w", err)
		}
		publishEvents(ctx, h.eventPublisher, budget)
	}

	return nil
}

// Ensure ExpensePaidHandler implements shared.EventHandler
var _ shared.EventHandler = (*ExpensePaidHandler)(nil)
