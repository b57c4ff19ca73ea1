package finance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

// CostActualizedHandler records actualized project costs as spend against
// the budgets covering the cost's project and date
type CostActualizedHandler struct {
	budgetRepo     finance.BudgetRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCostActualizedHandler creates a new handler for cost actualized events
func NewCostActualizedHandler(
	budgetRepo finance.BudgetRepository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *CostActualizedHandler {
	return &CostActualizedHandler{
		budgetRepo:     budgetRepo,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CostActualizedHandler) EventTypes() []string {
	return []string{"ProjectCostActualized"}
}

// Handle records the actual cost amount against every active budget covering
// the cost's project and date
func (h *CostActualizedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	costEvent, ok := event.(*finance.ProjectCostActualizedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", "ProjectCostActualized"),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected ProjectCostActualized, got %s", event.EventType())
	}

	projectID := costEvent.ProjectID
	budgets, err := h.budgetRepo.FindActiveFor(ctx, &projectID, costEvent.ActualDate)
	if err != nil {
		h.logger.Error("failed to find budgets for cost",
			zap.String("cost_id", costEvent.CostID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to find budgets: %w", err)
	}
	if len(budgets) == 0 {
		h.logger.Info("no active budget covers this cost",
			zap.String("cost_id", costEvent.CostID.String()),
			zap.String("project_id", costEvent.ProjectID.String()),
		)
		return nil
	}

	amount := valueobject.NewMoneyINR(costEvent.ActualAmount)
	for i := range budgets {
		budget := &budgets[i]
		if err := budget.RecordSpend(costEvent.Category, amount); err != nil {
			h.logger.Error("failed to record spend",
				zap.String("budget_id", budget.ID.String()),
				zap.String("cost_id", costEvent.CostID.String()),
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

// Ensure CostActualizedHandler implements shared.EventHandler
var _ shared.EventHandler = (*CostActualizedHandler)(nil)
