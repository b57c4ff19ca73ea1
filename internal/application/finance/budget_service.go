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

// BudgetService manages budgets and project costs. Budget spend is driven
// exclusively by expense-paid and cost-actualized events; this service never
// mutates spend directly.
type BudgetService struct {
	budgetRepo     finance.BudgetRepository
	costRepo       finance.ProjectCostRepository
	eventPublisher shared.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo finance.BudgetRepository,
	costRepo finance.ProjectCostRepository,
	eventPublisher shared.EventPublisher,
) *BudgetService {
	return &BudgetService{
		budgetRepo:     budgetRepo,
		costRepo:       costRepo,
		eventPublisher: eventPublisher,
	}
}

// BudgetLineItemRequest represents one category allocation of a new budget
type BudgetLineItemRequest struct {
	Category        string          `json:"category" binding:"required"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount" binding:"required"`
}

// CreateBudgetRequest represents a request to create a budget
type CreateBudgetRequest struct {
	Name        string                  `json:"name" binding:"required"`
	ProjectID   *uuid.UUID              `json:"project_id"`
	PeriodStart time.Time               `json:"period_start" binding:"required"`
	PeriodEnd   time.Time               `json:"period_end" binding:"required"`
	TotalBudget decimal.Decimal         `json:"total_budget" binding:"required"`
	LineItems   []BudgetLineItemRequest `json:"line_items"`
}

// BudgetLineItemResponse represents a budget line with utilization
type BudgetLineItemResponse struct {
	Category        string          `json:"category"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
	Utilization     decimal.Decimal `json:"utilization"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID          uuid.UUID                `json:"id"`
	Name        string                   `json:"name"`
	ProjectID   *uuid.UUID               `json:"project_id,omitempty"`
	PeriodStart time.Time                `json:"period_start"`
	PeriodEnd   time.Time                `json:"period_end"`
	TotalBudget decimal.Decimal          `json:"total_budget"`
	SpentAmount decimal.Decimal          `json:"spent_amount"`
	Remaining   decimal.Decimal          `json:"remaining"`
	Variance    decimal.Decimal          `json:"variance"`
	LineItems   []BudgetLineItemResponse `json:"line_items"`
	IsActive    bool                     `json:"is_active"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	Version     int                      `json:"version"`
}

// Create creates a new budget
func (s *BudgetService) Create(ctx context.Context, actor identity.Actor, req CreateBudgetRequest) (*BudgetResponse, error) {
	if err := actor.Authorize(identity.CapBudgetManage); err != nil {
		return nil, err
	}

	lineItems := make(finance.BudgetLineItems, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		item, err := finance.NewBudgetLineItem(finance.ExpenseCategory(li.Category), li.AllocatedAmount)
		if err != nil {
			return nil, err
		}
		lineItems = append(lineItems, item)
	}

	budget, err := finance.NewBudget(
		req.Name,
		req.ProjectID,
		req.PeriodStart,
		req.PeriodEnd,
		valueobject.NewMoneyINR(req.TotalBudget),
		lineItems,
		actor.UserID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.budgetRepo.Save(ctx, budget); err != nil {
		return nil, err
	}
	return toBudgetResponse(budget), nil
}

// GetByID gets a budget by ID
func (s *BudgetService) GetByID(ctx context.Context, id uuid.UUID) (*BudgetResponse, error) {
	budget, err := s.findBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBudgetResponse(budget), nil
}

// List lists budgets
func (s *BudgetService) List(ctx context.Context, filter shared.Filter) ([]BudgetResponse, error) {
	budgets, err := s.budgetRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]BudgetResponse, len(budgets))
	for i := range budgets {
		responses[i] = *toBudgetResponse(&budgets[i])
	}
	return responses, nil
}

// Deactivate retires a budget; inactive budgets no longer accrue spend
func (s *BudgetService) Deactivate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*BudgetResponse, error) {
	if err := actor.Authorize(identity.CapBudgetManage); err != nil {
		return nil, err
	}

	budget, err := s.findBudget(ctx, id)
	if err != nil {
		return nil, err
	}
	budget.Deactivate()
	if err := s.budgetRepo.SaveWithLock(ctx, budget); err != nil {
		return nil, err
	}
	return toBudgetResponse(budget), nil
}

// ===================== Project Cost Operations =====================

// CreateProjectCostRequest represents a request to record a cost estimate
type CreateProjectCostRequest struct {
	ProjectID       uuid.UUID       `json:"project_id" binding:"required"`
	CostCenter      string          `json:"cost_center" binding:"required"`
	Category        string          `json:"category" binding:"required"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount" binding:"required"`
}

// RecordActualCostRequest records the actual amount for an estimate
type RecordActualCostRequest struct {
	ActualAmount decimal.Decimal `json:"actual_amount" binding:"required"`
	ActualDate   time.Time       `json:"actual_date" binding:"required"`
}

// ProjectCostResponse represents a project cost in API responses
type ProjectCostResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProjectID       uuid.UUID       `json:"project_id"`
	CostCenter      string          `json:"cost_center"`
	Category        string          `json:"category"`
	EstimatedAmount decimal.Decimal `json:"estimated_amount"`
	ActualAmount    decimal.Decimal `json:"actual_amount"`
	CostVariance    decimal.Decimal `json:"cost_variance"`
	Status          string          `json:"status"`
	ActualDate      *time.Time      `json:"actual_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// CreateCost records a cost estimate for a project
func (s *BudgetService) CreateCost(ctx context.Context, actor identity.Actor, req CreateProjectCostRequest) (*ProjectCostResponse, error) {
	if err := actor.Authorize(identity.CapBudgetManage); err != nil {
		return nil, err
	}

	cost, err := finance.NewProjectCost(
		req.ProjectID,
		req.CostCenter,
		finance.ExpenseCategory(req.Category),
		"",
		valueobject.NewMoneyINR(req.EstimatedAmount),
		actor.UserID,
	)
	if err != nil {
		return nil, err
	}
	if err := s.costRepo.Save(ctx, cost); err != nil {
		return nil, err
	}
	return toProjectCostResponse(cost), nil
}

// RecordActual turns an estimate into an actual cost. The budget tracker
// picks up the spend from the resulting event.
func (s *BudgetService) RecordActual(ctx context.Context, actor identity.Actor, costID uuid.UUID, req RecordActualCostRequest) (*ProjectCostResponse, error) {
	if err := actor.Authorize(identity.CapBudgetManage); err != nil {
		return nil, err
	}

	cost, err := s.costRepo.FindByID(ctx, costID)
	if err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Project cost not found")
	}

	if err := cost.RecordActual(valueobject.NewMoneyINR(req.ActualAmount), req.ActualDate); err != nil {
		return nil, err
	}
	if err := s.costRepo.SaveWithLock(ctx, cost); err != nil {
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, cost)

	return toProjectCostResponse(cost), nil
}

// ListCosts lists costs for a project
func (s *BudgetService) ListCosts(ctx context.Context, projectID uuid.UUID, filter shared.Filter) ([]ProjectCostResponse, error) {
	costs, err := s.costRepo.FindByProject(ctx, projectID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]ProjectCostResponse, len(costs))
	for i := range costs {
		responses[i] = *toProjectCostResponse(&costs[i])
	}
	return responses, nil
}

func (s *BudgetService) findBudget(ctx context.Context, id uuid.UUID) (*finance.Budget, error) {
	budget, err := s.budgetRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Budget not found")
	}
	return budget, nil
}

func toBudgetResponse(b *finance.Budget) *BudgetResponse {
	lines := make([]BudgetLineItemResponse, len(b.LineItems))
	for i := range b.LineItems {
		lines[i] = BudgetLineItemResponse{
			Category:        string(b.LineItems[i].Category),
			AllocatedAmount: b.LineItems[i].AllocatedAmount,
			SpentAmount:     b.LineItems[i].SpentAmount,
			Utilization:     b.LineItems[i].Utilization(),
		}
	}

	return &BudgetResponse{
		ID:          b.ID,
		Name:        b.Name,
		ProjectID:   b.ProjectID,
		PeriodStart: b.PeriodStart,
		PeriodEnd:   b.PeriodEnd,
		TotalBudget: b.TotalBudget,
		SpentAmount: b.SpentAmount,
		Remaining:   b.RemainingBudget(),
		Variance:    b.Variance(),
		LineItems:   lines,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Version:     b.Version,
	}
}

func toProjectCostResponse(pc *finance.ProjectCost) *ProjectCostResponse {
	return &ProjectCostResponse{
		ID:              pc.ID,
		ProjectID:       pc.ProjectID,
		CostCenter:      pc.CostCenter,
		Category:        string(pc.Category),
		EstimatedAmount: pc.EstimatedAmount,
		ActualAmount:    pc.ActualAmount,
		CostVariance:    pc.CostVariance(),
		Status:          string(pc.Status),
		ActualDate:      pc.ActualDate,
		CreatedAt:       pc.CreatedAt,
		UpdatedAt:       pc.UpdatedAt,
		Version:         pc.Version,
	}
}
