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

// CommissionService manages commission structures and broker payouts
type CommissionService struct {
	commissionRepo finance.CommissionRepository
}

// NewCommissionService creates a new CommissionService
func NewCommissionService(commissionRepo finance.CommissionRepository) *CommissionService {
	return &CommissionService{commissionRepo: commissionRepo}
}

// CommissionTierRequest represents one slab of a tiered schedule
type CommissionTierRequest struct {
	UpTo *decimal.Decimal `json:"up_to"`
	Rate decimal.Decimal  `json:"rate" binding:"required"`
}

// CreateCommissionStructureRequest represents a request to create a structure
type CreateCommissionStructureRequest struct {
	Name         string                  `json:"name" binding:"required"`
	Type         string                  `json:"type" binding:"required"`
	Rate         decimal.Decimal         `json:"rate"`
	Tiers        []CommissionTierRequest `json:"tiers"`
	ApplicableTo string                  `json:"applicable_to"`
}

// CommissionStructureResponse represents a structure in API responses
type CommissionStructureResponse struct {
	ID           uuid.UUID               `json:"id"`
	Name         string                  `json:"name"`
	Type         string                  `json:"type"`
	Rate         decimal.Decimal         `json:"rate"`
	Tiers        finance.CommissionTiers `json:"tiers,omitempty"`
	ApplicableTo string                  `json:"applicable_to,omitempty"`
	IsActive     bool                    `json:"is_active"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// CreateCommissionRequest represents a request to create a payout
type CreateCommissionRequest struct {
	StructureID  uuid.UUID       `json:"structure_id" binding:"required"`
	AllocationID *uuid.UUID      `json:"allocation_id"`
	BrokerName   string          `json:"broker_name" binding:"required"`
	BaseAmount   decimal.Decimal `json:"base_amount" binding:"required"`
	Notes        string          `json:"notes"`
}

// CommissionResponse represents a payout in API responses
type CommissionResponse struct {
	ID               uuid.UUID       `json:"id"`
	StructureID      uuid.UUID       `json:"structure_id"`
	AllocationID     *uuid.UUID      `json:"allocation_id,omitempty"`
	BrokerName       string          `json:"broker_name"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Status           string          `json:"status"`
	ApprovedBy       *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedDate     *time.Time      `json:"approved_date,omitempty"`
	PaymentDate      *time.Time      `json:"payment_date,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// CreateStructure creates a commission structure. Tiered structures carry
// an explicit validated slab schedule.
func (s *CommissionService) CreateStructure(ctx context.Context, actor identity.Actor, req CreateCommissionStructureRequest) (*CommissionStructureResponse, error) {
	if err := actor.Authorize(identity.CapCommissionManage); err != nil {
		return nil, err
	}

	tiers := make(finance.CommissionTiers, 0, len(req.Tiers))
	for _, t := range req.Tiers {
		tiers = append(tiers, finance.CommissionTier{UpTo: t.UpTo, Rate: t.Rate})
	}
	if len(tiers) == 0 {
		tiers = nil
	}

	structure, err := finance.NewCommissionStructure(
		req.Name,
		finance.CommissionType(req.Type),
		req.Rate,
		tiers,
		req.ApplicableTo,
		actor.UserID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.commissionRepo.SaveStructure(ctx, structure); err != nil {
		return nil, err
	}
	return toCommissionStructureResponse(structure), nil
}

// DeactivateStructure retires a structure; new payouts cannot reference it
func (s *CommissionService) DeactivateStructure(ctx context.Context, actor identity.Actor, structureID uuid.UUID) (*CommissionStructureResponse, error) {
	if err := actor.Authorize(identity.CapCommissionManage); err != nil {
		return nil, err
	}

	structure, err := s.findStructure(ctx, structureID)
	if err != nil {
		return nil, err
	}
	structure.Deactivate()
	if err := s.commissionRepo.SaveStructure(ctx, structure); err != nil {
		return nil, err
	}
	return toCommissionStructureResponse(structure), nil
}

// ListStructures lists commission structures
func (s *CommissionService) ListStructures(ctx context.Context, filter shared.Filter) ([]CommissionStructureResponse, error) {
	structures, err := s.commissionRepo.FindAllStructures(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]CommissionStructureResponse, len(structures))
	for i := range structures {
		responses[i] = *toCommissionStructureResponse(&structures[i])
	}
	return responses, nil
}

// Create derives a payout from a structure and base amount. The commission
// amount is computed by the structure, never supplied by the caller.
func (s *CommissionService) Create(ctx context.Context, actor identity.Actor, req CreateCommissionRequest) (*CommissionResponse, error) {
	if err := actor.Authorize(identity.CapCommissionManage); err != nil {
		return nil, err
	}

	structure, err := s.findStructure(ctx, req.StructureID)
	if err != nil {
		return nil, err
	}

	commission, err := finance.NewCommission(
		structure,
		req.AllocationID,
		req.BrokerName,
		valueobject.NewMoneyINR(req.BaseAmount),
		actor.UserID,
	)
	if err != nil {
		return nil, err
	}
	commission.Notes = req.Notes

	if err := s.commissionRepo.Save(ctx, commission); err != nil {
		return nil, err
	}
	return toCommissionResponse(commission), nil
}

// Approve approves a pending payout
func (s *CommissionService) Approve(ctx context.Context, actor identity.Actor, commissionID uuid.UUID) (*CommissionResponse, error) {
	if err := actor.Authorize(identity.CapCommissionManage); err != nil {
		return nil, err
	}
	return s.mutate(ctx, commissionID, func(c *finance.Commission) error {
		return c.Approve(actor.UserID)
	})
}

// MarkPaid records an approved payout as paid
func (s *CommissionService) MarkPaid(ctx context.Context, actor identity.Actor, commissionID uuid.UUID, paymentDate time.Time) (*CommissionResponse, error) {
	if err := actor.Authorize(identity.CapCommissionManage); err != nil {
		return nil, err
	}
	return s.mutate(ctx, commissionID, func(c *finance.Commission) error {
		return c.MarkPaid(paymentDate)
	})
}

// Cancel cancels a payout that has not been paid
func (s *CommissionService) Cancel(ctx context.Context, actor identity.Actor, commissionID uuid.UUID, reason string) (*CommissionResponse, error) {
	if err := actor.Authorize(identity.CapCommissionManage); err != nil {
		return nil, err
	}
	return s.mutate(ctx, commissionID, func(c *finance.Commission) error {
		return c.Cancel(reason)
	})
}

// GetByID gets a payout by ID
func (s *CommissionService) GetByID(ctx context.Context, id uuid.UUID) (*CommissionResponse, error) {
	commission, err := s.findCommission(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCommissionResponse(commission), nil
}

// List lists payouts
func (s *CommissionService) List(ctx context.Context, filter shared.Filter) ([]CommissionResponse, error) {
	commissions, err := s.commissionRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]CommissionResponse, len(commissions))
	for i := range commissions {
		responses[i] = *toCommissionResponse(&commissions[i])
	}
	return responses, nil
}

func (s *CommissionService) mutate(ctx context.Context, id uuid.UUID, fn func(*finance.Commission) error) (*CommissionResponse, error) {
	commission, err := s.findCommission(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(commission); err != nil {
		return nil, err
	}
	if err := s.commissionRepo.SaveWithLock(ctx, commission); err != nil {
		return nil, err
	}
	return toCommissionResponse(commission), nil
}

func (s *CommissionService) findStructure(ctx context.Context, id uuid.UUID) (*finance.CommissionStructure, error) {
	structure, err := s.commissionRepo.FindStructureByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if structure == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Commission structure not found")
	}
	return structure, nil
}

func (s *CommissionService) findCommission(ctx context.Context, id uuid.UUID) (*finance.Commission, error) {
	commission, err := s.commissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if commission == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Commission not found")
	}
	return commission, nil
}

func toCommissionStructureResponse(cs *finance.CommissionStructure) *CommissionStructureResponse {
	return &CommissionStructureResponse{
		ID:           cs.ID,
		Name:         cs.Name,
		Type:         string(cs.Type),
		Rate:         cs.Rate,
		Tiers:        cs.Tiers,
		ApplicableTo: cs.ApplicableTo,
		IsActive:     cs.IsActive,
		CreatedAt:    cs.CreatedAt,
		UpdatedAt:    cs.UpdatedAt,
	}
}

func toCommissionResponse(c *finance.Commission) *CommissionResponse {
	return &CommissionResponse{
		ID:               c.ID,
		StructureID:      c.StructureID,
		AllocationID:     c.AllocationID,
		BrokerName:       c.BrokerName,
		BaseAmount:       c.BaseAmount,
		CommissionAmount: c.CommissionAmount,
		Status:           string(c.Status),
		ApprovedBy:       c.ApprovedBy,
		ApprovedDate:     c.ApprovedDate,
		PaymentDate:      c.PaymentDate,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Version:          c.Version,
	}
}
