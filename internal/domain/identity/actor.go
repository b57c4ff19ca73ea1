package identity

import (
	"github.com/google/uuid"

	"github.com/himfirm/backend/internal/domain/shared"
)

// Role represents a back-office role
type Role string

const (
	RoleAdmin              Role = "admin"
	RoleFinanceManager     Role = "finance_manager"
	RoleAccountant         Role = "accountant"
	RoleProjectManager     Role = "project_manager"
	RoleProcurementManager Role = "procurement_manager"
	RoleSales              Role = "sales"
	RoleEmployee           Role = "employee"
)

// IsValid checks if the role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleFinanceManager, RoleAccountant, RoleProjectManager,
		RoleProcurementManager, RoleSales, RoleEmployee:
		return true
	}
	return false
}

// Actor is the authenticated user performing an operation.
// It carries no behavior of its own; authorization decisions are made
// against the capability table below.
type Actor struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

// NewActor creates an actor, validating the role
func NewActor(userID uuid.UUID, name string, role Role) (Actor, error) {
	if userID == uuid.Nil {
		return Actor{}, shared.NewDomainError("INVALID_ACTOR", "Actor user ID is required")
	}
	if !role.IsValid() {
		return Actor{}, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}
	return Actor{UserID: userID, Name: name, Role: role}, nil
}

// Capability names a guarded operation
type Capability string

const (
	CapInvoiceCreate        Capability = "invoice.create"
	CapInvoiceApprove       Capability = "invoice.approve"
	CapInvoiceSend          Capability = "invoice.send"
	CapInvoiceVoid          Capability = "invoice.void"
	CapPaymentRecord        Capability = "payment.record"
	CapPaymentClear         Capability = "payment.clear"
	CapPaymentBounce        Capability = "payment.bounce"
	CapBankManage           Capability = "bank.manage"
	CapBankReconcile        Capability = "bank.reconcile"
	CapPettyCashSpend       Capability = "pettycash.spend"
	CapPettyCashReplenish   Capability = "pettycash.replenish"
	CapExpenseSubmit        Capability = "expense.submit"
	CapExpenseApprove       Capability = "expense.approve"
	CapExpensePay           Capability = "expense.pay"
	CapPurchaseOrderCreate  Capability = "po.create"
	CapPurchaseOrderApprove Capability = "po.approve"
	CapPurchaseOrderReceive Capability = "po.receive"
	CapVendorManage         Capability = "vendor.manage"
	CapBudgetManage         Capability = "budget.manage"
	CapBudgetView           Capability = "budget.view"
	CapCommissionManage     Capability = "commission.manage"
	CapPeriodClose          Capability = "period.close"
	CapTaxManage            Capability = "tax.manage"
	CapDashboardView        Capability = "dashboard.view"
)

// capabilityRoles maps each capability to the roles allowed to exercise it.
// Admin is implicitly allowed everything and is not listed.
var capabilityRoles = map[Capability][]Role{
	CapInvoiceCreate:        {RoleFinanceManager, RoleAccountant},
	CapInvoiceApprove:       {RoleFinanceManager},
	CapInvoiceSend:          {RoleFinanceManager, RoleAccountant},
	CapInvoiceVoid:          {RoleFinanceManager},
	CapPaymentRecord:        {RoleFinanceManager, RoleAccountant},
	CapPaymentClear:         {RoleFinanceManager, RoleAccountant},
	CapPaymentBounce:        {RoleFinanceManager, RoleAccountant},
	CapBankManage:           {RoleFinanceManager},
	CapBankReconcile:        {RoleFinanceManager, RoleAccountant},
	CapPettyCashSpend:       {RoleFinanceManager, RoleAccountant, RoleProjectManager},
	CapPettyCashReplenish:   {RoleFinanceManager},
	CapExpenseSubmit:        {RoleFinanceManager, RoleAccountant, RoleProjectManager, RoleProcurementManager, RoleSales, RoleEmployee},
	CapExpenseApprove:       {RoleFinanceManager, RoleProjectManager},
	CapExpensePay:           {RoleFinanceManager, RoleAccountant},
	CapPurchaseOrderCreate:  {RoleProcurementManager, RoleProjectManager},
	CapPurchaseOrderApprove: {RoleFinanceManager, RoleProcurementManager},
	CapPurchaseOrderReceive: {RoleProcurementManager, RoleProjectManager},
	CapVendorManage:         {RoleProcurementManager, RoleFinanceManager},
	CapBudgetManage:         {RoleFinanceManager},
	CapBudgetView:           {RoleFinanceManager, RoleAccountant, RoleProjectManager},
	CapCommissionManage:     {RoleFinanceManager, RoleSales},
	CapPeriodClose:          {RoleFinanceManager},
	CapTaxManage:            {RoleFinanceManager},
	CapDashboardView:        {RoleFinanceManager, RoleAccountant, RoleProjectManager, RoleProcurementManager},
}

// Can reports whether the actor may exercise the capability
func (a Actor) Can(cap Capability) bool {
	if a.Role == RoleAdmin {
		return true
	}
	for _, r := range capabilityRoles[cap] {
		if r == a.Role {
			return true
		}
	}
	return false
}

// Authorize returns ErrForbidden when the actor lacks the capability
func (a Actor) Authorize(cap Capability) error {
	if !a.Can(cap) {
		return shared.ErrForbidden
	}
	return nil
}
