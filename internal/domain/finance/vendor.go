package finance

import (
	"github.com/google/uuid"

	"github.com/himfirm/backend/internal/domain/shared"
)

// Vendor represents a supplier the company buys goods and services from
type Vendor struct {
	shared.AuditedAggregateRoot
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	GSTNumber     string `json:"gst_number"`
	Address       string `json:"address"`
	IsActive      bool   `json:"is_active"`
}

// NewVendor creates a new vendor
func NewVendor(name, contactPerson, phone, email, gstNumber, address string, createdBy uuid.UUID) (*Vendor, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot exceed 200 characters")
	}

	return &Vendor{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		Name:                 name,
		ContactPerson:        contactPerson,
		Phone:                phone,
		Email:                email,
		GSTNumber:            gstNumber,
		Address:              address,
		IsActive:             true,
	}, nil
}

// UpdateContact updates the vendor contact details
func (v *Vendor) UpdateContact(contactPerson, phone, email, address string) {
	v.ContactPerson = contactPerson
	v.Phone = phone
	v.Email = email
	v.Address = address
	v.Touch()
	v.IncrementVersion()
}

// Deactivate marks the vendor inactive; no new purchase orders may reference it
func (v *Vendor) Deactivate() {
	v.IsActive = false
	v.Touch()
	v.IncrementVersion()
}

// Activate marks the vendor active
func (v *Vendor) Activate() {
	v.IsActive = true
	v.Touch()
	v.IncrementVersion()
}
