// Package supplier provides the Supplier catalog.
// Suppliers are the counterparties goods are purchased from.
package supplier

import (
	"context"
	"regexp"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
)

var phoneRE = regexp.MustCompile(`^[\d+\-() ]{3,32}$`)

// Supplier represents the counterparty on the purchase side.
type Supplier struct {
	entity.Catalog

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Address is the supplier's address
	Address *string `db:"address" json:"address,omitempty"`

	// BankName and BankAccount hold settlement details
	BankName    *string `db:"bank_name" json:"bankName,omitempty"`
	BankAccount *string `db:"bank_account" json:"bankAccount,omitempty"`

	// TaxNo is the supplier's tax registration number
	TaxNo *string `db:"tax_no" json:"taxNo,omitempty"`

	// Remark is a free-form note
	Remark *string `db:"remark" json:"remark,omitempty"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(name string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(name),
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.Phone != nil && *s.Phone != "" && !phoneRE.MatchString(*s.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}

	return nil
}
