// Package purchaser provides the Purchaser catalog.
// Purchasers are the customers goods are sold to.
package purchaser

import (
	"context"
	"regexp"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
)

var phoneRE = regexp.MustCompile(`^[\d+\-() ]{3,32}$`)

// Purchaser represents a customer, the counterparty on the sale side.
type Purchaser struct {
	entity.Catalog

	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`
	Phone         *string `db:"phone" json:"phone,omitempty"`
	Address       *string `db:"address" json:"address,omitempty"`
	BankName      *string `db:"bank_name" json:"bankName,omitempty"`
	BankAccount   *string `db:"bank_account" json:"bankAccount,omitempty"`
	TaxNo         *string `db:"tax_no" json:"taxNo,omitempty"`
	Remark        *string `db:"remark" json:"remark,omitempty"`
}

// NewPurchaser creates a new Purchaser with required fields.
func NewPurchaser(name string) *Purchaser {
	return &Purchaser{
		Catalog: entity.NewCatalog(name),
	}
}

// Validate implements entity.Validatable interface.
func (p *Purchaser) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Phone != nil && *p.Phone != "" && !phoneRE.MatchString(*p.Phone) {
		return apperror.NewValidation("invalid phone format").
			WithDetail("field", "phone")
	}

	return nil
}
