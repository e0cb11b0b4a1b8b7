package dto

import (
	"tradeledger/internal/domain/catalogs/purchaser"
)

// CreatePurchaserRequest is the request body for creating a purchaser.
type CreatePurchaserRequest struct {
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	BankName      *string `json:"bankName"`
	BankAccount   *string `json:"bankAccount"`
	TaxNo         *string `json:"taxNo"`
	Remark        *string `json:"remark"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePurchaserRequest) ToEntity() *purchaser.Purchaser {
	p := purchaser.NewPurchaser(r.Name)
	p.ContactPerson = r.ContactPerson
	p.Phone = r.Phone
	p.Address = r.Address
	p.BankName = r.BankName
	p.BankAccount = r.BankAccount
	p.TaxNo = r.TaxNo
	p.Remark = r.Remark
	return p
}

// UpdatePurchaserRequest is the request body for updating a purchaser.
// Nil fields are left unchanged.
type UpdatePurchaserRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	BankName      *string `json:"bankName"`
	BankAccount   *string `json:"bankAccount"`
	TaxNo         *string `json:"taxNo"`
	Remark        *string `json:"remark"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePurchaserRequest) ApplyTo(p *purchaser.Purchaser) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.ContactPerson != nil {
		p.ContactPerson = r.ContactPerson
	}
	if r.Phone != nil {
		p.Phone = r.Phone
	}
	if r.Address != nil {
		p.Address = r.Address
	}
	if r.BankName != nil {
		p.BankName = r.BankName
	}
	if r.BankAccount != nil {
		p.BankAccount = r.BankAccount
	}
	if r.TaxNo != nil {
		p.TaxNo = r.TaxNo
	}
	if r.Remark != nil {
		p.Remark = r.Remark
	}
	p.Touch()
}
