package dto

import (
	"tradeledger/internal/domain/catalogs/supplier"
)

// CreateSupplierRequest is the request body for creating a supplier.
type CreateSupplierRequest struct {
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
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Name)
	s.ContactPerson = r.ContactPerson
	s.Phone = r.Phone
	s.Address = r.Address
	s.BankName = r.BankName
	s.BankAccount = r.BankAccount
	s.TaxNo = r.TaxNo
	s.Remark = r.Remark
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
// Nil fields are left unchanged.
type UpdateSupplierRequest struct {
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
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	if r.Name != nil {
		s.Name = *r.Name
	}
	if r.ContactPerson != nil {
		s.ContactPerson = r.ContactPerson
	}
	if r.Phone != nil {
		s.Phone = r.Phone
	}
	if r.Address != nil {
		s.Address = r.Address
	}
	if r.BankName != nil {
		s.BankName = r.BankName
	}
	if r.BankAccount != nil {
		s.BankAccount = r.BankAccount
	}
	if r.TaxNo != nil {
		s.TaxNo = r.TaxNo
	}
	if r.Remark != nil {
		s.Remark = r.Remark
	}
	s.Touch()
}
