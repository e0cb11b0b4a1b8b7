package dto

import (
	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/trade/purchase"
)

// CreatePurchaseRequest is the request body for recording a purchase.
// Goods are addressed by (name, spec) and created on first use.
type CreatePurchaseRequest struct {
	SupplierID   string      `json:"supplierId" binding:"required"`
	GoodsName    string      `json:"goodsName" binding:"required"`
	Spec         int         `json:"spec" binding:"required,min=1"`
	PurchaseDate Date        `json:"purchaseDate" binding:"required"`
	Num          int         `json:"num" binding:"required,min=1"`
	UnitPrice    types.Money `json:"unitPrice" binding:"required"`
	Remark       *string     `json:"remark"`
}

// ToInput converts DTO to a service input.
func (r *CreatePurchaseRequest) ToInput() (purchase.CreateInput, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return purchase.CreateInput{}, apperror.NewValidation("invalid supplier id").
			WithDetail("field", "supplierId")
	}
	return purchase.CreateInput{
		SupplierID:   supplierID,
		GoodsName:    r.GoodsName,
		Spec:         r.Spec,
		PurchaseDate: r.PurchaseDate.Time,
		Num:          r.Num,
		UnitPrice:    r.UnitPrice,
		Remark:       r.Remark,
	}, nil
}

// UpdatePurchaseRequest carries the editable fields of a purchase.
// Nil fields are left unchanged.
type UpdatePurchaseRequest struct {
	PurchaseDate *Date        `json:"purchaseDate"`
	Num          *int         `json:"num"`
	UnitPrice    *types.Money `json:"unitPrice"`
	Remark       *string      `json:"remark"`
}

// ToInput converts DTO to a service input.
func (r *UpdatePurchaseRequest) ToInput() purchase.UpdateInput {
	return purchase.UpdateInput{
		PurchaseDate: r.PurchaseDate.Ptr(),
		Num:          r.Num,
		UnitPrice:    r.UnitPrice,
		Remark:       r.Remark,
	}
}
