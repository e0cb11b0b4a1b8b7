package dto

import (
	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/trade/sale"
)

// CreateSaleRequest is the request body for recording a sale. Unlike
// purchases, goods must already exist: sales never create catalog rows.
type CreateSaleRequest struct {
	PurchaserID       string      `json:"purchaserId" binding:"required"`
	GoodsID           string      `json:"goodsId" binding:"required"`
	SaleDate          Date        `json:"saleDate" binding:"required"`
	Num               int         `json:"num" binding:"required,min=1"`
	UnitPrice         types.Money `json:"unitPrice" binding:"required"`
	CustomerGoodsName *string     `json:"customerGoodsName"`
	Remark            *string     `json:"remark"`
}

// ToInput converts DTO to a service input.
func (r *CreateSaleRequest) ToInput() (sale.CreateInput, error) {
	purchaserID, err := id.Parse(r.PurchaserID)
	if err != nil {
		return sale.CreateInput{}, apperror.NewValidation("invalid purchaser id").
			WithDetail("field", "purchaserId")
	}
	goodsID, err := id.Parse(r.GoodsID)
	if err != nil {
		return sale.CreateInput{}, apperror.NewValidation("invalid goods id").
			WithDetail("field", "goodsId")
	}
	return sale.CreateInput{
		PurchaserID:       purchaserID,
		GoodsID:           goodsID,
		SaleDate:          r.SaleDate.Time,
		Num:               r.Num,
		UnitPrice:         r.UnitPrice,
		CustomerGoodsName: r.CustomerGoodsName,
		Remark:            r.Remark,
	}, nil
}

// UpdateSaleRequest carries the editable fields of a sale.
// Nil fields are left unchanged.
type UpdateSaleRequest struct {
	SaleDate          *Date        `json:"saleDate"`
	Num               *int         `json:"num"`
	UnitPrice         *types.Money `json:"unitPrice"`
	CustomerGoodsName *string      `json:"customerGoodsName"`
	Remark            *string      `json:"remark"`
}

// ToInput converts DTO to a service input.
func (r *UpdateSaleRequest) ToInput() sale.UpdateInput {
	return sale.UpdateInput{
		SaleDate:          r.SaleDate.Ptr(),
		Num:               r.Num,
		UnitPrice:         r.UnitPrice,
		CustomerGoodsName: r.CustomerGoodsName,
		Remark:            r.Remark,
	}
}
