// Package sale provides sale records: goods sold to purchasers. A sale
// freezes the weighted-average cost at entry time, so profit figures stay
// stable even as later purchases move the running cost.
package sale

import (
	"context"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
)

// Sale is one outbound trade event.
type Sale struct {
	entity.BaseEntity

	PurchaserID id.ID `db:"purchaser_id" json:"purchaserId"`
	GoodsID     id.ID `db:"goods_id" json:"goodsId"`

	// SaleDate has day precision
	SaleDate time.Time `db:"sale_date" json:"saleDate"`

	// Num is the package count
	Num int `db:"num" json:"num"`

	// UnitPrice is the selling price per base unit
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Amount is num * spec * unit_price, fixed at entry
	Amount types.Money `db:"amount" json:"amount"`

	// CostSnapshot is the weighted-average unit cost at sale time. The
	// cost replay rewrites it when history changes.
	CostSnapshot types.Money `db:"cost_snapshot" json:"costSnapshot"`

	// UnitProfit is unit_price - cost_snapshot
	UnitProfit types.Money `db:"unit_profit" json:"unitProfit"`

	// TotalProfit is unit_profit * num * spec
	TotalProfit types.Money `db:"total_profit" json:"totalProfit"`

	// StatementID links the sale to its purchaser statement
	StatementID *id.ID `db:"statement_id" json:"statementId,omitempty"`

	Remark *string `db:"remark" json:"remark,omitempty"`
}

// Validate implements entity.Validatable interface.
func (s *Sale) Validate(ctx context.Context) error {
	if id.IsNil(s.PurchaserID) {
		return apperror.NewValidation("purchaser is required").
			WithDetail("field", "purchaserId")
	}
	if id.IsNil(s.GoodsID) {
		return apperror.NewValidation("goods is required").
			WithDetail("field", "goodsId")
	}
	if s.Num <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "num").
			WithDetail("value", s.Num)
	}
	if !s.UnitPrice.IsPositive() {
		return apperror.NewValidation("unit price must be positive").
			WithDetail("field", "unitPrice").
			WithDetail("value", s.UnitPrice.String())
	}
	if s.SaleDate.IsZero() {
		return apperror.NewValidation("sale date is required").
			WithDetail("field", "saleDate")
	}
	return nil
}

// CreateInput is the payload for recording a sale. Goods are addressed by
// ID: a sale never creates goods, only draws down existing stock. The
// optional customer goods name is remembered per (goods, purchaser) pair.
type CreateInput struct {
	PurchaserID       id.ID
	GoodsID           id.ID
	SaleDate          time.Time
	Num               int
	UnitPrice         types.Money
	CustomerGoodsName *string
	Remark            *string
}

// UpdateInput carries the editable fields of a sale. Nil means "leave
// unchanged"; fields are never probed dynamically.
type UpdateInput struct {
	SaleDate          *time.Time
	Num               *int
	UnitPrice         *types.Money
	CustomerGoodsName *string
	Remark            *string
}

// ListFilter selects sale records for listings.
type ListFilter struct {
	PurchaserID *id.ID
	GoodsID     *id.ID
	GoodsName   string
	DateFrom    *time.Time
	DateTo      *time.Time
	OrderBy     string
	Limit       int
	Offset      int
}

// ListItem is a sale row enriched for listings.
type ListItem struct {
	Sale
	PurchaserName     string `db:"purchaser_name" json:"purchaserName"`
	GoodsName         string `db:"goods_name" json:"goodsName"`
	Spec              int    `db:"spec" json:"spec"`
	CustomerGoodsName string `db:"customer_goods_name" json:"customerGoodsName,omitempty"`
}

// ListResult is one page of enriched sale rows.
type ListResult struct {
	Items      []*ListItem `json:"items"`
	TotalCount int64       `json:"totalCount"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}
