// Package purchase provides purchase records: goods bought from suppliers.
// Creating, editing or deleting a purchase drives the cost engine, the flow
// ledger and the supplier's open statement inside one transaction.
package purchase

import (
	"context"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
)

// Purchase is one inbound trade event.
type Purchase struct {
	entity.BaseEntity

	SupplierID id.ID `db:"supplier_id" json:"supplierId"`
	GoodsID    id.ID `db:"goods_id" json:"goodsId"`

	// PurchaseDate has day precision
	PurchaseDate time.Time `db:"purchase_date" json:"purchaseDate"`

	// Num is the package count
	Num int `db:"num" json:"num"`

	// UnitPrice is the cost per base unit
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// Amount is num * spec * unit_price, fixed at entry
	Amount types.Money `db:"amount" json:"amount"`

	// StatementID links the purchase to its supplier statement
	StatementID *id.ID `db:"statement_id" json:"statementId,omitempty"`

	Remark *string `db:"remark" json:"remark,omitempty"`
}

// Validate implements entity.Validatable interface.
func (p *Purchase) Validate(ctx context.Context) error {
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if id.IsNil(p.GoodsID) {
		return apperror.NewValidation("goods is required").
			WithDetail("field", "goodsId")
	}
	if p.Num <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "num").
			WithDetail("value", p.Num)
	}
	if !p.UnitPrice.IsPositive() {
		return apperror.NewValidation("unit price must be positive").
			WithDetail("field", "unitPrice").
			WithDetail("value", p.UnitPrice.String())
	}
	if p.PurchaseDate.IsZero() {
		return apperror.NewValidation("purchase date is required").
			WithDetail("field", "purchaseDate")
	}
	return nil
}

// CreateInput is the payload for recording a purchase. Goods are addressed
// by (name, spec) and created on first use.
type CreateInput struct {
	SupplierID   id.ID
	GoodsName    string
	Spec         int
	PurchaseDate time.Time
	Num          int
	UnitPrice    types.Money
	Remark       *string
}

// UpdateInput carries the editable fields of a purchase. Nil means "leave
// unchanged"; fields are never probed dynamically.
type UpdateInput struct {
	PurchaseDate *time.Time
	Num          *int
	UnitPrice    *types.Money
	Remark       *string
}

// ListFilter selects purchase records for listings.
type ListFilter struct {
	SupplierID *id.ID
	GoodsID    *id.ID
	GoodsName  string
	DateFrom   *time.Time
	DateTo     *time.Time
	OrderBy    string
	Limit      int
	Offset     int
}

// ListItem is a purchase row enriched for listings.
type ListItem struct {
	Purchase
	SupplierName    string      `db:"supplier_name" json:"supplierName"`
	GoodsName       string      `db:"goods_name" json:"goodsName"`
	Spec            int         `db:"spec" json:"spec"`
	CurrentUnitCost types.Money `db:"current_unit_cost" json:"currentUnitCost"`
}

// ListResult is one page of enriched purchase rows.
type ListResult struct {
	Items      []*ListItem `json:"items"`
	TotalCount int64       `json:"totalCount"`
	Limit      int         `json:"limit"`
	Offset     int         `json:"offset"`
}
