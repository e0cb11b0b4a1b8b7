// Package goods provides the Goods catalog.
// A goods row is identified by (name, spec): the same product packed with a
// different unit count is a distinct row. Stock and cost fields are owned by
// the cost engine; catalog operations never touch them directly.
package goods

import (
	"context"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/types"
)

// Goods represents a stocked product.
type Goods struct {
	entity.Catalog

	// Spec is the number of base units per package (e.g. kg per box).
	// Always >= 1.
	Spec int `db:"spec" json:"spec"`

	// StockNum is the current stock in packages
	StockNum int `db:"stock_num" json:"stockNum"`

	// StockUnitCost is the weighted average cost per base unit
	StockUnitCost types.Money `db:"stock_unit_cost" json:"stockUnitCost"`

	// StockTotalValue tracks cost * stock * spec
	StockTotalValue types.Money `db:"stock_total_value" json:"stockTotalValue"`
}

// NewGoods creates a new Goods row with zero stock.
func NewGoods(name string, spec int) *Goods {
	return &Goods{
		Catalog:         entity.NewCatalog(name),
		Spec:            spec,
		StockUnitCost:   types.Zero(),
		StockTotalValue: types.Zero(),
	}
}

// Validate implements entity.Validatable interface.
func (g *Goods) Validate(ctx context.Context) error {
	if err := g.Catalog.Validate(ctx); err != nil {
		return err
	}

	if g.Spec < 1 {
		return apperror.NewValidation("spec must be at least 1").
			WithDetail("field", "spec").
			WithDetail("value", g.Spec)
	}
	if g.StockNum < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stockNum").
			WithDetail("value", g.StockNum)
	}
	if g.StockUnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "stockUnitCost")
	}

	return nil
}

// BaseUnits returns the stock expressed in base units (packages * spec).
func (g *Goods) BaseUnits() int64 {
	return int64(g.StockNum) * int64(g.Spec)
}

// HasStock reports whether any packages are on hand.
func (g *Goods) HasStock() bool {
	return g.StockNum > 0
}
