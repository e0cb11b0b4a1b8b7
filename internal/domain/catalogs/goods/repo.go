package goods

import (
	"context"

	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain"
)

// Repository defines the interface for Goods persistence.
type Repository interface {
	domain.CatalogRepository[*Goods]

	// FindByNameSpec retrieves a goods row by its natural key, regardless
	// of status.
	FindByNameSpec(ctx context.Context, name string, spec int) (*Goods, error)

	// SaveStock persists the stock fields written by the cost engine.
	// Monetary values are rounded to 2 decimals at this boundary.
	SaveStock(ctx context.Context, goodsID id.ID, stockNum int, unitCost, totalValue types.Money) error

	// Suggest returns active goods whose name contains the keyword.
	// When withStockOnly is set, rows with zero stock are skipped.
	Suggest(ctx context.Context, keyword string, withStockOnly bool, limit int) ([]*Goods, error)
}
