package goodsname

import (
	"context"

	"tradeledger/internal/core/id"
)

// Repository defines the interface for customer goods name persistence.
type Repository interface {
	// Upsert saves the alias for a (goods, purchaser) pair, overwriting
	// any previous value.
	Upsert(ctx context.Context, goodsID, purchaserID id.ID, name string) error

	// Get returns the alias for a (goods, purchaser) pair, or "" when none.
	Get(ctx context.Context, goodsID, purchaserID id.ID) (string, error)

	// GetForPurchaser returns all aliases of one purchaser keyed by goods ID.
	GetForPurchaser(ctx context.Context, purchaserID id.ID) (map[id.ID]string, error)
}
