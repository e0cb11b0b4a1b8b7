package purchase

import (
	"context"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/domain/statement"
)

// Repository defines the interface for purchase persistence. It doubles as
// the statement manager's purchase-side event store.
type Repository interface {
	statement.EventStore

	Create(ctx context.Context, p *Purchase) error

	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)

	Update(ctx context.Context, p *Purchase) error

	SetStatus(ctx context.Context, purchaseID id.ID, status entity.Status) error

	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// LastRecord returns the most recent non-deleted purchase of a goods
	// item from a supplier, or NotFound.
	LastRecord(ctx context.Context, supplierID, goodsID id.ID) (*Purchase, error)
}
