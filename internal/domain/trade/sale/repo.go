package sale

import (
	"context"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/domain/statement"
)

// Repository defines the interface for sale persistence. It doubles as the
// statement manager's sale-side event store.
type Repository interface {
	statement.EventStore

	Create(ctx context.Context, s *Sale) error

	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	Update(ctx context.Context, s *Sale) error

	SetStatus(ctx context.Context, saleID id.ID, status entity.Status) error

	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// LastRecord returns the most recent non-deleted sale of a goods item
	// to a purchaser, or NotFound.
	LastRecord(ctx context.Context, purchaserID, goodsID id.ID) (*Sale, error)
}
