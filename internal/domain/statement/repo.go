package statement

import (
	"context"
	"time"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
)

// ListFilter selects statements for bill listings.
type ListFilter struct {
	Side           Side
	CounterpartyID *id.ID
	Confirmed      *bool
	SettledStatus  *bool
	AmountMin      *types.Money
	AmountMax      *types.Money
	OrderBy        string
	Limit          int
	Offset         int
}

// ListResult is one page of statements.
type ListResult struct {
	Items      []*Statement `json:"items"`
	TotalCount int64        `json:"totalCount"`
	Limit      int          `json:"limit"`
	Offset     int          `json:"offset"`
}

// Repository defines the interface for statement persistence.
type Repository interface {
	Create(ctx context.Context, st *Statement) error

	GetByID(ctx context.Context, statementID id.ID) (*Statement, error)

	// GetOpen returns the counterparty's single open statement, or
	// NotFound when none exists.
	GetOpen(ctx context.Context, side Side, counterpartyID id.ID) (*Statement, error)

	// GetLastClosed returns the confirmed statement with the latest end
	// date, or NotFound when the counterparty has none.
	GetLastClosed(ctx context.Context, side Side, counterpartyID id.ID) (*Statement, error)

	Update(ctx context.Context, st *Statement) error

	SetStatus(ctx context.Context, statementID id.ID, status entity.Status) error

	List(ctx context.Context, filter ListFilter) (ListResult, error)
}

// EventStore is the statement manager's view of the member events of one
// side. Purchase and sale repositories each provide an implementation.
type EventStore interface {
	// SumForStatement sums the non-deleted member events of a statement
	// whose date falls within [from, to]. Nil bounds are unbounded.
	SumForStatement(ctx context.Context, statementID id.ID, from, to *time.Time) (Totals, error)

	// ReassignAfter moves member events dated strictly after the cutoff
	// onto another statement.
	ReassignAfter(ctx context.Context, fromStatementID, toStatementID id.ID, after time.Time) error

	// ReassignAll moves every member event onto another statement.
	ReassignAll(ctx context.Context, fromStatementID, toStatementID id.ID) error
}

// PaymentRepository defines the interface for settlement row persistence.
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error

	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)

	// SumForStatement sums the non-deleted settlement rows of a statement.
	SumForStatement(ctx context.Context, statementID id.ID) (types.Money, error)

	ListForStatement(ctx context.Context, statementID id.ID) ([]*Payment, error)

	SetStatus(ctx context.Context, paymentID id.ID, status entity.Status) error
}
