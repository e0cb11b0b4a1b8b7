package expense

import (
	"context"
	"time"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
)

// Repository defines the interface for expense persistence.
type Repository interface {
	Create(ctx context.Context, e *Expense) error

	GetByID(ctx context.Context, expenseID id.ID) (*Expense, error)

	Update(ctx context.Context, e *Expense) error

	SetStatus(ctx context.Context, expenseID id.ID, status entity.Status) error

	List(ctx context.Context, filter ListFilter) (ListResult, error)

	// SumForPeriod totals non-deleted expenses inside [from, to]; nil
	// bounds are open-ended.
	SumForPeriod(ctx context.Context, from, to *time.Time) (types.Money, error)
}
