// Package expense provides operating expense records: rent, wages, freight
// and other costs that reduce profit but are not tied to a trade event.
package expense

import (
	"context"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/types"
)

// Expense is one operating cost entry.
type Expense struct {
	entity.BaseEntity

	Description string `db:"description" json:"description"`

	// Type is a free-form category, e.g. "rent" or "freight"
	Type string `db:"type" json:"type"`

	Amount types.Money `db:"amount" json:"amount"`

	// ExpenseDate has day precision
	ExpenseDate time.Time `db:"expense_date" json:"expenseDate"`

	Remark *string `db:"remark" json:"remark,omitempty"`
}

// Validate implements entity.Validatable interface.
func (e *Expense) Validate(ctx context.Context) error {
	if e.Description == "" {
		return apperror.NewValidation("description is required").
			WithDetail("field", "description")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", e.Amount.String())
	}
	if e.ExpenseDate.IsZero() {
		return apperror.NewValidation("expense date is required").
			WithDetail("field", "expenseDate")
	}
	return nil
}

// CreateInput is the payload for recording an expense.
type CreateInput struct {
	Description string
	Type        string
	Amount      types.Money
	ExpenseDate time.Time
	Remark      *string
}

// UpdateInput carries the editable fields of an expense. Nil means "leave
// unchanged".
type UpdateInput struct {
	Description *string
	Type        *string
	Amount      *types.Money
	ExpenseDate *time.Time
	Remark      *string
}

// ListFilter selects expense records for listings.
type ListFilter struct {
	Search   string
	Type     string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// ListResult is one page of expense rows with the filtered sum.
type ListResult struct {
	Items       []*Expense  `json:"items"`
	TotalCount  int64       `json:"totalCount"`
	TotalAmount types.Money `json:"totalAmount"`
	Limit       int         `json:"limit"`
	Offset      int         `json:"offset"`
}
