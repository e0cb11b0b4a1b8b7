// Package statement maintains reconciliation statements: the per-counterparty
// billing periods purchase and sale events accumulate into, with their
// confirm/unconfirm lifecycle and payment tracking.
package statement

import (
	"context"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
)

// Side distinguishes purchase statements (owed to suppliers) from sale
// statements (owed by purchasers).
type Side string

const (
	SidePurchase Side = "purchase"
	SideSale     Side = "sale"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SidePurchase || s == SideSale
}

// Totals is the aggregate contribution of a set of member events.
// Cost and Profit are only meaningful on the sale side.
type Totals struct {
	Amount types.Money
	Cost   types.Money
	Profit types.Money
}

// ZeroTotals returns an all-zero aggregate.
func ZeroTotals() Totals {
	return Totals{Amount: types.Zero(), Cost: types.Zero(), Profit: types.Zero()}
}

// Add returns the member-wise sum.
func (t Totals) Add(other Totals) Totals {
	return Totals{
		Amount: t.Amount.Add(other.Amount),
		Cost:   t.Cost.Add(other.Cost),
		Profit: t.Profit.Add(other.Profit),
	}
}

// Sub returns the member-wise difference.
func (t Totals) Sub(other Totals) Totals {
	return Totals{
		Amount: t.Amount.Sub(other.Amount),
		Cost:   t.Cost.Sub(other.Cost),
		Profit: t.Profit.Sub(other.Profit),
	}
}

// ClampZero floors every component at zero.
func (t Totals) ClampZero() Totals {
	out := t
	if out.Amount.IsNegative() {
		out.Amount = types.Zero()
	}
	if out.Cost.IsNegative() {
		out.Cost = types.Zero()
	}
	if out.Profit.IsNegative() {
		out.Profit = types.Zero()
	}
	return out
}

// Statement is one reconciliation period for a counterparty. An open
// statement (EndDate nil) is the accumulation target for new events; at most
// one exists per counterparty per side at any time.
type Statement struct {
	entity.BaseEntity

	// Side is purchase or sale
	Side Side `db:"side" json:"side"`

	// CounterpartyID references a supplier (purchase side) or purchaser (sale side)
	CounterpartyID id.ID `db:"counterparty_id" json:"counterpartyId"`

	// StartDate is nil for a counterparty's very first statement
	StartDate *time.Time `db:"start_date" json:"startDate,omitempty"`

	// EndDate is nil while the statement is open
	EndDate *time.Time `db:"end_date" json:"endDate,omitempty"`

	// Amount is the summed value of member events
	Amount types.Money `db:"amount" json:"amount"`

	// TotalCost / TotalProfit are tracked on sale statements only
	TotalCost   types.Money `db:"total_cost" json:"totalCost"`
	TotalProfit types.Money `db:"total_profit" json:"totalProfit"`

	// Settled is the amount already paid (purchase) or received (sale)
	Settled types.Money `db:"settled" json:"settled"`

	// Outstanding is Amount - Settled
	Outstanding types.Money `db:"outstanding" json:"outstanding"`

	// SettledStatus is true iff Outstanding <= 0
	SettledStatus bool `db:"settled_status" json:"settledStatus"`

	// InvoiceStatus marks whether an invoice was issued; mutable only on
	// confirmed statements
	InvoiceStatus bool `db:"invoice_status" json:"invoiceStatus"`
}

// NewStatement creates an open statement for a counterparty.
func NewStatement(side Side, counterpartyID id.ID, startDate *time.Time) *Statement {
	return &Statement{
		BaseEntity:     entity.NewBaseEntity(),
		Side:           side,
		CounterpartyID: counterpartyID,
		StartDate:      startDate,
		Amount:         types.Zero(),
		TotalCost:      types.Zero(),
		TotalProfit:    types.Zero(),
		Settled:        types.Zero(),
		Outstanding:    types.Zero(),
	}
}

// Validate implements entity.Validatable interface.
func (s *Statement) Validate(ctx context.Context) error {
	if !s.Side.Valid() {
		return apperror.NewValidation("invalid statement side").
			WithDetail("field", "side").
			WithDetail("value", string(s.Side))
	}
	if id.IsNil(s.CounterpartyID) {
		return apperror.NewValidation("counterparty is required").
			WithDetail("field", "counterpartyId")
	}
	if s.StartDate != nil && s.EndDate != nil && s.EndDate.Before(*s.StartDate) {
		return apperror.NewValidation("end date before start date").
			WithDetail("startDate", types.FormatDate(*s.StartDate)).
			WithDetail("endDate", types.FormatDate(*s.EndDate))
	}
	return nil
}

// IsOpen reports whether the statement still accumulates events.
func (s *Statement) IsOpen() bool {
	return s.EndDate == nil
}

// IsConfirmed reports whether the statement period is closed.
func (s *Statement) IsConfirmed() bool {
	return s.EndDate != nil
}

// SetTotals overwrites the materialized totals and refreshes the settlement
// position from the current Settled amount.
func (s *Statement) SetTotals(t Totals) {
	s.Amount = types.Round2(t.Amount)
	s.TotalCost = types.Round2(t.Cost)
	s.TotalProfit = types.Round2(t.Profit)
	s.refreshSettlement()
}

// ApplySettled overwrites the settled amount and refreshes the position.
func (s *Statement) ApplySettled(settled types.Money) {
	s.Settled = types.Round2(settled)
	s.refreshSettlement()
}

func (s *Statement) refreshSettlement() {
	s.Outstanding = s.Amount.Sub(s.Settled)
	s.SettledStatus = !s.Outstanding.IsPositive()
	s.Touch()
}

// Contains reports whether a date falls within the statement period.
// The upper bound is inclusive; a nil StartDate is an open lower bound.
func (s *Statement) Contains(date time.Time) bool {
	d := types.DayStart(date)
	if s.StartDate != nil && d.Before(types.DayStart(*s.StartDate)) {
		return false
	}
	if s.EndDate != nil && d.After(types.DayStart(*s.EndDate)) {
		return false
	}
	return true
}
