// Package costing maintains weighted-average unit costs and stock levels
// for goods as purchase, sale and loss events are recorded, edited and
// replayed.
package costing

import (
	"tradeledger/internal/core/types"

	"github.com/shopspring/decimal"
)

// State is the running cost position of one goods item. UnitCost and
// TotalValue carry full precision; rounding to 2 decimals happens only
// when the state is persisted or snapshotted.
type State struct {
	Stock      int
	UnitCost   types.Money
	TotalValue types.Money
}

// ZeroState returns the starting state for a replay.
func ZeroState() State {
	return State{Stock: 0, UnitCost: types.Zero(), TotalValue: types.Zero()}
}

// ApplyPurchase blends an incoming purchase into the weighted average:
//
//	new_cost = (stock*cost*spec + num*price*spec) / (new_stock*spec)
//
// When new_stock*spec is zero the incoming unit price is used instead of
// dividing.
func ApplyPurchase(st State, spec, num int, unitPrice types.Money) State {
	newStock := st.Stock + num
	incoming := types.MulInt(unitPrice, int64(num)*int64(spec))
	newValue := st.TotalValue.Add(incoming)

	var newCost types.Money
	if newStock > 0 && spec > 0 {
		newCost = types.DivInt(newValue, int64(newStock)*int64(spec))
	} else {
		newCost = unitPrice
	}

	return State{Stock: newStock, UnitCost: newCost, TotalValue: newValue}
}

// ApplySale removes num units from stock and returns the cost snapshot for
// the sale row. The snapshot is the current unit cost rounded to 2 decimals;
// a sale never changes the unit cost.
func ApplySale(st State, spec, num int) (State, types.Money) {
	snapshot := types.Round2(st.UnitCost)
	newStock := st.Stock - num
	if newStock < 0 {
		newStock = 0
	}
	newValue := st.TotalValue.Sub(types.MulInt(st.UnitCost, int64(num)*int64(spec)))
	if newValue.IsNegative() {
		newValue = types.Zero()
	}
	return State{Stock: newStock, UnitCost: st.UnitCost, TotalValue: newValue}, snapshot
}

// ApplyLoss removes lost units; cost semantics are identical to a sale.
func ApplyLoss(st State, spec, num int) (State, types.Money) {
	return ApplySale(st, spec, num)
}

// ReversePurchase subtracts a purchase's contribution symmetrically. Stock
// floors at zero; the unit cost is recomputed from the remaining value, or
// zeroed when nothing remains.
func ReversePurchase(st State, spec, num int, unitPrice types.Money) State {
	newStock := st.Stock - num
	if newStock < 0 {
		newStock = 0
	}
	newValue := st.TotalValue.Sub(types.MulInt(unitPrice, int64(num)*int64(spec)))
	if newValue.IsNegative() {
		newValue = types.Zero()
	}

	var newCost types.Money
	if newStock > 0 && spec > 0 {
		newCost = types.DivInt(newValue, int64(newStock)*int64(spec))
	} else {
		newCost = types.Zero()
		newValue = types.Zero()
	}

	return State{Stock: newStock, UnitCost: newCost, TotalValue: newValue}
}

// ReverseSale returns sold units to stock at the sale's cost snapshot.
// The unit cost is not recomputed; a sale never changed it.
func ReverseSale(st State, spec, num int, costSnapshot types.Money) State {
	newStock := st.Stock + num
	newValue := st.TotalValue.Add(types.MulInt(costSnapshot, int64(num)*int64(spec)))
	return State{Stock: newStock, UnitCost: st.UnitCost, TotalValue: newValue}
}

// ReverseLoss restores lost units; identical to reversing a sale.
func ReverseLoss(st State, spec, num int, costSnapshot types.Money) State {
	return ReverseSale(st, spec, num, costSnapshot)
}

// Amount is the billed value of an event: num * spec * unit_price.
func Amount(spec, num int, unitPrice types.Money) types.Money {
	return types.MulInt(unitPrice, int64(num)*int64(spec))
}

// SaleProfit computes the per-unit and total profit from the sale price and
// the cost snapshot taken at sale time.
func SaleProfit(spec, num int, unitPrice, costSnapshot types.Money) (unitProfit, totalProfit types.Money) {
	unitProfit = unitPrice.Sub(costSnapshot)
	totalProfit = types.MulInt(unitProfit, int64(num)*int64(spec))
	return unitProfit, totalProfit
}

// LossValue is the write-off value of a loss at the snapshot cost.
func LossValue(spec, num int, costSnapshot types.Money) types.Money {
	return types.MulInt(costSnapshot, int64(num)*int64(spec))
}

// Persisted returns the boundary-rounded form of the state: the unit cost
// rounded to 2 decimals and the total value recomputed from the rounded
// cost so the weighted-average identity holds for stored values.
func (st State) Persisted(spec int) (stock int, unitCost, totalValue types.Money) {
	unitCost = types.Round2(st.UnitCost)
	totalValue = types.Round2(unitCost.Mul(decimal.NewFromInt(int64(st.Stock) * int64(spec))))
	return st.Stock, unitCost, totalValue
}
