package costing

import (
	"testing"

	"tradeledger/internal/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(t *testing.T, s string) types.Money {
	t.Helper()
	m, err := types.NewMoneyFromString(s)
	require.NoError(t, err)
	return m
}

func TestApplyPurchase_WeightedAverage(t *testing.T) {
	st := ZeroState()

	// 10 units @ 5.00 into empty stock
	st = ApplyPurchase(st, 1, 10, money(t, "5.00"))
	assert.Equal(t, 10, st.Stock)
	assert.True(t, st.UnitCost.Equal(money(t, "5.00")), "cost = %s", st.UnitCost)
	assert.True(t, st.TotalValue.Equal(money(t, "50.00")), "value = %s", st.TotalValue)

	// 5 more @ 8.00 blends to (10*5 + 5*8) / 15
	st = ApplyPurchase(st, 1, 5, money(t, "8.00"))
	assert.Equal(t, 15, st.Stock)

	stock, cost, value := st.Persisted(1)
	assert.Equal(t, 15, stock)
	assert.True(t, cost.Equal(money(t, "4.67")), "cost = %s", cost)
	assert.True(t, value.Equal(money(t, "70.05")), "value = %s", value)
}

func TestApplyPurchase_EmptyStockUsesIncomingPrice(t *testing.T) {
	st := ApplyPurchase(ZeroState(), 3, 0, money(t, "9.99"))

	assert.Equal(t, 0, st.Stock)
	assert.True(t, st.UnitCost.Equal(money(t, "9.99")))
}

func TestApplyPurchase_SpecMultiplier(t *testing.T) {
	// 4 packages of 5 kg @ 2.50/kg = 50.00 total
	st := ApplyPurchase(ZeroState(), 5, 4, money(t, "2.50"))

	assert.Equal(t, 4, st.Stock)
	assert.True(t, st.UnitCost.Equal(money(t, "2.50")))
	assert.True(t, st.TotalValue.Equal(money(t, "50.00")))
}

func TestApplySale_SnapshotAndProfit(t *testing.T) {
	st := ApplyPurchase(ZeroState(), 1, 10, money(t, "5.00"))
	st = ApplyPurchase(st, 1, 5, money(t, "8.00"))

	st, snapshot := ApplySale(st, 1, 5)
	assert.Equal(t, 10, st.Stock)
	assert.True(t, snapshot.Equal(money(t, "4.67")), "snapshot = %s", snapshot)

	unitProfit, totalProfit := SaleProfit(1, 5, money(t, "10.00"), snapshot)
	assert.True(t, unitProfit.Equal(money(t, "5.33")), "unit profit = %s", unitProfit)
	assert.True(t, totalProfit.Equal(money(t, "26.65")), "total profit = %s", totalProfit)

	// selling does not move the unit cost
	_, cost, _ := st.Persisted(1)
	assert.True(t, cost.Equal(money(t, "4.67")))
}

func TestApplyLoss_SameCostSemanticsAsSale(t *testing.T) {
	st := ApplyPurchase(ZeroState(), 2, 10, money(t, "3.00"))

	st, snapshot := ApplyLoss(st, 2, 4)
	assert.Equal(t, 6, st.Stock)
	assert.True(t, snapshot.Equal(money(t, "3.00")))
	assert.True(t, LossValue(2, 4, snapshot).Equal(money(t, "24.00")))
}

func TestReversePurchase_RoundTrip(t *testing.T) {
	base := ApplyPurchase(ZeroState(), 1, 10, money(t, "5.00"))

	st := ApplyPurchase(base, 1, 5, money(t, "8.00"))
	st = ReversePurchase(st, 1, 5, money(t, "8.00"))

	assert.Equal(t, base.Stock, st.Stock)
	assert.True(t, st.UnitCost.Equal(base.UnitCost), "cost = %s", st.UnitCost)
	assert.True(t, st.TotalValue.Equal(base.TotalValue), "value = %s", st.TotalValue)
}

func TestReversePurchase_FloorsAtZero(t *testing.T) {
	st := ApplyPurchase(ZeroState(), 1, 3, money(t, "5.00"))

	// reversing more than is on hand clamps instead of going negative
	st = ReversePurchase(st, 1, 10, money(t, "5.00"))
	assert.Equal(t, 0, st.Stock)
	assert.True(t, st.UnitCost.IsZero())
	assert.True(t, st.TotalValue.IsZero())
}

func TestReverseSale_RestoresStockAtSnapshot(t *testing.T) {
	st := ApplyPurchase(ZeroState(), 1, 10, money(t, "5.00"))
	before := st

	st, snapshot := ApplySale(st, 1, 4)
	st = ReverseSale(st, 1, 4, snapshot)

	assert.Equal(t, before.Stock, st.Stock)
	assert.True(t, st.TotalValue.Equal(before.TotalValue))
}

func TestPersisted_WeightedAverageIdentity(t *testing.T) {
	st := ApplyPurchase(ZeroState(), 5, 7, money(t, "1.33"))
	st = ApplyPurchase(st, 5, 3, money(t, "2.77"))
	st, _ = ApplySale(st, 5, 4)

	stock, cost, value := st.Persisted(5)

	// stored value must equal stored cost * stock * spec exactly
	expect := types.Round2(types.MulInt(cost, int64(stock)*5))
	assert.True(t, value.Equal(expect), "value %s != cost*stock*spec %s", value, expect)
}

func TestEventAmount(t *testing.T) {
	amount := Amount(5, 3, money(t, "2.00"))
	assert.True(t, amount.Equal(money(t, "30.00")))
}
