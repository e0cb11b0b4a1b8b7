package costing

import (
	"context"
	"testing"
	"time"

	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeGoodsStore struct {
	spec       int
	savedStock int
	savedCost  types.Money
	savedValue types.Money
	ids        []id.ID
}

func (g *fakeGoodsStore) GetStockInfo(ctx context.Context, goodsID id.ID) (int, error) {
	return g.spec, nil
}

func (g *fakeGoodsStore) SaveStock(ctx context.Context, goodsID id.ID, stockNum int, unitCost, totalValue types.Money) error {
	g.savedStock = stockNum
	g.savedCost = unitCost
	g.savedValue = totalValue
	return nil
}

func (g *fakeGoodsStore) ListAllIDs(ctx context.Context) ([]id.ID, error) {
	return g.ids, nil
}

type saleSnapshot struct {
	cost        types.Money
	unitProfit  types.Money
	totalProfit types.Money
}

type fakeEventSource struct {
	events        []ReplayEvent
	saleSnapshots map[id.ID]saleSnapshot
	lossSnapshots map[id.ID]types.Money
}

func newFakeEventSource(events ...ReplayEvent) *fakeEventSource {
	return &fakeEventSource{
		events:        events,
		saleSnapshots: make(map[id.ID]saleSnapshot),
		lossSnapshots: make(map[id.ID]types.Money),
	}
}

func (s *fakeEventSource) ListForGoods(ctx context.Context, goodsID id.ID) ([]ReplayEvent, error) {
	return s.events, nil
}

func (s *fakeEventSource) UpdateSaleSnapshot(ctx context.Context, saleID id.ID, cost, unitProfit, totalProfit types.Money) error {
	s.saleSnapshots[saleID] = saleSnapshot{cost: cost, unitProfit: unitProfit, totalProfit: totalProfit}
	return nil
}

func (s *fakeEventSource) UpdateLossSnapshot(ctx context.Context, lossID id.ID, cost, totalValue types.Money) error {
	s.lossSnapshots[lossID] = cost
	return nil
}

type fakeRecomputer struct {
	recomputed []id.ID
}

func (r *fakeRecomputer) RecomputeSaleStatements(ctx context.Context, statementIDs []id.ID) error {
	r.recomputed = append(r.recomputed, statementIDs...)
	return nil
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

// --- tests ---

func TestReconcile_ReplaysHistoryAfterRetroactiveDelete(t *testing.T) {
	// History after deleting a second purchase: 10 @ 5.00, then a sale of
	// 5 @ 10.00. Replay must land on stock=5, cost=5.00, and rewrite the
	// sale snapshot to the new cost.
	goodsID := id.New()
	saleID := id.New()
	stmtID := id.New()

	source := newFakeEventSource(
		ReplayEvent{ID: saleID, Type: EventSale, Date: day(3), Num: 5, UnitPrice: types.MustMoney("10.00"), StatementID: &stmtID},
		ReplayEvent{ID: id.New(), Type: EventPurchase, Date: day(1), Num: 10, UnitPrice: types.MustMoney("5.00")},
	)
	store := &fakeGoodsStore{spec: 1}
	recomputer := &fakeRecomputer{}
	engine := NewEngine(store, source, recomputer, fakeTxManager{})

	require.NoError(t, engine.Reconcile(context.Background(), goodsID))

	assert.Equal(t, 5, store.savedStock)
	assert.True(t, store.savedCost.Equal(types.MustMoney("5.00")), "cost = %s", store.savedCost)
	assert.True(t, store.savedValue.Equal(types.MustMoney("25.00")), "value = %s", store.savedValue)

	snap, ok := source.saleSnapshots[saleID]
	require.True(t, ok, "sale snapshot not rewritten")
	assert.True(t, snap.cost.Equal(types.MustMoney("5.00")))
	assert.True(t, snap.unitProfit.Equal(types.MustMoney("5.00")))
	assert.True(t, snap.totalProfit.Equal(types.MustMoney("25.00")))

	require.Len(t, recomputer.recomputed, 1)
	assert.Equal(t, stmtID, recomputer.recomputed[0])
}

func TestReconcile_SameDayOrderingPurchaseBeforeSaleBeforeLoss(t *testing.T) {
	goodsID := id.New()
	saleID := id.New()
	lossID := id.New()

	// All three on the same day, listed out of order. The purchase must be
	// applied first or the sale would see zero stock.
	source := newFakeEventSource(
		ReplayEvent{ID: lossID, Type: EventLoss, Date: day(1), Num: 2},
		ReplayEvent{ID: saleID, Type: EventSale, Date: day(1), Num: 3, UnitPrice: types.MustMoney("7.00")},
		ReplayEvent{ID: id.New(), Type: EventPurchase, Date: day(1), Num: 10, UnitPrice: types.MustMoney("4.00")},
	)
	store := &fakeGoodsStore{spec: 1}
	engine := NewEngine(store, source, &fakeRecomputer{}, fakeTxManager{})

	require.NoError(t, engine.Reconcile(context.Background(), goodsID))

	assert.Equal(t, 5, store.savedStock)
	assert.True(t, store.savedCost.Equal(types.MustMoney("4.00")))

	snap := source.saleSnapshots[saleID]
	assert.True(t, snap.cost.Equal(types.MustMoney("4.00")))
	assert.True(t, source.lossSnapshots[lossID].Equal(types.MustMoney("4.00")))
}

func TestReconcile_EmptyHistoryZeroesGoods(t *testing.T) {
	store := &fakeGoodsStore{spec: 2, savedStock: -1}
	engine := NewEngine(store, newFakeEventSource(), &fakeRecomputer{}, fakeTxManager{})

	require.NoError(t, engine.Reconcile(context.Background(), id.New()))

	assert.Equal(t, 0, store.savedStock)
	assert.True(t, store.savedCost.IsZero())
	assert.True(t, store.savedValue.IsZero())
}

func TestReconcileAll_IteratesEveryGoods(t *testing.T) {
	store := &fakeGoodsStore{spec: 1, ids: []id.ID{id.New(), id.New(), id.New()}}
	engine := NewEngine(store, newFakeEventSource(), &fakeRecomputer{}, fakeTxManager{})

	require.NoError(t, engine.ReconcileAll(context.Background()))
}
