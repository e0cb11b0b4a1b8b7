package inventory

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"tradeledger/internal/core/id"
	"tradeledger/internal/domain/costing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memFlowRepo struct {
	rows []*FlowRecord
}

func (r *memFlowRepo) Insert(ctx context.Context, rec *FlowRecord) error {
	cp := *rec
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memFlowRepo) sorted(goodsID id.ID) []*FlowRecord {
	var out []*FlowRecord
	for _, rec := range r.rows {
		if rec.GoodsID == goodsID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OperTime.Equal(out[j].OperTime) {
			return out[i].OperTime.Before(out[j].OperTime)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r *memFlowRepo) ListAfter(ctx context.Context, goodsID id.ID, after time.Time) ([]*FlowRecord, error) {
	var out []*FlowRecord
	for _, rec := range r.sorted(goodsID) {
		if rec.OperTime.After(after) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memFlowRepo) ShiftAfter(ctx context.Context, goodsID id.ID, after time.Time, delta int) error {
	for _, rec := range r.rows {
		if rec.GoodsID == goodsID && rec.OperTime.After(after) {
			rec.StockBefore += delta
			rec.StockAfter += delta
		}
	}
	return nil
}

func (r *memFlowRepo) FindByBiz(ctx context.Context, operType costing.EventType, bizID id.ID) ([]*FlowRecord, error) {
	var out []*FlowRecord
	for _, rec := range r.rows {
		if rec.OperType == operType && rec.BizID == bizID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memFlowRepo) Delete(ctx context.Context, recordID id.ID) error {
	for i, rec := range r.rows {
		if rec.ID == recordID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memFlowRepo) ListForGoods(ctx context.Context, goodsID id.ID, limit, offset int) ([]*FlowRecord, int64, error) {
	all := r.sorted(goodsID)
	total := int64(len(all))
	// newest first
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// assertChain verifies the ledger invariant: consecutive records link
// before/after, and the final stock_after matches expectStock.
func assertChain(t *testing.T, repo *memFlowRepo, goodsID id.ID, expectStock int) {
	t.Helper()
	recs := repo.sorted(goodsID)
	for i := 0; i < len(recs); i++ {
		assert.Equal(t, recs[i].StockBefore+recs[i].ChangeNum, recs[i].StockAfter,
			"record %d after != before+change", i)
		if i > 0 {
			assert.Equal(t, recs[i-1].StockAfter, recs[i].StockBefore,
				"chain broken between records %d and %d", i-1, i)
		}
	}
	if len(recs) > 0 {
		assert.Equal(t, expectStock, recs[len(recs)-1].StockAfter, "final stock mismatch")
	} else {
		assert.Equal(t, 0, expectStock)
	}
}

func at(d int) time.Time {
	return time.Date(2024, time.May, d, 12, 0, 0, 0, time.UTC)
}

func TestAppend_TailInsertUsesBaseline(t *testing.T) {
	repo := &memFlowRepo{}
	ledger := NewFlowLedger(repo, fakeTxManager{})
	goodsID := id.New()
	ctx := context.Background()

	rec, err := ledger.Append(ctx, goodsID, costing.EventPurchase, id.New(), 10, at(1), SourcePurchase, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.StockBefore)
	assert.Equal(t, 10, rec.StockAfter)

	rec, err = ledger.Append(ctx, goodsID, costing.EventSale, id.New(), -4, at(2), SourceSale, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, rec.StockBefore)
	assert.Equal(t, 6, rec.StockAfter)

	assertChain(t, repo, goodsID, 6)
}

func TestAppend_HistoricalInsertShiftsFutureRecords(t *testing.T) {
	repo := &memFlowRepo{}
	ledger := NewFlowLedger(repo, fakeTxManager{})
	goodsID := id.New()
	ctx := context.Background()

	_, err := ledger.Append(ctx, goodsID, costing.EventPurchase, id.New(), 10, at(1), SourcePurchase, 0)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, goodsID, costing.EventSale, id.New(), -4, at(5), SourceSale, 10)
	require.NoError(t, err)

	// backdated purchase lands between the two existing records
	rec, err := ledger.Append(ctx, goodsID, costing.EventPurchase, id.New(), 3, at(3), SourcePurchase, 6)
	require.NoError(t, err)

	// takes its stock_before from the nearest future record, not baseline
	assert.Equal(t, 10, rec.StockBefore)
	assert.Equal(t, 13, rec.StockAfter)

	assertChain(t, repo, goodsID, 9)
}

func TestRemove_ClosesChainOverGap(t *testing.T) {
	repo := &memFlowRepo{}
	ledger := NewFlowLedger(repo, fakeTxManager{})
	goodsID := id.New()
	ctx := context.Background()

	purchaseID := id.New()
	_, err := ledger.Append(ctx, goodsID, costing.EventPurchase, id.New(), 10, at(1), SourcePurchase, 0)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, goodsID, costing.EventPurchase, purchaseID, 5, at(2), SourcePurchase, 10)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, goodsID, costing.EventSale, id.New(), -4, at(3), SourceSale, 15)
	require.NoError(t, err)

	require.NoError(t, ledger.Remove(ctx, costing.EventPurchase, purchaseID))

	assertChain(t, repo, goodsID, 6)
	recs := repo.sorted(goodsID)
	require.Len(t, recs, 2)
}

func TestRemove_MultipleRecordsSameBizID(t *testing.T) {
	repo := &memFlowRepo{}
	ledger := NewFlowLedger(repo, fakeTxManager{})
	goodsID := id.New()
	ctx := context.Background()

	bizID := id.New()
	_, err := ledger.Append(ctx, goodsID, costing.EventPurchase, id.New(), 10, at(1), SourcePurchase, 0)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, goodsID, costing.EventSale, bizID, -2, at(2), SourceSale, 10)
	require.NoError(t, err)
	_, err = ledger.Append(ctx, goodsID, costing.EventSale, bizID, -3, at(3), SourceSale, 8)
	require.NoError(t, err)

	require.NoError(t, ledger.Remove(ctx, costing.EventSale, bizID))

	assertChain(t, repo, goodsID, 10)
}

func TestChainConsistency_RandomisedAppendRemove(t *testing.T) {
	repo := &memFlowRepo{}
	ledger := NewFlowLedger(repo, fakeTxManager{})
	goodsID := id.New()
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	stock := 0
	type liveEvent struct {
		bizID  id.ID
		change int
	}
	var live []liveEvent

	for i := 0; i < 200; i++ {
		switch {
		case len(live) > 0 && rng.Intn(4) == 0:
			// remove a random historical event
			idx := rng.Intn(len(live))
			ev := live[idx]
			require.NoError(t, ledger.Remove(ctx, costing.EventPurchase, ev.bizID))
			stock -= ev.change
			live = append(live[:idx], live[idx+1:]...)

		default:
			// append at a random historical day
			change := rng.Intn(9) + 1
			bizID := id.New()
			day := at(rng.Intn(28) + 1)
			_, err := ledger.Append(ctx, goodsID, costing.EventPurchase, bizID, change, day, SourcePurchase, stock)
			require.NoError(t, err)
			stock += change
			live = append(live, liveEvent{bizID: bizID, change: change})
		}
	}

	assertChain(t, repo, goodsID, stock)
}
