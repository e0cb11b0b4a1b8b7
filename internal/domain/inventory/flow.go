// Package inventory provides the per-goods stock flow ledger and inventory
// loss records.
package inventory

import (
	"context"
	"time"

	"tradeledger/internal/core/id"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/domain/costing"
)

// FlowRecord is one audit-log entry of a stock delta with its before/after
// snapshot. For a fixed goods item, records ordered by (oper_time, id) form
// a chain where each stock_before equals the previous stock_after.
type FlowRecord struct {
	ID       id.ID             `db:"id" json:"id"`
	GoodsID  id.ID             `db:"goods_id" json:"goodsId"`
	OperType costing.EventType `db:"oper_type" json:"operType"`

	// BizID references the originating purchase/sale/loss event
	BizID id.ID `db:"biz_id" json:"bizId"`

	// ChangeNum is the signed stock delta in packages
	ChangeNum int `db:"change_num" json:"changeNum"`

	StockBefore int `db:"stock_before" json:"stockBefore"`
	StockAfter  int `db:"stock_after" json:"stockAfter"`

	OperTime  time.Time `db:"oper_time" json:"operTime"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// FlowRepository defines the persistence primitives the ledger is built on.
type FlowRepository interface {
	Insert(ctx context.Context, rec *FlowRecord) error

	// ListAfter returns records of a goods item with oper_time strictly
	// greater than the cutoff, ordered by (oper_time, id) ascending.
	ListAfter(ctx context.Context, goodsID id.ID, after time.Time) ([]*FlowRecord, error)

	// ShiftAfter adds delta to stock_before and stock_after of every
	// record with oper_time strictly greater than the cutoff.
	ShiftAfter(ctx context.Context, goodsID id.ID, after time.Time, delta int) error

	// FindByBiz returns the record(s) created for a business event.
	FindByBiz(ctx context.Context, operType costing.EventType, bizID id.ID) ([]*FlowRecord, error)

	// Delete physically removes a ledger row (used only by chain repair).
	Delete(ctx context.Context, recordID id.ID) error

	// ListForGoods pages a goods item's history, newest first.
	ListForGoods(ctx context.Context, goodsID id.ID, limit, offset int) ([]*FlowRecord, int64, error)
}

// FlowLedger maintains the chain. Insertions may land at arbitrary
// historical dates; future records are shifted to absorb them, keeping the
// before/after chain consistent.
type FlowLedger struct {
	repo      FlowRepository
	txManager tx.Manager
}

// NewFlowLedger creates a flow ledger over the given repository.
func NewFlowLedger(repo FlowRepository, txManager tx.Manager) *FlowLedger {
	return &FlowLedger{repo: repo, txManager: txManager}
}

// Append inserts a flow record at operTime. When future records exist, the
// new record takes its stock_before from the nearest one and every future
// record is shifted by the change; otherwise baseline (the goods item's
// stock before this event) is used.
func (l *FlowLedger) Append(ctx context.Context, goodsID id.ID, operType costing.EventType, bizID id.ID, changeNum int, operTime time.Time, source string, baseline int) (*FlowRecord, error) {
	var rec *FlowRecord
	err := l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		future, err := l.repo.ListAfter(ctx, goodsID, operTime)
		if err != nil {
			return err
		}

		before := baseline
		if len(future) > 0 {
			before = future[0].StockBefore
		}

		rec = &FlowRecord{
			ID:          id.New(),
			GoodsID:     goodsID,
			OperType:    operType,
			BizID:       bizID,
			ChangeNum:   changeNum,
			StockBefore: before,
			StockAfter:  before + changeNum,
			OperTime:    operTime,
			Source:      source,
			CreatedAt:   time.Now().UTC(),
		}
		if err := l.repo.Insert(ctx, rec); err != nil {
			return err
		}

		if len(future) > 0 {
			return l.repo.ShiftAfter(ctx, goodsID, operTime, changeNum)
		}
		return nil
	})
	return rec, err
}

// Remove deletes the record(s) of a business event, shifting every later
// record back by the removed change so the chain closes over the gap.
func (l *FlowLedger) Remove(ctx context.Context, operType costing.EventType, bizID id.ID) error {
	return l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		matches, err := l.repo.FindByBiz(ctx, operType, bizID)
		if err != nil {
			return err
		}
		for _, rec := range matches {
			if err := l.repo.ShiftAfter(ctx, rec.GoodsID, rec.OperTime, -rec.ChangeNum); err != nil {
				return err
			}
			if err := l.repo.Delete(ctx, rec.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// History pages a goods item's flow records, newest first.
func (l *FlowLedger) History(ctx context.Context, goodsID id.ID, limit, offset int) ([]*FlowRecord, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return l.repo.ListForGoods(ctx, goodsID, limit, offset)
}

// Sources recorded on flow rows.
const (
	SourcePurchase       = "purchase in"
	SourcePurchaseRevert = "purchase revert"
	SourceSale           = "sale out"
	SourceSaleRevert     = "sale revert"
	SourceLoss           = "inventory loss"
	SourceLossRevert     = "loss revert"
)
