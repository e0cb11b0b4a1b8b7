package costing

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"tradeledger/internal/core/id"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/core/types"
	"tradeledger/pkg/logger"
)

// EventType identifies the kind of trade event being replayed.
type EventType string

const (
	EventPurchase EventType = "purchase"
	EventSale     EventType = "sale"
	EventLoss     EventType = "loss"
)

// replayPriority orders same-day events: purchases land before sales,
// sales before losses.
func (t EventType) replayPriority() int {
	switch t {
	case EventPurchase:
		return 0
	case EventSale:
		return 1
	default:
		return 2
	}
}

// ReplayEvent is one chronological event in a goods item's history.
type ReplayEvent struct {
	ID   id.ID
	Type EventType
	Date time.Time

	// Num is the package count of the event
	Num int

	// UnitPrice is the purchase cost price or the sale price per base
	// unit; unused for losses.
	UnitPrice types.Money

	// StatementID links a sale to its statement, if any
	StatementID *id.ID
}

// EventSource supplies the non-deleted event history of a goods item and
// accepts rewritten snapshots during a replay.
type EventSource interface {
	ListForGoods(ctx context.Context, goodsID id.ID) ([]ReplayEvent, error)

	UpdateSaleSnapshot(ctx context.Context, saleID id.ID, cost, unitProfit, totalProfit types.Money) error

	UpdateLossSnapshot(ctx context.Context, lossID id.ID, cost, totalValue types.Money) error
}

// GoodsStore is the narrow view of the goods catalog the engine writes to.
type GoodsStore interface {
	GetStockInfo(ctx context.Context, goodsID id.ID) (spec int, err error)

	SaveStock(ctx context.Context, goodsID id.ID, stockNum int, unitCost, totalValue types.Money) error

	// ListAllIDs returns the IDs of every active goods row
	ListAllIDs(ctx context.Context) ([]id.ID, error)
}

// StatementRecomputer rebuilds sale statement totals wholesale from their
// member sets after snapshots changed.
type StatementRecomputer interface {
	RecomputeSaleStatements(ctx context.Context, statementIDs []id.ID) error
}

// Engine performs the authoritative full chronological replay for a goods
// item. Incremental updates are applied by the event services with the pure
// functions in this package; the engine is invoked when an edit may have
// disrupted chronological ordering.
type Engine struct {
	goods      GoodsStore
	events     EventSource
	statements StatementRecomputer
	txManager  tx.Manager
}

// NewEngine creates a replay engine.
func NewEngine(goods GoodsStore, events EventSource, statements StatementRecomputer, txManager tx.Manager) *Engine {
	return &Engine{
		goods:      goods,
		events:     events,
		statements: statements,
		txManager:  txManager,
	}
}

// Reconcile replays a goods item's full event history from zero state,
// rewriting every sale and loss snapshot, persisting the final stock, cost
// and value, and recomputing the sale statements whose members changed.
// Runs inside the caller's transaction when one is active.
func (e *Engine) Reconcile(ctx context.Context, goodsID id.ID) error {
	return e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return e.reconcileLocked(ctx, goodsID)
	})
}

func (e *Engine) reconcileLocked(ctx context.Context, goodsID id.ID) error {
	spec, err := e.goods.GetStockInfo(ctx, goodsID)
	if err != nil {
		return err
	}

	events, err := e.events.ListForGoods(ctx, goodsID)
	if err != nil {
		return fmt.Errorf("list events for goods: %w", err)
	}
	sortReplayEvents(events)

	st := ZeroState()
	affected := make(map[id.ID]struct{})

	for _, ev := range events {
		switch ev.Type {
		case EventPurchase:
			st = ApplyPurchase(st, spec, ev.Num, ev.UnitPrice)

		case EventSale:
			var snapshot types.Money
			st, snapshot = ApplySale(st, spec, ev.Num)
			unitProfit, totalProfit := SaleProfit(spec, ev.Num, ev.UnitPrice, snapshot)
			if err := e.events.UpdateSaleSnapshot(ctx, ev.ID, snapshot, types.Round2(unitProfit), types.Round2(totalProfit)); err != nil {
				return fmt.Errorf("rewrite sale snapshot: %w", err)
			}
			if ev.StatementID != nil {
				affected[*ev.StatementID] = struct{}{}
			}

		case EventLoss:
			var snapshot types.Money
			st, snapshot = ApplyLoss(st, spec, ev.Num)
			value := types.Round2(LossValue(spec, ev.Num, snapshot))
			if err := e.events.UpdateLossSnapshot(ctx, ev.ID, snapshot, value); err != nil {
				return fmt.Errorf("rewrite loss snapshot: %w", err)
			}
		}
	}

	stock, unitCost, totalValue := st.Persisted(spec)
	if err := e.goods.SaveStock(ctx, goodsID, stock, unitCost, totalValue); err != nil {
		return fmt.Errorf("persist goods stock: %w", err)
	}

	if len(affected) > 0 {
		ids := make([]id.ID, 0, len(affected))
		for sid := range affected {
			ids = append(ids, sid)
		}
		if err := e.statements.RecomputeSaleStatements(ctx, ids); err != nil {
			return fmt.Errorf("recompute sale statements: %w", err)
		}
	}

	return nil
}

// ReconcileAll replays every goods item serially, one transaction each, so
// a failure leaves only the remaining items unprocessed.
func (e *Engine) ReconcileAll(ctx context.Context) error {
	ids, err := e.goods.ListAllIDs(ctx)
	if err != nil {
		return err
	}

	for _, goodsID := range ids {
		if err := e.Reconcile(ctx, goodsID); err != nil {
			logger.Error(ctx, "reconcile failed", "goods_id", goodsID, "error", err)
			return fmt.Errorf("reconcile goods %s: %w", goodsID, err)
		}
	}

	logger.Info(ctx, "full reconcile finished", "goods_count", len(ids))
	return nil
}

// sortReplayEvents orders events by (day, type priority, id). UUIDv7 ids are
// time-ordered, so the id tiebreak preserves insertion order within a day.
func sortReplayEvents(events []ReplayEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		di, dj := types.DayStart(events[i].Date), types.DayStart(events[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		pi, pj := events[i].Type.replayPriority(), events[j].Type.replayPriority()
		if pi != pj {
			return pi < pj
		}
		return bytes.Compare(events[i].ID[:], events[j].ID[:]) < 0
	})
}
