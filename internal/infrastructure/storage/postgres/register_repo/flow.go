// Package register_repo provides the PostgreSQL implementation of the
// stock flow register.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradeledger/internal/core/id"
	"tradeledger/internal/domain/costing"
	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const flowTable = "reg_stock_flows"

var flowCols = postgres.ExtractDBColumns[inventory.FlowRecord]()

// FlowRepo implements inventory.FlowRepository.
type FlowRepo struct {
	txm *postgres.TxManager
}

// NewFlowRepo creates a new flow register repository.
func NewFlowRepo(txm *postgres.TxManager) *FlowRepo {
	return &FlowRepo{txm: txm}
}

func (r *FlowRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *FlowRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Insert writes one flow record.
func (r *FlowRepo) Insert(ctx context.Context, rec *inventory.FlowRecord) error {
	data := postgres.StructToMap(rec)

	q := r.builder().
		Insert(flowTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert flow record: %w", err)
	}
	return nil
}

// ListAfter returns records of a goods item with oper_time strictly greater
// than the cutoff, ordered by (oper_time, id) ascending.
func (r *FlowRepo) ListAfter(ctx context.Context, goodsID id.ID, after time.Time) ([]*inventory.FlowRecord, error) {
	q := r.builder().
		Select(flowCols...).
		From(flowTable).
		Where(squirrel.Eq{"goods_id": goodsID}).
		Where(squirrel.Gt{"oper_time": after}).
		OrderBy("oper_time ASC, id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list after: %w", err)
	}

	var items []*inventory.FlowRecord
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list flow records: %w", err)
	}
	return items, nil
}

// ShiftAfter adds delta to the before/after snapshots of every record with
// oper_time strictly greater than the cutoff.
func (r *FlowRepo) ShiftAfter(ctx context.Context, goodsID id.ID, after time.Time, delta int) error {
	q := r.builder().
		Update(flowTable).
		Set("stock_before", squirrel.Expr("stock_before + ?", delta)).
		Set("stock_after", squirrel.Expr("stock_after + ?", delta)).
		Where(squirrel.Eq{"goods_id": goodsID}).
		Where(squirrel.Gt{"oper_time": after})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build shift after: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("shift flow records: %w", err)
	}
	return nil
}

// FindByBiz returns the record(s) created for a business event.
func (r *FlowRepo) FindByBiz(ctx context.Context, operType costing.EventType, bizID id.ID) ([]*inventory.FlowRecord, error) {
	q := r.builder().
		Select(flowCols...).
		From(flowTable).
		Where(squirrel.Eq{"oper_type": operType}).
		Where(squirrel.Eq{"biz_id": bizID}).
		OrderBy("oper_time ASC, id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find by biz: %w", err)
	}

	var items []*inventory.FlowRecord
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("find flow records: %w", err)
	}
	return items, nil
}

// Delete physically removes one flow record.
func (r *FlowRepo) Delete(ctx context.Context, recordID id.ID) error {
	q := r.builder().
		Delete(flowTable).
		Where(squirrel.Eq{"id": recordID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete flow record: %w", err)
	}
	return nil
}

// ListForGoods pages a goods item's history, newest first.
func (r *FlowRepo) ListForGoods(ctx context.Context, goodsID id.ID, limit, offset int) ([]*inventory.FlowRecord, int64, error) {
	countQ := r.builder().
		Select("COUNT(*)").
		From(flowTable).
		Where(squirrel.Eq{"goods_id": goodsID})

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}

	var total int64
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count flow records: %w", err)
	}

	q := r.builder().
		Select(flowCols...).
		From(flowTable).
		Where(squirrel.Eq{"goods_id": goodsID}).
		OrderBy("oper_time DESC, id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}

	var items []*inventory.FlowRecord
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list flow records: %w", err)
	}
	return items, total, nil
}
