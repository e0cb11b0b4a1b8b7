// Package report_repo provides the PostgreSQL implementation of the
// read-only report queries.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/reports"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// TotalInventoryValue sums stock_total_value over active goods.
func (r *ReportRepo) TotalInventoryValue(ctx context.Context) (types.Money, error) {
	q := r.builder.
		Select("COALESCE(SUM(stock_total_value), 0)").
		From("cat_goods").
		Where(squirrel.Eq{"status": entity.StatusActive})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build inventory value: %w", err)
	}

	var total types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("inventory value: %w", err)
	}
	return total, nil
}

// TotalOutstanding sums the outstanding balance of non-deleted statements
// on one side.
func (r *ReportRepo) TotalOutstanding(ctx context.Context, side statement.Side) (types.Money, error) {
	q := r.builder.
		Select("COALESCE(SUM(outstanding), 0)").
		From("doc_statements").
		Where(squirrel.Eq{"side": side}).
		Where(squirrel.Eq{"status": entity.StatusActive})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build outstanding: %w", err)
	}

	var total types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("total outstanding: %w", err)
	}
	return total, nil
}

// SaleProfitForPeriod sums sale total_profit inside [from, to].
func (r *ReportRepo) SaleProfitForPeriod(ctx context.Context, from, to *time.Time) (types.Money, error) {
	q := r.builder.
		Select("COALESCE(SUM(total_profit), 0)").
		From("doc_sales").
		Where(squirrel.Eq{"status": entity.StatusActive})

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"sale_date": types.DayStart(*from)})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"sale_date": types.DayStart(*to)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build profit: %w", err)
	}

	var total types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return types.Zero(), fmt.Errorf("sale profit: %w", err)
	}
	return total, nil
}

func (r *ReportRepo) distribution(ctx context.Context, f reports.DistributionFilter, groupTable, groupJoin, groupID, groupName string) ([]*reports.ProfitSlice, error) {
	q := r.builder.
		Select(
			groupID+" AS id",
			groupName+" AS name",
			"COALESCE(SUM(sl.amount), 0) AS amount",
			"COALESCE(SUM(sl.cost_snapshot * sl.num * g.spec), 0) AS cost",
			"COALESCE(SUM(sl.total_profit), 0) AS profit",
		).
		From("doc_sales sl").
		Join("cat_goods g ON g.id = sl.goods_id").
		Join(groupTable + " ON " + groupJoin).
		Where(squirrel.Eq{"sl.status": entity.StatusActive}).
		GroupBy(groupID, groupName).
		OrderBy("profit DESC").
		Limit(uint64(f.Limit))

	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"sl.sale_date": types.DayStart(*f.DateFrom)})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"sl.sale_date": types.DayStart(*f.DateTo)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build distribution: %w", err)
	}

	var slices []*reports.ProfitSlice
	if err := pgxscan.Select(ctx, r.querier(ctx), &slices, sql, args...); err != nil {
		return nil, fmt.Errorf("profit distribution: %w", err)
	}
	return slices, nil
}

// ProfitByPurchaser groups sale figures by purchaser.
func (r *ReportRepo) ProfitByPurchaser(ctx context.Context, f reports.DistributionFilter) ([]*reports.ProfitSlice, error) {
	return r.distribution(ctx, f, "cat_purchasers p", "p.id = sl.purchaser_id", "p.id", "p.name")
}

// ProfitByGoods groups sale figures by goods item.
func (r *ReportRepo) ProfitByGoods(ctx context.Context, f reports.DistributionFilter) ([]*reports.ProfitSlice, error) {
	return r.distribution(ctx, f, "cat_goods g2", "g2.id = sl.goods_id", "g2.id", "g2.name")
}

// Trend buckets sale figures by day, month or year.
func (r *ReportRepo) Trend(ctx context.Context, f reports.TrendFilter) ([]*reports.TrendPoint, error) {
	var format string
	switch f.Period {
	case reports.TrendDaily:
		format = "YYYY-MM-DD"
	case reports.TrendYearly:
		format = "YYYY"
	default:
		format = "YYYY-MM"
	}

	q := r.builder.
		Select(
			fmt.Sprintf("to_char(sl.sale_date, '%s') AS period", format),
			"COALESCE(SUM(sl.amount), 0) AS amount",
			"COALESCE(SUM(sl.cost_snapshot * sl.num * g.spec), 0) AS cost",
			"COALESCE(SUM(sl.total_profit), 0) AS profit",
		).
		From("doc_sales sl").
		Join("cat_goods g ON g.id = sl.goods_id").
		Where(squirrel.Eq{"sl.status": entity.StatusActive}).
		GroupBy("period").
		OrderBy("period ASC")

	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"sl.sale_date": types.DayStart(*f.DateFrom)})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"sl.sale_date": types.DayStart(*f.DateTo)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build trend: %w", err)
	}

	var points []*reports.TrendPoint
	if err := pgxscan.Select(ctx, r.querier(ctx), &points, sql, args...); err != nil {
		return nil, fmt.Errorf("sales trend: %w", err)
	}
	return points, nil
}

// InventoryList pages goods rows with last purchase/sale dates.
func (r *ReportRepo) InventoryList(ctx context.Context, f reports.InventoryListFilter) (reports.InventoryListResult, error) {
	result := reports.InventoryListResult{Limit: f.Limit, Offset: f.Offset, TotalValue: types.Zero()}

	cols := make([]string, 0, 16)
	for _, col := range postgres.ExtractDBColumns[goods.Goods]() {
		cols = append(cols, "g."+col)
	}
	cols = append(cols,
		"(SELECT MAX(p.purchase_date) FROM doc_purchases p WHERE p.goods_id = g.id AND p.status = 'active') AS last_purchase_date",
		"(SELECT MAX(sl.sale_date) FROM doc_sales sl WHERE sl.goods_id = g.id AND sl.status = 'active') AS last_sale_date",
	)

	q := r.builder.
		Select(cols...).
		From("cat_goods g").
		Where(squirrel.Eq{"g.status": entity.StatusActive})

	if f.Search != "" {
		q = q.Where(squirrel.ILike{"g.name": "%" + f.Search + "%"})
	}
	if f.MinStock != nil {
		q = q.Where(squirrel.GtOrEq{"g.stock_num": *f.MinStock})
	}
	if f.MaxStock != nil {
		q = q.Where(squirrel.LtOrEq{"g.stock_num": *f.MaxStock})
	}

	sumQ := r.builder.
		Select("COUNT(*)", "COALESCE(SUM(sub.stock_total_value), 0)").
		FromSelect(q, "sub")

	sumSQL, sumArgs, err := sumQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, sumSQL, sumArgs...).Scan(&result.TotalCount, &result.TotalValue); err != nil {
		return result, fmt.Errorf("count inventory: %w", err)
	}

	orderBy := "g.name ASC, g.spec ASC"
	switch f.OrderBy {
	case "stock":
		orderBy = "g.stock_num ASC"
	case "-stock":
		orderBy = "g.stock_num DESC"
	case "-value":
		orderBy = "g.stock_total_value DESC"
	}
	q = q.OrderBy(orderBy)

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build list: %w", err)
	}

	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list inventory: %w", err)
	}
	return result, nil
}

// LifetimeTotals sums a goods item's all-time purchases, sales and losses.
func (r *ReportRepo) LifetimeTotals(ctx context.Context, goodsID id.ID) (reports.LifetimeTotals, error) {
	sql := `
		SELECT
			COALESCE((SELECT SUM(num) FROM doc_purchases WHERE goods_id = $1 AND status = 'active'), 0)::int AS purchased_num,
			COALESCE((SELECT SUM(amount) FROM doc_purchases WHERE goods_id = $1 AND status = 'active'), 0) AS purchased_amount,
			COALESCE((SELECT SUM(num) FROM doc_sales WHERE goods_id = $1 AND status = 'active'), 0)::int AS sold_num,
			COALESCE((SELECT SUM(amount) FROM doc_sales WHERE goods_id = $1 AND status = 'active'), 0) AS sold_amount,
			COALESCE((SELECT SUM(total_profit) FROM doc_sales WHERE goods_id = $1 AND status = 'active'), 0) AS sold_profit,
			COALESCE((SELECT SUM(num) FROM doc_losses WHERE goods_id = $1 AND status = 'active'), 0)::int AS lost_num`

	var totals reports.LifetimeTotals
	if err := pgxscan.Get(ctx, r.querier(ctx), &totals, sql, goodsID); err != nil {
		return totals, fmt.Errorf("lifetime totals: %w", err)
	}
	return totals, nil
}

// LowStock lists active goods at or below the stock threshold with their
// most recent purchase info.
func (r *ReportRepo) LowStock(ctx context.Context, threshold, limit int) ([]*reports.LowStockItem, error) {
	sql := `
		SELECT
			g.id AS goods_id,
			g.name,
			g.spec,
			g.stock_num,
			lp.purchase_date AS last_purchase_date,
			COALESCE(s.name, '') AS last_supplier_name,
			COALESCE(lp.unit_price, 0) AS last_unit_price
		FROM cat_goods g
		LEFT JOIN LATERAL (
			SELECT p.purchase_date, p.unit_price, p.supplier_id
			FROM doc_purchases p
			WHERE p.goods_id = g.id AND p.status = 'active'
			ORDER BY p.purchase_date DESC, p.created_at DESC
			LIMIT 1
		) lp ON true
		LEFT JOIN cat_suppliers s ON s.id = lp.supplier_id
		WHERE g.status = 'active' AND g.stock_num <= $1
		ORDER BY g.stock_num ASC, g.name ASC
		LIMIT $2`

	var items []*reports.LowStockItem
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, threshold, limit); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return items, nil
}
