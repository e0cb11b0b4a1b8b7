package trade_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/domain/trade/sale"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const saleTable = "doc_sales"

// SaleRepo implements sale.Repository, including the statement manager's
// sale-side event store.
type SaleRepo struct {
	*BaseEventRepo[*sale.Sale]
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseEventRepo: NewBaseEventRepo[*sale.Sale](
			txm,
			saleTable,
			postgres.ExtractDBColumns[sale.Sale](),
			func() *sale.Sale { return &sale.Sale{} },
		),
	}
}

// List retrieves sale rows joined with purchaser, goods and the customer's
// own goods name.
func (r *SaleRepo) List(ctx context.Context, f sale.ListFilter) (sale.ListResult, error) {
	result := sale.ListResult{Limit: f.Limit, Offset: f.Offset}

	cols := prefixCols("sl", r.selectCols)
	cols = append(cols,
		"p.name AS purchaser_name",
		"g.name AS goods_name",
		"g.spec AS spec",
		"COALESCE(cgn.name, '') AS customer_goods_name",
	)

	q := r.Builder().
		Select(cols...).
		From(saleTable + " sl").
		Join("cat_purchasers p ON p.id = sl.purchaser_id").
		Join("cat_goods g ON g.id = sl.goods_id").
		LeftJoin("cat_customer_goods_names cgn ON cgn.goods_id = sl.goods_id AND cgn.purchaser_id = sl.purchaser_id").
		Where(squirrel.Eq{"sl.status": entity.StatusActive})

	if f.PurchaserID != nil {
		q = q.Where(squirrel.Eq{"sl.purchaser_id": *f.PurchaserID})
	}
	if f.GoodsID != nil {
		q = q.Where(squirrel.Eq{"sl.goods_id": *f.GoodsID})
	}
	if f.GoodsName != "" {
		q = q.Where(squirrel.ILike{"g.name": "%" + f.GoodsName + "%"})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"sl.sale_date": types.DayStart(*f.DateFrom)})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"sl.sale_date": types.DayStart(*f.DateTo)})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	orderBy := "sl.sale_date DESC, sl.id DESC"
	if f.OrderBy == "date_asc" {
		orderBy = "sl.sale_date ASC, sl.id ASC"
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
		return result, fmt.Errorf("list sales: %w", err)
	}
	return result, nil
}

// LastRecord returns the most recent non-deleted sale of a goods item to a
// purchaser.
func (r *SaleRepo) LastRecord(ctx context.Context, purchaserID, goodsID id.ID) (*sale.Sale, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"purchaser_id": purchaserID}).
		Where(squirrel.Eq{"goods_id": goodsID}).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		OrderBy("sale_date DESC, created_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build last record: %w", err)
	}

	s := &sale.Sale{}
	if err := pgxscan.Get(ctx, r.querier(ctx), s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", goodsID.String())
		}
		return nil, fmt.Errorf("last sale: %w", err)
	}
	return s, nil
}

// SumForStatement sums the non-deleted sales of a statement inside
// [from, to]: billed amount, snapshot cost and profit.
func (r *SaleRepo) SumForStatement(ctx context.Context, statementID id.ID, from, to *time.Time) (statement.Totals, error) {
	q := r.Builder().
		Select(
			"COALESCE(SUM(sl.amount), 0) AS amount",
			"COALESCE(SUM(sl.cost_snapshot * sl.num * g.spec), 0) AS cost",
			"COALESCE(SUM(sl.total_profit), 0) AS profit",
		).
		From(saleTable + " sl").
		Join("cat_goods g ON g.id = sl.goods_id").
		Where(squirrel.Eq{"sl.statement_id": statementID}).
		Where(squirrel.Eq{"sl.status": entity.StatusActive})

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"sl.sale_date": types.DayStart(*from)})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"sl.sale_date": types.DayStart(*to)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return statement.ZeroTotals(), fmt.Errorf("build sum: %w", err)
	}

	var t statement.Totals
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&t.Amount, &t.Cost, &t.Profit); err != nil {
		return statement.ZeroTotals(), fmt.Errorf("sum sales: %w", err)
	}
	t.Amount = types.Round2(t.Amount)
	t.Cost = types.Round2(t.Cost)
	t.Profit = types.Round2(t.Profit)
	return t, nil
}

// ReassignAfter moves sales dated strictly after the cutoff onto another
// statement.
func (r *SaleRepo) ReassignAfter(ctx context.Context, fromStatementID, toStatementID id.ID, after time.Time) error {
	q := r.Builder().
		Update(saleTable).
		Set("statement_id", toStatementID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"statement_id": fromStatementID}).
		Where(squirrel.Gt{"sale_date": types.DayStart(after)})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build reassign after: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("reassign sales: %w", err)
	}
	return nil
}

// ReassignAll moves every sale of a statement onto another statement.
func (r *SaleRepo) ReassignAll(ctx context.Context, fromStatementID, toStatementID id.ID) error {
	q := r.Builder().
		Update(saleTable).
		Set("statement_id", toStatementID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"statement_id": fromStatementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build reassign all: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("reassign sales: %w", err)
	}
	return nil
}
