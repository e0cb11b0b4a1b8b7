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
	"tradeledger/internal/domain/trade/purchase"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const purchaseTable = "doc_purchases"

// PurchaseRepo implements purchase.Repository, including the statement
// manager's purchase-side event store.
type PurchaseRepo struct {
	*BaseEventRepo[*purchase.Purchase]
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseEventRepo: NewBaseEventRepo[*purchase.Purchase](
			txm,
			purchaseTable,
			postgres.ExtractDBColumns[purchase.Purchase](),
			func() *purchase.Purchase { return &purchase.Purchase{} },
		),
	}
}

// List retrieves purchase rows joined with supplier and goods names.
func (r *PurchaseRepo) List(ctx context.Context, f purchase.ListFilter) (purchase.ListResult, error) {
	result := purchase.ListResult{Limit: f.Limit, Offset: f.Offset}

	cols := prefixCols("p", r.selectCols)
	cols = append(cols,
		"s.name AS supplier_name",
		"g.name AS goods_name",
		"g.spec AS spec",
		"g.stock_unit_cost AS current_unit_cost",
	)

	q := r.Builder().
		Select(cols...).
		From(purchaseTable + " p").
		Join("cat_suppliers s ON s.id = p.supplier_id").
		Join("cat_goods g ON g.id = p.goods_id").
		Where(squirrel.Eq{"p.status": entity.StatusActive})

	if f.SupplierID != nil {
		q = q.Where(squirrel.Eq{"p.supplier_id": *f.SupplierID})
	}
	if f.GoodsID != nil {
		q = q.Where(squirrel.Eq{"p.goods_id": *f.GoodsID})
	}
	if f.GoodsName != "" {
		q = q.Where(squirrel.ILike{"g.name": "%" + f.GoodsName + "%"})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"p.purchase_date": types.DayStart(*f.DateFrom)})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"p.purchase_date": types.DayStart(*f.DateTo)})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	orderBy := "p.purchase_date DESC, p.id DESC"
	if f.OrderBy == "date_asc" {
		orderBy = "p.purchase_date ASC, p.id ASC"
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
		return result, fmt.Errorf("list purchases: %w", err)
	}
	return result, nil
}

// LastRecord returns the most recent non-deleted purchase of a goods item
// from a supplier.
func (r *PurchaseRepo) LastRecord(ctx context.Context, supplierID, goodsID id.ID) (*purchase.Purchase, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"supplier_id": supplierID}).
		Where(squirrel.Eq{"goods_id": goodsID}).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		OrderBy("purchase_date DESC, created_at DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build last record: %w", err)
	}

	p := &purchase.Purchase{}
	if err := pgxscan.Get(ctx, r.querier(ctx), p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", goodsID.String())
		}
		return nil, fmt.Errorf("last purchase: %w", err)
	}
	return p, nil
}

// SumForStatement sums the non-deleted purchases of a statement inside
// [from, to]. Purchases carry no cost or profit of their own.
func (r *PurchaseRepo) SumForStatement(ctx context.Context, statementID id.ID, from, to *time.Time) (statement.Totals, error) {
	q := r.Builder().
		Select("COALESCE(SUM(amount), 0)").
		From(purchaseTable).
		Where(squirrel.Eq{"statement_id": statementID}).
		Where(squirrel.Eq{"status": entity.StatusActive})

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"purchase_date": types.DayStart(*from)})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"purchase_date": types.DayStart(*to)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return statement.ZeroTotals(), fmt.Errorf("build sum: %w", err)
	}

	var amount types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&amount); err != nil {
		return statement.ZeroTotals(), fmt.Errorf("sum purchases: %w", err)
	}
	return statement.Totals{Amount: amount, Cost: types.Zero(), Profit: types.Zero()}, nil
}

// ReassignAfter moves purchases dated strictly after the cutoff onto
// another statement.
func (r *PurchaseRepo) ReassignAfter(ctx context.Context, fromStatementID, toStatementID id.ID, after time.Time) error {
	q := r.Builder().
		Update(purchaseTable).
		Set("statement_id", toStatementID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"statement_id": fromStatementID}).
		Where(squirrel.Gt{"purchase_date": types.DayStart(after)})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build reassign after: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("reassign purchases: %w", err)
	}
	return nil
}

// ReassignAll moves every purchase of a statement onto another statement.
func (r *PurchaseRepo) ReassignAll(ctx context.Context, fromStatementID, toStatementID id.ID) error {
	q := r.Builder().
		Update(purchaseTable).
		Set("statement_id", toStatementID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"statement_id": fromStatementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build reassign all: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("reassign purchases: %w", err)
	}
	return nil
}
