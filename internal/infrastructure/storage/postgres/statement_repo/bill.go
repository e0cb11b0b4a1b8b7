package statement_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/infrastructure/storage/postgres"
)

// counterpartyTable returns the catalog table backing one statement side.
func counterpartyTable(side statement.Side) string {
	if side == statement.SidePurchase {
		return "cat_suppliers"
	}
	return "cat_purchasers"
}

// BillStore implements statement.BillStore: the joined read queries behind
// the bill screens.
type BillStore struct {
	txm *postgres.TxManager
}

// NewBillStore creates a new bill store.
func NewBillStore(txm *postgres.TxManager) *BillStore {
	return &BillStore{txm: txm}
}

func (s *BillStore) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (s *BillStore) querier(ctx context.Context) postgres.Querier {
	return s.txm.GetQuerier(ctx)
}

// ListBills pages statements joined with counterparty names.
func (s *BillStore) ListBills(ctx context.Context, f statement.BillListFilter) (statement.BillListResult, error) {
	result := statement.BillListResult{Limit: f.Limit, Offset: f.Offset}

	cols := make([]string, 0, len(statementCols)+1)
	for _, col := range statementCols {
		cols = append(cols, "st."+col)
	}
	cols = append(cols, "cp.name AS counterparty_name")

	q := s.builder().
		Select(cols...).
		From(statementTable + " st").
		Join(counterpartyTable(f.Side) + " cp ON cp.id = st.counterparty_id").
		Where(squirrel.Eq{"st.side": f.Side}).
		Where(squirrel.Eq{"st.status": entity.StatusActive})

	if f.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"st.counterparty_id": *f.CounterpartyID})
	}
	if f.Confirmed != nil {
		if *f.Confirmed {
			q = q.Where("st.end_date IS NOT NULL")
		} else {
			q = q.Where("st.end_date IS NULL")
		}
	}
	if f.SettledStatus != nil {
		q = q.Where(squirrel.Eq{"st.settled_status": *f.SettledStatus})
	}
	if f.MinAmount != nil {
		q = q.Where(squirrel.GtOrEq{"st.amount": *f.MinAmount})
	}
	if f.MaxAmount != nil {
		q = q.Where(squirrel.LtOrEq{"st.amount": *f.MaxAmount})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"st.end_date": types.DayStart(*f.DateFrom)})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"st.end_date": types.DayStart(*f.DateTo)})
	}

	countQ := s.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := s.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count bills: %w", err)
	}

	q = q.OrderBy("st.end_date DESC NULLS FIRST, st.created_at DESC")
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

	if err := pgxscan.Select(ctx, s.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list bills: %w", err)
	}
	return result, nil
}

// BillLines merges a statement's member events by (goods, date). The unit
// price is re-derived from the merged totals so mixed-price days show a
// blended figure.
func (s *BillStore) BillLines(ctx context.Context, side statement.Side, statementID id.ID) ([]*statement.BillLine, error) {
	var q squirrel.SelectBuilder
	if side == statement.SidePurchase {
		q = s.builder().
			Select(
				"p.goods_id",
				"g.name AS goods_name",
				"'' AS customer_goods_name",
				"g.spec AS spec",
				"p.purchase_date AS date",
				"SUM(p.num)::int AS num",
				"SUM(p.amount) AS amount",
			).
			From("doc_purchases p").
			Join("cat_goods g ON g.id = p.goods_id").
			Where(squirrel.Eq{"p.statement_id": statementID}).
			Where(squirrel.Eq{"p.status": entity.StatusActive}).
			GroupBy("p.goods_id", "g.name", "g.spec", "p.purchase_date").
			OrderBy("p.purchase_date ASC, g.name ASC")
	} else {
		q = s.builder().
			Select(
				"sl.goods_id",
				"g.name AS goods_name",
				"COALESCE(cgn.name, '') AS customer_goods_name",
				"g.spec AS spec",
				"sl.sale_date AS date",
				"SUM(sl.num)::int AS num",
				"SUM(sl.amount) AS amount",
			).
			From("doc_sales sl").
			Join("cat_goods g ON g.id = sl.goods_id").
			LeftJoin("cat_customer_goods_names cgn ON cgn.goods_id = sl.goods_id AND cgn.purchaser_id = sl.purchaser_id").
			Where(squirrel.Eq{"sl.statement_id": statementID}).
			Where(squirrel.Eq{"sl.status": entity.StatusActive}).
			GroupBy("sl.goods_id", "g.name", "cgn.name", "g.spec", "sl.sale_date").
			OrderBy("sl.sale_date ASC, g.name ASC")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build bill lines: %w", err)
	}

	var lines []*statement.BillLine
	if err := pgxscan.Select(ctx, s.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("bill lines: %w", err)
	}

	for _, line := range lines {
		baseUnits := int64(line.Num) * int64(line.Spec)
		if baseUnits > 0 {
			line.UnitPrice = types.Round2(types.DivInt(line.Amount, baseUnits))
		}
	}
	return lines, nil
}

// CounterpartyName resolves a counterparty's display name.
func (s *BillStore) CounterpartyName(ctx context.Context, side statement.Side, counterpartyID id.ID) (string, error) {
	q := s.builder().
		Select("name").
		From(counterpartyTable(side)).
		Where(squirrel.Eq{"id": counterpartyID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var name string
	if err := s.querier(ctx).QueryRow(ctx, sql, args...).Scan(&name); err != nil {
		return "", apperror.NewNotFound("counterparty", counterpartyID.String()).WithCause(err)
	}
	return name, nil
}
