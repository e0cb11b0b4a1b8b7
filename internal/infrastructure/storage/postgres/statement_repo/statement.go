// Package statement_repo provides PostgreSQL implementations for statement
// and settlement persistence, plus the bill read models.
package statement_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const statementTable = "doc_statements"

var statementCols = postgres.ExtractDBColumns[statement.Statement]()

// StatementRepo implements statement.Repository.
type StatementRepo struct {
	txm *postgres.TxManager
}

// NewStatementRepo creates a new statement repository.
func NewStatementRepo(txm *postgres.TxManager) *StatementRepo {
	return &StatementRepo{txm: txm}
}

func (r *StatementRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *StatementRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *StatementRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(statementCols...).
		From(statementTable)
}

// Create inserts a statement.
func (r *StatementRepo) Create(ctx context.Context, st *statement.Statement) error {
	data := postgres.StructToMap(st)

	q := r.builder().
		Insert(statementTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert statement: %w", err)
	}
	return nil
}

// getByIDQuery selects one active statement. A soft-deleted statement must
// not be confirmable: confirming it would spawn a second open statement for
// the counterparty.
func (r *StatementRepo) getByIDQuery(statementID id.ID) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"id": statementID}).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		Limit(1)
}

// GetByID retrieves a non-deleted statement.
func (r *StatementRepo) GetByID(ctx context.Context, statementID id.ID) (*statement.Statement, error) {
	sql, args, err := r.getByIDQuery(statementID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	st := &statement.Statement{}
	if err := pgxscan.Get(ctx, r.querier(ctx), st, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("statement", statementID.String())
		}
		return nil, fmt.Errorf("get statement: %w", err)
	}
	return st, nil
}

// GetOpen returns the counterparty's single open statement: non-deleted
// with a NULL end date.
func (r *StatementRepo) GetOpen(ctx context.Context, side statement.Side, counterpartyID id.ID) (*statement.Statement, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"side": side}).
		Where(squirrel.Eq{"counterparty_id": counterpartyID}).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		Where("end_date IS NULL").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	st := &statement.Statement{}
	if err := pgxscan.Get(ctx, r.querier(ctx), st, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("open statement", counterpartyID.String())
		}
		return nil, fmt.Errorf("get open statement: %w", err)
	}
	return st, nil
}

// GetLastClosed returns the confirmed statement with the latest end date.
func (r *StatementRepo) GetLastClosed(ctx context.Context, side statement.Side, counterpartyID id.ID) (*statement.Statement, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"side": side}).
		Where(squirrel.Eq{"counterparty_id": counterpartyID}).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		Where("end_date IS NOT NULL").
		OrderBy("end_date DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	st := &statement.Statement{}
	if err := pgxscan.Get(ctx, r.querier(ctx), st, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("closed statement", counterpartyID.String())
		}
		return nil, fmt.Errorf("get last closed statement: %w", err)
	}
	return st, nil
}

// Update rewrites a statement row.
func (r *StatementRepo) Update(ctx context.Context, st *statement.Statement) error {
	data := postgres.StructToMap(st)
	delete(data, "id")
	delete(data, "created_at")

	q := r.builder().
		Update(statementTable).
		SetMap(data).
		Where(squirrel.Eq{"id": st.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update statement: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("statement", st.ID.String())
	}
	return nil
}

// SetStatus transitions the statement lifecycle state.
func (r *StatementRepo) SetStatus(ctx context.Context, statementID id.ID, status entity.Status) error {
	q := r.builder().
		Update(statementTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": statementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set status: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set statement status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("statement", statementID.String())
	}
	return nil
}

// List pages statements.
func (r *StatementRepo) List(ctx context.Context, f statement.ListFilter) (statement.ListResult, error) {
	result := statement.ListResult{Limit: f.Limit, Offset: f.Offset}

	q := r.baseSelect().
		Where(squirrel.Eq{"side": f.Side}).
		Where(squirrel.Eq{"status": entity.StatusActive})

	q = applyStatementFilters(q, "", f)

	countQ := r.builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count statements: %w", err)
	}

	q = q.OrderBy("end_date DESC NULLS FIRST, created_at DESC")
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
		return result, fmt.Errorf("list statements: %w", err)
	}
	return result, nil
}

// applyStatementFilters applies the shared optional statement filters.
// prefix qualifies columns when the query joins other tables.
func applyStatementFilters(q squirrel.SelectBuilder, prefix string, f statement.ListFilter) squirrel.SelectBuilder {
	col := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}

	if f.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{col("counterparty_id"): *f.CounterpartyID})
	}
	if f.Confirmed != nil {
		if *f.Confirmed {
			q = q.Where(col("end_date") + " IS NOT NULL")
		} else {
			q = q.Where(col("end_date") + " IS NULL")
		}
	}
	if f.SettledStatus != nil {
		q = q.Where(squirrel.Eq{col("settled_status"): *f.SettledStatus})
	}
	if f.AmountMin != nil {
		q = q.Where(squirrel.GtOrEq{col("amount"): *f.AmountMin})
	}
	if f.AmountMax != nil {
		q = q.Where(squirrel.LtOrEq{col("amount"): *f.AmountMax})
	}
	return q
}
