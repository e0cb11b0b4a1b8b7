// Package expense_repo provides the PostgreSQL implementation of operating
// expense persistence.
package expense_repo

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
	"tradeledger/internal/domain/expense"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const expenseTable = "doc_expenses"

var expenseCols = postgres.ExtractDBColumns[expense.Expense]()

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	txm *postgres.TxManager
}

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txm *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{txm: txm}
}

func (r *ExpenseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ExpenseRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Create inserts an expense row.
func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	data := postgres.StructToMap(e)

	q := r.builder().
		Insert(expenseTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense row.
func (r *ExpenseRepo) GetByID(ctx context.Context, expenseID id.ID) (*expense.Expense, error) {
	q := r.builder().
		Select(expenseCols...).
		From(expenseTable).
		Where(squirrel.Eq{"id": expenseID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	e := &expense.Expense{}
	if err := pgxscan.Get(ctx, r.querier(ctx), e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("expense", expenseID.String())
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// Update rewrites an expense row.
func (r *ExpenseRepo) Update(ctx context.Context, e *expense.Expense) error {
	data := postgres.StructToMap(e)
	delete(data, "id")
	delete(data, "created_at")

	q := r.builder().
		Update(expenseTable).
		SetMap(data).
		Where(squirrel.Eq{"id": e.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("expense", e.ID.String())
	}
	return nil
}

// SetStatus transitions the expense lifecycle state.
func (r *ExpenseRepo) SetStatus(ctx context.Context, expenseID id.ID, status entity.Status) error {
	q := r.builder().
		Update(expenseTable).
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": expenseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set status: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set expense status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("expense", expenseID.String())
	}
	return nil
}

func (r *ExpenseRepo) filtered(f expense.ListFilter) squirrel.SelectBuilder {
	q := r.builder().
		Select(expenseCols...).
		From(expenseTable).
		Where(squirrel.Eq{"status": entity.StatusActive})

	if f.Search != "" {
		q = q.Where(squirrel.ILike{"description": "%" + f.Search + "%"})
	}
	if f.Type != "" {
		q = q.Where(squirrel.Eq{"type": f.Type})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"expense_date": types.DayStart(*f.DateFrom)})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"expense_date": types.DayStart(*f.DateTo)})
	}
	return q
}

// List pages expense rows and totals the filtered set.
func (r *ExpenseRepo) List(ctx context.Context, f expense.ListFilter) (expense.ListResult, error) {
	result := expense.ListResult{Limit: f.Limit, Offset: f.Offset, TotalAmount: types.Zero()}

	q := r.filtered(f)

	sumQ := r.builder().
		Select("COUNT(*)", "COALESCE(SUM(amount), 0)").
		FromSelect(q, "sub")

	sumSQL, sumArgs, err := sumQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.querier(ctx).QueryRow(ctx, sumSQL, sumArgs...).Scan(&result.TotalCount, &result.TotalAmount); err != nil {
		return result, fmt.Errorf("count expenses: %w", err)
	}

	q = q.OrderBy("expense_date DESC, created_at DESC")
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
		return result, fmt.Errorf("list expenses: %w", err)
	}
	return result, nil
}

// SumForPeriod totals non-deleted expenses inside [from, to].
func (r *ExpenseRepo) SumForPeriod(ctx context.Context, from, to *time.Time) (types.Money, error) {
	q := r.builder().
		Select("COALESCE(SUM(amount), 0)").
		From(expenseTable).
		Where(squirrel.Eq{"status": entity.StatusActive})

	if from != nil {
		q = q.Where(squirrel.GtOrEq{"expense_date": types.DayStart(*from)})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{"expense_date": types.DayStart(*to)})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return types.Zero(), fmt.Errorf("build sum: %w", err)
	}

	var sum types.Money
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return types.Zero(), fmt.Errorf("sum expenses: %w", err)
	}
	return sum, nil
}
