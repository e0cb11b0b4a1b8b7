// Package trade_repo provides PostgreSQL implementations for the trade
// event repositories: purchases, sales and losses. The transaction manager
// is injected explicitly.
package trade_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/infrastructure/storage/postgres"
)

// BaseEventRepo provides common CRUD operations for trade event rows.
// Embed this in specific event repositories.
type BaseEventRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	selectCols []string
	newFn      func() T
}

// NewBaseEventRepo creates a new base event repository.
func NewBaseEventRepo[T any](
	txm *postgres.TxManager,
	tableName string,
	selectCols []string,
	newFn func() T,
) *BaseEventRepo[T] {
	return &BaseEventRepo[T]{
		txm:        txm,
		tableName:  tableName,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseEventRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *BaseEventRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Create inserts a new event row using its "db" tags.
func (r *BaseEventRepo[T]) Create(ctx context.Context, ent T) error {
	data := postgres.StructToMap(ent)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Insert(r.tableName).
		SetMap(filteredData)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err = r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}

	return nil
}

// Update modifies an existing event row.
func (r *BaseEventRepo[T]) Update(ctx context.Context, ent T) error {
	data := postgres.StructToMap(ent)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}

	filteredData := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if col == "id" || col == "created_at" {
			continue
		}
		if val, ok := data[col]; ok {
			filteredData[col] = val
		}
	}

	q := r.Builder().
		Update(r.tableName).
		SetMap(filteredData).
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, fmt.Sprintf("%v", entityID))
	}

	return nil
}

// baseSelect creates a SELECT builder over the bare table.
func (r *BaseEventRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// getByIDQuery selects one active row. Soft-deleted events stay invisible
// to point lookups so their statement and stock effects cannot be reversed
// twice.
func (r *BaseEventRepo[T]) getByIDQuery(entityID id.ID) squirrel.SelectBuilder {
	return r.baseSelect().
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		Limit(1)
}

// GetByID retrieves a non-deleted event row by ID.
func (r *BaseEventRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	ent := r.newFn()

	sql, args, err := r.getByIDQuery(entityID).ToSql()
	if err != nil {
		return ent, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.querier(ctx), ent, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return ent, apperror.NewNotFound(r.tableName, entityID.String())
		}
		return ent, fmt.Errorf("get by id: %w", err)
	}

	return ent, nil
}

// SetStatus transitions the row lifecycle state (soft delete / restore).
func (r *BaseEventRepo[T]) SetStatus(ctx context.Context, entityID id.ID, status entity.Status) error {
	q := r.Builder().
		Update(r.tableName).
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set status: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("execute set status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.tableName, entityID.String())
	}

	return nil
}

// count runs a COUNT(*) over a select builder.
func (r *BaseEventRepo[T]) count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	sql, args, err := countQ.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}

// prefixCols qualifies column names with a table alias.
func prefixCols(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, col := range cols {
		out[i] = alias + "." + col
	}
	return out
}
