package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tradeledger/internal/core/id"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const goodsNameTable = "cat_customer_goods_names"

// GoodsNameRepo implements goodsname.Repository: the per-purchaser goods
// name aliases printed on sale bills.
type GoodsNameRepo struct {
	txm *postgres.TxManager
}

// NewGoodsNameRepo creates a new customer goods name repository.
func NewGoodsNameRepo(txm *postgres.TxManager) *GoodsNameRepo {
	return &GoodsNameRepo{txm: txm}
}

func (r *GoodsNameRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Upsert saves the alias for a (goods, purchaser) pair, overwriting any
// previous value.
func (r *GoodsNameRepo) Upsert(ctx context.Context, goodsID, purchaserID id.ID, name string) error {
	now := time.Now().UTC()
	q := r.builder().
		Insert(goodsNameTable).
		Columns("id", "goods_id", "purchaser_id", "name", "created_at", "updated_at").
		Values(id.New(), goodsID, purchaserID, name, now, now).
		Suffix("ON CONFLICT (goods_id, purchaser_id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert customer goods name: %w", err)
	}
	return nil
}

// Get returns the alias for a (goods, purchaser) pair, or "" when none.
func (r *GoodsNameRepo) Get(ctx context.Context, goodsID, purchaserID id.ID) (string, error) {
	q := r.builder().
		Select("name").
		From(goodsNameTable).
		Where(squirrel.Eq{"goods_id": goodsID}).
		Where(squirrel.Eq{"purchaser_id": purchaserID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build get: %w", err)
	}

	var name string
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&name)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get customer goods name: %w", err)
	}
	return name, nil
}

// GetForPurchaser returns all aliases of one purchaser keyed by goods ID.
func (r *GoodsNameRepo) GetForPurchaser(ctx context.Context, purchaserID id.ID) (map[id.ID]string, error) {
	q := r.builder().
		Select("goods_id", "name").
		From(goodsNameTable).
		Where(squirrel.Eq{"purchaser_id": purchaserID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get for purchaser: %w", err)
	}

	var rows []struct {
		GoodsID id.ID  `db:"goods_id"`
		Name    string `db:"name"`
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list customer goods names: %w", err)
	}

	out := make(map[id.ID]string, len(rows))
	for _, row := range rows {
		out[row.GoodsID] = row.Name
	}
	return out, nil
}
