package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const goodsTable = "cat_goods"

// GoodsRepo implements goods.Repository. It also satisfies the cost
// engine's goods store: the engine writes replayed stock figures through
// SaveStock and enumerates items through ListAllIDs.
type GoodsRepo struct {
	*BaseCatalogRepo[*goods.Goods]
	txm *postgres.TxManager
}

// NewGoodsRepo creates a new goods repository.
func NewGoodsRepo(txm *postgres.TxManager) *GoodsRepo {
	return &GoodsRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*goods.Goods](
			txm,
			goodsTable,
			postgres.ExtractDBColumns[goods.Goods](),
			func() *goods.Goods { return &goods.Goods{} },
		),
		txm: txm,
	}
}

// FindByNameSpec retrieves a goods row by its natural key, regardless of
// status.
func (r *GoodsRepo) FindByNameSpec(ctx context.Context, name string, spec int) (*goods.Goods, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"name": name}).
		Where(squirrel.Eq{"spec": spec}).
		Limit(1)

	g, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("goods", fmt.Sprintf("%s/%d", name, spec))
		}
		return nil, err
	}
	return g, nil
}

// SaveStock persists the stock fields written by the cost engine.
func (r *GoodsRepo) SaveStock(ctx context.Context, goodsID id.ID, stockNum int, unitCost, totalValue types.Money) error {
	q := r.Builder().
		Update(goodsTable).
		Set("stock_num", stockNum).
		Set("stock_unit_cost", unitCost).
		Set("stock_total_value", totalValue).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": goodsID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build save stock: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("save stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("goods", goodsID.String())
	}
	return nil
}

// Suggest returns active goods whose name contains the keyword.
func (r *GoodsRepo) Suggest(ctx context.Context, keyword string, withStockOnly bool, limit int) ([]*goods.Goods, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		OrderBy("name ASC, spec ASC").
		Limit(uint64(limit))

	if keyword != "" {
		q = q.Where(squirrel.ILike{"name": "%" + keyword + "%"})
	}
	if withStockOnly {
		q = q.Where(squirrel.Gt{"stock_num": 0})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build suggest: %w", err)
	}

	var items []*goods.Goods
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("suggest goods: %w", err)
	}
	return items, nil
}

// GetStockInfo returns the spec of a goods row for replay math.
func (r *GoodsRepo) GetStockInfo(ctx context.Context, goodsID id.ID) (int, error) {
	q := r.Builder().
		Select("spec").
		From(goodsTable).
		Where(squirrel.Eq{"id": goodsID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build stock info: %w", err)
	}

	var spec int
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&spec); err != nil {
		return 0, fmt.Errorf("get stock info: %w", err)
	}
	return spec, nil
}

// ListAllIDs returns the IDs of every active goods row.
func (r *GoodsRepo) ListAllIDs(ctx context.Context) ([]id.ID, error) {
	q := r.Builder().
		Select("id").
		From(goodsTable).
		Where(squirrel.Eq{"status": entity.StatusActive}).
		OrderBy("created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ids: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("list goods ids: %w", err)
	}
	return ids, nil
}
