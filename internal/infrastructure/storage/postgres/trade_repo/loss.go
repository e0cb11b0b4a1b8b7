package trade_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const lossTable = "doc_losses"

// LossRepo implements inventory.LossRepository.
type LossRepo struct {
	*BaseEventRepo[*inventory.Loss]
}

// NewLossRepo creates a new loss repository.
func NewLossRepo(txm *postgres.TxManager) *LossRepo {
	return &LossRepo{
		BaseEventRepo: NewBaseEventRepo[*inventory.Loss](
			txm,
			lossTable,
			postgres.ExtractDBColumns[inventory.Loss](),
			func() *inventory.Loss { return &inventory.Loss{} },
		),
	}
}

// List retrieves loss rows joined with goods names.
func (r *LossRepo) List(ctx context.Context, f inventory.LossListFilter) (inventory.LossListResult, error) {
	result := inventory.LossListResult{Limit: f.Limit, Offset: f.Offset}

	cols := prefixCols("l", r.selectCols)
	cols = append(cols,
		"g.name AS goods_name",
		"g.spec AS spec",
	)

	q := r.Builder().
		Select(cols...).
		From(lossTable + " l").
		Join("cat_goods g ON g.id = l.goods_id").
		Where(squirrel.Eq{"l.status": entity.StatusActive})

	if f.GoodsID != nil {
		q = q.Where(squirrel.Eq{"l.goods_id": *f.GoodsID})
	}
	if f.GoodsName != "" {
		q = q.Where(squirrel.ILike{"g.name": "%" + f.GoodsName + "%"})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"l.loss_date": types.DayStart(*f.DateFrom)})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"l.loss_date": types.DayStart(*f.DateTo)})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = q.OrderBy("l.loss_date DESC, l.id DESC")

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
		return result, fmt.Errorf("list losses: %w", err)
	}
	return result, nil
}
