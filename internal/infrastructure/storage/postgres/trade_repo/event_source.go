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
	"tradeledger/internal/domain/costing"
	"tradeledger/internal/infrastructure/storage/postgres"
)

// EventSource feeds the cost engine the merged non-deleted event history of
// a goods item across the three trade tables, and writes replayed snapshots
// back.
type EventSource struct {
	txm *postgres.TxManager
}

// NewEventSource creates an event source over the trade tables.
func NewEventSource(txm *postgres.TxManager) *EventSource {
	return &EventSource{txm: txm}
}

func (s *EventSource) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ListForGoods returns every non-deleted purchase, sale and loss of a goods
// item. The engine sorts the merged slice itself.
func (s *EventSource) ListForGoods(ctx context.Context, goodsID id.ID) ([]costing.ReplayEvent, error) {
	// Union keeps one round trip; column layout is shared across branches.
	sql := `
		SELECT id, 'purchase' AS type, purchase_date AS date, num, unit_price, NULL::uuid AS statement_id
		FROM ` + purchaseTable + `
		WHERE goods_id = $1 AND status = $2
		UNION ALL
		SELECT id, 'sale' AS type, sale_date AS date, num, unit_price, statement_id
		FROM ` + saleTable + `
		WHERE goods_id = $1 AND status = $2
		UNION ALL
		SELECT id, 'loss' AS type, loss_date AS date, num, 0 AS unit_price, NULL::uuid AS statement_id
		FROM ` + lossTable + `
		WHERE goods_id = $1 AND status = $2`

	var rows []struct {
		ID          id.ID       `db:"id"`
		Type        string      `db:"type"`
		Date        time.Time   `db:"date"`
		Num         int         `db:"num"`
		UnitPrice   types.Money `db:"unit_price"`
		StatementID *id.ID      `db:"statement_id"`
	}
	if err := pgxscan.Select(ctx, s.txm.GetQuerier(ctx), &rows, sql, goodsID, entity.StatusActive); err != nil {
		return nil, fmt.Errorf("list events for goods: %w", err)
	}

	events := make([]costing.ReplayEvent, len(rows))
	for i, row := range rows {
		events[i] = costing.ReplayEvent{
			ID:          row.ID,
			Type:        costing.EventType(row.Type),
			Date:        row.Date,
			Num:         row.Num,
			UnitPrice:   row.UnitPrice,
			StatementID: row.StatementID,
		}
	}
	return events, nil
}

// UpdateSaleSnapshot rewrites a sale's replayed cost and profit columns.
func (s *EventSource) UpdateSaleSnapshot(ctx context.Context, saleID id.ID, cost, unitProfit, totalProfit types.Money) error {
	q := s.builder().
		Update(saleTable).
		Set("cost_snapshot", cost).
		Set("unit_profit", unitProfit).
		Set("total_profit", totalProfit).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build sale snapshot: %w", err)
	}

	result, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale snapshot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return nil
}

// UpdateLossSnapshot rewrites a loss's replayed cost and value columns.
func (s *EventSource) UpdateLossSnapshot(ctx context.Context, lossID id.ID, cost, totalValue types.Money) error {
	q := s.builder().
		Update(lossTable).
		Set("cost_snapshot", cost).
		Set("loss_value", totalValue).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": lossID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build loss snapshot: %w", err)
	}

	result, err := s.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update loss snapshot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("loss", lossID.String())
	}
	return nil
}
