package reports

import (
	"context"
	"time"

	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/statement"
)

// Repository defines report data access interface. All queries are
// read-only and aggregate over non-deleted rows.
type Repository interface {
	// TotalInventoryValue sums stock_total_value over active goods.
	TotalInventoryValue(ctx context.Context) (types.Money, error)

	// TotalOutstanding sums the outstanding balance of non-deleted
	// statements on one side.
	TotalOutstanding(ctx context.Context, side statement.Side) (types.Money, error)

	// SaleProfitForPeriod sums sale total_profit inside [from, to]; nil
	// bounds are open-ended.
	SaleProfitForPeriod(ctx context.Context, from, to *time.Time) (types.Money, error)

	// ProfitByPurchaser groups sale amount/cost/profit by purchaser,
	// highest profit first.
	ProfitByPurchaser(ctx context.Context, filter DistributionFilter) ([]*ProfitSlice, error)

	// ProfitByGoods groups sale amount/cost/profit by goods item,
	// highest profit first.
	ProfitByGoods(ctx context.Context, filter DistributionFilter) ([]*ProfitSlice, error)

	// Trend buckets sale amount/cost/profit by day, month or year.
	Trend(ctx context.Context, filter TrendFilter) ([]*TrendPoint, error)

	// InventoryList pages goods rows with last purchase/sale dates.
	InventoryList(ctx context.Context, filter InventoryListFilter) (InventoryListResult, error)

	// LifetimeTotals sums a goods item's all-time purchases, sales and
	// losses.
	LifetimeTotals(ctx context.Context, goodsID id.ID) (LifetimeTotals, error)

	// LowStock lists active goods at or below the stock threshold with
	// their most recent purchase info.
	LowStock(ctx context.Context, threshold, limit int) ([]*LowStockItem, error)
}
