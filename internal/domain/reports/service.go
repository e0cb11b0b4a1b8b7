package reports

import (
	"context"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/expense"
	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/domain/statement"
)

// Service provides report generation operations.
type Service struct {
	repo      Repository
	expenses  expense.Repository
	goodsRepo goods.Repository
	ledger    *inventory.FlowLedger
}

// NewService creates a reports service.
func NewService(repo Repository, expenses expense.Repository, goodsRepo goods.Repository, ledger *inventory.FlowLedger) *Service {
	return &Service{
		repo:      repo,
		expenses:  expenses,
		goodsRepo: goodsRepo,
		ledger:    ledger,
	}
}

// netProfit is sale profit minus operating expenses inside [from, to].
func (s *Service) netProfit(ctx context.Context, from, to *time.Time) (types.Money, error) {
	profit, err := s.repo.SaleProfitForPeriod(ctx, from, to)
	if err != nil {
		return types.Zero(), err
	}
	spent, err := s.expenses.SumForPeriod(ctx, from, to)
	if err != nil {
		return types.Zero(), err
	}
	return profit.Sub(spent), nil
}

// Dashboard builds the home screen summary.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}

	var err error
	if d.InventoryValue, err = s.repo.TotalInventoryValue(ctx); err != nil {
		return nil, err
	}
	if d.PurchaseUnpaid, err = s.repo.TotalOutstanding(ctx, statement.SidePurchase); err != nil {
		return nil, err
	}
	if d.SaleUnreceived, err = s.repo.TotalOutstanding(ctx, statement.SideSale); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	if d.ProfitMonth, err = s.netProfit(ctx, &monthStart, nil); err != nil {
		return nil, err
	}
	if d.ProfitYear, err = s.netProfit(ctx, &yearStart, nil); err != nil {
		return nil, err
	}
	if d.ProfitTotal, err = s.netProfit(ctx, nil, nil); err != nil {
		return nil, err
	}
	return d, nil
}

// ProfitByPurchaser returns the profit distribution across purchasers.
func (s *Service) ProfitByPurchaser(ctx context.Context, filter DistributionFilter) ([]*ProfitSlice, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.repo.ProfitByPurchaser(ctx, filter)
}

// ProfitByGoods returns the profit distribution across goods.
func (s *Service) ProfitByGoods(ctx context.Context, filter DistributionFilter) ([]*ProfitSlice, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	return s.repo.ProfitByGoods(ctx, filter)
}

// Trend returns the sales trend series for a period bucketing.
func (s *Service) Trend(ctx context.Context, filter TrendFilter) ([]*TrendPoint, error) {
	if filter.Period == "" {
		filter.Period = TrendMonthly
	}
	if !filter.Period.Valid() {
		return nil, apperror.NewInvalidInput("unknown trend period").
			WithDetail("period", string(filter.Period))
	}
	return s.repo.Trend(ctx, filter)
}

// InventoryList pages the inventory screen rows.
func (s *Service) InventoryList(ctx context.Context, filter InventoryListFilter) (InventoryListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	return s.repo.InventoryList(ctx, filter)
}

// InventoryDetail returns one goods item with a page of its flow history
// and its lifetime trade totals.
func (s *Service) InventoryDetail(ctx context.Context, goodsID id.ID, limit, offset int) (*InventoryDetail, error) {
	g, err := s.goodsRepo.GetByID(ctx, goodsID)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.LifetimeTotals(ctx, goodsID)
	if err != nil {
		return nil, err
	}
	flows, flowCount, err := s.ledger.History(ctx, goodsID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &InventoryDetail{
		Goods:     g,
		Totals:    totals,
		Flows:     flows,
		FlowCount: flowCount,
	}, nil
}

// LowStock lists goods at or below the threshold. Threshold defaults to 10
// packages.
func (s *Service) LowStock(ctx context.Context, threshold, limit int) ([]*LowStockItem, error) {
	if threshold <= 0 {
		threshold = 10
	}
	if limit <= 0 {
		limit = 50
	}
	return s.repo.LowStock(ctx, threshold, limit)
}
