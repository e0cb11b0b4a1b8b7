package sale

import (
	"context"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/catalogs/goodsname"
	"tradeledger/internal/domain/catalogs/purchaser"
	"tradeledger/internal/domain/costing"
	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/domain/statement"
	"tradeledger/pkg/logger"
)

// Service orchestrates sale records. Every mutation runs the full chain of
// side effects atomically: row write, stock decrement with a frozen cost
// snapshot, flow ledger entry and statement adjustment.
type Service struct {
	repo       Repository
	purchasers purchaser.Repository
	goodsSvc   *goods.Service
	goodsRepo  goods.Repository
	aliases    goodsname.Repository
	statements *statement.Manager
	ledger     *inventory.FlowLedger
	engine     *costing.Engine
	txManager  tx.Manager
}

// NewService creates a sale service.
func NewService(
	repo Repository,
	purchasers purchaser.Repository,
	goodsSvc *goods.Service,
	goodsRepo goods.Repository,
	aliases goodsname.Repository,
	statements *statement.Manager,
	ledger *inventory.FlowLedger,
	engine *costing.Engine,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		purchasers: purchasers,
		goodsSvc:   goodsSvc,
		goodsRepo:  goodsRepo,
		aliases:    aliases,
		statements: statements,
		ledger:     ledger,
		engine:     engine,
		txManager:  txManager,
	}
}

func negTotals(t statement.Totals) statement.Totals {
	return statement.ZeroTotals().Sub(t)
}

// guardDate rejects event dates at or before the purchaser's open statement
// start: such dates belong to an already confirmed period.
func (s *Service) guardDate(ctx context.Context, purchaserID id.ID, date time.Time) error {
	open, err := s.statements.Open(ctx, statement.SideSale, purchaserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if open.StartDate != nil && !types.DayStart(date).After(types.DayStart(*open.StartDate)) {
		return apperror.NewDateOutOfPeriod("sale date falls inside a confirmed statement period").
			WithDetail("date", types.FormatDate(date)).
			WithDetail("open_start", types.FormatDate(*open.StartDate))
	}
	return nil
}

// guardNotConfirmed blocks edits on events belonging to a confirmed statement.
func (s *Service) guardNotConfirmed(ctx context.Context, sl *Sale) error {
	if sl.StatementID == nil {
		return nil
	}
	st, err := s.statements.GetByID(ctx, *sl.StatementID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if st.IsConfirmed() {
		return apperror.NewStatementState("sale belongs to a confirmed statement").
			WithDetail("sale_id", sl.ID.String()).
			WithDetail("statement_id", st.ID.String())
	}
	return nil
}

// Create records a sale: resolves the purchaser and goods, checks stock,
// freezes the current weighted-average cost, accumulates the purchaser's
// open statement and appends a flow record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Sale, error) {
	var result *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		pur, err := s.purchasers.GetByID(ctx, in.PurchaserID)
		if err != nil {
			return err
		}
		if pur.IsDeleted() {
			return apperror.NewNotFound("purchaser", in.PurchaserID.String())
		}

		if err := s.guardDate(ctx, pur.ID, in.SaleDate); err != nil {
			return err
		}

		g, err := s.goodsRepo.GetByID(ctx, in.GoodsID)
		if err != nil {
			return err
		}
		if g.IsDeleted() {
			return apperror.NewNotFound("goods", in.GoodsID.String())
		}
		if g.StockNum < in.Num {
			return apperror.NewInsufficientStock(g.ID.String(), in.Num, g.StockNum)
		}

		state := costing.State{Stock: g.StockNum, UnitCost: g.StockUnitCost, TotalValue: g.StockTotalValue}
		stockBefore := g.StockNum
		state, snapshot := costing.ApplySale(state, g.Spec, in.Num)

		sl := &Sale{
			BaseEntity:   entity.NewBaseEntity(),
			PurchaserID:  pur.ID,
			GoodsID:      g.ID,
			SaleDate:     types.DayStart(in.SaleDate),
			Num:          in.Num,
			UnitPrice:    types.Round2(in.UnitPrice),
			CostSnapshot: snapshot,
			Remark:       in.Remark,
		}
		sl.Amount = types.Round2(costing.Amount(g.Spec, in.Num, sl.UnitPrice))
		unitProfit, totalProfit := costing.SaleProfit(g.Spec, in.Num, sl.UnitPrice, snapshot)
		sl.UnitProfit = types.Round2(unitProfit)
		sl.TotalProfit = types.Round2(totalProfit)
		if err := sl.Validate(ctx); err != nil {
			return err
		}

		cost := types.Round2(costing.Amount(g.Spec, in.Num, snapshot))
		st, err := s.statements.EnsureOpen(ctx, statement.SideSale, pur.ID,
			statement.Totals{Amount: sl.Amount, Cost: cost, Profit: sl.TotalProfit})
		if err != nil {
			return err
		}
		sl.StatementID = &st.ID

		if err := s.repo.Create(ctx, sl); err != nil {
			return err
		}

		stock, unitCost, totalValue := state.Persisted(g.Spec)
		if err := s.goodsRepo.SaveStock(ctx, g.ID, stock, unitCost, totalValue); err != nil {
			return err
		}

		if _, err := s.ledger.Append(ctx, g.ID, costing.EventSale, sl.ID, -sl.Num,
			sl.SaleDate, inventory.SourceSale, stockBefore); err != nil {
			return err
		}

		if in.CustomerGoodsName != nil && *in.CustomerGoodsName != "" {
			if err := s.aliases.Upsert(ctx, g.ID, pur.ID, *in.CustomerGoodsName); err != nil {
				return err
			}
		}

		logger.Info(ctx, "sale recorded",
			"sale_id", sl.ID, "goods_id", g.ID, "num", sl.Num,
			"amount", sl.Amount, "profit", sl.TotalProfit)
		result = sl
		return nil
	})
	return result, err
}

// Update edits a sale that is not locked inside a confirmed statement. Old
// effects are reversed, new values applied, and the goods history replayed
// so the cost snapshot and downstream events stay correct.
func (s *Service) Update(ctx context.Context, saleID id.ID, in UpdateInput) (*Sale, error) {
	var result *Sale
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.repo.GetByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := s.guardNotConfirmed(ctx, sl); err != nil {
			return err
		}

		g, err := s.goodsRepo.GetByID(ctx, sl.GoodsID)
		if err != nil {
			return err
		}

		oldNum := sl.Num

		if in.SaleDate != nil {
			if err := s.guardDate(ctx, sl.PurchaserID, *in.SaleDate); err != nil {
				return err
			}
			sl.SaleDate = types.DayStart(*in.SaleDate)
		}
		if in.Num != nil {
			sl.Num = *in.Num
		}
		if in.UnitPrice != nil {
			sl.UnitPrice = types.Round2(*in.UnitPrice)
		}
		if in.Remark != nil {
			sl.Remark = in.Remark
		}
		if sl.Num > oldNum && g.StockNum < sl.Num-oldNum {
			return apperror.NewInsufficientStock(g.ID.String(), sl.Num-oldNum, g.StockNum)
		}
		sl.Amount = types.Round2(costing.Amount(g.Spec, sl.Num, sl.UnitPrice))
		if err := sl.Validate(ctx); err != nil {
			return err
		}
		sl.Touch()

		if err := s.repo.Update(ctx, sl); err != nil {
			return err
		}

		// Rewrite the flow entry and replay: the replay recomputes the
		// cost snapshot and profit columns for this row and every later
		// sale of the item, then re-sums the affected statements.
		if err := s.ledger.Remove(ctx, costing.EventSale, sl.ID); err != nil {
			return err
		}
		if err := s.engine.Reconcile(ctx, sl.GoodsID); err != nil {
			return err
		}
		fresh, err := s.goodsRepo.GetByID(ctx, sl.GoodsID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Append(ctx, sl.GoodsID, costing.EventSale, sl.ID, -sl.Num,
			sl.SaleDate, inventory.SourceSale, fresh.StockNum+sl.Num); err != nil {
			return err
		}

		// The replay rewrote the snapshot and profit columns; re-read the
		// row so the caller sees the replayed figures.
		sl, err = s.repo.GetByID(ctx, saleID)
		if err != nil {
			return err
		}

		if in.CustomerGoodsName != nil && *in.CustomerGoodsName != "" {
			if err := s.aliases.Upsert(ctx, sl.GoodsID, sl.PurchaserID, *in.CustomerGoodsName); err != nil {
				return err
			}
		}

		result = sl
		return nil
	})
	return result, err
}

// Delete reverses a sale: statement adjustment, stock restore via replay,
// soft delete and flow removal.
func (s *Service) Delete(ctx context.Context, saleID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sl, err := s.repo.GetByID(ctx, saleID)
		if err != nil {
			return err
		}
		if err := s.guardNotConfirmed(ctx, sl); err != nil {
			return err
		}

		g, err := s.goodsRepo.GetByID(ctx, sl.GoodsID)
		if err != nil {
			return err
		}

		if sl.StatementID != nil {
			cost := types.Round2(costing.Amount(g.Spec, sl.Num, sl.CostSnapshot))
			delta := negTotals(statement.Totals{Amount: sl.Amount, Cost: cost, Profit: sl.TotalProfit})
			if err := s.statements.AdjustStatement(ctx, *sl.StatementID, delta); err != nil {
				return err
			}
		}

		if err := s.repo.SetStatus(ctx, saleID, entity.StatusDeleted); err != nil {
			return err
		}
		if err := s.ledger.Remove(ctx, costing.EventSale, sl.ID); err != nil {
			return err
		}

		return s.engine.Reconcile(ctx, sl.GoodsID)
	})
}

// GetByID retrieves a sale.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

// List retrieves enriched sale rows.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

// LastRecord returns the most recent sale of a goods item to a purchaser,
// used to prefill entry forms.
func (s *Service) LastRecord(ctx context.Context, purchaserID, goodsID id.ID) (*Sale, error) {
	return s.repo.LastRecord(ctx, purchaserID, goodsID)
}

// SuggestGoods returns in-stock goods suggestions for the sale entry form.
func (s *Service) SuggestGoods(ctx context.Context, keyword string, limit int) ([]*goods.Goods, error) {
	return s.goodsSvc.Suggest(ctx, keyword, true, limit)
}
