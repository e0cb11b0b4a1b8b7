package purchase

import (
	"context"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/catalogs/supplier"
	"tradeledger/internal/domain/costing"
	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/domain/statement"
	"tradeledger/pkg/logger"
)

// Service orchestrates purchase records. Every mutation runs the full chain
// of side effects atomically: row write, cost engine update, flow ledger
// entry and statement adjustment.
type Service struct {
	repo       Repository
	suppliers  supplier.Repository
	goodsSvc   *goods.Service
	goodsRepo  goods.Repository
	statements *statement.Manager
	ledger     *inventory.FlowLedger
	engine     *costing.Engine
	txManager  tx.Manager
}

// NewService creates a purchase service.
func NewService(
	repo Repository,
	suppliers supplier.Repository,
	goodsSvc *goods.Service,
	goodsRepo goods.Repository,
	statements *statement.Manager,
	ledger *inventory.FlowLedger,
	engine *costing.Engine,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		suppliers:  suppliers,
		goodsSvc:   goodsSvc,
		goodsRepo:  goodsRepo,
		statements: statements,
		ledger:     ledger,
		engine:     engine,
		txManager:  txManager,
	}
}

func negTotals(t statement.Totals) statement.Totals {
	return statement.ZeroTotals().Sub(t)
}

// guardDate rejects event dates at or before the supplier's open statement
// start: such dates belong to an already confirmed period.
func (s *Service) guardDate(ctx context.Context, supplierID id.ID, date time.Time) error {
	open, err := s.statements.Open(ctx, statement.SidePurchase, supplierID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if open.StartDate != nil && !types.DayStart(date).After(types.DayStart(*open.StartDate)) {
		return apperror.NewDateOutOfPeriod("purchase date falls inside a confirmed statement period").
			WithDetail("date", types.FormatDate(date)).
			WithDetail("open_start", types.FormatDate(*open.StartDate))
	}
	return nil
}

// guardNotConfirmed blocks edits on events belonging to a confirmed statement.
func (s *Service) guardNotConfirmed(ctx context.Context, p *Purchase) error {
	if p.StatementID == nil {
		return nil
	}
	st, err := s.statements.GetByID(ctx, *p.StatementID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if st.IsConfirmed() {
		return apperror.NewStatementState("purchase belongs to a confirmed statement").
			WithDetail("purchase_id", p.ID.String()).
			WithDetail("statement_id", st.ID.String())
	}
	return nil
}

// Create records a purchase: resolves the supplier, gets or creates the
// goods row, accumulates the supplier's open statement, applies the
// incremental weighted-average update and appends a flow record.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Purchase, error) {
	var result *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sup, err := s.suppliers.GetByID(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if sup.IsDeleted() {
			return apperror.NewNotFound("supplier", in.SupplierID.String())
		}

		if err := s.guardDate(ctx, sup.ID, in.PurchaseDate); err != nil {
			return err
		}

		g, err := s.goodsSvc.GetOrCreate(ctx, in.GoodsName, in.Spec)
		if err != nil {
			return err
		}

		p := &Purchase{
			BaseEntity:   entity.NewBaseEntity(),
			SupplierID:   sup.ID,
			GoodsID:      g.ID,
			PurchaseDate: types.DayStart(in.PurchaseDate),
			Num:          in.Num,
			UnitPrice:    types.Round2(in.UnitPrice),
			Remark:       in.Remark,
		}
		p.Amount = types.Round2(costing.Amount(g.Spec, in.Num, p.UnitPrice))
		if err := p.Validate(ctx); err != nil {
			return err
		}

		st, err := s.statements.EnsureOpen(ctx, statement.SidePurchase, sup.ID,
			statement.Totals{Amount: p.Amount, Cost: types.Zero(), Profit: types.Zero()})
		if err != nil {
			return err
		}
		p.StatementID = &st.ID

		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}

		stockBefore := g.StockNum
		state := costing.State{Stock: g.StockNum, UnitCost: g.StockUnitCost, TotalValue: g.StockTotalValue}
		state = costing.ApplyPurchase(state, g.Spec, p.Num, p.UnitPrice)
		stock, unitCost, totalValue := state.Persisted(g.Spec)
		if err := s.goodsRepo.SaveStock(ctx, g.ID, stock, unitCost, totalValue); err != nil {
			return err
		}

		if _, err := s.ledger.Append(ctx, g.ID, costing.EventPurchase, p.ID, p.Num,
			p.PurchaseDate, inventory.SourcePurchase, stockBefore); err != nil {
			return err
		}

		logger.Info(ctx, "purchase recorded",
			"purchase_id", p.ID, "goods_id", g.ID, "num", p.Num, "amount", p.Amount)
		result = p
		return nil
	})
	return result, err
}

// Update edits a purchase that is not locked inside a confirmed statement.
// Old effects are reversed, new values applied, and the goods history
// replayed so cost snapshots downstream stay correct.
func (s *Service) Update(ctx context.Context, purchaseID id.ID, in UpdateInput) (*Purchase, error) {
	var result *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := s.guardNotConfirmed(ctx, p); err != nil {
			return err
		}

		g, err := s.goodsRepo.GetByID(ctx, p.GoodsID)
		if err != nil {
			return err
		}

		oldAmount := p.Amount

		if in.PurchaseDate != nil {
			if err := s.guardDate(ctx, p.SupplierID, *in.PurchaseDate); err != nil {
				return err
			}
			p.PurchaseDate = types.DayStart(*in.PurchaseDate)
		}
		if in.Num != nil {
			p.Num = *in.Num
		}
		if in.UnitPrice != nil {
			p.UnitPrice = types.Round2(*in.UnitPrice)
		}
		if in.Remark != nil {
			p.Remark = in.Remark
		}
		p.Amount = types.Round2(costing.Amount(g.Spec, p.Num, p.UnitPrice))
		if err := p.Validate(ctx); err != nil {
			return err
		}
		p.Touch()

		if err := s.repo.Update(ctx, p); err != nil {
			return err
		}

		if p.StatementID != nil {
			delta := statement.Totals{Amount: p.Amount.Sub(oldAmount), Cost: types.Zero(), Profit: types.Zero()}
			if err := s.statements.AdjustStatement(ctx, *p.StatementID, delta); err != nil {
				return err
			}
		}

		// Rewrite the flow entry and replay: an edited purchase may sit
		// anywhere in the goods item's history.
		if err := s.ledger.Remove(ctx, costing.EventPurchase, p.ID); err != nil {
			return err
		}
		if err := s.engine.Reconcile(ctx, p.GoodsID); err != nil {
			return err
		}
		fresh, err := s.goodsRepo.GetByID(ctx, p.GoodsID)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Append(ctx, p.GoodsID, costing.EventPurchase, p.ID, p.Num,
			p.PurchaseDate, inventory.SourcePurchase, fresh.StockNum-p.Num); err != nil {
			return err
		}

		result = p
		return nil
	})
	return result, err
}

// Delete reverses a purchase: statement adjustment, soft delete, flow
// removal, then an authoritative replay of the goods history.
func (s *Service) Delete(ctx context.Context, purchaseID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := s.guardNotConfirmed(ctx, p); err != nil {
			return err
		}

		if p.StatementID != nil {
			delta := negTotals(statement.Totals{Amount: p.Amount, Cost: types.Zero(), Profit: types.Zero()})
			if err := s.statements.AdjustStatement(ctx, *p.StatementID, delta); err != nil {
				return err
			}
		}

		if err := s.repo.SetStatus(ctx, purchaseID, entity.StatusDeleted); err != nil {
			return err
		}
		if err := s.ledger.Remove(ctx, costing.EventPurchase, p.ID); err != nil {
			return err
		}

		return s.engine.Reconcile(ctx, p.GoodsID)
	})
}

// GetByID retrieves a purchase.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	return s.repo.GetByID(ctx, purchaseID)
}

// List retrieves enriched purchase rows.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

// LastRecord returns the most recent purchase of a goods item from a
// supplier, used to prefill entry forms.
func (s *Service) LastRecord(ctx context.Context, supplierID, goodsID id.ID) (*Purchase, error) {
	return s.repo.LastRecord(ctx, supplierID, goodsID)
}

// SuggestGoods returns goods name suggestions for the purchase entry form.
func (s *Service) SuggestGoods(ctx context.Context, keyword string, limit int) ([]*goods.Goods, error) {
	return s.goodsSvc.Suggest(ctx, keyword, false, limit)
}
