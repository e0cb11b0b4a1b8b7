package inventory

import (
	"context"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/costing"
	"tradeledger/pkg/logger"
)

// LossService records and reverses stock write-offs.
type LossService struct {
	repo      LossRepository
	goodsRepo goods.Repository
	ledger    *FlowLedger
	engine    *costing.Engine
	txManager tx.Manager
}

// NewLossService creates a loss service.
func NewLossService(repo LossRepository, goodsRepo goods.Repository, ledger *FlowLedger, engine *costing.Engine, txManager tx.Manager) *LossService {
	return &LossService{
		repo:      repo,
		goodsRepo: goodsRepo,
		ledger:    ledger,
		engine:    engine,
		txManager: txManager,
	}
}

// Create records a loss. The row is written with the current cost as a
// provisional snapshot, then the goods history is replayed: a backdated
// loss must be valued at the cost in effect on its date, not today's.
func (s *LossService) Create(ctx context.Context, in LossCreateInput) (*Loss, error) {
	var result *Loss
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
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

		l := &Loss{
			BaseEntity:   entity.NewBaseEntity(),
			GoodsID:      g.ID,
			LossDate:     types.DayStart(in.LossDate),
			Num:          in.Num,
			CostSnapshot: types.Round2(g.StockUnitCost),
			Reason:       in.Reason,
		}
		l.LossValue = types.Round2(costing.LossValue(g.Spec, l.Num, l.CostSnapshot))
		if err := l.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, l); err != nil {
			return err
		}
		if _, err := s.ledger.Append(ctx, g.ID, costing.EventLoss, l.ID, -l.Num,
			l.LossDate, SourceLoss, g.StockNum); err != nil {
			return err
		}
		if err := s.engine.Reconcile(ctx, g.ID); err != nil {
			return err
		}

		result, err = s.repo.GetByID(ctx, l.ID)
		if err != nil {
			return err
		}

		logger.Info(ctx, "loss recorded",
			"loss_id", l.ID, "goods_id", g.ID, "num", l.Num, "value", result.LossValue)
		return nil
	})
	return result, err
}

// Delete reverses a loss: soft delete, flow removal, then a replay that
// restores the stock and revalues everything after the loss date.
func (s *LossService) Delete(ctx context.Context, lossID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		l, err := s.repo.GetByID(ctx, lossID)
		if err != nil {
			return err
		}
		if err := s.repo.SetStatus(ctx, lossID, entity.StatusDeleted); err != nil {
			return err
		}
		if err := s.ledger.Remove(ctx, costing.EventLoss, l.ID); err != nil {
			return err
		}
		return s.engine.Reconcile(ctx, l.GoodsID)
	})
}

// GetByID retrieves a loss.
func (s *LossService) GetByID(ctx context.Context, lossID id.ID) (*Loss, error) {
	return s.repo.GetByID(ctx, lossID)
}

// List retrieves enriched loss rows.
func (s *LossService) List(ctx context.Context, filter LossListFilter) (LossListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}
