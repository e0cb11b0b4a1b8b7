package goods

import (
	"context"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/domain"
)

// Service provides business logic for the Goods catalog.
type Service struct {
	*domain.CatalogService[*Goods]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Goods service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Goods]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "goods",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	base.Hooks().OnBeforeDelete(svc.checkNoStock)

	return svc
}

// checkNoStock rejects deleting a goods row that still has stock on hand.
func (s *Service) checkNoStock(ctx context.Context, g *Goods) error {
	if g.StockNum > 0 {
		return apperror.NewConflict("goods with stock on hand cannot be deleted").
			WithDetail("goodsId", g.ID.String()).
			WithDetail("stockNum", g.StockNum)
	}
	return nil
}

// GetOrCreate returns the goods row for (name, spec), creating it with zero
// stock when absent. A soft-deleted row is revived rather than duplicated.
// Must be called inside the purchase transaction.
func (s *Service) GetOrCreate(ctx context.Context, name string, spec int) (*Goods, error) {
	existing, err := s.repo.FindByNameSpec(ctx, name, spec)
	if err == nil {
		if existing.IsDeleted() {
			existing.Restore()
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	g := NewGoods(name, spec)
	if err := g.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Suggest returns goods name suggestions for entry forms.
func (s *Service) Suggest(ctx context.Context, keyword string, withStockOnly bool, limit int) ([]*Goods, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Suggest(ctx, keyword, withStockOnly, limit)
}
