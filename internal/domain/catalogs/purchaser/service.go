package purchaser

import (
	"context"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/domain"
)

// Service provides business logic for the Purchaser catalog.
type Service struct {
	*domain.CatalogService[*Purchaser]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Purchaser service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Purchaser]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "purchaser",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	base.Hooks().OnBeforeUpdate(svc.checkNameUnique)

	return svc
}

// Create inserts a new purchaser, reviving a soft-deleted same-name row
// when one exists.
func (s *Service) Create(ctx context.Context, p *Purchaser) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByName(ctx, p.Name)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		if existing != nil && err == nil {
			if !existing.IsDeleted() {
				return apperror.NewDuplicate("purchaser", "name", p.Name)
			}
			existing.ContactPerson = p.ContactPerson
			existing.Phone = p.Phone
			existing.Address = p.Address
			existing.BankName = p.BankName
			existing.BankAccount = p.BankAccount
			existing.TaxNo = p.TaxNo
			existing.Remark = p.Remark
			existing.Restore()
			if err := s.repo.Update(ctx, existing); err != nil {
				return err
			}
			*p = *existing
			return nil
		}

		return s.repo.Create(ctx, p)
	})
}

func (s *Service) checkNameUnique(ctx context.Context, p *Purchaser) error {
	existing, err := s.repo.FindByName(ctx, p.Name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID && existing.Status == entity.StatusActive {
		return apperror.NewDuplicate("purchaser", "name", p.Name)
	}
	return nil
}
