package supplier

import (
	"context"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/domain"
)

// Service provides business logic for the Supplier catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Supplier]
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new Supplier service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Supplier]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "supplier",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		txManager:      txManager,
	}

	base.Hooks().OnBeforeUpdate(svc.checkNameUnique)

	return svc
}

// Create inserts a new supplier. If a soft-deleted supplier with the same
// name exists, it is revived in place with the new contact details instead
// of inserting a duplicate row.
func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindByName(ctx, sup.Name)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		if existing != nil && err == nil {
			if !existing.IsDeleted() {
				return apperror.NewDuplicate("supplier", "name", sup.Name)
			}
			// Revive the deleted row, keeping its identity and history.
			existing.ContactPerson = sup.ContactPerson
			existing.Phone = sup.Phone
			existing.Address = sup.Address
			existing.BankName = sup.BankName
			existing.BankAccount = sup.BankAccount
			existing.TaxNo = sup.TaxNo
			existing.Remark = sup.Remark
			existing.Restore()
			if err := s.repo.Update(ctx, existing); err != nil {
				return err
			}
			*sup = *existing
			return nil
		}

		return s.repo.Create(ctx, sup)
	})
}

// checkNameUnique rejects updates that would collide with another active supplier.
func (s *Service) checkNameUnique(ctx context.Context, sup *Supplier) error {
	existing, err := s.repo.FindByName(ctx, sup.Name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != sup.ID && existing.Status == entity.StatusActive {
		return apperror.NewDuplicate("supplier", "name", sup.Name)
	}
	return nil
}
