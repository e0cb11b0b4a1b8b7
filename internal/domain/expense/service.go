package expense

import (
	"context"
	"time"

	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/core/types"
	"tradeledger/pkg/logger"
)

// Service manages operating expense records.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates an expense service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create records an expense.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Expense, error) {
	e := &Expense{
		BaseEntity:  entity.NewBaseEntity(),
		Description: in.Description,
		Type:        in.Type,
		Amount:      types.Round2(in.Amount),
		ExpenseDate: types.DayStart(in.ExpenseDate),
		Remark:      in.Remark,
	}
	if err := e.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, e); err != nil {
			return err
		}
		logger.Info(ctx, "expense recorded",
			"expense_id", e.ID, "type", e.Type, "amount", e.Amount)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update edits an expense.
func (s *Service) Update(ctx context.Context, expenseID id.ID, in UpdateInput) (*Expense, error) {
	var result *Expense
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e, err := s.repo.GetByID(ctx, expenseID)
		if err != nil {
			return err
		}
		if in.Description != nil {
			e.Description = *in.Description
		}
		if in.Type != nil {
			e.Type = *in.Type
		}
		if in.Amount != nil {
			e.Amount = types.Round2(*in.Amount)
		}
		if in.ExpenseDate != nil {
			e.ExpenseDate = types.DayStart(*in.ExpenseDate)
		}
		if in.Remark != nil {
			e.Remark = in.Remark
		}
		if err := e.Validate(ctx); err != nil {
			return err
		}
		e.Touch()

		if err := s.repo.Update(ctx, e); err != nil {
			return err
		}
		result = e
		return nil
	})
	return result, err
}

// Delete soft-deletes an expense.
func (s *Service) Delete(ctx context.Context, expenseID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, expenseID); err != nil {
			return err
		}
		return s.repo.SetStatus(ctx, expenseID, entity.StatusDeleted)
	})
}

// GetByID retrieves an expense.
func (s *Service) GetByID(ctx context.Context, expenseID id.ID) (*Expense, error) {
	return s.repo.GetByID(ctx, expenseID)
}

// List retrieves expense rows.
func (s *Service) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

// SumForPeriod totals expenses inside [from, to].
func (s *Service) SumForPeriod(ctx context.Context, from, to *time.Time) (types.Money, error) {
	return s.repo.SumForPeriod(ctx, from, to)
}
