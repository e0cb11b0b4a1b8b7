package statement

import (
	"context"
	"fmt"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/tx"
	"tradeledger/internal/core/types"
	"tradeledger/pkg/logger"
)

// Manager owns the statement lifecycle: accumulation into the single open
// statement per counterparty, the confirm/unconfirm state machine, and
// settlement rows. All totals are materialized projections recomputed
// wholesale from member sets, never patched incrementally from outside.
type Manager struct {
	repo      Repository
	events    map[Side]EventStore
	payments  PaymentRepository
	txManager tx.Manager
}

// NewManager creates a statement manager.
func NewManager(repo Repository, purchaseEvents, saleEvents EventStore, payments PaymentRepository, txManager tx.Manager) *Manager {
	return &Manager{
		repo: repo,
		events: map[Side]EventStore{
			SidePurchase: purchaseEvents,
			SideSale:     saleEvents,
		},
		payments:  payments,
		txManager: txManager,
	}
}

func (m *Manager) eventStore(side Side) (EventStore, error) {
	store, ok := m.events[side]
	if !ok || store == nil {
		return nil, apperror.NewInternal(fmt.Errorf("no event store for side %q", side))
	}
	return store, nil
}

// currentTotals reads the materialized totals off a statement.
func currentTotals(st *Statement) Totals {
	return Totals{Amount: st.Amount, Cost: st.TotalCost, Profit: st.TotalProfit}
}

// EnsureOpen adds the deltas of a new event to the counterparty's open
// statement, creating one when none exists. The new statement starts the
// day after the last closed period, or unbounded for a first counterparty.
func (m *Manager) EnsureOpen(ctx context.Context, side Side, counterpartyID id.ID, delta Totals) (*Statement, error) {
	var result *Statement
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		open, err := m.repo.GetOpen(ctx, side, counterpartyID)
		if err == nil {
			open.SetTotals(currentTotals(open).Add(delta))
			if err := m.repo.Update(ctx, open); err != nil {
				return err
			}
			result = open
			return nil
		}
		if !apperror.IsNotFound(err) {
			return err
		}

		var start *time.Time
		last, err := m.repo.GetLastClosed(ctx, side, counterpartyID)
		if err == nil && last.EndDate != nil {
			s := types.NextDay(*last.EndDate)
			start = &s
		} else if err != nil && !apperror.IsNotFound(err) {
			return err
		}

		st := NewStatement(side, counterpartyID, start)
		st.SetTotals(delta)
		if err := m.repo.Create(ctx, st); err != nil {
			return err
		}
		result = st
		return nil
	})
	return result, err
}

// AdjustStatement applies a signed delta to a specific statement and
// recomputes its settlement position. Used when an event inside an already
// spawned open statement is edited.
func (m *Manager) AdjustStatement(ctx context.Context, statementID id.ID, delta Totals) error {
	return m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		st, err := m.repo.GetByID(ctx, statementID)
		if err != nil {
			return err
		}
		st.SetTotals(currentTotals(st).Add(delta).ClampZero())
		return m.repo.Update(ctx, st)
	})
}

// Confirm closes an open statement at endDate (inclusive). Member events
// dated after endDate move to a freshly spawned open statement starting the
// next day; both statements' totals are recomputed from their member sets.
func (m *Manager) Confirm(ctx context.Context, statementID id.ID, endDate time.Time) error {
	return m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		st, err := m.repo.GetByID(ctx, statementID)
		if err != nil {
			return err
		}
		if st.IsConfirmed() {
			return apperror.NewStatementState("statement is already confirmed").
				WithDetail("statement_id", statementID.String())
		}

		end := types.DayStart(endDate)
		if st.StartDate != nil && end.Before(types.DayStart(*st.StartDate)) {
			return apperror.NewValidation("end date before statement start date").
				WithDetail("startDate", types.FormatDate(*st.StartDate)).
				WithDetail("endDate", types.FormatDate(end))
		}

		store, err := m.eventStore(st.Side)
		if err != nil {
			return err
		}

		// Spawn the next accumulation target before moving events onto it.
		nextStart := types.NextDay(end)
		next := NewStatement(st.Side, st.CounterpartyID, &nextStart)
		if err := m.repo.Create(ctx, next); err != nil {
			return err
		}

		if err := store.ReassignAfter(ctx, st.ID, next.ID, end); err != nil {
			return err
		}

		st.EndDate = &end
		totals, err := store.SumForStatement(ctx, st.ID, st.StartDate, &end)
		if err != nil {
			return err
		}
		st.SetTotals(totals)
		if err := m.repo.Update(ctx, st); err != nil {
			return err
		}

		nextTotals, err := store.SumForStatement(ctx, next.ID, nil, nil)
		if err != nil {
			return err
		}
		next.SetTotals(nextTotals)
		if err := m.repo.Update(ctx, next); err != nil {
			return err
		}

		logger.Info(ctx, "statement confirmed",
			"statement_id", st.ID, "side", st.Side, "end_date", types.FormatDate(end))
		return nil
	})
}

// Unconfirm reopens a confirmed statement. The counterparty's current open
// statement must start exactly one day after this statement's end date; its
// events are reunited onto the reopened statement and the empty open
// statement is soft-deleted.
func (m *Manager) Unconfirm(ctx context.Context, statementID id.ID) error {
	return m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		st, err := m.repo.GetByID(ctx, statementID)
		if err != nil {
			return err
		}
		if !st.IsConfirmed() {
			return apperror.NewStatementState("statement is not confirmed").
				WithDetail("statement_id", statementID.String())
		}

		store, err := m.eventStore(st.Side)
		if err != nil {
			return err
		}

		open, err := m.repo.GetOpen(ctx, st.Side, st.CounterpartyID)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if err == nil {
			expected := types.NextDay(*st.EndDate)
			if open.StartDate == nil || !types.SameDay(*open.StartDate, expected) {
				return apperror.NewStatementState("open statement is not adjacent").
					WithDetail("expected_start", types.FormatDate(expected))
			}
			if err := store.ReassignAll(ctx, open.ID, st.ID); err != nil {
				return err
			}
			if err := m.repo.SetStatus(ctx, open.ID, entity.StatusDeleted); err != nil {
				return err
			}
		}

		st.EndDate = nil
		totals, err := store.SumForStatement(ctx, st.ID, st.StartDate, nil)
		if err != nil {
			return err
		}
		st.SetTotals(totals)
		return m.repo.Update(ctx, st)
	})
}

// Delete soft-deletes a statement. Member events keep their statement
// reference; they are not reassigned.
func (m *Manager) Delete(ctx context.Context, statementID id.ID) error {
	return m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := m.repo.GetByID(ctx, statementID); err != nil {
			return err
		}
		return m.repo.SetStatus(ctx, statementID, entity.StatusDeleted)
	})
}

// GetByID retrieves a statement.
func (m *Manager) GetByID(ctx context.Context, statementID id.ID) (*Statement, error) {
	return m.repo.GetByID(ctx, statementID)
}

// Open returns the counterparty's current open statement, or NotFound.
func (m *Manager) Open(ctx context.Context, side Side, counterpartyID id.ID) (*Statement, error) {
	return m.repo.GetOpen(ctx, side, counterpartyID)
}

// List retrieves statements for bill listings.
func (m *Manager) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	return m.repo.List(ctx, filter)
}

// RecomputeSaleStatements rebuilds sale statement totals wholesale from
// their member sets. Invoked by the cost engine after a replay rewrote
// profit snapshots.
func (m *Manager) RecomputeSaleStatements(ctx context.Context, statementIDs []id.ID) error {
	store, err := m.eventStore(SideSale)
	if err != nil {
		return err
	}

	for _, sid := range statementIDs {
		st, err := m.repo.GetByID(ctx, sid)
		if err != nil {
			if apperror.IsNotFound(err) {
				continue
			}
			return err
		}
		totals, err := store.SumForStatement(ctx, st.ID, st.StartDate, st.EndDate)
		if err != nil {
			return err
		}
		st.SetTotals(totals)
		if err := m.repo.Update(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// --- settlement ---

// AddPayment records a payment (purchase side) or receipt (sale side)
// against a confirmed statement and refreshes its settlement position.
func (m *Manager) AddPayment(ctx context.Context, statementID id.ID, amount types.Money, payDate time.Time, remark *string) (*Payment, error) {
	var result *Payment
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		st, err := m.repo.GetByID(ctx, statementID)
		if err != nil {
			return err
		}
		if !st.IsConfirmed() {
			return apperror.NewStatementState("cannot settle an open statement").
				WithDetail("statement_id", statementID.String())
		}

		p := NewPayment(statementID, amount, payDate)
		p.Remark = remark
		if err := p.Validate(ctx); err != nil {
			return err
		}
		if p.Amount.GreaterThan(st.Outstanding) {
			return apperror.NewPaymentExceeds("amount exceeds outstanding balance").
				WithDetail("amount", p.Amount.String()).
				WithDetail("outstanding", st.Outstanding.String())
		}

		if err := m.payments.Create(ctx, p); err != nil {
			return err
		}
		if err := m.refreshSettled(ctx, st); err != nil {
			return err
		}
		result = p
		return nil
	})
	return result, err
}

// DeletePayment soft-deletes a settlement row and re-sums the statement's
// settled amount from the remaining rows.
func (m *Manager) DeletePayment(ctx context.Context, paymentID id.ID) error {
	return m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := m.payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		st, err := m.repo.GetByID(ctx, p.StatementID)
		if err != nil {
			return err
		}
		if err := m.payments.SetStatus(ctx, paymentID, entity.StatusDeleted); err != nil {
			return err
		}
		return m.refreshSettled(ctx, st)
	})
}

// ListPayments returns the non-deleted settlement rows of a statement.
func (m *Manager) ListPayments(ctx context.Context, statementID id.ID) ([]*Payment, error) {
	return m.payments.ListForStatement(ctx, statementID)
}

// SetInvoiceStatus flags whether an invoice was issued for a confirmed
// statement.
func (m *Manager) SetInvoiceStatus(ctx context.Context, statementID id.ID, issued bool) error {
	return m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		st, err := m.repo.GetByID(ctx, statementID)
		if err != nil {
			return err
		}
		if !st.IsConfirmed() {
			return apperror.NewStatementState("cannot flag an open statement").
				WithDetail("statement_id", statementID.String())
		}
		st.InvoiceStatus = issued
		st.Touch()
		return m.repo.Update(ctx, st)
	})
}

func (m *Manager) refreshSettled(ctx context.Context, st *Statement) error {
	sum, err := m.payments.SumForStatement(ctx, st.ID)
	if err != nil {
		return err
	}
	st.ApplySettled(sum)
	return m.repo.Update(ctx, st)
}
