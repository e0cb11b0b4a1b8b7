package statement

import (
	"context"
	"testing"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memStatementRepo struct {
	rows map[id.ID]*Statement
}

func newMemStatementRepo() *memStatementRepo {
	return &memStatementRepo{rows: make(map[id.ID]*Statement)}
}

func (r *memStatementRepo) Create(ctx context.Context, st *Statement) error {
	cp := *st
	r.rows[st.ID] = &cp
	return nil
}

func (r *memStatementRepo) GetByID(ctx context.Context, statementID id.ID) (*Statement, error) {
	st, ok := r.rows[statementID]
	if !ok || st.IsDeleted() {
		return nil, apperror.NewNotFound("statement", statementID.String())
	}
	cp := *st
	return &cp, nil
}

func (r *memStatementRepo) GetOpen(ctx context.Context, side Side, counterpartyID id.ID) (*Statement, error) {
	for _, st := range r.rows {
		if !st.IsDeleted() && st.Side == side && st.CounterpartyID == counterpartyID && st.IsOpen() {
			cp := *st
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("statement", counterpartyID.String())
}

func (r *memStatementRepo) GetLastClosed(ctx context.Context, side Side, counterpartyID id.ID) (*Statement, error) {
	var best *Statement
	for _, st := range r.rows {
		if st.IsDeleted() || st.Side != side || st.CounterpartyID != counterpartyID || st.EndDate == nil {
			continue
		}
		if best == nil || st.EndDate.After(*best.EndDate) {
			best = st
		}
	}
	if best == nil {
		return nil, apperror.NewNotFound("statement", counterpartyID.String())
	}
	cp := *best
	return &cp, nil
}

func (r *memStatementRepo) Update(ctx context.Context, st *Statement) error {
	cp := *st
	r.rows[st.ID] = &cp
	return nil
}

func (r *memStatementRepo) SetStatus(ctx context.Context, statementID id.ID, status entity.Status) error {
	st, ok := r.rows[statementID]
	if !ok {
		return apperror.NewNotFound("statement", statementID.String())
	}
	st.Status = status
	return nil
}

func (r *memStatementRepo) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	return ListResult{}, nil
}

func (r *memStatementRepo) openCount(side Side, counterpartyID id.ID) int {
	n := 0
	for _, st := range r.rows {
		if !st.IsDeleted() && st.Side == side && st.CounterpartyID == counterpartyID && st.IsOpen() {
			n++
		}
	}
	return n
}

type memEvent struct {
	id     id.ID
	stmtID id.ID
	date   time.Time
	totals Totals
}

type memEventStore struct {
	events []*memEvent
}

func (s *memEventStore) add(stmtID id.ID, date time.Time, amount string) *memEvent {
	ev := &memEvent{
		id:     id.New(),
		stmtID: stmtID,
		date:   types.DayStart(date),
		totals: Totals{Amount: types.MustMoney(amount), Cost: types.Zero(), Profit: types.Zero()},
	}
	s.events = append(s.events, ev)
	return ev
}

func (s *memEventStore) SumForStatement(ctx context.Context, statementID id.ID, from, to *time.Time) (Totals, error) {
	sum := ZeroTotals()
	for _, ev := range s.events {
		if ev.stmtID != statementID {
			continue
		}
		if from != nil && ev.date.Before(types.DayStart(*from)) {
			continue
		}
		if to != nil && ev.date.After(types.DayStart(*to)) {
			continue
		}
		sum = sum.Add(ev.totals)
	}
	return sum, nil
}

func (s *memEventStore) ReassignAfter(ctx context.Context, fromStatementID, toStatementID id.ID, after time.Time) error {
	cutoff := types.DayStart(after)
	for _, ev := range s.events {
		if ev.stmtID == fromStatementID && ev.date.After(cutoff) {
			ev.stmtID = toStatementID
		}
	}
	return nil
}

func (s *memEventStore) ReassignAll(ctx context.Context, fromStatementID, toStatementID id.ID) error {
	for _, ev := range s.events {
		if ev.stmtID == fromStatementID {
			ev.stmtID = toStatementID
		}
	}
	return nil
}

type memPaymentRepo struct {
	rows map[id.ID]*Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{rows: make(map[id.ID]*Payment)}
}

func (r *memPaymentRepo) Create(ctx context.Context, p *Payment) error {
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*Payment, error) {
	p, ok := r.rows[paymentID]
	if !ok || p.IsDeleted() {
		return nil, apperror.NewNotFound("payment", paymentID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) SumForStatement(ctx context.Context, statementID id.ID) (types.Money, error) {
	sum := types.Zero()
	for _, p := range r.rows {
		if !p.IsDeleted() && p.StatementID == statementID {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *memPaymentRepo) ListForStatement(ctx context.Context, statementID id.ID) ([]*Payment, error) {
	var out []*Payment
	for _, p := range r.rows {
		if !p.IsDeleted() && p.StatementID == statementID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) SetStatus(ctx context.Context, paymentID id.ID, status entity.Status) error {
	p, ok := r.rows[paymentID]
	if !ok {
		return apperror.NewNotFound("payment", paymentID.String())
	}
	p.Status = status
	return nil
}

type fixture struct {
	repo     *memStatementRepo
	events   *memEventStore
	payments *memPaymentRepo
	mgr      *Manager
}

func newFixture() *fixture {
	repo := newMemStatementRepo()
	events := &memEventStore{}
	payments := newMemPaymentRepo()
	return &fixture{
		repo:     repo,
		events:   events,
		payments: payments,
		mgr:      NewManager(repo, events, events, payments, fakeTxManager{}),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amountTotals(s string) Totals {
	return Totals{Amount: types.MustMoney(s), Cost: types.Zero(), Profit: types.Zero()}
}

// --- tests ---

func TestEnsureOpen_FirstStatementHasNoStartDate(t *testing.T) {
	f := newFixture()
	cp := id.New()

	st, err := f.mgr.EnsureOpen(context.Background(), SidePurchase, cp, amountTotals("100.00"))
	require.NoError(t, err)

	assert.Nil(t, st.StartDate)
	assert.Nil(t, st.EndDate)
	assert.True(t, st.Amount.Equal(types.MustMoney("100.00")))
	assert.Equal(t, 1, f.repo.openCount(SidePurchase, cp))
}

func TestEnsureOpen_AccumulatesIntoExisting(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	first, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("100.00"))
	require.NoError(t, err)
	second, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("50.00"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Amount.Equal(types.MustMoney("150.00")))
	assert.Equal(t, 1, f.repo.openCount(SidePurchase, cp))
}

func TestAdjustStatement_ClampsAtZero(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("30.00"))
	require.NoError(t, err)
	require.NoError(t, f.mgr.AdjustStatement(ctx, st.ID, ZeroTotals().Sub(amountTotals("50.00"))))

	open, err := f.repo.GetOpen(ctx, SidePurchase, cp)
	require.NoError(t, err)
	assert.True(t, open.Amount.IsZero())
}

func TestConfirm_SplitsFutureEventsOntoNewStatement(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("150.00"))
	require.NoError(t, err)
	f.events.add(st.ID, date(2024, 1, 10), "100.00")
	f.events.add(st.ID, date(2024, 1, 15), "20.00") // exactly on end date, stays
	f.events.add(st.ID, date(2024, 1, 20), "30.00") // after end date, moves

	require.NoError(t, f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15)))

	confirmed, err := f.repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.IsConfirmed())
	assert.True(t, confirmed.Amount.Equal(types.MustMoney("120.00")), "amount = %s", confirmed.Amount)

	open, err := f.repo.GetOpen(ctx, SidePurchase, cp)
	require.NoError(t, err)
	require.NotNil(t, open.StartDate)
	assert.True(t, types.SameDay(*open.StartDate, date(2024, 1, 16)))
	assert.True(t, open.Amount.Equal(types.MustMoney("30.00")), "amount = %s", open.Amount)
	assert.Equal(t, 1, f.repo.openCount(SidePurchase, cp))
}

func TestConfirm_RejectsEndBeforeStart(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("10.00"))
	require.NoError(t, err)
	start := date(2024, 2, 1)
	st.StartDate = &start
	require.NoError(t, f.repo.Update(ctx, st))

	err = f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestConfirm_AlreadyConfirmedFails(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SideSale, cp, amountTotals("10.00"))
	require.NoError(t, err)
	require.NoError(t, f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15)))

	err = f.mgr.Confirm(ctx, st.ID, date(2024, 1, 20))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStatementState, appErr.Code)
}

func TestUnconfirm_RoundTripRestoresState(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SideSale, cp, amountTotals("150.00"))
	require.NoError(t, err)
	f.events.add(st.ID, date(2024, 1, 10), "100.00")
	f.events.add(st.ID, date(2024, 1, 20), "50.00")

	require.NoError(t, f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15)))
	require.NoError(t, f.mgr.Unconfirm(ctx, st.ID))

	reopened, err := f.repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, reopened.IsOpen())
	assert.True(t, reopened.Amount.Equal(types.MustMoney("150.00")), "amount = %s", reopened.Amount)
	assert.Equal(t, 1, f.repo.openCount(SideSale, cp))
}

func TestUnconfirm_NonAdjacentOpenStatementFails(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SideSale, cp, amountTotals("100.00"))
	require.NoError(t, err)
	require.NoError(t, f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15)))

	// break adjacency by moving the open statement's start date
	open, err := f.repo.GetOpen(ctx, SideSale, cp)
	require.NoError(t, err)
	moved := date(2024, 2, 1)
	open.StartDate = &moved
	require.NoError(t, f.repo.Update(ctx, open))

	err = f.mgr.Unconfirm(ctx, st.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStatementState, appErr.Code)

	// no state change
	unchanged, err := f.repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.IsConfirmed())
}

func TestUnconfirm_OpenStatementFails(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("10.00"))
	require.NoError(t, err)

	err = f.mgr.Unconfirm(ctx, st.ID)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStatementState, appErr.Code)
}

func TestAddPayment_ExceedingOutstandingFails(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("100.00"))
	require.NoError(t, err)
	f.events.add(st.ID, date(2024, 1, 10), "100.00")
	require.NoError(t, f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15)))

	_, err = f.mgr.AddPayment(ctx, st.ID, types.MustMoney("150.00"), date(2024, 1, 20), nil)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePaymentExceeds, appErr.Code)

	// no row inserted, totals untouched
	assert.Empty(t, f.payments.rows)
	unchanged, err := f.repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.Settled.IsZero())
}

func TestAddPayment_OnOpenStatementFails(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("100.00"))
	require.NoError(t, err)

	_, err = f.mgr.AddPayment(ctx, st.ID, types.MustMoney("10.00"), date(2024, 1, 20), nil)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStatementState, appErr.Code)
}

func TestAddPayment_SettlesStatement(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SideSale, cp, amountTotals("100.00"))
	require.NoError(t, err)
	f.events.add(st.ID, date(2024, 1, 10), "100.00")
	require.NoError(t, f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15)))

	_, err = f.mgr.AddPayment(ctx, st.ID, types.MustMoney("60.00"), date(2024, 1, 20), nil)
	require.NoError(t, err)

	mid, err := f.repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, mid.Outstanding.Equal(types.MustMoney("40.00")))
	assert.False(t, mid.SettledStatus)

	_, err = f.mgr.AddPayment(ctx, st.ID, types.MustMoney("40.00"), date(2024, 1, 21), nil)
	require.NoError(t, err)

	done, err := f.repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, done.Outstanding.IsZero())
	assert.True(t, done.SettledStatus)
}

func TestDeletePayment_ResumsFromRemainingRows(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SideSale, cp, amountTotals("100.00"))
	require.NoError(t, err)
	f.events.add(st.ID, date(2024, 1, 10), "100.00")
	require.NoError(t, f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15)))

	p1, err := f.mgr.AddPayment(ctx, st.ID, types.MustMoney("60.00"), date(2024, 1, 20), nil)
	require.NoError(t, err)
	_, err = f.mgr.AddPayment(ctx, st.ID, types.MustMoney("40.00"), date(2024, 1, 21), nil)
	require.NoError(t, err)

	require.NoError(t, f.mgr.DeletePayment(ctx, p1.ID))

	after, err := f.repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, after.Settled.Equal(types.MustMoney("40.00")))
	assert.True(t, after.Outstanding.Equal(types.MustMoney("60.00")))
	assert.False(t, after.SettledStatus)
}

func TestSetInvoiceStatus_RequiresConfirmed(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("10.00"))
	require.NoError(t, err)

	err = f.mgr.SetInvoiceStatus(ctx, st.ID, true)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStatementState, appErr.Code)

	require.NoError(t, f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15)))
	require.NoError(t, f.mgr.SetInvoiceStatus(ctx, st.ID, true))

	flagged, err := f.repo.GetByID(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, flagged.InvoiceStatus)
}

func TestEnsureOpen_ChainsStartDateFromLastClosed(t *testing.T) {
	f := newFixture()
	cp := id.New()
	ctx := context.Background()

	st, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("100.00"))
	require.NoError(t, err)
	require.NoError(t, f.mgr.Confirm(ctx, st.ID, date(2024, 1, 15)))

	// drop the spawned open statement, then a new event must chain from
	// the confirmed period
	open, err := f.repo.GetOpen(ctx, SidePurchase, cp)
	require.NoError(t, err)
	require.NoError(t, f.mgr.Delete(ctx, open.ID))

	next, err := f.mgr.EnsureOpen(ctx, SidePurchase, cp, amountTotals("5.00"))
	require.NoError(t, err)
	require.NotNil(t, next.StartDate)
	assert.True(t, types.SameDay(*next.StartDate, date(2024, 1, 16)))
}
