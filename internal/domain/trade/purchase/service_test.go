package purchase

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/catalogs/supplier"
	"tradeledger/internal/domain/costing"
	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/domain/statement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- in-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memSupplierRepo struct {
	rows map[id.ID]*supplier.Supplier
}

func newMemSupplierRepo() *memSupplierRepo {
	return &memSupplierRepo{rows: make(map[id.ID]*supplier.Supplier)}
}

func (r *memSupplierRepo) add(name string) *supplier.Supplier {
	s := supplier.NewSupplier(name)
	r.rows[s.ID] = s
	return s
}

func (r *memSupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

// GetByID returns the row regardless of status; the service layer decides
// what deletion means for the operation at hand.
func (r *memSupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	s, ok := r.rows[supplierID]
	if !ok {
		return nil, apperror.NewNotFound("supplier", supplierID.String())
	}
	cp := *s
	return &cp, nil
}

func (r *memSupplierRepo) FindByName(ctx context.Context, name string) (*supplier.Supplier, error) {
	for _, s := range r.rows {
		if s.Name == name {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("supplier", name)
}

func (r *memSupplierRepo) Update(ctx context.Context, s *supplier.Supplier) error {
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *memSupplierRepo) SetStatus(ctx context.Context, supplierID id.ID, status entity.Status) error {
	s, ok := r.rows[supplierID]
	if !ok {
		return apperror.NewNotFound("supplier", supplierID.String())
	}
	s.Status = status
	return nil
}

func (r *memSupplierRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*supplier.Supplier], error) {
	return domain.ListResult[*supplier.Supplier]{}, nil
}

func (r *memSupplierRepo) Exists(ctx context.Context, supplierID id.ID) (bool, error) {
	_, ok := r.rows[supplierID]
	return ok, nil
}

type memGoodsRepo struct {
	rows map[id.ID]*goods.Goods
}

func newMemGoodsRepo() *memGoodsRepo {
	return &memGoodsRepo{rows: make(map[id.ID]*goods.Goods)}
}

func (r *memGoodsRepo) Create(ctx context.Context, g *goods.Goods) error {
	cp := *g
	r.rows[g.ID] = &cp
	return nil
}

func (r *memGoodsRepo) GetByID(ctx context.Context, goodsID id.ID) (*goods.Goods, error) {
	g, ok := r.rows[goodsID]
	if !ok {
		return nil, apperror.NewNotFound("goods", goodsID.String())
	}
	cp := *g
	return &cp, nil
}

func (r *memGoodsRepo) FindByName(ctx context.Context, name string) (*goods.Goods, error) {
	for _, g := range r.rows {
		if g.Name == name {
			cp := *g
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("goods", name)
}

func (r *memGoodsRepo) FindByNameSpec(ctx context.Context, name string, spec int) (*goods.Goods, error) {
	for _, g := range r.rows {
		if g.Name == name && g.Spec == spec {
			cp := *g
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("goods", name)
}

func (r *memGoodsRepo) Update(ctx context.Context, g *goods.Goods) error {
	cp := *g
	r.rows[g.ID] = &cp
	return nil
}

func (r *memGoodsRepo) SetStatus(ctx context.Context, goodsID id.ID, status entity.Status) error {
	g, ok := r.rows[goodsID]
	if !ok {
		return apperror.NewNotFound("goods", goodsID.String())
	}
	g.Status = status
	return nil
}

func (r *memGoodsRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*goods.Goods], error) {
	return domain.ListResult[*goods.Goods]{}, nil
}

func (r *memGoodsRepo) Exists(ctx context.Context, goodsID id.ID) (bool, error) {
	_, ok := r.rows[goodsID]
	return ok, nil
}

func (r *memGoodsRepo) SaveStock(ctx context.Context, goodsID id.ID, stockNum int, unitCost, totalValue types.Money) error {
	g, ok := r.rows[goodsID]
	if !ok {
		return apperror.NewNotFound("goods", goodsID.String())
	}
	g.StockNum = stockNum
	g.StockUnitCost = unitCost
	g.StockTotalValue = totalValue
	return nil
}

func (r *memGoodsRepo) Suggest(ctx context.Context, keyword string, withStockOnly bool, limit int) ([]*goods.Goods, error) {
	var out []*goods.Goods
	for _, g := range r.rows {
		if g.IsDeleted() || !strings.Contains(g.Name, keyword) {
			continue
		}
		if withStockOnly && g.StockNum == 0 {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memGoodsRepo) GetStockInfo(ctx context.Context, goodsID id.ID) (int, error) {
	g, ok := r.rows[goodsID]
	if !ok {
		return 0, apperror.NewNotFound("goods", goodsID.String())
	}
	return g.Spec, nil
}

func (r *memGoodsRepo) ListAllIDs(ctx context.Context) ([]id.ID, error) {
	var out []id.ID
	for _, g := range r.rows {
		if !g.IsDeleted() {
			out = append(out, g.ID)
		}
	}
	return out, nil
}

type memPurchaseRepo struct {
	rows map[id.ID]*Purchase
}

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{rows: make(map[id.ID]*Purchase)}
}

func (r *memPurchaseRepo) Create(ctx context.Context, p *Purchase) error {
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memPurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	p, ok := r.rows[purchaseID]
	if !ok || p.IsDeleted() {
		return nil, apperror.NewNotFound("purchase", purchaseID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *memPurchaseRepo) Update(ctx context.Context, p *Purchase) error {
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memPurchaseRepo) SetStatus(ctx context.Context, purchaseID id.ID, status entity.Status) error {
	p, ok := r.rows[purchaseID]
	if !ok {
		return apperror.NewNotFound("purchase", purchaseID.String())
	}
	p.Status = status
	return nil
}

func (r *memPurchaseRepo) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	return ListResult{}, nil
}

func (r *memPurchaseRepo) LastRecord(ctx context.Context, supplierID, goodsID id.ID) (*Purchase, error) {
	var best *Purchase
	for _, p := range r.rows {
		if p.IsDeleted() || p.SupplierID != supplierID || p.GoodsID != goodsID {
			continue
		}
		if best == nil || p.PurchaseDate.After(best.PurchaseDate) {
			best = p
		}
	}
	if best == nil {
		return nil, apperror.NewNotFound("purchase", goodsID.String())
	}
	cp := *best
	return &cp, nil
}

func (r *memPurchaseRepo) SumForStatement(ctx context.Context, statementID id.ID, from, to *time.Time) (statement.Totals, error) {
	sum := statement.ZeroTotals()
	for _, p := range r.rows {
		if p.IsDeleted() || p.StatementID == nil || *p.StatementID != statementID {
			continue
		}
		if from != nil && p.PurchaseDate.Before(types.DayStart(*from)) {
			continue
		}
		if to != nil && p.PurchaseDate.After(types.DayStart(*to)) {
			continue
		}
		sum = sum.Add(statement.Totals{Amount: p.Amount, Cost: types.Zero(), Profit: types.Zero()})
	}
	return sum, nil
}

func (r *memPurchaseRepo) ReassignAfter(ctx context.Context, fromStatementID, toStatementID id.ID, after time.Time) error {
	cutoff := types.DayStart(after)
	for _, p := range r.rows {
		if p.StatementID != nil && *p.StatementID == fromStatementID && p.PurchaseDate.After(cutoff) {
			sid := toStatementID
			p.StatementID = &sid
		}
	}
	return nil
}

func (r *memPurchaseRepo) ReassignAll(ctx context.Context, fromStatementID, toStatementID id.ID) error {
	for _, p := range r.rows {
		if p.StatementID != nil && *p.StatementID == fromStatementID {
			sid := toStatementID
			p.StatementID = &sid
		}
	}
	return nil
}

// memEventSource replays the non-deleted purchase rows; snapshot rewrites
// are sale and loss concerns and never fire here.
type memEventSource struct {
	purchases *memPurchaseRepo
}

func (s *memEventSource) ListForGoods(ctx context.Context, goodsID id.ID) ([]costing.ReplayEvent, error) {
	var out []costing.ReplayEvent
	for _, p := range s.purchases.rows {
		if p.IsDeleted() || p.GoodsID != goodsID {
			continue
		}
		out = append(out, costing.ReplayEvent{
			ID:        p.ID,
			Type:      costing.EventPurchase,
			Date:      p.PurchaseDate,
			Num:       p.Num,
			UnitPrice: p.UnitPrice,
		})
	}
	return out, nil
}

func (s *memEventSource) UpdateSaleSnapshot(ctx context.Context, saleID id.ID, cost, unitProfit, totalProfit types.Money) error {
	return nil
}

func (s *memEventSource) UpdateLossSnapshot(ctx context.Context, lossID id.ID, cost, totalValue types.Money) error {
	return nil
}

type memStatementRepo struct {
	rows map[id.ID]*statement.Statement
}

func newMemStatementRepo() *memStatementRepo {
	return &memStatementRepo{rows: make(map[id.ID]*statement.Statement)}
}

func (r *memStatementRepo) Create(ctx context.Context, st *statement.Statement) error {
	cp := *st
	r.rows[st.ID] = &cp
	return nil
}

func (r *memStatementRepo) GetByID(ctx context.Context, statementID id.ID) (*statement.Statement, error) {
	st, ok := r.rows[statementID]
	if !ok || st.IsDeleted() {
		return nil, apperror.NewNotFound("statement", statementID.String())
	}
	cp := *st
	return &cp, nil
}

func (r *memStatementRepo) GetOpen(ctx context.Context, side statement.Side, counterpartyID id.ID) (*statement.Statement, error) {
	for _, st := range r.rows {
		if !st.IsDeleted() && st.Side == side && st.CounterpartyID == counterpartyID && st.IsOpen() {
			cp := *st
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("statement", counterpartyID.String())
}

func (r *memStatementRepo) GetLastClosed(ctx context.Context, side statement.Side, counterpartyID id.ID) (*statement.Statement, error) {
	var best *statement.Statement
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

func (r *memStatementRepo) Update(ctx context.Context, st *statement.Statement) error {
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

func (r *memStatementRepo) List(ctx context.Context, filter statement.ListFilter) (statement.ListResult, error) {
	return statement.ListResult{}, nil
}

type memPaymentRepo struct {
	rows map[id.ID]*statement.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{rows: make(map[id.ID]*statement.Payment)}
}

func (r *memPaymentRepo) Create(ctx context.Context, p *statement.Payment) error {
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*statement.Payment, error) {
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

func (r *memPaymentRepo) ListForStatement(ctx context.Context, statementID id.ID) ([]*statement.Payment, error) {
	var out []*statement.Payment
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

// stubEventStore backs the unused sale side of the statement manager.
type stubEventStore struct{}

func (stubEventStore) SumForStatement(ctx context.Context, statementID id.ID, from, to *time.Time) (statement.Totals, error) {
	return statement.ZeroTotals(), nil
}

func (stubEventStore) ReassignAfter(ctx context.Context, fromStatementID, toStatementID id.ID, after time.Time) error {
	return nil
}

func (stubEventStore) ReassignAll(ctx context.Context, fromStatementID, toStatementID id.ID) error {
	return nil
}

type memFlowRepo struct {
	rows []*inventory.FlowRecord
}

func (r *memFlowRepo) Insert(ctx context.Context, rec *inventory.FlowRecord) error {
	cp := *rec
	r.rows = append(r.rows, &cp)
	return nil
}

func (r *memFlowRepo) sorted(goodsID id.ID) []*inventory.FlowRecord {
	var out []*inventory.FlowRecord
	for _, rec := range r.rows {
		if rec.GoodsID == goodsID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OperTime.Equal(out[j].OperTime) {
			return out[i].OperTime.Before(out[j].OperTime)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (r *memFlowRepo) ListAfter(ctx context.Context, goodsID id.ID, after time.Time) ([]*inventory.FlowRecord, error) {
	var out []*inventory.FlowRecord
	for _, rec := range r.sorted(goodsID) {
		if rec.OperTime.After(after) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memFlowRepo) ShiftAfter(ctx context.Context, goodsID id.ID, after time.Time, delta int) error {
	for _, rec := range r.rows {
		if rec.GoodsID == goodsID && rec.OperTime.After(after) {
			rec.StockBefore += delta
			rec.StockAfter += delta
		}
	}
	return nil
}

func (r *memFlowRepo) FindByBiz(ctx context.Context, operType costing.EventType, bizID id.ID) ([]*inventory.FlowRecord, error) {
	var out []*inventory.FlowRecord
	for _, rec := range r.rows {
		if rec.OperType == operType && rec.BizID == bizID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memFlowRepo) Delete(ctx context.Context, recordID id.ID) error {
	for i, rec := range r.rows {
		if rec.ID == recordID {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memFlowRepo) ListForGoods(ctx context.Context, goodsID id.ID, limit, offset int) ([]*inventory.FlowRecord, int64, error) {
	all := r.sorted(goodsID)
	return all, int64(len(all)), nil
}

// --- fixture ---

type fixture struct {
	suppliers  *memSupplierRepo
	goodsRepo  *memGoodsRepo
	repo       *memPurchaseRepo
	flows      *memFlowRepo
	statements *memStatementRepo
	mgr        *statement.Manager
	svc        *Service
}

func newFixture() *fixture {
	suppliers := newMemSupplierRepo()
	goodsRepo := newMemGoodsRepo()
	repo := newMemPurchaseRepo()
	flows := &memFlowRepo{}
	stmtRepo := newMemStatementRepo()

	txm := fakeTxManager{}
	mgr := statement.NewManager(stmtRepo, repo, stubEventStore{}, newMemPaymentRepo(), txm)
	engine := costing.NewEngine(goodsRepo, &memEventSource{purchases: repo}, mgr, txm)
	ledger := inventory.NewFlowLedger(flows, txm)
	goodsSvc := goods.NewService(goodsRepo, txm)

	return &fixture{
		suppliers:  suppliers,
		goodsRepo:  goodsRepo,
		repo:       repo,
		flows:      flows,
		statements: stmtRepo,
		mgr:        mgr,
		svc:        NewService(repo, suppliers, goodsSvc, goodsRepo, mgr, ledger, engine, txm),
	}
}

func (f *fixture) goodsByName(t *testing.T, name string) *goods.Goods {
	t.Helper()
	for _, g := range f.goodsRepo.rows {
		if g.Name == name {
			return g
		}
	}
	t.Fatalf("goods %q not found", name)
	return nil
}

func (f *fixture) openStatement(t *testing.T, supplierID id.ID) *statement.Statement {
	t.Helper()
	st, err := f.statements.GetOpen(context.Background(), statement.SidePurchase, supplierID)
	require.NoError(t, err)
	return st
}

// assertChain verifies consecutive flow records link before/after and the
// final stock_after matches expectStock.
func assertChain(t *testing.T, flows *memFlowRepo, goodsID id.ID, expectStock int) {
	t.Helper()
	recs := flows.sorted(goodsID)
	for i := 0; i < len(recs); i++ {
		assert.Equal(t, recs[i].StockBefore+recs[i].ChangeNum, recs[i].StockAfter,
			"record %d after != before+change", i)
		if i > 0 {
			assert.Equal(t, recs[i-1].StockAfter, recs[i].StockBefore,
				"chain broken between records %d and %d", i-1, i)
		}
	}
	if len(recs) > 0 {
		assert.Equal(t, expectStock, recs[len(recs)-1].StockAfter, "final stock mismatch")
	} else {
		assert.Equal(t, 0, expectStock)
	}
}

func date(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) types.Money {
	return types.MustMoney(s)
}

// --- tests ---

func TestCreate_FirstPurchaseSetsStockAndCost(t *testing.T) {
	f := newFixture()
	sup := f.suppliers.add("Acme Metals")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, CreateInput{
		SupplierID:   sup.ID,
		GoodsName:    "Galvanized wire",
		Spec:         1,
		PurchaseDate: date(1),
		Num:          10,
		UnitPrice:    money("5.00"),
	})
	require.NoError(t, err)

	assert.True(t, p.Amount.Equal(money("50.00")), "amount = %s", p.Amount)
	require.NotNil(t, p.StatementID)

	g := f.goodsByName(t, "Galvanized wire")
	assert.Equal(t, 10, g.StockNum)
	assert.True(t, g.StockUnitCost.Equal(money("5.00")), "cost = %s", g.StockUnitCost)
	assert.True(t, g.StockTotalValue.Equal(money("50.00")), "value = %s", g.StockTotalValue)

	st := f.openStatement(t, sup.ID)
	assert.Equal(t, *p.StatementID, st.ID)
	assert.True(t, st.Amount.Equal(money("50.00")), "statement amount = %s", st.Amount)

	assertChain(t, f.flows, g.ID, 10)
	assert.Len(t, f.flows.sorted(g.ID), 1)
}

func TestCreate_BlendsWeightedAverage(t *testing.T) {
	f := newFixture()
	sup := f.suppliers.add("Acme Metals")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(1), Num: 10, UnitPrice: money("5.00"),
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(2), Num: 5, UnitPrice: money("8.00"),
	})
	require.NoError(t, err)

	g := f.goodsByName(t, "Steel rod")
	assert.Equal(t, 15, g.StockNum)
	assert.True(t, g.StockUnitCost.Equal(money("6.00")), "cost = %s", g.StockUnitCost)
	assert.True(t, g.StockTotalValue.Equal(money("90.00")), "value = %s", g.StockTotalValue)

	st := f.openStatement(t, sup.ID)
	assert.True(t, st.Amount.Equal(money("90.00")), "statement amount = %s", st.Amount)
	assertChain(t, f.flows, g.ID, 15)
}

func TestCreate_DeletedSupplierFails(t *testing.T) {
	f := newFixture()
	sup := f.suppliers.add("Gone Trading")
	require.NoError(t, f.suppliers.SetStatus(context.Background(), sup.ID, entity.StatusDeleted))

	_, err := f.svc.Create(context.Background(), CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(1), Num: 1, UnitPrice: money("1.00"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, f.repo.rows)
}

func TestCreate_DateInsideConfirmedPeriodFails(t *testing.T) {
	f := newFixture()
	sup := f.suppliers.add("Acme Metals")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(10), Num: 10, UnitPrice: money("5.00"),
	})
	require.NoError(t, err)
	require.NoError(t, f.mgr.Confirm(ctx, *p.StatementID, date(15)))

	_, err = f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(12), Num: 5, UnitPrice: money("5.00"),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDateOutOfPeriod, appErr.Code)

	// the open statement's start day itself is still out of period
	_, err = f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(16), Num: 5, UnitPrice: money("5.00"),
	})
	require.Error(t, err)
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDateOutOfPeriod, appErr.Code)

	// the first day after the start is fine
	_, err = f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(17), Num: 5, UnitPrice: money("5.00"),
	})
	require.NoError(t, err)
}

func TestUpdate_ReplaysCostAndAdjustsStatement(t *testing.T) {
	f := newFixture()
	sup := f.suppliers.add("Acme Metals")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Copper strip", Spec: 1,
		PurchaseDate: date(1), Num: 10, UnitPrice: money("5.00"),
	})
	require.NoError(t, err)

	num := 8
	price := money("6.00")
	updated, err := f.svc.Update(ctx, p.ID, UpdateInput{Num: &num, UnitPrice: &price})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(money("48.00")), "amount = %s", updated.Amount)

	g := f.goodsByName(t, "Copper strip")
	assert.Equal(t, 8, g.StockNum)
	assert.True(t, g.StockUnitCost.Equal(money("6.00")), "cost = %s", g.StockUnitCost)
	assert.True(t, g.StockTotalValue.Equal(money("48.00")), "value = %s", g.StockTotalValue)

	st := f.openStatement(t, sup.ID)
	assert.True(t, st.Amount.Equal(money("48.00")), "statement amount = %s", st.Amount)

	assertChain(t, f.flows, g.ID, 8)
	assert.Len(t, f.flows.sorted(g.ID), 1)
}

func TestUpdate_ConfirmedStatementBlocksEdit(t *testing.T) {
	f := newFixture()
	sup := f.suppliers.add("Acme Metals")
	ctx := context.Background()

	p, err := f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(10), Num: 10, UnitPrice: money("5.00"),
	})
	require.NoError(t, err)
	require.NoError(t, f.mgr.Confirm(ctx, *p.StatementID, date(15)))

	num := 5
	_, err = f.svc.Update(ctx, p.ID, UpdateInput{Num: &num})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeStatementState, appErr.Code)
}

func TestDelete_ReversesStockAndStatement(t *testing.T) {
	f := newFixture()
	sup := f.suppliers.add("Acme Metals")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(1), Num: 10, UnitPrice: money("5.00"),
	})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(2), Num: 5, UnitPrice: money("8.00"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, second.ID))

	_, err = f.svc.GetByID(ctx, second.ID)
	assert.True(t, apperror.IsNotFound(err))

	g := f.goodsByName(t, "Steel rod")
	assert.Equal(t, 10, g.StockNum)
	assert.True(t, g.StockUnitCost.Equal(money("5.00")), "cost = %s", g.StockUnitCost)
	assert.True(t, g.StockTotalValue.Equal(money("50.00")), "value = %s", g.StockTotalValue)

	st := f.openStatement(t, sup.ID)
	assert.True(t, st.Amount.Equal(money("50.00")), "statement amount = %s", st.Amount)

	assertChain(t, f.flows, g.ID, 10)
	assert.Len(t, f.flows.sorted(g.ID), 1)
}

func TestCreate_RevivesDeletedGoodsRow(t *testing.T) {
	f := newFixture()
	sup := f.suppliers.add("Acme Metals")
	ctx := context.Background()

	first, err := f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(1), Num: 10, UnitPrice: money("5.00"),
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, first.ID))
	g := f.goodsByName(t, "Steel rod")
	require.NoError(t, f.goodsRepo.SetStatus(ctx, g.ID, entity.StatusDeleted))

	_, err = f.svc.Create(ctx, CreateInput{
		SupplierID: sup.ID, GoodsName: "Steel rod", Spec: 1,
		PurchaseDate: date(5), Num: 4, UnitPrice: money("6.00"),
	})
	require.NoError(t, err)

	revived := f.goodsByName(t, "Steel rod")
	assert.Equal(t, g.ID, revived.ID, "same row revived, not duplicated")
	assert.False(t, revived.IsDeleted())
	assert.Equal(t, 4, revived.StockNum)
}
