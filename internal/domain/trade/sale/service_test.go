package sale

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
	"tradeledger/internal/domain/catalogs/purchaser"
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

type memPurchaserRepo struct {
	rows map[id.ID]*purchaser.Purchaser
}

func newMemPurchaserRepo() *memPurchaserRepo {
	return &memPurchaserRepo{rows: make(map[id.ID]*purchaser.Purchaser)}
}

func (r *memPurchaserRepo) add(name string) *purchaser.Purchaser {
	p := purchaser.NewPurchaser(name)
	r.rows[p.ID] = p
	return p
}

func (r *memPurchaserRepo) Create(ctx context.Context, p *purchaser.Purchaser) error {
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memPurchaserRepo) GetByID(ctx context.Context, purchaserID id.ID) (*purchaser.Purchaser, error) {
	p, ok := r.rows[purchaserID]
	if !ok {
		return nil, apperror.NewNotFound("purchaser", purchaserID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *memPurchaserRepo) FindByName(ctx context.Context, name string) (*purchaser.Purchaser, error) {
	for _, p := range r.rows {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("purchaser", name)
}

func (r *memPurchaserRepo) Update(ctx context.Context, p *purchaser.Purchaser) error {
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memPurchaserRepo) SetStatus(ctx context.Context, purchaserID id.ID, status entity.Status) error {
	p, ok := r.rows[purchaserID]
	if !ok {
		return apperror.NewNotFound("purchaser", purchaserID.String())
	}
	p.Status = status
	return nil
}

func (r *memPurchaserRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*purchaser.Purchaser], error) {
	return domain.ListResult[*purchaser.Purchaser]{}, nil
}

func (r *memPurchaserRepo) Exists(ctx context.Context, purchaserID id.ID) (bool, error) {
	_, ok := r.rows[purchaserID]
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

type memSaleRepo struct {
	rows  map[id.ID]*Sale
	goods *memGoodsRepo
}

func newMemSaleRepo(goodsRepo *memGoodsRepo) *memSaleRepo {
	return &memSaleRepo{rows: make(map[id.ID]*Sale), goods: goodsRepo}
}

func (r *memSaleRepo) Create(ctx context.Context, sl *Sale) error {
	cp := *sl
	r.rows[sl.ID] = &cp
	return nil
}

func (r *memSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	sl, ok := r.rows[saleID]
	if !ok || sl.IsDeleted() {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	cp := *sl
	return &cp, nil
}

func (r *memSaleRepo) Update(ctx context.Context, sl *Sale) error {
	cp := *sl
	r.rows[sl.ID] = &cp
	return nil
}

func (r *memSaleRepo) SetStatus(ctx context.Context, saleID id.ID, status entity.Status) error {
	sl, ok := r.rows[saleID]
	if !ok {
		return apperror.NewNotFound("sale", saleID.String())
	}
	sl.Status = status
	return nil
}

func (r *memSaleRepo) List(ctx context.Context, filter ListFilter) (ListResult, error) {
	return ListResult{}, nil
}

func (r *memSaleRepo) LastRecord(ctx context.Context, purchaserID, goodsID id.ID) (*Sale, error) {
	var best *Sale
	for _, sl := range r.rows {
		if sl.IsDeleted() || sl.PurchaserID != purchaserID || sl.GoodsID != goodsID {
			continue
		}
		if best == nil || sl.SaleDate.After(best.SaleDate) {
			best = sl
		}
	}
	if best == nil {
		return nil, apperror.NewNotFound("sale", goodsID.String())
	}
	cp := *best
	return &cp, nil
}

func (r *memSaleRepo) spec(goodsID id.ID) int {
	if g, ok := r.goods.rows[goodsID]; ok {
		return g.Spec
	}
	return 1
}

func (r *memSaleRepo) SumForStatement(ctx context.Context, statementID id.ID, from, to *time.Time) (statement.Totals, error) {
	sum := statement.ZeroTotals()
	for _, sl := range r.rows {
		if sl.IsDeleted() || sl.StatementID == nil || *sl.StatementID != statementID {
			continue
		}
		if from != nil && sl.SaleDate.Before(types.DayStart(*from)) {
			continue
		}
		if to != nil && sl.SaleDate.After(types.DayStart(*to)) {
			continue
		}
		cost := types.MulInt(sl.CostSnapshot, int64(sl.Num)*int64(r.spec(sl.GoodsID)))
		sum = sum.Add(statement.Totals{Amount: sl.Amount, Cost: cost, Profit: sl.TotalProfit})
	}
	sum.Amount = types.Round2(sum.Amount)
	sum.Cost = types.Round2(sum.Cost)
	sum.Profit = types.Round2(sum.Profit)
	return sum, nil
}

func (r *memSaleRepo) ReassignAfter(ctx context.Context, fromStatementID, toStatementID id.ID, after time.Time) error {
	cutoff := types.DayStart(after)
	for _, sl := range r.rows {
		if sl.StatementID != nil && *sl.StatementID == fromStatementID && sl.SaleDate.After(cutoff) {
			sid := toStatementID
			sl.StatementID = &sid
		}
	}
	return nil
}

func (r *memSaleRepo) ReassignAll(ctx context.Context, fromStatementID, toStatementID id.ID) error {
	for _, sl := range r.rows {
		if sl.StatementID != nil && *sl.StatementID == fromStatementID {
			sid := toStatementID
			sl.StatementID = &sid
		}
	}
	return nil
}

// memEventSource replays seeded purchase history plus the non-deleted sale
// rows, and writes replayed snapshots back into the sale repo.
type memEventSource struct {
	base  map[id.ID][]costing.ReplayEvent
	sales *memSaleRepo
}

func (s *memEventSource) seedPurchase(goodsID id.ID, date time.Time, num int, unitPrice string) {
	if s.base == nil {
		s.base = make(map[id.ID][]costing.ReplayEvent)
	}
	s.base[goodsID] = append(s.base[goodsID], costing.ReplayEvent{
		ID:        id.New(),
		Type:      costing.EventPurchase,
		Date:      types.DayStart(date),
		Num:       num,
		UnitPrice: types.MustMoney(unitPrice),
	})
}

func (s *memEventSource) ListForGoods(ctx context.Context, goodsID id.ID) ([]costing.ReplayEvent, error) {
	out := append([]costing.ReplayEvent(nil), s.base[goodsID]...)
	for _, sl := range s.sales.rows {
		if sl.IsDeleted() || sl.GoodsID != goodsID {
			continue
		}
		out = append(out, costing.ReplayEvent{
			ID:          sl.ID,
			Type:        costing.EventSale,
			Date:        sl.SaleDate,
			Num:         sl.Num,
			UnitPrice:   sl.UnitPrice,
			StatementID: sl.StatementID,
		})
	}
	return out, nil
}

func (s *memEventSource) UpdateSaleSnapshot(ctx context.Context, saleID id.ID, cost, unitProfit, totalProfit types.Money) error {
	sl, ok := s.sales.rows[saleID]
	if !ok {
		return apperror.NewNotFound("sale", saleID.String())
	}
	sl.CostSnapshot = cost
	sl.UnitProfit = unitProfit
	sl.TotalProfit = totalProfit
	return nil
}

func (s *memEventSource) UpdateLossSnapshot(ctx context.Context, lossID id.ID, cost, totalValue types.Money) error {
	return nil
}

type aliasKey struct {
	goodsID     id.ID
	purchaserID id.ID
}

type memAliasRepo struct {
	names map[aliasKey]string
}

func newMemAliasRepo() *memAliasRepo {
	return &memAliasRepo{names: make(map[aliasKey]string)}
}

func (r *memAliasRepo) Upsert(ctx context.Context, goodsID, purchaserID id.ID, name string) error {
	r.names[aliasKey{goodsID, purchaserID}] = name
	return nil
}

func (r *memAliasRepo) Get(ctx context.Context, goodsID, purchaserID id.ID) (string, error) {
	return r.names[aliasKey{goodsID, purchaserID}], nil
}

func (r *memAliasRepo) GetForPurchaser(ctx context.Context, purchaserID id.ID) (map[id.ID]string, error) {
	out := make(map[id.ID]string)
	for k, v := range r.names {
		if k.purchaserID == purchaserID {
			out[k.goodsID] = v
		}
	}
	return out, nil
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

// stubEventStore backs the unused purchase side of the statement manager.
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
	purchasers *memPurchaserRepo
	goodsRepo  *memGoodsRepo
	repo       *memSaleRepo
	aliases    *memAliasRepo
	flows      *memFlowRepo
	statements *memStatementRepo
	events     *memEventSource
	mgr        *statement.Manager
	svc        *Service
}

func newFixture() *fixture {
	purchasers := newMemPurchaserRepo()
	goodsRepo := newMemGoodsRepo()
	repo := newMemSaleRepo(goodsRepo)
	aliases := newMemAliasRepo()
	flows := &memFlowRepo{}
	stmtRepo := newMemStatementRepo()
	events := &memEventSource{sales: repo}

	txm := fakeTxManager{}
	mgr := statement.NewManager(stmtRepo, stubEventStore{}, repo, newMemPaymentRepo(), txm)
	engine := costing.NewEngine(goodsRepo, events, mgr, txm)
	ledger := inventory.NewFlowLedger(flows, txm)
	goodsSvc := goods.NewService(goodsRepo, txm)

	return &fixture{
		purchasers: purchasers,
		goodsRepo:  goodsRepo,
		repo:       repo,
		aliases:    aliases,
		flows:      flows,
		statements: stmtRepo,
		events:     events,
		mgr:        mgr,
		svc:        NewService(repo, purchasers, goodsSvc, goodsRepo, aliases, mgr, ledger, engine, txm),
	}
}

// stockedGoods seeds a goods row with purchased stock and the matching
// replay history, so edits and deletes can reconstruct it.
func (f *fixture) stockedGoods(name string, spec, num int, unitCost string) *goods.Goods {
	g := goods.NewGoods(name, spec)
	g.StockNum = num
	g.StockUnitCost = types.MustMoney(unitCost)
	g.StockTotalValue = types.Round2(types.MulInt(g.StockUnitCost, int64(num)*int64(spec)))
	f.goodsRepo.rows[g.ID] = g
	f.events.seedPurchase(g.ID, date(1), num, unitCost)
	return g
}

func (f *fixture) openStatement(t *testing.T, purchaserID id.ID) *statement.Statement {
	t.Helper()
	st, err := f.statements.GetOpen(context.Background(), statement.SideSale, purchaserID)
	require.NoError(t, err)
	return st
}

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
	}
}

func date(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) types.Money {
	return types.MustMoney(s)
}

// --- tests ---

func TestCreate_FreezesCostSnapshot(t *testing.T) {
	f := newFixture()
	pur := f.purchasers.add("Northside Hardware")
	g := f.stockedGoods("Galvanized wire", 1, 15, "4.50")
	ctx := context.Background()

	sl, err := f.svc.Create(ctx, CreateInput{
		PurchaserID: pur.ID,
		GoodsID:     g.ID,
		SaleDate:    date(5),
		Num:         5,
		UnitPrice:   money("10.00"),
	})
	require.NoError(t, err)

	assert.True(t, sl.Amount.Equal(money("50.00")), "amount = %s", sl.Amount)
	assert.True(t, sl.CostSnapshot.Equal(money("4.50")), "snapshot = %s", sl.CostSnapshot)
	assert.True(t, sl.UnitProfit.Equal(money("5.50")), "unit profit = %s", sl.UnitProfit)
	assert.True(t, sl.TotalProfit.Equal(money("27.50")), "total profit = %s", sl.TotalProfit)
	require.NotNil(t, sl.StatementID)

	assert.Equal(t, 10, g.StockNum)
	assert.True(t, g.StockTotalValue.Equal(money("45.00")), "value = %s", g.StockTotalValue)

	st := f.openStatement(t, pur.ID)
	assert.True(t, st.Amount.Equal(money("50.00")), "statement amount = %s", st.Amount)
	assert.True(t, st.TotalCost.Equal(money("22.50")), "statement cost = %s", st.TotalCost)
	assert.True(t, st.TotalProfit.Equal(money("27.50")), "statement profit = %s", st.TotalProfit)

	assertChain(t, f.flows, g.ID, 10)
	require.Len(t, f.flows.sorted(g.ID), 1)
	assert.Equal(t, -5, f.flows.sorted(g.ID)[0].ChangeNum)
}

func TestCreate_InsufficientStockFails(t *testing.T) {
	f := newFixture()
	pur := f.purchasers.add("Northside Hardware")
	g := f.stockedGoods("Galvanized wire", 1, 15, "4.50")

	_, err := f.svc.Create(context.Background(), CreateInput{
		PurchaserID: pur.ID,
		GoodsID:     g.ID,
		SaleDate:    date(5),
		Num:         20,
		UnitPrice:   money("10.00"),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	assert.Empty(t, f.repo.rows)
	assert.Equal(t, 15, g.StockNum)
	assert.Empty(t, f.flows.rows)
}

func TestCreate_DeletedPurchaserFails(t *testing.T) {
	f := newFixture()
	pur := f.purchasers.add("Gone Hardware")
	g := f.stockedGoods("Galvanized wire", 1, 15, "4.50")
	require.NoError(t, f.purchasers.SetStatus(context.Background(), pur.ID, entity.StatusDeleted))

	_, err := f.svc.Create(context.Background(), CreateInput{
		PurchaserID: pur.ID, GoodsID: g.ID, SaleDate: date(5), Num: 1, UnitPrice: money("10.00"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_DateOnOpenStatementStartFails(t *testing.T) {
	f := newFixture()
	pur := f.purchasers.add("Northside Hardware")
	g := f.stockedGoods("Galvanized wire", 1, 15, "4.50")
	ctx := context.Background()

	sl, err := f.svc.Create(ctx, CreateInput{
		PurchaserID: pur.ID, GoodsID: g.ID, SaleDate: date(10), Num: 2, UnitPrice: money("10.00"),
	})
	require.NoError(t, err)
	require.NoError(t, f.mgr.Confirm(ctx, *sl.StatementID, date(15)))

	// the spawned open statement starts day 16; dates on or before the
	// start are rejected
	_, err = f.svc.Create(ctx, CreateInput{
		PurchaserID: pur.ID, GoodsID: g.ID, SaleDate: date(16), Num: 1, UnitPrice: money("10.00"),
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDateOutOfPeriod, appErr.Code)

	_, err = f.svc.Create(ctx, CreateInput{
		PurchaserID: pur.ID, GoodsID: g.ID, SaleDate: date(17), Num: 1, UnitPrice: money("10.00"),
	})
	require.NoError(t, err)
}

func TestCreate_RemembersCustomerGoodsName(t *testing.T) {
	f := newFixture()
	pur := f.purchasers.add("Northside Hardware")
	g := f.stockedGoods("Galvanized wire", 1, 15, "4.50")
	alias := "wire 8mm"

	_, err := f.svc.Create(context.Background(), CreateInput{
		PurchaserID:       pur.ID,
		GoodsID:           g.ID,
		SaleDate:          date(5),
		Num:               2,
		UnitPrice:         money("10.00"),
		CustomerGoodsName: &alias,
	})
	require.NoError(t, err)

	got, err := f.aliases.Get(context.Background(), g.ID, pur.ID)
	require.NoError(t, err)
	assert.Equal(t, "wire 8mm", got)
}

func TestUpdate_ReplayRecomputesSnapshotAndStatement(t *testing.T) {
	f := newFixture()
	pur := f.purchasers.add("Northside Hardware")
	g := f.stockedGoods("Galvanized wire", 1, 15, "4.50")
	ctx := context.Background()

	sl, err := f.svc.Create(ctx, CreateInput{
		PurchaserID: pur.ID, GoodsID: g.ID, SaleDate: date(5), Num: 5, UnitPrice: money("10.00"),
	})
	require.NoError(t, err)

	num := 8
	updated, err := f.svc.Update(ctx, sl.ID, UpdateInput{Num: &num})
	require.NoError(t, err)

	assert.True(t, updated.Amount.Equal(money("80.00")), "amount = %s", updated.Amount)
	assert.True(t, updated.CostSnapshot.Equal(money("4.50")), "snapshot = %s", updated.CostSnapshot)
	assert.True(t, updated.TotalProfit.Equal(money("44.00")), "total profit = %s", updated.TotalProfit)

	assert.Equal(t, 7, g.StockNum)
	assert.True(t, g.StockTotalValue.Equal(money("31.50")), "value = %s", g.StockTotalValue)

	st := f.openStatement(t, pur.ID)
	assert.True(t, st.Amount.Equal(money("80.00")), "statement amount = %s", st.Amount)
	assert.True(t, st.TotalCost.Equal(money("36.00")), "statement cost = %s", st.TotalCost)
	assert.True(t, st.TotalProfit.Equal(money("44.00")), "statement profit = %s", st.TotalProfit)

	assertChain(t, f.flows, g.ID, 7)
	require.Len(t, f.flows.sorted(g.ID), 1)
}

func TestUpdate_IncreaseBeyondStockFails(t *testing.T) {
	f := newFixture()
	pur := f.purchasers.add("Northside Hardware")
	g := f.stockedGoods("Galvanized wire", 1, 15, "4.50")
	ctx := context.Background()

	sl, err := f.svc.Create(ctx, CreateInput{
		PurchaserID: pur.ID, GoodsID: g.ID, SaleDate: date(5), Num: 10, UnitPrice: money("10.00"),
	})
	require.NoError(t, err)

	num := 30
	_, err = f.svc.Update(ctx, sl.ID, UpdateInput{Num: &num})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	unchanged, err := f.svc.GetByID(ctx, sl.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, unchanged.Num)
}

func TestDelete_RestoresStockAndZeroesStatement(t *testing.T) {
	f := newFixture()
	pur := f.purchasers.add("Northside Hardware")
	g := f.stockedGoods("Galvanized wire", 1, 15, "4.50")
	ctx := context.Background()

	sl, err := f.svc.Create(ctx, CreateInput{
		PurchaserID: pur.ID, GoodsID: g.ID, SaleDate: date(5), Num: 5, UnitPrice: money("10.00"),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, sl.ID))

	_, err = f.svc.GetByID(ctx, sl.ID)
	assert.True(t, apperror.IsNotFound(err))

	assert.Equal(t, 15, g.StockNum)
	assert.True(t, g.StockUnitCost.Equal(money("4.50")), "cost = %s", g.StockUnitCost)
	assert.True(t, g.StockTotalValue.Equal(money("67.50")), "value = %s", g.StockTotalValue)

	st := f.openStatement(t, pur.ID)
	assert.True(t, st.Amount.IsZero(), "statement amount = %s", st.Amount)
	assert.True(t, st.TotalProfit.IsZero(), "statement profit = %s", st.TotalProfit)

	assert.Empty(t, f.flows.rows)
}
