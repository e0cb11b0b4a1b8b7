// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/costing"
	"tradeledger/internal/domain/expense"
	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/domain/trade/purchase"
	"tradeledger/internal/domain/trade/sale"
	"tradeledger/internal/infrastructure/storage/postgres"
	"tradeledger/internal/infrastructure/storage/postgres/catalog_repo"
	"tradeledger/internal/infrastructure/storage/postgres/expense_repo"
	"tradeledger/internal/infrastructure/storage/postgres/register_repo"
	"tradeledger/internal/infrastructure/storage/postgres/statement_repo"
	"tradeledger/internal/infrastructure/storage/postgres/trade_repo"
	"tradeledger/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	var count int
	if err := pool.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM cat_suppliers`).Scan(&count); err != nil {
		log.Fatalw("failed to check existing data", "error", err)
	}
	if count > 0 {
		log.Infow("database already contains suppliers, nothing to do", "count", count)
		return
	}

	supplierIDs, purchaserIDs, err := seedCounterparties(ctx, txManager)
	if err != nil {
		log.Fatalw("failed to seed counterparties", "error", err)
	}
	log.Infow("counterparties seeded", "suppliers", len(supplierIDs), "purchasers", len(purchaserIDs))

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedTradeHistory(ctx, txManager, supplierIDs, purchaserIDs, log); err != nil {
			log.Fatalw("failed to seed trade history", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

var counterpartyColumns = []string{
	"id", "status", "created_at", "updated_at",
	"name", "contact_person", "phone", "address",
	"bank_name", "bank_account", "tax_no", "remark",
}

// seedCounterparties bulk-loads the supplier and purchaser catalogs with the
// COPY protocol. Both tables share the counterparty column layout.
func seedCounterparties(ctx context.Context, txManager *postgres.TxManager) ([]id.ID, []id.ID, error) {
	inserter := postgres.NewBatchInserter(txManager)

	type counterpartySeed struct {
		name    string
		contact string
		phone   string
	}

	suppliers := []counterpartySeed{
		{"Jinhua Steel Trading Co.", "Chen Wei", "13800000001"},
		{"Hengda Metal Materials", "Liu Fang", "13800000002"},
		{"Xinyuan Wire & Rod Supply", "Zhang Lei", "13800000003"},
	}

	purchasers := []counterpartySeed{
		{"Dongfeng Hardware Factory", "Wang Jun", "13900000001"},
		{"Ruifeng Construction Materials", "Zhao Min", "13900000002"},
		{"Huaxin Fastener Works", "Sun Qiang", "13900000003"},
		{"Yongli Machinery Parts", "Li Na", "13900000004"},
	}

	now := time.Now().UTC()

	buildRows := func(seeds []counterpartySeed) ([][]any, []id.ID) {
		rows := make([][]any, 0, len(seeds))
		ids := make([]id.ID, 0, len(seeds))
		for _, s := range seeds {
			rowID := id.New()
			ids = append(ids, rowID)
			rows = append(rows, []any{
				rowID, "active", now, now,
				s.name, s.contact, s.phone, nil,
				nil, nil, nil, nil,
			})
		}
		return rows, ids
	}

	sRows, supplierIDs := buildRows(suppliers)
	pRows, purchaserIDs := buildRows(purchasers)

	err := txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := inserter.CopyFromSlice(ctx, "cat_suppliers", counterpartyColumns, sRows); err != nil {
			return fmt.Errorf("copy suppliers: %w", err)
		}
		if _, err := inserter.CopyFromSlice(ctx, "cat_purchasers", counterpartyColumns, pRows); err != nil {
			return fmt.Errorf("copy purchasers: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return supplierIDs, purchaserIDs, nil
}

// seedTradeHistory records a few months of purchases, sales, a stock loss and
// operating expenses through the domain services, so stock levels, cost
// snapshots, flow rows and statements all come out consistent.
func seedTradeHistory(ctx context.Context, txManager *postgres.TxManager, supplierIDs, purchaserIDs []id.ID, log *logger.Logger) error {
	goodsRepo := catalog_repo.NewGoodsRepo(txManager)
	goodsNameRepo := catalog_repo.NewGoodsNameRepo(txManager)
	purchaseRepo := trade_repo.NewPurchaseRepo(txManager)
	saleRepo := trade_repo.NewSaleRepo(txManager)
	lossRepo := trade_repo.NewLossRepo(txManager)
	eventSource := trade_repo.NewEventSource(txManager)
	flowRepo := register_repo.NewFlowRepo(txManager)
	statementRepo := statement_repo.NewStatementRepo(txManager)
	paymentRepo := statement_repo.NewPaymentRepo(txManager)

	statements := statement.NewManager(statementRepo, purchaseRepo, saleRepo, paymentRepo, txManager)
	engine := costing.NewEngine(goodsRepo, eventSource, statements, txManager)
	ledger := inventory.NewFlowLedger(flowRepo, txManager)
	goodsService := goods.NewService(goodsRepo, txManager)

	purchases := purchase.NewService(purchaseRepo, catalog_repo.NewSupplierRepo(txManager), goodsService, goodsRepo, statements, ledger, engine, txManager)
	sales := sale.NewService(saleRepo, catalog_repo.NewPurchaserRepo(txManager), goodsService, goodsRepo, goodsNameRepo, statements, ledger, engine, txManager)
	losses := inventory.NewLossService(lossRepo, goodsRepo, ledger, engine, txManager)
	expenses := expense.NewService(expense_repo.NewExpenseRepo(txManager), txManager)

	day := func(offset int) time.Time {
		return types.DayStart(time.Now().UTC().AddDate(0, 0, -offset))
	}

	type purchaseSeed struct {
		supplier  int
		goodsName string
		spec      int
		daysAgo   int
		num       int
		price     string
	}

	purchaseSeeds := []purchaseSeed{
		{0, "Galvanized wire", 8, 90, 200, "4.50"},
		{0, "Galvanized wire", 10, 88, 150, "4.20"},
		{1, "Steel rod", 12, 75, 300, "6.80"},
		{1, "Steel rod", 16, 74, 120, "7.10"},
		{2, "Copper strip", 5, 60, 80, "18.30"},
		{0, "Galvanized wire", 8, 45, 250, "4.65"},
		{2, "Copper strip", 5, 30, 60, "18.90"},
		{1, "Steel rod", 12, 14, 180, "6.95"},
	}

	goodsByKey := make(map[string]id.ID)
	for _, ps := range purchaseSeeds {
		p, err := purchases.Create(ctx, purchase.CreateInput{
			SupplierID:   supplierIDs[ps.supplier],
			GoodsName:    ps.goodsName,
			Spec:         ps.spec,
			PurchaseDate: day(ps.daysAgo),
			Num:          ps.num,
			UnitPrice:    types.MustMoney(ps.price),
		})
		if err != nil {
			return fmt.Errorf("seed purchase %s#%d: %w", ps.goodsName, ps.spec, err)
		}
		goodsByKey[fmt.Sprintf("%s#%d", ps.goodsName, ps.spec)] = p.GoodsID
	}
	log.Infow("purchases seeded", "count", len(purchaseSeeds))

	type saleSeed struct {
		purchaser int
		goodsKey  string
		daysAgo   int
		num       int
		price     string
		alias     string
	}

	saleSeeds := []saleSeed{
		{0, "Galvanized wire#8", 80, 120, "6.20", "wire 8mm"},
		{1, "Steel rod#12", 65, 150, "9.50", ""},
		{0, "Galvanized wire#10", 58, 90, "5.90", ""},
		{2, "Copper strip#5", 50, 40, "24.00", "Cu strip"},
		{3, "Steel rod#16", 40, 70, "10.20", ""},
		{1, "Steel rod#12", 25, 100, "9.80", ""},
		{0, "Galvanized wire#8", 10, 160, "6.40", "wire 8mm"},
	}

	for _, ss := range saleSeeds {
		in := sale.CreateInput{
			PurchaserID: purchaserIDs[ss.purchaser],
			GoodsID:     goodsByKey[ss.goodsKey],
			SaleDate:    day(ss.daysAgo),
			Num:         ss.num,
			UnitPrice:   types.MustMoney(ss.price),
		}
		if ss.alias != "" {
			alias := ss.alias
			in.CustomerGoodsName = &alias
		}
		if _, err := sales.Create(ctx, in); err != nil {
			return fmt.Errorf("seed sale %s: %w", ss.goodsKey, err)
		}
	}
	log.Infow("sales seeded", "count", len(saleSeeds))

	reason := "water damage in storage"
	if _, err := losses.Create(ctx, inventory.LossCreateInput{
		GoodsID:  goodsByKey["Galvanized wire#10"],
		LossDate: day(35),
		Num:      5,
		Reason:   &reason,
	}); err != nil {
		return fmt.Errorf("seed loss: %w", err)
	}

	expenseSeeds := []struct {
		description string
		expType     string
		amount      string
		daysAgo     int
	}{
		{"Warehouse rent, quarterly", "rent", "4500.00", 85},
		{"Delivery truck fuel", "transport", "620.50", 55},
		{"Packaging film and straps", "materials", "180.00", 40},
		{"Utility bill", "utilities", "340.75", 20},
	}

	for _, es := range expenseSeeds {
		if _, err := expenses.Create(ctx, expense.CreateInput{
			Description: es.description,
			Type:        es.expType,
			Amount:      types.MustMoney(es.amount),
			ExpenseDate: day(es.daysAgo),
		}); err != nil {
			return fmt.Errorf("seed expense %q: %w", es.description, err)
		}
	}
	log.Infow("expenses seeded", "count", len(expenseSeeds))

	log.Info("trade history seeded successfully")
	return nil
}
