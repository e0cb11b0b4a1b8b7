// Package main is the entry point for the tradeledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tradeledger/internal/core/id"
	"tradeledger/internal/domain"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/catalogs/purchaser"
	"tradeledger/internal/domain/catalogs/supplier"
	"tradeledger/internal/domain/costing"
	"tradeledger/internal/domain/expense"
	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/domain/reports"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/domain/trade/purchase"
	"tradeledger/internal/domain/trade/sale"
	v1 "tradeledger/internal/infrastructure/http/v1"
	"tradeledger/internal/infrastructure/storage/postgres"
	"tradeledger/internal/infrastructure/storage/postgres/catalog_repo"
	"tradeledger/internal/infrastructure/storage/postgres/expense_repo"
	"tradeledger/internal/infrastructure/storage/postgres/register_repo"
	"tradeledger/internal/infrastructure/storage/postgres/report_repo"
	"tradeledger/internal/infrastructure/storage/postgres/statement_repo"
	"tradeledger/internal/infrastructure/storage/postgres/trade_repo"
	"tradeledger/pkg/logger"
)

func main() {
	_ = godotenv.Load() // .env is optional, real env wins

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting tradeledger server")

	// --- Database connection ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	purchaserRepo := catalog_repo.NewPurchaserRepo(txManager)
	goodsRepo := catalog_repo.NewGoodsRepo(txManager)
	goodsNameRepo := catalog_repo.NewGoodsNameRepo(txManager)
	purchaseRepo := trade_repo.NewPurchaseRepo(txManager)
	saleRepo := trade_repo.NewSaleRepo(txManager)
	lossRepo := trade_repo.NewLossRepo(txManager)
	eventSource := trade_repo.NewEventSource(txManager)
	flowRepo := register_repo.NewFlowRepo(txManager)
	statementRepo := statement_repo.NewStatementRepo(txManager)
	paymentRepo := statement_repo.NewPaymentRepo(txManager)
	billStore := statement_repo.NewBillStore(txManager)
	expenseRepo := expense_repo.NewExpenseRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	// --- Domain services ---
	statements := statement.NewManager(statementRepo, purchaseRepo, saleRepo, paymentRepo, txManager)
	engine := costing.NewEngine(goodsRepo, eventSource, statements, txManager)
	ledger := inventory.NewFlowLedger(flowRepo, txManager)

	suppliers := supplier.NewService(supplierRepo, txManager)
	purchasers := purchaser.NewService(purchaserRepo, txManager)
	goodsService := goods.NewService(goodsRepo, txManager)

	purchases := purchase.NewService(purchaseRepo, supplierRepo, goodsService, goodsRepo, statements, ledger, engine, txManager)
	sales := sale.NewService(saleRepo, purchaserRepo, goodsService, goodsRepo, goodsNameRepo, statements, ledger, engine, txManager)
	losses := inventory.NewLossService(lossRepo, goodsRepo, ledger, engine, txManager)
	expenses := expense.NewService(expenseRepo, txManager)
	bills := statement.NewBillService(billStore, statementRepo, paymentRepo)
	reportService := reports.NewService(reportRepo, expenseRepo, goodsRepo, ledger)

	// --- Audit trail ---
	audit, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	registerAuditHooks(audit, suppliers.Hooks(), "supplier", func(s *supplier.Supplier) id.ID { return s.ID })
	registerAuditHooks(audit, purchasers.Hooks(), "purchaser", func(p *purchaser.Purchaser) id.ID { return p.ID })
	registerAuditHooks(audit, goodsService.Hooks(), "goods", func(g *goods.Goods) id.ID { return g.ID })

	// --- Idempotency ---
	var idempotency *postgres.IdempotencyStore
	if getEnv("IDEMPOTENCY_ENABLED", "false") == "true" {
		ttl := getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour)
		idempotency = postgres.NewIdempotencyStore(pool, txManager, ttl)
		log.Infow("idempotency enabled", "ttl", ttl)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:        pool,
		Logger:      log,
		Idempotency: idempotency,
		Suppliers:   suppliers,
		Purchasers:  purchasers,
		Goods:       goodsService,
		Purchases:   purchases,
		Sales:       sales,
		Losses:      losses,
		Expenses:    expenses,
		Statements:  statements,
		Bills:       bills,
		Reports:     reportService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// registerAuditHooks writes an audit_log row after every catalog mutation.
// After-hooks run once the mutation has committed; a failed audit write is
// logged by the service and does not fail the request.
func registerAuditHooks[T any](audit *postgres.AuditService, hooks *domain.HookRegistry[T], entityType string, idOf func(T) id.ID) {
	hooks.On(domain.AfterCreate, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionCreate, nil)
	})
	hooks.On(domain.AfterUpdate, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionUpdate, nil)
	})
	hooks.On(domain.AfterDelete, func(ctx context.Context, e T) error {
		return audit.LogChange(ctx, entityType, idOf(e), postgres.AuditActionDelete, nil)
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
