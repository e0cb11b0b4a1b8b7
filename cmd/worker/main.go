// Package main is the entry point for the tradeledger maintenance worker.
// It runs periodic housekeeping that the API server should not block on:
// idempotency key expiry, audit log retention and a nightly cost reconcile.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tradeledger/internal/domain/costing"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/infrastructure/storage/postgres"
	"tradeledger/internal/infrastructure/storage/postgres/catalog_repo"
	"tradeledger/internal/infrastructure/storage/postgres/statement_repo"
	"tradeledger/internal/infrastructure/storage/postgres/trade_repo"
	"tradeledger/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting tradeledger worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	goodsRepo := catalog_repo.NewGoodsRepo(txManager)
	purchaseRepo := trade_repo.NewPurchaseRepo(txManager)
	saleRepo := trade_repo.NewSaleRepo(txManager)
	eventSource := trade_repo.NewEventSource(txManager)
	statementRepo := statement_repo.NewStatementRepo(txManager)
	paymentRepo := statement_repo.NewPaymentRepo(txManager)

	statements := statement.NewManager(statementRepo, purchaseRepo, saleRepo, paymentRepo, txManager)
	engine := costing.NewEngine(goodsRepo, eventSource, statements, txManager)

	idempotencyTTL := getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour)
	idempotency := postgres.NewIdempotencyStore(pool, txManager, idempotencyTTL)

	worker := &Worker{
		pool:           pool,
		idempotency:    idempotency,
		engine:         engine,
		auditRetention: getEnvDuration("AUDIT_RETENTION", 90*24*time.Hour),
		log:            log.WithComponent("worker"),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic maintenance jobs.
type Worker struct {
	pool           *postgres.Pool
	idempotency    *postgres.IdempotencyStore
	engine         *costing.Engine
	auditRetention time.Duration
	log            *logger.Logger
}

// Run blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	reconcileTicker := time.NewTicker(24 * time.Hour)
	defer reconcileTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
			w.cleanupAuditLog(ctx)
		case <-reconcileTicker.C:
			w.reconcileCosts(ctx)
		}
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	deleted, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", deleted)
	}
}

func (w *Worker) cleanupAuditLog(ctx context.Context) {
	result, err := w.pool.Pool.Exec(ctx,
		`DELETE FROM audit_log WHERE created_at < NOW() - make_interval(hours => $1)`,
		int(w.auditRetention.Hours()),
	)
	if err != nil {
		w.log.Errorw("audit log cleanup failed", "error", err)
		return
	}
	if result.RowsAffected() > 0 {
		w.log.Infow("cleaned up audit log rows", "count", result.RowsAffected())
	}
}

// reconcileCosts replays the cost history of every goods item. Incremental
// updates keep the numbers right in normal operation; the nightly replay
// catches anything a crash mid-request may have left behind.
func (w *Worker) reconcileCosts(ctx context.Context) {
	start := time.Now()
	if err := w.engine.ReconcileAll(ctx); err != nil {
		w.log.Errorw("cost reconcile failed", "error", err)
		return
	}
	w.log.Infow("cost reconcile finished", "duration", time.Since(start))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
