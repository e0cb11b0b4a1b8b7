// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/catalogs/purchaser"
	"tradeledger/internal/domain/catalogs/supplier"
	"tradeledger/internal/domain/expense"
	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/domain/reports"
	"tradeledger/internal/domain/statement"
	"tradeledger/internal/domain/trade/purchase"
	"tradeledger/internal/domain/trade/sale"
	"tradeledger/internal/infrastructure/http/v1/handlers"
	"tradeledger/internal/infrastructure/http/v1/middleware"
	"tradeledger/internal/infrastructure/storage/postgres"
	"tradeledger/pkg/logger"
)

// RouterConfig holds the fully wired services the API serves. All
// dependencies are injected explicitly at startup.
type RouterConfig struct {
	// Pool for health checks
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Idempotency enables replay protection for mutating requests when set
	Idempotency *postgres.IdempotencyStore

	Suppliers  *supplier.Service
	Purchasers *purchaser.Service
	Goods      *goods.Service
	Purchases  *purchase.Service
	Sales      *sale.Service
	Losses     *inventory.LossService
	Expenses   *expense.Service
	Statements *statement.Manager
	Bills      *statement.BillService
	Reports    *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	api := router.Group("/api/v1")
	if cfg.Idempotency != nil {
		api.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()

	registerCatalogRoutes(api, base, cfg)
	registerTradeRoutes(api, base, cfg)
	registerBillRoutes(api, base, cfg)
	registerReportRoutes(api, base, cfg)

	return router
}

// registerCatalogRoutes registers the supplier, purchaser and goods
// catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	supplierHandler := handlers.NewSupplierHandler(base, cfg.Suppliers)
	supplierGroup := rg.Group("/suppliers")
	supplierGroup.GET("/suggest", supplierHandler.Suggest)
	RegisterCatalogRoutes(supplierGroup, supplierHandler)

	purchaserHandler := handlers.NewPurchaserHandler(base, cfg.Purchasers)
	purchaserGroup := rg.Group("/purchasers")
	purchaserGroup.GET("/suggest", purchaserHandler.Suggest)
	RegisterCatalogRoutes(purchaserGroup, purchaserHandler)

	goodsHandler := handlers.NewGoodsHandler(base, cfg.Goods)
	goodsGroup := rg.Group("/goods")
	goodsGroup.GET("/suggest", goodsHandler.Suggest)
	RegisterCatalogRoutes(goodsGroup, goodsHandler)
}

// registerTradeRoutes registers purchase, sale, loss and expense endpoints.
func registerTradeRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	RegisterTradeRoutes(rg.Group("/purchases"), handlers.NewPurchaseHandler(base, cfg.Purchases))
	RegisterTradeRoutes(rg.Group("/sales"), handlers.NewSaleHandler(base, cfg.Sales))

	lossHandler := handlers.NewLossHandler(base, cfg.Losses)
	losses := rg.Group("/losses")
	{
		losses.GET("", lossHandler.List)
		losses.POST("", lossHandler.Create)
		losses.GET("/:id", lossHandler.Get)
		losses.DELETE("/:id", lossHandler.Delete)
	}

	expenseHandler := handlers.NewExpenseHandler(base, cfg.Expenses)
	expenses := rg.Group("/expenses")
	{
		expenses.GET("", expenseHandler.List)
		expenses.POST("", expenseHandler.Create)
		expenses.GET("/:id", expenseHandler.Get)
		expenses.PUT("/:id", expenseHandler.Update)
		expenses.DELETE("/:id", expenseHandler.Delete)
	}
}

// registerBillRoutes registers the statement / bill endpoints.
func registerBillRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	billHandler := handlers.NewBillHandler(base, cfg.Statements, cfg.Bills)

	bills := rg.Group("/bills")
	{
		bills.GET("", billHandler.List)
		bills.GET("/:id", billHandler.Detail)
		bills.DELETE("/:id", billHandler.Delete)
		bills.POST("/:id/confirm", billHandler.Confirm)
		bills.POST("/:id/unconfirm", billHandler.Unconfirm)
		bills.POST("/:id/invoice-status", billHandler.SetInvoiceStatus)
		bills.POST("/:id/payments", billHandler.AddPayment)
		bills.GET("/:id/payments", billHandler.ListPayments)
	}

	// Payment rows have their own identity; deletion is addressed directly.
	rg.DELETE("/payments/:id", billHandler.DeletePayment)
}

// registerReportRoutes registers the dashboard and analytics endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	reportsHandler := handlers.NewReportsHandler(base, cfg.Reports)

	reportsGroup := rg.Group("/reports")
	{
		reportsGroup.GET("/dashboard", reportsHandler.Dashboard)
		reportsGroup.GET("/profit-by-purchaser", reportsHandler.ProfitByPurchaser)
		reportsGroup.GET("/profit-by-goods", reportsHandler.ProfitByGoods)
		reportsGroup.GET("/trend", reportsHandler.Trend)
		reportsGroup.GET("/inventory", reportsHandler.InventoryList)
		reportsGroup.GET("/inventory/:id", reportsHandler.InventoryDetail)
		reportsGroup.GET("/low-stock", reportsHandler.LowStock)
	}
}
