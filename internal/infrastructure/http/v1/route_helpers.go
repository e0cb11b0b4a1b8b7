// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Restore(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// This eliminates the need to manually wire up routes for each catalog.
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
	group.POST("/:id/restore", handler.Restore)
}

// TradeRouteHandler defines the interface for trade event handlers.
type TradeRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	LastRecord(c *gin.Context)
	SuggestGoods(c *gin.Context)
}

// RegisterTradeRoutes registers standard routes for a trade event type
// (purchases, sales): CRUD plus the entry-form helper endpoints.
func RegisterTradeRoutes(group *gin.RouterGroup, handler TradeRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/last", handler.LastRecord)
	group.GET("/goods-suggest", handler.SuggestGoods)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}
