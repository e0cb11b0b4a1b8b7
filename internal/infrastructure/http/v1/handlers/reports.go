package handlers

import (
	"github.com/gin-gonic/gin"

	"tradeledger/internal/domain/reports"
)

// ReportsHandler serves the dashboard and analytics endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Dashboard handles GET /reports/dashboard.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// ProfitByPurchaser handles GET /reports/profit-by-purchaser.
func (h *ReportsHandler) ProfitByPurchaser(c *gin.Context) {
	filter, ok := h.parseDistributionFilter(c)
	if !ok {
		return
	}

	slices, err := h.service.ProfitByPurchaser(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": slices})
}

// ProfitByGoods handles GET /reports/profit-by-goods.
func (h *ReportsHandler) ProfitByGoods(c *gin.Context) {
	filter, ok := h.parseDistributionFilter(c)
	if !ok {
		return
	}

	slices, err := h.service.ProfitByGoods(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": slices})
}

// Trend handles GET /reports/trend?period=day|month|year.
func (h *ReportsHandler) Trend(c *gin.Context) {
	var filter reports.TrendFilter
	var ok bool

	filter.Period = reports.TrendPeriod(c.DefaultQuery("period", string(reports.TrendMonthly)))
	if filter.DateFrom, ok = h.ParseDateQuery(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.ParseDateQuery(c, "dateTo"); !ok {
		return
	}

	points, err := h.service.Trend(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": points})
}

// InventoryList handles GET /reports/inventory.
func (h *ReportsHandler) InventoryList(c *gin.Context) {
	var filter reports.InventoryListFilter

	filter.Search = c.Query("search")
	if v := c.Query("minStock"); v != "" {
		n := h.ParseIntQuery(c, "minStock", 0)
		filter.MinStock = &n
	}
	if v := c.Query("maxStock"); v != "" {
		n := h.ParseIntQuery(c, "maxStock", 0)
		filter.MaxStock = &n
	}
	filter.OrderBy = c.Query("orderBy")
	filter.Limit = h.ParseIntQuery(c, "limit", 20)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.InventoryList(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// InventoryDetail handles GET /reports/inventory/:id - one goods item with
// lifetime totals and its stock flow history.
func (h *ReportsHandler) InventoryDetail(c *gin.Context) {
	goodsID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 20)
	offset := h.ParseIntQuery(c, "offset", 0)

	detail, err := h.service.InventoryDetail(c.Request.Context(), goodsID, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, detail)
}

// LowStock handles GET /reports/low-stock.
func (h *ReportsHandler) LowStock(c *gin.Context) {
	threshold := h.ParseIntQuery(c, "threshold", 10)
	limit := h.ParseIntQuery(c, "limit", 50)

	items, err := h.service.LowStock(c.Request.Context(), threshold, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

func (h *ReportsHandler) parseDistributionFilter(c *gin.Context) (reports.DistributionFilter, bool) {
	var filter reports.DistributionFilter
	var ok bool

	if filter.DateFrom, ok = h.ParseDateQuery(c, "dateFrom"); !ok {
		return filter, false
	}
	if filter.DateTo, ok = h.ParseDateQuery(c, "dateTo"); !ok {
		return filter, false
	}
	filter.Limit = h.ParseIntQuery(c, "limit", 10)

	return filter, true
}
