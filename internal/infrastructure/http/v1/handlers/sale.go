package handlers

import (
	"github.com/gin-gonic/gin"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/id"
	"tradeledger/internal/domain/trade/sale"
	"tradeledger/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves the sale record endpoints.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// Create handles POST /sales.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sl, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, sl)
}

// Get handles GET /sales/:id.
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	sl, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sl)
}

// Update handles PUT /sales/:id.
func (h *SaleHandler) Update(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sl, err := h.service.Update(c.Request.Context(), saleID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sl)
}

// Delete handles DELETE /sales/:id.
func (h *SaleHandler) Delete(c *gin.Context) {
	saleID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), saleID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(204)
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	filter, ok := h.parseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// LastRecord handles GET /sales/last - most recent sale of a goods item to
// a purchaser, used to prefill entry forms.
func (h *SaleHandler) LastRecord(c *gin.Context) {
	purchaserID, ok := h.ParseIDQuery(c, "purchaserId")
	if !ok {
		return
	}
	goodsID, ok := h.ParseIDQuery(c, "goodsId")
	if !ok {
		return
	}
	if purchaserID == nil || goodsID == nil {
		h.Error(c, apperror.NewValidation("purchaserId and goodsId are required"))
		return
	}

	sl, err := h.service.LastRecord(c.Request.Context(), *purchaserID, *goodsID)
	if err != nil {
		if apperror.IsNotFound(err) {
			h.OK(c, gin.H{"record": nil})
			return
		}
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"record": sl})
}

// SuggestGoods handles GET /sales/goods-suggest. Only goods with stock on
// hand are suggested for sale entry.
func (h *SaleHandler) SuggestGoods(c *gin.Context) {
	keyword := c.Query("keyword")
	limit := h.ParseIntQuery(c, "limit", 20)

	items, err := h.service.SuggestGoods(c.Request.Context(), keyword, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

func (h *SaleHandler) parseListFilter(c *gin.Context) (sale.ListFilter, bool) {
	var filter sale.ListFilter
	var ok bool
	var parsed *id.ID

	if parsed, ok = h.ParseIDQuery(c, "purchaserId"); !ok {
		return filter, false
	}
	filter.PurchaserID = parsed

	if parsed, ok = h.ParseIDQuery(c, "goodsId"); !ok {
		return filter, false
	}
	filter.GoodsID = parsed

	filter.GoodsName = c.Query("goodsName")

	if filter.DateFrom, ok = h.ParseDateQuery(c, "dateFrom"); !ok {
		return filter, false
	}
	if filter.DateTo, ok = h.ParseDateQuery(c, "dateTo"); !ok {
		return filter, false
	}

	filter.OrderBy = c.Query("orderBy")
	filter.Limit = h.ParseIntQuery(c, "limit", 20)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	return filter, true
}
