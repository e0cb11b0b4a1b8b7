package handlers

import (
	"github.com/gin-gonic/gin"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/id"
	"tradeledger/internal/domain/trade/purchase"
	"tradeledger/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves the purchase record endpoints.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// Create handles POST /purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p)
}

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	purchaseID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Update handles PUT /purchases/:id.
func (h *PurchaseHandler) Update(c *gin.Context) {
	purchaseID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), purchaseID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Delete handles DELETE /purchases/:id.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	purchaseID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), purchaseID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(204)
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
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

// LastRecord handles GET /purchases/last - most recent purchase of a goods
// item from a supplier, used to prefill entry forms.
func (h *PurchaseHandler) LastRecord(c *gin.Context) {
	supplierID, ok := h.ParseIDQuery(c, "supplierId")
	if !ok {
		return
	}
	goodsID, ok := h.ParseIDQuery(c, "goodsId")
	if !ok {
		return
	}
	if supplierID == nil || goodsID == nil {
		h.Error(c, apperror.NewValidation("supplierId and goodsId are required"))
		return
	}

	p, err := h.service.LastRecord(c.Request.Context(), *supplierID, *goodsID)
	if err != nil {
		if apperror.IsNotFound(err) {
			h.OK(c, gin.H{"record": nil})
			return
		}
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"record": p})
}

// SuggestGoods handles GET /purchases/goods-suggest.
func (h *PurchaseHandler) SuggestGoods(c *gin.Context) {
	keyword := c.Query("keyword")
	limit := h.ParseIntQuery(c, "limit", 20)

	items, err := h.service.SuggestGoods(c.Request.Context(), keyword, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}

func (h *PurchaseHandler) parseListFilter(c *gin.Context) (purchase.ListFilter, bool) {
	var filter purchase.ListFilter
	var ok bool
	var parsed *id.ID

	if parsed, ok = h.ParseIDQuery(c, "supplierId"); !ok {
		return filter, false
	}
	filter.SupplierID = parsed

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
