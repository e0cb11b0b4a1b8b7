package handlers

import (
	"github.com/gin-gonic/gin"

	"tradeledger/internal/domain/inventory"
	"tradeledger/internal/infrastructure/http/v1/dto"
)

// LossHandler serves the inventory loss endpoints.
type LossHandler struct {
	*BaseHandler
	service *inventory.LossService
}

// NewLossHandler creates a new loss handler.
func NewLossHandler(base *BaseHandler, service *inventory.LossService) *LossHandler {
	return &LossHandler{BaseHandler: base, service: service}
}

// Create handles POST /losses.
func (h *LossHandler) Create(c *gin.Context) {
	var req dto.CreateLossRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	l, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, l)
}

// Get handles GET /losses/:id.
func (h *LossHandler) Get(c *gin.Context) {
	lossID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	l, err := h.service.GetByID(c.Request.Context(), lossID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, l)
}

// Delete handles DELETE /losses/:id.
func (h *LossHandler) Delete(c *gin.Context) {
	lossID, ok := h.ParseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), lossID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(204)
}

// List handles GET /losses.
func (h *LossHandler) List(c *gin.Context) {
	var filter inventory.LossListFilter
	var ok bool

	if filter.GoodsID, ok = h.ParseIDQuery(c, "goodsId"); !ok {
		return
	}
	filter.GoodsName = c.Query("goodsName")
	if filter.DateFrom, ok = h.ParseDateQuery(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.ParseDateQuery(c, "dateTo"); !ok {
		return
	}
	filter.Limit = h.ParseIntQuery(c, "limit", 20)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
