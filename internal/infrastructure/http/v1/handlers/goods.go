package handlers

import (
	"github.com/gin-gonic/gin"

	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/infrastructure/http/v1/dto"
)

// GoodsHTTPHandler serves the goods catalog endpoints plus the entry-form
// suggestion endpoint.
type GoodsHTTPHandler struct {
	*CatalogHandler[*goods.Goods, dto.CreateGoodsRequest, dto.UpdateGoodsRequest]
	service *goods.Service
}

// NewGoodsHandler wires the generic catalog handler to the goods service.
func NewGoodsHandler(base *BaseHandler, service *goods.Service) *GoodsHTTPHandler {
	config := CatalogHandlerConfig[
		*goods.Goods,
		dto.CreateGoodsRequest,
		dto.UpdateGoodsRequest,
	]{
		Service:    service,
		EntityName: "goods",

		MapCreateDTO: func(req dto.CreateGoodsRequest) *goods.Goods {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateGoodsRequest, existing *goods.Goods) *goods.Goods {
			req.ApplyTo(existing)
			return existing
		},
	}

	return &GoodsHTTPHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// Suggest handles GET /goods/suggest - name suggestions for entry forms.
// withStock=true skips rows with zero stock.
func (h *GoodsHTTPHandler) Suggest(c *gin.Context) {
	keyword := c.Query("keyword")
	withStock := c.Query("withStock") == "true"
	limit := h.ParseIntQuery(c, "limit", 20)

	items, err := h.service.Suggest(c.Request.Context(), keyword, withStock, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}
