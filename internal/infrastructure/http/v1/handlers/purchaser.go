package handlers

import (
	"tradeledger/internal/domain/catalogs/purchaser"
	"tradeledger/internal/infrastructure/http/v1/dto"
)

// PurchaserHTTPHandler serves the purchaser catalog endpoints.
type PurchaserHTTPHandler = CatalogHandler[
	*purchaser.Purchaser,
	dto.CreatePurchaserRequest,
	dto.UpdatePurchaserRequest,
]

// NewPurchaserHandler wires the generic catalog handler to the purchaser
// service and its DTO mapping.
func NewPurchaserHandler(base *BaseHandler, service *purchaser.Service) *PurchaserHTTPHandler {
	config := CatalogHandlerConfig[
		*purchaser.Purchaser,
		dto.CreatePurchaserRequest,
		dto.UpdatePurchaserRequest,
	]{
		Service:    service,
		EntityName: "purchaser",

		MapCreateDTO: func(req dto.CreatePurchaserRequest) *purchaser.Purchaser {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdatePurchaserRequest, existing *purchaser.Purchaser) *purchaser.Purchaser {
			req.ApplyTo(existing)
			return existing
		},
	}

	return NewCatalogHandler(base, config)
}
