package handlers

import (
	"tradeledger/internal/domain/catalogs/supplier"
	"tradeledger/internal/infrastructure/http/v1/dto"
)

// SupplierHTTPHandler serves the supplier catalog endpoints.
type SupplierHTTPHandler = CatalogHandler[
	*supplier.Supplier,
	dto.CreateSupplierRequest,
	dto.UpdateSupplierRequest,
]

// NewSupplierHandler wires the generic catalog handler to the supplier
// service and its DTO mapping.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHTTPHandler {
	config := CatalogHandlerConfig[
		*supplier.Supplier,
		dto.CreateSupplierRequest,
		dto.UpdateSupplierRequest,
	]{
		Service:    service,
		EntityName: "supplier",

		MapCreateDTO: func(req dto.CreateSupplierRequest) *supplier.Supplier {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) *supplier.Supplier {
			req.ApplyTo(existing)
			return existing
		},
	}

	return NewCatalogHandler(base, config)
}
