package purchaser

import (
	"tradeledger/internal/domain"
)

// Repository defines the interface for Purchaser persistence.
type Repository interface {
	domain.CatalogRepository[*Purchaser]
}
