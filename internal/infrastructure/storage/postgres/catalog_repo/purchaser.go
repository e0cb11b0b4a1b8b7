package catalog_repo

import (
	"tradeledger/internal/domain/catalogs/purchaser"
	"tradeledger/internal/infrastructure/storage/postgres"
)

const purchaserTable = "cat_purchasers"

// PurchaserRepo implements purchaser.Repository.
type PurchaserRepo struct {
	*BaseCatalogRepo[*purchaser.Purchaser]
}

// NewPurchaserRepo creates a new purchaser repository.
func NewPurchaserRepo(txm *postgres.TxManager) *PurchaserRepo {
	return &PurchaserRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[*purchaser.Purchaser](
			txm,
			purchaserTable,
			postgres.ExtractDBColumns[purchaser.Purchaser](),
			func() *purchaser.Purchaser { return &purchaser.Purchaser{} },
		),
	}
}
