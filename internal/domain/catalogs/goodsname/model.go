// Package goodsname stores per-purchaser display names for goods.
// A purchaser may call a product by its own name; the alias entered on a
// sale is remembered and shown in later sale listings and bills.
package goodsname

import (
	"time"

	"tradeledger/internal/core/id"
)

// CustomerGoodsName maps a (goods, purchaser) pair to the purchaser's
// preferred product name.
type CustomerGoodsName struct {
	ID          id.ID     `db:"id" json:"id"`
	GoodsID     id.ID     `db:"goods_id" json:"goodsId"`
	PurchaserID id.ID     `db:"purchaser_id" json:"purchaserId"`
	Name        string    `db:"name" json:"name"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// NewCustomerGoodsName creates a new alias row.
func NewCustomerGoodsName(goodsID, purchaserID id.ID, name string) *CustomerGoodsName {
	now := time.Now().UTC()
	return &CustomerGoodsName{
		ID:          id.New(),
		GoodsID:     goodsID,
		PurchaserID: purchaserID,
		Name:        name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
