package dto

import (
	"tradeledger/internal/domain/catalogs/goods"
)

// CreateGoodsRequest is the request body for creating a goods row directly.
// Most goods rows are created implicitly by the first purchase; this exists
// for pre-registering items.
type CreateGoodsRequest struct {
	Name string `json:"name" binding:"required"`
	Spec int    `json:"spec" binding:"required,min=1"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateGoodsRequest) ToEntity() *goods.Goods {
	return goods.NewGoods(r.Name, r.Spec)
}

// UpdateGoodsRequest is the request body for updating a goods row.
// Stock and cost fields are owned by the cost engine and cannot be set here.
type UpdateGoodsRequest struct {
	Name *string `json:"name"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateGoodsRequest) ApplyTo(g *goods.Goods) {
	if r.Name != nil {
		g.Name = *r.Name
	}
	g.Touch()
}
