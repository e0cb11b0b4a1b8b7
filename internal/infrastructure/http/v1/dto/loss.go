package dto

import (
	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/id"
	"tradeledger/internal/domain/inventory"
)

// CreateLossRequest is the request body for recording an inventory loss.
// Losses are never edited; a wrong entry is deleted and re-recorded.
type CreateLossRequest struct {
	GoodsID  string  `json:"goodsId" binding:"required"`
	LossDate Date    `json:"lossDate" binding:"required"`
	Num      int     `json:"num" binding:"required,min=1"`
	Reason   *string `json:"reason"`
}

// ToInput converts DTO to a service input.
func (r *CreateLossRequest) ToInput() (inventory.LossCreateInput, error) {
	goodsID, err := id.Parse(r.GoodsID)
	if err != nil {
		return inventory.LossCreateInput{}, apperror.NewValidation("invalid goods id").
			WithDetail("field", "goodsId")
	}
	return inventory.LossCreateInput{
		GoodsID:  goodsID,
		LossDate: r.LossDate.Time,
		Num:      r.Num,
		Reason:   r.Reason,
	}, nil
}
