package dto

import (
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/expense"
)

// CreateExpenseRequest is the request body for recording an operating expense.
type CreateExpenseRequest struct {
	Description string      `json:"description" binding:"required"`
	Type        string      `json:"type"`
	Amount      types.Money `json:"amount" binding:"required"`
	ExpenseDate Date        `json:"expenseDate" binding:"required"`
	Remark      *string     `json:"remark"`
}

// ToInput converts DTO to a service input.
func (r *CreateExpenseRequest) ToInput() expense.CreateInput {
	return expense.CreateInput{
		Description: r.Description,
		Type:        r.Type,
		Amount:      r.Amount,
		ExpenseDate: r.ExpenseDate.Time,
		Remark:      r.Remark,
	}
}

// UpdateExpenseRequest carries the editable fields of an expense.
// Nil fields are left unchanged.
type UpdateExpenseRequest struct {
	Description *string      `json:"description"`
	Type        *string      `json:"type"`
	Amount      *types.Money `json:"amount"`
	ExpenseDate *Date        `json:"expenseDate"`
	Remark      *string      `json:"remark"`
}

// ToInput converts DTO to a service input.
func (r *UpdateExpenseRequest) ToInput() expense.UpdateInput {
	return expense.UpdateInput{
		Description: r.Description,
		Type:        r.Type,
		Amount:      r.Amount,
		ExpenseDate: r.ExpenseDate.Ptr(),
		Remark:      r.Remark,
	}
}
