package dto

import (
	"tradeledger/internal/core/types"
)

// ConfirmStatementRequest is the request body for closing a statement
// period at the given end date.
type ConfirmStatementRequest struct {
	EndDate Date `json:"endDate" binding:"required"`
}

// AddPaymentRequest is the request body for registering a payment or
// receipt against a confirmed statement.
type AddPaymentRequest struct {
	Amount  types.Money `json:"amount" binding:"required"`
	PayDate Date        `json:"payDate" binding:"required"`
	Remark  *string     `json:"remark"`
}

// SetInvoiceStatusRequest is the request body for flipping the invoice
// flag of a confirmed statement.
type SetInvoiceStatusRequest struct {
	Issued *bool `json:"issued" binding:"required"`
}
