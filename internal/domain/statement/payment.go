package statement

import (
	"context"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
)

// Payment is one settlement row against a confirmed statement: a payment to
// a supplier on the purchase side, a receipt from a purchaser on the sale
// side.
type Payment struct {
	entity.BaseEntity

	StatementID id.ID       `db:"statement_id" json:"statementId"`
	Amount      types.Money `db:"amount" json:"amount"`
	PayDate     time.Time   `db:"pay_date" json:"payDate"`
	Remark      *string     `db:"remark" json:"remark,omitempty"`
}

// NewPayment creates a settlement row.
func NewPayment(statementID id.ID, amount types.Money, payDate time.Time) *Payment {
	return &Payment{
		BaseEntity:  entity.NewBaseEntity(),
		StatementID: statementID,
		Amount:      types.Round2(amount),
		PayDate:     types.DayStart(payDate),
	}
}

// Validate implements entity.Validatable interface.
func (p *Payment) Validate(ctx context.Context) error {
	if id.IsNil(p.StatementID) {
		return apperror.NewValidation("statement is required").
			WithDetail("field", "statementId")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", p.Amount.String())
	}
	if p.PayDate.IsZero() {
		return apperror.NewValidation("pay date is required").
			WithDetail("field", "payDate")
	}
	return nil
}
