package inventory

import (
	"context"
	"time"

	"tradeledger/internal/core/apperror"
	"tradeledger/internal/core/entity"
	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
)

// Loss is a stock write-off: spoilage, breakage or shrinkage found during a
// count. Losses are valued at the weighted-average cost in effect on the
// loss date and never touch any statement.
type Loss struct {
	entity.BaseEntity

	GoodsID id.ID `db:"goods_id" json:"goodsId"`

	// LossDate has day precision
	LossDate time.Time `db:"loss_date" json:"lossDate"`

	// Num is the package count written off
	Num int `db:"num" json:"num"`

	// CostSnapshot is the weighted-average unit cost at the loss date.
	// The cost replay rewrites it when history changes.
	CostSnapshot types.Money `db:"cost_snapshot" json:"costSnapshot"`

	// LossValue is cost_snapshot * num * spec
	LossValue types.Money `db:"loss_value" json:"lossValue"`

	Reason *string `db:"reason" json:"reason,omitempty"`
}

// Validate implements entity.Validatable interface.
func (l *Loss) Validate(ctx context.Context) error {
	if id.IsNil(l.GoodsID) {
		return apperror.NewValidation("goods is required").
			WithDetail("field", "goodsId")
	}
	if l.Num <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "num").
			WithDetail("value", l.Num)
	}
	if l.LossDate.IsZero() {
		return apperror.NewValidation("loss date is required").
			WithDetail("field", "lossDate")
	}
	return nil
}

// LossCreateInput is the payload for recording a loss.
type LossCreateInput struct {
	GoodsID  id.ID
	LossDate time.Time
	Num      int
	Reason   *string
}

// LossListFilter selects loss records for listings.
type LossListFilter struct {
	GoodsID   *id.ID
	GoodsName string
	DateFrom  *time.Time
	DateTo    *time.Time
	Limit     int
	Offset    int
}

// LossListItem is a loss row enriched for listings.
type LossListItem struct {
	Loss
	GoodsName string `db:"goods_name" json:"goodsName"`
	Spec      int    `db:"spec" json:"spec"`
}

// LossListResult is one page of enriched loss rows.
type LossListResult struct {
	Items      []*LossListItem `json:"items"`
	TotalCount int64           `json:"totalCount"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// LossRepository defines the interface for loss persistence.
type LossRepository interface {
	Create(ctx context.Context, l *Loss) error

	GetByID(ctx context.Context, lossID id.ID) (*Loss, error)

	SetStatus(ctx context.Context, lossID id.ID, status entity.Status) error

	List(ctx context.Context, filter LossListFilter) (LossListResult, error)
}
