package statement

import (
	"context"
	"time"

	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
)

// BillListFilter selects statements for the bill screens.
type BillListFilter struct {
	Side           Side
	CounterpartyID *id.ID
	Confirmed      *bool
	SettledStatus  *bool
	MinAmount      *types.Money
	MaxAmount      *types.Money
	DateFrom       *time.Time
	DateTo         *time.Time
	Limit          int
	Offset         int
}

// BillListItem is one statement row with its counterparty name.
type BillListItem struct {
	Statement
	CounterpartyName string `db:"counterparty_name" json:"counterpartyName"`
}

// BillListResult is one page of bill rows.
type BillListResult struct {
	Items      []*BillListItem `json:"items"`
	TotalCount int64           `json:"totalCount"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

// BillLine is one merged line of a bill: events of the same goods item on
// the same date collapse into a single row.
type BillLine struct {
	GoodsID id.ID `db:"goods_id" json:"goodsId"`

	GoodsName string `db:"goods_name" json:"goodsName"`

	// CustomerGoodsName is the purchaser's own alias, sale bills only
	CustomerGoodsName string `db:"customer_goods_name" json:"customerGoodsName,omitempty"`

	Spec int       `db:"spec" json:"spec"`
	Date time.Time `db:"date" json:"date"`
	Num  int       `db:"num" json:"num"`

	Amount types.Money `db:"amount" json:"amount"`

	// UnitPrice is amount / (num * spec), the price per base unit
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
}

// BillDetail is a statement with merged lines, its payment history and the
// balance re-derived from the payment rows.
type BillDetail struct {
	Statement        *Statement  `json:"statement"`
	CounterpartyName string      `json:"counterpartyName"`
	Lines            []*BillLine `json:"lines"`
	Payments         []*Payment  `json:"payments"`
	Settled          types.Money `json:"settled"`
	Outstanding      types.Money `json:"outstanding"`
}

// BillStore defines the read queries behind the bill screens.
type BillStore interface {
	// ListBills pages statements with counterparty names.
	ListBills(ctx context.Context, filter BillListFilter) (BillListResult, error)

	// BillLines returns a statement's merged lines ordered by date.
	BillLines(ctx context.Context, side Side, statementID id.ID) ([]*BillLine, error)

	// CounterpartyName resolves a counterparty's display name.
	CounterpartyName(ctx context.Context, side Side, counterpartyID id.ID) (string, error)
}

// BillService serves the bill screens over the statement manager's data.
type BillService struct {
	store    BillStore
	repo     Repository
	payments PaymentRepository
}

// NewBillService creates a bill service.
func NewBillService(store BillStore, repo Repository, payments PaymentRepository) *BillService {
	return &BillService{store: store, repo: repo, payments: payments}
}

// List pages bill rows.
func (s *BillService) List(ctx context.Context, filter BillListFilter) (BillListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.store.ListBills(ctx, filter)
}

// Detail loads one bill: statement, merged lines, payments and the balance
// re-summed from the payment rows rather than the materialized columns.
func (s *BillService) Detail(ctx context.Context, statementID id.ID) (*BillDetail, error) {
	st, err := s.repo.GetByID(ctx, statementID)
	if err != nil {
		return nil, err
	}

	name, err := s.store.CounterpartyName(ctx, st.Side, st.CounterpartyID)
	if err != nil {
		return nil, err
	}
	lines, err := s.store.BillLines(ctx, st.Side, st.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListForStatement(ctx, st.ID)
	if err != nil {
		return nil, err
	}

	settled := types.Zero()
	for _, p := range payments {
		settled = settled.Add(p.Amount)
	}

	return &BillDetail{
		Statement:        st,
		CounterpartyName: name,
		Lines:            lines,
		Payments:         payments,
		Settled:          settled,
		Outstanding:      st.Amount.Sub(settled),
	}, nil
}
