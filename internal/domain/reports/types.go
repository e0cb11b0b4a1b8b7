// Package reports provides read-only aggregates: the dashboard, profit
// distributions and trends, and inventory listings.
package reports

import (
	"time"

	"tradeledger/internal/core/id"
	"tradeledger/internal/core/types"
	"tradeledger/internal/domain/catalogs/goods"
	"tradeledger/internal/domain/inventory"
)

// --- Dashboard ---

// Dashboard is the home screen summary.
type Dashboard struct {
	// InventoryValue is the sum of stock_total_value over active goods
	InventoryValue types.Money `json:"inventoryValue"`

	// PurchaseUnpaid is the outstanding balance across supplier statements
	PurchaseUnpaid types.Money `json:"purchaseUnpaid"`

	// SaleUnreceived is the outstanding balance across purchaser statements
	SaleUnreceived types.Money `json:"saleUnreceived"`

	// Profit figures are sale profit minus operating expenses per period
	ProfitMonth types.Money `json:"profitMonth"`
	ProfitYear  types.Money `json:"profitYear"`
	ProfitTotal types.Money `json:"profitTotal"`
}

// ProfitSlice is one row of a profit distribution.
type ProfitSlice struct {
	ID     id.ID       `db:"id" json:"id"`
	Name   string      `db:"name" json:"name"`
	Amount types.Money `db:"amount" json:"amount"`
	Cost   types.Money `db:"cost" json:"cost"`
	Profit types.Money `db:"profit" json:"profit"`
}

// DistributionFilter bounds a profit distribution query.
type DistributionFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

// TrendPeriod selects the bucketing of a trend series.
type TrendPeriod string

const (
	TrendDaily   TrendPeriod = "day"
	TrendMonthly TrendPeriod = "month"
	TrendYearly  TrendPeriod = "year"
)

// Valid reports whether the period is a known bucketing.
func (p TrendPeriod) Valid() bool {
	return p == TrendDaily || p == TrendMonthly || p == TrendYearly
}

// TrendPoint is one bucket of a sales trend series.
type TrendPoint struct {
	Period string      `db:"period" json:"period"`
	Amount types.Money `db:"amount" json:"amount"`
	Cost   types.Money `db:"cost" json:"cost"`
	Profit types.Money `db:"profit" json:"profit"`
}

// TrendFilter bounds a trend query.
type TrendFilter struct {
	Period   TrendPeriod
	DateFrom *time.Time
	DateTo   *time.Time
}

// --- Inventory listings ---

// InventoryListFilter selects goods rows for the inventory screen.
type InventoryListFilter struct {
	Search   string
	MinStock *int
	MaxStock *int
	OrderBy  string
	Limit    int
	Offset   int
}

// InventoryItem is one inventory row with activity dates.
type InventoryItem struct {
	goods.Goods
	LastPurchaseDate *time.Time `db:"last_purchase_date" json:"lastPurchaseDate,omitempty"`
	LastSaleDate     *time.Time `db:"last_sale_date" json:"lastSaleDate,omitempty"`
}

// InventoryListResult is one page of inventory rows with the overall value.
type InventoryListResult struct {
	Items      []*InventoryItem `json:"items"`
	TotalCount int64            `json:"totalCount"`
	TotalValue types.Money      `json:"totalValue"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}

// LifetimeTotals are a goods item's all-time trade figures.
type LifetimeTotals struct {
	PurchasedNum    int         `db:"purchased_num" json:"purchasedNum"`
	PurchasedAmount types.Money `db:"purchased_amount" json:"purchasedAmount"`
	SoldNum         int         `db:"sold_num" json:"soldNum"`
	SoldAmount      types.Money `db:"sold_amount" json:"soldAmount"`
	SoldProfit      types.Money `db:"sold_profit" json:"soldProfit"`
	LostNum         int         `db:"lost_num" json:"lostNum"`
}

// InventoryDetail is a goods item with its flow history page and lifetime
// trade totals.
type InventoryDetail struct {
	Goods     *goods.Goods            `json:"goods"`
	Totals    LifetimeTotals          `json:"totals"`
	Flows     []*inventory.FlowRecord `json:"flows"`
	FlowCount int64                   `json:"flowCount"`
}

// LowStockItem is one low-stock warning row with last purchase info used to
// prefill a reorder.
type LowStockItem struct {
	GoodsID          id.ID       `db:"goods_id" json:"goodsId"`
	Name             string      `db:"name" json:"name"`
	Spec             int         `db:"spec" json:"spec"`
	StockNum         int         `db:"stock_num" json:"stockNum"`
	LastPurchaseDate *time.Time  `db:"last_purchase_date" json:"lastPurchaseDate,omitempty"`
	LastSupplierName string      `db:"last_supplier_name" json:"lastSupplierName,omitempty"`
	LastUnitPrice    types.Money `db:"last_unit_price" json:"lastUnitPrice"`
}
