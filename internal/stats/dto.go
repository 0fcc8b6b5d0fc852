package stats

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopProductDTO is one row of the best-sellers table.
type TopProductDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int64           `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// SalesStatsDTO is the admin dashboard aggregate.
type SalesStatsDTO struct {
	TotalRevenue   decimal.Decimal  `json:"total_revenue"`
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	TotalOrders    int64            `json:"total_orders"`
	TotalUsers     int64            `json:"total_users"`
	TopProducts    []TopProductDTO  `json:"top_products"`
}
