package dto

import (
	"github.com/shopspring/decimal"

	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// View models derived from the raw collections. All of them are
// recomputed on every aggregation pass and carry no identity of their
// own.

// Summary is the dashboard stat card row: totals plus month-over-month
// percent changes against the previous calendar month, rounded to one
// decimal place. A zero previous month yields a change of 0 rather than
// a division by zero; known to undercount growth-from-zero.
type Summary struct {
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	TotalOrders     int             `json:"totalOrders"`
	TotalCustomers  int             `json:"totalCustomers"`
	TotalProducts   int             `json:"totalProducts"`
	RevenueChange   float64         `json:"revenueChange"`
	OrdersChange    float64         `json:"ordersChange"`
	CustomersChange float64         `json:"customersChange"`
	ProductsChange  float64         `json:"productsChange"`
}

// TimeSeriesPoint is one calendar month of the 12-month rolling series.
type TimeSeriesPoint struct {
	Period        string          `json:"period"`
	Revenue       decimal.Decimal `json:"revenue"`
	OrderCount    int             `json:"orders"`
	CustomerCount int             `json:"customers"`
}

// Breakdown bases: whether category slice values are revenue dollars or
// plain product counts (the fallback when no line items resolve).
const (
	BasisRevenue = "revenue"
	BasisCount   = "count"
)

// CategorySlice is one category's share of the breakdown.
type CategorySlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color"`
}

// CategoryBreakdown tags its slices with the basis they were computed
// on, so callers can tell dollars from unit counts.
type CategoryBreakdown struct {
	Basis  string          `json:"basis"`
	Slices []CategorySlice `json:"slices"`
}

// TopProduct is a revenue-ranked product entry.
type TopProduct struct {
	Name      string          `json:"name"`
	UnitsSold int             `json:"sales"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Segment is a customer bucket grouped by order-count range.
type Segment struct {
	Label      string `json:"segment"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// RecentOrder is a display-ready row for the latest-orders widget.
type RecentOrder struct {
	ID         string `json:"id"`
	Customer   string `json:"customer"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
	Time       string `json:"time"`
	TotalItems int    `json:"totalItems"`
	OrderDate  string `json:"orderDate"`
}

// PopularProduct ranks products by sales revenue, falling back to
// rating when no order data resolves.
type PopularProduct struct {
	Name      string          `json:"name"`
	Views     int             `json:"views"`
	Rating    float64         `json:"rating"`
	Time      string          `json:"time"`
	UnitsSold int             `json:"sales,omitempty"`
	Revenue   decimal.Decimal `json:"revenue,omitempty"`
}

// ProductPerformance is per-product sales aggregated from order lines.
type ProductPerformance struct {
	Name      string          `json:"name"`
	UnitsSold int             `json:"sales"`
	Revenue   decimal.Decimal `json:"revenue"`
	Rating    float64         `json:"rating"`
	Views     int             `json:"views"`
}

// ProductInsight is the product-details analytics card.
type ProductInsight struct {
	TotalViews     int             `json:"totalViews"`
	TotalSales     int             `json:"totalSales"`
	Revenue        decimal.Decimal `json:"revenue"`
	ConversionRate float64         `json:"conversionRate"`
	AvgOrderValue  decimal.Decimal `json:"avgOrderValue"`
	StockLevel     int             `json:"stockLevel"`
	ReorderPoint   int             `json:"reorderPoint"`
	DaysInStock    int             `json:"daysInStock"`
}

// GrowthPoint is one month of new-customer signups.
type GrowthPoint struct {
	Period    string `json:"period"`
	Customers int    `json:"customers"`
}

// Dashboard is the aggregate payload for the dashboard page.
type Dashboard struct {
	Stats           Summary           `json:"stats"`
	SalesData       []TimeSeriesPoint `json:"salesData"`
	CategoryData    CategoryBreakdown `json:"categoryData"`
	RecentOrders    []RecentOrder     `json:"recentOrders"`
	PopularProducts []PopularProduct  `json:"popularProducts"`
}

// Analytics is the aggregate payload for the analytics page.
type Analytics struct {
	Stats            Summary           `json:"stats"`
	SalesData        []TimeSeriesPoint `json:"salesData"`
	CategoryData     CategoryBreakdown `json:"categoryData"`
	TopProducts      []TopProduct      `json:"topProducts"`
	CustomerSegments []Segment         `json:"customerSegments"`
	CustomerGrowth   []GrowthPoint     `json:"customerGrowth"`
}

// ProductDetails couples a product with its derived insight.
type ProductDetails struct {
	Product entity.Product `json:"product"`
	Insight ProductInsight `json:"insight"`
}
