package analytics

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopdirect/shopdirect-manager/internal/dto"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// Config carries the hand-picked aggregation thresholds. The segment
// buckets and the reorder ratio came from the product side without a
// documented justification, so they are configuration rather than
// constants; the defaults reproduce the shipped behavior.
type Config struct {
	ReturningMax    int     `mapstructure:"returning_max"`
	ReorderRatio    float64 `mapstructure:"reorder_ratio"`
	TopProducts     int     `mapstructure:"top_products"`
	RecentOrders    int     `mapstructure:"recent_orders"`
	PopularProducts int     `mapstructure:"popular_products"`
}

func (c Config) withDefaults() Config {
	if c.ReturningMax <= 0 {
		c.ReturningMax = 2
	}
	if c.ReorderRatio <= 0 {
		c.ReorderRatio = 0.2
	}
	if c.TopProducts <= 0 {
		c.TopProducts = 10
	}
	if c.RecentOrders <= 0 {
		c.RecentOrders = 5
	}
	if c.PopularProducts <= 0 {
		c.PopularProducts = 5
	}
	return c
}

// Aggregator derives dashboard view models from the raw collections.
// Every method is a pure function of its inputs and the injected clock:
// fixed inputs and a fixed now produce identical output, and input
// slices are never mutated. Records with missing or unresolvable
// references degrade to zero or placeholder values instead of failing
// the pass.
type Aggregator struct {
	cfg Config
	now func() time.Time
}

// New builds an aggregator with the given thresholds.
func New(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg.withDefaults(), now: time.Now}
}

// WithNow overrides the aggregator clock for testing.
func (a *Aggregator) WithNow(fn func() time.Time) *Aggregator {
	if fn != nil {
		a.now = fn
	}
	return a
}

// Config returns the effective thresholds.
func (a *Aggregator) Config() Config {
	return a.cfg
}

// monthIndex flattens a timestamp to a calendar-month ordinal so that
// consecutive months differ by exactly one across year boundaries.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// pctChange is the month-over-month percent delta, one decimal place. A
// non-positive previous value yields 0, the divide-by-zero guard. This
// undercounts growth from zero and is carried as a known limitation.
func pctChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0
	}
	return round1((current - previous) / previous * 100)
}

// Summary computes the stat cards: lifetime totals plus calendar-month
// deltas against the immediately preceding month. The product count
// prefers the upstream paging total over the fetched page length.
// ProductsChange has no previous-period source upstream and is always 0.
func (a *Aggregator) Summary(orders []entity.Order, customers []entity.Customer, products entity.ProductList) dto.Summary {
	now := a.now()
	current := monthIndex(now)
	previous := current - 1

	totalRevenue := decimal.Zero
	currentRevenue := decimal.Zero
	previousRevenue := decimal.Zero
	currentOrders, previousOrders := 0, 0

	for _, o := range orders {
		totalRevenue = totalRevenue.Add(o.TotalPrice)
		switch monthIndex(o.CreatedAt) {
		case current:
			currentRevenue = currentRevenue.Add(o.TotalPrice)
			currentOrders++
		case previous:
			previousRevenue = previousRevenue.Add(o.TotalPrice)
			previousOrders++
		}
	}

	currentCustomers, previousCustomers := 0, 0
	for _, c := range customers {
		switch monthIndex(c.CreatedAt) {
		case current:
			currentCustomers++
		case previous:
			previousCustomers++
		}
	}

	return dto.Summary{
		TotalRevenue:    totalRevenue,
		TotalOrders:     len(orders),
		TotalCustomers:  len(customers),
		TotalProducts:   products.Count(),
		RevenueChange:   pctChange(currentRevenue.InexactFloat64(), previousRevenue.InexactFloat64()),
		OrdersChange:    pctChange(float64(currentOrders), float64(previousOrders)),
		CustomersChange: pctChange(float64(currentCustomers), float64(previousCustomers)),
		ProductsChange:  0,
	}
}
