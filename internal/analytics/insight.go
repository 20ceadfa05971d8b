package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopdirect/shopdirect-manager/internal/dto"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

type productSales struct {
	name      string
	unitsSold int
	revenue   decimal.Decimal
	rating    float64
	views     int
	createdAt time.Time
}

// salesByProduct accumulates per-product sales from order lines. When a
// line carries only a product id, the name is looked up in the catalog;
// lines that resolve to no product at all still accumulate under the
// placeholder name.
func salesByProduct(orders []entity.Order, products []entity.Product) map[string]*productSales {
	byID := make(map[string]entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	sales := make(map[string]*productSales)
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Product.ID == "" && item.Product.Product == nil {
				continue
			}

			key := item.Product.ID
			if key == "" {
				key = item.Product.Name()
			}

			entry, ok := sales[key]
			if !ok {
				entry = &productSales{name: item.Product.Name()}
				if prd := item.Product.Product; prd != nil {
					entry.rating = prd.RatingsAverage
					entry.views = prd.RatingsQuantity
					entry.createdAt = prd.CreatedAt
				}
				if entry.name == "Unknown Product" {
					if prd, ok := byID[item.Product.ID]; ok && prd.Name != "" {
						entry.name = prd.Name
						entry.rating = prd.RatingsAverage
						entry.views = prd.RatingsQuantity
						entry.createdAt = prd.CreatedAt
					}
				}
				sales[key] = entry
			}
			entry.unitsSold += item.Quantity
			entry.revenue = entry.revenue.Add(item.Subtotal())
		}
	}
	return sales
}

// PopularProducts ranks products by sales revenue. When no order line
// resolves to a product, the ranking falls back to rating order: a
// weaker popularity signal, but better than an empty widget.
func (a *Aggregator) PopularProducts(orders []entity.Order, products []entity.Product, limit int) []dto.PopularProduct {
	if limit <= 0 {
		limit = a.cfg.PopularProducts
	}
	now := a.now()

	sales := salesByProduct(orders, products)
	if len(sales) == 0 {
		ranked := make([]entity.Product, 0, len(products))
		for _, p := range products {
			if p.Name != "" {
				ranked = append(ranked, p)
			}
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].RatingsAverage != ranked[j].RatingsAverage {
				return ranked[i].RatingsAverage > ranked[j].RatingsAverage
			}
			return ranked[i].Name < ranked[j].Name
		})
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}

		popular := make([]dto.PopularProduct, 0, len(ranked))
		for _, p := range ranked {
			popular = append(popular, dto.PopularProduct{
				Name:   p.Name,
				Views:  p.RatingsQuantity,
				Rating: p.RatingsAverage,
				Time:   RelativeTime(now, p.CreatedAt),
			})
		}
		return popular
	}

	ranked := make([]*productSales, 0, len(sales))
	for _, entry := range sales {
		if entry.name != "" && entry.name != "Unknown Product" {
			ranked = append(ranked, entry)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].revenue.Equal(ranked[j].revenue) {
			return ranked[i].revenue.GreaterThan(ranked[j].revenue)
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	popular := make([]dto.PopularProduct, 0, len(ranked))
	for _, entry := range ranked {
		popular = append(popular, dto.PopularProduct{
			Name:      entry.name,
			Views:     entry.views,
			Rating:    entry.rating,
			Time:      RelativeTime(now, entry.createdAt),
			UnitsSold: entry.unitsSold,
			Revenue:   entry.revenue,
		})
	}
	return popular
}

// ProductPerformance derives per-catalog-product sales totals: units and
// revenue from order lines that reference the product, rating and view
// aggregates from the product itself. Products with no sales report
// zeros.
func (a *Aggregator) ProductPerformance(orders []entity.Order, products []entity.Product) []dto.ProductPerformance {
	perf := make([]dto.ProductPerformance, 0, len(products))
	for _, p := range products {
		unitsSold := 0
		revenue := decimal.Zero
		for _, o := range orders {
			for _, item := range o.Items {
				if item.Product.Matches(p.ID) {
					unitsSold += item.Quantity
					revenue = revenue.Add(item.Subtotal())
				}
			}
		}
		perf = append(perf, dto.ProductPerformance{
			Name:      p.Name,
			UnitsSold: unitsSold,
			Revenue:   revenue,
			Rating:    p.RatingsAverage,
			Views:     p.RatingsQuantity,
		})
	}

	sort.Slice(perf, func(i, j int) bool {
		if !perf[i].Revenue.Equal(perf[j].Revenue) {
			return perf[i].Revenue.GreaterThan(perf[j].Revenue)
		}
		return perf[i].Name < perf[j].Name
	})
	return perf
}

// ProductInsight assembles the product-details analytics card from the
// product record and its performance entry. The reorder point is the
// configured ratio of current stock, rounded up; days in stock assumes a
// flat monthly sales rate.
func (a *Aggregator) ProductInsight(product entity.Product, performance []dto.ProductPerformance) dto.ProductInsight {
	insight := dto.ProductInsight{
		TotalViews:   product.RatingsQuantity,
		Revenue:      decimal.Zero,
		StockLevel:   product.StockQuantity,
		ReorderPoint: int(math.Ceil(float64(product.StockQuantity) * a.cfg.ReorderRatio)),
	}

	for _, perf := range performance {
		if perf.Name != product.Name {
			continue
		}
		insight.TotalViews = perf.Views
		insight.TotalSales = perf.UnitsSold
		insight.Revenue = perf.Revenue
		if perf.Views > 0 {
			insight.ConversionRate = round1(float64(perf.UnitsSold) / float64(perf.Views) * 100)
		}
		if perf.UnitsSold > 0 {
			insight.AvgOrderValue = perf.Revenue.Div(decimal.NewFromInt(int64(perf.UnitsSold))).Round(0)
		}
		if product.StockQuantity > 0 {
			insight.DaysInStock = int(math.Ceil(float64(perf.UnitsSold) / 30))
		}
		break
	}
	return insight
}
