package analytics

import (
	"sort"

	"github.com/shopdirect/shopdirect-manager/internal/dto"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// TopProducts accumulates units sold and revenue per product name across
// all order lines and returns at most limit entries, highest revenue
// first. Equal revenues tie-break on name ascending, which keeps the
// ranking stable across passes. A non-positive limit falls back to the
// configured default.
func (a *Aggregator) TopProducts(orders []entity.Order, limit int) []dto.TopProduct {
	if limit <= 0 {
		limit = a.cfg.TopProducts
	}

	totals := make(map[string]*dto.TopProduct)
	for _, o := range orders {
		for _, item := range o.Items {
			name := item.Product.Name()
			entry, ok := totals[name]
			if !ok {
				entry = &dto.TopProduct{Name: name}
				totals[name] = entry
			}
			entry.UnitsSold += item.Quantity
			entry.Revenue = entry.Revenue.Add(item.Subtotal())
		}
	}

	ranked := make([]dto.TopProduct, 0, len(totals))
	for _, entry := range totals {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].Name < ranked[j].Name
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
