package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/shopdirect/shopdirect-manager/internal/dto"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// Chart color tokens assigned to slices in rank order, cycling.
var palette = []string{
	"#3b82f6",
	"#8b5cf6",
	"#f59e0b",
	"#10b981",
	"#ef4444",
	"#06b6d4",
	"#84cc16",
	"#f97316",
}

// CategoryBreakdown accumulates line-item revenue per normalized
// category name. Line items whose product reference does not resolve are
// skipped. When no line item resolves at all, the breakdown falls back
// to counting products per category and tags the result BasisCount so
// callers can tell unit counts from dollars. Slices are ordered by value
// descending with a name-ascending tie-break.
func (a *Aggregator) CategoryBreakdown(orders []entity.Order, products []entity.Product) dto.CategoryBreakdown {
	values := make(map[string]decimal.Decimal)

	for _, o := range orders {
		for _, item := range o.Items {
			if !item.Product.Resolved() {
				continue
			}
			name := item.Product.Product.Category.DisplayName()
			values[name] = values[name].Add(item.Subtotal())
		}
	}

	basis := dto.BasisRevenue
	if len(values) == 0 {
		basis = dto.BasisCount
		for _, p := range products {
			name := p.Category.DisplayName()
			values[name] = values[name].Add(decimal.NewFromInt(1))
		}
	}

	slices := make([]dto.CategorySlice, 0, len(values))
	for name, value := range values {
		slices = append(slices, dto.CategorySlice{Name: name, Value: value})
	}
	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Value.Equal(slices[j].Value) {
			return slices[i].Value.GreaterThan(slices[j].Value)
		}
		return slices[i].Name < slices[j].Name
	})
	for i := range slices {
		slices[i].Color = palette[i%len(palette)]
	}

	return dto.CategoryBreakdown{Basis: basis, Slices: slices}
}
