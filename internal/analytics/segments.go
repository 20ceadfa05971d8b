package analytics

import (
	"math"

	"github.com/shopdirect/shopdirect-manager/internal/dto"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// Segment labels, in reporting order.
const (
	SegmentNew       = "New Customers"
	SegmentReturning = "Returning"
	SegmentLoyal     = "Loyal"
)

// CustomerSegments buckets customers by how many orders reference them:
// New (none), Returning (1 up to the configured maximum) and Loyal
// (above it). Percentages are integer-rounded shares of the customer
// total, all zero when there are no customers. Orders without a
// resolvable owner count toward no one.
func (a *Aggregator) CustomerSegments(customers []entity.Customer, orders []entity.Order) []dto.Segment {
	ordersPer := make(map[string]int)
	for _, o := range orders {
		if key := o.User.Key(); key != "" {
			ordersPer[key]++
		}
	}

	var newCount, returningCount, loyalCount int
	for _, c := range customers {
		switch n := ordersPer[c.ID]; {
		case n == 0:
			newCount++
		case n <= a.cfg.ReturningMax:
			returningCount++
		default:
			loyalCount++
		}
	}

	total := len(customers)
	share := func(count int) int {
		if total == 0 {
			return 0
		}
		return int(math.Round(float64(count) / float64(total) * 100))
	}

	return []dto.Segment{
		{Label: SegmentNew, Count: newCount, Percentage: share(newCount)},
		{Label: SegmentReturning, Count: returningCount, Percentage: share(returningCount)},
		{Label: SegmentLoyal, Count: loyalCount, Percentage: share(loyalCount)},
	}
}
