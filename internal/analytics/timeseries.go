package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopdirect/shopdirect-manager/internal/dto"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

const trendWindowMonths = 12

// TimeSeries buckets orders and customers into the 12 calendar months
// ending at the current month. The window is always exactly 12 points;
// months with no data carry zero values, so the series is a
// deterministic function of the inputs and the clock.
func (a *Aggregator) TimeSeries(orders []entity.Order, customers []entity.Customer) []dto.TimeSeriesPoint {
	now := a.now()
	first := monthIndex(now) - (trendWindowMonths - 1)

	points := make([]dto.TimeSeriesPoint, trendWindowMonths)
	for i := range points {
		month := time.Date(now.Year(), now.Month()-time.Month(trendWindowMonths-1-i), 1, 0, 0, 0, 0, now.Location())
		points[i] = dto.TimeSeriesPoint{
			Period:  month.Format("Jan"),
			Revenue: decimal.Zero,
		}
	}

	for _, o := range orders {
		idx := monthIndex(o.CreatedAt) - first
		if idx < 0 || idx >= trendWindowMonths {
			continue
		}
		points[idx].Revenue = points[idx].Revenue.Add(o.TotalPrice)
		points[idx].OrderCount++
	}

	for _, c := range customers {
		idx := monthIndex(c.CreatedAt) - first
		if idx < 0 || idx >= trendWindowMonths {
			continue
		}
		points[idx].CustomerCount++
	}

	return points
}

// CustomerGrowth is the 12-month new-customer signup series.
func (a *Aggregator) CustomerGrowth(customers []entity.Customer) []dto.GrowthPoint {
	series := a.TimeSeries(nil, customers)
	growth := make([]dto.GrowthPoint, len(series))
	for i, p := range series {
		growth[i] = dto.GrowthPoint{Period: p.Period, Customers: p.CustomerCount}
	}
	return growth
}
