package analytics

import (
	"context"
	"log/slog"

	"github.com/shopdirect/shopdirect-manager/internal/dto"
	"github.com/shopdirect/shopdirect-manager/internal/query"
)

// Service composes the read path with the aggregator: one parallel
// collection fetch per request, then pure derivation. View models are
// rebuilt on every call and never stored.
type Service struct {
	q      *query.Querier
	agg    *Aggregator
	logger *slog.Logger
}

// NewService builds the analytics service.
func NewService(q *query.Querier, agg *Aggregator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{q: q, agg: agg, logger: logger}
}

// Dashboard assembles the dashboard payload.
func (s *Service) Dashboard(ctx context.Context) (dto.Dashboard, error) {
	orders, customers, products, err := s.q.Collections(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "dashboard collections fetch failed", slog.String("err", err.Error()))
		return dto.Dashboard{}, err
	}

	return dto.Dashboard{
		Stats:           s.agg.Summary(orders, customers, products),
		SalesData:       s.agg.TimeSeries(orders, customers),
		CategoryData:    s.agg.CategoryBreakdown(orders, products.Products),
		RecentOrders:    s.agg.RecentOrders(orders, s.agg.cfg.RecentOrders),
		PopularProducts: s.agg.PopularProducts(orders, products.Products, s.agg.cfg.PopularProducts),
	}, nil
}

// Analytics assembles the analytics-page payload.
func (s *Service) Analytics(ctx context.Context) (dto.Analytics, error) {
	orders, customers, products, err := s.q.Collections(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "analytics collections fetch failed", slog.String("err", err.Error()))
		return dto.Analytics{}, err
	}

	return dto.Analytics{
		Stats:            s.agg.Summary(orders, customers, products),
		SalesData:        s.agg.TimeSeries(orders, customers),
		CategoryData:     s.agg.CategoryBreakdown(orders, products.Products),
		TopProducts:      s.agg.TopProducts(orders, s.agg.cfg.TopProducts),
		CustomerSegments: s.agg.CustomerSegments(customers, orders),
		CustomerGrowth:   s.agg.CustomerGrowth(customers),
	}, nil
}

// ProductDetails couples a product with its derived insight card.
func (s *Service) ProductDetails(ctx context.Context, id string) (dto.ProductDetails, error) {
	product, err := s.q.ProductByID(ctx, id)
	if err != nil {
		return dto.ProductDetails{}, err
	}

	orders, _, products, err := s.q.Collections(ctx)
	if err != nil {
		return dto.ProductDetails{}, err
	}

	performance := s.agg.ProductPerformance(orders, products.Products)
	return dto.ProductDetails{
		Product: *product,
		Insight: s.agg.ProductInsight(*product, performance),
	}, nil
}
