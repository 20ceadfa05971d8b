package query

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shopdirect/shopdirect-manager/internal/cache"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

// Config tunes the read path.
type Config struct {
	StaleTime  time.Duration `mapstructure:"stale_time"`
	RetryCount int           `mapstructure:"retry_count"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

func (c Config) withDefaults() Config {
	if c.StaleTime <= 0 {
		c.StaleTime = 5 * time.Minute
	}
	if c.RetryCount < 0 {
		c.RetryCount = 0
	} else if c.RetryCount == 0 {
		c.RetryCount = 2
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	return c
}

// Querier is the read path over the upstream API: cache-first reads with
// staleness tracking, bounded retry for transient failures, and per-key
// cancellable fetches so mutations can kill a stale refetch before it
// overwrites an optimistic write. Mutations are never routed through
// here and are never retried.
type Querier struct {
	api   *shopapi.Client
	cache *cache.Store
	cfg   Config
}

// New builds a querier.
func New(api *shopapi.Client, store *cache.Store, cfg Config) *Querier {
	return &Querier{api: api, cache: store, cfg: cfg.withDefaults()}
}

// Cache exposes the underlying store for the mutation coordinator.
func (q *Querier) Cache() *cache.Store {
	return q.cache
}

func fetch[T any](ctx context.Context, q *Querier, key cache.Key, load func(context.Context) (T, error)) (T, error) {
	if v, ok := cache.FreshValue[T](q.cache, key, q.cfg.StaleTime); ok {
		return v, nil
	}
	return refetch(ctx, q, key, load)
}

func refetch[T any](ctx context.Context, q *Querier, key cache.Key, load func(context.Context) (T, error)) (T, error) {
	var zero T

	fctx, cancel := context.WithCancel(ctx)
	defer cancel()
	token := q.cache.TrackInflight(key, cancel)
	defer q.cache.ClearInflight(key, token)

	v, err := load(fctx)
	for attempt := 0; err != nil && attempt < q.cfg.RetryCount; attempt++ {
		if fctx.Err() != nil || !shopapi.Retryable(err) {
			break
		}
		select {
		case <-time.After(q.cfg.RetryDelay):
		case <-fctx.Done():
			return zero, fctx.Err()
		}
		v, err = load(fctx)
	}

	if fctx.Err() != nil {
		return zero, fctx.Err()
	}
	if err != nil {
		return zero, err
	}

	// A cancelled fetch must never write: the cancellation means an
	// optimistic value owns the key until the mutation settles. The
	// write is conditional on the registration still being present, so
	// a fetch whose cancellation raced its completion is refused too.
	if !q.cache.SetIfInflight(key, token, v) {
		return zero, context.Canceled
	}
	return v, nil
}

// Products returns the cached product list, fetching when stale.
func (q *Querier) Products(ctx context.Context) (entity.ProductList, error) {
	return fetch(ctx, q, cache.CollectionKey(cache.Products), func(ctx context.Context) (entity.ProductList, error) {
		return q.api.Products(ctx, shopapi.ListParams{})
	})
}

// RefetchProducts forces a products fetch regardless of staleness.
func (q *Querier) RefetchProducts(ctx context.Context) (entity.ProductList, error) {
	return refetch(ctx, q, cache.CollectionKey(cache.Products), func(ctx context.Context) (entity.ProductList, error) {
		return q.api.Products(ctx, shopapi.ListParams{})
	})
}

// ProductByID returns a single cached product, fetching when stale.
func (q *Querier) ProductByID(ctx context.Context, id string) (*entity.Product, error) {
	return fetch(ctx, q, cache.EntityKey(cache.Products, id), func(ctx context.Context) (*entity.Product, error) {
		return q.api.ProductByID(ctx, id)
	})
}

// Orders returns the cached orders, fetching when stale.
func (q *Querier) Orders(ctx context.Context) ([]entity.Order, error) {
	return fetch(ctx, q, cache.CollectionKey(cache.Orders), func(ctx context.Context) ([]entity.Order, error) {
		return q.api.Orders(ctx)
	})
}

// RefetchOrders forces an orders fetch regardless of staleness.
func (q *Querier) RefetchOrders(ctx context.Context) ([]entity.Order, error) {
	return refetch(ctx, q, cache.CollectionKey(cache.Orders), func(ctx context.Context) ([]entity.Order, error) {
		return q.api.Orders(ctx)
	})
}

// OrderByID returns a single cached order, fetching when stale.
func (q *Querier) OrderByID(ctx context.Context, id string) (*entity.Order, error) {
	return fetch(ctx, q, cache.EntityKey(cache.Orders, id), func(ctx context.Context) (*entity.Order, error) {
		return q.api.OrderByID(ctx, id)
	})
}

// RefetchOrderByID forces a single-order fetch.
func (q *Querier) RefetchOrderByID(ctx context.Context, id string) (*entity.Order, error) {
	return refetch(ctx, q, cache.EntityKey(cache.Orders, id), func(ctx context.Context) (*entity.Order, error) {
		return q.api.OrderByID(ctx, id)
	})
}

// Customers returns the cached users, fetching when stale.
func (q *Querier) Customers(ctx context.Context) ([]entity.Customer, error) {
	return fetch(ctx, q, cache.CollectionKey(cache.Users), func(ctx context.Context) ([]entity.Customer, error) {
		return q.api.Users(ctx)
	})
}

// CustomerByID returns a single cached user, fetching when stale.
func (q *Querier) CustomerByID(ctx context.Context, id string) (*entity.Customer, error) {
	return fetch(ctx, q, cache.EntityKey(cache.Users, id), func(ctx context.Context) (*entity.Customer, error) {
		return q.api.UserByID(ctx, id)
	})
}

// Categories returns the cached categories, fetching when stale.
func (q *Querier) Categories(ctx context.Context) ([]entity.Category, error) {
	return fetch(ctx, q, cache.CollectionKey(cache.Categories), func(ctx context.Context) ([]entity.Category, error) {
		return q.api.Categories(ctx)
	})
}

// Collections fetches orders, customers and products in parallel, the
// aggregation inputs for a dashboard or analytics pass.
func (q *Querier) Collections(ctx context.Context) ([]entity.Order, []entity.Customer, entity.ProductList, error) {
	var (
		orders    []entity.Order
		customers []entity.Customer
		products  entity.ProductList
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = q.Orders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = q.Customers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = q.Products(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, entity.ProductList{}, err
	}
	return orders, customers, products, nil
}
