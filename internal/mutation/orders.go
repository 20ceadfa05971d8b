package mutation

import (
	"context"

	"github.com/shopdirect/shopdirect-manager/internal/cache"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// DeliverOrder optimistically flags the order as delivered in both the
// cached list and the single-order view, then submits the transition
// upstream. Status transitions are never retried.
func (c *Coordinator) DeliverOrder(ctx context.Context, id string) (*entity.Order, error) {
	listKey := cache.CollectionKey(cache.Orders)
	entityKey := cache.EntityKey(cache.Orders, id)
	m := c.begin(listKey, entityKey)

	if orders, ok := cache.Value[[]entity.Order](c.cache, listKey); ok {
		c.cache.Set(listKey, markDelivered(orders, id))
	}
	if order, ok := cache.Value[entity.Order](c.cache, entityKey); ok {
		order.Delivered = true
		c.cache.Set(entityKey, order)
	}

	delivered, err := c.api.DeliverOrder(ctx, id)
	if err != nil {
		m.rollback()
		c.notifyOutcome("order", "update", err)
		c.settle(ctx, m)
		return nil, err
	}

	// Some upstream deployments return the updated order, some reply
	// with an empty body. Only an authoritative body overwrites the
	// optimistic entry; either way the settle refetch reconciles.
	if delivered != nil {
		if orders, ok := cache.Value[[]entity.Order](c.cache, listKey); ok {
			c.cache.Set(listKey, swapOrder(orders, id, *delivered))
		}
		c.cache.Set(entityKey, *delivered)
	}
	c.cache.Invalidate(listKey, entityKey)

	m.commit()
	c.notifyOutcome("order", "update", nil)
	c.settle(ctx, m)
	return delivered, nil
}

func markDelivered(orders []entity.Order, id string) []entity.Order {
	out := make([]entity.Order, len(orders))
	copy(out, orders)
	for i := range out {
		if out[i].ID == id {
			out[i].Delivered = true
		}
	}
	return out
}

func swapOrder(orders []entity.Order, id string, replacement entity.Order) []entity.Order {
	out := make([]entity.Order, len(orders))
	copy(out, orders)
	for i := range out {
		if out[i].ID == id {
			out[i] = replacement
		}
	}
	return out
}
