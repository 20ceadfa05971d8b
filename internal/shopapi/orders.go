package shopapi

import (
	"context"

	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// Orders lists all orders.
func (c *Client) Orders(ctx context.Context) ([]entity.Order, error) {
	env, err := c.get(ctx, "/orders", nil, "Failed to fetch orders")
	if err != nil {
		return nil, err
	}
	return decodeList[entity.Order](env.Data, "orders")
}

// OrderByID fetches a single order.
func (c *Client) OrderByID(ctx context.Context, id string) (*entity.Order, error) {
	env, err := c.get(ctx, "/orders/"+id, nil, "Failed to fetch order")
	if err != nil {
		return nil, err
	}
	return decodeObject[entity.Order](env.Data, "order")
}

// DeliverOrder marks an order delivered. The upstream may or may not
// return the updated order; a nil order with a nil error means the
// mutation succeeded without a body.
func (c *Client) DeliverOrder(ctx context.Context, id string) (*entity.Order, error) {
	resp, err := c.cli.R().SetContext(ctx).Patch("/orders/" + id + "/deliver")
	env, err := decodeResponse(resp, err, "Failed to mark order as delivered")
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 {
		return nil, nil
	}
	return decodeObject[entity.Order](env.Data, "order")
}
