package mutation

import (
	"context"
	"fmt"

	"github.com/shopdirect/shopdirect-manager/internal/cache"
	"github.com/shopdirect/shopdirect-manager/internal/entity"
	"github.com/shopdirect/shopdirect-manager/internal/shopapi"
)

// CreateProduct optimistically prepends a synthesized product to the
// cached list, then submits the create upstream. On success the
// temporary entity is swapped for the authoritative one; on failure the
// pre-mutation snapshot is restored. Either way the products collection
// is reconciled on settle. Creates are never retried; a duplicated
// create is worse than a surfaced failure.
func (c *Coordinator) CreateProduct(ctx context.Context, in shopapi.ProductInput) (*entity.Product, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("mutation: invalid product input: %w", err)
	}

	listKey := cache.CollectionKey(cache.Products)
	m := c.begin(listKey)

	optimistic := entity.Product{
		ID:          c.newID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    entity.NewCategoryRef(in.Category),
		CreatedAt:   c.now(),
	}

	list, _ := cache.Value[entity.ProductList](c.cache, listKey)
	c.cache.Set(listKey, prependProduct(list, optimistic))

	created, err := c.api.CreateProduct(ctx, in)
	if err != nil {
		m.rollback()
		c.notifyOutcome("product", "create", err)
		c.settle(ctx, m)
		return nil, err
	}

	if current, ok := cache.Value[entity.ProductList](c.cache, listKey); ok {
		c.cache.Set(listKey, swapProduct(current, optimistic.ID, *created))
	}
	c.cache.Set(cache.EntityKey(cache.Products, created.ID), *created)
	c.cache.Invalidate(listKey)

	m.commit()
	c.notifyOutcome("product", "create", nil)
	c.settle(ctx, m)
	return created, nil
}

// UpdateProduct writes a shallow merge of the cached product and the
// patch into both the list and the single-entity views, then submits
// the update upstream.
func (c *Coordinator) UpdateProduct(ctx context.Context, id string, in shopapi.ProductInput) (*entity.Product, error) {
	if err := c.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("mutation: invalid product input: %w", err)
	}

	listKey := cache.CollectionKey(cache.Products)
	entityKey := cache.EntityKey(cache.Products, id)
	m := c.begin(listKey, entityKey)

	base, ok := cache.Value[entity.Product](c.cache, entityKey)
	if !ok {
		if list, found := cache.Value[entity.ProductList](c.cache, listKey); found {
			for _, p := range list.Products {
				if p.ID == id {
					base = p
					break
				}
			}
		}
	}
	base.ID = id
	optimistic := mergeProduct(base, in)

	if list, found := cache.Value[entity.ProductList](c.cache, listKey); found {
		c.cache.Set(listKey, swapProduct(list, id, optimistic))
	}
	c.cache.Set(entityKey, optimistic)

	updated, err := c.api.UpdateProduct(ctx, id, in)
	if err != nil {
		m.rollback()
		c.notifyOutcome("product", "update", err)
		c.settle(ctx, m)
		return nil, err
	}

	if list, found := cache.Value[entity.ProductList](c.cache, listKey); found {
		c.cache.Set(listKey, swapProduct(list, id, *updated))
	}
	c.cache.Set(entityKey, *updated)
	c.cache.Invalidate(listKey, entityKey)

	m.commit()
	c.notifyOutcome("product", "update", nil)
	c.settle(ctx, m)
	return updated, nil
}

// DeleteProduct optimistically removes the product from the cached
// views, then submits the delete upstream. Deletes are never retried.
func (c *Coordinator) DeleteProduct(ctx context.Context, id string) error {
	listKey := cache.CollectionKey(cache.Products)
	entityKey := cache.EntityKey(cache.Products, id)
	m := c.begin(listKey, entityKey)

	if list, found := cache.Value[entity.ProductList](c.cache, listKey); found {
		c.cache.Set(listKey, removeProduct(list, id))
	}
	c.cache.Delete(entityKey)

	if err := c.api.DeleteProduct(ctx, id); err != nil {
		m.rollback()
		c.notifyOutcome("product", "delete", err)
		c.settle(ctx, m)
		return err
	}

	c.cache.Invalidate(listKey)

	m.commit()
	c.notifyOutcome("product", "delete", nil)
	c.settle(ctx, m)
	return nil
}

func prependProduct(list entity.ProductList, p entity.Product) entity.ProductList {
	products := make([]entity.Product, 0, len(list.Products)+1)
	products = append(products, p)
	products = append(products, list.Products...)
	out := list
	out.Products = products
	if out.Total > 0 {
		out.Total++
	}
	if out.Results > 0 {
		out.Results++
	}
	return out
}

func swapProduct(list entity.ProductList, id string, replacement entity.Product) entity.ProductList {
	products := make([]entity.Product, len(list.Products))
	copy(products, list.Products)
	for i := range products {
		if products[i].ID == id {
			products[i] = replacement
		}
	}
	out := list
	out.Products = products
	return out
}

func removeProduct(list entity.ProductList, id string) entity.ProductList {
	products := make([]entity.Product, 0, len(list.Products))
	removed := 0
	for _, p := range list.Products {
		if p.ID == id {
			removed++
			continue
		}
		products = append(products, p)
	}
	out := list
	out.Products = products
	if out.Total >= removed {
		out.Total -= removed
	}
	if out.Results >= removed {
		out.Results -= removed
	}
	return out
}

// mergeProduct is the shallow merge for optimistic updates: patch
// fields replace base fields, identity and aggregates stay.
func mergeProduct(base entity.Product, in shopapi.ProductInput) entity.Product {
	merged := base
	if in.Name != "" {
		merged.Name = in.Name
	}
	if in.Description != "" {
		merged.Description = in.Description
	}
	if !in.Price.IsZero() {
		merged.Price = in.Price
	}
	if in.Category != "" {
		merged.Category = entity.NewCategoryRef(in.Category)
	}
	return merged
}
