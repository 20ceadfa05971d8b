package shopapi

import (
	"bytes"
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/shopdirect/shopdirect-manager/internal/entity"
)

// ListParams are the product listing filters forwarded upstream.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Sort     string
}

func (p ListParams) query() map[string]string {
	q := map[string]string{}
	if p.Page > 1 {
		q["page"] = strconv.Itoa(p.Page)
	}
	if p.Limit > 0 && p.Limit != 10 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	if p.Category != "" && p.Category != "all" {
		q["category"] = p.Category
	}
	if p.Sort != "" {
		q["sort"] = p.Sort
	}
	return q
}

// Upload is a file part of a multipart product mutation.
type Upload struct {
	Filename string
	Content  []byte
}

// ProductInput is the create/update payload. The upstream accepts it as
// multipart form data with optional image parts.
type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	ImageCover  *Upload         `json:"-"`
	Images      []Upload        `json:"-"`
}

// Products lists products with the given filters. The pagination totals
// from the envelope ride along in the returned list.
func (c *Client) Products(ctx context.Context, params ListParams) (entity.ProductList, error) {
	env, err := c.get(ctx, "/products", params.query(), "Failed to fetch products")
	if err != nil {
		return entity.ProductList{}, err
	}
	products, err := decodeList[entity.Product](env.Data, "products")
	if err != nil {
		return entity.ProductList{}, err
	}
	return entity.ProductList{Products: products, Total: env.Total, Results: env.Results}, nil
}

// ProductByID fetches a single product.
func (c *Client) ProductByID(ctx context.Context, id string) (*entity.Product, error) {
	env, err := c.get(ctx, "/products/"+id, nil, "Failed to fetch product")
	if err != nil {
		return nil, err
	}
	return decodeObject[entity.Product](env.Data, "product")
}

// Categories lists all product categories.
func (c *Client) Categories(ctx context.Context) ([]entity.Category, error) {
	env, err := c.get(ctx, "/categories", nil, "Failed to fetch categories")
	if err != nil {
		return nil, err
	}
	return decodeList[entity.Category](env.Data, "categories")
}

// CreateProduct submits a new product as multipart form data.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	req := c.productForm(ctx, in)
	resp, err := req.Post("/products")
	env, err := decodeResponse(resp, err, "Failed to create product")
	if err != nil {
		return nil, err
	}
	return decodeObject[entity.Product](env.Data, "product")
}

// UpdateProduct patches an existing product as multipart form data.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	req := c.productForm(ctx, in)
	resp, err := req.Patch("/products/" + id)
	env, err := decodeResponse(resp, err, "Failed to update product")
	if err != nil {
		return nil, err
	}
	return decodeObject[entity.Product](env.Data, "product")
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	resp, err := c.cli.R().SetContext(ctx).Delete("/products/" + id)
	if err != nil {
		return networkError("Failed to delete product", err)
	}
	if resp.IsError() {
		return statusError(resp.StatusCode(), resp.Body(), "Failed to delete product")
	}
	return nil
}

func (c *Client) productForm(ctx context.Context, in ProductInput) *resty.Request {
	req := c.cli.R().SetContext(ctx)
	req.SetMultipartFormData(map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"price":       in.Price.String(),
		"category":    in.Category,
	})
	if in.ImageCover != nil {
		req.SetMultipartField("imageCover", in.ImageCover.Filename, "application/octet-stream", bytes.NewReader(in.ImageCover.Content))
	}
	for _, img := range in.Images {
		req.SetMultipartField("images", img.Filename, "application/octet-stream", bytes.NewReader(img.Content))
	}
	return req
}
