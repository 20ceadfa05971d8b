package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an upstream catalog product.
type Product struct {
	ID              string          `json:"_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Category        CategoryRef     `json:"category,omitempty"`
	StockQuantity   int             `json:"stockQuantity,omitempty"`
	RatingsAverage  float64         `json:"ratingsAverage,omitempty"`
	RatingsQuantity int             `json:"ratingsQuantity,omitempty"`
	ImageCover      string          `json:"imageCover,omitempty"`
	Images          []string        `json:"images,omitempty"`
	CreatedAt       time.Time       `json:"createdAt,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt,omitempty"`
}

// ProductList is the upstream product listing envelope. Total and Results
// come from the pagination metadata and may exceed len(Products) when the
// listing is paged.
type ProductList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total,omitempty"`
	Results  int       `json:"results,omitempty"`
}

// Count returns the authoritative product count: the paging total when
// present, then the results count, then the page length.
func (l ProductList) Count() int {
	if l.Total > 0 {
		return l.Total
	}
	if l.Results > 0 {
		return l.Results
	}
	return len(l.Products)
}

// Category is an upstream product category.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
