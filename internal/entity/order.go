package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses used by the upstream API.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// OrderItem is a single order line: a product reference with the unit
// price charged and the quantity bought.
type OrderItem struct {
	Product  ProductRef      `json:"product"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Subtotal is unit price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Address is the order shipping address.
type Address struct {
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Order is an upstream order. TotalPrice is assumed to equal the sum of
// line subtotals; the source system owns that invariant and it is not
// re-checked here.
type Order struct {
	ID              string          `json:"_id"`
	User            UserRef         `json:"user"`
	Items           []OrderItem     `json:"orderItems"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	PaymentStatus   string          `json:"paymentStatus,omitempty"`
	Status          string          `json:"status,omitempty"`
	Paid            bool            `json:"isPaid"`
	Delivered       bool            `json:"isDelivered"`
	CreatedAt       time.Time       `json:"createdAt"`
	ShippingAddress *Address        `json:"shippingAddress,omitempty"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
}

// Valid reports whether the order is usable for aggregation: it needs an
// id and a parseable creation timestamp.
func (o Order) Valid() bool {
	return o.ID != "" && !o.CreatedAt.IsZero()
}

// DisplayStatus resolves the status shown on the dashboard. Payment
// status wins, then the raw status field, then the delivery and payment
// flags.
func (o Order) DisplayStatus() string {
	switch {
	case o.PaymentStatus != "":
		return o.PaymentStatus
	case o.Status != "":
		return o.Status
	case o.Delivered:
		return "Delivered"
	case o.Paid:
		return "Paid"
	default:
		return "Pending"
	}
}

// TotalItems sums line item quantities.
func (o Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
