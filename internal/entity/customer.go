package entity

import "time"

// Customer is an upstream user record. Orders is a denormalized
// back-reference some endpoints populate for display; it is never used
// for aggregation.
type Customer struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role,omitempty"`
	Photo     string    `json:"photo,omitempty"`
	Active    bool      `json:"active,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	Orders    []Order   `json:"orders,omitempty"`
}
