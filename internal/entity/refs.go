package entity

import (
	"bytes"
	"encoding/json"
)

// CategoryRef is a category field as the upstream actually serializes
// it: null, a bare string, an object with a name or title, or in legacy
// records an arbitrary blob. The raw payload is preserved so re-encoding
// round-trips whatever the upstream sent.
type CategoryRef struct {
	raw  json.RawMessage
	name string
}

// NewCategoryRef builds a ref from a plain category name.
func NewCategoryRef(name string) CategoryRef {
	raw, _ := json.Marshal(name)
	return CategoryRef{raw: raw, name: name}
}

func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	c.raw = append(c.raw[:0], data...)
	c.name = ""

	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.name = s
		return nil
	}

	var obj struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if obj.Name != "" {
			c.name = obj.Name
			return nil
		}
		if obj.Title != "" {
			c.name = obj.Title
			return nil
		}
	}

	// Anything else degrades to its compact serialization rather than
	// failing the enclosing product decode.
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err == nil {
		c.name = buf.String()
	}
	return nil
}

func (c CategoryRef) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	if c.name == "" {
		return []byte("null"), nil
	}
	return json.Marshal(c.name)
}

// DisplayName is the normalized category label, "Uncategorized" when the
// record carried none.
func (c CategoryRef) DisplayName() string {
	if c.name == "" {
		return "Uncategorized"
	}
	return c.name
}

// ProductRef is an order line's product field: either an id string or an
// embedded product document, depending on whether the upstream populated
// the reference.
type ProductRef struct {
	ID      string
	Product *Product
}

func (p *ProductRef) UnmarshalJSON(data []byte) error {
	p.ID = ""
	p.Product = nil

	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		p.ID = id
		return nil
	}

	var prd Product
	if err := json.Unmarshal(data, &prd); err != nil {
		return err
	}
	p.ID = prd.ID
	p.Product = &prd
	return nil
}

func (p ProductRef) MarshalJSON() ([]byte, error) {
	if p.Product != nil {
		return json.Marshal(p.Product)
	}
	if p.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(p.ID)
}

// Resolved reports whether the embedded product document is present.
func (p ProductRef) Resolved() bool {
	return p.Product != nil
}

// Name is the product name, "Unknown Product" when only an id or nothing
// was populated.
func (p ProductRef) Name() string {
	if p.Product != nil && p.Product.Name != "" {
		return p.Product.Name
	}
	return "Unknown Product"
}

// Matches reports whether the ref points at the given product id.
func (p ProductRef) Matches(id string) bool {
	if id == "" {
		return false
	}
	return p.ID == id
}

// UserRef is an order's user field: an id string or an embedded customer
// document.
type UserRef struct {
	ID   string
	User *Customer
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	u.ID = ""
	u.User = nil

	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		u.ID = id
		return nil
	}

	var cust Customer
	if err := json.Unmarshal(data, &cust); err != nil {
		return err
	}
	u.ID = cust.ID
	u.User = &cust
	return nil
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	if u.User != nil {
		return json.Marshal(u.User)
	}
	if u.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(u.ID)
}

// Key is the identity the segment counters group by: the id when
// present, else the embedded document's email. Empty means the order
// cannot be attributed.
func (u UserRef) Key() string {
	if u.ID != "" {
		return u.ID
	}
	if u.User != nil {
		return u.User.Email
	}
	return ""
}

// DisplayName resolves a label for dashboards: name, then email, then
// id, then a placeholder.
func (u UserRef) DisplayName() string {
	if u.User != nil {
		if u.User.Name != "" {
			return u.User.Name
		}
		if u.User.Email != "" {
			return u.User.Email
		}
	}
	if u.ID != "" {
		return u.ID
	}
	return "Unknown Customer"
}
