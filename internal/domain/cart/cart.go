// Package cart holds the client-side projection of the server cart.
// The projection is always replaced wholesale from a server snapshot;
// totals are never computed locally.
package cart

// ProductRef identifies the product a line item refers to.
type ProductRef struct {
	ID         string `json:"id" yaml:"id"`
	DatabaseID int64  `json:"database_id,omitempty" yaml:"database_id,omitempty"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Slug       string `json:"slug,omitempty" yaml:"slug,omitempty"`
}

// Item is a cart line. Key is the server-issued line key used by update
// and remove mutations.
type Item struct {
	Key      string     `json:"key" yaml:"key"`
	Product  ProductRef `json:"product" yaml:"product"`
	Quantity int        `json:"quantity" yaml:"quantity"`
	Subtotal string     `json:"subtotal,omitempty" yaml:"subtotal,omitempty"`
	Total    string     `json:"total,omitempty" yaml:"total,omitempty"`
}

// Cart is the server cart snapshot.
type Cart struct {
	Items    []Item `json:"items" yaml:"items"`
	Subtotal string `json:"subtotal,omitempty" yaml:"subtotal,omitempty"`
	Total    string `json:"total,omitempty" yaml:"total,omitempty"`
}

// Clone returns a deep copy.
func (c Cart) Clone() Cart {
	out := c
	if c.Items != nil {
		out.Items = make([]Item, len(c.Items))
		copy(out.Items, c.Items)
	}
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Quantity returns the total number of units across all lines.
func (c Cart) Quantity() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Find returns the line with the given key.
func (c Cart) Find(key string) (Item, bool) {
	for _, it := range c.Items {
		if it.Key == key {
			return it, true
		}
	}
	return Item{}, false
}

// Status is the state of the cart flow, for loading indicators.
type Status int

const (
	StatusIdle Status = iota
	StatusMutating
	StatusRefetching
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusMutating:
		return "mutating"
	case StatusRefetching:
		return "refetching"
	default:
		return "idle"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
