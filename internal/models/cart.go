package models

// CartLine is one product entry in the cart. Lines are unique by ProductID;
// adding the same product again merges into the existing line.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// Valid reports whether the line is structurally usable for an outbound
// payload. Stale persisted carts can carry corrupt lines; those are skipped
// on the wire but left in place locally.
func (l CartLine) Valid() bool {
	return l.ProductID != "" && l.UnitPrice >= 0 && l.Quantity > 0
}

// Cart is an ordered list of lines; insertion order is display order.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Find returns the index of the line with the given product id, or -1.
func (c Cart) Find(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so readers never observe mid-mutation state.
func (c Cart) Clone() Cart {
	if len(c.Lines) == 0 {
		return Cart{}
	}
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{Lines: lines}
}
