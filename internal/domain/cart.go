package domain

// Cart is the single server-side cart owned by a user.
type Cart struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`
}

// CartLine is a cart item joined with its product.
type CartLine struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// CartView is the read model returned by every cart operation. It is rebuilt
// from the store on each read.
type CartView struct {
	CartID   int64      `json:"cartId"`
	Items    []CartLine `json:"items"`
	Subtotal int64      `json:"subtotal"`
}

// NewCartView builds a view over lines and computes the subtotal.
func NewCartView(cartID int64, lines []CartLine) *CartView {
	if lines == nil {
		lines = []CartLine{}
	}
	var subtotal int64
	for _, l := range lines {
		subtotal += l.Product.PriceCents * int64(l.Qty)
	}
	return &CartView{CartID: cartID, Items: lines, Subtotal: subtotal}
}

// ItemCount sums quantities across all lines.
func (v *CartView) ItemCount() int {
	n := 0
	for _, l := range v.Items {
		n += l.Qty
	}
	return n
}

// Order is the result of a simulated checkout. It is never persisted.
type Order struct {
	OrderID    int64 `json:"orderId"`
	TotalCents int64 `json:"total_cents"`
}
