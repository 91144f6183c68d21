package domain

type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
}

// Cart is the server-authoritative cart. Totals come from the remote API;
// Reconcile repairs them when the response omits fields.
type Cart struct {
	Items      []CartItem `json:"items"`
	Total      float64    `json:"total"`
	Discount   float64    `json:"discount"`
	FinalTotal float64    `json:"finalTotal"`
	Coupon     string     `json:"coupon"` // empty when no coupon applied
}

// Reconcile enforces the totals invariant: with a coupon applied
// finalTotal = total - discount, otherwise discount = 0 and
// finalTotal = total.
func (c *Cart) Reconcile() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	if c.Coupon == "" {
		c.Discount = 0
		c.FinalTotal = c.Total
		return
	}
	if c.FinalTotal == 0 && c.Total != 0 {
		c.FinalTotal = c.Total - c.Discount
	}
}

// EmptyCart is the safe fallback when the cart cannot be fetched.
func EmptyCart() Cart {
	return Cart{Items: []CartItem{}}
}

type ApplyCouponResult struct {
	Discount float64 `json:"discount"`
	NewTotal float64 `json:"newTotal"`
}
