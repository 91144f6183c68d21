package upstream

import (
	"context"
	"net/http"
	"net/url"

	"southhorizon/internal/domain"
)

// Cart fetches the authoritative cart for the bearer token.
func (c *Client) Cart(ctx context.Context, token string) (domain.Cart, error) {
	var cart domain.Cart
	if err := c.send(ctx, http.MethodGet, token, "/api/cart", nil, &cart); err != nil {
		return domain.Cart{}, err
	}
	cart.Reconcile()
	return cart, nil
}

func (c *Client) AddToCart(ctx context.Context, token, productID string, qty int) error {
	body := map[string]any{"productId": productID, "quantity": qty}
	return c.send(ctx, http.MethodPost, token, "/api/cart/add", body, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, token, itemID string, qty int) error {
	body := map[string]any{"quantity": qty}
	return c.send(ctx, http.MethodPut, token, "/api/cart/items/"+url.PathEscape(itemID), body, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, token, itemID string) error {
	return c.send(ctx, http.MethodDelete, token, "/api/cart/items/"+url.PathEscape(itemID), nil, nil)
}

// ApplyCoupon applies a normalized coupon code and returns the
// server-computed discount and new total.
func (c *Client) ApplyCoupon(ctx context.Context, token, code string) (domain.ApplyCouponResult, error) {
	var res domain.ApplyCouponResult
	body := map[string]string{"couponCode": code}
	if err := c.send(ctx, http.MethodPost, token, "/api/cart/apply-coupon", body, &res); err != nil {
		return domain.ApplyCouponResult{}, err
	}
	return res, nil
}

func (c *Client) RemoveCoupon(ctx context.Context, token string) error {
	return c.send(ctx, http.MethodDelete, token, "/api/cart/remove-coupon", nil, nil)
}
