package upstream

import (
	"context"
	"net/http"
	"net/url"

	"southhorizon/internal/domain"
)

// AvailableCoupons lists the coupons the user may apply.
func (c *Client) AvailableCoupons(ctx context.Context, token string) ([]domain.Coupon, error) {
	raw, err := c.do(ctx, http.MethodGet, token, "/api/coupons/available", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[domain.Coupon](raw, "coupons"), nil
}

// ValidateCoupon pre-checks a code without mutating the cart.
func (c *Client) ValidateCoupon(ctx context.Context, token, code string) (domain.CouponValidation, error) {
	var v domain.CouponValidation
	if err := c.send(ctx, http.MethodGet, token, "/api/coupons/validate/"+url.PathEscape(code), nil, &v); err != nil {
		return domain.CouponValidation{}, err
	}
	return v, nil
}
