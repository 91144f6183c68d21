package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"southhorizon/internal/domain"
	"southhorizon/internal/store"
	"southhorizon/internal/upstream"
	"southhorizon/internal/validate"
)

// CouponService applies and removes coupon codes, keeping local cart
// totals consistent with whatever the server confirms. Apply/remove
// hold the same per-session lock as quantity mutations, so they never
// race a cart refresh.
type CouponService struct {
	API   *upstream.Client
	State *store.Store
}

func NewCouponService(api *upstream.Client, state *store.Store) *CouponService {
	return &CouponService{API: api, State: state}
}

// Apply sends the normalized code and patches local totals from the
// server's reply. A failed apply leaves the cart untouched.
func (s *CouponService) Apply(ctx context.Context, sess domain.Session, code string) (domain.Cart, error) {
	code, ok := validate.CouponCode(code)
	if !ok {
		return domain.Cart{}, ErrBadCoupon
	}
	unlock := s.State.LockCart(sess.SID)
	defer unlock()

	res, err := s.API.ApplyCoupon(ctx, sess.Token, code)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("apply coupon: %w", err)
	}

	var out domain.Cart
	s.State.PatchCart(sess.SID, func(c *domain.Cart) {
		c.Discount = res.Discount
		c.FinalTotal = res.NewTotal
		c.Coupon = code
		out = *c
	})
	return out, nil
}

// Remove clears the coupon and resets totals to the pre-discount
// subtotal already held locally.
func (s *CouponService) Remove(ctx context.Context, sess domain.Session) (domain.Cart, error) {
	unlock := s.State.LockCart(sess.SID)
	defer unlock()

	if err := s.API.RemoveCoupon(ctx, sess.Token); err != nil {
		return domain.Cart{}, fmt.Errorf("remove coupon: %w", err)
	}

	var out domain.Cart
	s.State.PatchCart(sess.SID, func(c *domain.Cart) {
		c.Discount = 0
		c.FinalTotal = c.Total
		c.Coupon = ""
		out = *c
	})
	return out, nil
}

// Validate pre-checks a code without mutating anything. An invalid
// code surfaces the server's message behind ErrBadCoupon.
func (s *CouponService) Validate(ctx context.Context, sess domain.Session, code string) (domain.CouponValidation, error) {
	code, ok := validate.CouponCode(code)
	if !ok {
		return domain.CouponValidation{Message: "malformed coupon code"}, ErrBadCoupon
	}
	v, err := s.API.ValidateCoupon(ctx, sess.Token, code)
	if err != nil {
		return domain.CouponValidation{}, err
	}
	if !v.Valid {
		return v, fmt.Errorf("%w: %s", ErrBadCoupon, v.Message)
	}
	return v, nil
}

// AvailableCoupon decorates a coupon with what the current cart would
// save and whether the validity window is about to close.
type AvailableCoupon struct {
	domain.Coupon
	ExpiringSoon bool    `json:"expiringSoon"`
	Preview      float64 `json:"preview"`
}

// Available lists the user's applicable coupons against the given
// subtotal.
func (s *CouponService) Available(ctx context.Context, sess domain.Session, subtotal float64) ([]AvailableCoupon, error) {
	list, err := s.API.AvailableCoupons(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]AvailableCoupon, 0, len(list))
	for _, c := range list {
		out = append(out, AvailableCoupon{
			Coupon:       c,
			ExpiringSoon: c.ExpiringSoon(now),
			Preview:      PreviewDiscount(c, subtotal),
		})
	}
	return out, nil
}

// PreviewDiscount computes what a coupon would take off a subtotal.
// Display-only; the server's apply result stays authoritative. Math is
// decimal so percentage previews don't drift from the server's paise.
func PreviewDiscount(c domain.Coupon, subtotal float64) float64 {
	if !c.IsActive || subtotal <= 0 {
		return 0
	}
	sub := decimal.NewFromFloat(subtotal)
	if sub.LessThan(decimal.NewFromFloat(c.MinOrderAmount)) {
		return 0
	}

	var d decimal.Decimal
	switch c.DiscountType {
	case "percentage":
		d = sub.Mul(decimal.NewFromFloat(c.DiscountValue)).Div(decimal.NewFromInt(100))
		if c.MaxDiscountAmount != nil {
			if maxD := decimal.NewFromFloat(*c.MaxDiscountAmount); d.GreaterThan(maxD) {
				d = maxD
			}
		}
	case "fixed":
		d = decimal.NewFromFloat(c.DiscountValue)
	default:
		return 0
	}
	if d.GreaterThan(sub) {
		d = sub
	}
	f, _ := d.Round(2).Float64()
	return f
}
