package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "southhorizon/internal/log"
	"southhorizon/internal/services"
)

type CouponHandler struct {
	Coupons *services.CouponService
	Cart    *services.CartService
}

// Available lists the user's coupons with savings previewed against
// the current cart subtotal.
func (h *CouponHandler) Available(c *fiber.Ctx) error {
	sess := session(c)
	cart := h.Cart.View(c.Context(), sess)
	list, err := h.Coupons.Available(c.Context(), sess, cart.Total)
	if err != nil {
		applog.Error(c, "coupons.list.fail", err, nil)
		return upstreamDown(c, "could not load coupons")
	}
	return c.JSON(fiber.Map{"coupons": list})
}

func (h *CouponHandler) Validate(c *fiber.Ctx) error {
	v, err := h.Coupons.Validate(c.Context(), session(c), c.Params("code"))
	if errors.Is(err, services.ErrBadCoupon) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(v)
	}
	if err != nil {
		applog.Error(c, "coupon.validate.fail", err, nil)
		return upstreamDown(c, "could not validate coupon")
	}
	return c.JSON(v)
}

func (h *CouponHandler) Apply(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	cart, err := h.Coupons.Apply(c.Context(), session(c), req.Code)
	if errors.Is(err, services.ErrBadCoupon) {
		return badRequest(c, err.Error())
	}
	if err != nil {
		applog.Error(c, "coupon.apply.fail", err, map[string]any{"code": req.Code})
		return upstreamDown(c, "could not apply coupon")
	}
	applog.Audit(c, "coupon.apply", map[string]any{"code": cart.Coupon, "discount": cart.Discount})
	return c.JSON(cart)
}

func (h *CouponHandler) Remove(c *fiber.Ctx) error {
	cart, err := h.Coupons.Remove(c.Context(), session(c))
	if err != nil {
		applog.Error(c, "coupon.remove.fail", err, nil)
		return upstreamDown(c, "could not remove coupon")
	}
	applog.Audit(c, "coupon.remove", nil)
	return c.JSON(cart)
}
