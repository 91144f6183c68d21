package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"southhorizon/internal/domain"
	applog "southhorizon/internal/log"
	"southhorizon/internal/payment"
	"southhorizon/internal/services"
	"southhorizon/internal/validate"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
	Payments payment.Notifier
}

// Begin loads (or reloads) the session's checkout. Always behind
// RequireUser, but the service gate stays as the final word.
func (h *CheckoutHandler) Begin(c *fiber.Ctx) error {
	co, err := h.Checkout.Begin(c.Context(), session(c))
	if errors.Is(err, services.ErrNotAuthenticated) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		applog.Error(c, "checkout.begin.fail", err, nil)
		return upstreamDown(c, "could not start checkout")
	}
	applog.Info(c, "checkout.begin", nil)
	return c.JSON(co.Snapshot())
}

// State returns the current snapshot so the page can poll after
// payment hand-off.
func (h *CheckoutHandler) State(c *fiber.Ctx) error {
	co, ok := h.Checkout.Active(session(c).SID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no checkout in progress"})
	}
	return c.JSON(co.Snapshot())
}

func (h *CheckoutHandler) active(c *fiber.Ctx) (*services.Checkout, error) {
	co, ok := h.Checkout.Active(session(c).SID)
	if !ok {
		return nil, c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no checkout in progress"})
	}
	return co, nil
}

func (h *CheckoutHandler) SelectAddress(c *fiber.Ctx) error {
	co, err := h.active(c)
	if co == nil {
		return err
	}
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid address id")
	}
	if err := co.SelectAddress(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "address not found"})
	}
	return c.JSON(co.Snapshot())
}

func (h *CheckoutHandler) AddAddress(c *fiber.Ctx) error {
	co, err := h.active(c)
	if co == nil {
		return err
	}
	var a domain.Address
	if err := c.BodyParser(&a); err != nil {
		return badRequest(c, "malformed body")
	}
	if msg, ok := checkAddress(&a); !ok {
		return badRequest(c, msg)
	}
	if err := h.Checkout.AddAddress(c.Context(), co, a); err != nil {
		applog.Error(c, "checkout.address.fail", err, nil)
		return upstreamDown(c, "could not save address")
	}
	return c.JSON(co.Snapshot())
}

func (h *CheckoutHandler) ApplyCoupon(c *fiber.Ctx) error {
	co, err := h.active(c)
	if co == nil {
		return err
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	if err := h.Checkout.ApplyCoupon(c.Context(), co, req.Code); err != nil {
		if errors.Is(err, services.ErrBadCoupon) {
			return badRequest(c, err.Error())
		}
		applog.Error(c, "checkout.coupon.fail", err, map[string]any{"code": req.Code})
		return upstreamDown(c, "could not apply coupon")
	}
	return c.JSON(co.Snapshot())
}

func (h *CheckoutHandler) RemoveCoupon(c *fiber.Ctx) error {
	co, err := h.active(c)
	if co == nil {
		return err
	}
	if err := h.Checkout.RemoveCoupon(c.Context(), co); err != nil {
		applog.Error(c, "checkout.coupon.remove.fail", err, nil)
		return upstreamDown(c, "could not remove coupon")
	}
	return c.JSON(co.Snapshot())
}

// PlaceOrder runs the Ready -> AwaitingPayment leg and hands the
// client what the payment widget needs.
func (h *CheckoutHandler) PlaceOrder(c *fiber.Ctx) error {
	co, err := h.active(c)
	if co == nil {
		return err
	}
	cs, err := h.Checkout.PlaceOrder(c.Context(), co)
	switch {
	case errors.Is(err, services.ErrNotReady):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrNoAddress), errors.Is(err, services.ErrEmptyCart):
		return badRequest(c, err.Error())
	case err != nil:
		applog.Error(c, "checkout.place.fail", err, nil)
		return upstreamDown(c, "could not place order")
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": co.OrderID(), "gateway_order_id": cs.GatewayOrderID})
	return c.JSON(fiber.Map{"payment": cs, "checkout": co.Snapshot()})
}

type paymentResult struct {
	GatewayOrderID string               `json:"gatewayOrderId"`
	Outcome        string               `json:"outcome"` // success | cancelled | failed
	Confirmation   payment.Confirmation `json:"confirmation"`
	Error          string               `json:"error"`
}

// PaymentResult is the widget's report-back endpoint. Exactly one
// outcome per gateway order is dispatched; replays find nothing
// pending and get 409.
func (h *CheckoutHandler) PaymentResult(c *fiber.Ctx) error {
	co, err := h.active(c)
	if co == nil {
		return err
	}
	var req paymentResult
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	if req.GatewayOrderID == "" {
		return badRequest(c, "missing gatewayOrderId")
	}
	switch req.Outcome {
	case "success":
		if req.Confirmation.PaymentID == "" || req.Confirmation.Signature == "" {
			return badRequest(c, "incomplete payment confirmation")
		}
	case "cancelled", "failed":
	default:
		return badRequest(c, "outcome must be success, cancelled or failed")
	}

	// only the checkout that initiated a payment may settle it; a
	// mismatched id must never reach the dispatcher
	if req.GatewayOrderID != co.GatewayOrderID() {
		applog.Security(c, "payment.result.foreign", map[string]any{"gateway_order_id": req.GatewayOrderID})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no pending payment for this order"})
	}

	var dispatched bool
	switch req.Outcome {
	case "success":
		dispatched = h.Payments.NotifySuccess(req.GatewayOrderID, req.Confirmation)
	case "cancelled":
		dispatched = h.Payments.NotifyCancel(req.GatewayOrderID)
	case "failed":
		msg := req.Error
		if msg == "" {
			msg = "payment declined"
		}
		dispatched = h.Payments.NotifyError(req.GatewayOrderID, msg)
	}
	if !dispatched {
		applog.Security(c, "payment.result.unmatched", map[string]any{"gateway_order_id": req.GatewayOrderID})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "no pending payment for this order"})
	}
	applog.Audit(c, "payment.result", map[string]any{
		"gateway_order_id": req.GatewayOrderID,
		"outcome":          req.Outcome,
	})
	return c.JSON(co.Snapshot())
}
