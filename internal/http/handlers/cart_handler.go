package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "southhorizon/internal/log"
	"southhorizon/internal/services"
	"southhorizon/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// View renders the cart drawer payload. Fetch failures come back as
// the safe empty cart, never as an error status.
func (h *CartHandler) View(c *fiber.Ctx) error {
	return c.JSON(h.Cart.View(c.Context(), session(c)))
}

// Count feeds the header badge.
func (h *CartHandler) Count(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"count": h.Cart.Count(c.Context(), session(c))})
}

type addRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	id, ok := validate.ID(req.ProductID)
	if !ok {
		return badRequest(c, "missing productId")
	}
	cart, err := h.Cart.Add(c.Context(), session(c), id, req.Quantity)
	if err != nil {
		applog.Error(c, "cart.add.fail", err, map[string]any{"product_id": id})
		return upstreamDown(c, "failed to add item to cart")
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": id, "qty": req.Quantity})
	return c.JSON(cart)
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid item id")
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	cart, err := h.Cart.UpdateQty(c.Context(), session(c), id, req.Quantity)
	if err != nil {
		applog.Error(c, "cart.update.fail", err, map[string]any{"item_id": id})
		return upstreamDown(c, "failed to update cart item")
	}
	return c.JSON(cart)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid item id")
	}
	cart, err := h.Cart.RemoveItem(c.Context(), session(c), id)
	if err != nil {
		applog.Error(c, "cart.remove.fail", err, map[string]any{"item_id": id})
		return upstreamDown(c, "failed to remove item from cart")
	}
	return c.JSON(cart)
}
