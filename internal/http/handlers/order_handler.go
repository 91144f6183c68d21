package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"southhorizon/internal/domain"
	applog "southhorizon/internal/log"
	"southhorizon/internal/services"
	"southhorizon/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.List(c.Context(), session(c))
	if err != nil {
		applog.Error(c, "orders.list.fail", err, nil)
		return upstreamDown(c, "could not load orders")
	}
	return c.JSON(fiber.Map{"orders": orders})
}

func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid order id")
	}
	o, err := h.Orders.Detail(c.Context(), session(c), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	}
	return c.JSON(o)
}

func (h *OrderHandler) Search(c *fiber.Ctx) error {
	f := domain.OrderSearchFilters{
		Status:    c.Query("status"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	res, err := h.Orders.Search(c.Context(), session(c), f)
	if err != nil {
		applog.Error(c, "orders.search.fail", err, nil)
		return upstreamDown(c, "could not search orders")
	}
	return c.JSON(res)
}

func (h *OrderHandler) StatusHistory(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid order id")
	}
	events, err := h.Orders.StatusHistory(c.Context(), session(c), id)
	if err != nil {
		applog.Error(c, "orders.history.fail", err, map[string]any{"order_id": id})
		return upstreamDown(c, "could not load order history")
	}
	return c.JSON(fiber.Map{"history": events})
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid order id")
	}
	if err := h.Orders.Cancel(c.Context(), session(c), id); err != nil {
		applog.Error(c, "orders.cancel.fail", err, map[string]any{"order_id": id})
		return upstreamDown(c, "could not cancel order")
	}
	applog.Audit(c, "order.cancel", map[string]any{"order_id": id})
	return c.JSON(fiber.Map{"cancelled": true})
}
