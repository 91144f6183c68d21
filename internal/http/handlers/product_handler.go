package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"southhorizon/internal/domain"
	applog "southhorizon/internal/log"
	"southhorizon/internal/services"
	"southhorizon/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	if hasFilterParams(c) {
		return h.listFiltered(c)
	}
	products, err := h.Catalog.Products(c.Context())
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return upstreamDown(c, "could not load products")
	}
	return c.JSON(fiber.Map{"products": products})
}

func (h *ProductHandler) listFiltered(c *fiber.Ctx) error {
	f := domain.ProductFilters{
		Category:  c.Query("category"),
		Color:     c.Query("color"),
		Size:      c.Query("size"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	f.MinPrice, _ = strconv.ParseFloat(c.Query("minPrice"), 64)
	f.MaxPrice, _ = strconv.ParseFloat(c.Query("maxPrice"), 64)
	if v := c.Query("isFeatured"); v != "" {
		b := v == "true"
		f.IsFeatured = &b
	}
	if v := c.Query("isTop"); v != "" {
		b := v == "true"
		f.IsTop = &b
	}
	if v := c.Query("isNew"); v != "" {
		b := v == "true"
		f.IsNew = &b
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))

	products, err := h.Catalog.ProductsFiltered(c.Context(), f)
	if err != nil {
		applog.Error(c, "products.filter.fail", err, nil)
		return upstreamDown(c, "could not load products")
	}
	return c.JSON(fiber.Map{"products": products})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid product id")
	}
	p, err := h.Catalog.Product(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(p)
}

func (h *ProductHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.Context())
	if err != nil {
		applog.Error(c, "categories.list.fail", err, nil)
		return upstreamDown(c, "could not load categories")
	}
	return c.JSON(fiber.Map{"categories": cats})
}

func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Query("productId"))
	if !ok {
		return badRequest(c, "invalid productId")
	}
	a, err := h.Catalog.Availability(c.Context(), id)
	if err != nil {
		applog.Error(c, "availability.fail", err, map[string]any{"product_id": id})
		return c.JSON(a) // OUT_OF_STOCK fallback rather than an error page
	}
	return c.JSON(a)
}

func hasFilterParams(c *fiber.Ctx) bool {
	for _, k := range []string{"category", "minPrice", "maxPrice", "color", "size", "isFeatured", "isTop", "isNew", "sortBy", "page", "limit"} {
		if c.Query(k) != "" {
			return true
		}
	}
	return false
}

func upstreamDown(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": msg})
}
