package handlers

import (
	"github.com/gofiber/fiber/v2"

	"southhorizon/internal/domain"
	applog "southhorizon/internal/log"
	"southhorizon/internal/services"
	"southhorizon/internal/validate"
)

type AddressHandler struct {
	Addresses *services.AddressService
}

func (h *AddressHandler) List(c *fiber.Ctx) error {
	list, err := h.Addresses.List(c.Context(), session(c))
	if err != nil {
		applog.Error(c, "addresses.list.fail", err, nil)
		return upstreamDown(c, "could not load addresses")
	}
	return c.JSON(fiber.Map{"addresses": list})
}

// checkAddress validates the writable fields shared by create and
// update. Returns a user-facing message for the first failure.
func checkAddress(a *domain.Address) (string, bool) {
	var ok bool
	if a.Name, ok = validate.Name(a.Name); !ok {
		return "invalid name", false
	}
	if a.Phone, ok = validate.Phone(a.Phone); !ok {
		return "invalid phone", false
	}
	if a.AddressLine1 == "" {
		return "address line 1 is required", false
	}
	if a.City == "" || a.State == "" {
		return "city and state are required", false
	}
	if a.Pincode, ok = validate.Pincode(a.Pincode); !ok {
		return "invalid pincode", false
	}
	if a.Type, ok = validate.AddressType(a.Type); !ok {
		return "address type must be home, work or other", false
	}
	return "", true
}

func (h *AddressHandler) Create(c *fiber.Ctx) error {
	var a domain.Address
	if err := c.BodyParser(&a); err != nil {
		return badRequest(c, "malformed body")
	}
	if msg, ok := checkAddress(&a); !ok {
		return badRequest(c, msg)
	}
	created, err := h.Addresses.Create(c.Context(), session(c), a)
	if err != nil {
		applog.Error(c, "address.create.fail", err, nil)
		return upstreamDown(c, "could not save address")
	}
	applog.Audit(c, "address.create", map[string]any{"address_id": created.ID})
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *AddressHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid address id")
	}
	var a domain.Address
	if err := c.BodyParser(&a); err != nil {
		return badRequest(c, "malformed body")
	}
	a.ID = id
	if msg, ok := checkAddress(&a); !ok {
		return badRequest(c, msg)
	}
	updated, err := h.Addresses.Update(c.Context(), session(c), a)
	if err != nil {
		applog.Error(c, "address.update.fail", err, map[string]any{"address_id": id})
		return upstreamDown(c, "could not update address")
	}
	applog.Audit(c, "address.update", map[string]any{"address_id": id})
	return c.JSON(updated)
}

func (h *AddressHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid address id")
	}
	if err := h.Addresses.Delete(c.Context(), session(c), id); err != nil {
		applog.Error(c, "address.delete.fail", err, map[string]any{"address_id": id})
		return upstreamDown(c, "could not delete address")
	}
	applog.Audit(c, "address.delete", map[string]any{"address_id": id})
	return c.JSON(fiber.Map{"deleted": true})
}

func (h *AddressHandler) SetDefault(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "invalid address id")
	}
	if err := h.Addresses.SetDefault(c.Context(), session(c), id); err != nil {
		applog.Error(c, "address.default.fail", err, map[string]any{"address_id": id})
		return upstreamDown(c, "could not set default address")
	}
	applog.Audit(c, "address.default", map[string]any{"address_id": id})
	return c.JSON(fiber.Map{"default": id})
}
