package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "southhorizon/internal/log"
	"southhorizon/internal/services"
	"southhorizon/internal/upstream"
	"southhorizon/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "email"})
		return badRequest(c, "invalid email")
	}
	u, err := h.Auth.Login(c.Context(), EnsureSID(c), email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrBadCreds.Error()})
	}
	applog.Audit(c, "auth.login", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"authenticated": true, "user": u})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	name, ok := validate.Name(req.Name)
	if !ok {
		return badRequest(c, "invalid name")
	}
	email, ok := validate.Email(req.Email)
	if !ok {
		return badRequest(c, "invalid email")
	}
	phone, ok := validate.Phone(req.Phone)
	if !ok {
		return badRequest(c, "invalid phone")
	}
	if !validate.Password(req.Password) {
		return badRequest(c, "password must be 8-40 chars with upper, lower, digit and symbol")
	}
	u, err := h.Auth.Register(c.Context(), EnsureSID(c), upstream.RegisterRequest{
		Name: name, Email: email, Phone: phone, Password: req.Password,
	})
	if err != nil {
		applog.Error(c, "auth.register.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "registration failed"})
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"authenticated": true, "user": u})
}

func (h *AuthHandler) PhoneLogin(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	phone, ok := validate.Phone(req.Phone)
	if !ok {
		return badRequest(c, "invalid phone")
	}
	if err := h.Auth.PhoneLogin(c.Context(), phone); err != nil {
		applog.Error(c, "auth.otp.send.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "could not send OTP"})
	}
	return c.JSON(fiber.Map{"sent": true})
}

func (h *AuthHandler) VerifyOtp(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
		Otp   string `json:"otp"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	phone, ok := validate.Phone(req.Phone)
	if !ok || req.Otp == "" {
		return badRequest(c, "invalid phone or otp")
	}
	u, err := h.Auth.VerifyPhoneOtp(c.Context(), EnsureSID(c), phone, req.Otp)
	if err != nil {
		applog.Security(c, "auth.otp.fail", map[string]any{"phone": phone})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "OTP verification failed"})
	}
	applog.Audit(c, "auth.otp.login", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"authenticated": true, "user": u})
}

func (h *AuthHandler) GoogleOAuth(c *fiber.Ctx) error {
	var req struct {
		Credential string `json:"credential"`
	}
	if err := c.BodyParser(&req); err != nil || req.Credential == "" {
		return badRequest(c, "missing credential")
	}
	u, err := h.Auth.GoogleOAuth(c.Context(), EnsureSID(c), req.Credential)
	if err != nil {
		applog.Security(c, "auth.oauth.fail", nil)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "OAuth sign-in failed"})
	}
	applog.Audit(c, "auth.oauth.login", map[string]any{"user_id": u.ID})
	return c.JSON(fiber.Map{"authenticated": true, "user": u})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := EnsureSID(c)
	if err := h.Auth.Logout(sid); err != nil {
		applog.Error(c, "auth.logout.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "logout failed"})
	}
	applog.Audit(c, "auth.logout", nil)
	return c.JSON(fiber.Map{"authenticated": false})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(session(c))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
