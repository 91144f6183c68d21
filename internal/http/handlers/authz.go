package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"southhorizon/internal/domain"
	applog "southhorizon/internal/log"
	"southhorizon/internal/services"
)

// EnsureSID returns the browser session id, minting the cookie on
// first contact. Repeated calls within one request see the same sid.
func EnsureSID(c *fiber.Ctx) string {
	if sid, ok := c.Locals("sid").(string); ok && sid != "" {
		return sid
	}
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	c.Locals("sid", sid)
	return sid
}

// SessionMiddleware resolves the sid into a session for every request.
// Resolution failure degrades to an anonymous session rather than
// failing the request.
func SessionMiddleware(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := EnsureSID(c)
		if err := auth.Touch(sid); err != nil {
			applog.Error(c, "session.touch", err, nil)
		}
		sess, err := auth.Current(sid)
		if err != nil {
			applog.Error(c, "session.resolve", err, nil)
			sess = domain.Session{SID: sid}
		}
		c.Locals("session", sess)
		return c.Next()
	}
}

// RequireUser guards authorized surfaces (cart, checkout, profile).
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !session(c).Authenticated {
			applog.Security(c, "access.denied.auth", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrNotAuthenticated.Error()})
		}
		return c.Next()
	}
}

func session(c *fiber.Ctx) domain.Session {
	if s, ok := c.Locals("session").(domain.Session); ok {
		return s
	}
	return domain.Session{SID: EnsureSID(c)}
}
