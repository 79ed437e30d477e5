package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopmart/internal/cart"
	applog "shopmart/internal/log"
)

const sessionCookie = "sid"

// Session issues the sid cookie and puts the id and the cart badge count in
// Locals for every request.
func Session(carts *cart.Sessions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(sessionCookie)
		if sid != "" {
			if _, err := uuid.Parse(sid); err != nil {
				applog.Security(c, "session.invalid", nil)
				sid = ""
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			c.Cookie(&fiber.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Secure:   false, // enable true behind TLS
			})
		}
		c.Locals(applog.LocalSession, sid)

		count := 0
		if st, ok := carts.Peek(sid); ok {
			count = st.Count()
		}
		c.Locals("CartCount", count)
		return c.Next()
	}
}

func sessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(applog.LocalSession).(string)
	return sid
}
