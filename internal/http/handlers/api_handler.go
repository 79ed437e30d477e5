package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopmart/internal/services"
)

// APIHandler serves the JSON endpoints under /api/v1.
type APIHandler struct {
	Cart *services.CartService
}

// GetCart returns the session's cart with its order summary. Amounts are
// decimal strings.
func (h *APIHandler) GetCart(c *fiber.Ctx) error {
	return c.JSON(h.Cart.View(sessionID(c)))
}
