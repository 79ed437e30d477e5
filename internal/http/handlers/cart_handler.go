package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	applog "shopmart/internal/log"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	qty := validate.Qty(c.FormValue("qty"))

	p, err := h.Cart.Add(c.UserContext(), sessionID(c), productID, qty)
	if err != nil {
		return loadFailed(c, "cart.add.fail", err, "/product/"+strconv.Itoa(productID))
	}
	applog.Info(c, "cart.add", map[string]any{"product": p.ID, "qty": qty})
	return c.Redirect("/cart")
}

// mutate applies a quantity change keyed by the productId form field.
func (h *CartHandler) mutate(action string, fn func(sid string, productID int)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, ok := validate.ID(c.FormValue("productId"))
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
			return c.Status(fiber.StatusBadRequest).SendString("missing productId")
		}
		fn(sessionID(c), productID)
		applog.Info(c, action, map[string]any{"product": productID})
		return c.Redirect("/cart")
	}
}

func (h *CartHandler) Increase(c *fiber.Ctx) error {
	return h.mutate("cart.increase", h.Cart.Increase)(c)
}

func (h *CartHandler) Decrease(c *fiber.Ctx) error {
	return h.mutate("cart.decrease", h.Cart.Decrease)(c)
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	return h.mutate("cart.remove", h.Cart.Remove)(c)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	h.Cart.Clear(sessionID(c))
	applog.Info(c, "cart.clear", nil)
	return c.Redirect("/cart")
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	return render(c, "cart", fiber.Map{"Cart": h.Cart.View(sessionID(c))})
}
