package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	applog "shopmart/internal/log"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	v, err := h.Catalog.Home(c.UserContext())
	if err != nil {
		return loadFailed(c, "home.load.fail", err, "/")
	}
	return render(c, "home", fiber.Map{"Categories": v.Categories, "Featured": v.Featured})
}

// List keeps /category/:name links working by redirecting to the filtered
// product listing.
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		raw = ""
	}
	name, ok := validate.Category(raw)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "category"})
		return notFound(c, "Category not found")
	}
	return c.Redirect("/products?category=" + url.QueryEscape(name))
}
