package handlers

import (
	"github.com/gofiber/fiber/v2"

	"shopmart/internal/catalog"
	applog "shopmart/internal/log"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This item is no longer available")
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return loadFailed(c, "product.load.fail", err, c.OriginalURL())
	}
	return render(c, "product", fiber.Map{"P": p, "CategoryLabel": catalog.CategoryLabel(p.Category)})
}
