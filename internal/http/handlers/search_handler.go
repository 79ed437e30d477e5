package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"shopmart/internal/catalog"
	applog "shopmart/internal/log"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// Browse lists products with the category, price range and sort filters.
func (h *SearchHandler) Browse(c *fiber.Ctx) error {
	f := services.Filter{Sort: catalog.ParseSortKey(c.Query("sort"))}

	if raw := strings.TrimSpace(c.Query("category")); raw != "" {
		cat, ok := validate.Category(raw)
		if !ok {
			applog.Security(c, "validation.fail", map[string]any{"field": "category"})
			return render(c.Status(fiber.StatusBadRequest), "products", fiber.Map{
				"Filter": f, "Sorts": sortOptions, "Products": []any{}, "Err": "Invalid category",
			})
		}
		f.Category = cat
	}
	if raw := strings.TrimSpace(c.Query("minPrice")); raw != "" {
		d, ok := validate.Price(raw)
		if !ok {
			return badPrice(c, f, "minPrice")
		}
		f.MinPrice = &d
	}
	if raw := strings.TrimSpace(c.Query("maxPrice")); raw != "" {
		d, ok := validate.Price(raw)
		if !ok {
			return badPrice(c, f, "maxPrice")
		}
		f.MaxPrice = &d
	}

	v, err := h.Catalog.Browse(c.UserContext(), f)
	if err != nil {
		return loadFailed(c, "products.load.fail", err, c.OriginalURL())
	}
	return render(c, "products", fiber.Map{
		"Filter":     v.Filter,
		"Categories": v.Categories,
		"Products":   v.Products,
		"Count":      len(v.Products),
		"Sorts":      sortOptions,
	})
}

var sortOptions = []struct {
	Key   catalog.SortKey
	Label string
}{
	{catalog.SortNone, "Featured"},
	{catalog.SortPriceAsc, "Price: Low to High"},
	{catalog.SortPriceDesc, "Price: High to Low"},
	{catalog.SortNameAsc, "Name: A to Z"},
	{catalog.SortNameDesc, "Name: Z to A"},
}

func badPrice(c *fiber.Ctx, f services.Filter, field string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return render(c.Status(fiber.StatusBadRequest), "products", fiber.Map{
		"Filter": f, "Sorts": sortOptions, "Products": []any{}, "Err": "Enter a valid price",
	})
}
