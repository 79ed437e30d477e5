package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopmart/internal/catalog"
	applog "shopmart/internal/log"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if n, ok := c.Locals("CartCount").(int); ok {
		data["CartCount"] = n
	}
	// Pick up the token the CSRF middleware put into Locals
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	return render(c.Status(fiber.StatusNotFound), "notfound", fiber.Map{"Message": msg})
}

// loadFailed renders the catalog failure page. Upstream 404s become our 404.
func loadFailed(c *fiber.Ctx, action string, err error, retry string) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return notFound(c, "This item is no longer available")
	}
	applog.Error(c, action, err, nil)
	return render(c.Status(fiber.StatusBadGateway), "notfound", fiber.Map{
		"Message": "Failed to load products. Please try again.",
		"Retry":   retry,
	})
}
