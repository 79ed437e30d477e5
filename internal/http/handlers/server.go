package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"shopmart/internal/catalog"
	"shopmart/internal/checkout"
	"shopmart/internal/config"
	applog "shopmart/internal/log"
)

type ServerOptions struct {
	TemplatesDir    string
	StaticDir       string
	ReloadTemplates bool
	AccessLog       bool

	BodyLimit    int
	RateMax      int // per IP across the site
	RateWindow   time.Duration
	OrderRateMax int // per IP on POST /orders, same window
}

func DefaultServerOptions(cfg config.Config) ServerOptions {
	return ServerOptions{
		TemplatesDir: cfg.TemplatesDir,
		StaticDir:    cfg.StaticDir,
		AccessLog:    true,
		BodyLimit:    1 << 20, // 1 MiB
		RateMax:      120,
		RateWindow:   time.Minute,
		OrderRateMax: 10,
	}
}

// NewEngine loads the page templates with the money and label helpers.
func NewEngine(dir string, reload bool) *html.Engine {
	engine := html.New(dir, ".html")
	engine.Reload(reload)
	engine.AddFunc("money", checkout.Display)
	engine.AddFunc("label", catalog.CategoryLabel)
	return engine
}

// ErrorHandler logs the failure and shows a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
		code = fe.Code
	}
	applog.Error(c, "server.error", err, map[string]any{"code": code})
	msg := "Something went wrong. Please try again."
	if code == fiber.StatusNotFound || code == fiber.StatusMethodNotAllowed {
		msg = "Page not found"
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// NewServer builds the storefront app: middleware, static assets and routes.
func NewServer(opts ServerOptions, d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        NewEngine(opts.TemplatesDir, opts.ReloadTemplates),
		BodyLimit:    opts.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	// product images are served by the catalog host
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	app.Use(limiter.New(limiter.Config{
		Max:        opts.RateMax,
		Expiration: opts.RateWindow,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(string(c.Request().URI().Path()), "/static/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.site.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).SendString("Too many requests. Please slow down.")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})
	app.Use(Session(d.Carts))

	if opts.StaticDir != "" {
		app.Static("/static", opts.StaticDir)
	}
	Register(app, d, opts)
	return app
}

func Register(app *fiber.App, d *Deps, opts ServerOptions) {
	// Catalog
	app.Get("/", d.CategoryHandler.Home)
	app.Get("/category/:name", d.CategoryHandler.List)
	app.Get("/products", d.SearchHandler.Browse)
	app.Get("/product/:id", d.ProductHandler.Detail)
	app.Get("/about", func(c *fiber.Ctx) error { return render(c, "about", nil) })

	// Cart
	app.Get("/cart", d.CartHandler.View)
	app.Post("/cart", d.CartHandler.Add)
	app.Post("/cart/increase", d.CartHandler.Increase)
	app.Post("/cart/decrease", d.CartHandler.Decrease)
	app.Post("/cart/remove", d.CartHandler.Remove)
	app.Post("/cart/clear", d.CartHandler.Clear)

	// Checkout & orders
	orderLimiter := limiter.New(limiter.Config{
		Max:        opts.OrderRateMax,
		Expiration: opts.RateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.order.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("notfound", fiber.Map{"Message": "Too many orders. Please try again later."})
		},
	})
	app.Get("/checkout", d.OrderHandler.Checkout)
	app.Post("/orders", orderLimiter, d.OrderHandler.Place)
	app.Get("/orders", d.OrderHandler.History)
	app.Get("/order/:id", d.OrderHandler.View)

	// API
	api := app.Group("/api/v1")
	api.Get("/cart", d.APIHandler.GetCart)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return notFound(c, "Page not found")
	})
}
