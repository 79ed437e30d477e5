package handlers_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"shopmart/internal/http/handlers"
)

// friendly error surface, no internal leakage
func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := fiber.New(fiber.Config{
		Views:        handlers.NewEngine("../../web/templates", false),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(requestid.New())

	// Route that triggers an internal error
	app.Get("/err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})
	app.Get("/panic-ish", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	for _, path := range []string{"/err", "/panic-ish"} {
		entries, _ := captureLogs(t, func() {
			resp, err := app.Test(httptest.NewRequest("GET", path, nil))
			if err != nil {
				t.Fatalf("test request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusInternalServerError {
				t.Fatalf("%s: expected 500, got %d", path, resp.StatusCode)
			}
			b, _ := io.ReadAll(resp.Body)
			s := string(b)
			if !strings.Contains(s, "Something went wrong") {
				t.Fatalf("friendly message missing; body=%s", s)
			}
			if strings.Contains(s, "db timeout") || strings.Contains(s, "secret") || strings.Contains(s, "EOF") {
				t.Fatalf("internal details leaked to user; body=%s", s)
			}
		})
		if !hasAction(entries, "server.error") {
			t.Fatalf("%s: expected server.error log", path)
		}
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	ta := newTestApp(t)
	cl := ta.newClient(t)
	resp := cl.get("/nope")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
	if !strings.Contains(body(t, resp), "Page not found") {
		t.Fatal("friendly 404 missing")
	}
}
