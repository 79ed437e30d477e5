package handlers

import (
	"errors"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shopmart/internal/checkout"
	"shopmart/internal/domain"
	applog "shopmart/internal/log"
	"shopmart/internal/services"
	"shopmart/internal/validate"
)

type OrderHandler struct {
	Cart  *services.CartService
	Order *services.OrderService
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	cv := h.Cart.View(sessionID(c))
	if cv.Empty() {
		return c.Redirect("/cart")
	}
	return render(c, "checkout", fiber.Map{"Cart": cv, "Form": checkout.Form{}, "Errors": checkout.Errors{}})
}

// Place ignores any client-side totals; the amount is recomputed from the
// session cart.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	sid := sessionID(c)
	form := checkout.FormFromValues(c.FormValue)

	o, err := h.Order.Submit(c.UserContext(), sid, form)
	if err != nil {
		return h.placeFailed(c, form, err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"order_id": o.ID,
		"total":    o.Total.StringFixed(2),
		"items":    len(o.Items),
		"card":     validate.MaskCard(form.CardNumber),
	})
	return c.Redirect("/order/" + strconv.FormatInt(o.ID, 10))
}

func (h *OrderHandler) placeFailed(c *fiber.Ctx, form checkout.Form, err error) error {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		applog.Security(c, "validation.fail", map[string]any{"fields": fields})
		return h.rerender(c, fiber.StatusUnprocessableEntity, form, verr.Fields, "")
	case errors.Is(err, services.ErrEmptyCart):
		return c.Redirect("/cart")
	case errors.Is(err, services.ErrPaymentDeclined):
		applog.Security(c, "order.place.declined", nil)
		return h.rerender(c, fiber.StatusPaymentRequired, form, nil, "Your payment was declined. Please check your card details.")
	case errors.Is(err, services.ErrRejected):
		applog.Security(c, "order.place.rejected", map[string]any{"error": err.Error()})
		return h.rerender(c, fiber.StatusBadRequest, form, nil, "We could not accept this order. Please review it and try again.")
	default:
		applog.Error(c, "order.place.fail", err, nil)
		return h.rerender(c, fiber.StatusBadGateway, form, nil, "We could not reach the order service. Please try again.")
	}
}

// rerender shows the checkout form again with the shopper's values. Payment
// fields are never echoed back.
func (h *OrderHandler) rerender(c *fiber.Ctx, status int, form checkout.Form, errs checkout.Errors, msg string) error {
	if errs == nil {
		errs = checkout.Errors{}
	}
	return render(c.Status(status), "checkout", fiber.Map{
		"Cart":   h.Cart.View(sessionID(c)),
		"Form":   form.WithoutPayment(),
		"Errors": errs,
		"Err":    msg,
	})
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Order not found")
	}
	o, err := h.Order.Get(c.UserContext(), sessionID(c), int64(id))
	switch {
	case errors.Is(err, services.ErrOrderForbidden):
		applog.Security(c, "access.denied.order", map[string]any{"order_id": id})
		return notFound(c, "Order not found")
	case errors.Is(err, services.ErrOrderNotFound):
		return notFound(c, "Order not found")
	case err != nil:
		return err
	}
	return render(c, "order", fiber.Map{"Order": o, "Summary": checkout.Summarize(itemsTotal(o.Items))})
}

// History lists the receipts placed from this session.
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.History(c.UserContext(), sessionID(c))
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return render(c.Status(fiber.StatusInternalServerError), "notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "orders", fiber.Map{"Orders": orders})
}

func itemsTotal(items []domain.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
