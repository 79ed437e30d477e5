package handlers

import (
	"github.com/jmoiron/sqlx"

	"shopmart/internal/cart"
	"shopmart/internal/repos"
	"shopmart/internal/services"
)

type Deps struct {
	Carts *cart.Sessions

	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	SearchHandler   *SearchHandler
	CartHandler     *CartHandler
	APIHandler      *APIHandler
	OrderHandler    *OrderHandler
}

// NewDeps wires services over the catalog API and the receipt database.
// events may be nil when no broker is configured.
func NewDeps(db *sqlx.DB, api services.Catalog, events services.OrderPublisher) *Deps {
	carts := cart.NewSessions()
	orderRepo := repos.NewOrderRepo(db)

	catalogSvc := services.NewCatalogService(api)
	cartSvc := services.NewCartService(carts, api)
	orderSvc := services.NewOrderService(carts, services.NewSimulatedBackend(orderRepo), events, orderRepo)

	return &Deps{
		Carts:           carts,
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		SearchHandler:   &SearchHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		APIHandler:      &APIHandler{Cart: cartSvc},
		OrderHandler:    &OrderHandler{Cart: cartSvc, Order: orderSvc},
	}
}
