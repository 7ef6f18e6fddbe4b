package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"boothsale/internal/delivery/http/controllers"
	"boothsale/internal/delivery/http/middleware"
	"boothsale/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	catalogController *controllers.CatalogController,
	bindingController *controllers.BindingController,
	orderController *controllers.OrderController,
	statsController *controllers.StatsController,
) *http.ServeMux {
	mux := http.NewServeMux()

	admin := middleware.RequireAdmin(verifier)
	eventAccess := middleware.RequireEventAccess(verifier)

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Public: shared event link for customers
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("GET /events/{eventID}/products", bindingController.ListForEvent)
	mux.HandleFunc("POST /events/{eventID}/orders", orderController.SubmitOrder)

	// Admin: events and lifecycle
	mux.HandleFunc("POST /events", admin(eventController.CreateEvent))
	mux.HandleFunc("PUT /events/{eventID}", admin(eventController.UpdateEvent))
	mux.HandleFunc("PUT /events/{eventID}/status", admin(eventController.Transition))

	// Admin: master catalog
	mux.HandleFunc("GET /master-products", admin(catalogController.ListProducts))
	mux.HandleFunc("POST /master-products", admin(catalogController.CreateProduct))
	mux.HandleFunc("PUT /master-products/{id}", admin(catalogController.UpdateProduct))
	mux.HandleFunc("PUT /master-products/{id}/status", admin(catalogController.SetActive))

	// Admin: event product bindings and stock
	mux.HandleFunc("POST /events/{eventID}/products", admin(bindingController.BindProduct))
	mux.HandleFunc("PUT /products/{id}", admin(bindingController.UpdatePrice))
	mux.HandleFunc("PUT /products/{id}/stock", admin(bindingController.AdjustStock))
	mux.HandleFunc("DELETE /products/{id}", admin(bindingController.Unbind))

	// Vendor console (admins pass too)
	mux.HandleFunc("GET /events/{eventID}/orders", eventAccess(orderController.ListOrders))
	mux.HandleFunc("GET /events/{eventID}/stats", eventAccess(statsController.EventStats))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
