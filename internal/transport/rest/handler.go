// Package rest provides HTTP handlers for product and cart operations.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/flatshop/internal/cart"
	"github.com/abgdnv/flatshop/internal/product"
	"github.com/abgdnv/flatshop/pkg/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	products product.ProductStore
	carts    cart.CartStore
	validate *validator.Validate
	logger   *slog.Logger
	// strict surfaces validation and not-found failures on every route
	// instead of the lenient responses of POST /api/products, DELETE and item-add.
	strict bool
}

// NewHandler creates the REST API over the product and cart stores.
func NewHandler(products product.ProductStore, carts cart.CartStore, strict bool, logger *slog.Logger) *Handler {
	return &Handler{
		products: products,
		carts:    carts,
		validate: validation.New(),
		logger:   logger.With("component", "rest"),
		strict:   strict,
	}
}

// RegisterRoutes registers the HTTP routes for products and carts.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.AddProduct)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProduct)
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)
		})
	})

	r.Route("/api/carts", func(r chi.Router) {
		r.Get("/", h.ListCarts)
		r.Post("/", h.CreateCart)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Put("/", h.UpdateCart)
			r.Post("/product/{pid}", h.AddCartItem)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
