package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the storefront API. All /api/v1 routes run behind the
// session middleware so every request carries a browse session.
func NewRouter(
	products *ProductHandler,
	carts *CartHandler,
	checkouts *CheckoutHandler,
	requestTimeout time.Duration,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Get("/products", products.List)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{product_id}/quantity", carts.UpdateQuantity)
			r.Put("/items/{product_id}/price", carts.UpdatePrice)
			r.Delete("/items/{product_id}", carts.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", checkouts.Begin)
			r.Post("/confirm", checkouts.Confirm)
			r.Post("/cancel", checkouts.Cancel)
		})

		r.Get("/orders/{code}", checkouts.GetOrder)
	})

	return r
}
