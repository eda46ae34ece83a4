package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Status   *StatusHandler
}

func NewRouter(log *slog.Logger, h Handlers, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(CORSMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/", h.Status.Root)
	r.Get("/health", h.Status.Health)
	r.Get("/test", h.Status.Status)

	r.Route("/api", func(r chi.Router) {
		r.Get("/hello", h.Status.Hello)
		r.Get("/status", h.Status.Status)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.ListProducts)
			r.Post("/seed", h.Products.Seed)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/add", h.Cart.AddItem)
			r.Delete("/cleanup", h.Cart.Cleanup)
		})

		r.Post("/checkout", h.Checkout.Checkout)
		r.Get("/orders", h.Orders.ListOrders)
	})

	return otelhttp.NewHandler(r, "storefront")
}
