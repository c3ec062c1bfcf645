package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amontes/storefront-backend/api/controllers"
	cartcontrollers "github.com/amontes/storefront-backend/api/controllers/cart"
	"github.com/amontes/storefront-backend/api/middleware"
	cartsvc "github.com/amontes/storefront-backend/internal/cart"
	product "github.com/amontes/storefront-backend/internal/products"
	"github.com/amontes/storefront-backend/pkg/config"
	"github.com/amontes/storefront-backend/pkg/db"
	"github.com/amontes/storefront-backend/pkg/logger"
	"github.com/amontes/storefront-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	productService product.Service,
	cartService cartsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(productService, logg))
			r.Get("/{slug}", controllers.ProductBySlug(productService, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.Session(cfg.JWT, logg))
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Route("/items/{productId}", func(r chi.Router) {
				r.Patch("/", cartcontrollers.CartSetQuantity(cartService, logg))
				r.Post("/decrement", cartcontrollers.CartDecrementItem(cartService, logg))
				r.Delete("/", cartcontrollers.CartRemoveItem(cartService, logg))
			})
		})
	})

	return r
}
