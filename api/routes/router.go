package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goldjewelmy/goldstore-backend/api/controllers"
	ordercontrollers "github.com/goldjewelmy/goldstore-backend/api/controllers/orders"
	webhookcontrollers "github.com/goldjewelmy/goldstore-backend/api/controllers/webhooks"
	"github.com/goldjewelmy/goldstore-backend/api/middleware"
	"github.com/goldjewelmy/goldstore-backend/internal/cart"
	"github.com/goldjewelmy/goldstore-backend/internal/catalog"
	checkoutsvc "github.com/goldjewelmy/goldstore-backend/internal/checkout"
	"github.com/goldjewelmy/goldstore-backend/internal/goldprice"
	"github.com/goldjewelmy/goldstore-backend/internal/orders"
	"github.com/goldjewelmy/goldstore-backend/internal/payments"
	"github.com/goldjewelmy/goldstore-backend/pkg/config"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
	"github.com/goldjewelmy/goldstore-backend/pkg/metrics"
	pkgredis "github.com/goldjewelmy/goldstore-backend/pkg/redis"
)

// Cache is the redis surface used by the request middleware.
type Cache interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
	Ping(ctx context.Context) error
}

// CartSessions mints and verifies the signed cart token.
type CartSessions interface {
	Parse(token string) (string, error)
	NewSession() (string, string, error)
}

type WebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type Setup interface {
	controllers.SchemaEnsurer
	controllers.Seeder
}

// Deps carries everything the router hands to controllers. Nil services
// surface as 500s from their handlers rather than missing routes.
type Deps struct {
	DB           controllers.Pinger
	Cache        Cache
	Metrics      *metrics.HTTPMetrics
	Gatherer     prometheus.Gatherer
	CartSessions CartSessions
	Carts        cart.Store
	Catalog      catalog.Service
	GoldPrice    goldprice.Service
	Orders       orders.Service
	Payments     payments.Service
	Checkout     checkoutsvc.Service
	Setup        Setup
	Webhook      webhookcontrollers.ChipWebhookService
	WebhookGuard WebhookGuard
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.Storefront.CORSOrigins),
	)

	ordersPolicy := middleware.NewRateLimitPolicy("orders", cfg.RateLimit.Window, cfg.RateLimit.IPLimit, cfg.RateLimit.EmailLimit)
	paymentPolicy := middleware.NewRateLimitPolicy("payment", cfg.RateLimit.Window, cfg.RateLimit.IPLimit, cfg.RateLimit.EmailLimit)
	checkoutPolicy := middleware.NewRateLimitPolicy("checkout", cfg.RateLimit.Window, cfg.RateLimit.IPLimit, cfg.RateLimit.EmailLimit)

	ready := map[string]controllers.Pinger{}
	if deps.DB != nil {
		ready["db"] = deps.DB
	}
	if deps.Cache != nil {
		ready["redis"] = deps.Cache
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
		r.Get("/products/{product}", controllers.GetProduct(deps.Catalog, logg))
		r.Get("/products/{product}/related", controllers.ListRelatedProducts(deps.Catalog, logg))
		r.Get("/categories", controllers.ListCategories(deps.Catalog, logg))
		r.Get("/gold-price", controllers.LatestGoldPrice(deps.GoldPrice, logg))
		r.Get("/gold-price/history", controllers.GoldPriceHistory(deps.GoldPrice, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(deps.CartSessions, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(deps.Carts, logg))
				r.Delete("/", controllers.ClearCart(deps.Carts, logg))
				r.Post("/items", controllers.AddCartItem(deps.Carts, deps.Catalog, logg))
				r.Patch("/items/{itemID}", controllers.UpdateCartItem(deps.Carts, logg))
				r.Delete("/items/{itemID}", controllers.RemoveCartItem(deps.Carts, logg))
			})

			r.With(
				middleware.Idempotency(deps.Cache, logg),
				middleware.RateLimit(checkoutPolicy, deps.Cache, logg),
			).Post("/checkout", controllers.Checkout(deps.Checkout, deps.Carts, cfg.Storefront.CORSOrigins, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.Get(deps.Orders, logg))
			r.With(
				middleware.Idempotency(deps.Cache, logg),
				middleware.RateLimit(ordersPolicy, deps.Cache, logg),
			).Post("/", ordercontrollers.Create(deps.Orders, logg))
		})

		r.Route("/payment", func(r chi.Router) {
			r.With(
				middleware.Idempotency(deps.Cache, logg),
				middleware.RateLimit(paymentPolicy, deps.Cache, logg),
			).Post("/", controllers.CreatePayment(deps.Payments, cfg.Storefront.CORSOrigins, logg))
			r.Post("/webhook", webhookcontrollers.ChipWebhook(deps.Webhook, cfg.Chip.WebhookSecret, deps.WebhookGuard, deps.Metrics, logg))
		})

		if cfg.FeatureFlags.SetupRoutes {
			r.Route("/setup", func(r chi.Router) {
				r.Get("/database", controllers.SetupDatabase(deps.Setup, logg))
				r.Post("/database", controllers.SetupDatabase(deps.Setup, logg))
				r.Post("/seed", controllers.SeedDatabase(deps.Setup, logg))
			})
		}
	})

	return r
}
