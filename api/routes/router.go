package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	checkoutsvc "github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/payment"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/refund"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// NewRouter assembles the full HTTP surface of the storefront.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	productService products.Service,
	cartService cart.Service,
	ordersService orders.Service,
	checkoutService checkoutsvc.Service,
	paymentService payment.Service,
	refundService refund.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(redisClient, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(productService, logg))
		r.Get("/{slug}", controllers.ProductsGet(productService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Post("/items/{slug}", controllers.CartAdd(cartService, logg))
			r.Delete("/items/{slug}", controllers.CartRemove(cartService, logg))
			r.Post("/items/{slug}/decrement", controllers.CartDecrement(cartService, logg))
			r.Post("/coupon", controllers.CartApplyCoupon(cartService, logg))
		})

		r.Get("/order-summary", controllers.OrderSummary(ordersService, logg))

		r.Get("/checkout", controllers.CheckoutGet(checkoutService, logg))
		r.Post("/checkout", controllers.CheckoutSubmit(checkoutService, logg))

		r.Get("/payment/{provider}", controllers.PaymentPage(paymentService, logg))
		r.Post("/payment/{provider}", controllers.PaymentPay(paymentService, logg))

		r.Post("/request-refund", controllers.RefundRequest(refundService, logg))
	})

	return r
}
