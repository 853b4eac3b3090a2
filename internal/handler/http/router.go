package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FilipeCampos25/SiteClienteLucas/internal/service"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/health"
	"github.com/FilipeCampos25/SiteClienteLucas/pkg/middleware"
)

// mediaCacheMaxAge controls browser caching of product images; revalidation
// goes through the ETag.
const mediaCacheMaxAge = 3600

// RouterConfig carries the dependencies and settings for the storefront router.
type RouterConfig struct {
	Carts    *service.CartService
	Checkout *service.CheckoutService
	Products *service.ProductService
	Links    service.LinkService

	Health *health.Handler
	Logger *slog.Logger

	AdminUser     string
	AdminPassword string

	CORSAllowedOrigins []string
	PprofAllowedCIDRs  []string
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.RealIP)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, cfg.Logger)

	cartHandler := NewCartHandler(cfg.Carts, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout, cfg.Logger)
	productHandler := NewProductHandler(cfg.Products, cfg.Logger)
	whatsappHandler := NewWhatsAppHandler(cfg.Links, cfg.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/produtos", productHandler.ListProducts)
		r.Post("/whatsapp", whatsappHandler.GenerateLink)

		// Cart and checkout routes carry a device identity, minted on first
		// contact.
		r.Group(func(r chi.Router) {
			r.Use(DeviceID)

			r.Route("/carrinho", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Get("/resumo", checkoutHandler.GetSummary)

				r.Post("/itens", cartHandler.AddItem)
				r.Delete("/itens/{id}", cartHandler.RemoveItem)
			})

			r.Post("/checkout", checkoutHandler.Submit)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.CacheControl(mediaCacheMaxAge))
		r.Get("/media/produto/{id}", productHandler.GetImage)
	})

	r.Route("/admin/produtos", func(r chi.Router) {
		r.Use(middleware.BasicAuth("storefront admin", cfg.AdminUser, cfg.AdminPassword))

		r.Post("/", productHandler.CreateProduct)
		r.Put("/{id}", productHandler.UpdateProduct)
		r.Delete("/{id}", productHandler.DeleteProduct)
	})

	return r
}
