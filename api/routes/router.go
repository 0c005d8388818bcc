package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/vitrine-backend/api/controllers"
	"github.com/angelmondragon/vitrine-backend/api/middleware"
	"github.com/angelmondragon/vitrine-backend/internal/media"
	"github.com/angelmondragon/vitrine-backend/internal/sellers"
	"github.com/angelmondragon/vitrine-backend/pkg/config"
	"github.com/angelmondragon/vitrine-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/vitrine-backend/pkg/redis"
)

// limiterStore backs idempotency replays and the signup window.
type limiterStore interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	checks map[string]controllers.Pinger,
	store limiterStore,
	gatherer prometheus.Gatherer,
	shopService controllers.Shop,
	sellerService sellers.Service,
	mediaService media.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	signupPolicy := middleware.NewIPRateLimitPolicy("signup", cfg.RateLimit.SignupWindow, cfg.RateLimit.SignupIPLimit)
	finalizeLimiter := middleware.NewSessionLimiter(cfg.Checkout.FinalizeRate, cfg.Checkout.FinalizeBurst)
	idempotency := middleware.Idempotency(store, cfg.Checkout.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg))

		r.Route("/shops/{slug}", func(r chi.Router) {
			r.Get("/", controllers.ShopLoad(shopService, logg))
			r.Get("/pix.png", controllers.ShopPixQR(shopService, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartView(shopService, logg))
				r.Delete("/", controllers.CartClear(shopService, logg))
				r.Post("/items", controllers.CartAddItem(shopService, logg))
				r.Patch("/items/{productId}", controllers.CartUpdateItem(shopService, logg))
				r.Delete("/items/{productId}", controllers.CartRemoveItem(shopService, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutView(shopService, logg))
				r.Post("/open", controllers.CheckoutOpen(shopService, logg))
				r.Post("/close", controllers.CheckoutClose(shopService, logg))
				r.Post("/back", controllers.CheckoutBack(shopService, logg))
				r.Patch("/form", controllers.CheckoutUpdateForm(shopService, logg))
				r.Post("/validate", controllers.CheckoutValidate(shopService, logg))
				r.Post("/phone/edit", controllers.CheckoutPhoneEdit(shopService, logg))
				r.Post("/phone/save", controllers.CheckoutPhoneSave(shopService, logg))
				r.Post("/phone/cancel", controllers.CheckoutPhoneCancel(shopService, logg))
				r.With(
					middleware.SessionRateLimit(finalizeLimiter, logg),
					idempotency,
				).Post("/finalize", controllers.CheckoutFinalize(shopService, logg))
			})

			r.Get("/success", controllers.ShopSuccess(shopService, logg))
			r.Post("/success/ack", controllers.ShopAcknowledge(shopService, logg))
		})

		r.Route("/sellers", func(r chi.Router) {
			r.With(
				middleware.IPRateLimit(signupPolicy, store, logg),
				idempotency,
			).Post("/", controllers.SellerCreate(sellerService, logg))
			r.Get("/slug-availability", controllers.SellerSlugAvailability(sellerService, logg))
			r.Get("/slug-suggestion", controllers.SellerSlugSuggestion(sellerService, logg))
		})

		r.Post("/uploads", controllers.MediaUpload(mediaService, logg))
	})

	return r
}
