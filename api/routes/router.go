package routes

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/estatehub/estatehub-backend/api/controllers"
	"github.com/estatehub/estatehub-backend/api/middleware"
	"github.com/estatehub/estatehub-backend/internal/catalog"
	"github.com/estatehub/estatehub-backend/internal/images"
	"github.com/estatehub/estatehub-backend/internal/properties"
	"github.com/estatehub/estatehub-backend/internal/saved"
	"github.com/estatehub/estatehub-backend/pkg/config"
	"github.com/estatehub/estatehub-backend/pkg/enums"
	"github.com/estatehub/estatehub-backend/pkg/logger"
)

type blobResolver interface {
	ResolveBlob(ctx context.Context, ref string) (string, bool)
}

type rateLimiter interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	RateLimitKey(scope, subject string) string
}

// Dependencies carries everything the HTTP surface is wired to. Nil services answer 500,
// a nil Limiter disables throttling and nil Pingers are reported as disabled.
type Dependencies struct {
	Pingers    map[string]controllers.Pinger
	Limiter    rateLimiter
	Resolver   blobResolver
	Images     images.Service
	Properties properties.Service
	Saved      saved.Service
	Catalog    catalog.Service
	Metrics    http.Handler
	// Uploads serves the local storage driver under UploadsPrefix.
	Uploads       http.Handler
	UploadsPrefix string
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	uploadPolicy := middleware.NewRateLimitPolicy("uploads", cfg.RateLimit.Window, cfg.RateLimit.UploadsPerUser, cfg.RateLimit.WritesPerIP)
	writePolicy := middleware.NewRateLimitPolicy("writes", cfg.RateLimit.Window, 0, cfg.RateLimit.WritesPerIP)
	throttle := func(policy middleware.RateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.RateLimit(policy, deps.Limiter, logg)
	}
	sellerOnly := middleware.RequireRole(logg, enums.UserRoleSeller, enums.UserRoleAdmin)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if prefix := strings.TrimRight(deps.UploadsPrefix, "/"); deps.Uploads != nil && prefix != "" {
		r.Method(http.MethodGet, prefix+"/*", http.StripPrefix(prefix, deps.Uploads))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.With(middleware.OptionalAuth(cfg.JWT, logg)).Get("/{propertyId}", controllers.ImageList(deps.Images, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg), sellerOnly)
				r.With(throttle(uploadPolicy)).Post("/upload", controllers.ImageUpload(deps.Images, cfg.Images, logg))
				r.With(throttle(writePolicy)).Put("/update", controllers.ImageUpdate(deps.Images, logg))
				r.With(throttle(writePolicy)).Delete("/delete", controllers.ImageDelete(deps.Images, logg))
			})
		})

		// Public reads. A valid token still identifies the caller so owners can see drafts.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))

			r.Get("/blobs/resolve", controllers.BlobResolve(deps.Resolver, logg))
			r.Post("/blobs/resolve", controllers.BlobResolve(deps.Resolver, logg))

			r.Route("/properties", func(r chi.Router) {
				r.Get("/", controllers.PropertyList(deps.Properties, logg))
				r.Get("/map", controllers.PropertyMap(deps.Properties, logg))
				r.Get("/search", controllers.PropertySearch(deps.Properties, logg))
				r.Get("/{propertyId}", controllers.PropertyDetail(deps.Properties, logg))
			})
			r.Get("/features", controllers.FeatureList(deps.Catalog, logg))
			r.Get("/neighborhoods", controllers.NeighborhoodList(deps.Catalog, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/saved-properties", func(r chi.Router) {
				r.Get("/", controllers.SavedList(deps.Saved, logg))
				r.Get("/ids", controllers.SavedIDs(deps.Saved, logg))
				r.With(throttle(writePolicy)).Post("/", controllers.SavedAdd(deps.Saved, logg))
				r.Delete("/{propertyId}", controllers.SavedRemove(deps.Saved, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(sellerOnly)

				r.Route("/seller", func(r chi.Router) {
					r.Get("/properties", controllers.SellerPropertyList(deps.Properties, logg))
					r.With(throttle(writePolicy)).Post("/properties", controllers.SellerPropertyCreate(deps.Properties, logg))
					r.With(throttle(writePolicy)).Patch("/properties/{propertyId}", controllers.SellerPropertyUpdate(deps.Properties, logg))
					r.With(throttle(writePolicy)).Delete("/properties/{propertyId}", controllers.SellerPropertyDelete(deps.Properties, logg))
					r.With(throttle(writePolicy)).Put("/properties/{propertyId}/features", controllers.SellerPropertyFeatures(deps.Properties, logg))
					r.Get("/address/autocomplete", controllers.AddressAutocomplete(deps.Properties, logg))
				})
			})
		})
	})

	return r
}
