// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// sessions, idempotent replays, rate limiting, CORS and security headers.
//
// Route groups:
//   - public reads (gzip, cacheable): prices, products, categories, stores
//   - auth: magic-link request (IP rate limited), verify, logout
//   - private (session required, no-store): writes, alerts, import, maintenance
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/catalog"
	"github.com/pajakoo/kbiz-price-hunter/internal/config"
	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/http/handlers"
	"github.com/pajakoo/kbiz-price-hunter/internal/http/middleware"
	"github.com/pajakoo/kbiz-price-hunter/internal/notify"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
	"github.com/pajakoo/kbiz-price-hunter/internal/services"
)

// maxJSONBody caps request bodies outside the CSV upload route.
const maxJSONBody = 1 << 20

// catalogRepoShim adapts the repository free functions to the
// services.CatalogRepo interface expected by the CatalogService.
type catalogRepoShim struct{}

// GetProductBySlug proxies repo.GetProductBySlug.
func (catalogRepoShim) GetProductBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Product, error) {
	return repo.GetProductBySlug(ctx, db, slug)
}

// CreateProduct proxies repo.CreateProduct.
func (catalogRepoShim) CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return repo.CreateProduct(ctx, db, p)
}

// CountProducts proxies repo.CountProducts (pagination support).
func (catalogRepoShim) CountProducts(ctx context.Context, db *gorm.DB, f repo.ProductFilter) (int64, error) {
	return repo.CountProducts(ctx, db, f)
}

// ListProductsPage proxies repo.ListProductsPage (pagination support).
func (catalogRepoShim) ListProductsPage(ctx context.Context, db *gorm.DB, f repo.ProductFilter, offset, limit int) ([]domain.Product, error) {
	return repo.ListProductsPage(ctx, db, f, offset, limit)
}

// ProductsStats proxies repo.ProductsStats (ETag support).
func (catalogRepoShim) ProductsStats(ctx context.Context, db *gorm.DB, f repo.ProductFilter) (int64, *time.Time, error) {
	return repo.ProductsStats(ctx, db, f)
}

// CreateStore proxies repo.CreateStore.
func (catalogRepoShim) CreateStore(ctx context.Context, db *gorm.DB, name string, city *string) (*domain.Store, error) {
	return repo.CreateStore(ctx, db, name, city)
}

// ListStores proxies repo.ListStores.
func (catalogRepoShim) ListStores(ctx context.Context, db *gorm.DB) ([]domain.Store, error) {
	return repo.ListStores(ctx, db)
}

// UpdateStoreCity proxies repo.UpdateStoreCity.
func (catalogRepoShim) UpdateStoreCity(ctx context.Context, db *gorm.DB, id string, city *string) error {
	return repo.UpdateStoreCity(ctx, db, id, city)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. mailer may be nil, which disables email; regions may be nil, in
// which case numeric city codes stay unresolved.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Access logging (redacting unless LOG_REDACT=false)
//  4. Recovery: capture panics after logger
//  5. Metrics
//  6. Session: resolve the caller from cookie or bearer token
//  7. Idempotency replays (need the session user; before rate limiting so
//     replays cost no tokens)
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, mailer notify.Mailer, regions *catalog.RegionTable, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	apiBase := cfg.APIBasePath // e.g. "/api/v1"

	// Dependency injection: services ← repo/db/mailer
	cities := catalog.NewCityNormalizer(regions)
	alertSvc := services.NewAlertService(db, mailer, cfg.Alerts.SiteURL, cfg.Alerts.MaxParallel)
	priceSvc := services.NewPriceService(db, alertSvc, cfg.MaxSeriesPoints)
	importSvc := services.NewImportService(db, cities, catalog.NewSlugger(), alertSvc)
	catalogSvc := services.NewCatalogService(db, catalogRepoShim{}, cities)
	authSvc := services.NewAuthService(db, mailer, cfg.Alerts.SiteURL,
		strings.TrimRight(apiBase, "/")+"/auth/verify",
		cfg.Auth.MagicLinkTTL, cfg.Auth.SessionTTL, cfg.Auth.DefaultLocale)

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging, with redaction by default
	if cfg.LogRedact {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{"X-API-Key"},
		}))
	} else {
		r.Use(middleware.Logger())
	}

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 6) Session resolution (anonymous requests continue)
	r.Use(middleware.Session(cfg.Auth.CookieName, sessionResolver(authSvc)))

	// 7) Idempotent replays for authenticated POSTs
	r.Use(middleware.Idempotency(
		middleware.IdempotencyOptions{MaxLen: 200},
		idempotencyLookup(db),
		idempotencySave(db, cfg.IdempotencyTTL),
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotentReplay}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Without an allowlist any origin may read public data, but cookies
		// are never sent cross-site.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: true, // session cookie for the dashboard origin
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", healthHandler(db))

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Services{
		Import:  importSvc,
		Prices:  priceSvc,
		Alerts:  alertSvc,
		Catalog: catalogSvc,
		Auth:    authSvc,
	}, handlers.Options{
		CookieName:     cfg.Auth.CookieName,
		CookieSecure:   cfg.Auth.CookieSecure,
		SiteURL:        cfg.Alerts.SiteURL,
		ExposeLink:     cfg.Auth.ExposeLink,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	api := groupWithPrefix(r, apiBase)
	noStore := middleware.SecurityHeaders(middleware.SecurityOptions{NoStore: true})

	// Public reads
	public := api.Group("", limitBody(maxJSONBody), gzip.Gzip(gzip.DefaultCompression))
	{
		public.GET("/prices", h.GetPrices)
		public.GET("/products", h.ListProducts)
		public.GET("/products/:slug", h.GetProduct)
		public.GET("/categories", h.ListCategories)
		public.GET("/stores", h.ListStores)
	}

	// Magic-link auth
	authRL := middleware.NewRateLimiter(cfg.Auth.RequestRPS, cfg.Auth.RequestBurst, middleware.KeyByIP())
	auth := api.Group("/auth", limitBody(maxJSONBody), noStore)
	{
		auth.POST("/request", authRL.Handler(), h.RequestLink)
		auth.GET("/verify", h.VerifyLink)
		auth.POST("/logout", h.Logout)
	}

	// Session-only endpoints
	private := api.Group("", noStore, middleware.RequireUser())
	{
		private.POST("/import/csv", limitBody(cfg.MaxUploadBytes+maxJSONBody), h.ImportCSV)

		json := private.Group("", limitBody(maxJSONBody))
		json.POST("/prices", h.CreatePrice)
		json.POST("/products", h.CreateProduct)
		json.POST("/stores", h.CreateStore)

		json.GET("/alerts", h.ListAlerts)
		json.POST("/alerts", h.CreateAlert)
		json.DELETE("/alerts", h.DeleteAlert)
		json.GET("/alerts/notifications", h.ListNotifications)

		json.POST("/maintenance/categories", h.ReclassifyCategories)
		json.POST("/maintenance/cities", h.RenormalizeCities)
	}
}

// sessionResolver resolves session tokens through the AuthService.
func sessionResolver(auth *services.AuthService) middleware.SessionResolver {
	return func(ctx context.Context, token string) (string, string, error) {
		u, err := auth.SessionUser(ctx, token)
		if err != nil {
			return "", "", err
		}
		return u.ID, u.Email, nil
	}
}

// idempotencyLookup reads unexpired replay records.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, scope, key string, now time.Time) (int, []byte, bool, error) {
		rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		if errors.Is(err, repo.ErrNotFound) {
			return 0, nil, false, nil
		}
		if err != nil {
			return 0, nil, false, err
		}
		return rec.Status, []byte(rec.Body), true, nil
	}
}

// idempotencySave stores replay records for ttl. A concurrent request that
// stored the same key first wins.
func idempotencySave(db *gorm.DB, ttl time.Duration) middleware.IdempotencySave {
	return func(ctx context.Context, userID, scope, key string, status int, body []byte) error {
		_, err := repo.CreateIdempotency(ctx, db, userID, scope, key, status, body, ttl)
		if errors.Is(err, repo.ErrDuplicate) {
			return nil
		}
		return err
	}
}

// healthHandler reports liveness and database reachability.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			err = sqlDB.PingContext(ctx)
			cancel()
		}
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// limitBody returns a Gin middleware that caps the request body size to
// maxBytes using http.MaxBytesReader. Requests exceeding the cap will cause
// downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
