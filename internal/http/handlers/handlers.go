// Package handlers exposes the JSON API of the price catalog.
//
// Handlers are transport-thin: they bind and validate input, call the
// application services through the interfaces below, and translate results
// and service errors into HTTP responses. Authentication is resolved by
// middleware; private handlers read the user with middleware.UserID.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/http/middleware"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
	"github.com/pajakoo/kbiz-price-hunter/internal/services"
	"github.com/pajakoo/kbiz-price-hunter/internal/utils"
)

//
// Service contracts (context-aware)
//

// ImportService ingests supplier CSV files.
type ImportService interface {
	Import(ctx context.Context, content string, recordedAt time.Time, source *string) (*services.ImportResult, error)
}

// PriceService records single prices and builds chart series.
type PriceService interface {
	Create(ctx context.Context, in services.PriceInput) (*domain.Price, error)
	Series(ctx context.Context, productID, productSlug string, maxPoints int) (*domain.Product, []services.StoreSeries, error)
}

// AlertService manages price-drop subscriptions and their notifications.
type AlertService interface {
	Subscribe(ctx context.Context, userID, productID, productSlug string) (*domain.PriceAlertSubscription, error)
	Unsubscribe(ctx context.Context, userID, productID string) error
	List(ctx context.Context, userID string) ([]services.Subscription, error)
	ListNotifications(ctx context.Context, userID string, page, pageSize int) ([]domain.PriceAlertNotification, int64, error)
}

// CatalogService serves products, stores and catalog maintenance.
type CatalogService interface {
	ListProducts(ctx context.Context, f repo.ProductFilter, page, pageSize int) ([]domain.Product, int64, error)
	ProductsStats(ctx context.Context, f repo.ProductFilter) (int64, *time.Time, error)
	GetProduct(ctx context.Context, slug string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in services.ProductInput) (*domain.Product, error)
	ListStores(ctx context.Context) ([]domain.Store, error)
	CreateStore(ctx context.Context, name, city string) (*domain.Store, error)
	ReclassifyProducts(ctx context.Context) (int, error)
	RenormalizeCities(ctx context.Context) (int, error)
}

// AuthService issues magic links and sessions.
type AuthService interface {
	Locale(l string) string
	RequestLink(ctx context.Context, email, locale, origin string) (*services.LoginLink, error)
	Verify(ctx context.Context, token, locale string) (*services.LoginSession, error)
	Logout(ctx context.Context, token string) error
}

//
// Handler wiring
//

// Services bundles the application services the handlers depend on.
type Services struct {
	Import  ImportService
	Prices  PriceService
	Alerts  AlertService
	Catalog CatalogService
	Auth    AuthService
}

// Options carries transport settings that are not service concerns.
type Options struct {
	// CookieName is the session cookie set by Verify and cleared by Logout.
	CookieName string
	// CookieSecure marks the session cookie Secure.
	CookieSecure bool
	// SiteURL is the dashboard origin Verify redirects to.
	SiteURL string
	// ExposeLink returns the magic link in the RequestLink response.
	ExposeLink bool
	// MaxUploadBytes caps CSV uploads.
	MaxUploadBytes int64
}

// Handlers groups every API endpoint.
type Handlers struct {
	svc  Services
	opts Options
}

// New constructs and returns a Handlers instance bound to the given services.
func New(svc Services, opts Options) *Handlers {
	if opts.CookieName == "" {
		opts.CookieName = "kbiz_session"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	return &Handlers{svc: svc, opts: opts}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination reads the page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ClampPage(c.Query("page"), c.Query("page_size"))
}

// userID is the session user; private routes run behind RequireUser.
func userID(c *gin.Context) string { return middleware.UserID(c) }

// bindJSON decodes an optional JSON body into dst. An empty or malformed
// body leaves dst at its zero value, so handlers report the missing fields
// rather than a parse error.
func bindJSON(c *gin.Context, dst any) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return
	}
	_ = c.ShouldBindJSON(dst)
}
