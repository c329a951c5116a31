package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
	"github.com/pajakoo/kbiz-price-hunter/internal/services"
)

// ---------- service stubs ----------

type stubImport struct {
	fn func(ctx context.Context, content string, recordedAt time.Time, source *string) (*services.ImportResult, error)
}

func (s stubImport) Import(ctx context.Context, content string, recordedAt time.Time, source *string) (*services.ImportResult, error) {
	return s.fn(ctx, content, recordedAt, source)
}

type stubPrices struct {
	create func(ctx context.Context, in services.PriceInput) (*domain.Price, error)
	series func(ctx context.Context, productID, productSlug string, maxPoints int) (*domain.Product, []services.StoreSeries, error)
}

func (s stubPrices) Create(ctx context.Context, in services.PriceInput) (*domain.Price, error) {
	return s.create(ctx, in)
}

func (s stubPrices) Series(ctx context.Context, productID, productSlug string, maxPoints int) (*domain.Product, []services.StoreSeries, error) {
	return s.series(ctx, productID, productSlug, maxPoints)
}

type stubAlerts struct {
	subscribe     func(ctx context.Context, userID, productID, productSlug string) (*domain.PriceAlertSubscription, error)
	unsubscribe   func(ctx context.Context, userID, productID string) error
	list          func(ctx context.Context, userID string) ([]services.Subscription, error)
	notifications func(ctx context.Context, userID string, page, pageSize int) ([]domain.PriceAlertNotification, int64, error)
}

func (s stubAlerts) Subscribe(ctx context.Context, userID, productID, productSlug string) (*domain.PriceAlertSubscription, error) {
	return s.subscribe(ctx, userID, productID, productSlug)
}

func (s stubAlerts) Unsubscribe(ctx context.Context, userID, productID string) error {
	return s.unsubscribe(ctx, userID, productID)
}

func (s stubAlerts) List(ctx context.Context, userID string) ([]services.Subscription, error) {
	return s.list(ctx, userID)
}

func (s stubAlerts) ListNotifications(ctx context.Context, userID string, page, pageSize int) ([]domain.PriceAlertNotification, int64, error) {
	return s.notifications(ctx, userID, page, pageSize)
}

type stubCatalog struct {
	list        func(ctx context.Context, f repo.ProductFilter, page, pageSize int) ([]domain.Product, int64, error)
	stats       func(ctx context.Context, f repo.ProductFilter) (int64, *time.Time, error)
	get         func(ctx context.Context, slug string) (*domain.Product, error)
	create      func(ctx context.Context, in services.ProductInput) (*domain.Product, error)
	stores      func(ctx context.Context) ([]domain.Store, error)
	createStore func(ctx context.Context, name, city string) (*domain.Store, error)
	reclassify  func(ctx context.Context) (int, error)
	cities      func(ctx context.Context) (int, error)
}

func (s stubCatalog) ListProducts(ctx context.Context, f repo.ProductFilter, page, pageSize int) ([]domain.Product, int64, error) {
	return s.list(ctx, f, page, pageSize)
}

func (s stubCatalog) ProductsStats(ctx context.Context, f repo.ProductFilter) (int64, *time.Time, error) {
	return s.stats(ctx, f)
}

func (s stubCatalog) GetProduct(ctx context.Context, slug string) (*domain.Product, error) {
	return s.get(ctx, slug)
}

func (s stubCatalog) CreateProduct(ctx context.Context, in services.ProductInput) (*domain.Product, error) {
	return s.create(ctx, in)
}

func (s stubCatalog) ListStores(ctx context.Context) ([]domain.Store, error) { return s.stores(ctx) }

func (s stubCatalog) CreateStore(ctx context.Context, name, city string) (*domain.Store, error) {
	return s.createStore(ctx, name, city)
}

func (s stubCatalog) ReclassifyProducts(ctx context.Context) (int, error) { return s.reclassify(ctx) }

func (s stubCatalog) RenormalizeCities(ctx context.Context) (int, error) { return s.cities(ctx) }

type stubAuth struct {
	request func(ctx context.Context, email, locale, origin string) (*services.LoginLink, error)
	verify  func(ctx context.Context, token, locale string) (*services.LoginSession, error)
	logout  func(ctx context.Context, token string) error
}

func (stubAuth) Locale(l string) string { return l }

func (s stubAuth) RequestLink(ctx context.Context, email, locale, origin string) (*services.LoginLink, error) {
	return s.request(ctx, email, locale, origin)
}

func (s stubAuth) Verify(ctx context.Context, token, locale string) (*services.LoginSession, error) {
	return s.verify(ctx, token, locale)
}

func (s stubAuth) Logout(ctx context.Context, token string) error { return s.logout(ctx, token) }

// ---------- request helpers ----------

// newTestRouter returns an engine that marks every request as coming from
// user "u1" unless the X-Test-Anon header is present.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-test")
		if c.GetHeader("X-Test-Anon") == "" {
			c.Set("userID", "u1")
		}
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				t.Fatal(err)
			}
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return v
}

func mustErr(t *testing.T, w *httptest.ResponseRecorder, status int, code string) ErrorResponse {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status=%d want %d (%s)", w.Code, status, w.Body.String())
	}
	er := decode[ErrorResponse](t, w)
	if er.OK || er.Code != code || er.RequestID != "rid-test" {
		t.Fatalf("error body=%+v", er)
	}
	return er
}
