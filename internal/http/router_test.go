package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pajakoo/kbiz-price-hunter/internal/config"
	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/http/middleware"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:     "/api/v1",
		LogRedact:       true,
		MaxUploadBytes:  1 << 20,
		MaxSeriesPoints: 100,
		RateRPS:         100,
		RateBurst:       100,
		IdempotencyTTL:  time.Hour,
		Auth: config.AuthConfig{
			SessionTTL:    time.Hour,
			MagicLinkTTL:  time.Minute,
			CookieName:    "kbiz_session",
			ExposeLink:    true,
			DefaultLocale: "en",
			RequestRPS:    1,
			RequestBurst:  5,
		},
		Alerts: config.AlertConfig{SiteURL: "http://site.test", MaxParallel: 2},
		OTEL:   config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newTestEngine(t *testing.T, dbName string, mutate func(*config.Config)) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	db := newTestDB(t, dbName)
	r := gin.New()
	RegisterRoutes(r, db, nil, nil, cfg)
	return r, db
}

func serve(r http.Handler, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _ := newTestEngine(t, "router_basic", nil)

	// /health works
	w := serve(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	// /metrics is wired
	w = serve(r, http.MethodGet, "/metrics", nil, nil)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404 envelope
	w = serve(r, http.MethodGet, "/nope", nil, nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), `"code":"not_found"`) {
		t.Fatalf("GET /nope = %d %s", w.Code, w.Body.String())
	}

	// NoMethod → 405 (PUT /health)
	w = serve(r, http.MethodPut, "/health", nil, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PUT /health expected 405, got %d", w.Code)
	}

	// Swagger disabled by default
	w = serve(r, http.MethodGet, "/swagger/index.html", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be off, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_Credentials(t *testing.T) {
	r, _ := newTestEngine(t, "router_cors", func(c *config.Config) {
		c.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	})

	w := serve(r, http.MethodGet, "/health", nil, map[string]string{"Origin": "http://example.com"})
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials allowed, got %q", got)
	}
}

func TestRegisterRoutes_Health_DBDown(t *testing.T) {
	r, db := newTestEngine(t, "router_down", nil)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	_ = sqlDB.Close()

	w := serve(r, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestRegisterRoutes_PrivateRoutesRequireSession(t *testing.T) {
	r, _ := newTestEngine(t, "router_private", nil)

	cases := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/prices"},
		{http.MethodPost, "/api/v1/import/csv"},
		{http.MethodGet, "/api/v1/alerts"},
		{http.MethodPost, "/api/v1/alerts"},
		{http.MethodDelete, "/api/v1/alerts"},
		{http.MethodGet, "/api/v1/alerts/notifications"},
		{http.MethodPost, "/api/v1/products"},
		{http.MethodPost, "/api/v1/stores"},
		{http.MethodPost, "/api/v1/maintenance/categories"},
		{http.MethodPost, "/api/v1/maintenance/cities"},
	}
	for _, tc := range cases {
		w := serve(r, tc.method, tc.path, nil, map[string]string{"Cookie": "kbiz_session=bogus"})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s = %d, want 401", tc.method, tc.path, w.Code)
		}
		if w.Header().Get("Cache-Control") != "no-store" {
			t.Fatalf("%s %s missing no-store", tc.method, tc.path)
		}
	}
}

func TestRegisterRoutes_PublicReads(t *testing.T) {
	r, db := newTestEngine(t, "router_public", nil)
	ctx := context.Background()
	if err := repo.CreateProduct(ctx, db, &domain.Product{Slug: "milk-1l", Name: "Milk 1L"}); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	for _, p := range []string{"/api/v1/products", "/api/v1/products/milk-1l", "/api/v1/categories", "/api/v1/stores", "/api/v1/prices?productSlug=milk-1l"} {
		w := serve(r, http.MethodGet, p, nil, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s = %d %s", p, w.Code, w.Body.String())
		}
	}

	w := serve(r, http.MethodGet, "/api/v1/products", nil, map[string]string{"Accept-Encoding": "gzip"})
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip on public reads")
	}
}

func TestRegisterRoutes_AuthRequestIsRateLimitedPerIP(t *testing.T) {
	r, _ := newTestEngine(t, "router_authrl", func(c *config.Config) {
		c.Auth.RequestRPS = 0
		c.Auth.RequestBurst = 1
	})

	body := `{"email":"ana@example.com"}`
	hdr := map[string]string{"Content-Type": "application/json"}
	if w := serve(r, http.MethodPost, "/api/v1/auth/request", strings.NewReader(body), hdr); w.Code != http.StatusOK {
		t.Fatalf("first request = %d %s", w.Code, w.Body.String())
	}
	if w := serve(r, http.MethodPost, "/api/v1/auth/request", strings.NewReader(body), hdr); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", w.Code)
	}
}

// Login through the magic link, then write a price twice with the same
// Idempotency-Key: the second call is replayed and stores nothing.
func TestRegisterRoutes_LoginThenIdempotentPriceWrite(t *testing.T) {
	r, db := newTestEngine(t, "router_e2e", nil)
	ctx := context.Background()

	product := &domain.Product{Slug: "bread", Name: "Bread"}
	if err := repo.CreateProduct(ctx, db, product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	store, err := repo.CreateStore(ctx, db, "Kaufland", nil)
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}

	// 1) request the link
	w := serve(r, http.MethodPost, "/api/v1/auth/request",
		strings.NewReader(`{"email":"Ana@Example.com","locale":"bg"}`),
		map[string]string{"Content-Type": "application/json"})
	if w.Code != http.StatusOK {
		t.Fatalf("auth/request = %d %s", w.Code, w.Body.String())
	}
	var linkResp struct {
		MagicLink string `json:"magicLink"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &linkResp); err != nil || linkResp.MagicLink == "" {
		t.Fatalf("no magic link: %v %s", err, w.Body.String())
	}
	u, err := url.Parse(linkResp.MagicLink)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if u.Path != "/api/v1/auth/verify" {
		t.Fatalf("link path = %q", u.Path)
	}

	// 2) verify → cookie + redirect
	w = serve(r, http.MethodGet, u.RequestURI(), nil, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("verify = %d %s", w.Code, w.Body.String())
	}
	if loc := w.Header().Get("Location"); loc != "http://site.test/bg/dashboard" {
		t.Fatalf("redirect = %q", loc)
	}
	var session string
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "kbiz_session" {
			session = ck.Value
		}
	}
	if session == "" {
		t.Fatalf("session cookie not set")
	}
	auth := map[string]string{
		"Content-Type":                  "application/json",
		"Cookie":                        "kbiz_session=" + session,
		middleware.HeaderIdempotencyKey: "price-write-1",
	}

	// 3) write a price twice with the same key
	body := `{"productSlug":"bread","storeId":"` + store.ID + `","amount":1.29}`
	first := serve(r, http.MethodPost, "/api/v1/prices", bytes.NewBufferString(body), auth)
	if first.Code != http.StatusCreated {
		t.Fatalf("first write = %d %s", first.Code, first.Body.String())
	}
	second := serve(r, http.MethodPost, "/api/v1/prices", bytes.NewBufferString(body), auth)
	if second.Code != http.StatusCreated || second.Header().Get(middleware.HeaderIdempotentReplay) != "true" {
		t.Fatalf("second write not replayed: %d %v", second.Code, second.Header())
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replayed body differs:\n%s\n%s", first.Body.String(), second.Body.String())
	}
	n, err := repo.CountPrices(ctx, db, product.ID)
	if err != nil || n != 1 {
		t.Fatalf("prices stored = %d (%v), want 1", n, err)
	}

	// 4) logout clears the session
	w = serve(r, http.MethodPost, "/api/v1/auth/logout", nil, map[string]string{"Cookie": "kbiz_session=" + session})
	if w.Code != http.StatusOK {
		t.Fatalf("logout = %d", w.Code)
	}
	w = serve(r, http.MethodGet, "/api/v1/alerts", nil, map[string]string{"Cookie": "kbiz_session=" + session})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("alerts after logout = %d, want 401", w.Code)
	}
}

func Test_catalogRepoShim_Proxies(t *testing.T) {
	db := newTestDB(t, "router_shim")
	shim := catalogRepoShim{}
	ctx := context.Background()

	p := &domain.Product{Slug: "eggs", Name: "Eggs"}
	if err := shim.CreateProduct(ctx, db, p); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	got, err := shim.GetProductBySlug(ctx, db, "eggs")
	if err != nil || got.ID != p.ID {
		t.Fatalf("GetProductBySlug: %+v %v", got, err)
	}
	n, err := shim.CountProducts(ctx, db, repo.ProductFilter{})
	if err != nil || n != 1 {
		t.Fatalf("CountProducts = %d %v", n, err)
	}
	page, err := shim.ListProductsPage(ctx, db, repo.ProductFilter{}, 0, 10)
	if err != nil || len(page) != 1 {
		t.Fatalf("ListProductsPage = %d %v", len(page), err)
	}
	cnt, maxUpd, err := shim.ProductsStats(ctx, db, repo.ProductFilter{})
	if err != nil || cnt != 1 || maxUpd == nil {
		t.Fatalf("ProductsStats = %d %v %v", cnt, maxUpd, err)
	}

	s, err := shim.CreateStore(ctx, db, "Lidl", nil)
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	city := "Sofia"
	if err := shim.UpdateStoreCity(ctx, db, s.ID, &city); err != nil {
		t.Fatalf("UpdateStoreCity: %v", err)
	}
	stores, err := shim.ListStores(ctx, db)
	if err != nil || len(stores) != 1 || stores[0].City == nil || *stores[0].City != "Sofia" {
		t.Fatalf("ListStores = %+v %v", stores, err)
	}
}

func Test_idempotencyCallbacks(t *testing.T) {
	db := newTestDB(t, "router_idem")
	ctx := context.Background()
	lookup := idempotencyLookup(db)
	save := idempotencySave(db, time.Hour)

	if _, _, found, err := lookup(ctx, "u1", "/api/v1/prices", "k1", time.Now().UTC()); found || err != nil {
		t.Fatalf("miss expected, found=%v err=%v", found, err)
	}
	if err := save(ctx, "u1", "/api/v1/prices", "k1", http.StatusCreated, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	// duplicate save is absorbed
	if err := save(ctx, "u1", "/api/v1/prices", "k1", http.StatusCreated, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("duplicate save: %v", err)
	}
	status, body, found, err := lookup(ctx, "u1", "/api/v1/prices", "k1", time.Now().UTC())
	if err != nil || !found || status != http.StatusCreated || string(body) != `{"ok":true}` {
		t.Fatalf("hit = %d %s %v %v", status, body, found, err)
	}
	// expired records are ignored
	if _, _, found, _ := lookup(ctx, "u1", "/api/v1/prices", "k1", time.Now().Add(2*time.Hour)); found {
		t.Fatalf("expired record should not be found")
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := serve(r, http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB"), nil) // 12 bytes
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := serve(r, http.MethodGet, path, nil, nil)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
}
