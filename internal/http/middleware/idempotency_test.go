package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// memStore is an in-memory replay store keyed by user|scope|key.
type memStore struct {
	entries map[string]memEntry
	lookups int
	saves   int
	failGet bool
}

type memEntry struct {
	status int
	body   []byte
}

func newMemStore() *memStore { return &memStore{entries: map[string]memEntry{}} }

func (m *memStore) lookup(_ context.Context, uid, scope, key string, _ time.Time) (int, []byte, bool, error) {
	m.lookups++
	if m.failGet {
		return 0, nil, false, errors.New("db down")
	}
	e, ok := m.entries[uid+"|"+scope+"|"+key]
	return e.status, e.body, ok, nil
}

func (m *memStore) save(_ context.Context, uid, scope, key string, status int, body []byte) error {
	m.saves++
	m.entries[uid+"|"+scope+"|"+key] = memEntry{status: status, body: append([]byte(nil), body...)}
	return nil
}

// idemRouter wires Idempotency behind a fake session for user "u1" and
// counts handler invocations.
func idemRouter(store *memStore, status int, calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Anon") == "" {
			c.Set(userIDKey, "u1")
		}
		c.Next()
	})
	r.Use(Idempotency(IdempotencyOptions{}, store.lookup, store.save))
	handler := func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"ok": status < 300, "call": *calls})
	}
	r.POST("/api/v1/prices", handler)
	r.POST("/api/v1/import", handler)
	r.GET("/api/v1/prices", handler)
	return r
}

func postWithKey(r *gin.Engine, path, key string, hdr ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	store := newMemStore()
	calls := 0
	r := idemRouter(store, http.StatusCreated, &calls)

	first := postWithKey(r, "/api/v1/prices", "k-1")
	if first.Code != http.StatusCreated || calls != 1 || store.saves != 1 {
		t.Fatalf("first: code=%d calls=%d saves=%d", first.Code, calls, store.saves)
	}
	if first.Header().Get(HeaderIdempotentReplay) != "" {
		t.Fatal("first response must not be marked as replay")
	}

	second := postWithKey(r, "/api/v1/prices", "k-1")
	if calls != 1 {
		t.Fatalf("handler ran again on replay (calls=%d)", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("replay = %d %s, want %d %s", second.Code, second.Body, first.Code, first.Body)
	}
	if second.Header().Get(HeaderIdempotentReplay) != "true" {
		t.Fatal("replay header missing")
	}

	// Same key on another route is a different scope.
	third := postWithKey(r, "/api/v1/import", "k-1")
	if third.Code != http.StatusCreated || calls != 2 {
		t.Fatalf("other scope: code=%d calls=%d", third.Code, calls)
	}
}

func TestIdempotency_DoesNotStoreFailures(t *testing.T) {
	store := newMemStore()
	calls := 0
	r := idemRouter(store, http.StatusBadRequest, &calls)

	postWithKey(r, "/api/v1/prices", "k-err")
	postWithKey(r, "/api/v1/prices", "k-err")
	if calls != 2 || store.saves != 0 {
		t.Fatalf("calls=%d saves=%d, want 2/0", calls, store.saves)
	}
}

func TestIdempotency_InvalidKey(t *testing.T) {
	store := newMemStore()
	calls := 0
	r := idemRouter(store, http.StatusCreated, &calls)

	for _, key := range []string{"has space", strings.Repeat("a", 201)} {
		w := postWithKey(r, "/api/v1/prices", key)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: code=%d", key, w.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["code"] != "bad_idempotency_key" {
			t.Fatalf("body = %v", body)
		}
	}
	if calls != 0 || store.lookups != 0 {
		t.Fatalf("calls=%d lookups=%d", calls, store.lookups)
	}
}

func TestIdempotency_CustomOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Idempotency(IdempotencyOptions{MaxLen: 4, Pattern: regexp.MustCompile(`^[0-9]+$`)}, nil, nil))
	r.POST("/x", func(c *gin.Context) {
		if k, ok := GetIdempotencyKey(c); !ok || k != "1234" {
			t.Fatalf("key = %q %v", k, ok)
		}
		c.Status(http.StatusNoContent)
	})

	if w := postWithKey(r, "/x", "12345"); w.Code != http.StatusBadRequest {
		t.Fatalf("too long: %d", w.Code)
	}
	if w := postWithKey(r, "/x", "abcd"); w.Code != http.StatusBadRequest {
		t.Fatalf("pattern: %d", w.Code)
	}
	if w := postWithKey(r, "/x", "1234"); w.Code != http.StatusNoContent {
		t.Fatalf("valid: %d", w.Code)
	}
}

func TestIdempotency_PassThrough(t *testing.T) {
	store := newMemStore()
	calls := 0
	r := idemRouter(store, http.StatusCreated, &calls)

	// Anonymous callers are not tracked.
	postWithKey(r, "/api/v1/prices", "k-anon", "X-Test-Anon", "1")
	postWithKey(r, "/api/v1/prices", "k-anon", "X-Test-Anon", "1")
	// No key.
	postWithKey(r, "/api/v1/prices", "")
	// GET is never replayed.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/prices", nil)
	req.Header.Set(HeaderIdempotencyKey, "k-get")
	r.ServeHTTP(w, req)

	if calls != 4 || store.lookups != 0 || store.saves != 0 {
		t.Fatalf("calls=%d lookups=%d saves=%d", calls, store.lookups, store.saves)
	}
}

func TestIdempotency_LookupErrorRunsHandler(t *testing.T) {
	captureLogger(t)
	store := newMemStore()
	store.failGet = true
	calls := 0
	r := idemRouter(store, http.StatusCreated, &calls)

	w := postWithKey(r, "/api/v1/prices", "k-2")
	if w.Code != http.StatusCreated || calls != 1 {
		t.Fatalf("code=%d calls=%d", w.Code, calls)
	}
	if w.Header().Get(HeaderIdempotentReplay) != "" {
		t.Fatal("not a replay")
	}
}

func TestHelpers_GetIdempotencyKey_IsReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected empty key when not set")
	}
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false by default")
	}
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must read as absent")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay flag must read as false")
	}
}
