package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pajakoo/kbiz-price-hunter/internal/services"
)

func multipartUpload(t *testing.T, filename, content, recordedAt string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte(content))
	}
	if recordedAt != "" {
		_ = mw.WriteField("recordedAt", recordedAt)
	}
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/import/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportCSV_Success(t *testing.T) {
	var gotContent string
	var gotAt time.Time
	var gotSource *string
	h := New(Services{Import: stubImport{fn: func(_ context.Context, content string, at time.Time, src *string) (*services.ImportResult, error) {
		gotContent, gotAt, gotSource = content, at, src
		return &services.ImportResult{
			CreatedStores: 1, CreatedProducts: 2, CreatedPrices: 3,
			FirstProduct: &services.ProductRef{Slug: "zlatna-1-a", Name: "A"},
		}, nil
	}}}, Options{})
	r := newTestRouter()
	r.POST("/import/csv", h.ImportCSV)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartUpload(t, " prices.csv ", "h1,h2\na,b\n", "2025-03-01"))

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body)
	}
	if gotContent != "h1,h2\na,b\n" {
		t.Fatalf("content=%q", gotContent)
	}
	if !gotAt.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("recordedAt=%v", gotAt)
	}
	if gotSource == nil || *gotSource != "prices.csv" {
		t.Fatalf("source=%v", gotSource)
	}
	body := decode[map[string]any](t, w)
	if body["ok"] != true || body["createdStores"] != 1.0 || body["createdProducts"] != 2.0 || body["createdPrices"] != 3.0 {
		t.Fatalf("body=%v", body)
	}
	if fp, _ := body["firstProduct"].(map[string]any); fp["slug"] != "zlatna-1-a" {
		t.Fatalf("firstProduct=%v", body["firstProduct"])
	}
}

func TestImportCSV_Validation(t *testing.T) {
	called := false
	h := New(Services{Import: stubImport{fn: func(context.Context, string, time.Time, *string) (*services.ImportResult, error) {
		called = true
		return &services.ImportResult{}, nil
	}}}, Options{MaxUploadBytes: 8})
	r := newTestRouter()
	r.POST("/import/csv", h.ImportCSV)

	cases := []struct {
		name   string
		req    *http.Request
		status int
		code   string
	}{
		{"no file", multipartUpload(t, "", "", "2025-03-01"), 400, ErrCodeBadRequest},
		{"no date", multipartUpload(t, "a.csv", "x", ""), 400, ErrCodeBadRequest},
		{"bad date", multipartUpload(t, "a.csv", "x", "01.03.2025"), 400, ErrCodeBadRequest},
		{"too large", multipartUpload(t, "a.csv", "0123456789", "2025-03-01"), 413, ErrCodeTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, tc.req)
			mustErr(t, w, tc.status, tc.code)
		})
	}
	if called {
		t.Fatal("service must not run for invalid uploads")
	}
}

func TestImportCSV_BodyOverLimit(t *testing.T) {
	h := New(Services{Import: stubImport{fn: func(context.Context, string, time.Time, *string) (*services.ImportResult, error) {
		t.Fatal("service must not run when the body is cut off")
		return nil, nil
	}}}, Options{MaxUploadBytes: 1 << 20})
	r := newTestRouter()
	r.POST("/import/csv", h.ImportCSV)

	req := multipartUpload(t, "a.csv", strings.Repeat("x", 4096), "2025-03-01")
	req.Body = http.MaxBytesReader(nil, req.Body, 512)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	mustErr(t, w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge)
}

func TestImportCSV_ServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{services.ErrEmptyCSV, 400, ErrCodeBadRequest, "CSV file has no rows"},
		{&services.MissingHeadersError{Headers: []string{"Код на продукта", "Цена в промоция"}}, 400, ErrCodeBadRequest, "Missing headers: Код на продукта, Цена в промоция"},
		{errors.New("line 4: database is locked"), 500, ErrCodeImportFailed, "import failed"},
	}
	for _, tc := range cases {
		h := New(Services{Import: stubImport{fn: func(context.Context, string, time.Time, *string) (*services.ImportResult, error) {
			return &services.ImportResult{CreatedPrices: 2}, tc.err
		}}}, Options{})
		r := newTestRouter()
		r.POST("/import/csv", h.ImportCSV)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartUpload(t, "a.csv", "x", "2025-03-01"))
		if er := mustErr(t, w, tc.status, tc.code); er.Error != tc.msg {
			t.Fatalf("msg=%q want %q", er.Error, tc.msg)
		}
	}
}
