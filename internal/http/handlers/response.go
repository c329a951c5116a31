// Response helpers shared by every endpoint. Success
// bodies carry "ok": true next to their payload; failures use ErrorResponse.
// fail logs 5xx responses with the request-scoped logger.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "ok": false,
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "error": "product not found"
//	}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pajakoo/kbiz-price-hunter/internal/http/middleware"
	"github.com/pajakoo/kbiz-price-hunter/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Always false
	OK bool `json:"ok" example:"false"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Error string `json:"error" example:"product not found"`
}

// OKResponse is the body of endpoints that only report success.
type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		ev := lg.Error().Int("status", status).Str("code", code)
		if len(c.Errors) > 0 {
			ev = ev.Str("cause", c.Errors.Last().Error())
		}
		ev.Msg(msg)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		OK:        false,
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Error:     msg,
	})
}

// Fail is the exported variant of fail, used by the router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failErr maps a service error to its HTTP status. Errors that are not part
// of the service vocabulary become a 500 with code and msg; the cause is
// logged, never sent.
func failErr(c *gin.Context, err error, code, msg string) {
	var missing *services.MissingHeadersError
	switch {
	case errors.As(err, &missing):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, missing.Error())
	case errors.Is(err, services.ErrProductRefRequired),
		errors.Is(err, services.ErrStoreRequired),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidCurrency),
		errors.Is(err, services.ErrInvalidProduct),
		errors.Is(err, services.ErrInvalidStore),
		errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrEmptyCSV):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrStoreNotFound),
		errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateSlug),
		errors.Is(err, services.ErrDuplicateStore):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrNoSession):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized.")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, code, msg)
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
