// Package middleware contains the Gin middleware shared by every route:
// correlation IDs, access logging, panic recovery, session resolution,
// idempotent replays, rate limiting, metrics and security headers.
//
// Both access loggers attach a request-scoped zerolog.Logger under the
// "logger" Gin key for handlers and on the request context, where services
// reach it through zerolog.Ctx. Install RequestID first, then a logger, then
// Recovery, so panics carry the correlation ID.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	maxQueryLogLength = 2048
	maxRequestIDLen   = 128
)

// RequestID echoes a client-supplied X-Request-ID, or a fresh UUID when the
// header is missing or longer than maxRequestIDLen.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger writes one access log line per request, including client IP and
// user agent. Use RedactingLogger where logs leave the host.
func Logger() gin.HandlerFunc { return accessLog(nil) }

// accessLog is the shared body of Logger and RedactingLogger. A nil scrubber
// logs the query verbatim and adds client details instead of headers.
func accessLog(s *scrubber) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		l := log.With().
			Str("request_id", currentRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Logger()
		attachLogger(c, &l)

		// Captured before the handler runs; handlers may rewrite the request.
		query := c.Request.URL.RawQuery
		var headers map[string]string
		if s != nil {
			query = s.query(query)
			headers = s.headers(c.Request.Header)
		}

		c.Next()

		status := c.Writer.Status()
		ev := eventFor(&l, status, len(c.Errors) > 0).
			Str("user_id", UserID(c)).
			Str("query", truncate(query, maxQueryLogLength)).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start))
		if s == nil {
			ev = ev.Str("remote_ip", c.ClientIP()).Str("user_agent", c.Request.UserAgent())
		} else {
			ev = ev.Interface("headers", headers)
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Msg("http_request")
	}
}

// eventFor picks the level: error for 5xx or recorded gin errors, warn for
// 4xx, info otherwise.
func eventFor(l *zerolog.Logger, status int, hasErrors bool) *zerolog.Event {
	switch {
	case hasErrors || status >= http.StatusInternalServerError:
		return l.Error()
	case status >= http.StatusBadRequest:
		return l.Warn()
	default:
		return l.Info()
	}
}

// Recovery turns a panic into a JSON 500 in the standard error envelope and
// logs the stack with the request ID.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			abortJSON(c, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or a plain child of the
// global logger when none was attached.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if lg, ok := c.Value(loggerKey).(*zerolog.Logger); ok {
		return lg
	}
	l := log.With().Logger()
	return &l
}

func attachLogger(c *gin.Context, l *zerolog.Logger) {
	c.Set(loggerKey, l)
	c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
}

// currentRequestID prefers the ID RequestID echoed on the response.
func currentRequestID(c *gin.Context) string {
	if rid := c.Writer.Header().Get(requestIDHeader); rid != "" {
		return rid
	}
	return c.GetHeader(requestIDHeader)
}

// abortJSON writes the standard error envelope for middleware that runs
// before any handler.
func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"ok":         false,
		"request_id": currentRequestID(c),
		"code":       code,
		"error":      msg,
	})
}

// routePath is the registered route, or the raw path when nothing matched.
func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// truncate cuts s to max bytes and appends an ellipsis; max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
