package middleware

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// RedactOptions extends the built-in scrubbing of RedactingLogger.
type RedactOptions struct {
	// MaskHeaders are masked in addition to Authorization, Cookie and
	// Set-Cookie. Matching is case-insensitive.
	MaskHeaders []string
	// MaskParams are query parameters whose values are masked in addition to
	// "token".
	MaskParams []string
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits only, so hex runs inside UUIDs never match.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// redact scrubs IDs, then emails, then phone numbers. The phone pattern is
// the loosest and must run last.
func redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// scrubber holds the lowercase header names and the query parameters whose
// values are masked outright.
type scrubber struct {
	maskHeaders map[string]struct{}
	maskParams  map[string]struct{}
}

func newScrubber(opts RedactOptions) *scrubber {
	s := &scrubber{
		maskHeaders: map[string]struct{}{"authorization": {}, "cookie": {}, "set-cookie": {}},
		maskParams:  map[string]struct{}{"token": {}},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			s.maskHeaders[h] = struct{}{}
		}
	}
	for _, p := range opts.MaskParams {
		if p = strings.TrimSpace(p); p != "" {
			s.maskParams[p] = struct{}{}
		}
	}
	return s
}

func (s *scrubber) query(raw string) string {
	return redact(maskQuery(raw, s.maskParams))
}

func (s *scrubber) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := s.maskHeaders[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = redact(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger is the access logger used in production. It never logs
// bodies or the client IP; it masks session cookies, bearer tokens and
// magic-link tokens, and scrubs emails, UUIDs and phone numbers from the
// query and header values.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	return accessLog(newScrubber(opts))
}

// maskQuery replaces the values of sensitive parameters. Unparseable queries
// are returned unchanged for the regex pass.
func maskQuery(raw string, params map[string]struct{}) string {
	if raw == "" {
		return raw
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return raw
	}
	masked := false
	for k := range q {
		if _, ok := params[k]; ok {
			q[k] = []string{"REDACTED"}
			masked = true
		}
	}
	if !masked {
		return raw
	}
	return q.Encode()
}
