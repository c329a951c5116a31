// Package config provides application configuration loaded from environment
// variables (optionally seeded from a .env file) with defaults and
// validation. It centralizes server timeouts, logging, the database
// connection, auth and alert mail settings, rate limiting and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// DBConfig selects the GORM driver and its connection string.
type DBConfig struct {
	Driver       string        // DB_DRIVER: sqlite|postgres
	Path         string        // DB_PATH: SQLite file
	URL          string        // DATABASE_URL: postgres DSN
	MaxOpenConns int           // DB_MAX_OPEN_CONNS
	MaxIdleConns int           // DB_MAX_IDLE_CONNS
	ConnMaxLife  time.Duration // DB_CONN_MAX_LIFETIME
}

// AuthConfig controls magic-link login and the session cookie.
type AuthConfig struct {
	SessionTTL    time.Duration // SESSION_TTL
	MagicLinkTTL  time.Duration // MAGIC_LINK_TTL
	CookieName    string        // SESSION_COOKIE
	CookieSecure  bool          // SESSION_COOKIE_SECURE
	ExposeLink    bool          // AUTH_EXPOSE_LINK: return the link in the JSON response
	DefaultLocale string        // DEFAULT_LOCALE
	RequestRPS    float64       // AUTH_RATE_RPS: magic-link requests per second per IP
	RequestBurst  int           // AUTH_RATE_BURST
}

// AlertConfig configures the price-drop email sender. Sending is disabled
// unless both ResendAPIKey and FromEmail are set.
type AlertConfig struct {
	ResendAPIKey string // RESEND_API_KEY
	FromEmail    string // ALERT_FROM_EMAIL
	SiteURL      string // SITE_URL | NEXT_PUBLIC_SITE_URL | ALERT_SITE_URL
	MaxParallel  int    // ALERT_MAX_PARALLEL
}

// MailEnabled reports whether outbound mail is configured.
func (a AlertConfig) MailEnabled() bool {
	return strings.TrimSpace(a.ResendAPIKey) != "" && strings.TrimSpace(a.FromEmail) != ""
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "kbiz-price-hunter")
	Environment string  // DEPLOY_ENV (e.g. "production"), optional
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	LogRedact      bool   // scrub PII from access logs
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DB DBConfig

	// Catalog / import
	RegionCodesPath string // REGION_CODES_PATH, empty uses the embedded table
	MaxUploadBytes  int64  // MAX_UPLOAD_BYTES for CSV uploads
	MaxSeriesPoints int    // PRICE_MAX_POINTS hard cap for price series

	// Auth / alerts
	Auth   AuthConfig
	Alerts AlertConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables, applies defaults,
// normalizes values, and validates the result. A .env file in the working
// directory (or the file named by ENV_FILE) is loaded first; variables
// already set in the environment win.
func Load() (Config, error) {
	loadDotEnv()

	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		LogRedact:      getbool("LOG_REDACT", true),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DB: DBConfig{
			Driver:       strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:         getenv("DB_PATH", "kbiz.db"),
			URL:          getenv("DATABASE_URL", ""),
			MaxOpenConns: getint("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getint("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLife:  getdur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},

		// Catalog / import
		RegionCodesPath: getenv("REGION_CODES_PATH", ""),
		MaxUploadBytes:  int64(getint("MAX_UPLOAD_BYTES", 20<<20)),
		MaxSeriesPoints: getint("PRICE_MAX_POINTS", 2000),

		// Auth / alerts
		Auth: AuthConfig{
			SessionTTL:    getdur("SESSION_TTL", 7*24*time.Hour),
			MagicLinkTTL:  getdur("MAGIC_LINK_TTL", 30*time.Minute),
			CookieName:    getenv("SESSION_COOKIE", "kbiz_session"),
			CookieSecure:  getbool("SESSION_COOKIE_SECURE", false),
			ExposeLink:    getbool("AUTH_EXPOSE_LINK", false),
			DefaultLocale: strings.ToLower(getenv("DEFAULT_LOCALE", "en")),
			RequestRPS:    getfloat("AUTH_RATE_RPS", 0.1),
			RequestBurst:  getint("AUTH_RATE_BURST", 5),
		},
		Alerts: AlertConfig{
			ResendAPIKey: strings.TrimSpace(getenv("RESEND_API_KEY", "")),
			FromEmail:    strings.TrimSpace(getenv("ALERT_FROM_EMAIL", "")),
			SiteURL: strings.TrimRight(firstEnv(
				"http://localhost:3000", "SITE_URL", "NEXT_PUBLIC_SITE_URL", "ALERT_SITE_URL"), "/"),
			MaxParallel: getint("ALERT_MAX_PARALLEL", 4),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "kbiz-price-hunter"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
			Environment: getenv("DEPLOY_ENV", ""),
		},
	}

	cfg.normalize()
	return cfg, cfg.Validate()
}

func (c *Config) normalize() {
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
}

// Validate returns the first rule the configuration violates.
func (c Config) Validate() error {
	rules := []struct {
		bad bool
		msg string
	}{
		{!oneOf(c.LogLevel, "debug", "info", "warn", "error", "fatal", "panic"),
			"LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"},
		{strings.TrimSpace(c.Port) == "", "PORT must not be empty"},
		{c.ReadTimeout <= 0 || c.ReadHeaderTimeout <= 0 || c.WriteTimeout <= 0 || c.IdleTimeout <= 0,
			"timeouts must be positive durations"},
		{c.MaxHeaderBytes <= 0, "MAX_HEADER_BYTES must be > 0"},
		{!oneOf(c.DB.Driver, "sqlite", "postgres"), "DB_DRIVER must be one of: sqlite, postgres"},
		{c.DB.Driver == "sqlite" && strings.TrimSpace(c.DB.Path) == "", "DB_PATH must not be empty"},
		{c.DB.Driver == "postgres" && strings.TrimSpace(c.DB.URL) == "",
			"DATABASE_URL is required when DB_DRIVER=postgres"},
		{c.DB.MaxOpenConns < 1 || c.DB.MaxIdleConns < 0,
			"DB_MAX_OPEN_CONNS must be >= 1 and DB_MAX_IDLE_CONNS >= 0"},
		{c.MaxUploadBytes <= 0, "MAX_UPLOAD_BYTES must be > 0"},
		{c.MaxSeriesPoints < 1, "PRICE_MAX_POINTS must be >= 1"},
		{c.Auth.SessionTTL <= 0 || c.Auth.MagicLinkTTL <= 0, "SESSION_TTL and MAGIC_LINK_TTL must be > 0"},
		{strings.TrimSpace(c.Auth.CookieName) == "", "SESSION_COOKIE must not be empty"},
		{!oneOf(c.Auth.DefaultLocale, "en", "bg"), "DEFAULT_LOCALE must be one of: en, bg"},
		{c.Alerts.MaxParallel < 1, "ALERT_MAX_PARALLEL must be >= 1"},
		{c.Auth.RequestRPS < 0 || c.Auth.RequestBurst < 1, "AUTH_RATE_RPS must be >= 0 and AUTH_RATE_BURST >= 1"},
		{c.RateRPS < 0, "RATE_RPS must be >= 0"},
		{c.RateBurst < 1, "RATE_BURST must be >= 1"},
		{c.Security.HSTSMaxAge < 0, "HSTS_MAX_AGE must be >= 0"},
		{c.IdempotencyTTL <= 0, "IDEMPOTENCY_TTL must be > 0"},
		{c.OTEL.SampleRatio < 0 || c.OTEL.SampleRatio > 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]"},
	}
	for _, r := range rules {
		if r.bad {
			return errors.New(r.msg)
		}
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// loadDotEnv seeds the environment from ENV_FILE or ./.env when present.
// godotenv.Load never overrides variables that are already set.
func loadDotEnv() {
	path := getenv("ENV_FILE", ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// firstEnv returns the first non-empty value among keys, else def.
func firstEnv(def string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return def
}

// envOr parses the variable k with parse, falling back to def when it is
// unset, empty or malformed.
func envOr[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func getenv(k, def string) string {
	return envOr(k, def, func(s string) (string, error) { return s, nil })
}

func getint(k string, def int) int { return envOr(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration { return envOr(k, def, time.ParseDuration) }

func getfloat(k string, def float64) float64 {
	return envOr(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func getbool(k string, def bool) bool { return envOr(k, def, parseBool) }

var errNotBool = errors.New("not a boolean")

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, errNotBool
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath yields "/segment/..." with no trailing slash, or "/".
func normalizeBasePath(p string) string {
	return "/" + strings.Trim(strings.TrimSpace(p), "/")
}
