// Command server runs the price catalog HTTP API.
//
//	@title						KBiz Price Hunter API
//	@version					1.0
//	@description				Grocery and pharmacy price history: supplier CSV import, price charts, price-drop alerts and magic-link login.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						kbiz_session
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	_ "github.com/pajakoo/kbiz-price-hunter/docs"
	"github.com/pajakoo/kbiz-price-hunter/internal/catalog"
	"github.com/pajakoo/kbiz-price-hunter/internal/config"
	httpapi "github.com/pajakoo/kbiz-price-hunter/internal/http"
	"github.com/pajakoo/kbiz-price-hunter/internal/notify"
	"github.com/pajakoo/kbiz-price-hunter/internal/observability"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
	"github.com/pajakoo/kbiz-price-hunter/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// janitorInterval is how often expired sessions and idempotency records are purged.
const janitorInterval = 15 * time.Minute

func main() {
	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	sysutil.InitLogger(os.Stderr, cfg.OTEL.ServiceName, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.Open(cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	regions, err := catalog.Regions(cfg.RegionCodesPath)
	if err != nil {
		// City codes stay unresolved; imports still work.
		log.Warn().Err(err).Str("path", cfg.RegionCodesPath).Msg("region table not loaded")
	}

	var mailer notify.Mailer = notify.Disabled{}
	if cfg.Alerts.MailEnabled() {
		mailer = notify.NewResendMailer(cfg.Alerts.ResendAPIKey, cfg.Alerts.FromEmail)
	} else {
		log.Info().Msg("email disabled: RESEND_API_KEY or ALERT_FROM_EMAIL not set")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, mailer, regions, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sysutil.Every(ctx, janitorInterval, "janitor", func(ctx context.Context) error {
			return purgeExpired(ctx, db)
		})
	}()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Str("base_path", cfg.APIBasePath).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server ListenAndServe")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	wg.Wait()

	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("graceful shutdown complete")
}

// purgeExpired removes expired sessions and idempotency records.
func purgeExpired(ctx context.Context, db *gorm.DB) error {
	now := time.Now().UTC()
	sessions, err := repo.DeleteExpiredSessions(ctx, db, now)
	if err != nil {
		return err
	}
	replays, err := repo.PurgeExpiredIdempotency(ctx, db, now)
	if err != nil {
		return err
	}
	if sessions > 0 || replays > 0 {
		log.Debug().Int64("sessions", sessions).Int64("idempotency", replays).Msg("expired rows purged")
	}
	return nil
}
