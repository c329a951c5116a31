// Package services – AuthService
//
// This file implements passwordless login. RequestLink stores a single-use
// token for an email and returns (and, when mail is configured, sends) the
// verification link. Verify consumes the token and opens a session whose
// opaque token becomes the session cookie. SessionUser resolves that cookie
// on every authenticated request.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/notify"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Locales are the dashboard languages a link may redirect to.
var Locales = []string{"en", "bg"}

// LoginLink is the result of a magic-link request.
type LoginLink struct {
	Link    string
	Locale  string
	Emailed bool
}

// LoginSession is an opened session.
type LoginSession struct {
	Token     string
	ExpiresAt time.Time
	Locale    string
	User      *domain.User
}

// AuthService issues magic links and sessions.
type AuthService struct {
	DB     *gorm.DB
	Mailer notify.Mailer

	SiteURL       string
	LinkPath      string
	MagicLinkTTL  time.Duration
	SessionTTL    time.Duration
	DefaultLocale string

	Now   func() time.Time
	Token func() (string, error)
}

// NewAuthService constructs an AuthService. linkPath is the verify route
// appended to the origin, e.g. "/api/v1/auth/verify".
func NewAuthService(db *gorm.DB, mailer notify.Mailer, siteURL, linkPath string, linkTTL, sessionTTL time.Duration, defaultLocale string) *AuthService {
	if mailer == nil {
		mailer = notify.Disabled{}
	}
	return &AuthService{
		DB:            db,
		Mailer:        mailer,
		SiteURL:       strings.TrimRight(siteURL, "/"),
		LinkPath:      linkPath,
		MagicLinkTTL:  linkTTL,
		SessionTTL:    sessionTTL,
		DefaultLocale: defaultLocale,
		Now:           time.Now,
		Token:         randomToken,
	}
}

// Locale returns l when it is supported, else the default locale.
func (s *AuthService) Locale(l string) string {
	l = strings.ToLower(strings.TrimSpace(l))
	for _, v := range Locales {
		if v == l {
			return l
		}
	}
	if s.DefaultLocale != "" {
		return s.DefaultLocale
	}
	return Locales[0]
}

// RequestLink creates a login token for email. origin overrides SiteURL as
// the link host when non-empty.
func (s *AuthService) RequestLink(ctx context.Context, email, locale, origin string) (*LoginLink, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "RequestLink")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmailRequired
	}
	locale = s.Locale(locale)

	user, err := repo.UpsertUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	token, err := s.Token()
	if err != nil {
		return nil, err
	}
	if _, err := repo.CreateMagicLinkToken(ctx, s.DB, user.Email, token, s.now().Add(s.MagicLinkTTL)); err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	base := strings.TrimRight(strings.TrimSpace(origin), "/")
	if base == "" {
		base = s.SiteURL
	}
	q := url.Values{}
	q.Set("token", token)
	q.Set("locale", locale)
	out := &LoginLink{Link: base + s.LinkPath + "?" + q.Encode(), Locale: locale}

	if s.Mailer.Enabled() {
		if err := s.Mailer.Send(ctx, notify.MagicLinkMessage(user.Email, out.Link, s.MagicLinkTTL)); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("magic link email failed")
		} else {
			out.Emailed = true
		}
	}
	span.SetAttributes(attribute.Bool("emailed", out.Emailed))
	return out, nil
}

// Verify consumes token and opens a session for its user.
func (s *AuthService) Verify(ctx context.Context, token, locale string) (*LoginSession, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Verify")
	defer span.End()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	now := s.now()
	mt, err := repo.ConsumeMagicLinkToken(ctx, s.DB, token, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	var user domain.User
	if err := s.DB.WithContext(ctx).Where("email = ?", mt.Email).First(&user).Error; err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	sessionToken, err := s.Token()
	if err != nil {
		return nil, err
	}
	sess, err := repo.CreateSession(ctx, s.DB, user.ID, sessionToken, now.Add(s.SessionTTL))
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	return &LoginSession{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		Locale:    s.Locale(locale),
		User:      &user,
	}, nil
}

// SessionUser resolves a session token. Expired sessions are removed.
func (s *AuthService) SessionUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	u, err := repo.GetSessionUser(ctx, s.DB, token, s.now())
	if errors.Is(err, repo.ErrNotFound) {
		_ = repo.DeleteSession(ctx, s.DB, token)
		return nil, ErrNoSession
	}
	return u, err
}

// Logout deletes the session; unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return repo.DeleteSession(ctx, s.DB, token)
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// randomToken returns 32 random bytes, hex encoded.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
