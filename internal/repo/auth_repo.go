// Users, single-use magic-link tokens and sessions.

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
)

// GetUser fetches a user by ID.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUserByEmail returns the user with email, creating it when missing.
func UpsertUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u = domain.User{ID: uuid.NewString(), Email: email, CreatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		if !IsDuplicate(err) {
			return nil, err
		}
		if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
			return nil, err
		}
	}
	return &u, nil
}

// CreateMagicLinkToken stores a single-use login token for email.
func CreateMagicLinkToken(ctx context.Context, db *gorm.DB, email, token string, expiresAt time.Time) (*domain.MagicLinkToken, error) {
	t := &domain.MagicLinkToken{
		ID:        uuid.NewString(),
		Email:     email,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// ConsumeMagicLinkToken marks an unused, unexpired token as used and
// returns it. Unknown, used or expired tokens return ErrNotFound. The
// conditional update makes concurrent consumption succeed at most once.
func ConsumeMagicLinkToken(ctx context.Context, db *gorm.DB, token string, now time.Time) (*domain.MagicLinkToken, error) {
	var t domain.MagicLinkToken
	err := db.WithContext(ctx).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).
		First(&t).Error
	if err != nil {
		return nil, err
	}

	usedAt := now.UTC()
	res := db.WithContext(ctx).
		Model(&domain.MagicLinkToken{}).
		Where("id = ? AND used_at IS NULL", t.ID).
		Update("used_at", usedAt)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	t.UsedAt = &usedAt
	return &t, nil
}

// CreateSession stores a session token for userID.
func CreateSession(ctx context.Context, db *gorm.DB, userID, token string, expiresAt time.Time) (*domain.Session, error) {
	s := &domain.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Omit("User").Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSessionUser resolves an unexpired session token to its user.
func GetSessionUser(ctx context.Context, db *gorm.DB, token string, now time.Time) (*domain.User, error) {
	var s domain.Session
	err := db.WithContext(ctx).
		Preload("User").
		Where("token = ? AND expires_at > ?", token, now).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s.User, nil
}

// DeleteSession removes a session token. Unknown tokens are not an error.
func DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{}).Error
}

// DeleteExpiredSessions removes sessions that expired before now.
func DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
