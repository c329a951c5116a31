// Price-drop alert subscriptions and the notifications written when a drop
// is found.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
)

// GetSubscription fetches the subscription of userID to productID.
func GetSubscription(ctx context.Context, db *gorm.DB, userID, productID string) (*domain.PriceAlertSubscription, error) {
	var s domain.PriceAlertSubscription
	err := db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSubscription inserts a subscription; an existing (user, product)
// pair returns ErrDuplicate.
func CreateSubscription(ctx context.Context, db *gorm.DB, userID, productID string) (*domain.PriceAlertSubscription, error) {
	s := &domain.PriceAlertSubscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Omit("User", "Product").Create(s).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s, nil
}

// DeleteSubscription removes the (user, product) subscription and reports
// how many rows were deleted.
func DeleteSubscription(ctx context.Context, db *gorm.DB, userID, productID string) (int64, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&domain.PriceAlertSubscription{})
	return res.RowsAffected, res.Error
}

// ListUserSubscriptions returns a user's subscriptions with their products,
// newest first.
func ListUserSubscriptions(ctx context.Context, db *gorm.DB, userID string) ([]domain.PriceAlertSubscription, error) {
	var out []domain.PriceAlertSubscription
	err := db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListSubscribers returns every subscription to productID with its user.
func ListSubscribers(ctx context.Context, db *gorm.DB, productID string) ([]domain.PriceAlertSubscription, error) {
	var out []domain.PriceAlertSubscription
	err := db.WithContext(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CreateNotifications inserts all rows in batches of 100.
func CreateNotifications(ctx context.Context, db *gorm.DB, rows []domain.PriceAlertNotification) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range rows {
		if rows[i].ID == "" {
			rows[i].ID = uuid.NewString()
		}
		if rows[i].CreatedAt.IsZero() {
			rows[i].CreatedAt = now
		}
	}
	return db.WithContext(ctx).CreateInBatches(rows, 100).Error
}

// ListNotificationsPage returns a user's notifications, newest first.
func ListNotificationsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.PriceAlertNotification, error) {
	var out []domain.PriceAlertNotification
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountNotifications returns the number of notifications of a user.
func CountNotifications(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PriceAlertNotification{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}
