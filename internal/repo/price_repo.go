// Prices are append-only; nothing here updates or deletes a row.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
)

// newestFirst orders price rows from most to least recent.
const newestFirst = "recorded_at DESC, created_at DESC, id DESC"

// CreatePrice inserts a price observation. Currency defaults to EUR.
func CreatePrice(ctx context.Context, db *gorm.DB, p *domain.Price) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = domain.DefaultCurrency
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.RecordedAt = p.RecordedAt.UTC()
	return db.WithContext(ctx).Omit("Product", "Store").Create(p).Error
}

// PreviousPrice returns the most recent price of (productID, storeID)
// recorded strictly before the given instant, or ErrNotFound.
func PreviousPrice(ctx context.Context, db *gorm.DB, productID, storeID string, before time.Time) (*domain.Price, error) {
	var p domain.Price
	err := db.WithContext(ctx).
		Where("product_id = ? AND store_id = ? AND recorded_at < ?", productID, storeID, before.UTC()).
		Order(newestFirst).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LatestPrices returns up to limit of the product's most recent prices with
// their store loaded, newest first.
func LatestPrices(ctx context.Context, db *gorm.DB, productID string, limit int) ([]domain.Price, error) {
	var out []domain.Price
	q := db.WithContext(ctx).
		Preload("Store").
		Where("product_id = ?", productID).
		Order(newestFirst)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountPrices returns the number of price rows for a product.
func CountPrices(ctx context.Context, db *gorm.DB, productID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Price{}).
		Where("product_id = ?", productID).
		Count(&total).Error
	return total, err
}
