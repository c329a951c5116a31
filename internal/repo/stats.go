package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
)

// ProductsStats returns the number of products matching f and the greatest
// UpdatedAt among them (nil when there are none).
func ProductsStats(ctx context.Context, db *gorm.DB, f ProductFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	if count, err = CountProducts(ctx, db, f); err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	err = filterProducts(db.WithContext(ctx).Model(&domain.Product{}), f).
		Select("updated_at").
		Order("updated_at DESC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
