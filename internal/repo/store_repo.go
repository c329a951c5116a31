// Stores are identified by (name, city). A nil city matches rows whose city
// IS NULL.

package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
)

// GetStore fetches a store by ID.
func GetStore(ctx context.Context, db *gorm.DB, id string) (*domain.Store, error) {
	var s domain.Store
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindStore returns the store with exactly this name and city.
func FindStore(ctx context.Context, db *gorm.DB, name string, city *string) (*domain.Store, error) {
	q := db.WithContext(ctx).Where("name = ?", name)
	if city == nil {
		q = q.Where("city IS NULL")
	} else {
		q = q.Where("city = ?", *city)
	}
	var s domain.Store
	if err := q.Order("created_at ASC, id ASC").First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateStore inserts a store. A unique-index violation returns ErrDuplicate.
func CreateStore(ctx context.Context, db *gorm.DB, name string, city *string) (*domain.Store, error) {
	s := &domain.Store{
		ID:        uuid.NewString(),
		Name:      name,
		City:      city,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s, nil
}

// FindOrCreateStore resolves (name, city), inserting it when missing.
// A lost insert race re-reads the winning row.
func FindOrCreateStore(ctx context.Context, db *gorm.DB, name string, city *string) (s *domain.Store, created bool, err error) {
	s, err = FindStore(ctx, db, name, city)
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	s, err = CreateStore(ctx, db, name, city)
	if errors.Is(err, ErrDuplicate) {
		s, err = FindStore(ctx, db, name, city)
		return s, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// ListStores returns all stores ordered by name.
func ListStores(ctx context.Context, db *gorm.DB) ([]domain.Store, error) {
	var out []domain.Store
	err := db.WithContext(ctx).Order("name ASC, id ASC").Find(&out).Error
	return out, err
}

// UpdateStoreCity sets the city of a store.
func UpdateStoreCity(ctx context.Context, db *gorm.DB, id string, city *string) error {
	res := db.WithContext(ctx).
		Model(&domain.Store{}).
		Where("id = ?", id).
		Update("city", city)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
