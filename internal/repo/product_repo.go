// Missing rows surface as ErrNotFound and slug collisions as ErrDuplicate.

package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
)

// ProductFilter narrows catalog listings. Zero values match everything.
type ProductFilter struct {
	Query    string // substring of name or slug
	Category string // category slug
}

// GetProduct fetches a product by ID.
func GetProduct(ctx context.Context, db *gorm.DB, id string) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductBySlug fetches a product by its unique slug.
func GetProductBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct inserts p, assigning an ID and timestamps when unset.
func CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// UpdateProductContent overwrites name, description and categories.
func UpdateProductContent(ctx context.Context, db *gorm.DB, id, name string, description *string, categories []string) error {
	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":        name,
			"description": description,
			"categories":  datatypes.JSONSlice[string](categories),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertProductBySlug finds the product with p.Slug and overwrites its
// content, or inserts p when none exists. Both steps run in one transaction.
// A concurrent insert of the same slug is resolved by re-reading and
// updating the winner. created reports whether p was inserted.
func UpsertProductBySlug(ctx context.Context, db *gorm.DB, p *domain.Product) (out *domain.Product, created bool, err error) {
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := GetProductBySlug(ctx, tx, p.Slug)
		switch {
		case err == nil:
			if err := UpdateProductContent(ctx, tx, existing.ID, p.Name, p.Description, p.Categories); err != nil {
				return err
			}
			existing.Name, existing.Description, existing.Categories = p.Name, p.Description, p.Categories
			out = existing
			return nil
		case !errors.Is(err, ErrNotFound):
			return err
		}

		if err := CreateProduct(ctx, tx, p); err != nil {
			return err
		}
		out, created = p, true
		return nil
	})
	if err == nil || !errors.Is(err, ErrDuplicate) {
		return out, created, err
	}

	existing, gerr := GetProductBySlug(ctx, db, p.Slug)
	if gerr != nil {
		return nil, false, gerr
	}
	if err := UpdateProductContent(ctx, db, existing.ID, p.Name, p.Description, p.Categories); err != nil {
		return nil, false, err
	}
	existing.Name, existing.Description, existing.Categories = p.Name, p.Description, p.Categories
	return existing, false, nil
}

func filterProducts(db *gorm.DB, f ProductFilter) *gorm.DB {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		like := "%" + escapeLike(q) + "%"
		db = db.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR slug LIKE ? ESCAPE '\\')", like, like)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		db = db.Where(jsonText(db, "categories")+" LIKE ? ESCAPE '\\'", `%"`+escapeLike(c)+`"%`)
	}
	return db
}

// ListProductsPage returns products matching f, ordered by name then id.
func ListProductsPage(ctx context.Context, db *gorm.DB, f ProductFilter, offset, limit int) ([]domain.Product, error) {
	var out []domain.Product
	err := filterProducts(db.WithContext(ctx).Model(&domain.Product{}), f).
		Order("name ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountProducts returns the number of products matching f.
func CountProducts(ctx context.Context, db *gorm.DB, f ProductFilter) (int64, error) {
	var total int64
	err := filterProducts(db.WithContext(ctx).Model(&domain.Product{}), f).Count(&total).Error
	return total, err
}

// EachProductBatch calls fn with successive batches of all products. Writes
// made by fn must go through their own handle, not the batch query's.
func EachProductBatch(ctx context.Context, db *gorm.DB, size int, fn func(batch []domain.Product) error) error {
	var rows []domain.Product
	res := db.WithContext(ctx).Order("id ASC").FindInBatches(&rows, size, func(_ *gorm.DB, _ int) error {
		return fn(rows)
	})
	return res.Error
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// jsonText returns an expression reading a JSON column as text.
func jsonText(db *gorm.DB, column string) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return column + "::text"
	}
	return column
}
