// Package services – CatalogService
//
// This file implements the product and store catalog: paginated product
// listing with text and category filters, product and store creation, and
// two maintenance passes that re-run the classifier over every product and
// re-resolve stores whose city is missing or a bare region code.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/catalog"
	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
	"github.com/pajakoo/kbiz-price-hunter/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CatalogRepo defines the repository contract required by CatalogService.
type CatalogRepo interface {
	GetProductBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Product, error)
	CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error
	CountProducts(ctx context.Context, db *gorm.DB, f repo.ProductFilter) (int64, error)
	ListProductsPage(ctx context.Context, db *gorm.DB, f repo.ProductFilter, offset, limit int) ([]domain.Product, error)
	ProductsStats(ctx context.Context, db *gorm.DB, f repo.ProductFilter) (int64, *time.Time, error)

	CreateStore(ctx context.Context, db *gorm.DB, name string, city *string) (*domain.Store, error)
	ListStores(ctx context.Context, db *gorm.DB) ([]domain.Store, error)
	UpdateStoreCity(ctx context.Context, db *gorm.DB, id string, city *string) error
}

// ProductInput is a manually created product.
type ProductInput struct {
	Slug        string
	Name        string
	Description string
}

// CatalogService provides catalog reads, writes and maintenance.
type CatalogService struct {
	DB     *gorm.DB
	Repo   CatalogRepo
	Cities *catalog.CityNormalizer

	// BatchSize bounds the rows loaded per maintenance batch.
	BatchSize int
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB, r CatalogRepo, cities *catalog.CityNormalizer) *CatalogService {
	if cities == nil {
		cities = catalog.NewCityNormalizer(nil)
	}
	return &CatalogService{DB: db, Repo: r, Cities: cities, BatchSize: 200}
}

// ListProducts returns a page of products matching f and the total count.
func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, page, pageSize int) ([]domain.Product, int64, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ListProducts",
		trace.WithAttributes(
			attribute.String("query", f.Query),
			attribute.String("category", f.Category),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	page, pageSize = normalizePage(page, pageSize)
	total, err := s.Repo.CountProducts(ctx, s.DB, f)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Product{}, 0, nil
	}
	items, err := s.Repo.ListProductsPage(ctx, s.DB, f, utils.PageOffset(page, pageSize), pageSize)
	return items, total, err
}

// ProductsStats returns the count and latest update time for f, used for
// conditional GETs.
func (s *CatalogService) ProductsStats(ctx context.Context, f repo.ProductFilter) (int64, *time.Time, error) {
	return s.Repo.ProductsStats(ctx, s.DB, f)
}

// GetProduct returns the product with slug.
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := s.Repo.GetProductBySlug(ctx, s.DB, strings.TrimSpace(slug))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// CreateProduct inserts a product; categories come from the classifier.
func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "CreateProduct",
		trace.WithAttributes(attribute.String("product.slug", in.Slug)),
	)
	defer span.End()

	slug := strings.TrimSpace(in.Slug)
	name := strings.TrimSpace(in.Name)
	if slug == "" || name == "" {
		return nil, ErrInvalidProduct
	}
	var desc *string
	if d := strings.TrimSpace(in.Description); d != "" {
		desc = &d
	}
	p := &domain.Product{
		Slug:        slug,
		Name:        name,
		Description: desc,
		Categories:  catalog.Classify(name, in.Description),
	}
	if err := s.Repo.CreateProduct(ctx, s.DB, p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return p, nil
}

// ListStores returns every store ordered by name.
func (s *CatalogService) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.Repo.ListStores(ctx, s.DB)
}

// CreateStore inserts a store; a blank city is stored as NULL.
func (s *CatalogService) CreateStore(ctx context.Context, name, city string) (*domain.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidStore
	}
	var c *string
	if v := strings.TrimSpace(city); v != "" {
		c = &v
	}
	st, err := s.Repo.CreateStore(ctx, s.DB, name, c)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrDuplicateStore
	}
	return st, err
}

// ReclassifyProducts re-normalizes every product's text and recomputes its
// categories. It returns the number of products rewritten.
func (s *CatalogService) ReclassifyProducts(ctx context.Context) (int, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "ReclassifyProducts")
	defer span.End()

	updated := 0
	err := repo.EachProductBatch(ctx, s.DB, s.batchSize(), func(batch []domain.Product) error {
		for _, p := range batch {
			name := catalog.NormalizeName(p.Name)
			var desc *string
			descText := ""
			if p.Description != nil {
				d := catalog.NormalizeName(*p.Description)
				desc, descText = &d, d
			}
			if err := repo.UpdateProductContent(ctx, s.DB, p.ID, name, desc, catalog.Classify(name, descText)); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	span.SetAttributes(attribute.Int("products.updated", updated))
	return updated, err
}

// RenormalizeCities re-resolves the city of stores whose city is NULL or a
// bare numeric code. Stores whose city does not change are left untouched.
func (s *CatalogService) RenormalizeCities(ctx context.Context) (int, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "RenormalizeCities")
	defer span.End()

	stores, err := s.Repo.ListStores(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, st := range stores {
		if st.City != nil && !isNumeric(*st.City) {
			continue
		}
		raw := ""
		if st.City != nil {
			raw = *st.City
		}
		city := s.Cities.Normalize(raw, st.Name)
		if sameCity(city, st.City) {
			continue
		}
		if err := s.Repo.UpdateStoreCity(ctx, s.DB, st.ID, city); err != nil {
			return updated, err
		}
		updated++
	}
	span.SetAttributes(attribute.Int("stores.updated", updated))
	return updated, nil
}

func (s *CatalogService) batchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return 200
}

// resolveProduct looks a product up by id, falling back to slug.
func resolveProduct(ctx context.Context, db *gorm.DB, id, slug string) (*domain.Product, error) {
	id, slug = strings.TrimSpace(id), strings.TrimSpace(slug)
	var (
		p   *domain.Product
		err error
	)
	switch {
	case id != "":
		p, err = repo.GetProduct(ctx, db, id)
	case slug != "":
		p, err = repo.GetProductBySlug(ctx, db, slug)
	default:
		return nil, ErrProductRefRequired
	}
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

// normalizePage applies the default page (1) and page size (20).
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sameCity(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
