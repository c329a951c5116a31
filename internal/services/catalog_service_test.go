package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/catalog"
	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
)

// ----- repo shim over the real repository functions -----

type catalogShim struct{}

func (catalogShim) GetProductBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Product, error) {
	return repo.GetProductBySlug(ctx, db, slug)
}
func (catalogShim) CreateProduct(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return repo.CreateProduct(ctx, db, p)
}
func (catalogShim) CountProducts(ctx context.Context, db *gorm.DB, f repo.ProductFilter) (int64, error) {
	return repo.CountProducts(ctx, db, f)
}
func (catalogShim) ListProductsPage(ctx context.Context, db *gorm.DB, f repo.ProductFilter, offset, limit int) ([]domain.Product, error) {
	return repo.ListProductsPage(ctx, db, f, offset, limit)
}
func (catalogShim) ProductsStats(ctx context.Context, db *gorm.DB, f repo.ProductFilter) (int64, *time.Time, error) {
	return repo.ProductsStats(ctx, db, f)
}
func (catalogShim) CreateStore(ctx context.Context, db *gorm.DB, name string, city *string) (*domain.Store, error) {
	return repo.CreateStore(ctx, db, name, city)
}
func (catalogShim) ListStores(ctx context.Context, db *gorm.DB) ([]domain.Store, error) {
	return repo.ListStores(ctx, db)
}
func (catalogShim) UpdateStoreCity(ctx context.Context, db *gorm.DB, id string, city *string) error {
	return repo.UpdateStoreCity(ctx, db, id, city)
}

// failingCatalog embeds the shim and overrides the count.
type failingCatalog struct {
	catalogShim
	countErr error
}

func (f failingCatalog) CountProducts(context.Context, *gorm.DB, repo.ProductFilter) (int64, error) {
	return 0, f.countErr
}

// ----- tests -----

func TestCatalog_ListProducts_PagesAndFilters(t *testing.T) {
	db := newSvcDB(t)
	s := NewCatalogService(db, catalogShim{}, nil)
	ctx := context.Background()
	for _, in := range []ProductInput{
		{Slug: "zlatna-a", Name: "Apple juice", Description: "сок"},
		{Slug: "zlatna-b", Name: "Bread", Description: "хляб"},
		{Slug: "zlatna-c", Name: "Coffee", Description: "кафе"},
	} {
		if _, err := s.CreateProduct(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := s.ListProducts(ctx, repo.ProductFilter{}, 2, 2)
	if err != nil || total != 3 || len(items) != 1 || items[0].Slug != "zlatna-c" {
		t.Fatalf("page 2 = %+v total %d err %v", items, total, err)
	}

	items, total, err = s.ListProducts(ctx, repo.ProductFilter{Category: "napitki"}, 1, 10)
	if err != nil || total != 2 || len(items) != 2 {
		t.Fatalf("napitki = %+v total %d err %v", items, total, err)
	}

	items, total, err = s.ListProducts(ctx, repo.ProductFilter{Query: "bre"}, 0, 0)
	if err != nil || total != 1 || items[0].Slug != "zlatna-b" {
		t.Fatalf("query = %+v total %d err %v", items, total, err)
	}

	n, last, err := s.ProductsStats(ctx, repo.ProductFilter{})
	if err != nil || n != 3 || last == nil {
		t.Fatalf("stats = %d %v %v", n, last, err)
	}
}

func TestCatalog_ListProducts_RepoError(t *testing.T) {
	s := NewCatalogService(nil, failingCatalog{countErr: errors.New("db down")}, nil)
	if _, _, err := s.ListProducts(context.Background(), repo.ProductFilter{}, 1, 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestCatalog_CreateProduct(t *testing.T) {
	db := newSvcDB(t)
	s := NewCatalogService(db, catalogShim{}, nil)
	ctx := context.Background()

	if _, err := s.CreateProduct(ctx, ProductInput{Slug: " ", Name: "x"}); !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("want ErrInvalidProduct, got %v", err)
	}
	p, err := s.CreateProduct(ctx, ProductInput{Slug: " zlatna-s ", Name: " Шампоан ", Description: "  "})
	if err != nil {
		t.Fatal(err)
	}
	if p.Slug != "zlatna-s" || p.Name != "Шампоан" || p.Description != nil {
		t.Fatalf("product = %+v", p)
	}
	if len(p.Categories) != 1 || p.Categories[0] != "kozmetika" {
		t.Fatalf("categories = %v", p.Categories)
	}
	if _, err := s.CreateProduct(ctx, ProductInput{Slug: "zlatna-s", Name: "Other"}); !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("want ErrDuplicateSlug, got %v", err)
	}

	got, err := s.GetProduct(ctx, "zlatna-s")
	if err != nil || got.ID != p.ID {
		t.Fatalf("GetProduct = %+v, %v", got, err)
	}
	if _, err := s.GetProduct(ctx, "missing"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
}

func TestCatalog_Stores(t *testing.T) {
	db := newSvcDB(t)
	s := NewCatalogService(db, catalogShim{}, nil)
	ctx := context.Background()

	if _, err := s.CreateStore(ctx, "  ", "Варна"); !errors.Is(err, ErrInvalidStore) {
		t.Fatalf("want ErrInvalidStore, got %v", err)
	}
	b, err := s.CreateStore(ctx, "Beta", " ")
	if err != nil || b.City != nil {
		t.Fatalf("blank city must be NULL: %+v %v", b, err)
	}
	if _, err := s.CreateStore(ctx, "Alpha", "Варна"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateStore(ctx, "Alpha", "Варна"); !errors.Is(err, ErrDuplicateStore) {
		t.Fatalf("want ErrDuplicateStore, got %v", err)
	}

	stores, err := s.ListStores(ctx)
	if err != nil || len(stores) != 2 || stores[0].Name != "Alpha" {
		t.Fatalf("stores = %+v, %v", stores, err)
	}
}

func TestCatalog_ReclassifyProducts(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	desc := "; прясно мляко"
	p := &domain.Product{Slug: "zlatna-m", Name: ", Мляко", Description: &desc}
	if err := repo.CreateProduct(ctx, db, p); err != nil {
		t.Fatal(err)
	}
	mustProduct(t, db, "zlatna-x", "Нещо")
	mustProduct(t, db, "zlatna-y", "Шампоан")

	s := NewCatalogService(db, catalogShim{}, nil)
	s.BatchSize = 2
	n, err := s.ReclassifyProducts(ctx)
	if err != nil || n != 3 {
		t.Fatalf("updated = %d, %v", n, err)
	}

	got, err := repo.GetProductBySlug(ctx, db, "zlatna-m")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Мляко" || got.Description == nil || *got.Description != "прясно мляко" {
		t.Fatalf("normalized = %+v", got)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "hrani" {
		t.Fatalf("categories = %v", got.Categories)
	}
	x, _ := repo.GetProductBySlug(ctx, db, "zlatna-x")
	if len(x.Categories) != 1 || x.Categories[0] != catalog.Unassigned.Slug {
		t.Fatalf("unassigned = %v", x.Categories)
	}
}

func TestCatalog_RenormalizeCities(t *testing.T) {
	db := newSvcDB(t)
	ctx := context.Background()
	table, err := catalog.ParseRegionTable(strings.NewReader("code,city\n1000,София\n"))
	if err != nil {
		t.Fatal(err)
	}
	numeric := mustStore(t, db, "Kaufland", strp("1000"))
	fromName := mustStore(t, db, "Магазин гр. Варна", nil)
	unknown := mustStore(t, db, "Lidl", nil)
	named := mustStore(t, db, "Billa", strp("Пловдив"))

	s := NewCatalogService(db, catalogShim{}, catalog.NewCityNormalizer(table))
	n, err := s.RenormalizeCities(ctx)
	if err != nil || n != 2 {
		t.Fatalf("updated = %d, %v", n, err)
	}

	check := func(id, want string) {
		t.Helper()
		st, err := repo.GetStore(ctx, db, id)
		if err != nil {
			t.Fatal(err)
		}
		got := ""
		if st.City != nil {
			got = *st.City
		}
		if got != want {
			t.Fatalf("store %s city = %q, want %q", st.Name, got, want)
		}
	}
	check(numeric.ID, "София")
	check(fromName.ID, "Варна")
	check(unknown.ID, "")
	check(named.ID, "Пловдив")
}
