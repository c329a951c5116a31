package repo

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
)

// newTestDB opens a unique in-memory database per test. With migrate set,
// the full schema is created.
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func strp(s string) *string { return &s }

func seedProduct(t *testing.T, db *gorm.DB, slug, name string, cats ...string) *domain.Product {
	t.Helper()
	p := &domain.Product{Slug: slug, Name: name, Categories: cats}
	if err := CreateProduct(context.Background(), db, p); err != nil {
		t.Fatalf("seed product %s: %v", slug, err)
	}
	return p
}

func seedStore(t *testing.T, db *gorm.DB, name string, city *string) *domain.Store {
	t.Helper()
	s, err := CreateStore(context.Background(), db, name, city)
	if err != nil {
		t.Fatalf("seed store %s: %v", name, err)
	}
	return s
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u, err := UpsertUserByEmail(context.Background(), db, email)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func seedPrice(t *testing.T, db *gorm.DB, productID, storeID, amount string, at time.Time) *domain.Price {
	t.Helper()
	p := &domain.Price{
		ProductID:  productID,
		StoreID:    storeID,
		Amount:     decimal.RequireFromString(amount),
		RecordedAt: at,
	}
	if err := CreatePrice(context.Background(), db, p); err != nil {
		t.Fatalf("seed price: %v", err)
	}
	return p
}
