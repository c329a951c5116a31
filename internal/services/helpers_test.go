package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/notify"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
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
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func day(n int) time.Time {
	return time.Date(2025, 3, n, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustProduct(t *testing.T, db *gorm.DB, slug, name string) *domain.Product {
	t.Helper()
	p := &domain.Product{Slug: slug, Name: name}
	if err := repo.CreateProduct(context.Background(), db, p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func mustStore(t *testing.T, db *gorm.DB, name string, city *string) *domain.Store {
	t.Helper()
	s, err := repo.CreateStore(context.Background(), db, name, city)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return s
}

func mustPrice(t *testing.T, db *gorm.DB, productID, storeID, amount string, at time.Time) *domain.Price {
	t.Helper()
	p := &domain.Price{ProductID: productID, StoreID: storeID, Amount: dec(amount), RecordedAt: at}
	if err := repo.CreatePrice(context.Background(), db, p); err != nil {
		t.Fatalf("create price: %v", err)
	}
	return p
}

func mustSubscriber(t *testing.T, db *gorm.DB, email, productID string) *domain.User {
	t.Helper()
	u, err := repo.UpsertUserByEmail(context.Background(), db, email)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := repo.CreateSubscription(context.Background(), db, u.ID, productID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return u
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func strp(s string) *string { return &s }

// fakeMailer records sent messages; failFor makes sends to that address fail.
type fakeMailer struct {
	mu       sync.Mutex
	disabled bool
	failFor  string
	sent     []notify.Message
}

func (m *fakeMailer) Enabled() bool { return !m.disabled }

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor != "" && strings.EqualFold(msg.To, m.failFor) {
		return fmt.Errorf("provider rejected %s", msg.To)
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, s := range m.sent {
		out = append(out, s.To)
	}
	return out
}

// recordingObserver captures observed prices without touching alerts.
type recordingObserver struct {
	prices []domain.Price
	err    error
}

func (o *recordingObserver) ObservePrice(_ context.Context, _ *domain.Product, _ *domain.Store, p *domain.Price) (*Drop, error) {
	o.prices = append(o.prices, *p)
	return nil, o.err
}

func mustUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u, err := repo.UpsertUserByEmail(context.Background(), db, email)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}
