// Package services – PriceService
//
// This file implements manual price writes and the per-store price series
// read by the dashboard chart. Every accepted write is handed to the
// configured PriceObserver so that a manual price drop alerts subscribers
// the same way an imported one does.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/observability"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSeriesPoints = 1000
	maxSeriesPoints     = 2000
)

// PriceInput is a manual price write. Either ProductID or ProductSlug
// identifies the product.
type PriceInput struct {
	ProductID   string
	ProductSlug string
	StoreID     string
	Amount      decimal.Decimal
	Currency    string
	// RecordedAt defaults to the current time when zero.
	RecordedAt time.Time
}

// SeriesPoint is one observation on a store's chart line.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// StoreSeries groups a product's observations for one store, oldest first.
type StoreSeries struct {
	StoreID string        `json:"storeId"`
	Store   string        `json:"store"`
	City    *string       `json:"city"`
	Points  []SeriesPoint `json:"points"`
}

// PriceService records prices and builds chart series.
type PriceService struct {
	DB        *gorm.DB
	Observer  PriceObserver
	MaxPoints int

	Now func() time.Time
}

// NewPriceService constructs a PriceService. maxPoints <= 0 keeps the
// built-in cap.
func NewPriceService(db *gorm.DB, obs PriceObserver, maxPoints int) *PriceService {
	if maxPoints <= 0 {
		maxPoints = maxSeriesPoints
	}
	return &PriceService{DB: db, Observer: obs, MaxPoints: maxPoints, Now: time.Now}
}

// Create validates and persists a price, then runs drop detection on it.
// Alerting failures are logged and never undo the write.
func (s *PriceService) Create(ctx context.Context, in PriceInput) (*domain.Price, error) {
	tr := otel.Tracer("services/PriceService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("product.id", in.ProductID),
			attribute.String("product.slug", in.ProductSlug),
			attribute.String("store.id", in.StoreID),
		),
	)
	defer span.End()

	in.StoreID = strings.TrimSpace(in.StoreID)
	if strings.TrimSpace(in.ProductID) == "" && strings.TrimSpace(in.ProductSlug) == "" {
		return nil, ErrProductRefRequired
	}
	if in.StoreID == "" {
		return nil, ErrStoreRequired
	}
	amount, ok := domain.PriceAmount(in.Amount)
	if !ok {
		return nil, ErrInvalidAmount
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}

	product, err := resolveProduct(ctx, s.DB, in.ProductID, in.ProductSlug)
	if err != nil {
		return nil, err
	}
	store, err := repo.GetStore(ctx, s.DB, in.StoreID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}

	recordedAt := in.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now()
	}
	price := &domain.Price{
		ProductID:  product.ID,
		StoreID:    store.ID,
		Amount:     amount,
		Currency:   currency,
		RecordedAt: recordedAt,
	}
	if err := repo.CreatePrice(ctx, s.DB, price); err != nil {
		return nil, fmt.Errorf("create price: %w", err)
	}
	observability.PricesRecorded.WithLabelValues("api").Inc()

	if s.Observer != nil {
		if _, err := s.Observer.ObservePrice(ctx, product, store, price); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("price_id", price.ID).Msg("price alert failed")
		}
	}
	return price, nil
}

// Series returns up to maxPoints of the product's most recent prices grouped
// by store, each group ordered oldest first. Stores are ordered by name.
func (s *PriceService) Series(ctx context.Context, productID, productSlug string, maxPoints int) (*domain.Product, []StoreSeries, error) {
	tr := otel.Tracer("services/PriceService")
	ctx, span := tr.Start(ctx, "Series",
		trace.WithAttributes(
			attribute.String("product.id", productID),
			attribute.String("product.slug", productSlug),
			attribute.Int("max_points", maxPoints),
		),
	)
	defer span.End()

	product, err := resolveProduct(ctx, s.DB, productID, productSlug)
	if err != nil {
		return nil, nil, err
	}

	limit := s.MaxPoints
	if limit <= 0 {
		limit = maxSeriesPoints
	}
	if maxPoints <= 0 {
		maxPoints = defaultSeriesPoints
	}
	if maxPoints > limit {
		maxPoints = limit
	}

	rows, err := repo.LatestPrices(ctx, s.DB, product.ID, maxPoints)
	if err != nil {
		return nil, nil, err
	}
	// rows are newest first; walk backwards for chronological points.
	byStore := map[string]*StoreSeries{}
	for i := len(rows) - 1; i >= 0; i-- {
		p := rows[i]
		ser, ok := byStore[p.StoreID]
		if !ok {
			ser = &StoreSeries{StoreID: p.StoreID, Store: p.Store.Name, City: p.Store.City, Points: []SeriesPoint{}}
			byStore[p.StoreID] = ser
		}
		ser.Points = append(ser.Points, SeriesPoint{
			Date:  p.RecordedAt.UTC().Format(time.DateOnly),
			Price: p.Amount.InexactFloat64(),
		})
	}

	out := make([]StoreSeries, 0, len(byStore))
	for _, ser := range byStore {
		out = append(out, *ser)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Store != out[j].Store {
			return out[i].Store < out[j].Store
		}
		return out[i].StoreID < out[j].StoreID
	})
	return product, out, nil
}

func (s *PriceService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// normalizeCurrency upper-cases a 3-letter code; blank means EUR.
func normalizeCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return domain.DefaultCurrency, nil
	}
	if len(c) != 3 {
		return "", ErrInvalidCurrency
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", ErrInvalidCurrency
		}
	}
	return c, nil
}
