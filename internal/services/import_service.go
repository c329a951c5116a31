// Package services – ImportService
//
// This file implements the supplier CSV import. The file is validated as a
// whole first (non-empty, all required headers present); rows are then
// processed strictly in file order. Each accepted row resolves its store and
// product, appends one price and runs price-drop detection before the next
// row starts. Rows are independent: there is no transaction spanning rows, so
// a database failure aborts the remaining rows but keeps the ones already
// written.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/catalog"
	"github.com/pajakoo/kbiz-price-hunter/internal/csvimport"
	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/observability"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ProductRef identifies the first product touched by an import.
type ProductRef struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ImportResult summarizes one import run.
type ImportResult struct {
	CreatedStores   int         `json:"createdStores"`
	CreatedProducts int         `json:"createdProducts"`
	CreatedPrices   int         `json:"createdPrices"`
	SkippedRows     int         `json:"skippedRows"`
	FirstProduct    *ProductRef `json:"firstProduct"`
}

// ImportService turns supplier CSV files into stores, products and prices.
type ImportService struct {
	DB       *gorm.DB
	Cities   *catalog.CityNormalizer
	Slugs    *catalog.Slugger
	Observer PriceObserver
}

// NewImportService constructs an ImportService.
func NewImportService(db *gorm.DB, cities *catalog.CityNormalizer, slugs *catalog.Slugger, obs PriceObserver) *ImportService {
	if cities == nil {
		cities = catalog.NewCityNormalizer(nil)
	}
	if slugs == nil {
		slugs = catalog.NewSlugger()
	}
	return &ImportService{DB: db, Cities: cities, Slugs: slugs, Observer: obs}
}

// importRun holds the lookups that live for a single Import call.
type importRun struct {
	stores   map[string]*domain.Store
	products map[string]*domain.Product
	result   ImportResult
}

// Import processes content and records every accepted row at recordedAt.
// source is stored on each price (nil for none).
func (s *ImportService) Import(ctx context.Context, content string, recordedAt time.Time, source *string) (*ImportResult, error) {
	tr := otel.Tracer("services/ImportService")
	ctx, span := tr.Start(ctx, "Import",
		trace.WithAttributes(attribute.String("recorded_at", recordedAt.Format(time.DateOnly))),
	)
	defer span.End()

	rows := csvimport.ParseTable(content)
	if len(rows) < 2 {
		return nil, ErrEmptyCSV
	}
	header, missing := csvimport.ResolveHeader(rows[0])
	if len(missing) > 0 {
		return nil, &MissingHeadersError{Headers: missing}
	}

	run := &importRun{
		stores:   map[string]*domain.Store{},
		products: map[string]*domain.Product{},
	}
	lg := zerolog.Ctx(ctx)

	for i, fields := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return &run.result, err
		}
		ok, err := s.importRow(ctx, run, header.Row(fields), recordedAt, source)
		if err != nil {
			lg.Error().Err(err).Int("line", i+2).Msg("import aborted")
			span.SetAttributes(attribute.Int("prices.created", run.result.CreatedPrices))
			return &run.result, fmt.Errorf("line %d: %w", i+2, err)
		}
		if ok {
			observability.ImportRows.WithLabelValues("imported").Inc()
		} else {
			run.result.SkippedRows++
			observability.ImportRows.WithLabelValues("skipped").Inc()
		}
	}

	span.SetAttributes(
		attribute.Int("stores.created", run.result.CreatedStores),
		attribute.Int("products.created", run.result.CreatedProducts),
		attribute.Int("prices.created", run.result.CreatedPrices),
	)
	lg.Info().
		Int("stores", run.result.CreatedStores).
		Int("products", run.result.CreatedProducts).
		Int("prices", run.result.CreatedPrices).
		Int("skipped", run.result.SkippedRows).
		Msg("import finished")
	return &run.result, nil
}

// importRow reports false for rows that are skipped without error.
func (s *ImportService) importRow(ctx context.Context, run *importRun, row csvimport.Row, recordedAt time.Time, source *string) (bool, error) {
	name := catalog.NormalizeName(row.ProductName)
	storeName := strings.TrimSpace(row.Store)
	if name == "" || storeName == "" {
		return false, nil
	}
	parsed, ok := csvimport.ParsePrice(row.PriceText())
	if !ok {
		return false, nil
	}
	amount, ok := domain.PriceAmount(parsed)
	if !ok {
		return false, nil
	}

	store, err := s.resolveStore(ctx, run, storeName, s.Cities.Normalize(row.City, storeName))
	if err != nil {
		return false, err
	}
	product, err := s.resolveProduct(ctx, run, row.ProductCode, name)
	if err != nil {
		return false, err
	}

	price := &domain.Price{
		ProductID:  product.ID,
		StoreID:    store.ID,
		Amount:     amount,
		Currency:   domain.DefaultCurrency,
		RecordedAt: recordedAt,
		Source:     source,
	}
	if err := repo.CreatePrice(ctx, s.DB, price); err != nil {
		return false, fmt.Errorf("create price: %w", err)
	}
	run.result.CreatedPrices++
	observability.PricesRecorded.WithLabelValues("import").Inc()

	if s.Observer != nil {
		if _, err := s.Observer.ObservePrice(ctx, product, store, price); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (s *ImportService) resolveStore(ctx context.Context, run *importRun, name string, city *string) (*domain.Store, error) {
	key := name + "|"
	if city != nil {
		key += *city
	}
	if st, ok := run.stores[key]; ok {
		return st, nil
	}
	st, created, err := repo.FindOrCreateStore(ctx, s.DB, name, city)
	if err != nil {
		return nil, fmt.Errorf("resolve store: %w", err)
	}
	if created {
		run.result.CreatedStores++
	}
	run.stores[key] = st
	return st, nil
}

func (s *ImportService) resolveProduct(ctx context.Context, run *importRun, code, name string) (*domain.Product, error) {
	slug := s.Slugs.Build(code, name)
	if p, ok := run.products[slug]; ok {
		return p, nil
	}
	desc := name
	p, created, err := repo.UpsertProductBySlug(ctx, s.DB, &domain.Product{
		Slug:        slug,
		Name:        name,
		Description: &desc,
		Categories:  catalog.Classify(name, desc),
	})
	if err != nil {
		return nil, fmt.Errorf("resolve product: %w", err)
	}
	if created {
		run.result.CreatedProducts++
	}
	if run.result.FirstProduct == nil {
		run.result.FirstProduct = &ProductRef{Slug: p.Slug, Name: p.Name}
	}
	run.products[slug] = p
	return p, nil
}
