// Package services – AlertService
//
// This file implements price-drop detection and subscriber notification.
// DetectDrop compares a freshly persisted price with the most recent earlier
// observation of the same (product, store) pair. Notify persists one
// notification per subscriber in a single batch and then emails every
// subscriber through notify.Mailer. Email delivery is best-effort: failures
// are logged and counted, never returned, and never undo the notification
// rows or the price write.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pajakoo/kbiz-price-hunter/internal/domain"
	"github.com/pajakoo/kbiz-price-hunter/internal/notify"
	"github.com/pajakoo/kbiz-price-hunter/internal/observability"
	"github.com/pajakoo/kbiz-price-hunter/internal/repo"
	"github.com/pajakoo/kbiz-price-hunter/internal/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// emailTimeout bounds a single provider call.
const emailTimeout = 10 * time.Second

// Drop is a new price strictly lower than the previous one of its pair.
type Drop struct {
	Product  domain.Product
	Store    domain.Store
	Previous domain.Price
	Current  domain.Price
	Delta    decimal.Decimal // Previous.Amount - Current.Amount, always > 0
}

// PriceObserver is told about every persisted price.
type PriceObserver interface {
	ObservePrice(ctx context.Context, product *domain.Product, store *domain.Store, price *domain.Price) (*Drop, error)
}

// Subscription is a user's alert with the product it refers to.
type Subscription struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	ProductSlug string    `json:"productSlug"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AlertService owns subscriptions, drop detection and alert delivery.
type AlertService struct {
	DB     *gorm.DB
	Mailer notify.Mailer

	// SiteURL is the public base URL used in email links.
	SiteURL string
	// MaxParallel caps concurrent email sends per drop.
	MaxParallel int
}

// NewAlertService constructs an AlertService. A nil mailer disables email.
func NewAlertService(db *gorm.DB, mailer notify.Mailer, siteURL string, maxParallel int) *AlertService {
	if mailer == nil {
		mailer = notify.Disabled{}
	}
	if maxParallel < 1 {
		maxParallel = 4
	}
	return &AlertService{DB: db, Mailer: mailer, SiteURL: siteURL, MaxParallel: maxParallel}
}

// DetectDrop returns the drop caused by price, or nil when there is no
// earlier price for the pair or the new amount is not strictly lower.
func (s *AlertService) DetectDrop(ctx context.Context, product *domain.Product, store *domain.Store, price *domain.Price) (*Drop, error) {
	tr := otel.Tracer("services/AlertService")
	ctx, span := tr.Start(ctx, "DetectDrop",
		trace.WithAttributes(
			attribute.String("product.id", product.ID),
			attribute.String("store.id", store.ID),
		),
	)
	defer span.End()

	prev, err := repo.PreviousPrice(ctx, s.DB, product.ID, store.ID, price.RecordedAt)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("previous price: %w", err)
	}
	if !price.Amount.LessThan(prev.Amount) {
		return nil, nil
	}

	observability.PriceDrops.Inc()
	span.SetAttributes(attribute.Bool("price.drop", true))
	return &Drop{
		Product:  *product,
		Store:    *store,
		Previous: *prev,
		Current:  *price,
		Delta:    prev.Amount.Sub(price.Amount),
	}, nil
}

// Notify records and emails the drop to every subscriber of the product.
// Only a failure to persist the notification rows is returned.
func (s *AlertService) Notify(ctx context.Context, d *Drop) error {
	tr := otel.Tracer("services/AlertService")
	ctx, span := tr.Start(ctx, "Notify",
		trace.WithAttributes(attribute.String("product.id", d.Product.ID)),
	)
	defer span.End()

	subs, err := repo.ListSubscribers(ctx, s.DB, d.Product.ID)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}
	span.SetAttributes(attribute.Int("subscribers", len(subs)))

	rows := make([]domain.PriceAlertNotification, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, domain.PriceAlertNotification{
			UserID:     sub.UserID,
			ProductID:  d.Product.ID,
			StoreID:    d.Store.ID,
			FromAmount: d.Previous.Amount,
			ToAmount:   d.Current.Amount,
			Currency:   d.Current.Currency,
			RecordedAt: d.Current.RecordedAt,
		})
	}
	persistErr := repo.CreateNotifications(ctx, s.DB, rows)
	if persistErr == nil {
		observability.AlertNotifications.Add(float64(len(rows)))
	}

	s.dispatch(ctx, d, subs)

	if persistErr != nil {
		return fmt.Errorf("persist notifications: %w", persistErr)
	}
	return nil
}

// ObservePrice runs DetectDrop and, on a drop, Notify.
func (s *AlertService) ObservePrice(ctx context.Context, product *domain.Product, store *domain.Store, price *domain.Price) (*Drop, error) {
	d, err := s.DetectDrop(ctx, product, store, price)
	if err != nil || d == nil {
		return nil, err
	}
	return d, s.Notify(ctx, d)
}

// dispatch emails subscribers concurrently, bounded by MaxParallel.
func (s *AlertService) dispatch(ctx context.Context, d *Drop, subs []domain.PriceAlertSubscription) {
	lg := zerolog.Ctx(ctx)
	if !s.Mailer.Enabled() {
		observability.AlertEmails.WithLabelValues("skipped").Add(float64(len(subs)))
		lg.Debug().Str("product_id", d.Product.ID).Int("subscribers", len(subs)).Msg("alert email disabled, skipping")
		return
	}

	payload := notify.PriceDrop{
		ProductName: d.Product.Name,
		ProductSlug: d.Product.Slug,
		StoreName:   d.Store.Name,
		From:        d.Previous.Amount,
		To:          d.Current.Amount,
		Currency:    d.Current.Currency,
		RecordedAt:  d.Current.RecordedAt,
	}

	// Emails go out even if the client disconnects after the price write.
	sendCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(s.MaxParallel)
	for _, sub := range subs {
		email := sub.User.Email
		g.Go(func() error {
			c, cancel := context.WithTimeout(sendCtx, emailTimeout)
			defer cancel()
			if err := s.Mailer.Send(c, notify.PriceDropMessage(email, s.SiteURL, payload)); err != nil {
				observability.AlertEmails.WithLabelValues("failed").Inc()
				lg.Warn().Err(err).Str("product_id", d.Product.ID).Str("user_id", sub.UserID).Msg("alert email failed")
				return nil
			}
			observability.AlertEmails.WithLabelValues("sent").Inc()
			return nil
		})
	}
	_ = g.Wait()
}

// Subscribe registers userID for drops of the referenced product. An
// existing subscription is returned unchanged.
func (s *AlertService) Subscribe(ctx context.Context, userID, productID, productSlug string) (*domain.PriceAlertSubscription, error) {
	tr := otel.Tracer("services/AlertService")
	ctx, span := tr.Start(ctx, "Subscribe",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	product, err := resolveProduct(ctx, s.DB, productID, productSlug)
	if err != nil {
		return nil, err
	}

	if sub, err := repo.GetSubscription(ctx, s.DB, userID, product.ID); err == nil {
		return sub, nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	sub, err := repo.CreateSubscription(ctx, s.DB, userID, product.ID)
	if errors.Is(err, repo.ErrDuplicate) {
		return repo.GetSubscription(ctx, s.DB, userID, product.ID)
	}
	return sub, err
}

// Unsubscribe removes the subscription; removing a missing one is not an error.
func (s *AlertService) Unsubscribe(ctx context.Context, userID, productID string) error {
	tr := otel.Tracer("services/AlertService")
	ctx, span := tr.Start(ctx, "Unsubscribe",
		trace.WithAttributes(attribute.String("user.id", userID), attribute.String("product.id", productID)),
	)
	defer span.End()

	if productID == "" {
		return ErrProductRefRequired
	}
	_, err := repo.DeleteSubscription(ctx, s.DB, userID, productID)
	return err
}

// List returns the user's subscriptions, newest first.
func (s *AlertService) List(ctx context.Context, userID string) ([]Subscription, error) {
	tr := otel.Tracer("services/AlertService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	rows, err := repo.ListUserSubscriptions(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Subscription, 0, len(rows))
	for _, r := range rows {
		out = append(out, Subscription{
			ID:          r.ID,
			ProductID:   r.ProductID,
			ProductName: r.Product.Name,
			ProductSlug: r.Product.Slug,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out, nil
}

// ListNotifications returns a page of the user's notifications and the total.
func (s *AlertService) ListNotifications(ctx context.Context, userID string, page, pageSize int) ([]domain.PriceAlertNotification, int64, error) {
	tr := otel.Tracer("services/AlertService")
	ctx, span := tr.Start(ctx, "ListNotifications",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	page, pageSize = normalizePage(page, pageSize)
	total, err := repo.CountNotifications(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.PriceAlertNotification{}, 0, nil
	}
	items, err := repo.ListNotificationsPage(ctx, s.DB, userID, utils.PageOffset(page, pageSize), pageSize)
	return items, total, err
}
