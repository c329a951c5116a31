// Package domain defines the persistence models for the price catalog:
// products, stores, price observations, price-drop alert subscriptions and
// notifications, plus the users and sessions behind the private dashboard.
// These types are mapped with GORM and form the core data layer of the
// application.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DefaultCurrency is the currency recorded when a price does not name one.
const DefaultCurrency = "EUR"

// Product is a catalog entry identified by its slug. Re-imports match on the
// slug and overwrite name, description and categories (last write wins).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Slug: stable, URL-safe identifier (unique).
//   - Name / Description: normalized supplier text.
//   - Categories: category slugs assigned by the classifier (stored as JSON).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Product struct {
	ID          string                      `json:"id"          gorm:"type:char(36);primaryKey"`
	Slug        string                      `json:"slug"        gorm:"type:varchar(255);not null;uniqueIndex:ux_products_slug"`
	Name        string                      `json:"name"        gorm:"type:text;not null"`
	Description *string                     `json:"description,omitempty" gorm:"type:text"`
	Categories  datatypes.JSONSlice[string] `json:"categories"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"   gorm:"index"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Store is a retail location identified by its (name, city) pair. City is
// nil when the supplier feed carries no usable city. Uniqueness over
// (name, COALESCE(city, '')) is an expression index created by
// repo.AutoMigrate, so city-less stores collide too.
type Store struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null;index:idx_stores_name"`
	City      *string   `json:"city"       gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Store.
func (Store) TableName() string { return "stores" }

// Price is an immutable observation of a product's price at a store.
// Rows are append-only; "latest" and "previous" are resolved by RecordedAt,
// then CreatedAt, then ID.
type Price struct {
	ID         string          `json:"id"          gorm:"type:char(36);primaryKey"`
	ProductID  string          `json:"product_id"  gorm:"type:char(36);not null;index:idx_prices_pair,priority:1"`
	StoreID    string          `json:"store_id"    gorm:"type:char(36);not null;index:idx_prices_pair,priority:2"`
	Amount     decimal.Decimal `json:"amount"      gorm:"type:decimal(12,2);not null"`
	Currency   string          `json:"currency"    gorm:"type:varchar(8);not null;default:'EUR'"`
	RecordedAt time.Time       `json:"recorded_at" gorm:"not null;index:idx_prices_pair,priority:3"`
	Source     *string         `json:"source,omitempty" gorm:"type:varchar(255)"`
	CreatedAt  time.Time       `json:"created_at"`

	Product Product `json:"-" gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Store   Store   `json:"-" gorm:"foreignKey:StoreID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Price.
func (Price) TableName() string { return "prices" }

// MaxAmount is the largest value the decimal(12,2) amount column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

// PriceAmount rounds d to cents and reports whether the stored value would be
// a usable price: strictly positive and within MaxAmount.
func PriceAmount(d decimal.Decimal) (decimal.Decimal, bool) {
	r := d.Round(2)
	return r, r.IsPositive() && r.LessThanOrEqual(MaxAmount)
}

// PriceAlertSubscription is a user's standing request to be told about price
// drops of one product. A user subscribes to a product at most once.
type PriceAlertSubscription struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;uniqueIndex:ux_alert_user_product,priority:1"`
	ProductID string    `json:"product_id" gorm:"type:char(36);not null;index;uniqueIndex:ux_alert_user_product,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	User    User    `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Product Product `json:"-" gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for PriceAlertSubscription.
func (PriceAlertSubscription) TableName() string { return "price_alert_subscriptions" }

// PriceAlertNotification records one detected drop for one subscriber.
// Rows are written only as a side effect of a drop and never updated.
type PriceAlertNotification struct {
	ID         string          `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID     string          `json:"user_id"     gorm:"type:char(36);not null;index:idx_notifications_user"`
	ProductID  string          `json:"product_id"  gorm:"type:char(36);not null;index"`
	StoreID    string          `json:"store_id"    gorm:"type:char(36);not null"`
	FromAmount decimal.Decimal `json:"from_amount" gorm:"type:decimal(12,2);not null"`
	ToAmount   decimal.Decimal `json:"to_amount"   gorm:"type:decimal(12,2);not null"`
	Currency   string          `json:"currency"    gorm:"type:varchar(8);not null"`
	RecordedAt time.Time       `json:"recorded_at" gorm:"not null"`
	CreatedAt  time.Time       `json:"created_at"  gorm:"index:idx_notifications_user"`
}

// TableName returns the database table name for PriceAlertNotification.
func (PriceAlertNotification) TableName() string { return "price_alert_notifications" }
