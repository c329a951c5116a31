// Package services defines the business logic of the price catalog: CSV
// import, price writes and series, price-drop detection and alerting, the
// product/store catalog and magic-link authentication.
//
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
// Translation into HTTP status codes is performed by the handler layer.
package services

import (
	"errors"
	"strings"
)

// Catalog errors.
var (
	// ErrProductNotFound indicates that no product matches the given id or slug.
	ErrProductNotFound = errors.New("product not found")

	// ErrStoreNotFound indicates that no store matches the given id.
	ErrStoreNotFound = errors.New("store not found")

	// ErrProductRefRequired is returned when neither a product id nor a slug
	// was supplied.
	ErrProductRefRequired = errors.New("productId or productSlug is required")

	// ErrInvalidProduct is returned when a product is missing its slug or name.
	ErrInvalidProduct = errors.New("slug and name are required")

	// ErrDuplicateSlug is returned when creating a product whose slug exists.
	ErrDuplicateSlug = errors.New("product slug already exists")

	// ErrInvalidStore is returned when a store is missing its name.
	ErrInvalidStore = errors.New("store name is required")

	// ErrDuplicateStore is returned when (name, city) already exists.
	ErrDuplicateStore = errors.New("store already exists")
)

// Price errors.
var (
	// ErrInvalidAmount is returned for an amount that is missing, rounds to zero
	// or less, or exceeds domain.MaxAmount.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrInvalidCurrency is returned for a currency that is not a 3-letter code.
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code")

	// ErrStoreRequired is returned when a price write has no store id.
	ErrStoreRequired = errors.New("storeId is required")
)

// Import errors. Both abort an import before any row is processed.
var (
	// ErrEmptyCSV is returned when the file has no data row after the header.
	ErrEmptyCSV = errors.New("CSV file has no rows")
)

// MissingHeadersError lists every required column absent from the header.
type MissingHeadersError struct {
	Headers []string
}

func (e *MissingHeadersError) Error() string {
	return "Missing headers: " + strings.Join(e.Headers, ", ")
}

// Auth errors.
var (
	// ErrEmailRequired is returned when a login request has no usable email.
	ErrEmailRequired = errors.New("email is required")

	// ErrInvalidToken is returned for unknown, used or expired login tokens.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrNoSession is returned when a session token does not resolve to a user.
	ErrNoSession = errors.New("no active session")
)

// ErrUserNotFound is returned when a consumed token names no user.
var ErrUserNotFound = errors.New("user not found")
