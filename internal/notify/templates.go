package notify

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PriceDrop carries what a subscriber is told about one drop.
type PriceDrop struct {
	ProductName string
	ProductSlug string
	StoreName   string
	From        decimal.Decimal
	To          decimal.Decimal
	Currency    string
	RecordedAt  time.Time
}

// PriceDropMessage renders the alert email for recipient. Links point at the
// English product page under siteURL.
func PriceDropMessage(recipient, siteURL string, d PriceDrop) Message {
	base := strings.TrimRight(siteURL, "/")
	return Message{
		To:      recipient,
		Subject: "Price drop: " + d.ProductName,
		Text: fmt.Sprintf(
			"Price dropped for %s at %s on %s.\nFrom %s %s to %s %s.\n%s/en/products/%s",
			d.ProductName, d.StoreName, d.RecordedAt.UTC().Format("2006-01-02"),
			d.From.String(), d.Currency, d.To.String(), d.Currency,
			base, url.PathEscape(d.ProductSlug),
		),
	}
}

// MagicLinkMessage renders the login email.
func MagicLinkMessage(recipient, link string, ttl time.Duration) Message {
	return Message{
		To:      recipient,
		Subject: "Your sign-in link",
		Text: fmt.Sprintf("Sign in to Kbiz Price Hunter:\n%s\nThe link expires in %d minutes and works once.",
			link, int(ttl.Minutes())),
	}
}
