// Package catalog holds the text rules that turn raw supplier strings into
// catalog identities: product-name and city normalization, the keyword
// category taxonomy, and slug generation. Everything here is pure and safe
// for concurrent use; the region table is loaded once per process.
package catalog

import (
	"regexp"
	"strings"
	"unicode"
)

var leadingPunct = regexp.MustCompile(`^[,.;:]+`)

// NormalizeName trims surrounding whitespace and strips a leading run of
// , . ; : characters left over from supplier exports.
func NormalizeName(raw string) string {
	return strings.TrimSpace(leadingPunct.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// cityInStore matches "гр. Варна" / "ГР Стара Загора" inside a store name.
var cityInStore = regexp.MustCompile(`(?i)гр\.?\s*([A-Za-zА-Яа-я-]+(?:\s+[A-Za-zА-Яа-я-]+)*)`)

// CityNormalizer resolves the city of a supplier row. Feeds sometimes carry a
// numeric administrative code instead of a name, which is looked up in the
// region table before falling back to the store name.
type CityNormalizer struct {
	Regions *RegionTable
}

// NewCityNormalizer returns a normalizer backed by regions (may be nil).
func NewCityNormalizer(regions *RegionTable) *CityNormalizer {
	return &CityNormalizer{Regions: regions}
}

// Normalize returns the canonical city for rawCity, or nil when none can be
// determined.
func (n *CityNormalizer) Normalize(rawCity, storeName string) *string {
	city := strings.TrimSpace(rawCity)

	if city != "" && hasLetter(city) {
		return nonEmpty(cleanCity(city))
	}

	if city == "" || isDigits(city) {
		if city != "" && n != nil && n.Regions != nil {
			if name, ok := n.Regions.Lookup(city); ok {
				return nonEmpty(name)
			}
		}
		return cityFromStoreName(storeName)
	}

	return nonEmpty(cleanCity(city))
}

// cleanCity keeps the text before the first ',' or '/'.
func cleanCity(s string) string {
	if i := strings.IndexAny(s, ",/"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func cityFromStoreName(storeName string) *string {
	m := cityInStore.FindStringSubmatch(storeName)
	if len(m) < 2 {
		return nil
	}
	return nonEmpty(cleanCity(m[1]))
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && (unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Cyrillic, r)) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
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

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
