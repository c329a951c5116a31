package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category is one entry of the fixed product taxonomy.
type Category struct {
	Slug     string   `json:"slug"`
	Label    string   `json:"label"`
	Keywords []string `json:"-"`
}

// Unassigned is returned by Classify when no keyword matches.
var Unassigned = Category{Slug: "neopredeleni", Label: "Неопределени"}

// taxonomy order is the order Classify reports matches in.
var taxonomy = []Category{
	{Slug: "lekarstva", Label: "Лекарства", Keywords: []string{"спрей", "таблетки", "капсули", "гел", "крем", "сироп", "унгв"}},
	{Slug: "hrani", Label: "Храни", Keywords: []string{"сирене", "мляко", "месо", "хляб", "масло"}},
	{Slug: "napitki", Label: "Напитки", Keywords: []string{"чай", "кафе", "сок", "вода"}},
	{Slug: "kozmetika", Label: "Козметика", Keywords: []string{"шампоан", "лосион", "крем", "балсам"}},
	{Slug: "domakinstvo", Label: "Домакинство", Keywords: []string{"препарат", "почист", "прах"}},
}

// Categories lists the taxonomy followed by the unassigned sentinel.
func Categories() []Category {
	out := make([]Category, 0, len(taxonomy)+1)
	for _, c := range taxonomy {
		out = append(out, Category{Slug: c.Slug, Label: c.Label})
	}
	return append(out, Category{Slug: Unassigned.Slug, Label: Unassigned.Label})
}

// IsCategory reports whether slug names a taxonomy entry or the sentinel.
func IsCategory(slug string) bool {
	for _, c := range Categories() {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

// Classify returns the slugs of every category with at least one keyword
// contained in name+description (case-insensitive), in taxonomy order.
// It never returns an empty slice.
func Classify(name, description string) []string {
	// cases.Caser is stateful; build one per call.
	text := cases.Lower(language.Bulgarian).String(name + " " + description)

	var out []string
	for _, c := range taxonomy {
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				out = append(out, c.Slug)
				break
			}
		}
	}
	if len(out) == 0 {
		return []string{Unassigned.Slug}
	}
	return out
}
