package catalog

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SlugNamespace prefixes every slug produced from supplier imports.
const SlugNamespace = "zlatna"

var bulgarian = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f",
	'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sht", 'ъ': "a", 'ь': "y",
	'ю': "yu", 'я': "ya",
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, transliterates Bulgarian Cyrillic, drops diacritics
// and collapses everything outside [a-z0-9] into single hyphens.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if lat, ok := bulgarian[r]; ok {
			b.WriteString(lat)
			continue
		}
		b.WriteRune(r)
	}
	return strings.Trim(nonSlug.ReplaceAllString(b.String(), "-"), "-")
}

// Slugger builds product slugs. Now and Token are seams for tests.
type Slugger struct {
	Namespace string
	Now       func() time.Time
	Token     func() string
}

// NewSlugger returns a Slugger using SlugNamespace and the wall clock.
func NewSlugger() *Slugger {
	return &Slugger{Namespace: SlugNamespace}
}

// Build prefers the supplier code, then the name, then a time-based token.
// It always returns a non-empty slug.
func (s *Slugger) Build(code, name string) string {
	ns := s.Namespace
	if ns == "" {
		ns = SlugNamespace
	}
	if c := Slugify(code); c != "" {
		return ns + "-" + c
	}
	if n := Slugify(name); n != "" {
		return ns + "-" + n
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	token := func() string { return uuid.NewString()[:8] }
	if s.Token != nil {
		token = s.Token
	}
	return fmt.Sprintf("%s-%d-%s", ns, now().UnixMilli(), token())
}
