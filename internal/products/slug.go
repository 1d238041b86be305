package products

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify turns a Vietnamese product name into a URL slug, e.g.
// "Điện thoại Samsung Galaxy S24" -> "dien-thoai-samsung-galaxy-s24".
func Slugify(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	lowered = strings.NewReplacer("đ", "d", "Đ", "d").Replace(lowered)
	folded, _, err := transform.String(foldDiacritics, lowered)
	if err != nil {
		folded = lowered
	}

	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
