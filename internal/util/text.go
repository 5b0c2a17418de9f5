package util

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"deviseur/internal"
)

var (
	reNonSlug   = regexp.MustCompile(`[^a-z0-9]+`)
	reM2        = regexp.MustCompile(`(?i)m2`)
	reSpaces    = regexp.MustCompile(`\s+`)
	rePiece     = regexp.MustCompile(`(?i)^pi[eè]ces?$`)
	reM2Only    = regexp.MustCompile(`(?i)^m²$`)
	reDigits    = regexp.MustCompile(`^\d+$`)
	reUpperCode = regexp.MustCompile(`^[A-Z0-9]+$`)
	reWordSep   = regexp.MustCompile(`[_-]+`)
	reUnite     = regexp.MustCompile(`(?i)unité`)
)

var categorySeparators = []string{">", "/", "\\", "|", "»"}

var combiningMarks = runes.Predicate(func(r rune) bool {
	return r >= 0x0300 && r <= 0x036f
})

func stripMarks(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(combiningMarks))
	out, _, err := transform.String(t, input)
	if err != nil {
		return input
	}
	return out
}

// Slugify turns a CSV header cell into its lookup key: "Désignation" -> "designation".
func Slugify(input string) string {
	s := stripMarks(strings.ToLower(input))
	s = reNonSlug.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// PageSlug builds an ASCII file name stem, "produit" when nothing is left.
func PageSlug(input string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, input)
	if err != nil {
		ascii = input
	}

	var b strings.Builder
	lastDash := false
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(unicode.ToLower(r))
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "produit"
	}
	return slug
}

func NormaliseUnitLabel(input string) string {
	value := strings.TrimSpace(input)
	if value == "" {
		return ""
	}
	if reDigits.MatchString(value) {
		if value == "3" {
			return "m²"
		}
		return "Pièce"
	}
	normalised := reM2.ReplaceAllString(value, "m²")
	normalised = strings.TrimSpace(reSpaces.ReplaceAllString(normalised, " "))
	if rePiece.MatchString(normalised) {
		return "Pièce"
	}
	if reM2Only.MatchString(normalised) {
		return "m²"
	}
	return normalised
}

func QuantityModeOf(label string) internal.QuantityMode {
	lower := strings.ToLower(label)
	if strings.Contains(lower, "m2") || strings.Contains(lower, "m²") {
		return internal.QuantityArea
	}
	return internal.QuantityUnit
}

// ResolveUnit normalises a raw unit cell and derives its quantity mode.
func ResolveUnit(raw string) (string, internal.QuantityMode) {
	cleaned := CleanValue(raw)
	if cleaned == "" {
		return "", internal.QuantityUnit
	}
	label := NormaliseUnitLabel(cleaned)
	return label, QuantityModeOf(label)
}

func NormaliseScore(input string) string {
	s := strings.ToUpper(CleanValue(input))
	switch s {
	case "A", "B", "C", "D", "E":
		return s
	default:
		return ""
	}
}

// SplitCategoryPath splits on the first separator present, in priority order.
func SplitCategoryPath(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []string{internal.DefaultCategory}
	}
	for _, sep := range categorySeparators {
		if !strings.Contains(trimmed, sep) {
			continue
		}
		parts := strings.Split(trimmed, sep)
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return []string{internal.DefaultCategory}
		}
		return out
	}
	return []string{trimmed}
}

func FormatCategoryLabel(category string) string {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return internal.DefaultCategory
	}
	if reUpperCode.MatchString(trimmed) {
		return trimmed
	}
	words := strings.Fields(reWordSep.ReplaceAllString(trimmed, " "))
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func FormatUnitLabel(unit string) string {
	if unit == "" {
		return "À l'unité"
	}
	return unit
}

// IsPerArticle reports whether a unit label reads as "per article".
func IsPerArticle(unit string) bool {
	return unit == "" || reUnite.MatchString(unit)
}

func ScoreBadge(score string) string {
	if score == "" {
		return "NR"
	}
	return score
}

// ContainsFold is a case-insensitive substring test.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func newCollator() *collate.Collator {
	return collate.New(language.French, collate.IgnoreCase, collate.IgnoreDiacritics)
}

// SortByLabel sorts items in place with French collation on label(item).
func SortByLabel[T any](items []T, label func(T) string) {
	c := newCollator()
	slices.SortStableFunc(items, func(a, b T) int {
		return c.CompareString(label(a), label(b))
	})
}

// SortStrings sorts values with French collation.
func SortStrings(values []string) {
	SortByLabel(values, func(s string) string { return s })
}
