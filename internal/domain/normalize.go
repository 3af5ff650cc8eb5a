package domain

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText folds a free-text field into a canonical comparison form:
// diacritics stripped, uppercased, surrounding whitespace removed.
// Spreadsheet exports are inconsistent about accents ("Só Aço" vs "So Aco"),
// so every textual match in this package goes through here first.
func NormalizeText(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripper, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.TrimSpace(out))
}

// ManifestPlaceholder reports whether a manifest field is effectively empty.
// The upstream ERP emits "&nbsp;" for blank cells in its HTML exports.
func ManifestPlaceholder(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || t == "&nbsp;"
}

var orderDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2/1/2006 15:04:05",
	"2/1/2006",
}

// ParseOrderDate parses the delivery date formats seen in practice: ISO
// date/datetime from the ERP export and day/month/year from hand-edited
// sheets. The boolean is false when no layout matches.
func ParseOrderDate(s string) (time.Time, bool) {
	t := strings.TrimSpace(s)
	if t == "" {
		return time.Time{}, false
	}
	for _, layout := range orderDateLayouts {
		if parsed, err := time.ParseInLocation(layout, t, time.Local); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
