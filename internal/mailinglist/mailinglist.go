// Package mailinglist manages per-course-site mailing lists. The list name is
// derived from the Canvas site name and term so that it is stable, URL-safe
// and unique per term.
package mailinglist

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
)

const maxBaseNameLength = 45

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NameForSite derives a mailing list name from a Canvas site name and term:
//
//	"CHEM 1A LEC 003" => "chem-1a-lec-003-sp15"
//	"The \"Wild\"-\"Wild\" West?" => "the-wild-wild-west-sp15"
//	"Conversation intermédiaire" => "conversation-intermediaire-sp15"
//
// A nil term appends "-list" instead of a term abbreviation.
func NameForSite(siteName string, term *berkeley.Term) string {
	normalized := transliterate(strings.ToLower(strings.TrimSpace(siteName)))
	var words []string
	for _, word := range nonAlphanumeric.Split(normalized, -1) {
		if word != "" {
			words = append(words, word)
		}
	}
	name := strings.Join(words, "-")
	if len(name) > maxBaseNameLength {
		name = name[:maxBaseNameLength]
	}
	if term != nil {
		return name + "-" + term.Abbreviation()
	}
	return name + "-list"
}

// transliterate strips diacritics so accented characters survive the
// alphanumeric filter as their base letters.
func transliterate(value string) string {
	decomposed := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(decomposed, value)
	if err != nil {
		return value
	}
	return result
}
