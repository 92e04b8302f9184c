package berkeley

import (
	"fmt"
	"strconv"
	"strings"
)

// Season codes follow the SIS convention: A winter, B spring, C summer, D fall.
const (
	SeasonWinter = "A"
	SeasonSpring = "B"
	SeasonSummer = "C"
	SeasonFall   = "D"
)

var seasonDigits = map[string]string{
	SeasonWinter: "0",
	SeasonSpring: "2",
	SeasonSummer: "5",
	SeasonFall:   "8",
}

var seasonNames = map[string]string{
	SeasonWinter: "Winter",
	SeasonSpring: "Spring",
	SeasonSummer: "Summer",
	SeasonFall:   "Fall",
}

var seasonAbbreviations = map[string]string{
	SeasonWinter: "wi",
	SeasonSpring: "sp",
	SeasonSummer: "su",
	SeasonFall:   "fa",
}

// Term is one academic term in the campus calendar.
type Term struct {
	Year   int
	Season string
}

// TermJSON is the API projection of a term.
type TermJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Year string `json:"year"`
}

// FromSISTermID parses a four-digit SIS term id, e.g. "2232" for Spring 2023.
// The id encodes century, two-digit year and season digit.
func FromSISTermID(id string) (Term, error) {
	if len(id) != 4 || id[0] != '2' {
		return Term{}, fmt.Errorf("invalid SIS term id %q", id)
	}
	year, err := strconv.Atoi(id[1:3])
	if err != nil {
		return Term{}, fmt.Errorf("invalid SIS term id %q", id)
	}
	for season, digit := range seasonDigits {
		if digit == id[3:] {
			return Term{Year: 2000 + year, Season: season}, nil
		}
	}
	return Term{}, fmt.Errorf("invalid season digit in SIS term id %q", id)
}

// FromCanvasSISTermID parses a Canvas-side term id, e.g. "TERM:2023-B".
func FromCanvasSISTermID(id string) (Term, error) {
	var year int
	var season string
	if _, err := fmt.Sscanf(id, "TERM:%d-%s", &year, &season); err != nil {
		return Term{}, fmt.Errorf("invalid Canvas SIS term id %q", id)
	}
	if _, ok := seasonNames[season]; !ok {
		return Term{}, fmt.Errorf("invalid season in Canvas SIS term id %q", id)
	}
	return Term{Year: year, Season: season}, nil
}

// FromEnglish parses a display name such as "Spring 2023", the format used by
// the data loch current-term index.
func FromEnglish(name string) (Term, error) {
	parts := strings.Fields(name)
	if len(parts) != 2 {
		return Term{}, fmt.Errorf("invalid term name %q", name)
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Term{}, fmt.Errorf("invalid term name %q", name)
	}
	for season, english := range seasonNames {
		if english == parts[0] {
			return Term{Year: year, Season: season}, nil
		}
	}
	return Term{}, fmt.Errorf("invalid season in term name %q", name)
}

// SISTermID renders the four-digit SIS term id.
func (t Term) SISTermID() string {
	return fmt.Sprintf("2%02d%s", t.Year%100, seasonDigits[t.Season])
}

// CanvasSISTermID renders the Canvas-side term id, e.g. "TERM:2023-B".
func (t Term) CanvasSISTermID() string {
	return fmt.Sprintf("TERM:%d-%s", t.Year, t.Season)
}

// English renders the display name, e.g. "Spring 2023".
func (t Term) English() string {
	return fmt.Sprintf("%s %d", seasonNames[t.Season], t.Year)
}

// Slug renders the URL slug, e.g. "spring-2023".
func (t Term) Slug() string {
	return fmt.Sprintf("%s-%d", strings.ToLower(seasonNames[t.Season]), t.Year)
}

// Abbreviation renders the short form used in mailing list names, e.g. "sp23".
func (t Term) Abbreviation() string {
	return fmt.Sprintf("%s%02d", seasonAbbreviations[t.Season], t.Year%100)
}

// Next returns the following term. Winter sessions are not part of the regular
// spring-summer-fall cycle.
func (t Term) Next() Term {
	switch t.Season {
	case SeasonSpring:
		return Term{Year: t.Year, Season: SeasonSummer}
	case SeasonSummer:
		return Term{Year: t.Year, Season: SeasonFall}
	default:
		return Term{Year: t.Year + 1, Season: SeasonSpring}
	}
}

// ToAPI returns the JSON projection of the term.
func (t Term) ToAPI() TermJSON {
	return TermJSON{
		ID:   t.SISTermID(),
		Name: t.English(),
		Year: strconv.Itoa(t.Year),
	}
}

// KeyedTerm pairs a calendar slot name with its term.
type KeyedTerm struct {
	Key  string
	Term Term
}

// CurrentTerms returns the current, next and future calendar slots, in that
// order, given the current term from the data loch term index.
func CurrentTerms(current Term) []KeyedTerm {
	next := current.Next()
	return []KeyedTerm{
		{Key: "current", Term: current},
		{Key: "next", Term: next},
		{Key: "future", Term: next.Next()},
	}
}
