package berkeley

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSISTermID(t *testing.T) {
	term, err := FromSISTermID("2228")
	require.NoError(t, err)
	assert.Equal(t, Term{Year: 2022, Season: SeasonFall}, term)
	assert.Equal(t, "Fall 2022", term.English())

	term, err = FromSISTermID("2232")
	require.NoError(t, err)
	assert.Equal(t, Term{Year: 2023, Season: SeasonSpring}, term)

	for _, bad := range []string{"", "228", "22280", "1228", "2229", "2x28"} {
		_, err := FromSISTermID(bad)
		assert.Errorf(t, err, "expected %q to be rejected", bad)
	}
}

func TestSISTermIDRoundTrip(t *testing.T) {
	for _, id := range []string{"2150", "2152", "2155", "2158", "2232", "2238"} {
		term, err := FromSISTermID(id)
		require.NoError(t, err)
		assert.Equal(t, id, term.SISTermID())
	}
}

func TestFromCanvasSISTermID(t *testing.T) {
	term, err := FromCanvasSISTermID("TERM:2023-B")
	require.NoError(t, err)
	assert.Equal(t, Term{Year: 2023, Season: SeasonSpring}, term)
	assert.Equal(t, "TERM:2023-B", term.CanvasSISTermID())

	for _, bad := range []string{"", "2023-B", "TERM:2023-X", "TERM:notayear-B"} {
		_, err := FromCanvasSISTermID(bad)
		assert.Errorf(t, err, "expected %q to be rejected", bad)
	}
}

func TestFromEnglish(t *testing.T) {
	term, err := FromEnglish("Spring 2023")
	require.NoError(t, err)
	assert.Equal(t, Term{Year: 2023, Season: SeasonSpring}, term)

	for _, bad := range []string{"", "Spring", "Autumn 2023", "Spring twenty23"} {
		_, err := FromEnglish(bad)
		assert.Errorf(t, err, "expected %q to be rejected", bad)
	}
}

func TestTermRenderings(t *testing.T) {
	term := Term{Year: 2015, Season: SeasonSpring}
	assert.Equal(t, "2152", term.SISTermID())
	assert.Equal(t, "Spring 2015", term.English())
	assert.Equal(t, "spring-2015", term.Slug())
	assert.Equal(t, "sp15", term.Abbreviation())
	assert.Equal(t, TermJSON{ID: "2152", Name: "Spring 2015", Year: "2015"}, term.ToAPI())
}

func TestTermNext(t *testing.T) {
	spring := Term{Year: 2023, Season: SeasonSpring}
	summer := spring.Next()
	assert.Equal(t, Term{Year: 2023, Season: SeasonSummer}, summer)
	fall := summer.Next()
	assert.Equal(t, Term{Year: 2023, Season: SeasonFall}, fall)
	assert.Equal(t, Term{Year: 2024, Season: SeasonSpring}, fall.Next())
}

func TestCurrentTerms(t *testing.T) {
	terms := CurrentTerms(Term{Year: 2023, Season: SeasonSummer})
	require.Len(t, terms, 3)
	assert.Equal(t, "current", terms[0].Key)
	assert.Equal(t, Term{Year: 2023, Season: SeasonSummer}, terms[0].Term)
	assert.Equal(t, "next", terms[1].Key)
	assert.Equal(t, Term{Year: 2023, Season: SeasonFall}, terms[1].Term)
	assert.Equal(t, "future", terms[2].Key)
	assert.Equal(t, Term{Year: 2024, Season: SeasonSpring}, terms[2].Term)
}
