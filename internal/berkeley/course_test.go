package berkeley

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets-berkeley-edu/ripley/internal/types"
)

func TestGradeRank(t *testing.T) {
	assert.Equal(t, 0, GradeRank("A+"))
	assert.Equal(t, 12, GradeRank("F"))
	assert.Equal(t, 15, GradeRank("I"))
	assert.Equal(t, len(GradeOrdering), GradeRank("Z"))
	assert.Equal(t, len(GradeOrdering), GradeRank(""))
}

func TestLetterGrades(t *testing.T) {
	assert.Equal(t, "A+", LetterGrades[0])
	assert.Equal(t, "F", LetterGrades[len(LetterGrades)-1])
	assert.NotContains(t, LetterGrades, "P")
}

func TestSortCourseSections(t *testing.T) {
	rows := []types.SectionRow{
		{CourseName: "DATA 8", InstructionFormat: "LEC", SectionNumber: "001", IsPrimary: true},
		{CourseName: "ANTHRO 1", InstructionFormat: "DIS", SectionNumber: "102", IsPrimary: false},
		{CourseName: "ANTHRO 1", InstructionFormat: "LEC", SectionNumber: "001", IsPrimary: true},
		{CourseName: "ANTHRO 1", InstructionFormat: "DIS", SectionNumber: "101", IsPrimary: false},
	}
	sorted := SortCourseSections(rows)
	require.Len(t, sorted, 4)
	assert.Equal(t, "LEC", sorted[0].InstructionFormat)
	assert.Equal(t, "101", sorted[1].SectionNumber)
	assert.Equal(t, "102", sorted[2].SectionNumber)
	assert.Equal(t, "DATA 8", sorted[3].CourseName)

	// The input slice stays untouched.
	assert.Equal(t, "DATA 8", rows[0].CourseName)
}

func TestSectionDisplayName(t *testing.T) {
	name := SectionDisplayName(types.SectionRow{InstructionFormat: "LEC", SectionNumber: "001"})
	assert.Equal(t, "LEC 001", name)
}

func TestParseCanvasSISSectionID(t *testing.T) {
	sectionID, term, err := ParseCanvasSISSectionID("SEC:2023-B-12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", sectionID)
	assert.Equal(t, Term{Year: 2023, Season: SeasonSpring}, term)

	for _, bad := range []string{"", "12345", "SEC:2023-X-12345", "SEC:2023-B"} {
		_, _, err := ParseCanvasSISSectionID(bad)
		assert.Errorf(t, err, "expected %q to be rejected", bad)
	}
}
