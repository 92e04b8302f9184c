package berkeley

import (
	"fmt"
	"sort"

	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// GradeOrdering is the canonical rank of grade values in distribution output.
// Grades not listed here sort after all known grades.
var GradeOrdering = []string{"A+", "A", "A-", "B+", "B", "B-", "C+", "C", "C-", "D+", "D", "D-", "F", "P", "NP", "I"}

// LetterGrades is the subset of GradeOrdering usable as a P/NP cutoff.
var LetterGrades = GradeOrdering[:13]

// GradeRank returns the ordering index of a grade, or len(GradeOrdering) for
// grades outside the canonical table.
func GradeRank(grade string) int {
	for i, g := range GradeOrdering {
		if g == grade {
			return i
		}
	}
	return len(GradeOrdering)
}

// SortCourseSections returns a copy of rows in the canonical section order:
// course name first, then primary sections before secondary, then instruction
// format and section number. The sort is stable, so rows sharing a section id
// stay in input order relative to each other.
func SortCourseSections(rows []types.SectionRow) []types.SectionRow {
	sorted := make([]types.SectionRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.CourseName != b.CourseName {
			return a.CourseName < b.CourseName
		}
		if a.IsPrimary != b.IsPrimary {
			return a.IsPrimary
		}
		if a.InstructionFormat != b.InstructionFormat {
			return a.InstructionFormat < b.InstructionFormat
		}
		return a.SectionNumber < b.SectionNumber
	})
	return sorted
}

// SectionDisplayName renders a section label such as "LEC 001".
func SectionDisplayName(row types.SectionRow) string {
	return fmt.Sprintf("%s %s", row.InstructionFormat, row.SectionNumber)
}

// ParseCanvasSISSectionID splits a Canvas-side section id such as
// "SEC:2023-B-12345" into the SIS section id and its term.
func ParseCanvasSISSectionID(id string) (string, Term, error) {
	var year int
	var season string
	var sectionID string
	if _, err := fmt.Sscanf(id, "SEC:%d-%1s-%s", &year, &season, &sectionID); err != nil {
		return "", Term{}, fmt.Errorf("invalid Canvas SIS section id %q", id)
	}
	if _, ok := seasonNames[season]; !ok || sectionID == "" {
		return "", Term{}, fmt.Errorf("invalid Canvas SIS section id %q", id)
	}
	return sectionID, Term{Year: year, Season: season}, nil
}
