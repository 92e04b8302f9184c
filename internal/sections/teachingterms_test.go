package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
	"github.com/ets-berkeley-edu/ripley/internal/types"
)

func instructingRow(termID, sectionID, courseName string, coInstructor bool) types.SectionRow {
	return types.SectionRow{
		SectionID:         sectionID,
		TermID:            termID,
		CourseID:          courseName,
		CourseName:        courseName,
		CourseTitle:       courseName + " title",
		InstructionFormat: "LEC",
		SectionNumber:     "001",
		IsPrimary:         true,
		IsCoInstructor:    coInstructor,
		InstructorUID:     "30001",
		InstructorName:    "Annalise Keating",
	}
}

func TestCandidateTerms(t *testing.T) {
	calendar := berkeley.CurrentTerms(berkeley.Term{Year: 2023, Season: berkeley.SeasonSpring})
	canvasTermIDs := []string{"TERM:2023-B", "TERM:2023-C", "TERM:2023-D"}

	// The future slot is Fall 2023, so all three slots survive.
	terms := CandidateTerms(calendar, canvasTermIDs)
	require.Len(t, terms, 3)
	assert.Equal(t, berkeley.SeasonSpring, terms[0].Season)
	assert.Equal(t, berkeley.SeasonSummer, terms[1].Season)
	assert.Equal(t, berkeley.SeasonFall, terms[2].Season)
}

func TestCandidateTermsHidesNonFallFuture(t *testing.T) {
	calendar := berkeley.CurrentTerms(berkeley.Term{Year: 2023, Season: berkeley.SeasonSummer})
	// Here the future slot is Spring 2024, which stays hidden.
	terms := CandidateTerms(calendar, []string{"TERM:2023-C", "TERM:2023-D", "TERM:2024-B"})
	termIDs := make([]string, len(terms))
	for i, term := range terms {
		termIDs[i] = term.CanvasSISTermID()
	}
	assert.Equal(t, []string{"TERM:2023-C", "TERM:2023-D"}, termIDs)
}

func TestCandidateTermsDropsTermsUnknownToCanvas(t *testing.T) {
	calendar := berkeley.CurrentTerms(berkeley.Term{Year: 2023, Season: berkeley.SeasonSpring})
	terms := CandidateTerms(calendar, []string{"TERM:2023-C"})
	require.Len(t, terms, 1)
	assert.Equal(t, "TERM:2023-C", terms[0].CanvasSISTermID())
}

func TestTeachingTermsGroupsByTermAndCourse(t *testing.T) {
	rows := []types.SectionRow{
		instructingRow("2232", "12345", "ANTHRO 1", false),
		instructingRow("2232", "12346", "ANTHRO 1", false),
		instructingRow("2232", "22222", "DATA 8", false),
		instructingRow("2238", "33333", "ANTHRO 1", false),
	}
	rows[1].SectionNumber = "002"

	groups := TeachingTerms(rows, []string{"12345"})
	require.Len(t, groups, 2)

	spring := groups[0]
	assert.Equal(t, "2232", spring.TermID)
	assert.Equal(t, "Spring 2023", spring.Name)
	assert.Equal(t, "spring-2023", spring.Slug)
	assert.Equal(t, "2023", spring.TermYear)
	require.Len(t, spring.Classes, 2)
	assert.Equal(t, "ANTHRO 1", spring.Classes[0].CourseCode)
	require.Len(t, spring.Classes[0].Sections, 2)
	assert.True(t, spring.Classes[0].Sections[0].IsCourseSection)
	assert.False(t, spring.Classes[0].Sections[1].IsCourseSection)
	assert.Equal(t, "DATA 8", spring.Classes[1].CourseCode)

	fall := groups[1]
	assert.Equal(t, "2238", fall.TermID)
	assert.Equal(t, "Fall 2023", fall.Name)
}

func TestTeachingTermsAttachesCoInstructors(t *testing.T) {
	primary := instructingRow("2232", "12345", "ANTHRO 1", false)
	co := instructingRow("2232", "12345", "ANTHRO 1", true)
	co.InstructorUID = "30002"
	co.InstructorName = "Sam Keating"
	otherSection := instructingRow("2232", "12346", "ANTHRO 1", false)

	groups := TeachingTerms([]types.SectionRow{primary, co, otherSection}, nil)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Classes, 1)
	gradedSections := groups[0].Classes[0].Sections
	require.Len(t, gradedSections, 2)

	// The co-instructor shows on their own section, not on the other one.
	assert.Equal(t, []Instructor{
		{UID: "30001", Name: "Annalise Keating"},
		{UID: "30002", Name: "Sam Keating"},
	}, gradedSections[0].Instructors)
	assert.Equal(t, []Instructor{
		{UID: "30001", Name: "Annalise Keating"},
	}, gradedSections[1].Instructors)
}

func TestTeachingTermsSkipsSectionsWithoutRepresentative(t *testing.T) {
	coOnly := instructingRow("2232", "12345", "ANTHRO 1", true)
	groups := TeachingTerms([]types.SectionRow{coOnly}, nil)
	assert.Empty(t, groups)
}

func TestTeachingTermsEmptyInput(t *testing.T) {
	assert.Empty(t, TeachingTerms(nil, nil))
}
