package sections

import (
	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// CourseSection is a section within a teaching-terms course entry, tagged with
// whether it belongs to the course site under edit.
type CourseSection struct {
	OfficialSection
	IsCourseSection bool `json:"isCourseSection"`
}

// TeachingCourse is one course an instructor teaches within a term.
type TeachingCourse struct {
	CourseCode string          `json:"courseCode"`
	Title      string          `json:"title"`
	TermID     string          `json:"termId"`
	Sections   []CourseSection `json:"sections"`
}

// TeachingTermGroup is all of an instructor's courses within one term.
type TeachingTermGroup struct {
	Classes  []TeachingCourse `json:"classes"`
	Name     string           `json:"name"`
	Slug     string           `json:"slug"`
	TermID   string           `json:"termId"`
	TermYear string           `json:"termYear"`
}

// CandidateTerms filters the campus calendar down to terms Canvas knows about.
// The forward-looking "future" slot is held back outside fall intake.
func CandidateTerms(calendar []berkeley.KeyedTerm, canvasTermIDs []string) []berkeley.Term {
	known := make(map[string]bool, len(canvasTermIDs))
	for _, id := range canvasTermIDs {
		known[id] = true
	}
	var terms []berkeley.Term
	for _, kt := range calendar {
		if !known[kt.Term.CanvasSISTermID()] {
			continue
		}
		if kt.Key == "future" && kt.Term.Season != berkeley.SeasonFall {
			continue
		}
		terms = append(terms, kt.Term)
	}
	return terms
}

// TeachingTerms groups section rows into per-term course lists. Within each
// section id group the first non-co-instructor row is the representative;
// co-instructor rows attach to it, and groups with no representative are
// skipped. courseSectionIDs marks which sections belong to the course site the
// caller started from.
func TeachingTerms(rows []types.SectionRow, courseSectionIDs []string) []TeachingTermGroup {
	siteSections := make(map[string]bool, len(courseSectionIDs))
	for _, id := range courseSectionIDs {
		siteSections[id] = true
	}

	type termCourses struct {
		order []string
		byID  map[string]*TeachingCourse
	}
	var termOrder []string
	coursesByTerm := map[string]*termCourses{}

	for _, group := range groupBySectionID(rows) {
		var primary *types.SectionRow
		var coInstructorRows []types.SectionRow
		for i := range group {
			if group[i].IsCoInstructor {
				coInstructorRows = append(coInstructorRows, group[i])
			} else if primary == nil {
				primary = &group[i]
			}
		}
		if primary == nil {
			continue
		}

		tc, ok := coursesByTerm[primary.TermID]
		if !ok {
			tc = &termCourses{byID: map[string]*TeachingCourse{}}
			coursesByTerm[primary.TermID] = tc
			termOrder = append(termOrder, primary.TermID)
		}
		course, ok := tc.byID[primary.CourseID]
		if !ok {
			course = &TeachingCourse{
				CourseCode: primary.CourseName,
				Title:      primary.CourseTitle,
				TermID:     primary.TermID,
			}
			tc.byID[primary.CourseID] = course
			tc.order = append(tc.order, primary.CourseID)
		}
		course.Sections = append(course.Sections, CourseSection{
			OfficialSection: sectionJSON(*primary, coInstructorRows),
			IsCourseSection: siteSections[primary.SectionID],
		})
	}

	groups := make([]TeachingTermGroup, 0, len(termOrder))
	for _, termID := range termOrder {
		tc := coursesByTerm[termID]
		group := TeachingTermGroup{TermID: termID}
		if term, err := berkeley.FromSISTermID(termID); err == nil {
			group.Name = term.English()
			group.Slug = term.Slug()
			group.TermYear = term.ToAPI().Year
		}
		for _, courseID := range tc.order {
			group.Classes = append(group.Classes, *tc.byID[courseID])
		}
		groups = append(groups, group)
	}
	return groups
}
