// Package sections merges a course site's Canvas section list with the
// authoritative SIS section rows, and builds the cross-term teaching view for
// an instructor. Both views are pure transformations over rows the caller has
// already fetched; missing rows degrade to partial output rather than errors.
package sections

import (
	"log/slog"

	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// CanvasSectionInfo is the projection of a Canvas section that carries an SIS
// section id. Canvas-only sections are excluded from the official view.
type CanvasSectionInfo struct {
	ID         string `json:"id"`
	CanvasName string `json:"canvasName"`
	SISID      string `json:"sisId"`
	TermID     string `json:"termId"`
}

// Instructor is one instructor of record on a section.
type Instructor struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// Schedule is one meeting pattern on a section.
type Schedule struct {
	Days      string `json:"days"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location"`
}

// OfficialSection merges the Canvas projection of a section with its SIS rows.
type OfficialSection struct {
	ID                string       `json:"id"`
	CanvasName        string       `json:"canvasName,omitempty"`
	SISID             string       `json:"sisId,omitempty"`
	TermID            string       `json:"termId"`
	CourseCode        string       `json:"courseCode"`
	CourseTitle       string       `json:"courseTitle"`
	InstructionFormat string       `json:"instructionFormat"`
	SectionNumber     string       `json:"sectionNumber"`
	IsPrimarySection  bool         `json:"isPrimarySection"`
	Name              string       `json:"name"`
	EnrollCount       int          `json:"enrollCount"`
	EnrollLimit       int          `json:"enrollLimit"`
	Instructors       []Instructor `json:"instructors"`
	Schedules         []Schedule   `json:"schedules"`
	CrossListedAs     []string     `json:"crossListedAs,omitempty"`
}

// ProjectCanvasSections filters Canvas sections to those carrying a parseable
// SIS section id and projects the fields the reconciler needs.
func ProjectCanvasSections(canvasSections []types.CanvasSection) []CanvasSectionInfo {
	var projected []CanvasSectionInfo
	for _, cs := range canvasSections {
		if cs.SISSectionID == nil {
			continue
		}
		sectionID, term, err := berkeley.ParseCanvasSISSectionID(*cs.SISSectionID)
		if err != nil {
			continue
		}
		projected = append(projected, CanvasSectionInfo{
			ID:         sectionID,
			CanvasName: cs.Name,
			SISID:      *cs.SISSectionID,
			TermID:     term.SISTermID(),
		})
	}
	return projected
}

// SectionIDs returns the SIS section ids of the projected Canvas sections, in
// input order.
func SectionIDs(projected []CanvasSectionInfo) []string {
	ids := make([]string, 0, len(projected))
	for _, p := range projected {
		ids = append(ids, p.ID)
	}
	return ids
}

// ReconcileOfficial merges Canvas sections with their SIS rows. Rows are
// sorted by the canonical section ordering and grouped by section id, with the
// first row of each group as the primary record and the rest as cross-listed
// context. A count mismatch between the two sides is logged and tolerated.
// Returns the merged sections and the sorted rows for reuse by TeachingTerms.
func ReconcileOfficial(projected []CanvasSectionInfo, sisRows []types.SectionRow) ([]OfficialSection, []types.SectionRow) {
	byID := make(map[string]CanvasSectionInfo, len(projected))
	for _, p := range projected {
		byID[p.ID] = p
	}

	sorted := berkeley.SortCourseSections(sisRows)
	if len(sorted) != len(projected) {
		slog.Warn("Canvas and SIS section counts disagree",
			"canvasSections", len(projected),
			"sisRows", len(sorted))
	}

	official := make([]OfficialSection, 0, len(projected))
	for _, group := range groupBySectionID(sorted) {
		canvasSection, ok := byID[group[0].SectionID]
		if !ok {
			continue
		}
		merged := sectionJSON(group[0], group[1:])
		merged.CanvasName = canvasSection.CanvasName
		merged.SISID = canvasSection.SISID
		official = append(official, merged)
	}
	return official, sorted
}

// groupBySectionID groups rows by section id, preserving the order in which
// each id first appears. Unlike grouping by contiguous runs this does not
// depend on the input being sorted, but sorted input yields identical output.
func groupBySectionID(rows []types.SectionRow) [][]types.SectionRow {
	index := map[string]int{}
	var groups [][]types.SectionRow
	for _, row := range rows {
		i, ok := index[row.SectionID]
		if !ok {
			i = len(groups)
			index[row.SectionID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], row)
	}
	return groups
}

// sectionJSON projects a section's primary row, attaching the remaining rows
// as instructors and cross-listings.
func sectionJSON(primary types.SectionRow, secondary []types.SectionRow) OfficialSection {
	section := OfficialSection{
		ID:                primary.SectionID,
		TermID:            primary.TermID,
		CourseCode:        primary.CourseName,
		CourseTitle:       primary.CourseTitle,
		InstructionFormat: primary.InstructionFormat,
		SectionNumber:     primary.SectionNumber,
		IsPrimarySection:  primary.IsPrimary,
		Name:              berkeley.SectionDisplayName(primary),
		EnrollCount:       primary.EnrollCount,
		EnrollLimit:       primary.EnrollLimit,
	}

	seenInstructors := map[string]bool{}
	seenSchedules := map[Schedule]bool{}
	seenCourses := map[string]bool{primary.CourseName: true}
	for _, row := range append([]types.SectionRow{primary}, secondary...) {
		if row.InstructorUID != "" && !seenInstructors[row.InstructorUID] {
			seenInstructors[row.InstructorUID] = true
			section.Instructors = append(section.Instructors, Instructor{
				UID:  row.InstructorUID,
				Name: row.InstructorName,
			})
		}
		if schedule, ok := rowSchedule(row); ok && !seenSchedules[schedule] {
			seenSchedules[schedule] = true
			section.Schedules = append(section.Schedules, schedule)
		}
		if !seenCourses[row.CourseName] {
			seenCourses[row.CourseName] = true
			section.CrossListedAs = append(section.CrossListedAs, row.CourseName)
		}
	}
	return section
}

func rowSchedule(row types.SectionRow) (Schedule, bool) {
	if row.MeetingDays == nil {
		return Schedule{}, false
	}
	schedule := Schedule{Days: *row.MeetingDays}
	if row.MeetingStartTime != nil {
		schedule.StartTime = *row.MeetingStartTime
	}
	if row.MeetingEndTime != nil {
		schedule.EndTime = *row.MeetingEndTime
	}
	if row.MeetingLocation != nil {
		schedule.Location = *row.MeetingLocation
	}
	return schedule, true
}
