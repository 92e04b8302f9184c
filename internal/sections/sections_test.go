package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets-berkeley-edu/ripley/internal/types"
)

func sisID(id string) *string { return &id }

func sisRow(sectionID, courseName, format, number string, primary bool) types.SectionRow {
	return types.SectionRow{
		SectionID:         sectionID,
		TermID:            "2232",
		CourseID:          courseName,
		CourseName:        courseName,
		CourseTitle:       courseName + " title",
		InstructionFormat: format,
		SectionNumber:     number,
		IsPrimary:         primary,
	}
}

func TestProjectCanvasSections(t *testing.T) {
	canvasSections := []types.CanvasSection{
		{Name: "ANTHRO 1 LEC 001", SISSectionID: sisID("SEC:2023-B-12345")},
		{Name: "Canvas-only group", SISSectionID: nil},
		{Name: "Ad hoc section", SISSectionID: sisID("not-an-sis-id")},
		{Name: "ANTHRO 1 DIS 101", SISSectionID: sisID("SEC:2023-B-12346")},
	}
	projected := ProjectCanvasSections(canvasSections)
	require.Len(t, projected, 2)
	assert.Equal(t, CanvasSectionInfo{
		ID:         "12345",
		CanvasName: "ANTHRO 1 LEC 001",
		SISID:      "SEC:2023-B-12345",
		TermID:     "2232",
	}, projected[0])
	assert.Equal(t, "12346", projected[1].ID)
	assert.Equal(t, []string{"12345", "12346"}, SectionIDs(projected))
}

func TestReconcileOfficialMergesBothSides(t *testing.T) {
	projected := []CanvasSectionInfo{
		{ID: "12345", CanvasName: "ANTHRO 1 LEC 001", SISID: "SEC:2023-B-12345", TermID: "2232"},
		{ID: "12346", CanvasName: "ANTHRO 1 DIS 101", SISID: "SEC:2023-B-12346", TermID: "2232"},
	}
	lec := sisRow("12345", "ANTHRO 1", "LEC", "001", true)
	lec.InstructorUID = "30001"
	lec.InstructorName = "Annalise Keating"
	dis := sisRow("12346", "ANTHRO 1", "DIS", "101", false)

	official, sorted := ReconcileOfficial(projected, []types.SectionRow{dis, lec})
	require.Len(t, official, 2)
	require.Len(t, sorted, 2)

	// Primary sections sort ahead of secondary ones.
	assert.Equal(t, "12345", official[0].ID)
	assert.Equal(t, "ANTHRO 1 LEC 001", official[0].CanvasName)
	assert.Equal(t, "SEC:2023-B-12345", official[0].SISID)
	assert.Equal(t, "LEC 001", official[0].Name)
	assert.True(t, official[0].IsPrimarySection)
	assert.Equal(t, []Instructor{{UID: "30001", Name: "Annalise Keating"}}, official[0].Instructors)
	assert.Equal(t, "12346", official[1].ID)
	assert.False(t, official[1].IsPrimarySection)
}

func TestReconcileOfficialToleratesCountMismatch(t *testing.T) {
	projected := []CanvasSectionInfo{
		{ID: "12345", SISID: "SEC:2023-B-12345"},
		{ID: "12346", SISID: "SEC:2023-B-12346"},
		{ID: "99999", SISID: "SEC:2023-B-99999"},
	}
	rows := []types.SectionRow{
		sisRow("12345", "ANTHRO 1", "LEC", "001", true),
		sisRow("12346", "ANTHRO 1", "DIS", "101", false),
	}
	official, _ := ReconcileOfficial(projected, rows)
	require.Len(t, official, 2)
	assert.Equal(t, "12345", official[0].ID)
	assert.Equal(t, "12346", official[1].ID)
}

func TestReconcileOfficialSkipsRowsUnknownToCanvas(t *testing.T) {
	projected := []CanvasSectionInfo{{ID: "12345", SISID: "SEC:2023-B-12345"}}
	rows := []types.SectionRow{
		sisRow("12345", "ANTHRO 1", "LEC", "001", true),
		sisRow("55555", "ANTHRO 1", "DIS", "102", false),
	}
	official, _ := ReconcileOfficial(projected, rows)
	require.Len(t, official, 1)
	assert.Equal(t, "12345", official[0].ID)
}

func TestReconcileOfficialCrossListings(t *testing.T) {
	projected := []CanvasSectionInfo{{ID: "12345", SISID: "SEC:2023-B-12345"}}
	anthro := sisRow("12345", "ANTHRO 1", "LEC", "001", true)
	anthro.InstructorUID = "30001"
	anthro.InstructorName = "Annalise Keating"
	crossListed := sisRow("12345", "LETTERS 1", "LEC", "001", true)
	crossListed.InstructorUID = "30001"
	crossListed.InstructorName = "Annalise Keating"

	official, _ := ReconcileOfficial(projected, []types.SectionRow{anthro, crossListed})
	require.Len(t, official, 1)
	assert.Equal(t, "ANTHRO 1", official[0].CourseCode)
	assert.Equal(t, []string{"LETTERS 1"}, official[0].CrossListedAs)
	// Same instructor on both listings counts once.
	assert.Len(t, official[0].Instructors, 1)
}

func TestReconcileOfficialSchedules(t *testing.T) {
	days := "MOWE"
	start := "13:00"
	end := "13:59"
	location := "Wheeler 150"
	row := sisRow("12345", "ANTHRO 1", "LEC", "001", true)
	row.MeetingDays = &days
	row.MeetingStartTime = &start
	row.MeetingEndTime = &end
	row.MeetingLocation = &location

	official, _ := ReconcileOfficial(
		[]CanvasSectionInfo{{ID: "12345", SISID: "SEC:2023-B-12345"}},
		[]types.SectionRow{row},
	)
	require.Len(t, official, 1)
	assert.Equal(t, []Schedule{{
		Days:      "MOWE",
		StartTime: "13:00",
		EndTime:   "13:59",
		Location:  "Wheeler 150",
	}}, official[0].Schedules)
}

func TestReconcileOfficialEmptyInputs(t *testing.T) {
	official, sorted := ReconcileOfficial(nil, nil)
	assert.Empty(t, official)
	assert.Empty(t, sorted)
}
