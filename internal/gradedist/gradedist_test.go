package gradedist

import (
	"math"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ets-berkeley-edu/ripley/internal/types"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func demoRow(grade, gender string, transfer, minority bool, ethnicities ...string) types.EnrollmentGradeRow {
	return types.EnrollmentGradeRow{
		Grade:       types.NullString(grade),
		Gender:      types.NullString(gender),
		Transfer:    transfer,
		Minority:    minority,
		Ethnicities: pq.StringArray(ethnicities),
	}
}

func TestDemographicsCountsAndPercentages(t *testing.T) {
	rows := []types.EnrollmentGradeRow{
		demoRow("A", "Female", false, false, "White"),
		demoRow("A", "Male", true, true, "Puerto Rican"),
		demoRow("B", "Female", false, true, "White"),
		demoRow("", "Female", false, false, "White"), // ungraded, excluded
	}
	summaries := Demographics(rows)
	require.Len(t, summaries, 2)

	a := summaries[0]
	assert.Equal(t, "A", a.Grade)
	assert.Equal(t, 2, a.Total)
	assert.InDelta(t, 66.7, a.Percentage, 0.01)
	// Two of three graded rows are Female; the A bucket holds one of them.
	assert.Equal(t, CountPercentage{Count: 1, Percentage: 50}, a.Genders["Female"])
	assert.Equal(t, CountPercentage{Count: 1, Percentage: 100}, a.Genders["Male"])
	assert.Equal(t, 1, a.TransferStatus["true"].Count)
	assert.Equal(t, 1, a.TransferStatus["false"].Count)
	assert.Equal(t, CountPercentage{Count: 1, Percentage: 50}, a.Ethnicities["White"])
	assert.Equal(t, CountPercentage{Count: 1, Percentage: 100}, a.Ethnicities["Hispanic / Latinx"])

	b := summaries[1]
	assert.Equal(t, "B", b.Grade)
	assert.InDelta(t, 33.3, b.Percentage, 0.01)
	assert.Equal(t, CountPercentage{Count: 1, Percentage: 50}, b.Ethnicities["White"])
}

func TestDemographicsBucketSumsMatchGlobalTotals(t *testing.T) {
	rows := []types.EnrollmentGradeRow{
		demoRow("A", "Female", true, false, "White"),
		demoRow("A-", "Male", false, true, "Vietnamese"),
		demoRow("B", "Female", true, true, "White", "Thai"),
		demoRow("B", "Genderqueer/Gender Non-Conform", false, false),
		demoRow("F", "Male", false, false, "Puerto Rican"),
	}
	rows[0].TermsInAttendance = intPtr(4)
	rows[1].VisaType = strPtr("F1")

	summaries := Demographics(rows)
	require.NotEmpty(t, summaries)

	dimensions := func(s GradeSummary) map[string]map[string]CountPercentage {
		return map[string]map[string]CountPercentage{
			"ethnicities":                    s.Ethnicities,
			"genders":                        s.Genders,
			"termsInAttendance":              s.TermsInAttendance,
			"transferStatus":                 s.TransferStatus,
			"underrepresentedMinorityStatus": s.UnderrepresentedMinorityStatus,
			"visaTypes":                      s.VisaTypes,
		}
	}

	// For every dimension value, counts across grade buckets must sum to the
	// global denominator behind the percentages, and the percentages across
	// buckets must sum to 100.
	type sums struct {
		count      int
		percentage float64
	}
	totals := map[string]map[string]*sums{}
	for _, summary := range summaries {
		for dim, values := range dimensions(summary) {
			if totals[dim] == nil {
				totals[dim] = map[string]*sums{}
			}
			for value, entry := range values {
				if totals[dim][value] == nil {
					totals[dim][value] = &sums{}
				}
				totals[dim][value].count += entry.Count
				totals[dim][value].percentage += entry.Percentage
			}
		}
	}
	for dim, values := range totals {
		for value, total := range values {
			if total.count == 0 {
				continue
			}
			assert.InDeltaf(t, 100, total.percentage, 0.1*float64(len(summaries)),
				"%s[%s] percentages should sum to 100", dim, value)
			for _, summary := range summaries {
				entry, ok := dimensions(summary)[dim][value]
				if !ok {
					continue
				}
				expected := math.Round(float64(entry.Count)*1000/float64(total.count)) / 10
				assert.Equalf(t, expected, entry.Percentage,
					"%s[%s] in grade %s should be computed against the global total", dim, value, summary.Grade)
			}
		}
	}
}

func TestDemographicsGradeOrdering(t *testing.T) {
	rows := []types.EnrollmentGradeRow{
		demoRow("B", "Female", false, false),
		demoRow("Z", "Male", false, false),
		demoRow("A-", "Female", false, false),
		demoRow("F", "Male", false, false),
	}
	summaries := Demographics(rows)
	grades := make([]string, len(summaries))
	for i, s := range summaries {
		grades[i] = s.Grade
	}
	assert.Equal(t, []string{"A-", "B", "F", "Z"}, grades)
}

func TestDemographicsCollapsesEthnicitiesOncePerRow(t *testing.T) {
	rows := []types.EnrollmentGradeRow{
		demoRow("A", "Female", false, false, "Chinese / Chinese-American", "Filipino / Filipino-American"),
	}
	summaries := Demographics(rows)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Ethnicities["Asian / Asian American"].Count)
	assert.Len(t, summaries[0].Ethnicities, 1)
}

func TestDemographicsCoercesMissingValues(t *testing.T) {
	summaries := Demographics([]types.EnrollmentGradeRow{demoRow("P", "", false, false)})
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Genders["none"].Count)
	assert.Equal(t, 1, summaries[0].TermsInAttendance["none"].Count)
	assert.Equal(t, 1, summaries[0].VisaTypes["none"].Count)
}

func TestDemographicsEmptyInput(t *testing.T) {
	assert.Empty(t, Demographics(nil))
	assert.Empty(t, Demographics([]types.EnrollmentGradeRow{demoRow("", "Female", false, false)}))
}

func TestDemographicsOrderIndependence(t *testing.T) {
	rows := []types.EnrollmentGradeRow{
		demoRow("A", "Female", true, false, "White"),
		demoRow("B", "Male", false, true, "Thai"),
		demoRow("A", "Male", false, false, "White"),
		demoRow("F", "Female", true, true),
	}
	reversed := make([]types.EnrollmentGradeRow, len(rows))
	for i, row := range rows {
		reversed[len(rows)-1-i] = row
	}
	assert.Equal(t, Demographics(rows), Demographics(reversed))
}

func courseRow(course, grade string) types.EnrollmentGradeRow {
	return types.EnrollmentGradeRow{SISCourseName: course, Grade: types.NullString(grade)}
}

func TestByCourseKeepsMostPopularCourses(t *testing.T) {
	var rows []types.EnrollmentGradeRow
	counts := map[string]int{"ANTHRO 1": 10, "BIO 1A": 8, "CHEM 1A": 6, "DATA 8": 4, "ECON 1": 2}
	for _, course := range []string{"ANTHRO 1", "BIO 1A", "CHEM 1A", "DATA 8", "ECON 1"} {
		for i := 0; i < counts[course]; i++ {
			rows = append(rows, courseRow(course, "B"))
		}
	}

	distribution, err := ByCourse(rows, 3)
	require.NoError(t, err)
	require.Len(t, distribution, 3)
	assert.Contains(t, distribution, "ANTHRO 1")
	assert.Contains(t, distribution, "BIO 1A")
	assert.Contains(t, distribution, "CHEM 1A")
	assert.Equal(t, []GradeCount{{Grade: "B", Count: 10, Percentage: 100}}, distribution["ANTHRO 1"])
}

func TestByCourseGradeOrderingAndPercentages(t *testing.T) {
	rows := []types.EnrollmentGradeRow{
		courseRow("DATA 8", "B"),
		courseRow("DATA 8", "A"),
		courseRow("DATA 8", "B"),
		courseRow("DATA 8", ""),
	}
	distribution, err := ByCourse(rows, 5)
	require.NoError(t, err)
	assert.Equal(t, []GradeCount{
		{Grade: "A", Count: 1, Percentage: 33.3},
		{Grade: "B", Count: 2, Percentage: 66.7},
	}, distribution["DATA 8"])
}

func TestByCourseRejectsBadLimit(t *testing.T) {
	_, err := ByCourse(nil, 0)
	assert.Error(t, err)
}

func TestByCourseEmptyInput(t *testing.T) {
	distribution, err := ByCourse(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, distribution)
}
