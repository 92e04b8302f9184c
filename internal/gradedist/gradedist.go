// Package gradedist aggregates enrollment grade rows into the nested,
// percentage-annotated summaries behind the grade distribution feature. All
// functions are pure transformations over rows already fetched from the data
// loch; rows without a grade are excluded throughout.
package gradedist

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/ets-berkeley-edu/ripley/internal/berkeley"
	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// collapseEthnicities maps specific reporting labels onto their umbrella
// category. Labels not listed pass through unchanged.
var collapseEthnicities = map[string]string{
	"Chinese / Chinese-American":           "Asian / Asian American",
	"East Indian / Pakistani":              "Asian / Asian American",
	"Filipino / Filipino-American":         "Asian / Asian American",
	"Japanese / Japanese American":         "Asian / Asian American",
	"Korean / Korean-American":             "Asian / Asian American",
	"Mexican / Mexican-American / Chicano": "Hispanic / Latinx",
	"Other Asian":                          "Asian / Asian American",
	"Other Spanish-American / Latino":      "Hispanic / Latinx",
	"Puerto Rican":                         "Hispanic / Latinx",
	"Thai":                                 "Asian / Asian American",
	"Vietnamese":                           "Asian / Asian American",
}

const (
	dimEthnicities       = "ethnicities"
	dimGenders           = "genders"
	dimTermsInAttendance = "termsInAttendance"
	dimTransferStatus    = "transferStatus"
	dimMinorityStatus    = "underrepresentedMinorityStatus"
	dimVisaTypes         = "visaTypes"
)

// CountPercentage annotates a raw count with its share of the dimension total.
type CountPercentage struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GradeSummary is the demographic breakdown for a single grade value.
type GradeSummary struct {
	Grade                          string                     `json:"grade"`
	Total                          int                        `json:"total"`
	Percentage                     float64                    `json:"percentage"`
	Ethnicities                    map[string]CountPercentage `json:"ethnicities"`
	Genders                        map[string]CountPercentage `json:"genders"`
	TermsInAttendance              map[string]CountPercentage `json:"termsInAttendance"`
	TransferStatus                 map[string]CountPercentage `json:"transferStatus"`
	UnderrepresentedMinorityStatus map[string]CountPercentage `json:"underrepresentedMinorityStatus"`
	VisaTypes                      map[string]CountPercentage `json:"visaTypes"`
}

// GradeCount is one grade's tally within a companion course distribution.
type GradeCount struct {
	Grade      string  `json:"grade"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// tally accumulates per-dimension counts for one grade, or for the running
// totals across all grades. The boolean-keyed dimensions are seeded so every
// tally shares the same shape.
type tally struct {
	total int
	dims  map[string]map[string]int
}

func newTally() *tally {
	return &tally{
		dims: map[string]map[string]int{
			dimEthnicities:       {},
			dimGenders:           {},
			dimTermsInAttendance: {},
			dimTransferStatus:    {"true": 0, "false": 0},
			dimMinorityStatus:    {"true": 0, "false": 0},
			dimVisaTypes:         {},
		},
	}
}

func (t *tally) bump(dim, value string) {
	values := t.dims[dim]
	if _, ok := values[value]; !ok {
		values[value] = 0
	}
	values[value]++
}

// Demographics aggregates grade rows into one summary per grade value, ordered
// by the canonical grade ranking. Per-dimension percentages are computed
// against the global total for that dimension value; each grade's own
// percentage is computed against the count of all graded rows.
func Demographics(rows []types.EnrollmentGradeRow) []GradeSummary {
	distribution := map[string]*tally{}
	var gradeOrder []string
	totals := newTally()
	classSize := 0

	for _, row := range rows {
		grade := string(row.Grade)
		if grade == "" {
			continue
		}
		t, ok := distribution[grade]
		if !ok {
			t = newTally()
			distribution[grade] = t
			gradeOrder = append(gradeOrder, grade)
		}
		t.total++
		classSize++

		countBoth := func(dim, value string) {
			t.bump(dim, value)
			totals.bump(dim, value)
		}
		countBoth(dimTransferStatus, strconv.FormatBool(row.Transfer))
		countBoth(dimMinorityStatus, strconv.FormatBool(row.Minority))
		countBoth(dimGenders, stringValue(string(row.Gender)))
		countBoth(dimTermsInAttendance, intValue(row.TermsInAttendance))
		countBoth(dimVisaTypes, pointerValue(row.VisaType))

		collapsed := map[string]bool{}
		for _, ethnicity := range row.Ethnicities {
			if umbrella, ok := collapseEthnicities[ethnicity]; ok {
				ethnicity = umbrella
			}
			collapsed[ethnicity] = true
		}
		for ethnicity := range collapsed {
			countBoth(dimEthnicities, ethnicity)
		}
	}

	sort.SliceStable(gradeOrder, func(i, j int) bool {
		return berkeley.GradeRank(gradeOrder[i]) < berkeley.GradeRank(gradeOrder[j])
	})

	summaries := make([]GradeSummary, 0, len(gradeOrder))
	for _, grade := range gradeOrder {
		t := distribution[grade]
		summaries = append(summaries, GradeSummary{
			Grade:                          grade,
			Total:                          t.total,
			Percentage:                     percentage(t.total, classSize),
			Ethnicities:                    annotate(t.dims[dimEthnicities], totals.dims[dimEthnicities]),
			Genders:                        annotate(t.dims[dimGenders], totals.dims[dimGenders]),
			TermsInAttendance:              annotate(t.dims[dimTermsInAttendance], totals.dims[dimTermsInAttendance]),
			TransferStatus:                 annotate(t.dims[dimTransferStatus], totals.dims[dimTransferStatus]),
			UnderrepresentedMinorityStatus: annotate(t.dims[dimMinorityStatus], totals.dims[dimMinorityStatus]),
			VisaTypes:                      annotate(t.dims[dimVisaTypes], totals.dims[dimVisaTypes]),
		})
	}
	return summaries
}

// ByCourse groups graded rows by companion course name, keeps the maxCourses
// most popular courses, and tallies a grade distribution for each. Ties in
// popularity break by first encounter in the input. maxCourses comes from
// configuration and must be positive.
func ByCourse(rows []types.EnrollmentGradeRow, maxCourses int) (map[string][]GradeCount, error) {
	if maxCourses < 1 {
		return nil, fmt.Errorf("maxCourses must be positive, got %d", maxCourses)
	}

	grouped := map[string][]types.EnrollmentGradeRow{}
	var courseOrder []string
	for _, row := range rows {
		if row.Grade == "" {
			continue
		}
		if _, ok := grouped[row.SISCourseName]; !ok {
			courseOrder = append(courseOrder, row.SISCourseName)
		}
		grouped[row.SISCourseName] = append(grouped[row.SISCourseName], row)
	}

	sort.SliceStable(courseOrder, func(i, j int) bool {
		return len(grouped[courseOrder[i]]) > len(grouped[courseOrder[j]])
	})
	if len(courseOrder) > maxCourses {
		courseOrder = courseOrder[:maxCourses]
	}

	distribution := make(map[string][]GradeCount, len(courseOrder))
	for _, courseName := range courseOrder {
		courseRows := grouped[courseName]
		counts := map[string]int{}
		var gradeOrder []string
		for _, row := range courseRows {
			grade := string(row.Grade)
			if _, ok := counts[grade]; !ok {
				gradeOrder = append(gradeOrder, grade)
			}
			counts[grade]++
		}
		sort.SliceStable(gradeOrder, func(i, j int) bool {
			return berkeley.GradeRank(gradeOrder[i]) < berkeley.GradeRank(gradeOrder[j])
		})
		entries := make([]GradeCount, 0, len(gradeOrder))
		for _, grade := range gradeOrder {
			entries = append(entries, GradeCount{
				Grade:      grade,
				Count:      counts[grade],
				Percentage: percentage(counts[grade], len(courseRows)),
			})
		}
		distribution[courseName] = entries
	}
	return distribution, nil
}

func annotate(counts, totals map[string]int) map[string]CountPercentage {
	annotated := make(map[string]CountPercentage, len(counts))
	for value, count := range counts {
		annotated[value] = CountPercentage{
			Count:      count,
			Percentage: percentage(count, totals[value]),
		}
	}
	return annotated
}

// percentage returns 100*count/total rounded to one decimal, or 0 when the
// denominator is zero.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)*1000/float64(total)) / 10
}

func stringValue(value string) string {
	if value == "" {
		return "none"
	}
	return value
}

func intValue(value *int) string {
	if value == nil {
		return "none"
	}
	return strconv.Itoa(*value)
}

func pointerValue(value *string) string {
	if value == nil || *value == "" {
		return "none"
	}
	return *value
}
