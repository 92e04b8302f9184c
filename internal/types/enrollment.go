package types

import (
	"fmt"

	"github.com/lib/pq"
)

// NullString scans SQL NULL as the empty string. Grade and grading columns in
// the warehouse stay null until SIS posts a value, and the aggregation layer
// treats empty and missing alike.
type NullString string

// Scan implements sql.Scanner.
func (s *NullString) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*s = ""
	case string:
		*s = NullString(v)
	case []byte:
		*s = NullString(v)
	default:
		return fmt.Errorf("cannot scan %T into string", value)
	}
	return nil
}

// EnrollmentGradeRow is one student's grade in one section, as returned by the
// data loch. Demographic fields are only populated by the demographics query;
// the enrollments query fills grade and course name only.
type EnrollmentGradeRow struct {
	Grade             NullString     `db:"grade" json:"grade"`
	Gender            NullString     `db:"gender" json:"gender"`
	Ethnicities       pq.StringArray `db:"ethnicities" json:"ethnicities"`
	Transfer          bool           `db:"transfer" json:"transfer"`
	Minority          bool           `db:"minority" json:"minority"`
	TermsInAttendance *int           `db:"terms_in_attendance" json:"termsInAttendance"`
	VisaType          *string        `db:"visa_type" json:"visaType"`
	SISCourseName     string         `db:"sis_course_name" json:"sisCourseName"`
}

// StudentGradeRow backs the e-grades CSV export.
type StudentGradeRow struct {
	SID          string     `db:"sid"`
	Name         string     `db:"name"`
	Grade        NullString `db:"grade"`
	GradingBasis NullString `db:"grading_basis"`
	Email        *string    `db:"email_address"`
}
