// Package dataloch reads the campus data warehouse ("data loch"). All queries
// are read-only; grades, demographics and section rosters in the loch are the
// institutional source of truth.
package dataloch

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/ets-berkeley-edu/ripley/internal/types"
)

// Client wraps the warehouse connection pool.
type Client struct {
	db *sqlx.DB
}

// New opens a connection pool against the warehouse DSN.
func New(dsn string) (*Client, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open data loch connection: %w", err)
	}
	return &Client{db: db}, nil
}

// NewFromDB wraps an existing pool.
func NewFromDB(db *sqlx.DB) *Client {
	return &Client{db: db}
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies warehouse connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

const gradesWithDemographicsSQL = `
	SELECT enr.grade, dem.gender, dem.ethnicities, dem.transfer, dem.minority,
	       dem.terms_in_attendance, dem.visa_type, sec.sis_course_name
	  FROM sis_data.enrollments enr
	  JOIN student.demographics dem ON dem.sid = enr.sid
	  JOIN sis_data.sections sec ON sec.section_id = enr.section_id
	       AND sec.term_id = enr.term_id
	 WHERE enr.term_id = ? AND enr.section_id IN (?)`

// GradesWithDemographics returns one row per student grade with demographic
// attributes, for the given term and sections.
func (c *Client) GradesWithDemographics(ctx context.Context, termID string, sectionIDs []string) ([]types.EnrollmentGradeRow, error) {
	return c.selectGradeRows(ctx, gradesWithDemographicsSQL, termID, sectionIDs)
}

const gradesWithEnrollmentsSQL = `
	SELECT enr.grade, sec.sis_course_name
	  FROM sis_data.enrollments site_enr
	  JOIN sis_data.enrollments enr ON enr.sid = site_enr.sid AND enr.term_id = site_enr.term_id
	  JOIN sis_data.sections sec ON sec.section_id = enr.section_id
	       AND sec.term_id = enr.term_id AND sec.is_primary IS TRUE
	 WHERE site_enr.term_id = ? AND site_enr.section_id IN (?)
	 ORDER BY sec.sis_course_name`

// GradesWithEnrollments returns grades across all courses sharing students
// with the given sections, ordered by course name.
func (c *Client) GradesWithEnrollments(ctx context.Context, termID string, sectionIDs []string) ([]types.EnrollmentGradeRow, error) {
	return c.selectGradeRows(ctx, gradesWithEnrollmentsSQL, termID, sectionIDs)
}

func (c *Client) selectGradeRows(ctx context.Context, query, termID string, sectionIDs []string) ([]types.EnrollmentGradeRow, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(query, termID, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build grade query: %w", err)
	}
	var rows []types.EnrollmentGradeRow
	if err := c.db.SelectContext(ctx, &rows, c.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("grade query failed: %w", err)
	}
	return rows, nil
}

const sectionsSQL = `
	SELECT sec.section_id, sec.term_id, sec.course_id, sec.sis_course_name,
	       sec.sis_course_title, sec.instruction_format, sec.section_num,
	       sec.is_primary, FALSE AS is_co_instructor,
	       sec.instructor_uid, sec.instructor_name,
	       sec.meeting_days, sec.meeting_start_time, sec.meeting_end_time,
	       sec.meeting_location, sec.enrollment_count, sec.enrollment_limit
	  FROM sis_data.sections sec
	 WHERE sec.term_id = ? AND sec.section_id IN (?)`

// Sections returns the SIS rows for the given term and section ids, one row
// per instructor and cross-listing.
func (c *Client) Sections(ctx context.Context, termID string, sectionIDs []string) ([]types.SectionRow, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(sectionsSQL, termID, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build sections query: %w", err)
	}
	var rows []types.SectionRow
	if err := c.db.SelectContext(ctx, &rows, c.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("sections query failed: %w", err)
	}
	return rows, nil
}

const instructingSectionsSQL = `
	SELECT sec.section_id, sec.term_id, sec.course_id, sec.sis_course_name,
	       sec.sis_course_title, sec.instruction_format, sec.section_num,
	       sec.is_primary, sec.is_co_instructor,
	       sec.instructor_uid, sec.instructor_name,
	       sec.meeting_days, sec.meeting_start_time, sec.meeting_end_time,
	       sec.meeting_location, sec.enrollment_count, sec.enrollment_limit
	  FROM sis_data.instructor_sections sec
	 WHERE sec.instructor_uid = ? AND sec.term_id IN (?)`

// InstructingSections returns every section the instructor teaches in the
// given terms, including co-instructor assignments.
func (c *Client) InstructingSections(ctx context.Context, instructorUID string, termIDs []string) ([]types.SectionRow, error) {
	if len(termIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(instructingSectionsSQL, instructorUID, termIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build instructing sections query: %w", err)
	}
	var rows []types.SectionRow
	if err := c.db.SelectContext(ctx, &rows, c.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("instructing sections query failed: %w", err)
	}
	return rows, nil
}

// TermIndex names the current and future terms in the campus calendar.
type TermIndex struct {
	CurrentTermName string `db:"current_term_name"`
	FutureTermName  string `db:"future_term_name"`
}

const currentTermIndexSQL = `
	SELECT current_term_name, future_term_name
	  FROM terms.current_term_index
	 LIMIT 1`

// CurrentTermIndex returns the calendar index row.
func (c *Client) CurrentTermIndex(ctx context.Context) (TermIndex, error) {
	var index TermIndex
	if err := c.db.GetContext(ctx, &index, c.db.Rebind(currentTermIndexSQL)); err != nil {
		return TermIndex{}, fmt.Errorf("current term index query failed: %w", err)
	}
	return index, nil
}

const profileAndGradesSQL = `
	SELECT stu.sid, stu.name, enr.grade, enr.grading_basis, stu.email_address
	  FROM sis_data.enrollments enr
	  JOIN student.profiles stu ON stu.sid = enr.sid
	 WHERE enr.term_id = ? AND enr.section_id IN (?)
	 ORDER BY stu.name`

// ProfileAndGrades returns name, grade and grading basis per enrollment, for
// the e-grades export.
func (c *Client) ProfileAndGrades(ctx context.Context, termID string, sectionIDs []string) ([]types.StudentGradeRow, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(profileAndGradesSQL, termID, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile query: %w", err)
	}
	var rows []types.StudentGradeRow
	if err := c.db.SelectContext(ctx, &rows, c.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("profile query failed: %w", err)
	}
	return rows, nil
}

const sectionEnrollmentsSQL = `
	SELECT stu.sid, stu.ldap_uid, stu.first_name, stu.last_name,
	       stu.email_address, enr.enroll_status, enr.section_id
	  FROM sis_data.enrollments enr
	  JOIN student.profiles stu ON stu.sid = enr.sid
	 WHERE enr.term_id = ? AND enr.section_id IN (?)
	 ORDER BY stu.last_name, stu.first_name`

// SectionEnrollments returns the roster rows for the given sections.
func (c *Client) SectionEnrollments(ctx context.Context, termID string, sectionIDs []string) ([]types.RosterStudent, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(sectionEnrollmentsSQL, termID, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build roster query: %w", err)
	}
	var rows []types.RosterStudent
	if err := c.db.SelectContext(ctx, &rows, c.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("roster query failed: %w", err)
	}
	return rows, nil
}
