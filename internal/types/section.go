package types

// SectionRow is one instructor-of-record row for a section, as returned by the
// data loch. A section with several instructors or cross-listings yields
// several rows sharing a section id.
type SectionRow struct {
	SectionID         string  `db:"section_id" json:"sectionId"`
	TermID            string  `db:"term_id" json:"termId"`
	CourseID          string  `db:"course_id" json:"courseId"`
	CourseName        string  `db:"sis_course_name" json:"courseName"`
	CourseTitle       string  `db:"sis_course_title" json:"courseTitle"`
	InstructionFormat string  `db:"instruction_format" json:"instructionFormat"`
	SectionNumber     string  `db:"section_num" json:"sectionNumber"`
	IsPrimary         bool    `db:"is_primary" json:"isPrimary"`
	IsCoInstructor    bool    `db:"is_co_instructor" json:"isCoInstructor"`
	InstructorUID     string  `db:"instructor_uid" json:"instructorUid"`
	InstructorName    string  `db:"instructor_name" json:"instructorName"`
	MeetingDays       *string `db:"meeting_days" json:"meetingDays"`
	MeetingStartTime  *string `db:"meeting_start_time" json:"meetingStartTime"`
	MeetingEndTime    *string `db:"meeting_end_time" json:"meetingEndTime"`
	MeetingLocation   *string `db:"meeting_location" json:"meetingLocation"`
	EnrollCount       int     `db:"enrollment_count" json:"enrollCount"`
	EnrollLimit       int     `db:"enrollment_limit" json:"enrollLimit"`
}

// RosterStudent is one enrolled student in a course site roster.
type RosterStudent struct {
	SID          string  `db:"sid" json:"studentId"`
	UID          string  `db:"ldap_uid" json:"uid"`
	FirstName    string  `db:"first_name" json:"firstName"`
	LastName     string  `db:"last_name" json:"lastName"`
	Email        *string `db:"email_address" json:"email"`
	EnrollStatus string  `db:"enroll_status" json:"enrollStatus"`
	SectionID    string  `db:"section_id" json:"sectionId"`
}
