package types

// CanvasSite is a Canvas course site, decoded from the Canvas REST API.
type CanvasSite struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	CourseCode  string      `json:"course_code"`
	SISCourseID *string     `json:"sis_course_id"`
	Term        *CanvasTerm `json:"term"`
	URL         string      `json:"html_url"`
}

// CanvasSection is a section attached to a Canvas course site. SISSectionID is
// nil for sections created by hand in Canvas.
type CanvasSection struct {
	ID           int     `json:"id"`
	CourseID     int     `json:"course_id"`
	Name         string  `json:"name"`
	SISSectionID *string `json:"sis_section_id"`
}

// CanvasTerm is an enrollment term known to the Canvas account.
type CanvasTerm struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	SISTermID *string `json:"sis_term_id"`
}

// CanvasUser is a user enrolled in a Canvas course site.
type CanvasUser struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	SortableName string           `json:"sortable_name"`
	LoginID      *string          `json:"login_id"`
	Email        *string          `json:"email"`
	Enrollments  []UserEnrollment `json:"enrollments"`
}

// UserEnrollment is one enrollment record attached to a Canvas user.
type UserEnrollment struct {
	Type  string `json:"type"`
	Role  string `json:"role"`
	State string `json:"enrollment_state"`
}

// CourseSettings is the subset of Canvas course settings the app reads.
type CourseSettings struct {
	GradingStandardEnabled bool `json:"grading_standard_enabled"`
}

// SISImport tracks a CSV import submitted to Canvas.
type SISImport struct {
	ID                 int        `json:"id"`
	WorkflowState      string     `json:"workflow_state"`
	Progress           int        `json:"progress"`
	ProcessingWarnings [][]string `json:"processing_warnings"`
}

// CanvasReport tracks an account-level provisioning report.
type CanvasReport struct {
	ID         int    `json:"id"`
	Status     string `json:"status"`
	Attachment *struct {
		ID  int    `json:"id"`
		URL string `json:"url"`
	} `json:"attachment"`
}
