package domain

import "time"

// SubmissionForm is the student-completed (and possibly corrected) form
// data that feeds tokenization and matching.
type SubmissionForm struct {
	Name            string `json:"name"`
	APAARID         string `json:"apaar_id"`
	Email           string `json:"email,omitempty"`
	InstitutionCode string `json:"institution_code"`
	Organization    string `json:"organization"`
	InternshipTitle string `json:"internship_title"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Hours           int    `json:"hours"`
	Level           string `json:"level,omitempty"`
	Logs            string `json:"logs,omitempty"`
}

// ChangelogEntry records one mutation of a submission record.
type ChangelogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Action    string         `json:"action"`
	By        string         `json:"by"`
	Changes   map[string]any `json:"changes,omitempty"`
}

// SubmissionRecord aggregates everything the pipeline produced for one
// internship submission.
type SubmissionRecord struct {
	ID          string             `json:"internship_id"`
	UploadID    string             `json:"upload_id,omitempty"`
	Form        SubmissionForm     `json:"form_data"`
	Confidences map[string]float64 `json:"field_confidences,omitempty"`
	Tokens      []string           `json:"ceescm_tokens"`
	Matches     []MatchResult      `json:"matches"`
	Composite   float64            `json:"composite_score"`
	Decision    Decision           `json:"decision"`
	Credits     int                `json:"credits"`
	Eligible    bool               `json:"eligible"`
	NeedsReview bool               `json:"needs_review"`
	AutoPushed  bool               `json:"auto_pushed"`
	ABCToken    string             `json:"abc_token,omitempty"`
	ABCStatus   string             `json:"abc_status,omitempty"`
	Changelog   []ChangelogEntry   `json:"changelog"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TopMatchCourse returns the best-ranked course id, or "Unknown" when the
// submission matched nothing.
func (r *SubmissionRecord) TopMatchCourse() string {
	if len(r.Matches) == 0 {
		return "Unknown"
	}
	return r.Matches[0].CourseID
}

// ABCApproval is the record the companion ABC portal exposes to students.
type ABCApproval struct {
	InternshipID    string    `json:"internship_id"`
	ABCToken        string    `json:"abc_token"`
	APAARID         string    `json:"apaar_id"`
	StudentName     string    `json:"student_name"`
	Organization    string    `json:"organization"`
	InternshipTitle string    `json:"internship_title"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	Hours           int       `json:"hours"`
	CreditsAwarded  int       `json:"credits_awarded"`
	MatchedCourse   string    `json:"matched_course"`
	Composite       float64   `json:"composite_score"`
	Status          string    `json:"status"`
	ApprovedBy      string    `json:"approved_by"`
	ApprovedAt      time.Time `json:"approved_at"`
	Notes           string    `json:"notes,omitempty"`
}

// ABCStudent is an auto-provisioned student account on the ABC portal.
type ABCStudent struct {
	APAARID      string    `json:"apaar_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
