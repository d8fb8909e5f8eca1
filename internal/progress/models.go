package progress

type ChapterStatus string

const (
	StatusNotStarted ChapterStatus = "not_started"
	StatusInProgress ChapterStatus = "in_progress"
	StatusCompleted  ChapterStatus = "completed"
)

// ChapterProgress is the one record per (learner, chapter). CompletedAt is
// set once and never cleared; completed is sticky.
type ChapterProgress struct {
	UserID         string        `json:"user_id"`
	ChapterID      string        `json:"chapter_id"`
	CourseID       string        `json:"course_id"`
	Status         ChapterStatus `json:"status"`
	StartedAt      *int64        `json:"started_at,omitempty"`
	CompletedAt    *int64        `json:"completed_at,omitempty"`
	LastAccessedAt int64         `json:"last_accessed_at"`
}

// CompletionResult is derived on every read from progress, attachment and
// attempt state. It is never persisted, so it cannot go stale independently
// of its sources.
type CompletionResult struct {
	ChaptersCompleted       bool `json:"chapters_completed"`
	FinalAssessmentRequired bool `json:"final_assessment_required"`
	FinalAssessmentPassed   bool `json:"final_assessment_passed"`
	Completed               bool `json:"completed"`
}

// Survey is one learner's course survey, created only after completion is
// proven and immutable afterwards.
type Survey struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	CourseID    string `json:"course_id"`
	Rating      int    `json:"rating"`
	Comments    string `json:"comments,omitempty"`
	SubmittedAt int64  `json:"submitted_at"`
}
