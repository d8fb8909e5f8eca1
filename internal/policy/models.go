package policy

import "github.com/courseforge/courseforge-lms/internal/attach"

// AttemptRecord is one learner's completed run of an assessment. Records are
// append-only: they are never edited, reordered or removed, which is what
// makes the attempt cap and historical pass/fail trustworthy.
//
// PercentScore and Passed are tri-state: nil means unknown, which happens
// when the recorded total question count is unusable. A zero Scope marks a
// legacy attempt submitted before scoped attachments existed.
type AttemptRecord struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	AssessmentID   int64        `json:"assessment_id"`
	Scope          attach.Scope `json:"scope"`
	Score          float64      `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	PercentScore   *float64     `json:"percent_score,omitempty"`
	Passed         *bool        `json:"passed,omitempty"`
	CompletedAt    int64        `json:"completed_at"`
}

// Decision is the outcome of a CanStart check. Reason carries the machine
// code ("not_attached", "attempts_exhausted") when Allowed is false.
type Decision struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	AttemptsUsed int    `json:"attempts_used"`
	MaxAttempts  *int   `json:"max_attempts,omitempty"`

	Mapping *attach.Mapping `json:"mapping,omitempty"`
}
