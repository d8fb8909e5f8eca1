package attach

import "github.com/courseforge/courseforge-lms/internal/apperr"

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Mapping says "assessment X governs scope S" plus the policy knobs used to
// gate attempts. Mappings are archived on detach, never deleted, so attempts
// recorded against an old mapping keep their context.
type Mapping struct {
	ID           string   `json:"id"`
	Scope        Scope    `json:"scope"`
	AssessmentID int64    `json:"assessment_id"`
	IsRequired   bool     `json:"is_required"`
	PassScore    *float64 `json:"pass_score,omitempty"`   // absent: any attempt passes
	MaxAttempts  *int     `json:"max_attempts,omitempty"` // absent: unlimited
	Status       Status   `json:"status"`
	CreatedAt    int64    `json:"created_at"`
	ArchivedAt   *int64   `json:"archived_at,omitempty"`
}

// PolicyOpts are the caller-supplied policy fields of an attach request.
// Omitted fields fall back to scope-kind defaults.
type PolicyOpts struct {
	IsRequired  *bool    `json:"is_required,omitempty"`
	PassScore   *float64 `json:"pass_score,omitempty"`
	MaxAttempts *int     `json:"max_attempts,omitempty"`
}

// resolvePolicy applies scope-kind defaults and range-checks the result.
// Chapters default to a 100% pass bar, course finals to 80% with two
// attempts; lessons get no defaults.
func resolvePolicy(kind ScopeKind, opts PolicyOpts) (required bool, passScore *float64, maxAttempts *int, err error) {
	required = true
	if opts.IsRequired != nil {
		required = *opts.IsRequired
	}

	passScore = opts.PassScore
	maxAttempts = opts.MaxAttempts
	if passScore == nil {
		switch kind {
		case ScopeChapter:
			v := 100.0
			passScore = &v
		case ScopeCourse:
			v := 80.0
			passScore = &v
		}
	}
	if maxAttempts == nil && kind == ScopeCourse {
		v := 2
		maxAttempts = &v
	}

	if passScore != nil && (*passScore < 0 || *passScore > 100) {
		return false, nil, nil, apperr.ErrInvalidPolicyValue
	}
	if maxAttempts != nil && *maxAttempts <= 0 {
		return false, nil, nil, apperr.ErrInvalidPolicyValue
	}
	return required, passScore, maxAttempts, nil
}
