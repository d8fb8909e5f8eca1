package policy

import (
	"context"
	"time"

	"github.com/courseforge/courseforge-lms/internal/apperr"
	"github.com/courseforge/courseforge-lms/internal/assess"
	"github.com/courseforge/courseforge-lms/internal/attach"
)

// MappingResolver is the slice of the registry the engine needs.
type MappingResolver interface {
	ResolveActive(ctx context.Context, kind attach.ScopeKind, scopeID string) (*attach.Mapping, error)
}

// AssessmentSource reads definitions for delivery to learners.
type AssessmentSource interface {
	Get(ctx context.Context, id int64) (assess.Assessment, error)
}

// Engine gates attempt starts and submissions against the registry and the
// ledger, and computes pass/fail for recorded attempts.
type Engine struct {
	registry MappingResolver
	ledger   Ledger
	source   AssessmentSource

	// allowLegacy keeps the unscoped submission path open for records that
	// predate the registry.
	allowLegacy bool

	now func() time.Time
}

func NewEngine(registry MappingResolver, ledger Ledger, source AssessmentSource, allowLegacy bool) *Engine {
	return &Engine{registry: registry, ledger: ledger, source: source, allowLegacy: allowLegacy, now: time.Now}
}

// CanStart resolves the active mapping for the scope and checks the attempt
// cap. It runs when a learner requests the assessment content, and again
// inside RecordAttempt: two tabs can both pass the first check, so the
// submission-time recheck is the one that holds.
func (e *Engine) CanStart(ctx context.Context, userID string, assessmentID int64, kind attach.ScopeKind, scopeID string) (Decision, error) {
	mapping, err := e.registry.ResolveActive(ctx, kind, scopeID)
	if err != nil {
		return Decision{}, err
	}
	if mapping == nil || mapping.AssessmentID != assessmentID {
		return Decision{Reason: apperr.ErrNotAttached.Code}, nil
	}

	used := 0
	if mapping.MaxAttempts != nil {
		used, err = e.ledger.CountFor(ctx, userID, assessmentID, mapping.Scope)
		if err != nil {
			return Decision{}, err
		}
		if used >= *mapping.MaxAttempts {
			return Decision{
				Reason:       apperr.ErrAttemptsExhausted.Code,
				AttemptsUsed: used,
				MaxAttempts:  mapping.MaxAttempts,
				Mapping:      mapping,
			}, nil
		}
	}
	return Decision{
		Allowed:      true,
		AttemptsUsed: used,
		MaxAttempts:  mapping.MaxAttempts,
		Mapping:      mapping,
	}, nil
}

// AssessmentForAttempt is the GET-side gate: it runs CanStart and, when
// allowed, returns the student-safe definition so a learner never burns an
// attempt opportunity on content they cannot submit.
func (e *Engine) AssessmentForAttempt(ctx context.Context, userID string, assessmentID int64, kind attach.ScopeKind, scopeID string) (Decision, assess.Assessment, error) {
	dec, err := e.CanStart(ctx, userID, assessmentID, kind, scopeID)
	if err != nil {
		return Decision{}, assess.Assessment{}, err
	}
	if !dec.Allowed {
		return dec, assess.Assessment{}, decisionError(dec)
	}
	a, err := e.source.Get(ctx, assessmentID)
	if err != nil {
		return Decision{}, assess.Assessment{}, err
	}
	return dec, a.StudentView(), nil
}

// RecordAttempt re-runs the gating check and appends the attempt. The
// recheck closes the concurrent-submission race at the cost of a possibly
// "wasted" attempt UI-side. A narrow window remains where two submissions
// both read one-remaining and both land, exceeding the cap by one; that is
// an accepted tradeoff for keeping the ledger append-only.
func (e *Engine) RecordAttempt(ctx context.Context, userID string, assessmentID int64, kind attach.ScopeKind, scopeID string, rawScore float64, totalQuestions int) (AttemptRecord, error) {
	// Legacy path: no scope supplied at all. The attempt is appended with an
	// unknown outcome and no gating.
	if kind == "" && scopeID == "" {
		if !e.allowLegacy {
			return AttemptRecord{}, apperr.ErrNotAttached
		}
		return e.ledger.Append(ctx, AttemptRecord{
			UserID:         userID,
			AssessmentID:   assessmentID,
			Score:          rawScore,
			TotalQuestions: totalQuestions,
			PercentScore:   PercentScore(rawScore, totalQuestions),
			CompletedAt:    e.now().Unix(),
		})
	}

	dec, err := e.CanStart(ctx, userID, assessmentID, kind, scopeID)
	if err != nil {
		return AttemptRecord{}, err
	}
	if !dec.Allowed {
		return AttemptRecord{}, decisionError(dec)
	}

	pct := PercentScore(rawScore, totalQuestions)
	rec := AttemptRecord{
		UserID:         userID,
		AssessmentID:   assessmentID,
		Scope:          dec.Mapping.Scope,
		Score:          rawScore,
		TotalQuestions: totalQuestions,
		PercentScore:   pct,
		Passed:         PassOutcome(pct, dec.Mapping.PassScore),
		CompletedAt:    e.now().Unix(),
	}
	return e.ledger.Append(ctx, rec)
}

// HasPassingAttempt reports whether the learner has any attempt clearing the
// mapping's pass bar. Records without a stored pass flag are recomputed from
// their percent score.
func (e *Engine) HasPassingAttempt(ctx context.Context, userID string, mapping attach.Mapping) (bool, error) {
	recs, err := e.ledger.ListFor(ctx, userID, mapping.AssessmentID, mapping.Scope)
	if err != nil {
		return false, err
	}
	for _, r := range recs {
		if RecordPasses(r, mapping.PassScore) {
			return true, nil
		}
	}
	return false, nil
}

func decisionError(dec Decision) error {
	switch dec.Reason {
	case apperr.ErrAttemptsExhausted.Code:
		return apperr.ErrAttemptsExhausted
	default:
		return apperr.ErrNotAttached
	}
}
