package policy

import "math"

// PercentScore converts a raw score into a percentage clamped to [0,100].
// A non-positive or unusable total yields nil ("unknown").
func PercentScore(rawScore float64, totalQuestions int) *float64 {
	if totalQuestions <= 0 {
		return nil
	}
	pct := rawScore / float64(totalQuestions) * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return nil
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return &pct
}

// PassOutcome computes the tri-state pass flag. An unknown percent stays
// unknown; with no pass bar any completed attempt passes.
func PassOutcome(percent *float64, passScore *float64) *bool {
	if percent == nil {
		return nil
	}
	v := passScore == nil || *percent >= *passScore
	return &v
}

// RecordPasses answers "does this stored attempt clear the pass bar",
// recomputing from the stored score when the persisted flag is absent.
// Older rows were written before the flag existed; recomputing keeps their
// outcome consistent with current records.
func RecordPasses(rec AttemptRecord, passScore *float64) bool {
	if rec.Passed != nil {
		return *rec.Passed
	}
	pct := rec.PercentScore
	if pct == nil {
		pct = PercentScore(rec.Score, rec.TotalQuestions)
	}
	out := PassOutcome(pct, passScore)
	return out != nil && *out
}
