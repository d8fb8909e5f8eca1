package policy

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/courseforge/courseforge-lms/internal/attach"
)

type memLedger struct {
	mu      sync.RWMutex
	records []AttemptRecord
}

func NewInMemoryLedger() *memLedger { return &memLedger{} }

func (l *memLedger) Append(_ context.Context, rec AttemptRecord) (AttemptRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	l.records = append(l.records, rec)
	return rec, nil
}

func (l *memLedger) CountFor(_ context.Context, userID string, assessmentID int64, scope attach.Scope) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, r := range l.records {
		if r.UserID == userID && r.AssessmentID == assessmentID && r.Scope.Equal(scope) {
			n++
		}
	}
	return n, nil
}

func (l *memLedger) ListFor(_ context.Context, userID string, assessmentID int64, scope attach.Scope) ([]AttemptRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []AttemptRecord{}
	for _, r := range l.records {
		if r.UserID == userID && r.AssessmentID == assessmentID && r.Scope.Equal(scope) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *memLedger) List(_ context.Context, opts ListOpts) ([]AttemptRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []AttemptRecord{}
	for _, r := range l.records {
		if opts.UserID != "" && r.UserID != opts.UserID {
			continue
		}
		if opts.AssessmentID != 0 && r.AssessmentID != opts.AssessmentID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
