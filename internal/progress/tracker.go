package progress

import (
	"context"
	"time"

	"github.com/courseforge/courseforge-lms/internal/apperr"
	"github.com/courseforge/courseforge-lms/internal/attach"
	"github.com/courseforge/courseforge-lms/internal/content"
)

// MappingResolver is the registry slice the tracker needs: the active
// mapping for a chapter, if any.
type MappingResolver interface {
	ResolveActive(ctx context.Context, kind attach.ScopeKind, scopeID string) (*attach.Mapping, error)
}

// PassChecker answers whether the learner holds a passing attempt against a
// mapping. The policy engine implements it.
type PassChecker interface {
	HasPassingAttempt(ctx context.Context, userID string, mapping attach.Mapping) (bool, error)
}

// Tracker runs the chapter completion state machine:
// not_started → in_progress → completed, with completed sticky.
type Tracker struct {
	store    Store
	content  content.Repo
	registry MappingResolver
	attempts PassChecker
	now      func() time.Time
}

func NewTracker(store Store, contentRepo content.Repo, registry MappingResolver, attempts PassChecker) *Tracker {
	return &Tracker{store: store, content: contentRepo, registry: registry, attempts: attempts, now: time.Now}
}

// Get returns the current record, or a synthesized not_started one when the
// learner has never touched the chapter.
func (t *Tracker) Get(ctx context.Context, userID, chapterID string) (ChapterProgress, error) {
	ch, err := t.content.FindActiveChapter(ctx, chapterID)
	if err != nil {
		return ChapterProgress{}, err
	}
	if ch == nil {
		return ChapterProgress{}, apperr.ErrScopeNotFound
	}
	rec, err := t.store.Get(ctx, userID, chapterID)
	if err != nil {
		return ChapterProgress{}, err
	}
	if rec == nil {
		return ChapterProgress{
			UserID:    userID,
			ChapterID: chapterID,
			CourseID:  ch.CourseID,
			Status:    StatusNotStarted,
		}, nil
	}
	return *rec, nil
}

// Touch records a content view: not_started becomes in_progress and the
// access timestamp moves forward. A completed chapter never downgrades.
func (t *Tracker) Touch(ctx context.Context, userID, chapterID string) (ChapterProgress, error) {
	rec, err := t.Get(ctx, userID, chapterID)
	if err != nil {
		return ChapterProgress{}, err
	}
	now := t.now().Unix()
	rec.LastAccessedAt = now
	if rec.Status == StatusNotStarted {
		rec.Status = StatusInProgress
		rec.StartedAt = &now
	}
	if err := t.store.Upsert(ctx, rec); err != nil {
		return ChapterProgress{}, err
	}
	return rec, nil
}

// MarkComplete moves the chapter to completed, unless an active required
// chapter assessment has not been passed yet. Non-required mappings never
// block completion.
func (t *Tracker) MarkComplete(ctx context.Context, userID, chapterID string) (ChapterProgress, error) {
	rec, err := t.Get(ctx, userID, chapterID)
	if err != nil {
		return ChapterProgress{}, err
	}
	if rec.Status == StatusCompleted {
		return rec, nil
	}

	mapping, err := t.registry.ResolveActive(ctx, attach.ScopeChapter, chapterID)
	if err != nil {
		return ChapterProgress{}, err
	}
	if mapping != nil && mapping.IsRequired {
		passed, err := t.attempts.HasPassingAttempt(ctx, userID, *mapping)
		if err != nil {
			return ChapterProgress{}, err
		}
		if !passed {
			return ChapterProgress{}, apperr.ErrChecklistRequired
		}
	}

	now := t.now().Unix()
	rec.Status = StatusCompleted
	rec.LastAccessedAt = now
	if rec.StartedAt == nil {
		rec.StartedAt = &now
	}
	rec.CompletedAt = &now
	if err := t.store.Upsert(ctx, rec); err != nil {
		return ChapterProgress{}, err
	}
	return rec, nil
}

// Set dispatches an explicit status request. Downgrades are rejected: there
// is no path back to not_started through this engine, and completed never
// reverts to in_progress.
func (t *Tracker) Set(ctx context.Context, userID, chapterID string, status ChapterStatus) (ChapterProgress, error) {
	switch status {
	case StatusInProgress:
		// a view on a completed chapter refreshes the access time only
		return t.Touch(ctx, userID, chapterID)
	case StatusCompleted:
		return t.MarkComplete(ctx, userID, chapterID)
	default:
		return ChapterProgress{}, apperr.ErrInvalidTransition
	}
}
