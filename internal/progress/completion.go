package progress

import (
	"context"

	"github.com/courseforge/courseforge-lms/internal/apperr"
	"github.com/courseforge/courseforge-lms/internal/attach"
	"github.com/courseforge/courseforge-lms/internal/content"
)

// Aggregator derives course completion from progress, attachment and attempt
// state. It holds no state of its own and caches nothing, so two calls with
// no intervening writes always agree.
type Aggregator struct {
	content  content.Repo
	store    Store
	registry MappingResolver
	attempts PassChecker
}

func NewAggregator(contentRepo content.Repo, store Store, registry MappingResolver, attempts PassChecker) *Aggregator {
	return &Aggregator{content: contentRepo, store: store, registry: registry, attempts: attempts}
}

func (a *Aggregator) ComputeCompletion(ctx context.Context, userID, courseID string) (CompletionResult, error) {
	course, err := a.content.FindActiveCourse(ctx, courseID)
	if err != nil {
		return CompletionResult{}, err
	}
	if course == nil {
		return CompletionResult{}, apperr.ErrScopeNotFound
	}

	lessons, err := a.content.ActiveLessons(ctx, courseID)
	if err != nil {
		return CompletionResult{}, err
	}
	chapters, err := a.content.ActiveChapters(ctx, courseID)
	if err != nil {
		return CompletionResult{}, err
	}

	var out CompletionResult

	// An empty course cannot be completed.
	if len(lessons) == 0 || len(chapters) == 0 {
		return out, nil
	}

	recs, err := a.store.ListForCourse(ctx, userID, courseID)
	if err != nil {
		return CompletionResult{}, err
	}
	completedByChapter := map[string]bool{}
	for _, rec := range recs {
		if rec.Status == StatusCompleted {
			completedByChapter[rec.ChapterID] = true
		}
	}
	out.ChaptersCompleted = true
	for _, ch := range chapters {
		if !completedByChapter[ch.ID] {
			// a chapter with no progress record counts as not completed
			out.ChaptersCompleted = false
			break
		}
	}

	mapping, err := a.registry.ResolveActive(ctx, attach.ScopeCourse, courseID)
	if err != nil {
		return CompletionResult{}, err
	}
	if mapping != nil && mapping.IsRequired {
		out.FinalAssessmentRequired = true
		out.FinalAssessmentPassed, err = a.attempts.HasPassingAttempt(ctx, userID, *mapping)
		if err != nil {
			return CompletionResult{}, err
		}
	}

	out.Completed = out.ChaptersCompleted && (!out.FinalAssessmentRequired || out.FinalAssessmentPassed)
	return out, nil
}
