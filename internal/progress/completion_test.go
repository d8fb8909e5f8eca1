package progress

import (
	"context"
	"testing"

	"github.com/courseforge/courseforge-lms/internal/apperr"
	"github.com/courseforge/courseforge-lms/internal/attach"
	"github.com/courseforge/courseforge-lms/internal/content"
)

func requiredCourseMapping(courseID string, assessmentID int64) *attach.Mapping {
	pass := 80.0
	max := 2
	return &attach.Mapping{
		ID:           "m-" + courseID,
		Scope:        attach.CourseScope(courseID),
		AssessmentID: assessmentID,
		IsRequired:   true,
		PassScore:    &pass,
		MaxAttempts:  &max,
		Status:       attach.StatusActive,
	}
}

func completeAllChapters(t *testing.T, fx *trackerFixture, userID string) {
	t.Helper()
	for _, id := range []string{"ch1", "ch2"} {
		if _, err := fx.tracker.MarkComplete(context.Background(), userID, id); err != nil {
			t.Fatalf("complete %s: %v", id, err)
		}
	}
}

func newAggregatorFixture() (*Aggregator, *trackerFixture) {
	fx := newTrackerFixture()
	agg := NewAggregator(fx.content, fx.store, fx.registry, fx.passes)
	return agg, fx
}

func TestCompletionUnknownCourse(t *testing.T) {
	agg, _ := newAggregatorFixture()
	if _, err := agg.ComputeCompletion(context.Background(), "u1", "nope"); !apperr.Is(err, apperr.ErrScopeNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCompletionEmptyCourse(t *testing.T) {
	agg, fx := newAggregatorFixture()
	fx.content.courses["c2"] = content.Course{ID: "c2", Title: "Empty", Status: "active"}

	res, err := agg.ComputeCompletion(context.Background(), "u1", "c2")
	if err != nil {
		t.Fatal(err)
	}
	if res.Completed || res.ChaptersCompleted {
		t.Errorf("empty course reported complete: %+v", res)
	}
}

func TestCompletionRequiresEveryChapter(t *testing.T) {
	ctx := context.Background()
	agg, fx := newAggregatorFixture()

	if _, err := fx.tracker.MarkComplete(ctx, "u1", "ch1"); err != nil {
		t.Fatal(err)
	}
	res, err := agg.ComputeCompletion(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if res.ChaptersCompleted || res.Completed {
		t.Errorf("one of two chapters should not complete the course: %+v", res)
	}

	if _, err := fx.tracker.MarkComplete(ctx, "u1", "ch2"); err != nil {
		t.Fatal(err)
	}
	res, err = agg.ComputeCompletion(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.ChaptersCompleted || !res.Completed {
		t.Errorf("all chapters done, no final exam: %+v", res)
	}
	if res.FinalAssessmentRequired {
		t.Error("no course mapping, final must not be required")
	}
}

func TestCompletionWithFinalAssessment(t *testing.T) {
	ctx := context.Background()
	agg, fx := newAggregatorFixture()
	fx.registry.mappings["course|c1"] = requiredCourseMapping("c1", 9)
	completeAllChapters(t, fx, "u1")

	res, err := agg.ComputeCompletion(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.ChaptersCompleted || res.Completed || !res.FinalAssessmentRequired || res.FinalAssessmentPassed {
		t.Errorf("unpassed final should block completion: %+v", res)
	}

	fx.passes.passed["u1|9"] = true
	res, err = agg.ComputeCompletion(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Completed || !res.FinalAssessmentPassed {
		t.Errorf("passed final: %+v", res)
	}
}

func TestCompletionOptionalFinalDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	agg, fx := newAggregatorFixture()
	m := requiredCourseMapping("c1", 9)
	m.IsRequired = false
	fx.registry.mappings["course|c1"] = m
	completeAllChapters(t, fx, "u1")

	res, err := agg.ComputeCompletion(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Completed || res.FinalAssessmentRequired {
		t.Errorf("optional final blocked completion: %+v", res)
	}
}

func TestCompletionIsDerived(t *testing.T) {
	// Detaching the final after completion changes the verdict: nothing is
	// cached, completion is recomputed from current state every time.
	ctx := context.Background()
	agg, fx := newAggregatorFixture()
	fx.registry.mappings["course|c1"] = requiredCourseMapping("c1", 9)
	completeAllChapters(t, fx, "u1")

	res, err := agg.ComputeCompletion(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Completed {
		t.Fatalf("unpassed final: %+v", res)
	}

	delete(fx.registry.mappings, "course|c1")
	res, err = agg.ComputeCompletion(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Completed || res.FinalAssessmentRequired {
		t.Errorf("after detach: %+v", res)
	}
}
