package attach

import (
	"context"
	"testing"
	"time"

	"github.com/courseforge/courseforge-lms/internal/apperr"
)

func seededRegistry() *memRegistry {
	r := NewInMemoryRegistry()
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	r.SeedScope(ChapterScope("ch1", "l1", "c1"))
	r.SeedScope(ChapterScope("ch2", "l1", "c1"))
	r.SeedScope(LessonScope("l1", "c1"))
	r.SeedScope(CourseScope("c1"))
	r.SeedAssessment(1)
	r.SeedAssessment(2)
	return r
}

func TestResolvePolicyDefaults(t *testing.T) {
	cases := []struct {
		kind     ScopeKind
		wantPass *float64
		wantMax  *int
	}{
		{ScopeChapter, f64(100), nil},
		{ScopeCourse, f64(80), intp(2)},
		{ScopeLesson, nil, nil},
	}
	for _, tc := range cases {
		required, pass, max, err := resolvePolicy(tc.kind, PolicyOpts{})
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.kind, err)
		}
		if !required {
			t.Errorf("%s: required should default to true", tc.kind)
		}
		if !eqF64(pass, tc.wantPass) {
			t.Errorf("%s: pass_score = %v, want %v", tc.kind, deref(pass), deref(tc.wantPass))
		}
		if !eqInt(max, tc.wantMax) {
			t.Errorf("%s: max_attempts = %v, want %v", tc.kind, max, tc.wantMax)
		}
	}
}

func TestResolvePolicyExplicitOverridesDefaults(t *testing.T) {
	no := false
	required, pass, max, err := resolvePolicy(ScopeCourse, PolicyOpts{
		IsRequired: &no, PassScore: f64(55), MaxAttempts: intp(9),
	})
	if err != nil {
		t.Fatal(err)
	}
	if required {
		t.Error("explicit is_required=false ignored")
	}
	if *pass != 55 || *max != 9 {
		t.Errorf("got pass=%v max=%v, want 55/9", *pass, *max)
	}
}

func TestResolvePolicyRejectsOutOfRange(t *testing.T) {
	for _, opts := range []PolicyOpts{
		{PassScore: f64(-1)},
		{PassScore: f64(100.5)},
		{MaxAttempts: intp(0)},
		{MaxAttempts: intp(-2)},
	} {
		if _, _, _, err := resolvePolicy(ScopeLesson, opts); !apperr.Is(err, apperr.ErrInvalidPolicyValue) {
			t.Errorf("opts %+v: err = %v, want invalid_policy_value", opts, err)
		}
	}
}

func TestAttachReplacesActiveMapping(t *testing.T) {
	ctx := context.Background()
	r := seededRegistry()

	first, err := r.Attach(ctx, ScopeChapter, "ch1", 1, PolicyOpts{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Attach(ctx, ScopeChapter, "ch1", 2, PolicyOpts{PassScore: f64(70)})
	if err != nil {
		t.Fatal(err)
	}
	if second.AssessmentID != 2 || *second.PassScore != 70 {
		t.Errorf("replacement not applied: %+v", second)
	}
	if first.ID != second.ID {
		t.Errorf("re-attach should replace in place, got new mapping %s != %s", second.ID, first.ID)
	}

	active, err := r.ResolveActive(ctx, ScopeChapter, "ch1")
	if err != nil {
		t.Fatal(err)
	}
	if active == nil || active.AssessmentID != 2 {
		t.Fatalf("active mapping = %+v, want assessment 2", active)
	}
}

func TestAttachUnknownTargets(t *testing.T) {
	ctx := context.Background()
	r := seededRegistry()

	if _, err := r.Attach(ctx, ScopeChapter, "nope", 1, PolicyOpts{}); !apperr.Is(err, apperr.ErrScopeNotFound) {
		t.Errorf("missing chapter: err = %v", err)
	}
	if _, err := r.Attach(ctx, ScopeChapter, "", 1, PolicyOpts{}); !apperr.Is(err, apperr.ErrInvalidScope) {
		t.Errorf("empty scope id: err = %v", err)
	}
	if _, err := r.Attach(ctx, ScopeChapter, "ch1", 404, PolicyOpts{}); !apperr.Is(err, apperr.ErrAssessmentNotFound) {
		t.Errorf("missing assessment: err = %v", err)
	}
}

func TestDetachArchivesAndSecondDetachFails(t *testing.T) {
	ctx := context.Background()
	r := seededRegistry()
	if _, err := r.Attach(ctx, ScopeLesson, "l1", 1, PolicyOpts{}); err != nil {
		t.Fatal(err)
	}

	m, err := r.Detach(ctx, ScopeLesson, "l1")
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != StatusArchived || m.ArchivedAt == nil {
		t.Errorf("detach did not archive: %+v", m)
	}

	if _, err := r.Detach(ctx, ScopeLesson, "l1"); !apperr.Is(err, apperr.ErrMappingNotFound) {
		t.Errorf("second detach: err = %v, want mapping_not_found", err)
	}

	active, err := r.ResolveActive(ctx, ScopeLesson, "l1")
	if err != nil {
		t.Fatal(err)
	}
	if active != nil {
		t.Errorf("scope still resolves after detach: %+v", active)
	}
}

func TestUnarchiveConflictsWithNewActive(t *testing.T) {
	ctx := context.Background()
	r := seededRegistry()

	old, err := r.Attach(ctx, ScopeCourse, "c1", 1, PolicyOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Detach(ctx, ScopeCourse, "c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Attach(ctx, ScopeCourse, "c1", 2, PolicyOpts{}); err != nil {
		t.Fatal(err)
	}

	if _, err := r.Unarchive(ctx, old.ID); !apperr.Is(err, apperr.ErrScopeAlreadyActive) {
		t.Errorf("unarchive onto occupied scope: err = %v, want scope_already_active", err)
	}
}

func TestUnarchiveRestores(t *testing.T) {
	ctx := context.Background()
	r := seededRegistry()

	m, err := r.Attach(ctx, ScopeChapter, "ch2", 1, PolicyOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Detach(ctx, ScopeChapter, "ch2"); err != nil {
		t.Fatal(err)
	}
	got, err := r.Unarchive(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusActive || got.ArchivedAt != nil {
		t.Errorf("unarchive left mapping archived: %+v", got)
	}
	// idempotent on an already-active mapping
	if _, err := r.Unarchive(ctx, m.ID); err != nil {
		t.Errorf("unarchive active mapping: %v", err)
	}
	if _, err := r.Unarchive(ctx, "missing"); !apperr.Is(err, apperr.ErrMappingNotFound) {
		t.Errorf("unknown mapping id: err = %v", err)
	}
}

func TestScopeValidate(t *testing.T) {
	valid := []Scope{
		ChapterScope("ch1", "l1", "c1"),
		LessonScope("l1", "c1"),
		CourseScope("c1"),
	}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Errorf("%+v should validate, got %v", s, err)
		}
	}
	invalid := []Scope{
		{},
		{Kind: ScopeChapter, ID: "ch1"},
		{Kind: ScopeLesson, ID: "l1"},
		{Kind: ScopeLesson, ID: "l1", CourseID: "c1", LessonID: "l1"},
		{Kind: ScopeCourse, ID: "c1", CourseID: "other"},
		{Kind: "module", ID: "x", CourseID: "c1"},
	}
	for _, s := range invalid {
		if err := s.Validate(); !apperr.Is(err, apperr.ErrInvalidScope) {
			t.Errorf("%+v: err = %v, want invalid_scope", s, err)
		}
	}
}

func TestScopeEqualIsExact(t *testing.T) {
	ch := ChapterScope("ch1", "l1", "c1")
	if !ch.Equal(ChapterScope("ch1", "l1", "c1")) {
		t.Error("identical scopes should be equal")
	}
	if ch.Equal(CourseScope("c1")) {
		t.Error("chapter scope must not match its course scope")
	}
	if ch.Equal(ChapterScope("ch1", "l2", "c1")) {
		t.Error("different lesson id must not match")
	}
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func eqF64(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
