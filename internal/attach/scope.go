package attach

import "github.com/courseforge/courseforge-lms/internal/apperr"

// ScopeKind names the content unit an assessment governs.
type ScopeKind string

const (
	ScopeChapter ScopeKind = "chapter"
	ScopeLesson  ScopeKind = "lesson"
	ScopeCourse  ScopeKind = "course"
)

// Scope is the tagged union of content scopes. Every scope carries its owning
// course id (and lesson id for chapters) so attempt filtering never has to
// join back through the content tables. The zero Scope means "unscoped", kept
// for legacy attempt records.
type Scope struct {
	Kind     ScopeKind `json:"kind"`
	ID       string    `json:"id"`
	CourseID string    `json:"course_id"`
	LessonID string    `json:"lesson_id,omitempty"`
}

func ChapterScope(id, lessonID, courseID string) Scope {
	return Scope{Kind: ScopeChapter, ID: id, LessonID: lessonID, CourseID: courseID}
}

func LessonScope(id, courseID string) Scope {
	return Scope{Kind: ScopeLesson, ID: id, CourseID: courseID}
}

func CourseScope(id string) Scope {
	return Scope{Kind: ScopeCourse, ID: id, CourseID: id}
}

func (s Scope) IsZero() bool { return s.Kind == "" && s.ID == "" }

// Validate checks structural well-formedness only; existence checks are the
// registry's job.
func (s Scope) Validate() error {
	if s.ID == "" {
		return apperr.ErrInvalidScope
	}
	switch s.Kind {
	case ScopeChapter:
		if s.LessonID == "" || s.CourseID == "" {
			return apperr.ErrInvalidScope
		}
	case ScopeLesson:
		if s.CourseID == "" || s.LessonID != "" {
			return apperr.ErrInvalidScope
		}
	case ScopeCourse:
		if s.CourseID != s.ID || s.LessonID != "" {
			return apperr.ErrInvalidScope
		}
	default:
		return apperr.ErrInvalidScope
	}
	return nil
}

// Equal is the exact-match rule used for attempt counting: a chapter attempt
// never counts toward a course limit, even within the same course.
func (s Scope) Equal(o Scope) bool {
	return s.Kind == o.Kind && s.ID == o.ID && s.CourseID == o.CourseID && s.LessonID == o.LessonID
}

// ParseKind validates a caller-supplied kind string.
func ParseKind(v string) (ScopeKind, error) {
	switch ScopeKind(v) {
	case ScopeChapter, ScopeLesson, ScopeCourse:
		return ScopeKind(v), nil
	default:
		return "", apperr.ErrInvalidScope
	}
}
