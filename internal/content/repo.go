package content

import "context"

// Repo is the read contract the policy subsystem needs from content CRUD.
// FindActive* return (nil, nil) when the entity is absent or archived.
type Repo interface {
	FindActiveCourse(ctx context.Context, id string) (*Course, error)
	FindActiveLesson(ctx context.Context, id string) (*Lesson, error)
	FindActiveChapter(ctx context.Context, id string) (*Chapter, error)

	// ActiveLessons and ActiveChapters feed the completion aggregator.
	ActiveLessons(ctx context.Context, courseID string) ([]Lesson, error)
	ActiveChapters(ctx context.Context, courseID string) ([]Chapter, error)
}
