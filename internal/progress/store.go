package progress

import "context"

// Store persists chapter progress records, unique per (learner, chapter).
type Store interface {
	Get(ctx context.Context, userID, chapterID string) (*ChapterProgress, error)
	Upsert(ctx context.Context, rec ChapterProgress) error
	ListForCourse(ctx context.Context, userID, courseID string) ([]ChapterProgress, error)
}

// SurveyStore persists course survey submissions, unique per
// (learner, course). There is no update: resubmission is idempotent.
type SurveyStore interface {
	Find(ctx context.Context, userID, courseID string) (*Survey, error)
	Insert(ctx context.Context, s Survey) error
}
