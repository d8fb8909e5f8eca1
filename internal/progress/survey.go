package progress

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/courseforge-lms/internal/apperr"
)

// SurveyService gates survey submission on proven course completion and
// makes resubmission idempotent: the first record is authoritative and is
// returned unchanged on every later submit.
type SurveyService struct {
	store      SurveyStore
	aggregator *Aggregator
	now        func() time.Time
}

func NewSurveyService(store SurveyStore, aggregator *Aggregator) *SurveyService {
	return &SurveyService{store: store, aggregator: aggregator, now: time.Now}
}

func (s *SurveyService) Find(ctx context.Context, userID, courseID string) (*Survey, error) {
	return s.store.Find(ctx, userID, courseID)
}

// Submit returns the stored survey and whether this call created it.
func (s *SurveyService) Submit(ctx context.Context, userID, courseID string, rating int, comments string) (Survey, bool, error) {
	if rating < 1 || rating > 5 {
		return Survey{}, false, apperr.New(apperr.KindValidation, "invalid_rating", "rating must be between 1 and 5")
	}

	existing, err := s.store.Find(ctx, userID, courseID)
	if err != nil {
		return Survey{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	result, err := s.aggregator.ComputeCompletion(ctx, userID, courseID)
	if err != nil {
		return Survey{}, false, err
	}
	if !result.Completed {
		return Survey{}, false, apperr.ErrCourseIncomplete
	}

	sv := Survey{
		ID:          uuid.NewString(),
		UserID:      userID,
		CourseID:    courseID,
		Rating:      rating,
		Comments:    comments,
		SubmittedAt: s.now().Unix(),
	}
	if err := s.store.Insert(ctx, sv); err != nil {
		return Survey{}, false, err
	}
	// Re-read: under a concurrent double submit the unique key keeps the
	// first row, and that row is the one we report.
	stored, err := s.store.Find(ctx, userID, courseID)
	if err != nil {
		return Survey{}, false, err
	}
	if stored == nil {
		return sv, true, nil
	}
	return *stored, stored.ID == sv.ID, nil
}
