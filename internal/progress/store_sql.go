package progress

import (
	"context"
	"database/sql"
	"errors"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Get(ctx context.Context, userID, chapterID string) (*ChapterProgress, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, chapter_id, course_id, status, started_at, completed_at, last_accessed_at
		  FROM chapter_progress WHERE user_id=$1 AND chapter_id=$2`, userID, chapterID)
	rec, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *SQLStore) Upsert(ctx context.Context, rec ChapterProgress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chapter_progress
			(user_id, chapter_id, course_id, status, started_at, completed_at, last_accessed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (user_id, chapter_id) DO UPDATE SET
			status=EXCLUDED.status,
			started_at=COALESCE(chapter_progress.started_at, EXCLUDED.started_at),
			completed_at=COALESCE(chapter_progress.completed_at, EXCLUDED.completed_at),
			last_accessed_at=EXCLUDED.last_accessed_at`,
		rec.UserID, rec.ChapterID, rec.CourseID, string(rec.Status),
		nullInt64(rec.StartedAt), nullInt64(rec.CompletedAt), rec.LastAccessedAt)
	return err
}

func (s *SQLStore) ListForCourse(ctx context.Context, userID, courseID string) ([]ChapterProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, chapter_id, course_id, status, started_at, completed_at, last_accessed_at
		  FROM chapter_progress WHERE user_id=$1 AND course_id=$2`, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ChapterProgress{}
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (ChapterProgress, error) {
	var (
		rec                ChapterProgress
		status             string
		started, completed sql.NullInt64
	)
	if err := row.Scan(&rec.UserID, &rec.ChapterID, &rec.CourseID, &status,
		&started, &completed, &rec.LastAccessedAt); err != nil {
		return ChapterProgress{}, err
	}
	rec.Status = ChapterStatus(status)
	if started.Valid {
		v := started.Int64
		rec.StartedAt = &v
	}
	if completed.Valid {
		v := completed.Int64
		rec.CompletedAt = &v
	}
	return rec, nil
}

type SQLSurveyStore struct {
	db *sql.DB
}

func NewSQLSurveyStore(db *sql.DB) *SQLSurveyStore { return &SQLSurveyStore{db: db} }

func (s *SQLSurveyStore) Find(ctx context.Context, userID, courseID string) (*Survey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, course_id, rating, comments, submitted_at
		  FROM course_surveys WHERE user_id=$1 AND course_id=$2`, userID, courseID)
	var sv Survey
	if err := row.Scan(&sv.ID, &sv.UserID, &sv.CourseID, &sv.Rating, &sv.Comments, &sv.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &sv, nil
}

func (s *SQLSurveyStore) Insert(ctx context.Context, sv Survey) error {
	// DO NOTHING keeps the first submission authoritative when two land at
	// once; the caller re-reads after a no-op insert.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO course_surveys (id, user_id, course_id, rating, comments, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id, course_id) DO NOTHING`,
		sv.ID, sv.UserID, sv.CourseID, sv.Rating, sv.Comments, sv.SubmittedAt)
	return err
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
