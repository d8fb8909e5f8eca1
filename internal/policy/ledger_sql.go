package policy

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/courseforge/courseforge-lms/internal/attach"
)

type SQLLedger struct {
	db *sql.DB
}

func NewSQLLedger(db *sql.DB) *SQLLedger { return &SQLLedger{db: db} }

// scopeColumns flattens a Scope into the three denormalized id columns.
func scopeColumns(s attach.Scope) (chapterID, lessonID, courseID string) {
	switch s.Kind {
	case attach.ScopeChapter:
		return s.ID, s.LessonID, s.CourseID
	case attach.ScopeLesson:
		return "", s.ID, s.CourseID
	case attach.ScopeCourse:
		return "", "", s.CourseID
	default:
		return "", "", ""
	}
}

func scopeFromColumns(kind, chapterID, lessonID, courseID string) attach.Scope {
	switch attach.ScopeKind(kind) {
	case attach.ScopeChapter:
		return attach.ChapterScope(chapterID, lessonID, courseID)
	case attach.ScopeLesson:
		return attach.LessonScope(lessonID, courseID)
	case attach.ScopeCourse:
		return attach.CourseScope(courseID)
	default:
		return attach.Scope{}
	}
}

func (l *SQLLedger) Append(ctx context.Context, rec AttemptRecord) (AttemptRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	chapterID, lessonID, courseID := scopeColumns(rec.Scope)
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO attempts
			(id, user_id, assessment_id, scope_kind, course_id, lesson_id, chapter_id,
			 score, total_questions, percent_score, passed, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		rec.ID, rec.UserID, rec.AssessmentID, string(rec.Scope.Kind),
		courseID, lessonID, chapterID,
		rec.Score, rec.TotalQuestions, nullFloat(rec.PercentScore), nullBool(rec.Passed), rec.CompletedAt)
	if err != nil {
		return AttemptRecord{}, err
	}
	return rec, nil
}

func (l *SQLLedger) CountFor(ctx context.Context, userID string, assessmentID int64, scope attach.Scope) (int, error) {
	chapterID, lessonID, courseID := scopeColumns(scope)
	var n int
	err := l.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attempts
		 WHERE user_id=$1 AND assessment_id=$2
		   AND scope_kind=$3 AND course_id=$4 AND lesson_id=$5 AND chapter_id=$6`,
		userID, assessmentID, string(scope.Kind), courseID, lessonID, chapterID).Scan(&n)
	return n, err
}

func (l *SQLLedger) ListFor(ctx context.Context, userID string, assessmentID int64, scope attach.Scope) ([]AttemptRecord, error) {
	chapterID, lessonID, courseID := scopeColumns(scope)
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, user_id, assessment_id, scope_kind, course_id, lesson_id, chapter_id,
		       score, total_questions, percent_score, passed, completed_at
		  FROM attempts
		 WHERE user_id=$1 AND assessment_id=$2
		   AND scope_kind=$3 AND course_id=$4 AND lesson_id=$5 AND chapter_id=$6
		 ORDER BY completed_at, id`,
		userID, assessmentID, string(scope.Kind), courseID, lessonID, chapterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func (l *SQLLedger) List(ctx context.Context, opts ListOpts) ([]AttemptRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, user_id, assessment_id, scope_kind, course_id, lesson_id, chapter_id,
		       score, total_questions, percent_score, passed, completed_at
		  FROM attempts
		 WHERE ($1='' OR user_id=$1)
		   AND ($2=0 OR assessment_id=$2)
		 ORDER BY completed_at DESC, id
		 LIMIT $3 OFFSET $4`,
		opts.UserID, opts.AssessmentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

func collectAttempts(rows *sql.Rows) ([]AttemptRecord, error) {
	out := []AttemptRecord{}
	for rows.Next() {
		var (
			rec                          AttemptRecord
			kind                         string
			courseID, lessonID, chapterID string
			pct                          sql.NullFloat64
			passed                       sql.NullBool
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.AssessmentID, &kind,
			&courseID, &lessonID, &chapterID,
			&rec.Score, &rec.TotalQuestions, &pct, &passed, &rec.CompletedAt); err != nil {
			return nil, err
		}
		rec.Scope = scopeFromColumns(kind, chapterID, lessonID, courseID)
		if pct.Valid {
			v := pct.Float64
			rec.PercentScore = &v
		}
		if passed.Valid {
			v := passed.Bool
			rec.Passed = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullBool(v *bool) any {
	if v == nil {
		return nil
	}
	return *v
}
