package content

import (
	"context"
	"database/sql"
	"errors"
)

type SQLRepo struct {
	db *sql.DB
}

func NewSQLRepo(db *sql.DB) *SQLRepo { return &SQLRepo{db: db} }

func (r *SQLRepo) FindActiveCourse(ctx context.Context, id string) (*Course, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, status FROM courses WHERE id=$1 AND status='active'`, id)
	var c Course
	if err := row.Scan(&c.ID, &c.Title, &c.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *SQLRepo) FindActiveLesson(ctx context.Context, id string) (*Lesson, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, status, position FROM lessons WHERE id=$1 AND status='active'`, id)
	var l Lesson
	if err := row.Scan(&l.ID, &l.CourseID, &l.Title, &l.Status, &l.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *SQLRepo) FindActiveChapter(ctx context.Context, id string) (*Chapter, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, lesson_id, course_id, title, status, position FROM chapters WHERE id=$1 AND status='active'`, id)
	var c Chapter
	if err := row.Scan(&c.ID, &c.LessonID, &c.CourseID, &c.Title, &c.Status, &c.Position); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *SQLRepo) ActiveLessons(ctx context.Context, courseID string) ([]Lesson, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, course_id, title, status, position FROM lessons
		  WHERE course_id=$1 AND status='active' ORDER BY position, id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Lesson{}
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Status, &l.Position); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLRepo) ActiveChapters(ctx context.Context, courseID string) ([]Chapter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, lesson_id, course_id, title, status, position FROM chapters
		  WHERE course_id=$1 AND status='active' ORDER BY position, id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Chapter{}
	for rows.Next() {
		var c Chapter
		if err := rows.Scan(&c.ID, &c.LessonID, &c.CourseID, &c.Title, &c.Status, &c.Position); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
