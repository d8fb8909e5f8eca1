package assess

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/courseforge/courseforge-lms/internal/apperr"
)

type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db, now: time.Now} }

func (s *SQLStore) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM assessments WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (s *SQLStore) Get(ctx context.Context, id int64) (Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, questions_json, COALESCE(created_by,''), based_on_assessment_id, created_at, updated_at
		  FROM assessments WHERE id=$1`, id)
	return scanAssessment(row)
}

func (s *SQLStore) Put(ctx context.Context, a Assessment) error {
	qj, err := json.Marshal(a.Questions)
	if err != nil {
		return err
	}
	now := s.now().Unix()
	if a.CreatedAt == 0 {
		a.CreatedAt = now
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, title, questions_json, created_by, based_on_assessment_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			title=EXCLUDED.title,
			questions_json=EXCLUDED.questions_json,
			updated_at=EXCLUDED.updated_at`,
		a.ID, a.Title, string(qj), nullStr(a.CreatedBy), nullInt64(a.BasedOnAssessmentID), a.CreatedAt, now)
	return err
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrAssessmentNotFound
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context) ([]Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, questions_json, COALESCE(created_by,''), based_on_assessment_id, created_at, updated_at
		  FROM assessments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Assessment{}
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) AllocateNextID(ctx context.Context) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM assessments WHERE id >= 0 ORDER BY id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var next int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		if id > next {
			break // gap found
		}
		next = id + 1
	}
	return next, rows.Err()
}

func (s *SQLStore) TitleExists(ctx context.Context, title string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM assessments WHERE LOWER(title)=LOWER($1))`, title).Scan(&ok)
	return ok, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (Assessment, error) {
	var (
		a       Assessment
		qjson   string
		basedOn sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.Title, &qjson, &a.CreatedBy, &basedOn, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, apperr.ErrAssessmentNotFound
		}
		return Assessment{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &a.Questions); err != nil {
		return Assessment{}, err
	}
	if basedOn.Valid {
		v := basedOn.Int64
		a.BasedOnAssessmentID = &v
	}
	return a, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
