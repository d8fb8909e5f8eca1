package attach

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/courseforge/courseforge-lms/internal/apperr"
	"github.com/courseforge/courseforge-lms/internal/content"
)

type SQLRegistry struct {
	db          *sql.DB
	content     content.Repo
	assessments AssessmentChecker
	now         func() time.Time
}

func NewSQLRegistry(db *sql.DB, contentRepo content.Repo, assessments AssessmentChecker) *SQLRegistry {
	return &SQLRegistry{db: db, content: contentRepo, assessments: assessments, now: time.Now}
}

// resolveScope checks the scope points at a live entity and fills in the
// denormalized course/lesson ids from the content tables.
func (r *SQLRegistry) resolveScope(ctx context.Context, kind ScopeKind, scopeID string) (Scope, error) {
	if scopeID == "" {
		return Scope{}, apperr.ErrInvalidScope
	}
	switch kind {
	case ScopeChapter:
		ch, err := r.content.FindActiveChapter(ctx, scopeID)
		if err != nil {
			return Scope{}, err
		}
		if ch == nil {
			return Scope{}, apperr.ErrScopeNotFound
		}
		return ChapterScope(ch.ID, ch.LessonID, ch.CourseID), nil
	case ScopeLesson:
		l, err := r.content.FindActiveLesson(ctx, scopeID)
		if err != nil {
			return Scope{}, err
		}
		if l == nil {
			return Scope{}, apperr.ErrScopeNotFound
		}
		return LessonScope(l.ID, l.CourseID), nil
	case ScopeCourse:
		c, err := r.content.FindActiveCourse(ctx, scopeID)
		if err != nil {
			return Scope{}, err
		}
		if c == nil {
			return Scope{}, apperr.ErrScopeNotFound
		}
		return CourseScope(c.ID), nil
	default:
		return Scope{}, apperr.ErrInvalidScope
	}
}

func (r *SQLRegistry) Attach(ctx context.Context, kind ScopeKind, scopeID string, assessmentID int64, opts PolicyOpts) (Mapping, error) {
	scope, err := r.resolveScope(ctx, kind, scopeID)
	if err != nil {
		return Mapping{}, err
	}
	ok, err := r.assessments.Exists(ctx, assessmentID)
	if err != nil {
		return Mapping{}, err
	}
	if !ok {
		return Mapping{}, apperr.ErrAssessmentNotFound
	}
	required, passScore, maxAttempts, err := resolvePolicy(kind, opts)
	if err != nil {
		return Mapping{}, err
	}

	// The partial unique index makes this upsert the atomic arbiter of the
	// one-active-mapping-per-scope invariant; a plain read-then-write here
	// would race under concurrent attaches.
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO attachments
			(id, scope_kind, scope_id, course_id, lesson_id, assessment_id,
			 is_required, pass_score, max_attempts, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'active',$10)
		ON CONFLICT (scope_kind, scope_id) WHERE status='active' DO UPDATE SET
			assessment_id=EXCLUDED.assessment_id,
			is_required=EXCLUDED.is_required,
			pass_score=EXCLUDED.pass_score,
			max_attempts=EXCLUDED.max_attempts,
			created_at=EXCLUDED.created_at`,
		uuid.NewString(), string(scope.Kind), scope.ID, scope.CourseID, scope.LessonID,
		assessmentID, required, nullFloat(passScore), nullInt(maxAttempts), r.now().Unix())
	if err != nil {
		return Mapping{}, err
	}

	m, err := r.ResolveActive(ctx, kind, scopeID)
	if err != nil {
		return Mapping{}, err
	}
	if m == nil {
		return Mapping{}, errors.New("attach: upserted mapping not readable")
	}
	return *m, nil
}

func (r *SQLRegistry) Detach(ctx context.Context, kind ScopeKind, scopeID string) (Mapping, error) {
	m, err := r.ResolveActive(ctx, kind, scopeID)
	if err != nil {
		return Mapping{}, err
	}
	if m == nil {
		return Mapping{}, apperr.ErrMappingNotFound
	}
	archivedAt := r.now().Unix()
	res, err := r.db.ExecContext(ctx,
		`UPDATE attachments SET status='archived', archived_at=$1 WHERE id=$2 AND status='active'`,
		archivedAt, m.ID)
	if err != nil {
		return Mapping{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// lost a race with another detach
		return Mapping{}, apperr.ErrMappingNotFound
	}
	m.Status = StatusArchived
	m.ArchivedAt = &archivedAt
	return *m, nil
}

func (r *SQLRegistry) ResolveActive(ctx context.Context, kind ScopeKind, scopeID string) (*Mapping, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, scope_kind, scope_id, course_id, lesson_id, assessment_id,
		       is_required, pass_score, max_attempts, status, created_at, archived_at
		  FROM attachments
		 WHERE scope_kind=$1 AND scope_id=$2 AND status='active'`,
		string(kind), scopeID)
	m, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *SQLRegistry) Unarchive(ctx context.Context, mappingID string) (Mapping, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, scope_kind, scope_id, course_id, lesson_id, assessment_id,
		       is_required, pass_score, max_attempts, status, created_at, archived_at
		  FROM attachments WHERE id=$1`, mappingID)
	m, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Mapping{}, apperr.ErrMappingNotFound
		}
		return Mapping{}, err
	}
	if m.Status == StatusActive {
		return m, nil
	}
	// The unique index rejects the update when another mapping already holds
	// the scope; that is the authoritative check, not a prior select.
	_, err = r.db.ExecContext(ctx,
		`UPDATE attachments SET status='active', archived_at=NULL WHERE id=$1 AND status='archived'`,
		mappingID)
	if err != nil {
		if isUniqueViolation(err) {
			return Mapping{}, apperr.ErrScopeAlreadyActive
		}
		return Mapping{}, err
	}
	m.Status = StatusActive
	m.ArchivedAt = nil
	return m, nil
}

func (r *SQLRegistry) ListForScope(ctx context.Context, kind ScopeKind, scopeID string) ([]Mapping, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scope_kind, scope_id, course_id, lesson_id, assessment_id,
		       is_required, pass_score, max_attempts, status, created_at, archived_at
		  FROM attachments
		 WHERE scope_kind=$1 AND scope_id=$2
		 ORDER BY created_at DESC, id`, string(kind), scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Mapping{}
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLRegistry) ExistsForAssessment(ctx context.Context, assessmentID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM attachments WHERE assessment_id=$1)`, assessmentID).Scan(&ok)
	return ok, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMapping(row rowScanner) (Mapping, error) {
	var (
		m          Mapping
		kind       string
		passScore  sql.NullFloat64
		maxAtt     sql.NullInt64
		status     string
		archivedAt sql.NullInt64
	)
	err := row.Scan(&m.ID, &kind, &m.Scope.ID, &m.Scope.CourseID, &m.Scope.LessonID,
		&m.AssessmentID, &m.IsRequired, &passScore, &maxAtt, &status, &m.CreatedAt, &archivedAt)
	if err != nil {
		return Mapping{}, err
	}
	m.Scope.Kind = ScopeKind(kind)
	m.Status = Status(status)
	if passScore.Valid {
		v := passScore.Float64
		m.PassScore = &v
	}
	if maxAtt.Valid {
		v := int(maxAtt.Int64)
		m.MaxAttempts = &v
	}
	if archivedAt.Valid {
		v := archivedAt.Int64
		m.ArchivedAt = &v
	}
	return m, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
