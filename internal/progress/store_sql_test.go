package progress

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/courseforge/courseforge-lms/internal/db"
)

func openProgressDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "progress_test.db")
	h, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	if err := db.EnsureSchema(context.Background(), h, db.DriverSQLite); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return h
}

func i64(v int64) *int64 { return &v }

func TestSQLStoreUpsertKeepsFirstTimestamps(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(openProgressDB(t))

	if err := s.Upsert(ctx, ChapterProgress{
		UserID: "u1", ChapterID: "ch1", CourseID: "c1",
		Status: StatusInProgress, StartedAt: i64(100), LastAccessedAt: 100,
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Upsert(ctx, ChapterProgress{
		UserID: "u1", ChapterID: "ch1", CourseID: "c1",
		Status: StatusCompleted, StartedAt: i64(200), CompletedAt: i64(200), LastAccessedAt: 200,
	}); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(ctx, "u1", "ch1")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil {
		t.Fatal("record missing")
	}
	if rec.Status != StatusCompleted || rec.LastAccessedAt != 200 {
		t.Errorf("rec = %+v", rec)
	}
	if rec.StartedAt == nil || *rec.StartedAt != 100 {
		t.Errorf("started_at = %v, want first write kept", rec.StartedAt)
	}
	if rec.CompletedAt == nil || *rec.CompletedAt != 200 {
		t.Errorf("completed_at = %v", rec.CompletedAt)
	}
}

func TestSQLStoreGetMissing(t *testing.T) {
	s := NewSQLStore(openProgressDB(t))
	rec, err := s.Get(context.Background(), "u1", "ch1")
	if err != nil || rec != nil {
		t.Errorf("rec=%+v err=%v", rec, err)
	}
}

func TestSQLStoreListForCourse(t *testing.T) {
	ctx := context.Background()
	s := NewSQLStore(openProgressDB(t))

	rows := []ChapterProgress{
		{UserID: "u1", ChapterID: "ch1", CourseID: "c1", Status: StatusCompleted, LastAccessedAt: 1},
		{UserID: "u1", ChapterID: "ch2", CourseID: "c1", Status: StatusInProgress, LastAccessedAt: 2},
		{UserID: "u1", ChapterID: "x1", CourseID: "c2", Status: StatusCompleted, LastAccessedAt: 3},
		{UserID: "u2", ChapterID: "ch1", CourseID: "c1", Status: StatusCompleted, LastAccessedAt: 4},
	}
	for _, rec := range rows {
		if err := s.Upsert(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListForCourse(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("rows = %+v", got)
	}
}

func TestSQLSurveyStoreFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewSQLSurveyStore(openProgressDB(t))

	if err := s.Insert(ctx, Survey{ID: "s1", UserID: "u1", CourseID: "c1", Rating: 5, SubmittedAt: 1}); err != nil {
		t.Fatal(err)
	}
	// duplicate insert is a no-op, not an error
	if err := s.Insert(ctx, Survey{ID: "s2", UserID: "u1", CourseID: "c1", Rating: 1, SubmittedAt: 2}); err != nil {
		t.Fatal(err)
	}

	sv, err := s.Find(ctx, "u1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if sv == nil || sv.ID != "s1" || sv.Rating != 5 {
		t.Errorf("sv = %+v", sv)
	}

	sv, err = s.Find(ctx, "u1", "c2")
	if err != nil || sv != nil {
		t.Errorf("other course: sv=%+v err=%v", sv, err)
	}
}
