package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courseforge/courseforge-lms/internal/content"
)

// Content CRUD proper lives outside this service; these handlers give the
// registry and the aggregator real rows to resolve against: a read surface
// plus an admin bulk seed.

func ListCoursesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := db.QueryContext(r.Context(),
			`SELECT id, title, status FROM courses WHERE status='active' ORDER BY title, id`)
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()
		out := []content.Course{}
		for rows.Next() {
			var c content.Course
			if err := rows.Scan(&c.ID, &c.Title, &c.Status); err == nil {
				out = append(out, c)
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func ListCourseChaptersHandler(repo content.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chapters, err := repo.ActiveChapters(r.Context(), chi.URLParam(r, "courseID"))
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, chapters)
	}
}

type seedContentReq struct {
	Courses  []content.Course  `json:"courses,omitempty"`
	Lessons  []content.Lesson  `json:"lessons,omitempty"`
	Chapters []content.Chapter `json:"chapters,omitempty"`
}

func BulkUpsertContentHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req seedContentReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		now := time.Now().Unix()
		n := 0
		for _, c := range req.Courses {
			if strings.TrimSpace(c.ID) == "" {
				continue
			}
			if c.Status == "" {
				c.Status = "active"
			}
			if _, err := db.ExecContext(r.Context(), `
				INSERT INTO courses (id, title, status, created_at) VALUES ($1,$2,$3,$4)
				ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, status=EXCLUDED.status`,
				c.ID, c.Title, c.Status, now); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			n++
		}
		for _, l := range req.Lessons {
			if strings.TrimSpace(l.ID) == "" || strings.TrimSpace(l.CourseID) == "" {
				continue
			}
			if l.Status == "" {
				l.Status = "active"
			}
			if _, err := db.ExecContext(r.Context(), `
				INSERT INTO lessons (id, course_id, title, status, position) VALUES ($1,$2,$3,$4,$5)
				ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, status=EXCLUDED.status, position=EXCLUDED.position`,
				l.ID, l.CourseID, l.Title, l.Status, l.Position); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			n++
		}
		for _, ch := range req.Chapters {
			if strings.TrimSpace(ch.ID) == "" || strings.TrimSpace(ch.LessonID) == "" {
				continue
			}
			if ch.Status == "" {
				ch.Status = "active"
			}
			if _, err := db.ExecContext(r.Context(), `
				INSERT INTO chapters (id, lesson_id, course_id, title, status, position) VALUES ($1,$2,$3,$4,$5,$6)
				ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, status=EXCLUDED.status, position=EXCLUDED.position`,
				ch.ID, ch.LessonID, ch.CourseID, ch.Title, ch.Status, ch.Position); err != nil {
				http.Error(w, "db error", http.StatusInternalServerError)
				return
			}
			n++
		}
		writeJSON(w, http.StatusOK, map[string]any{"upserted": n})
	}
}
