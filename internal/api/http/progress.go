package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/courseforge/courseforge-lms/internal/auth/middleware"
	"github.com/courseforge/courseforge-lms/internal/progress"
)

func GetChapterProgressHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		rec, err := tracker.Get(r.Context(), sub, chi.URLParam(r, "chapterID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

type setProgressReq struct {
	Status string `json:"status" validate:"required,oneof=in_progress completed"`
}

// PUT /progress/chapters/{chapterID} with {"status": "in_progress"} records
// a content view; {"status": "completed"} asks for the completion
// transition, which the checklist gate may refuse with 409.
func SetChapterProgressHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setProgressReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		rec, err := tracker.Set(r.Context(), sub, chi.URLParam(r, "chapterID"), progress.ChapterStatus(req.Status))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func GetCourseCompletionHandler(agg *progress.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		res, err := agg.ComputeCompletion(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
