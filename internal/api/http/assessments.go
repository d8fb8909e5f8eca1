package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/courseforge/courseforge-lms/internal/apperr"
	"github.com/courseforge/courseforge-lms/internal/assess"
	authmw "github.com/courseforge/courseforge-lms/internal/auth/middleware"
	"github.com/courseforge/courseforge-lms/internal/rbac"
)

type assessmentReq struct {
	Title     string            `json:"title" validate:"required"`
	Questions []assess.Question `json:"questions" validate:"required,min=1"`
}

func CreateAssessmentHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assessmentReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		id, err := store.AllocateNextID(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		a := assess.Assessment{
			ID:        id,
			Title:     req.Title,
			Questions: req.Questions,
			CreatedBy: authmw.SubjectFromContext(r.Context()),
		}
		if err := store.Put(r.Context(), a); err != nil {
			writeErr(w, err)
			return
		}
		saved, err := store.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

func GetAssessmentHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := assessmentID(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		a, err := store.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		// answer keys never leave the server for students
		if rbac.RoleFromContext(r.Context()) == "student" {
			a = a.StudentView()
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func ListAssessmentsHandler(store assess.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// UpdateAssessmentHandler routes edits through the versioning guard. A fork
// is a success (201 with created_new_version), not an error: the submitted
// content was preserved, just under a fresh id.
func UpdateAssessmentHandler(guard *assess.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := assessmentID(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		var req assessmentReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		res, err := guard.Edit(r.Context(), sub, role, id, req.Title, req.Questions)
		if err != nil {
			writeErr(w, err)
			return
		}
		status := http.StatusOK
		if res.CreatedNewVersion {
			status = http.StatusCreated
		}
		writeJSON(w, status, res)
	}
}

func DeleteAssessmentHandler(guard *assess.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := assessmentID(r)
		if err != nil {
			writeErr(w, err)
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())
		if err := guard.Delete(r.Context(), sub, role, id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func assessmentID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "assessmentID"), 10, 64)
	if err != nil || id < 0 {
		return 0, apperr.New(apperr.KindValidation, "invalid_assessment_id", "assessment id must be a non-negative integer")
	}
	return id, nil
}
