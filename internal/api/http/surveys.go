package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/courseforge/courseforge-lms/internal/auth/middleware"
	"github.com/courseforge/courseforge-lms/internal/progress"
)

type surveyStatusResp struct {
	Submitted bool             `json:"submitted"`
	Survey    *progress.Survey `json:"survey,omitempty"`
}

func GetSurveyStatusHandler(svc *progress.SurveyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		sv, err := svc.Find(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, surveyStatusResp{Submitted: sv != nil, Survey: sv})
	}
}

type submitSurveyReq struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comments string `json:"comments,omitempty"`
}

// POST /courses/{courseID}/survey is accepted only once completion is
// proven; resubmission returns the original record with 200 instead of
// creating or overwriting anything.
func SubmitSurveyHandler(svc *progress.SurveyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitSurveyReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		sv, created, err := svc.Submit(r.Context(), sub, chi.URLParam(r, "courseID"), req.Rating, req.Comments)
		if err != nil {
			writeErr(w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, sv)
	}
}
