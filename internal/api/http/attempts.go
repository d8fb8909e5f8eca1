package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/courseforge/courseforge-lms/internal/apperr"
	"github.com/courseforge/courseforge-lms/internal/assess"
	"github.com/courseforge/courseforge-lms/internal/attach"
	authmw "github.com/courseforge/courseforge-lms/internal/auth/middleware"
	"github.com/courseforge/courseforge-lms/internal/policy"
	"github.com/courseforge/courseforge-lms/internal/rbac"
)

type attemptAccessResp struct {
	policy.Decision
	Assessment assess.Assessment `json:"assessment"`
}

// GET /scopes/assessment?scope_kind=...&scope_id=...&assessment_id=...
// Runs the same gate as submission so a learner never opens content they
// cannot submit against.
func AssessmentForAttemptHandler(engine *policy.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := attach.ParseKind(r.URL.Query().Get("scope_kind"))
		if err != nil {
			writeErr(w, err)
			return
		}
		scopeID := r.URL.Query().Get("scope_id")
		assessmentID, err := strconv.ParseInt(r.URL.Query().Get("assessment_id"), 10, 64)
		if err != nil || assessmentID < 0 {
			writeErr(w, apperr.New(apperr.KindValidation, "invalid_assessment_id", "assessment id must be a non-negative integer"))
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		dec, a, err := engine.AssessmentForAttempt(r.Context(), sub, assessmentID, kind, scopeID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attemptAccessResp{Decision: dec, Assessment: a})
	}
}

type submitAttemptReq struct {
	AssessmentID   *int64  `json:"assessment_id" validate:"required"`
	ScopeKind      string  `json:"scope_kind,omitempty" validate:"omitempty,oneof=chapter lesson course"`
	ScopeID        string  `json:"scope_id,omitempty"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"total_questions"`
}

// POST /attempts submits a completed run. The gate re-runs here regardless
// of what the earlier GET said.
func SubmitAttemptHandler(engine *policy.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitAttemptReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		if (req.ScopeKind == "") != (req.ScopeID == "") {
			writeErr(w, apperr.ErrInvalidScope)
			return
		}
		sub := authmw.SubjectFromContext(r.Context())
		rec, err := engine.RecordAttempt(r.Context(), sub, *req.AssessmentID,
			attach.ScopeKind(req.ScopeKind), req.ScopeID, req.Score, req.TotalQuestions)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// GET /attempts?user_id=...&assessment_id=...&limit=50&offset=0
// Callers without attempt:view-all only ever see their own records.
func ListAttemptsHandler(ledger policy.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := authmw.SubjectFromContext(r.Context())

		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if role != "admin" && role != "instructor" {
			userID = sub
		}
		var assessmentID int64
		if v := r.URL.Query().Get("assessment_id"); v != "" {
			assessmentID, _ = strconv.ParseInt(v, 10, 64)
		}
		list, err := ledger.List(r.Context(), policy.ListOpts{
			UserID:       userID,
			AssessmentID: assessmentID,
			Limit:        parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:       parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func parseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
