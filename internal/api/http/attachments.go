package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courseforge/courseforge-lms/internal/attach"
)

type attachReq struct {
	ScopeKind    string   `json:"scope_kind" validate:"required,oneof=chapter lesson course"`
	ScopeID      string   `json:"scope_id" validate:"required"`
	AssessmentID *int64   `json:"assessment_id" validate:"required"`
	IsRequired   *bool    `json:"is_required,omitempty"`
	PassScore    *float64 `json:"pass_score,omitempty"`
	MaxAttempts  *int     `json:"max_attempts,omitempty"`
}

func AttachHandler(reg attach.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attachReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		kind, err := attach.ParseKind(req.ScopeKind)
		if err != nil {
			writeErr(w, err)
			return
		}
		m, err := reg.Attach(r.Context(), kind, req.ScopeID, *req.AssessmentID, attach.PolicyOpts{
			IsRequired:  req.IsRequired,
			PassScore:   req.PassScore,
			MaxAttempts: req.MaxAttempts,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// DELETE /attachments?scope_kind=...&scope_id=...
func DetachHandler(reg attach.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := attach.ParseKind(r.URL.Query().Get("scope_kind"))
		if err != nil {
			writeErr(w, err)
			return
		}
		scopeID := r.URL.Query().Get("scope_id")
		m, err := reg.Detach(r.Context(), kind, scopeID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

func UnarchiveMappingHandler(reg attach.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := reg.Unarchive(r.Context(), chi.URLParam(r, "mappingID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// GET /attachments?scope_kind=...&scope_id=... lists active and archived
// mappings for the scope, newest first.
func ListAttachmentsHandler(reg attach.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := attach.ParseKind(r.URL.Query().Get("scope_kind"))
		if err != nil {
			writeErr(w, err)
			return
		}
		list, err := reg.ListForScope(r.Context(), kind, r.URL.Query().Get("scope_id"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
