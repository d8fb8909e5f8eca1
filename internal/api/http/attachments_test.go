package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/courseforge/courseforge-lms/internal/attach"
)

func newHandlerRegistry() attach.Registry {
	reg := attach.NewInMemoryRegistry()
	reg.SeedScope(attach.ChapterScope("ch1", "l1", "c1"))
	reg.SeedScope(attach.CourseScope("c1"))
	reg.SeedAssessment(1)
	reg.SeedAssessment(2)
	return reg
}

func TestAttachHandler(t *testing.T) {
	reg := newHandlerRegistry()
	h := AttachHandler(reg)

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest("POST", "/attachments",
		strings.NewReader(`{"scope_kind":"chapter","scope_id":"ch1","assessment_id":1}`)))
	if rr.Code != 200 {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var m attach.Mapping
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.AssessmentID != 1 || m.Status != attach.StatusActive {
		t.Errorf("mapping = %+v", m)
	}
	if m.PassScore == nil || *m.PassScore != 100 {
		t.Errorf("chapter default not applied: %v", m.PassScore)
	}
}

func TestAttachHandlerAssessmentIDZeroIsValid(t *testing.T) {
	reg := attach.NewInMemoryRegistry()
	reg.SeedScope(attach.CourseScope("c1"))
	reg.SeedAssessment(0)
	h := AttachHandler(reg)

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest("POST", "/attachments",
		strings.NewReader(`{"scope_kind":"course","scope_id":"c1","assessment_id":0}`)))
	if rr.Code != 200 {
		t.Fatalf("id 0 rejected: %d %s", rr.Code, rr.Body.String())
	}
}

func TestAttachHandlerValidation(t *testing.T) {
	h := AttachHandler(newHandlerRegistry())
	cases := []struct {
		name string
		body string
		want int
		code string
	}{
		{"missing assessment", `{"scope_kind":"chapter","scope_id":"ch1"}`, 400, "validation_failed"},
		{"bad kind", `{"scope_kind":"module","scope_id":"x","assessment_id":1}`, 400, "validation_failed"},
		{"unknown scope", `{"scope_kind":"chapter","scope_id":"nope","assessment_id":1}`, 404, "scope_not_found"},
		{"unknown assessment", `{"scope_kind":"chapter","scope_id":"ch1","assessment_id":404}`, 404, "assessment_not_found"},
		{"bad pass score", `{"scope_kind":"chapter","scope_id":"ch1","assessment_id":1,"pass_score":120}`, 400, "invalid_policy_value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h(rr, httptest.NewRequest("POST", "/attachments", strings.NewReader(tc.body)))
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tc.want, rr.Body.String())
			}
			var body errorBody
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error != tc.code {
				t.Errorf("code = %q, want %q", body.Error, tc.code)
			}
		})
	}
}

func TestDetachHandler(t *testing.T) {
	reg := newHandlerRegistry()
	attachOne(t, reg)

	rr := httptest.NewRecorder()
	DetachHandler(reg)(rr, httptest.NewRequest("DELETE", "/attachments?scope_kind=chapter&scope_id=ch1", nil))
	if rr.Code != 200 {
		t.Fatalf("status = %d", rr.Code)
	}
	var m attach.Mapping
	if err := json.Unmarshal(rr.Body.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	if m.Status != attach.StatusArchived {
		t.Errorf("status = %s", m.Status)
	}

	rr = httptest.NewRecorder()
	DetachHandler(reg)(rr, httptest.NewRequest("DELETE", "/attachments?scope_kind=chapter&scope_id=ch1", nil))
	if rr.Code != 404 {
		t.Errorf("second detach status = %d, want 404", rr.Code)
	}
}

func TestUnarchiveHandlerConflict(t *testing.T) {
	reg := newHandlerRegistry()
	old := attachOne(t, reg)
	ctx := httptest.NewRequest("DELETE", "/", nil).Context()
	if _, err := reg.Detach(ctx, attach.ScopeChapter, "ch1"); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Attach(ctx, attach.ScopeChapter, "ch1", 2, attach.PolicyOpts{}); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest("POST", "/attachments/"+old.ID+"/unarchive", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("mappingID", old.ID)
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	UnarchiveMappingHandler(reg)(rr, r)
	if rr.Code != 409 {
		t.Fatalf("status = %d, want 409 (%s)", rr.Code, rr.Body.String())
	}
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "scope_already_active" {
		t.Errorf("code = %q", body.Error)
	}
}

func TestListAttachmentsHandler(t *testing.T) {
	reg := newHandlerRegistry()
	attachOne(t, reg)

	rr := httptest.NewRecorder()
	ListAttachmentsHandler(reg)(rr, httptest.NewRequest("GET", "/attachments?scope_kind=chapter&scope_id=ch1", nil))
	if rr.Code != 200 {
		t.Fatalf("status = %d", rr.Code)
	}
	var list []attach.Mapping
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("list = %+v", list)
	}
}

func attachOne(t *testing.T, reg attach.Registry) attach.Mapping {
	t.Helper()
	m, err := reg.Attach(httptest.NewRequest("POST", "/", nil).Context(),
		attach.ScopeChapter, "ch1", 1, attach.PolicyOpts{})
	if err != nil {
		t.Fatal(err)
	}
	return m
}
