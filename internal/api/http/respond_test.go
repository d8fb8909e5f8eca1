package http

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courseforge/courseforge-lms/internal/apperr"
)

func TestWriteErrStatusMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{apperr.ErrInvalidScope, 400, "invalid_scope"},
		{apperr.ErrScopeNotFound, 404, "scope_not_found"},
		{apperr.ErrAttemptsExhausted, 409, "attempts_exhausted"},
		{apperr.ErrNotOwner, 403, "not_owner"},
		{errors.New("disk on fire"), 500, "internal_error"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		writeErr(rr, tc.err)
		if rr.Code != tc.wantStatus {
			t.Errorf("%v: status = %d, want %d", tc.err, rr.Code, tc.wantStatus)
		}
		var body errorBody
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: bad envelope: %v", tc.err, err)
		}
		if body.Error != tc.wantCode {
			t.Errorf("%v: code = %q, want %q", tc.err, body.Error, tc.wantCode)
		}
	}
}

func TestWriteErrIncludesFieldDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	writeErr(rr, apperr.ErrInvalidScope.WithFields("scope_id: failed \"required\""))
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Errors) != 1 {
		t.Errorf("errors = %v", body.Errors)
	}
}

func TestDecodeValid(t *testing.T) {
	type req struct {
		Name string `json:"name" validate:"required"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"ok"}`))
	var dst req
	if err := decodeValid(r, &dst); err != nil || dst.Name != "ok" {
		t.Errorf("valid body: dst=%+v err=%v", dst, err)
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
	if err := decodeValid(r, &req{}); apperr.CodeOf(err) != "bad_json" {
		t.Errorf("bad json: err = %v", err)
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
	err := decodeValid(r, &req{})
	if apperr.CodeOf(err) != "validation_failed" {
		t.Fatalf("missing field: err = %v", err)
	}
	if fields := apperr.FieldsOf(err); len(fields) != 1 || !strings.Contains(fields[0], "Name") {
		t.Errorf("fields = %v", fields)
	}
}
