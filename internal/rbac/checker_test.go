package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "attempt:create", true},
		{"student", "attachment:manage", false},
		{"instructor", "attachment:manage", true},
		{"instructor", "progress:update", false},
		{"admin", "anything:at_all", true},
		{"ghost", "attempt:create", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"ops": {"attempt:*"}})
	if !c.Has("ops", "attempt:view-all") {
		t.Error("prefix wildcard should match")
	}
	if c.Has("ops", "assessment:view") {
		t.Error("prefix wildcard matched outside its prefix")
	}
}

func TestRequireMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) })

	serve := func(role, perm string) int {
		rr := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		if role != "" {
			r = r.WithContext(WithRole(r.Context(), role))
		}
		Require(perm)(ok).ServeHTTP(rr, r)
		return rr.Code
	}

	if code := serve("student", "attempt:create"); code != 204 {
		t.Errorf("allowed request: %d", code)
	}
	if code := serve("student", "attachment:manage"); code != http.StatusForbidden {
		t.Errorf("denied request: %d", code)
	}
	if code := serve("", "attempt:create"); code != http.StatusForbidden {
		t.Errorf("no role: %d", code)
	}
}

func TestRequireAny(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) })
	rr := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(WithRole(r.Context(), "student"))
	RequireAny("attempt:view-all", "attempt:view-own")(ok).ServeHTTP(rr, r)
	if rr.Code != 204 {
		t.Errorf("student with view-own denied: %d", rr.Code)
	}
}
