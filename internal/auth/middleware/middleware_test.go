package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courseforge/courseforge-lms/internal/rbac"
)

func TestJWTRoundTrip(t *testing.T) {
	a := NewAuthService("test-secret")
	tok, err := a.IssueJWT("u1", "student")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := a.Parse(tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Sub != "u1" || claims.Role != "student" {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := NewAuthService("other-secret").Parse(tok); err == nil {
		t.Error("token verified under wrong secret")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("test-secret")
	var gotSub, gotRole string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no header: status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: status = %d", rr.Code)
	}

	tok, err := a.IssueJWT("inst1", "instructor")
	if err != nil {
		t.Fatal(err)
	}
	rr = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", rr.Code)
	}
	if gotSub != "inst1" || gotRole != "instructor" {
		t.Errorf("context sub=%q role=%q", gotSub, gotRole)
	}
}
