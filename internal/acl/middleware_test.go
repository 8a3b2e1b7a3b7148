// internal/acl/middleware_test.go
//
// Authenticate and Require against a fake session lookup.
//
// Run: go test ./internal/acl -v

package acl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/auth"
	"github.com/yanizio/guestlist/internal/session"
)

type fakeLookup map[string]session.Session

func (f fakeLookup) Lookup(_ context.Context, token string) (session.Session, error) {
	if token == "broken" {
		return session.Session{}, apperr.Internal(errors.New("db down"))
	}
	s, ok := f[token]
	if !ok {
		return session.Session{}, apperr.ErrUnauthenticated
	}
	return s, nil
}

var sessions = fakeLookup{
	"guest-token":   {ID: "s1", Token: "guest-token", Principal: session.GuestPrincipal{GuestID: "g1"}},
	"pending-token": {ID: "s2", Token: "pending-token", Principal: session.AdminPendingPrincipal{}},
	"admin-token":   {ID: "s3", Token: "admin-token", Principal: session.AdminPrincipal{AdminID: "a1"}},
}

func request(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	return r
}

func TestAuthenticate(t *testing.T) {
	cases := []struct {
		token    string
		wantKind session.Kind
		wantOK   bool
	}{
		{"", "", false},
		{"unknown", "", false},
		{"guest-token", session.KindGuest, true},
		{"pending-token", session.KindAdminPending, true},
	}
	for _, tc := range cases {
		var gotOK bool
		var gotKind session.Kind
		h := Authenticate(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := auth.SessionFrom(r.Context())
			gotOK = ok
			if ok {
				gotKind = s.Kind()
			}
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, request(tc.token))
		if rec.Code != http.StatusOK {
			t.Fatalf("token %q: status = %d", tc.token, rec.Code)
		}
		if gotOK != tc.wantOK || gotKind != tc.wantKind {
			t.Errorf("token %q: session = (%q, %v), want (%q, %v)",
				tc.token, gotKind, gotOK, tc.wantKind, tc.wantOK)
		}
	}
}

func TestAuthenticate_LookupFailure(t *testing.T) {
	called := false
	h := Authenticate(sessions)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("broken"))
	if called || rec.Code != http.StatusInternalServerError {
		t.Fatalf("called = %v, status = %d", called, rec.Code)
	}
}

func TestRequire(t *testing.T) {
	gate := func(next http.Handler) http.Handler {
		return Authenticate(sessions)(Require(session.KindGuest, session.KindAdmin)(next))
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := map[string]int{
		"":              http.StatusUnauthorized,
		"unknown":       http.StatusUnauthorized,
		"pending-token": http.StatusUnauthorized,
		"guest-token":   http.StatusNoContent,
		"admin-token":   http.StatusNoContent,
	}
	for token, want := range cases {
		rec := httptest.NewRecorder()
		gate(ok).ServeHTTP(rec, request(token))
		if rec.Code != want {
			t.Errorf("token %q: status = %d, want %d", token, rec.Code, want)
		}
		if want == http.StatusUnauthorized && strings.TrimSpace(rec.Body.String()) != `{"error":"Unauthorized"}` {
			t.Errorf("token %q: body = %s", token, rec.Body.String())
		}
	}
}

func TestRequire_PanicsWithoutKinds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Require() did not panic")
		}
	}()
	Require()
}
