package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"staffdesk/internal/domain/auth"
)

type fixedToken string

func (f fixedToken) Token(*http.Request) string { return string(f) }

type fakeResolver struct {
	identity auth.Identity
	err      error
}

func (f fakeResolver) ResolveSession(context.Context, string) (auth.Identity, error) {
	return f.identity, f.err
}

type fakeChecker struct {
	manager bool
	err     error
}

func (f fakeChecker) IsManager(context.Context, auth.Identity) (bool, error) {
	return f.manager, f.err
}

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	})
}

func TestSessionSetsIdentity(t *testing.T) {
	want := auth.Identity{AccountID: "acct-1", Username: "ada", SessionID: "s1"}
	handler := Session(fixedToken("tok"), fakeResolver{identity: want})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := GetIdentity(r.Context())
		if !ok {
			t.Fatal("expected identity in context")
		}
		if got != want {
			t.Fatalf("unexpected identity: %+v", got)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/home", nil))
}

func TestSessionInvalidTokenIsAnonymous(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		resolver fakeResolver
	}{
		{name: "no cookie", token: ""},
		{name: "revoked", token: "tok", resolver: fakeResolver{err: auth.ErrSessionInvalid}},
		{name: "storage error", token: "tok", resolver: fakeResolver{err: errors.New("db down")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := Session(fixedToken(tc.token), tc.resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if _, ok := GetIdentity(r.Context()); ok {
					t.Fatal("did not expect identity in context")
				}
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
			if !called {
				t.Fatal("expected request to continue")
			}
		})
	}
}

func TestRequireLoginRedirectsWithNext(t *testing.T) {
	handler := RequireLogin(statusHandler(http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "/employees?search=fin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login?next=%2Femployees%3Fsearch%3Dfin" {
		t.Fatalf("unexpected redirect %q", got)
	}
}

func TestRequireManager(t *testing.T) {
	identity := auth.Identity{AccountID: "acct-1", Username: "ada"}
	tests := []struct {
		name    string
		checker fakeChecker
		want    int
	}{
		{name: "manager", checker: fakeChecker{manager: true}, want: http.StatusOK},
		{name: "employee", checker: fakeChecker{manager: false}, want: http.StatusForbidden},
		{name: "lookup failure", checker: fakeChecker{err: errors.New("boom")}, want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			guard := RequireManager(tc.checker, statusHandler(http.StatusForbidden), statusHandler(http.StatusInternalServerError))
			handler := Session(fixedToken("tok"), fakeResolver{identity: identity})(guard(statusHandler(http.StatusOK)))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/employees", nil))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
