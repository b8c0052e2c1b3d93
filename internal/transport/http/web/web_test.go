package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"staffdesk/internal/domain/auth"
	"staffdesk/internal/platform/requestctx"
)

func newSessions() *Sessions {
	return NewSessions([]byte("0123456789abcdef0123456789abcdef"), time.Hour, false)
}

func TestNewRendererParsesEveryPage(t *testing.T) {
	rd, err := NewRenderer(newSessions())
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	for _, name := range []string{"index", "register", "login", "home", "profile", "edit-profile", "list", "edit-employee", "confirm-delete", "history", "error"} {
		if _, ok := rd.pages[name]; !ok {
			t.Fatalf("missing page %q", name)
		}
	}
	if _, ok := rd.pages["layout"]; ok {
		t.Fatal("layout must not be a standalone page")
	}
}

func TestRenderShowsIdentityAndFlashOnce(t *testing.T) {
	sessions := newSessions()
	rd, err := NewRenderer(sessions)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	first := httptest.NewRecorder()
	sessions.AddFlash(first, httptest.NewRequest(http.MethodGet, "/", nil), FlashSuccess, "Saved!")
	cookies := first.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	req = req.WithContext(requestctx.WithIdentity(req.Context(), auth.Identity{AccountID: "acct-1", Username: "ada"}))
	rec := httptest.NewRecorder()
	rd.Render(rec, req, http.StatusOK, "index", Page{})

	body := rec.Body.String()
	if !strings.Contains(body, "Saved!") || !strings.Contains(body, "flash-success") {
		t.Fatal("expected flash in rendered page")
	}
	if !strings.Contains(body, "ada") || !strings.Contains(body, "Log out") {
		t.Fatal("expected logged-in navigation")
	}
	if strings.Contains(body, `href="/employees"`) {
		t.Fatal("navigation must not link the manager-only list")
	}

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		again.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	rd.Render(rec, again, http.StatusOK, "index", Page{})
	if strings.Contains(rec.Body.String(), "Saved!") {
		t.Fatal("flash must only be shown once")
	}
}

func TestRenderErrorAndUnknownTemplate(t *testing.T) {
	rd, err := NewRenderer(newSessions())
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	rec := httptest.NewRecorder()
	rd.Status(http.StatusForbidden, "Managers only.").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/employees", nil))
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "Managers only.") {
		t.Fatalf("expected rendered 403, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	rd.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "nope", Page{})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unknown template, got %d", rec.Code)
	}
}

func TestSessionToken(t *testing.T) {
	sessions := newSessions()

	rec := httptest.NewRecorder()
	if err := sessions.SetToken(rec, httptest.NewRequest(http.MethodGet, "/", nil), "signed"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly {
		t.Fatalf("expected one HttpOnly cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	if got := sessions.Token(req); got != "signed" {
		t.Fatalf("expected token round trip, got %q", got)
	}

	clear := httptest.NewRecorder()
	if err := sessions.ClearToken(clear, req); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range clear.Result().Cookies() {
		req.AddCookie(c)
	}
	if got := sessions.Token(req); got != "" {
		t.Fatalf("expected token cleared, got %q", got)
	}

	tampered := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered.AddCookie(&http.Cookie{Name: "staffdesk", Value: "garbage"})
	if got := sessions.Token(tampered); got != "" {
		t.Fatalf("expected tampered cookie to be ignored, got %q", got)
	}
}
