package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecureHeaders(t *testing.T) {
	for _, prod := range []bool{false, true} {
		rec := httptest.NewRecorder()
		SecureHeaders(prod)(statusHandler(http.StatusOK)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Header().Get("X-Frame-Options") != "DENY" {
			t.Fatal("expected X-Frame-Options DENY")
		}
		if rec.Header().Get("Referrer-Policy") != "same-origin" {
			t.Fatal("expected same-origin referrer policy so CSRF referer checks pass")
		}
		hsts := rec.Header().Get("Strict-Transport-Security") != ""
		if hsts != prod {
			t.Fatalf("prod=%v: unexpected HSTS presence %v", prod, hsts)
		}
	}
}
