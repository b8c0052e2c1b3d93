package authhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"staffdesk/internal/domain/auth"
	"staffdesk/internal/transport/http/middleware"
	"staffdesk/internal/transport/http/web"
)

const msgInvalidCredentials = "Invalid username or password."

type Service interface {
	Login(ctx context.Context, username, password string) (string, auth.Account, error)
	Logout(ctx context.Context, identity auth.Identity) error
}

type LoginRecorder interface {
	RecordLogin(ok bool)
}

type Handler struct {
	Auth     Service
	Sessions *web.Sessions
	Views    *web.Renderer
	Metrics  LoginRecorder
}

func NewHandler(svc Service, sessions *web.Sessions, views *web.Renderer, metrics LoginRecorder) *Handler {
	return &Handler{Auth: svc, Sessions: sessions, Views: views, Metrics: metrics}
}

// RegisterRoutes mounts login and logout. loginLimit wraps the login POST.
func (h *Handler) RegisterRoutes(r chi.Router, loginLimit func(http.Handler) http.Handler) {
	r.Get("/login", h.HandleLoginForm)
	r.With(loginLimit).Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
}

func (h *Handler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetIdentity(r.Context()); ok {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusFound)
		return
	}
	h.Views.Render(w, r, http.StatusOK, "login", web.Page{
		Title: "Log in",
		Form:  url.Values{"next": {r.URL.Query().Get("next")}},
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.Views.RenderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	next := r.PostForm.Get("next")

	token, account, err := h.Auth.Login(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.recordLogin(false)
		h.Sessions.AddFlash(w, r, web.FlashError, msgInvalidCredentials)
		h.Views.Render(w, r, http.StatusOK, "login", web.Page{
			Title: "Log in",
			Form:  url.Values{"username": {username}, "next": {next}},
		})
		return
	}
	if err != nil {
		slog.Error("login failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
		h.Views.RenderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	if err := h.Sessions.SetToken(w, r, token); err != nil {
		slog.Error("save session failed", "err", err, "accountId", account.ID)
		h.Views.RenderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}
	h.recordLogin(true)
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if identity, ok := middleware.GetIdentity(r.Context()); ok {
		if err := h.Auth.Logout(r.Context(), identity); err != nil {
			slog.Warn("revoke session failed", "err", err, "accountId", identity.AccountID)
		}
	}
	if err := h.Sessions.ClearToken(w, r); err != nil {
		slog.Warn("clear session cookie failed", "err", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) recordLogin(ok bool) {
	if h.Metrics != nil {
		h.Metrics.RecordLogin(ok)
	}
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/home"
	}
	return next
}
