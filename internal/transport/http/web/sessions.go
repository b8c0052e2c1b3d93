package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "staffdesk"
	tokenKey    = "token"

	FlashSuccess = "success"
	FlashError   = "error"
)

type Flash struct {
	Kind    string
	Message string
}

// Sessions keeps the signed login token and one-shot flash messages in a
// gorilla cookie session.
type Sessions struct {
	store sessions.Store
}

func NewSessions(secret []byte, ttl time.Duration, secure bool) *Sessions {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

func (s *Sessions) get(r *http.Request) *sessions.Session {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// A cookie signed with a rotated secret decodes to a fresh session.
		slog.Debug("session cookie rejected", "err", err)
	}
	return session
}

func (s *Sessions) Token(r *http.Request) string {
	token, _ := s.get(r).Values[tokenKey].(string)
	return token
}

func (s *Sessions) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	session := s.get(r)
	session.Values[tokenKey] = token
	return session.Save(r, w)
}

func (s *Sessions) ClearToken(w http.ResponseWriter, r *http.Request) error {
	session := s.get(r)
	delete(session.Values, tokenKey)
	return session.Save(r, w)
}

func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	session := s.get(r)
	session.AddFlash(message, kind)
	if err := session.Save(r, w); err != nil {
		slog.Warn("save flash failed", "err", err)
	}
}

// Flashes returns and removes every pending flash message.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	session := s.get(r)
	var out []Flash
	for _, kind := range []string{FlashError, FlashSuccess} {
		for _, raw := range session.Flashes(kind) {
			if message, ok := raw.(string); ok {
				out = append(out, Flash{Kind: kind, Message: message})
			}
		}
	}
	if len(out) > 0 {
		if err := session.Save(r, w); err != nil {
			slog.Warn("save session after flash read failed", "err", err)
		}
	}
	return out
}

func (s *Sessions) ClearFlashes(w http.ResponseWriter, r *http.Request) {
	s.Flashes(w, r)
}
