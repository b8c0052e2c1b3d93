package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"staffdesk/internal/domain/auth"
	"staffdesk/internal/platform/requestctx"
)

type TokenSource interface {
	Token(r *http.Request) string
}

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (auth.Identity, error)
}

type ManagerChecker interface {
	IsManager(ctx context.Context, identity auth.Identity) (bool, error)
}

type accountSlot struct {
	id string
}

type accountSlotKey struct{}

func withAccountSlot(ctx context.Context, slot *accountSlot) context.Context {
	return context.WithValue(ctx, accountSlotKey{}, slot)
}

func noteAccount(ctx context.Context, accountID string) {
	if slot, ok := ctx.Value(accountSlotKey{}).(*accountSlot); ok {
		slot.id = accountID
	}
}

// Session resolves the caller from the cookie token. Requests without a valid
// session continue anonymously.
func Session(tokens TokenSource, resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokens.Token(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := resolver.ResolveSession(r.Context(), token)
			if err != nil {
				if !errors.Is(err, auth.ErrSessionInvalid) {
					slog.Error("resolve session failed", "err", err, "requestId", GetRequestID(r.Context()))
				}
				next.ServeHTTP(w, r)
				return
			}

			noteAccount(r.Context(), identity.AccountID)
			ctx := requestctx.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	return requestctx.GetIdentity(ctx)
}

// RequireLogin sends anonymous callers to the login page, remembering where
// they were going.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetIdentity(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		status := http.StatusFound
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			status = http.StatusSeeOther
		}
		http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), status)
	})
}

// RequireManager lets through callers whose job role is MGR or ADM. It must be
// mounted behind RequireLogin.
func RequireManager(checker ManagerChecker, forbidden, failed http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := GetIdentity(r.Context())
			if !ok {
				forbidden.ServeHTTP(w, r)
				return
			}

			allowed, err := checker.IsManager(r.Context(), identity)
			if err != nil {
				slog.Error("manager check failed", "err", err, "accountId", identity.AccountID, "requestId", GetRequestID(r.Context()))
				failed.ServeHTTP(w, r)
				return
			}
			if !allowed {
				forbidden.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
