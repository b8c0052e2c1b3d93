package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

type Service struct {
	store  StoreAPI
	secret string
	ttl    time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl}
}

func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// Authenticate checks a username/password pair against the identity store.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Account, error) {
	account, err := s.store.FindAccountByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}
	if err := CheckPassword(account.PasswordHash, password); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// StartSession records a new server-side session and returns the signed token
// that goes into the session cookie.
func (s *Service) StartSession(ctx context.Context, account Account) (string, error) {
	sessionID, err := NewSessionID()
	if err != nil {
		return "", err
	}
	if err := s.store.CreateSession(ctx, account.ID, HashToken(sessionID), time.Now().Add(s.ttl)); err != nil {
		return "", err
	}
	if err := s.store.UpdateLastLogin(ctx, account.ID); err != nil {
		slog.Warn("update last_login failed", "accountId", account.ID, "err", err)
	}
	return GenerateToken(s.secret, Claims{AccountID: account.ID, SessionID: sessionID}, s.ttl)
}

func (s *Service) Login(ctx context.Context, username, password string) (string, Account, error) {
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", Account{}, err
	}
	token, err := s.StartSession(ctx, account)
	if err != nil {
		return "", Account{}, err
	}
	return token, account, nil
}

// ResolveSession turns a cookie token back into the caller's identity. The
// username is read from the account row so renames take effect immediately.
func (s *Service) ResolveSession(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrSessionInvalid
	}
	claims, err := ParseToken(s.secret, token)
	if err != nil {
		return Identity{}, ErrSessionInvalid
	}
	account, err := s.store.SessionAccount(ctx, claims.AccountID, HashToken(claims.SessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Identity{}, ErrSessionInvalid
	}
	if err != nil {
		return Identity{}, err
	}
	return Identity{AccountID: account.ID, Username: account.Username, SessionID: claims.SessionID}, nil
}

func (s *Service) Logout(ctx context.Context, identity Identity) error {
	if identity.SessionID == "" {
		return nil
	}
	return s.store.RevokeSession(ctx, identity.AccountID, HashToken(identity.SessionID))
}

// Reauthenticate logs the caller back in with freshly changed credentials:
// every existing session of the account is revoked and a new one is issued.
func (s *Service) Reauthenticate(ctx context.Context, identity Identity, username, password string) (string, error) {
	account, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if account.ID != identity.AccountID {
		return "", ErrInvalidCredentials
	}
	if err := s.store.RevokeAccountSessions(ctx, account.ID); err != nil {
		return "", err
	}
	return s.StartSession(ctx, account)
}
