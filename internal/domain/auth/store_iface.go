package auth

import (
	"context"
	"time"
)

type StoreAPI interface {
	FindAccountByUsername(ctx context.Context, username string) (Account, error)
	CreateSession(ctx context.Context, accountID, tokenHash string, expires time.Time) error
	SessionAccount(ctx context.Context, accountID, tokenHash string) (Account, error)
	RevokeSession(ctx context.Context, accountID, tokenHash string) error
	RevokeAccountSessions(ctx context.Context, accountID string) error
	UpdateLastLogin(ctx context.Context, accountID string) error
}
