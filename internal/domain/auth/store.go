package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindAccountByUsername(ctx context.Context, username string) (Account, error) {
	var out Account
	err := s.DB.QueryRow(ctx, `
    SELECT id, username, email, password_hash
    FROM accounts
    WHERE lower(username) = lower($1)
  `, username).Scan(&out.ID, &out.Username, &out.Email, &out.PasswordHash)
	return out, err
}

func (s *Store) CreateSession(ctx context.Context, accountID, tokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (account_id, token_hash, expires_at)
    VALUES ($1,$2,$3)
  `, accountID, tokenHash, expires)
	return err
}

func (s *Store) SessionAccount(ctx context.Context, accountID, tokenHash string) (Account, error) {
	var out Account
	err := s.DB.QueryRow(ctx, `
    SELECT a.id, a.username, a.email, a.password_hash
    FROM sessions s
    JOIN accounts a ON a.id = s.account_id
    WHERE s.account_id = $1 AND s.token_hash = $2 AND s.expires_at > now() AND s.revoked_at IS NULL
  `, accountID, tokenHash).Scan(&out.ID, &out.Username, &out.Email, &out.PasswordHash)
	return out, err
}

func (s *Store) RevokeSession(ctx context.Context, accountID, tokenHash string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE account_id = $1 AND token_hash = $2", accountID, tokenHash)
	return err
}

func (s *Store) RevokeAccountSessions(ctx context.Context, accountID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE sessions SET revoked_at = now() WHERE account_id = $1 AND revoked_at IS NULL", accountID)
	return err
}

func (s *Store) UpdateLastLogin(ctx context.Context, accountID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE accounts SET last_login = now() WHERE id = $1", accountID)
	return err
}
