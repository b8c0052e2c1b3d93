package db

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"staffdesk/internal/domain/employees"
	"staffdesk/internal/platform/config"
)

// Seed makes sure an administrator exists so the manager pages are reachable
// on a fresh database.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	svc := employees.NewService(employees.NewStore(pool))
	return ensureAdmin(ctx, svc, cfg.SeedAdminUsername, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

type adminSeeder interface {
	Register(ctx context.Context, reg employees.Registration) (employees.Record, error)
	Promote(ctx context.Context, username string, role employees.Role) error
}

func ensureAdmin(ctx context.Context, svc adminSeeder, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil
	}
	if email == "" {
		slog.Warn("seed admin skipped: SEED_ADMIN_EMAIL is empty", "username", username)
		return nil
	}

	_, err := svc.Register(ctx, employees.Registration{
		FirstName: "System",
		LastName:  "Administrator",
		Username:  username,
		Email:     email,
		Password:  password,
	})
	if err != nil && !errors.Is(err, employees.ErrUsernameTaken) {
		return err
	}
	return svc.Promote(ctx, username, employees.RoleAdmin)
}
