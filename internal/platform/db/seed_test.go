package db

import (
	"context"
	"errors"
	"testing"

	"staffdesk/internal/domain/employees"
)

type fakeSeeder struct {
	registered []string
	promoted   map[string]employees.Role
	registerFn func(employees.Registration) error
}

func (f *fakeSeeder) Register(_ context.Context, reg employees.Registration) (employees.Record, error) {
	if f.registerFn != nil {
		if err := f.registerFn(reg); err != nil {
			return employees.Record{}, err
		}
	}
	f.registered = append(f.registered, reg.Username)
	return employees.Record{}, nil
}

func (f *fakeSeeder) Promote(_ context.Context, username string, role employees.Role) error {
	if f.promoted == nil {
		f.promoted = map[string]employees.Role{}
	}
	f.promoted[username] = role
	return nil
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and promotes", func(t *testing.T) {
		seeder := &fakeSeeder{}
		if err := ensureAdmin(ctx, seeder, " admin ", "admin@example.com", "s3cure-pass"); err != nil {
			t.Fatalf("ensure admin: %v", err)
		}
		if len(seeder.registered) != 1 || seeder.registered[0] != "admin" {
			t.Fatalf("expected admin to be registered, got %v", seeder.registered)
		}
		if seeder.promoted["admin"] != employees.RoleAdmin {
			t.Fatalf("expected ADM role, got %q", seeder.promoted["admin"])
		}
	})

	t.Run("existing account is promoted", func(t *testing.T) {
		seeder := &fakeSeeder{registerFn: func(employees.Registration) error { return employees.ErrUsernameTaken }}
		if err := ensureAdmin(ctx, seeder, "admin", "admin@example.com", "s3cure-pass"); err != nil {
			t.Fatalf("ensure admin: %v", err)
		}
		if seeder.promoted["admin"] != employees.RoleAdmin {
			t.Fatal("expected existing admin to be promoted")
		}
	})

	t.Run("storage failure is returned", func(t *testing.T) {
		boom := errors.New("boom")
		seeder := &fakeSeeder{registerFn: func(employees.Registration) error { return boom }}
		if err := ensureAdmin(ctx, seeder, "admin", "admin@example.com", "s3cure-pass"); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})

	t.Run("no password skips", func(t *testing.T) {
		seeder := &fakeSeeder{}
		if err := ensureAdmin(ctx, seeder, "admin", "admin@example.com", ""); err != nil {
			t.Fatalf("ensure admin: %v", err)
		}
		if len(seeder.registered) != 0 || len(seeder.promoted) != 0 {
			t.Fatal("expected nothing to be seeded")
		}
	})
}
