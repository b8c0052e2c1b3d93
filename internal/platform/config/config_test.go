package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/staffdesk",
		Environment:        "development",
		SessionTTL:         8 * time.Hour,
		MaxBodyBytes:       65536,
		RateLimitPerMinute: 30,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "development defaults", mutate: func(*Config) {}},
		{name: "missing database url", mutate: func(c *Config) { c.DatabaseURL = " " }, wantErr: true},
		{name: "short session ttl", mutate: func(c *Config) { c.SessionTTL = time.Second }, wantErr: true},
		{name: "tiny body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }, wantErr: true},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimitPerMinute = 0 }, wantErr: true},
		{
			name: "production without secrets",
			mutate: func(c *Config) {
				c.Environment = "production"
			},
			wantErr: true,
		},
		{
			name: "production with secrets",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.SessionSecret = "0123456789abcdef0123456789abcdef"
				c.JWTSecret = "jwt-secret"
				c.CSRFKey = "0123456789abcdef0123456789abcdef"
				c.RunSeed = false
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ADDR", ":9999")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("RUN_SEED", "false")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.Addr != ":9999" {
		t.Fatalf("expected addr :9999, got %q", cfg.Addr)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.RunSeed {
		t.Fatal("expected RUN_SEED=false to disable seeding")
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Fatalf("expected fallback rate limit 30, got %d", cfg.RateLimitPerMinute)
	}
}
