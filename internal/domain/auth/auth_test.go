package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{AccountID: "a1", SessionID: "s1"}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if parsed.AccountID != claims.AccountID || parsed.SessionID != claims.SessionID {
		t.Fatalf("claims mismatch: %+v", parsed)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("secret", Claims{AccountID: "a1", SessionID: "s1"}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("secret", token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestHashTokenStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("expected stable hash")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("expected different hashes for different tokens")
	}
	if HashToken("abc") == "abc" {
		t.Fatal("hash must not equal the raw token")
	}
}

func TestPasswordProblems(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		want     int
	}{
		{name: "valid password", password: "Stronger123", username: "jdoe"},
		{name: "too short", password: "abc12", username: "jdoe", want: 1},
		{name: "entirely numeric", password: "1234567890", username: "jdoe", want: 1},
		{name: "matches username", password: "jdoe-smith", username: "JDOE-SMITH", want: 1},
		{name: "short and numeric", password: "123", username: "jdoe", want: 2},
		{name: "empty", password: "", username: "jdoe", want: 1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := PasswordProblems(tc.password, tc.username)
			if len(got) != tc.want {
				t.Fatalf("expected %d problems, got %v", tc.want, got)
			}
		})
	}
}
