package auth

import (
	"strings"
	"testing"
	"time"
)

const testSigningSecret = "0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSigningSecret, ttl)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	return ts
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"empty", ""},
		{"31 bytes", strings.Repeat("x", 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTokenService(tt.secret, time.Hour); err == nil {
				t.Error("expected error for short signing secret")
			}
		})
	}
}

func TestNewTokenService_RejectsNonPositiveTTL(t *testing.T) {
	if _, err := NewTokenService(testSigningSecret, 0); err == nil {
		t.Error("expected error for zero TTL")
	}
	if _, err := NewTokenService(testSigningSecret, -time.Hour); err == nil {
		t.Error("expected error for negative TTL")
	}
}

func TestIssueAndVerify(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)

	token, err := ts.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	uid, ok := ts.Verify(token)
	if !ok {
		t.Fatal("expected token to verify")
	}
	if uid != "user-123" {
		t.Errorf("expected user-123, got %s", uid)
	}
}

func TestVerify_Expired(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return issued }

	token, err := ts.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Still valid just before expiry.
	ts.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, ok := ts.Verify(token); !ok {
		t.Error("expected token to still verify before expiry")
	}

	// Invalid after expiry.
	ts.now = func() time.Time { return issued.Add(61 * time.Minute) }
	if _, ok := ts.Verify(token); ok {
		t.Error("expected expired token to fail verification")
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := newTestTokenService(t, time.Hour)
	verifier, err := NewTokenService(strings.Repeat("z", 48), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, ok := verifier.Verify(token); ok {
		t.Error("expected token signed with a different secret to fail")
	}
}

func TestVerify_Garbage(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "definitely-not-a-token"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
		// Unsigned token (alg: none) must never verify.
		{"alg none", "eyJhbGciOiJub25lIn0.eyJ1aWQiOiJ1c2VyLTEyMyJ9."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ts.Verify(tt.token); ok {
				t.Error("expected verification to fail")
			}
		})
	}
}

func TestVerify_Tampered(t *testing.T) {
	ts := newTestTokenService(t, time.Hour)

	token, err := ts.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, ok := ts.Verify(tampered); ok {
		t.Error("expected tampered token to fail verification")
	}
}

func TestTTL(t *testing.T) {
	ts := newTestTokenService(t, 7*24*time.Hour)
	if ts.TTL() != 7*24*time.Hour {
		t.Errorf("expected 168h TTL, got %v", ts.TTL())
	}
}
