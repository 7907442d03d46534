package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	tm, err := NewTokenManager("test-secret-key-that-is-long-enough", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, err := tm.Generate("user-1", "ann@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ann@example.com" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token has no ID")
	}
}

func TestValidateRejects(t *testing.T) {
	tm, _ := NewTokenManager("secret-a", time.Hour)
	other, _ := NewTokenManager("secret-b", time.Hour)
	foreign, _ := other.Generate("user-1", "ann@example.com")

	expiredManager := &jwtManager{
		secretKey:     []byte("secret-a"),
		tokenDuration: time.Minute,
		now:           func() time.Time { return time.Now().Add(-time.Hour) },
	}
	expired, _ := expiredManager.Generate("user-1", "ann@example.com")

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", foreign},
		{"expired", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tm.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hashed, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hashed == "secret1" {
		t.Fatal("password stored in clear text")
	}
	if !h.Check("secret1", hashed) {
		t.Error("Check rejected the right password")
	}
	if h.Check("secret2", hashed) {
		t.Error("Check accepted a wrong password")
	}
}

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRevoker()

	_ = r.Revoke(ctx, "live", time.Now().Add(time.Hour))
	_ = r.Revoke(ctx, "stale", time.Now().Add(-time.Second))

	if ok, _ := r.IsRevoked(ctx, "live"); !ok {
		t.Error("live token not revoked")
	}
	if ok, _ := r.IsRevoked(ctx, "stale"); ok {
		t.Error("already expired token kept in the revocation list")
	}
	if ok, _ := r.IsRevoked(ctx, "unknown"); ok {
		t.Error("unknown token reported as revoked")
	}
}
