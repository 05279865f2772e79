package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestManagerIssueAndRefresh(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewManager(testSecret, time.Minute, time.Hour, store)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}
	if !store.Has(tokens.RefreshToken) {
		t.Fatal("expected refresh token to be stored")
	}
	if _, err := store.Find(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatal("raw refresh token must not be used as the storage key")
	}

	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected new refresh token")
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatal("old token should have been removed")
	}
	if !store.Has(refreshed.RefreshToken) {
		t.Fatal("rotated token should be stored")
	}
}

func TestManagerIssueValidation(t *testing.T) {
	manager := NewManager(testSecret, time.Minute, time.Hour, NewInMemorySessionStore())
	if _, err := manager.Issue(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewManager(testSecret, time.Minute, time.Hour, store)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return now }

	if _, err := manager.Refresh(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session not found got %v", err)
	}

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(2 * time.Hour)

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrRefreshTokenExpired) {
		t.Fatalf("expected refresh expired got %v", err)
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatal("expired session should be discarded")
	}

	tokens, err = manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := manager.Revoke(context.Background(), tokens.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := manager.Revoke(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected second revoke to report session not found got %v", err)
	}
	if err := manager.Revoke(context.Background(), ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected empty token to report session not found got %v", err)
	}
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session not found after revoke got %v", err)
	}
}

func TestManagerVerify(t *testing.T) {
	manager := NewManager(testSecret, time.Minute, time.Hour, NewInMemorySessionStore())
	now := time.Now().UTC()
	manager.now = func() time.Time { return now }

	tokens, err := manager.Issue(context.Background(), "user-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("expected user-42 got %q", userID)
	}

	other := NewManager("other-secret", time.Minute, time.Hour, NewInMemorySessionStore())
	if _, err := other.Verify(tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for wrong secret got %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := manager.Verify(tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token once expired got %v", err)
	}
}

func TestManagerVerifyRejectsMalformedTokens(t *testing.T) {
	manager := NewManager(testSecret, time.Minute, time.Hour, NewInMemorySessionStore())

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	tests := map[string]string{
		"empty":      "",
		"garbage":    "not-a-token",
		"alg none":   none,
		"no subject": noSubject,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected invalid token got %v", err)
			}
		})
	}
}

func TestInMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewInMemorySessionStore()
	store.now = func() time.Time { return now }

	if err := store.Save(ctx, Session{TokenHash: "a", UserID: "user-1", ExpiresAt: now.Add(time.Minute)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, Session{TokenHash: "b", UserID: "user-2", ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 sessions got %d", store.Len())
	}

	now = now.Add(2 * time.Minute)
	if err := store.Save(ctx, Session{TokenHash: "c", UserID: "user-3", ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := store.Find(ctx, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session to be pruned, got %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 sessions got %d", store.Len())
	}

	if err := store.Delete(ctx, "b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "b"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
}
