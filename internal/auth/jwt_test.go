package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	tok, err := m.GenerateAccessToken("u1", "admin@club.test", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := m.VerifyAccessToken(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "admin" || claims.Email != "admin@club.test" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestManager_RejectsWrongSecretAndExpired(t *testing.T) {
	issuer := NewManager("secret-a", time.Minute)
	tok, _ := issuer.GenerateAccessToken("u1", "a@b.c", "admin")

	if _, err := NewManager("secret-b", time.Minute).VerifyAccessToken(tok); err == nil {
		t.Fatal("expected signature error")
	}

	expired := &Manager{secret: []byte("secret-a"), accessTTL: -time.Minute}
	old, _ := expired.GenerateAccessToken("u1", "a@b.c", "admin")
	if _, err := issuer.VerifyAccessToken(old); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestManager_RejectsOtherTokenType(t *testing.T) {
	m := NewManager("s", time.Minute)

	claims := Claims{UserID: "u1", TokenType: "refresh", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); !errors.Is(err, ErrInvalidTokenType) {
		t.Fatalf("expected ErrInvalidTokenType, got %v", err)
	}
}
