package services

import (
	"errors"
	"testing"
	"time"

	"chat-service/config"
	chat_errors "chat-service/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func testAuth() *AuthService {
	return NewAuthService(config.AuthConfig{JWTSecret: "secret", Issuer: "chat-service", JWTExpiryMin: 5})
}

func TestIssueAndAuthenticate(t *testing.T) {
	auth := testAuth()
	userID := uuid.New()

	token, ttl, err := auth.IssueAccessToken(userID)
	if err != nil {
		t.Fatal(err)
	}
	if ttl != 300 {
		t.Errorf("ttl = %d, want 300", ttl)
	}
	got, err := auth.Authenticate(token)
	if err != nil {
		t.Fatal(err)
	}
	if got != userID {
		t.Errorf("user = %s, want %s", got, userID)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	auth := testAuth()
	other := NewAuthService(config.AuthConfig{JWTSecret: "other", Issuer: "chat-service", JWTExpiryMin: 5})
	foreign, _, err := other.IssueAccessToken(uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		Issuer:    "chat-service",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	expiredToken, err := expired.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	notUUID := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "bob", Issuer: "chat-service"})
	notUUIDToken, err := notUUID.SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "not.a.jwt",
		"signature": foreign,
		"expired":   expiredToken,
		"subject":   notUUIDToken,
	} {
		if _, err := auth.Authenticate(token); !errors.Is(err, chat_errors.ErrUnauthorized) {
			t.Errorf("%s: err = %v, want unauthorized", name, err)
		}
	}
}
