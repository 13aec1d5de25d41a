package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}

func TestNewAccessToken(t *testing.T) {
	tok, err := NewAccessToken("secret", "alice", 7)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (any, error) {
		return []byte("secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != "alice" {
		t.Fatalf("unexpected subject: %v", claims["sub"])
	}

	wantExp := time.Now().UTC().Add(7 * 24 * time.Hour)
	if d := tok.Exp.Sub(wantExp); d < -time.Minute || d > time.Minute {
		t.Fatalf("expiry off by %v", d)
	}
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", "alice", 1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = jwt.Parse(tok.Token, func(*jwt.Token) (any, error) {
		return []byte("other"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err == nil {
		t.Fatal("token verified with wrong secret")
	}
}
