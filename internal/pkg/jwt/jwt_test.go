package jwt

import (
	"bytes"
	"errors"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

type fixedUUID struct{ id string }

func (f fixedUUID) Generate() string { return f.id }

func testConfig(now time.Time) Config {
	return Config{
		Secret:    bytes.Repeat([]byte("s"), 64),
		Issuer:    "otpgate",
		Audiences: []string{"host-pipeline"},
		TTL:       2 * time.Minute,
		Clock:     fixedClock{now: now},
		UUID:      fixedUUID{id: "01920000-0000-7000-8000-000000000001"},
	}
}

func TestNewHS512_ShortKey(t *testing.T) {
	cfg := testConfig(time.Now())
	cfg.Secret = []byte("too-short")

	_, err := NewHS512(cfg)
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("expected ErrSigningKeyTooShort, got %v", err)
	}
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	now := time.Now()

	s, err := NewHS512(testConfig(now))
	if err != nil {
		t.Fatalf("NewHS512 returned error: %v", err)
	}

	token, err := s.Generate("alice@example.com")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if claims.Identity() != "alice@example.com" {
		t.Fatalf("expected identity alice@example.com, got %q", claims.Identity())
	}

	if claims.Purpose != PurposeSecondFactorVerified {
		t.Fatalf("expected purpose %q, got %q", PurposeSecondFactorVerified, claims.Purpose)
	}
}

func TestSymmetric_Verify_Expired(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	s, err := NewHS512(testConfig(past))
	if err != nil {
		t.Fatalf("NewHS512 returned error: %v", err)
	}

	token, err := s.Generate("alice@example.com")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, err := s.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestSymmetric_Verify_WrongSecret(t *testing.T) {
	now := time.Now()

	signer, err := NewHS512(testConfig(now))
	if err != nil {
		t.Fatalf("NewHS512 returned error: %v", err)
	}

	other := testConfig(now)
	other.Secret = bytes.Repeat([]byte("x"), 64)

	verifier, err := NewHS512(other)
	if err != nil {
		t.Fatalf("NewHS512 returned error: %v", err)
	}

	token, err := signer.Generate("alice@example.com")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected verification error for wrong secret, got nil")
	}
}

func TestSymmetric_Verify_WrongPurpose(t *testing.T) {
	now := time.Now()
	cfg := testConfig(now)

	s, err := NewHS512(cfg)
	if err != nil {
		t.Fatalf("NewHS512 returned error: %v", err)
	}

	token, err := libJWT.NewWithClaims(libJWT.SigningMethodHS512, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Subject:   "alice@example.com",
			Issuer:    cfg.Issuer,
			Audience:  cfg.Audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(time.Minute)),
		},
		Purpose: "password_reset",
	}).SignedString(cfg.Secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := s.Verify(token); !errors.Is(err, ErrWrongPurpose) {
		t.Fatalf("expected ErrWrongPurpose, got %v", err)
	}
}

func TestSymmetric_Verify_WrongMethod(t *testing.T) {
	now := time.Now()
	cfg := testConfig(now)

	s, err := NewHS512(cfg)
	if err != nil {
		t.Fatalf("NewHS512 returned error: %v", err)
	}

	token, err := libJWT.NewWithClaims(libJWT.SigningMethodHS256, Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Subject:   "alice@example.com",
			Issuer:    cfg.Issuer,
			Audience:  cfg.Audiences,
			ExpiresAt: libJWT.NewNumericDate(now.Add(time.Minute)),
		},
		Purpose: PurposeSecondFactorVerified,
	}).SignedString(cfg.Secret)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	if _, err := s.Verify(token); err == nil {
		t.Fatal("expected error for HS256 token, got nil")
	}
}
