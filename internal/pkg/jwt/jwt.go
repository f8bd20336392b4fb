package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PurposeSecondFactorVerified is the purpose claim carried by every assertion
// this package mints.
const PurposeSecondFactorVerified = "2fa_verified"

var (
	// ErrInvalidSigningMethod is returned when the token signing method is not supported.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned when the assertion has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrWrongPurpose is returned when a structurally valid token carries an
	// unexpected purpose claim.
	ErrWrongPurpose = errors.New("token purpose mismatch")
)

// JWT defines the operations the gate needs: mint an assertion for a verified
// identity, and verify one.
type JWT interface {
	// Generate creates a signed verification assertion for the identity.
	Generate(identity string) (string, error)
	// Verify parses and validates an assertion and returns its claims.
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	// Secret is the HMAC signing key shared with the host pipeline.
	Secret []byte
	// Issuer is the token issuer value.
	Issuer string
	// Audiences are the accepted token audiences.
	Audiences []string
	// TTL is the assertion time-to-live; keep it short, the host exchanges it
	// for a session immediately.
	TTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token IDs.
	UUID generator
}

// Claims wraps the registered claims with the assertion payload.
type Claims struct {
	jwt.RegisteredClaims
	// Purpose is always PurposeSecondFactorVerified for minted assertions.
	Purpose string `json:"purpose"`
}

// Identity returns the verified identity the assertion was minted for.
func (c Claims) Identity() string {
	return c.Subject
}
