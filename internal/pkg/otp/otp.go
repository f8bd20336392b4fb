package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// MinDigits is the smallest supported passcode width.
	MinDigits = 4
	// MaxDigits is the largest supported passcode width.
	MaxDigits = 10
	// DefaultDigits is the common email-OTP width.
	DefaultDigits = 6
)

// ErrDigitsOutOfRange is returned when the configured width is unsupported.
var ErrDigitsOutOfRange = errors.New("otp: digits must be between 4 and 10")

// Generator defines the contract for producing one-time passcodes.
type Generator interface {
	// Generate returns a fixed-width numeric code from a secure random source.
	Generate() (string, error)
	// Digits returns the code width this generator produces.
	Digits() int
}

// Numeric implements Generator for fixed-width decimal codes.
//
// A 6-digit generator draws uniformly from the closed range [100000, 999999],
// so every code has exactly the configured width (no leading zeros).
type Numeric struct {
	digits int
	min    *big.Int
	span   *big.Int
}

// NewNumeric constructs a Numeric generator for the given code width.
func NewNumeric(digits int) (*Numeric, error) {
	if digits < MinDigits || digits > MaxDigits {
		return nil, ErrDigitsOutOfRange
	}

	min := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	span := new(big.Int).Sub(max, min)

	return &Numeric{digits: digits, min: min, span: span}, nil
}

// Generate returns a new passcode.
func (g *Numeric) Generate() (string, error) {
	// rand.Int is uniform over [0, span), so min+n is uniform over the full
	// d-digit range without modulo bias.
	n, err := rand.Int(rand.Reader, g.span)
	if err != nil {
		return "", fmt.Errorf("otp: secure random source unavailable: %w", err)
	}

	return new(big.Int).Add(g.min, n).String(), nil
}

// Digits returns the configured code width.
func (g *Numeric) Digits() int {
	return g.digits
}
