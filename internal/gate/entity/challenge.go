// Package entity holds the domain types of the verification gate.
package entity

import "time"

// Challenge is one pending email verification challenge. At most one exists
// per identity; issuing a new one replaces the previous one.
type Challenge struct {
	// ID is the unique challenge identifier.
	ID int64
	// Identity is the login identity (email address) being challenged.
	Identity string
	// CodeHash is the bcrypt hash of the one-time code. The plaintext code is
	// never stored.
	CodeHash string
	// TokenHash is the HMAC-SHA256 hash of the challenge session token.
	TokenHash string
	// ExpiresAt is the instant the challenge stops being acceptable.
	ExpiresAt time.Time
	// Pending reports whether the challenge is still awaiting verification.
	Pending bool
}

// VerifyStatus is the outcome of a verification attempt. It is a domain
// outcome, not an error; infrastructure faults are reported separately.
type VerifyStatus int

const (
	// VerifyStatusUnknown is the zero value and never a valid outcome.
	VerifyStatusUnknown VerifyStatus = iota
	// VerifyStatusSuccess means the code matched a pending, unexpired challenge.
	VerifyStatusSuccess
	// VerifyStatusInvalidCode means the submitted code did not match.
	VerifyStatusInvalidCode
	// VerifyStatusExpired means the challenge existed but its window had passed.
	VerifyStatusExpired
	// VerifyStatusNoChallenge means no pending challenge exists for the identity.
	VerifyStatusNoChallenge
	// VerifyStatusSecurityCheckFailed means the challenge session token was
	// missing or did not match.
	VerifyStatusSecurityCheckFailed
)

func (v VerifyStatus) String() string {
	switch v {
	case VerifyStatusSuccess:
		return "success"
	case VerifyStatusInvalidCode:
		return "invalid_code"
	case VerifyStatusExpired:
		return "expired"
	case VerifyStatusNoChallenge:
		return "no_challenge"
	case VerifyStatusSecurityCheckFailed:
		return "security_check_failed"
	default:
		return "unknown"
	}
}
