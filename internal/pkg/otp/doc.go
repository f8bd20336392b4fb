// Package otp generates short numeric one-time passcodes.
//
// Codes are drawn from a cryptographically secure source and are intended for
// out-of-band delivery (email) during a second-factor login challenge. There is
// deliberately no fallback to a weaker randomness source: if crypto/rand fails,
// Generate returns the error and the caller must abort the operation.
package otp
