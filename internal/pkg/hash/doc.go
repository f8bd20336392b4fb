// Package hash provides one-way hashing for secrets that live in storage.
//
// The gate never persists a passcode or challenge token in plaintext: codes are
// stored as bcrypt hashes and compared with bcrypt's constant-time check, and
// high-entropy tokens are stored as keyed HMAC-SHA256 digests compared with
// crypto/subtle. Callers depend on the Hash interface so the scheme can be
// swapped in tests.
package hash
