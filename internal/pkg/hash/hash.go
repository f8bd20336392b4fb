package hash

// Hash is the contract for one-way hashing of short secrets.
//
// Implementations must never require the plaintext to be recoverable, and
// Verify must not leak timing information proportional to how much of the
// plaintext matches.
type Hash interface {
	// Hash returns the one-way hash of plaintext.
	Hash(plaintext string) ([]byte, error)
	// Verify reports whether plaintext matches the stored hash.
	Verify(hashed, plaintext string) bool
}
