// Package jwt issues and verifies the signed verification assertions the gate
// hands back to the host authentication pipeline.
//
// An assertion is minted only when a challenge is verified successfully. The
// host validates it (same shared secret) before issuing its real session, so
// the gate never performs session issuance itself.
package jwt
