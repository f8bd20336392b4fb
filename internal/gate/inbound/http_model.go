package inbound

import "time"

type BeginChallengeRequest struct {
	Identity string `json:"identity"`
}

type BeginChallengeResponse struct {
	ChallengeToken string    `json:"challenge_token"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func (BeginChallengeResponse) Message() string {
	return "A verification code has been sent to your email. Please enter it below."
}

type VerifyChallengeRequest struct {
	Identity       string `json:"identity"`
	Code           string `json:"code"`
	ChallengeToken string `json:"challenge_token"`
}

type VerifyChallengeResponse struct {
	Verified bool `json:"verified"`
	// Assertion is the signed statement the host exchanges for a session.
	Assertion string `json:"assertion"`
}

func (VerifyChallengeResponse) Message() string {
	return "Verification successful."
}
