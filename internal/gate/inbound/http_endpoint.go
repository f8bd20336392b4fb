package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/gate/entity"
	"github.com/shandysiswandi/otpgate/internal/gate/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the verification gate. The caller is
// the host authentication pipeline, but error messages are written for the
// end user so the host can surface them verbatim.
type HTTPEndpoint struct {
	uc uc
}

// BeginChallenge issues a fresh one-time code and emails it to the identity.
func (h *HTTPEndpoint) BeginChallenge(r *router.Request) (any, error) {
	var req BeginChallengeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.BeginChallenge(r.Context(), usecase.BeginChallengeInput{
		Identity: req.Identity,
	})
	if err != nil {
		return nil, err
	}

	return BeginChallengeResponse{
		ChallengeToken: resp.ChallengeToken,
		ExpiresAt:      resp.ExpiresAt,
	}, nil
}

// VerifyChallenge checks a submitted code and, on success, returns the
// verification assertion for the host's session authority.
func (h *HTTPEndpoint) VerifyChallenge(r *router.Request) (any, error) {
	var req VerifyChallengeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyChallenge(r.Context(), usecase.VerifyChallengeInput{
		Identity:       req.Identity,
		Code:           req.Code,
		ChallengeToken: req.ChallengeToken,
	})
	if err != nil {
		return nil, err
	}

	switch resp.Status {
	case entity.VerifyStatusSuccess:
		return VerifyChallengeResponse{
			Verified:  true,
			Assertion: resp.Assertion,
		}, nil

	case entity.VerifyStatusInvalidCode:
		return nil, goerror.NewBusiness("Invalid verification code. Please try again.", goerror.CodeUnauthorized)

	case entity.VerifyStatusExpired, entity.VerifyStatusNoChallenge:
		return nil, goerror.NewBusiness("The verification code has expired. Please log in again to receive a new one.", goerror.CodeUnauthorized)

	case entity.VerifyStatusSecurityCheckFailed:
		return nil, goerror.NewBusiness("Security check failed. Please log in again.", goerror.CodeUnauthorized)

	default:
		return nil, goerror.NewBusiness("Security check failed. Please log in again.", goerror.CodeUnauthorized)
	}
}

// ClearChallenge removes any challenge state for the identity.
func (h *HTTPEndpoint) ClearChallenge(r *router.Request) (any, error) {
	err := h.uc.ClearChallenge(r.Context(), usecase.ClearChallengeInput{
		Identity: r.GetParam("identity"),
	})
	if err != nil {
		return nil, err
	}

	return nil, nil
}
