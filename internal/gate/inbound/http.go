package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/gate/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	BeginChallenge(ctx context.Context, in usecase.BeginChallengeInput) (*usecase.BeginChallengeOutput, error)
	VerifyChallenge(ctx context.Context, in usecase.VerifyChallengeInput) (*usecase.VerifyChallengeOutput, error)
	ClearChallenge(ctx context.Context, in usecase.ClearChallengeInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/gate/challenges", end.BeginChallenge)
	r.POST("/api/v1/gate/challenges/verify", end.VerifyChallenge)
	r.DELETE("/api/v1/gate/challenges/:identity", end.ClearChallenge)
}
