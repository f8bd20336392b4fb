package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type ClearChallengeInput struct {
	Identity string `validate:"required,email"`
}

// ClearChallenge removes any challenge state for the identity. Clearing an
// identity with no challenge is a no-op, so the operation is idempotent.
func (s *Usecase) ClearChallenge(ctx context.Context, in ClearChallengeInput) error {
	ctx, span := s.startSpan(ctx, "ClearChallenge")
	defer span.End()

	in.Identity = strings.ToLower(strings.TrimSpace(in.Identity))

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoDB.DeleteChallenge(ctx, in.Identity); err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo delete challenge", "identity", in.Identity, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
