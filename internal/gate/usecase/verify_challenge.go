package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/gate/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type VerifyChallengeInput struct {
	Identity       string `validate:"required,email"`
	Code           string
	ChallengeToken string
}

type VerifyChallengeOutput struct {
	Status entity.VerifyStatus
	// Assertion is a short-lived signed statement that the identity completed
	// verification. Set only when Status is VerifyStatusSuccess.
	Assertion string
}

// VerifyChallenge checks a submitted code against the identity's pending
// challenge. The outcome is a status, never an error; the error return is
// reserved for invalid input and infrastructure faults.
func (s *Usecase) VerifyChallenge(ctx context.Context, in VerifyChallengeInput) (*VerifyChallengeOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyChallenge")
	defer span.End()

	in.Identity = strings.ToLower(strings.TrimSpace(in.Identity))
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	// A missing token fails before any state is read or written.
	if in.ChallengeToken == "" {
		slog.WarnContext(ctx, "challenge token missing", "identity", in.Identity)
		return &VerifyChallengeOutput{Status: entity.VerifyStatusSecurityCheckFailed}, nil
	}

	ch, err := s.repoDB.GetChallengeByIdentity(ctx, in.Identity)
	if errors.Is(err, goerror.ErrNotFound) {
		return &VerifyChallengeOutput{Status: entity.VerifyStatusNoChallenge}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get challenge", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ch.Pending {
		return &VerifyChallengeOutput{Status: entity.VerifyStatusNoChallenge}, nil
	}

	if !s.hmac.Verify(ch.TokenHash, in.ChallengeToken) {
		slog.WarnContext(ctx, "challenge token mismatch", "identity", in.Identity)
		return &VerifyChallengeOutput{Status: entity.VerifyStatusSecurityCheckFailed}, nil
	}

	// Lazy expiry: the record is cleared on the first attempt past the
	// window, whether or not the submitted code was right.
	if s.clock.Now().After(ch.ExpiresAt) {
		if err := s.repoDB.DeleteChallenge(ctx, in.Identity); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete expired challenge", "identity", in.Identity, "error", err)
			return nil, goerror.NewServer(err)
		}
		return &VerifyChallengeOutput{Status: entity.VerifyStatusExpired}, nil
	}

	if !s.isWellFormedCode(in.Code) {
		return &VerifyChallengeOutput{Status: entity.VerifyStatusInvalidCode}, nil
	}

	if !s.bcrypt.Verify(ch.CodeHash, in.Code) {
		slog.WarnContext(ctx, "one-time code mismatch", "identity", in.Identity)
		return &VerifyChallengeOutput{Status: entity.VerifyStatusInvalidCode}, nil
	}

	// Two concurrent attempts can both reach this point with the right code.
	// The consume is atomic, so exactly one of them wins.
	won, err := s.repoDB.ConsumeChallenge(ctx, in.Identity)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo consume challenge", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !won {
		return &VerifyChallengeOutput{Status: entity.VerifyStatusNoChallenge}, nil
	}

	assertion, err := s.jwt.Generate(in.Identity)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate verification assertion", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyChallengeOutput{
		Status:    entity.VerifyStatusSuccess,
		Assertion: assertion,
	}, nil
}

func (s *Usecase) isWellFormedCode(code string) bool {
	if len(code) != s.otp.Digits() {
		return false
	}

	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}

	return true
}
