package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/otpgate/internal/gate/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type BeginChallengeInput struct {
	Identity string `validate:"required,email"`
}

type BeginChallengeOutput struct {
	// ChallengeToken must be echoed back on verification. It is the only place
	// the plaintext token ever appears.
	ChallengeToken string
	ExpiresAt      time.Time
}

// BeginChallenge issues a fresh one-time code for the identity and emails it.
// Any previous challenge for the same identity is replaced, so only the most
// recent code is acceptable.
func (s *Usecase) BeginChallenge(ctx context.Context, in BeginChallengeInput) (*BeginChallengeOutput, error) {
	ctx, span := s.startSpan(ctx, "BeginChallenge")
	defer span.End()

	in.Identity = strings.ToLower(strings.TrimSpace(in.Identity))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	code, err := s.otp.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate one-time code", "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.bcrypt.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash one-time code", "error", err)
		return nil, goerror.NewServer(err)
	}

	token := s.oid.Generate()

	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash challenge token", "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.challengeTTL()
	expiresAt := s.clock.Now().Add(ttl)

	ch := entity.Challenge{
		ID:        s.uid.Generate(),
		Identity:  in.Identity,
		CodeHash:  string(codeHash),
		TokenHash: string(tokenHash),
		ExpiresAt: expiresAt,
		Pending:   true,
	}

	if err := s.repoDB.UpsertChallenge(ctx, ch); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert challenge", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	// The challenge is stored before delivery. If delivery fails the record
	// stays, matching the stored-then-sent ordering callers rely on.
	if err := s.notifier.SendCode(ctx, in.Identity, code, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to send one-time code", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &BeginChallengeOutput{
		ChallengeToken: token,
		ExpiresAt:      expiresAt,
	}, nil
}
