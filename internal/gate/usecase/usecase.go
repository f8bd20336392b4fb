// Package usecase implements the verification gate flows: issuing email
// challenges, verifying submitted codes, and clearing challenge state.
package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/otpgate/internal/gate/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	// UpsertChallenge stores a challenge, replacing any existing one for the
	// same identity.
	UpsertChallenge(ctx context.Context, ch entity.Challenge) error
	// GetChallengeByIdentity returns the stored challenge or goerror.ErrNotFound.
	GetChallengeByIdentity(ctx context.Context, identity string) (*entity.Challenge, error)
	// DeleteChallenge removes the challenge for the identity. Removing a
	// missing challenge is not an error.
	DeleteChallenge(ctx context.Context, identity string) error
	// ConsumeChallenge atomically removes the pending challenge and reports
	// whether this caller was the one that removed it.
	ConsumeChallenge(ctx context.Context, identity string) (bool, error)
}

type notifier interface {
	// SendCode delivers the one-time code to the identity's mailbox.
	SendCode(ctx context.Context, identity, code string, ttl time.Duration) error
}

type Usecase struct {
	repoDB    repoDB
	notifier  notifier
	validator validator.Validator
	cfg       config.Config
	bcrypt    hash.Hash
	hmac      hash.Hash
	otp       otp.Generator
	uid       uid.NumberID
	oid       uid.StringID
	clock     clock.Clocker
	jwt       jwt.JWT
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB    repoDB
	Notifier  notifier
	Validator validator.Validator
	Config    config.Config
	Bcrypt    hash.Hash
	HMAC      hash.Hash
	OTP       otp.Generator
	UID       uid.NumberID
	OID       uid.StringID
	Clock     clock.Clocker
	JWT       jwt.JWT
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		notifier:  dep.Notifier,
		validator: dep.Validator,
		cfg:       dep.Config,
		bcrypt:    dep.Bcrypt,
		hmac:      dep.HMAC,
		otp:       dep.OTP,
		uid:       dep.UID,
		oid:       dep.OID,
		clock:     dep.Clock,
		jwt:       dep.JWT,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("gate.usecase").Start(ctx, name)
}

func (s *Usecase) challengeTTL() time.Duration {
	ttl := s.cfg.GetMinute("modules.gate.challenge_ttl_minutes")
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return ttl
}
