// Package gate wires the verification gate module: challenge issuance, code
// verification, and challenge cleanup for a host authentication pipeline.
package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/gate/entity"
	"github.com/shandysiswandi/otpgate/internal/gate/inbound"
	"github.com/shandysiswandi/otpgate/internal/gate/outbound/cache"
	"github.com/shandysiswandi/otpgate/internal/gate/outbound/db"
	outmail "github.com/shandysiswandi/otpgate/internal/gate/outbound/mail"
	"github.com/shandysiswandi/otpgate/internal/gate/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

type Dependency struct {
	// DBConn is required when the store driver is postgres.
	DBConn *pgxpool.Pool
	// CacheConn is required when the store driver is redis.
	CacheConn *redis.Client

	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	OTP        otp.Generator              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	store, err := newStore(dep)
	if err != nil {
		return err
	}

	notifier := outmail.NewNotifier(dep.Mail, dep.Config.GetString("app.name"), dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:     store,
		Notifier:   notifier,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Bcrypt:     dep.Bcrypt,
		HMAC:       dep.HMAC,
		OTP:        dep.OTP,
		UID:        dep.UID,
		OID:        dep.OID,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

type challengeStore interface {
	UpsertChallenge(ctx context.Context, ch entity.Challenge) error
	GetChallengeByIdentity(ctx context.Context, identity string) (*entity.Challenge, error)
	DeleteChallenge(ctx context.Context, identity string) error
	ConsumeChallenge(ctx context.Context, identity string) (bool, error)
}

func newStore(dep Dependency) (challengeStore, error) {
	driver := strings.TrimSpace(dep.Config.GetString("modules.gate.store.driver"))
	switch driver {
	case "postgres":
		if dep.DBConn == nil {
			return nil, errors.New("gate: postgres store driver requires a database connection")
		}
		return db.NewDB(dep.DBConn, dep.Instrument), nil

	case "redis":
		if dep.CacheConn == nil {
			return nil, errors.New("gate: redis store driver requires a redis connection")
		}
		return cache.NewCache(dep.CacheConn, dep.Clock, dep.Instrument), nil

	default:
		return nil, fmt.Errorf("gate: unknown store driver %q", driver)
	}
}
