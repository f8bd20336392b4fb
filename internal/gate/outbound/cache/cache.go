// Package cache stores verification challenges in Redis as one JSON value per
// identity. Besides the gate's own lazy expiry, each key carries a safety TTL
// so abandoned challenges cannot accumulate.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/gate/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "gate:challenge:"

// safetyMargin keeps the key alive slightly past the challenge window so an
// attempt just past expiry still finds the record and reports Expired instead
// of NoChallenge.
const safetyMargin = time.Minute

type challengeDoc struct {
	ID        int64     `json:"id"`
	Identity  string    `json:"identity"`
	CodeHash  string    `json:"code_hash"`
	TokenHash string    `json:"token_hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Pending   bool      `json:"pending"`
}

type Cache struct {
	client *redis.Client
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

func NewCache(client *redis.Client, clk clock.Clocker, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, clock: clk, ins: ins}
}

func (s *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("gate.outbound.cache").Start(ctx, name)
}

func (s *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// UpsertChallenge stores the challenge under the identity's key. A single SET
// replaces any previous challenge atomically.
func (s *Cache) UpsertChallenge(ctx context.Context, ch entity.Challenge) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertChallenge")
	defer func() { s.endSpan(span, err) }()

	payload, err := json.Marshal(challengeDoc{
		ID:        ch.ID,
		Identity:  ch.Identity,
		CodeHash:  ch.CodeHash,
		TokenHash: ch.TokenHash,
		ExpiresAt: ch.ExpiresAt,
		Pending:   ch.Pending,
	})
	if err != nil {
		return err
	}

	ttl := ch.ExpiresAt.Sub(s.clock.Now()) + safetyMargin
	if ttl <= 0 {
		ttl = safetyMargin
	}

	err = s.client.Set(ctx, keyPrefix+ch.Identity, payload, ttl).Err()
	return err
}

// GetChallengeByIdentity returns the stored challenge or goerror.ErrNotFound.
func (s *Cache) GetChallengeByIdentity(ctx context.Context, identity string) (_ *entity.Challenge, err error) {
	ctx, span := s.startSpan(ctx, "GetChallengeByIdentity")
	defer func() { s.endSpan(span, err) }()

	payload, err := s.client.Get(ctx, keyPrefix+identity).Bytes()
	if errors.Is(err, redis.Nil) {
		err = goerror.ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	var doc challengeDoc
	if err = json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}

	return &entity.Challenge{
		ID:        doc.ID,
		Identity:  doc.Identity,
		CodeHash:  doc.CodeHash,
		TokenHash: doc.TokenHash,
		ExpiresAt: doc.ExpiresAt,
		Pending:   doc.Pending,
	}, nil
}

// DeleteChallenge removes the identity's challenge. Deleting a missing key is
// not an error.
func (s *Cache) DeleteChallenge(ctx context.Context, identity string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteChallenge")
	defer func() { s.endSpan(span, err) }()

	err = s.client.Del(ctx, keyPrefix+identity).Err()
	return err
}

// ConsumeChallenge removes the challenge with a single GETDEL so exactly one
// concurrent verifier observes the pending record.
func (s *Cache) ConsumeChallenge(ctx context.Context, identity string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeChallenge")
	defer func() { s.endSpan(span, err) }()

	payload, err := s.client.GetDel(ctx, keyPrefix+identity).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var doc challengeDoc
	if err = json.Unmarshal(payload, &doc); err != nil {
		return false, err
	}

	return doc.Pending, nil
}
