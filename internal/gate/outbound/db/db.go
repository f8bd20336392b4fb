// Package db stores verification challenges in PostgreSQL, one row per
// identity.
package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpgate/internal/gate/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("gate.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// UpsertChallenge inserts the challenge, replacing any existing row for the
// same identity.
func (s *DB) UpsertChallenge(ctx context.Context, ch entity.Challenge) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertChallenge")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO gate_challenges (id, identity, code_hash, token_hash, expires_at, pending)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (identity) DO UPDATE SET
			code_hash  = EXCLUDED.code_hash,
			token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			pending    = EXCLUDED.pending,
			updated_at = NOW()`

	_, err = s.conn.Exec(ctx, query, ch.ID, ch.Identity, ch.CodeHash, ch.TokenHash, ch.ExpiresAt, ch.Pending)
	err = s.mapError(err)
	return err
}

// GetChallengeByIdentity returns the stored challenge or goerror.ErrNotFound.
func (s *DB) GetChallengeByIdentity(ctx context.Context, identity string) (_ *entity.Challenge, err error) {
	ctx, span := s.startSpan(ctx, "GetChallengeByIdentity")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, identity, code_hash, token_hash, expires_at, pending
		FROM gate_challenges
		WHERE identity = $1`

	var ch entity.Challenge
	err = s.conn.QueryRow(ctx, query, identity).
		Scan(&ch.ID, &ch.Identity, &ch.CodeHash, &ch.TokenHash, &ch.ExpiresAt, &ch.Pending)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return &ch, nil
}

// DeleteChallenge removes the identity's challenge. Deleting a missing row is
// not an error.
func (s *DB) DeleteChallenge(ctx context.Context, identity string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteChallenge")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `DELETE FROM gate_challenges WHERE identity = $1`, identity)
	err = s.mapError(err)
	return err
}

// ConsumeChallenge removes the pending challenge and reports whether this call
// was the one that removed it. The single DELETE makes the consume atomic
// across concurrent verifiers.
func (s *DB) ConsumeChallenge(ctx context.Context, identity string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeChallenge")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM gate_challenges WHERE identity = $1 AND pending`, identity)
	if err != nil {
		err = s.mapError(err)
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}
