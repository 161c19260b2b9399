// Package postgres provides a PostgreSQL-backed implementation of
// [voiceprint.Store] using the pgvector extension.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/wanhafiz/suara/internal/voiceprint"
)

var _ voiceprint.Store = (*Store)(nil)

const ddlVoiceprints = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS voiceprints (
    ic          TEXT         PRIMARY KEY,
    embedding   vector(%d)   NOT NULL,
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

// Store persists voiceprints in PostgreSQL. All operations are safe for
// concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore establishes a connection pool to the database at dsn, registers
// pgvector types on every connection, and ensures the schema exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("voiceprint store: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("voiceprint store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("voiceprint store: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, fmt.Sprintf(ddlVoiceprints, voiceprint.EmbeddingDim)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("voiceprint store: migrate: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Save implements voiceprint.Store.
func (s *Store) Save(ctx context.Context, ic string, embedding []float32) error {
	const q = `
INSERT INTO voiceprints (ic, embedding, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (ic) DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = now()`

	if _, err := s.pool.Exec(ctx, q, ic, pgvector.NewVector(embedding)); err != nil {
		return fmt.Errorf("voiceprint store: save %s: %w", ic, err)
	}
	return nil
}

// Load implements voiceprint.Store.
func (s *Store) Load(ctx context.Context, ic string) ([]float32, error) {
	const q = `SELECT embedding FROM voiceprints WHERE ic = $1`

	var vec pgvector.Vector
	err := s.pool.QueryRow(ctx, q, ic).Scan(&vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, voiceprint.ErrNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("voiceprint store: load %s: %w", ic, err)
	}
	return vec.Slice(), nil
}

// Ping reports backend reachability for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all connections held by the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
