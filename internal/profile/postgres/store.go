// Package postgres provides a PostgreSQL-backed implementation of
// [profile.Store].
//
// A single [pgxpool.Pool] serves both the users table and the financial-aid
// table. Lookup failures are logged and answered with the profile package
// defaults; a database outage degrades voice turns, it never fails them.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wanhafiz/suara/internal/profile"
)

var _ profile.Store = (*Store)(nil)

const ddlProfiles = `
CREATE TABLE IF NOT EXISTS users (
    ic                 TEXT         PRIMARY KEY,
    name               TEXT         NOT NULL DEFAULT 'User',
    preferred_language TEXT         NOT NULL DEFAULT 'ms',
    phone              TEXT         NOT NULL DEFAULT '',
    email              TEXT         NOT NULL DEFAULT '',
    state              TEXT         NOT NULL DEFAULT '',
    monthly_income     DOUBLE PRECISION NOT NULL DEFAULT 0,
    employment_status  TEXT         NOT NULL DEFAULT '',
    dependents         INT          NOT NULL DEFAULT 0,
    household_size     INT          NOT NULL DEFAULT 1,
    created_at         TIMESTAMPTZ  NOT NULL DEFAULT now(),
    updated_at         TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS financial_aid (
    ic                      TEXT         PRIMARY KEY REFERENCES users (ic),
    str_eligible            BOOLEAN      NOT NULL DEFAULT false,
    str_next_pay_amount     DOUBLE PRECISION NOT NULL DEFAULT 0,
    str_next_pay_date       TEXT         NOT NULL DEFAULT '',
    str_remaining_cycles    INT          NOT NULL DEFAULT 0,
    mykasih_eligible        BOOLEAN      NOT NULL DEFAULT false,
    mykasih_balance         DOUBLE PRECISION NOT NULL DEFAULT 0,
    mykasih_expire_date     TEXT         NOT NULL DEFAULT '',
    updated_at              TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

// Store resolves profiles and aid snapshots from PostgreSQL. All operations
// are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewStore establishes a connection pool to the database at dsn and ensures
// the schema exists.
func NewStore(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("profile store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("profile store: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, ddlProfiles); err != nil {
		pool.Close()
		return nil, fmt.Errorf("profile store: migrate: %w", err)
	}

	return &Store{pool: pool, log: log}, nil
}

// Profile implements profile.Store. Missing users and query failures both
// resolve to [profile.DefaultProfile].
func (s *Store) Profile(ctx context.Context, ic string) profile.Profile {
	const q = `
SELECT name, preferred_language, phone, email, state,
       monthly_income, employment_status, dependents, household_size
FROM users WHERE ic = $1`

	p := profile.Profile{IC: ic}
	err := s.pool.QueryRow(ctx, q, ic).Scan(
		&p.Name, &p.PreferredLanguage, &p.Phone, &p.Email, &p.State,
		&p.MonthlyIncome, &p.EmploymentStatus, &p.Dependents, &p.HouseholdSize,
	)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn("profile lookup failed, serving defaults",
				slog.String("ic", ic), slog.Any("error", err))
		}
		return profile.DefaultProfile(ic)
	}
	return p
}

// Aid implements profile.Store. Missing records and query failures both
// resolve to [profile.DefaultAid].
func (s *Store) Aid(ctx context.Context, ic string) profile.FinancialAid {
	const q = `
SELECT str_eligible, str_next_pay_amount, str_next_pay_date, str_remaining_cycles,
       mykasih_eligible, mykasih_balance, mykasih_expire_date
FROM financial_aid WHERE ic = $1`

	var aid profile.FinancialAid
	err := s.pool.QueryRow(ctx, q, ic).Scan(
		&aid.STREligible, &aid.STRNextPayAmount, &aid.STRNextPayDate, &aid.STRRemainingCycles,
		&aid.MyKasihEligible, &aid.MyKasihBalance, &aid.MyKasihExpireDate,
	)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Warn("aid lookup failed, serving defaults",
				slog.String("ic", ic), slog.Any("error", err))
		}
		return profile.DefaultAid()
	}
	return aid
}

// Ping reports backend reachability for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases all connections held by the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
