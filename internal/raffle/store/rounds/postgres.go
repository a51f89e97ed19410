package rounds

import (
	"context"
	"database/sql"
	"fmt"

	"raffle/internal/raffle/models"
	"raffle/pkg/platform/sentinel"
	txcontext "raffle/pkg/platform/tx"
)

// Postgres persists completed rounds.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema returns the DDL for the completed_rounds table.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS completed_rounds (
    round_id     UUID PRIMARY KEY,
    request_id   UUID NOT NULL UNIQUE,
    winner       TEXT NOT NULL,
    prize        NUMERIC(20, 0) NOT NULL,
    participants INTEGER NOT NULL,
    opened_at    TIMESTAMPTZ NOT NULL,
    decided_at   TIMESTAMPTZ NOT NULL
);`
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Postgres) Record(ctx context.Context, rec models.CompletedRound) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO completed_rounds (round_id, request_id, winner, prize, participants, opened_at, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.RoundID, rec.RequestID, rec.Winner, rec.Prize, rec.Participants, rec.OpenedAt, rec.DecidedAt)
	if err != nil {
		return fmt.Errorf("record round %s: %w", rec.RoundID, err)
	}
	return nil
}

func (s *Postgres) Last(ctx context.Context) (models.CompletedRound, error) {
	var rec models.CompletedRound
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT round_id, request_id, winner, prize, participants, opened_at, decided_at
		FROM completed_rounds
		ORDER BY decided_at DESC
		LIMIT 1`).Scan(&rec.RoundID, &rec.RequestID, &rec.Winner, &rec.Prize, &rec.Participants, &rec.OpenedAt, &rec.DecidedAt)
	if err == sql.ErrNoRows {
		return models.CompletedRound{}, sentinel.ErrNotFound
	}
	if err != nil {
		return models.CompletedRound{}, fmt.Errorf("last completed round: %w", err)
	}
	return rec, nil
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM completed_rounds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count completed rounds: %w", err)
	}
	return count, nil
}
