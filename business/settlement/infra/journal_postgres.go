package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fd1az/swap-settler/business/settlement/domain"
	"github.com/fd1az/swap-settler/internal/apperror"
)

const schema = `
CREATE TABLE IF NOT EXISTS settlements (
	id            TEXT PRIMARY KEY,
	chain_id      BIGINT NOT NULL,
	taker         TEXT NOT NULL,
	sell_token    TEXT NOT NULL,
	buy_token     TEXT NOT NULL,
	sell_amount   NUMERIC NOT NULL,
	state         TEXT NOT NULL,
	approval_tx   TEXT,
	signed        BOOLEAN NOT NULL,
	buy_amount    NUMERIC,
	tx_hash       TEXT,
	failure_stage TEXT,
	failure_code  TEXT,
	failure       TEXT,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS settlement_transitions (
	settlement_id TEXT NOT NULL REFERENCES settlements (id),
	seq           INT NOT NULL,
	from_state    TEXT NOT NULL,
	to_state      TEXT NOT NULL,
	at            TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (settlement_id, seq)
);`

// pgConn is the subset of *pgxpool.Pool the journal uses.
type pgConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Close()
}

// PostgresJournal stores settlements and their transitions in Postgres.
type PostgresJournal struct {
	db pgConn
}

// NewPostgresJournal connects to dsn and creates the tables if missing.
func NewPostgresJournal(ctx context.Context, dsn string) (*PostgresJournal, error) {
	if dsn == "" {
		return nil, apperror.Validation(apperror.CodeRequiredField, "journal.dsn")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperror.Internal(apperror.CodeJournalWriteFailed, "connect", err)
	}

	j := &PostgresJournal{db: pool}
	if err := j.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return j, nil
}

// EnsureSchema creates the journal tables.
func (j *PostgresJournal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.Exec(ctx, schema); err != nil {
		return apperror.Internal(apperror.CodeJournalWriteFailed, "create schema", err)
	}
	return nil
}

// Record inserts s and its transitions in one batch. Re-recording the same
// settlement is a no-op.
func (j *PostgresJournal) Record(ctx context.Context, s *domain.Settlement) error {
	e := NewJournalEntry(s)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO settlements (
			id, chain_id, taker, sell_token, buy_token, sell_amount, state, approval_tx, signed,
			buy_amount, tx_hash, failure_stage, failure_code, failure, started_at, finished_at, duration_ms
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO NOTHING
	`,
		e.ID,
		int64(e.ChainID),
		e.Taker,
		e.SellToken,
		e.BuyToken,
		e.SellAmount,
		e.State,
		nullable(e.ApprovalTx),
		e.Signed,
		nullable(e.BuyAmount),
		nullable(e.TxHash),
		nullable(e.FailureStage),
		nullable(e.FailureCode),
		nullable(e.Failure),
		e.StartedAt,
		e.FinishedAt,
		e.DurationMs,
	)
	for i, t := range e.History {
		batch.Queue(`
			INSERT INTO settlement_transitions (settlement_id, seq, from_state, to_state, at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (settlement_id, seq) DO NOTHING
		`, e.ID, i, t.From.String(), t.To.String(), t.At)
	}

	br := j.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return apperror.Internal(apperror.CodeJournalWriteFailed, fmt.Sprintf("%s statement %d", e.ID, i), err)
		}
	}
	return nil
}

// Close closes the pool.
func (j *PostgresJournal) Close() error {
	j.db.Close()
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

