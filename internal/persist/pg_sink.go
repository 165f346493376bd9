package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSink stores one jsonb row per collection in the snapshots table:
//
//	CREATE TABLE IF NOT EXISTS snapshots (
//	    collection text PRIMARY KEY,
//	    payload    jsonb NOT NULL,
//	    updated_at timestamptz NOT NULL DEFAULT now()
//	);
type PgSink struct {
	pool *pgxpool.Pool
}

func NewPgSink(pool *pgxpool.Pool) *PgSink {
	return &PgSink{pool: pool}
}

var _ Sink = (*PgSink)(nil)

func (s *PgSink) Save(ctx context.Context, collection string, payload []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO snapshots (collection, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (collection) DO UPDATE
		SET payload = EXCLUDED.payload,
		    updated_at = now()
	`, collection, payload)
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", collection, err)
	}
	return nil
}

func (s *PgSink) Load(ctx context.Context, collection string) ([]byte, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload
		FROM snapshots
		WHERE collection = $1
	`, collection).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot %s: %w", collection, err)
	}
	return payload, nil
}
