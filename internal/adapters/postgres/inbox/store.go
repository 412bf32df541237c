package inbox

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/denhac/membership-sync/internal/ports/out/inbox"
)

// Store is a Postgres implementation of inbox.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, fp inbox.Fingerprint) (inbox.Record, bool, error) {
	if s.pool == nil {
		return inbox.Record{}, false, errors.New("nil postgres pool")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT topic, status_code, created_at
		FROM webhook_inbox
		WHERE source = $1
		  AND delivery_id = $2
	`, fp.Source, fp.DeliveryID)
	var rec inbox.Record
	if err := row.Scan(&rec.Topic, &rec.StatusCode, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inbox.Record{}, false, nil
		}
		return inbox.Record{}, false, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp inbox.Fingerprint, rec inbox.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO webhook_inbox (
			source,
			delivery_id,
			topic,
			status_code,
			created_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source, delivery_id)
		DO UPDATE SET
			topic = EXCLUDED.topic,
			status_code = EXCLUDED.status_code,
			created_at = EXCLUDED.created_at
	`,
		fp.Source,
		fp.DeliveryID,
		rec.Topic,
		rec.StatusCode,
		createdAt.UTC(),
	)
	return err
}
