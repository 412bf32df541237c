package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/denhac/membership-sync/internal/adapters/postgres"
	"github.com/denhac/membership-sync/internal/domain"
	clockport "github.com/denhac/membership-sync/internal/ports/out/clock"
	"github.com/denhac/membership-sync/internal/ports/out/eventstore"
)

// Store is a Postgres implementation of eventstore.Store. Payloads are stored as JSONB and
// decoded once on replay.
type Store struct {
	pool *pgxpool.Pool
	clk  clockport.Clock
}

func NewStore(pool *pgxpool.Pool, clk clockport.Clock) *Store {
	return &Store{pool: pool, clk: clk}
}

func (s *Store) Append(ctx context.Context, stream string, expectedSeq int64, events ...domain.Event) ([]eventstore.StoredEvent, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	now := s.clk.Now().UTC()
	out := make([]eventstore.StoredEvent, 0, len(events))

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var current int64
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(seq), 0) FROM stored_events WHERE stream = $1
		`, stream).Scan(&current); err != nil {
			return err
		}
		if current != expectedSeq {
			return eventstore.ErrConcurrentAppend
		}

		for i, ev := range events {
			typ, payload, err := domain.EncodeEvent(ev)
			if err != nil {
				return err
			}
			se := eventstore.StoredEvent{
				ID:         uuid.NewString(),
				Stream:     stream,
				Seq:        expectedSeq + int64(i) + 1,
				Event:      ev,
				RecordedAt: now,
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO stored_events (id, stream, seq, event_type, payload, recorded_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, se.ID, se.Stream, se.Seq, typ, payload, se.RecordedAt)
			if err != nil {
				if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
					return eventstore.ErrConcurrentAppend
				}
				return err
			}
			out = append(out, se)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Replay(ctx context.Context, stream string) ([]eventstore.StoredEvent, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, seq, event_type, payload, recorded_at
		FROM stored_events
		WHERE stream = $1
		ORDER BY seq ASC
	`, stream)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]eventstore.StoredEvent, 0)
	for rows.Next() {
		var (
			id         uuid.UUID
			seq        int64
			typ        string
			payload    []byte
			recordedAt time.Time
		)
		if err := rows.Scan(&id, &seq, &typ, &payload, &recordedAt); err != nil {
			return nil, err
		}
		ev, err := domain.DecodeEvent(typ, payload)
		if err != nil {
			return nil, fmt.Errorf("decode %s#%d: %w", stream, seq, err)
		}
		out = append(out, eventstore.StoredEvent{
			ID:         id.String(),
			Stream:     stream,
			Seq:        seq,
			Event:      ev,
			RecordedAt: recordedAt.UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Dispatched(ctx context.Context, stream string) (int64, error) {
	if s.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	var seq int64
	err := s.pool.QueryRow(ctx, `
		SELECT seq FROM stream_dispatch WHERE stream = $1
	`, stream).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return seq, err
}

func (s *Store) MarkDispatched(ctx context.Context, stream string, seq int64) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO stream_dispatch (stream, seq, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (stream) DO UPDATE
		SET seq = GREATEST(stream_dispatch.seq, EXCLUDED.seq),
		    updated_at = EXCLUDED.updated_at
	`, stream, seq, s.clk.Now().UTC())
	return err
}
