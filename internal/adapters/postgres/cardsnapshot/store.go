package cardsnapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
)

// Store is a Postgres implementation of cardsnapshot.Store. Every report is kept; Latest
// reads the newest.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type cardHolderRow struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CardNum   string `json:"card_num"`
}

func (s *Store) Save(ctx context.Context, snap cardsnapshot.Snapshot) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	rows := make([]cardHolderRow, 0, len(snap.CardHolders))
	for _, h := range snap.CardHolders {
		rows = append(rows, cardHolderRow(h))
	}
	body, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	takenAt := snap.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now()
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO card_holder_snapshots (card_holders, taken_at) VALUES ($1, $2)
	`, body, takenAt.UTC())
	return err
}

func (s *Store) Latest(ctx context.Context) (cardsnapshot.Snapshot, bool, error) {
	if s.pool == nil {
		return cardsnapshot.Snapshot{}, false, errors.New("nil postgres pool")
	}
	var (
		body    []byte
		takenAt time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT card_holders, taken_at
		FROM card_holder_snapshots
		ORDER BY taken_at DESC, id DESC
		LIMIT 1
	`).Scan(&body, &takenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cardsnapshot.Snapshot{}, false, nil
		}
		return cardsnapshot.Snapshot{}, false, err
	}
	var rows []cardHolderRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return cardsnapshot.Snapshot{}, false, err
	}
	snap := cardsnapshot.Snapshot{TakenAt: takenAt.UTC(), CardHolders: make([]cardsnapshot.CardHolder, 0, len(rows))}
	for _, r := range rows {
		snap.CardHolders = append(snap.CardHolders, cardsnapshot.CardHolder(r))
	}
	return snap, true, nil
}
