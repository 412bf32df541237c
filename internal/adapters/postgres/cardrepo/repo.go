package cardrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/cardrepo"
)

// Repo is a Postgres implementation of cardrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Upsert(ctx context.Context, c domain.Card) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cards (number, customer_id, active, member_has_card, ever_activated, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (number) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			active = EXCLUDED.active,
			member_has_card = EXCLUDED.member_has_card,
			ever_activated = cards.ever_activated OR EXCLUDED.ever_activated,
			updated_at = EXCLUDED.updated_at
	`,
		domain.NormalizeCardNumber(c.Number),
		int64(c.CustomerID),
		c.Active,
		c.MemberHasCard,
		c.EverActivated || c.Active,
		updatedAt.UTC(),
	)
	return err
}

func (r *Repo) SetActiveForCustomer(ctx context.Context, id domain.CustomerID, active bool) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE cards
		SET active = $2,
		    ever_activated = ever_activated OR $2
		WHERE customer_id = $1
	`, int64(id), active)
	return err
}

func (r *Repo) ListByCustomer(ctx context.Context, id domain.CustomerID) ([]domain.Card, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT number, customer_id, active, member_has_card, ever_activated, updated_at
		FROM cards
		WHERE customer_id = $1
		ORDER BY number ASC
	`, int64(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, number string) (domain.Card, error) {
	if r.pool == nil {
		return domain.Card{}, errors.New("nil postgres pool")
	}
	return scanCard(r.pool.QueryRow(ctx, `
		SELECT number, customer_id, active, member_has_card, ever_activated, updated_at
		FROM cards
		WHERE number = $1
	`, domain.NormalizeCardNumber(number)))
}

func scanCard(row interface {
	Scan(dest ...any) error
}) (domain.Card, error) {
	var (
		customerID int64
		c          domain.Card
	)
	if err := row.Scan(&c.Number, &customerID, &c.Active, &c.MemberHasCard, &c.EverActivated, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Card{}, cardrepo.ErrNotFound
		}
		return domain.Card{}, err
	}
	c.CustomerID = domain.CustomerID(customerID)
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
