package legacymembers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/denhac/membership-sync/internal/ports/out/legacymembers"
)

// Source reads the legacy PayPal-era member table. Nothing in this module writes it.
type Source struct {
	pool *pgxpool.Pool
}

func NewSource(pool *pgxpool.Pool) *Source {
	return &Source{pool: pool}
}

func (s *Source) List(ctx context.Context) ([]legacymembers.Member, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT paypal_id, first_name, last_name, email, active, cards, slack_id
		FROM legacy_members
		ORDER BY paypal_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]legacymembers.Member, 0)
	for rows.Next() {
		var m legacymembers.Member
		if err := rows.Scan(&m.PaypalID, &m.FirstName, &m.LastName, &m.Email, &m.Active, &m.Cards, &m.SlackID); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
