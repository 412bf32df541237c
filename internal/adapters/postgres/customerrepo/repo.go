package customerrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/customerrepo"
)

// Repo is a Postgres implementation of customerrepo.Repository.
//
// The normalized identity is stored next to the profile so FindByIdentity is a plain
// equality lookup.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectCustomer = `
	SELECT id, first_name, last_name, email, slack_id, member, capabilities, cards, deleted_at, updated_at
	FROM customers
`

func (r *Repo) Upsert(ctx context.Context, c domain.Customer) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	identity := c.Identity()
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (
			id,
			first_name,
			last_name,
			email,
			slack_id,
			member,
			capabilities,
			cards,
			identity_first,
			identity_last,
			identity_email,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			slack_id = EXCLUDED.slack_id,
			capabilities = EXCLUDED.capabilities,
			cards = EXCLUDED.cards,
			identity_first = EXCLUDED.identity_first,
			identity_last = EXCLUDED.identity_last,
			identity_email = EXCLUDED.identity_email,
			deleted_at = NULL,
			updated_at = EXCLUDED.updated_at
	`,
		int64(c.ID),
		c.FirstName,
		c.LastName,
		c.Email,
		string(c.SlackID),
		c.Member,
		nonNil(c.Capabilities),
		nonNil(c.Cards),
		identity.FirstName,
		identity.LastName,
		identity.Email,
		updatedAt.UTC(),
	)
	return err
}

func (r *Repo) SetMember(ctx context.Context, id domain.CustomerID, member bool) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `UPDATE customers SET member = $2 WHERE id = $1`, int64(id), member)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return customerrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) SoftDelete(ctx context.Context, id domain.CustomerID, at time.Time) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `UPDATE customers SET deleted_at = $2 WHERE id = $1`, int64(id), at.UTC())
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return customerrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.CustomerID) (domain.Customer, error) {
	if r.pool == nil {
		return domain.Customer{}, errors.New("nil postgres pool")
	}
	row := r.pool.QueryRow(ctx, selectCustomer+` WHERE id = $1`, int64(id))
	return scanCustomer(row)
}

func (r *Repo) List(ctx context.Context, includeDeleted bool) ([]domain.Customer, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	where := ""
	if !includeDeleted {
		where = " WHERE deleted_at IS NULL"
	}
	rows, err := r.pool.Query(ctx, selectCustomer+where+` ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *Repo) FindByIdentity(ctx context.Context, id domain.Identity) ([]domain.Customer, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	if !id.Complete() {
		return []domain.Customer{}, nil
	}
	rows, err := r.pool.Query(ctx, selectCustomer+`
		WHERE deleted_at IS NULL
		  AND identity_first = $1
		  AND identity_last = $2
		  AND identity_email = $3
		ORDER BY id ASC
	`, id.FirstName, id.LastName, id.Email)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// --- helpers ---

func collect(rows pgx.Rows) ([]domain.Customer, error) {
	defer rows.Close()
	out := make([]domain.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
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

func scanCustomer(row interface {
	Scan(dest ...any) error
}) (domain.Customer, error) {
	var (
		id           int64
		slackID      string
		capabilities []string
		cards        []string
		deletedAt    *time.Time
		c            domain.Customer
	)
	if err := row.Scan(
		&id,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&slackID,
		&c.Member,
		&capabilities,
		&cards,
		&deletedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Customer{}, customerrepo.ErrNotFound
		}
		return domain.Customer{}, err
	}
	c.ID = domain.CustomerID(id)
	c.SlackID = domain.SlackID(slackID)
	c.Capabilities = capabilities
	c.Cards = cards
	if deletedAt != nil {
		v := deletedAt.UTC()
		c.DeletedAt = &v
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
