package waiverrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/ports/out/waiverrepo"
)

// Repo is a Postgres implementation of waiverrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const selectWaiver = `
	SELECT id, template_id, template_version, status, email, first_name, last_name, customer_id
	FROM waivers
`

func (r *Repo) Upsert(ctx context.Context, w domain.Waiver) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	identity := w.Identity()
	var customerID *int64
	if w.CustomerID != nil {
		v := int64(*w.CustomerID)
		customerID = &v
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO waivers (
			id,
			template_id,
			template_version,
			status,
			email,
			first_name,
			last_name,
			customer_id,
			identity_first,
			identity_last,
			identity_email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			template_version = EXCLUDED.template_version,
			status = EXCLUDED.status,
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			customer_id = COALESCE(waivers.customer_id, EXCLUDED.customer_id),
			identity_first = EXCLUDED.identity_first,
			identity_last = EXCLUDED.identity_last,
			identity_email = EXCLUDED.identity_email
	`,
		string(w.ID),
		w.TemplateID,
		w.TemplateVersion,
		w.Status,
		w.Email,
		w.FirstName,
		w.LastName,
		customerID,
		identity.FirstName,
		identity.LastName,
		identity.Email,
	)
	return err
}

func (r *Repo) Assign(ctx context.Context, id domain.WaiverID, customer domain.CustomerID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	ct, err := r.pool.Exec(ctx, `UPDATE waivers SET customer_id = $2 WHERE id = $1`, string(id), int64(customer))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return waiverrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id domain.WaiverID) (domain.Waiver, error) {
	if r.pool == nil {
		return domain.Waiver{}, errors.New("nil postgres pool")
	}
	return scanWaiver(r.pool.QueryRow(ctx, selectWaiver+` WHERE id = $1`, string(id)))
}

func (r *Repo) ListUnassignedByIdentity(ctx context.Context, id domain.Identity) ([]domain.Waiver, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	if !id.Complete() {
		return []domain.Waiver{}, nil
	}
	rows, err := r.pool.Query(ctx, selectWaiver+`
		WHERE customer_id IS NULL
		  AND status = $1
		  AND identity_first = $2
		  AND identity_last = $3
		  AND identity_email = $4
		ORDER BY id ASC
	`, domain.WaiverStatusAccepted, id.FirstName, id.LastName, id.Email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Waiver, 0)
	for rows.Next() {
		w, err := scanWaiver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanWaiver(row interface {
	Scan(dest ...any) error
}) (domain.Waiver, error) {
	var (
		id         string
		customerID *int64
		w          domain.Waiver
	)
	if err := row.Scan(&id, &w.TemplateID, &w.TemplateVersion, &w.Status, &w.Email, &w.FirstName, &w.LastName, &customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Waiver{}, waiverrepo.ErrNotFound
		}
		return domain.Waiver{}, err
	}
	w.ID = domain.WaiverID(id)
	if customerID != nil {
		c := domain.CustomerID(*customerID)
		w.CustomerID = &c
	}
	return w, nil
}
