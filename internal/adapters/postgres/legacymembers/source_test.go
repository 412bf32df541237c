package legacymembers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/denhac/membership-sync/internal/adapters/postgres/testutil"
)

func TestSource_ListReadsRows(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)
	ctx := t.Context()

	id := "PP-" + uuid.NewString()
	if _, err := pool.Exec(ctx, `
		INSERT INTO legacy_members (paypal_id, first_name, last_name, email, active, cards, slack_id)
		VALUES ($1, 'Old', 'Timer', 'Old@Example.com', true, ARRAY['00042'], 'U0OLD')
	`, id); err != nil {
		t.Fatalf("seed: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM legacy_members WHERE paypal_id = $1`, id)
	})

	members, err := NewSource(pool).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, m := range members {
		if m.PaypalID != id {
			continue
		}
		if !m.Active || m.SlackID != "U0OLD" || len(m.Cards) != 1 || m.Cards[0] != "00042" {
			t.Fatalf("member=%+v", m)
		}
		return
	}
	t.Fatalf("seeded member %s not listed", id)
}
