package cardrepo

import (
	"testing"

	"github.com/denhac/membership-sync/internal/adapters/contracttest"
	"github.com/denhac/membership-sync/internal/adapters/postgres/testutil"
	cardrepoport "github.com/denhac/membership-sync/internal/ports/out/cardrepo"
)

func TestContract_PostgresCardRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunCardRepo(t, func(t *testing.T) (cardrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
