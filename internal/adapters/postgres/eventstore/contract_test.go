package eventstore

import (
	"testing"
	"time"

	"github.com/denhac/membership-sync/internal/adapters/contracttest"
	memclock "github.com/denhac/membership-sync/internal/adapters/memory/clock"
	"github.com/denhac/membership-sync/internal/adapters/postgres/testutil"
	eventstoreport "github.com/denhac/membership-sync/internal/ports/out/eventstore"
)

func TestContract_PostgresEventStore(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunEventStore(t, func(t *testing.T) (eventstoreport.Store, func()) {
		t.Helper()
		return NewStore(pool, memclock.NewManualClock(time.Unix(1000, 0))), nil
	})
}
