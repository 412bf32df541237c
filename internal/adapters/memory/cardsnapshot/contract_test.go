package cardsnapshot

import (
	"testing"

	"github.com/denhac/membership-sync/internal/adapters/contracttest"
	cardsnapshotport "github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
)

func TestContract_CardSnapshotStore(t *testing.T) {
	contracttest.RunCardSnapshotStore(t, func(t *testing.T) (cardsnapshotport.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}
