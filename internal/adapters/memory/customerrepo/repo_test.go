package customerrepo

import (
	"context"
	"testing"

	"github.com/denhac/membership-sync/internal/domain"
)

func TestRepo_ReturnsClones(t *testing.T) {
	t.Parallel()

	r := NewRepo()
	c := domain.Customer{ID: 1, FirstName: "Ada", Cards: []string{"123"}}
	if err := r.Upsert(context.Background(), c); err != nil {
		t.Fatalf("Upsert() err=%v", err)
	}
	got, err := r.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID() err=%v", err)
	}
	got.Cards[0] = "999"

	again, _ := r.GetByID(context.Background(), 1)
	if again.Cards[0] != "123" {
		t.Fatalf("stored card mutated through returned value: %v", again.Cards)
	}
}
