package contracttest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/denhac/membership-sync/internal/domain"
	cardrepoport "github.com/denhac/membership-sync/internal/ports/out/cardrepo"
	cardsnapshotport "github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
	customerrepoport "github.com/denhac/membership-sync/internal/ports/out/customerrepo"
	eventstoreport "github.com/denhac/membership-sync/internal/ports/out/eventstore"
	inboxport "github.com/denhac/membership-sync/internal/ports/out/inbox"
	waiverrepoport "github.com/denhac/membership-sync/internal/ports/out/waiverrepo"
)

type CleanupFunc = func()

type EventStoreFactory func(t *testing.T) (eventstoreport.Store, CleanupFunc)
type CustomerRepoFactory func(t *testing.T) (customerrepoport.Repository, CleanupFunc)
type WaiverRepoFactory func(t *testing.T) (waiverrepoport.Repository, CleanupFunc)
type CardRepoFactory func(t *testing.T) (cardrepoport.Repository, CleanupFunc)
type CardSnapshotFactory func(t *testing.T) (cardsnapshotport.Store, CleanupFunc)
type InboxStoreFactory func(t *testing.T) (inboxport.Store, CleanupFunc)

// uniqueID keeps shared databases from colliding across runs.
func uniqueID() int64 {
	return int64(uuid.New().ID()) + 1_000_000
}

func RunInboxStore(t *testing.T, newStore InboxStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := inboxport.Fingerprint{Source: "woocommerce", DeliveryID: uuid.NewString()}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}
	rec := inboxport.Record{
		Topic:      "subscription.updated",
		StatusCode: 202,
		CreatedAt:  time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if got.Topic != rec.Topic || got.StatusCode != 202 || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Same delivery id from another source is a different delivery.
	other := fp
	other.Source = "waivers"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("expected other source to be unseen, ok=%v err=%v", ok, err)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.StatusCode = 200
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || got.StatusCode != 200 {
		t.Fatalf("expected overwritten record, got ok=%v err=%v rec=%+v", ok, err, got)
	}
}

func RunEventStore(t *testing.T, newStore EventStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	id := domain.CustomerID(uniqueID())
	stream := id.StreamID()

	got, err := store.Replay(ctx, stream)
	if err != nil {
		t.Fatalf("Replay empty: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty stream, got %d events", len(got))
	}

	first := []domain.Event{
		domain.SubscriptionCreated{Subscription: domain.SubscriptionFacts{ID: 1, CustomerID: id, Status: domain.StatusNeedIDCheck}},
		domain.SubscriptionUpdated{Subscription: domain.SubscriptionFacts{ID: 1, CustomerID: id, Status: domain.StatusActive}},
		domain.MembershipActivated{CustomerID: id},
	}
	stored, err := store.Append(ctx, stream, 0, first...)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(stored) != 3 || stored[0].Seq != 1 || stored[2].Seq != 3 || stored[0].ID == "" {
		t.Fatalf("unexpected stored events: %+v", stored)
	}

	// Stale writers lose.
	_, err = store.Append(ctx, stream, 0, domain.MembershipDeactivated{CustomerID: id})
	if !errors.Is(err, eventstoreport.ErrConcurrentAppend) {
		t.Fatalf("stale Append err=%v, want ErrConcurrentAppend", err)
	}

	if _, err := store.Append(ctx, stream, 3, domain.WaiverAssignedToCustomer{WaiverID: "w-1", CustomerID: id}); err != nil {
		t.Fatalf("Append second batch: %v", err)
	}

	got, err = store.Replay(ctx, stream)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("replayed %d events, want 4", len(got))
	}
	wantTypes := []string{
		domain.TypeSubscriptionCreated,
		domain.TypeSubscriptionUpdated,
		domain.TypeMembershipActivated,
		domain.TypeWaiverAssignedToCustomer,
	}
	for i, ev := range got {
		if ev.Event.EventType() != wantTypes[i] || ev.Seq != int64(i+1) || ev.Stream != stream {
			t.Fatalf("event %d = %+v, want type %s seq %d", i, ev, wantTypes[i], i+1)
		}
	}
	if upd, ok := got[1].Event.(domain.SubscriptionUpdated); !ok || upd.Subscription.Status != domain.StatusActive {
		t.Fatalf("decoded event = %#v", got[1].Event)
	}

	// Streams are independent.
	otherStream := domain.CustomerID(uniqueID()).StreamID()
	if _, err := store.Append(ctx, otherStream, 0, domain.MembershipActivated{CustomerID: id}); err != nil {
		t.Fatalf("Append other stream: %v", err)
	}

	// Dispatch cursor starts at zero and only moves forward.
	if seq, err := store.Dispatched(ctx, stream); err != nil || seq != 0 {
		t.Fatalf("Dispatched fresh=%d err=%v, want 0", seq, err)
	}
	if err := store.MarkDispatched(ctx, stream, 3); err != nil {
		t.Fatalf("MarkDispatched: %v", err)
	}
	if err := store.MarkDispatched(ctx, stream, 2); err != nil {
		t.Fatalf("MarkDispatched lower: %v", err)
	}
	if seq, err := store.Dispatched(ctx, stream); err != nil || seq != 3 {
		t.Fatalf("Dispatched=%d err=%v, want 3", seq, err)
	}
	if seq, err := store.Dispatched(ctx, otherStream); err != nil || seq != 0 {
		t.Fatalf("Dispatched other stream=%d err=%v, want 0", seq, err)
	}
}

func RunCustomerRepo(t *testing.T, newRepo CustomerRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	aID := domain.CustomerID(uniqueID())
	email := uuid.NewString() + "@example.com"
	a := domain.Customer{
		ID:           aID,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		SlackID:      "U0ADA",
		Capabilities: []string{domain.CapabilityBoardMember},
		Cards:        []string{"123"},
		UpdatedAt:    now,
	}
	if err := repo.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert a: %v", err)
	}
	if _, err := repo.GetByID(ctx, domain.CustomerID(uniqueID())); !errors.Is(err, customerrepoport.ErrNotFound) {
		t.Fatalf("GetByID missing err=%v, want ErrNotFound", err)
	}
	if err := repo.SetMember(ctx, aID, true); err != nil {
		t.Fatalf("SetMember: %v", err)
	}

	// Profile updates keep the member flag.
	a.LastName = "King"
	if err := repo.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	got, err := repo.GetByID(ctx, aID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Member || got.LastName != "King" || got.SlackID != "U0ADA" || !got.HasCapability(domain.CapabilityBoardMember) {
		t.Fatalf("unexpected customer: %+v", got)
	}
	if len(got.Cards) != 1 || got.Cards[0] != "123" {
		t.Fatalf("cards=%v", got.Cards)
	}

	// Exact identity lookup, case-insensitive on email.
	matches, err := repo.FindByIdentity(ctx, domain.NewIdentity("Ada", "King", " "+email+" "))
	if err != nil {
		t.Fatalf("FindByIdentity: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != aID {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	matches, err = repo.FindByIdentity(ctx, domain.NewIdentity("Ada", "Lovelace", email))
	if err != nil || len(matches) != 0 {
		t.Fatalf("stale identity matched: %+v err=%v", matches, err)
	}

	// Soft delete hides from identity lookup and default listing.
	if err := repo.SoftDelete(ctx, aID, now.Add(time.Hour)); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	matches, err = repo.FindByIdentity(ctx, domain.NewIdentity("Ada", "King", email))
	if err != nil || len(matches) != 0 {
		t.Fatalf("deleted customer matched: %+v err=%v", matches, err)
	}
	all, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	found := false
	for _, c := range all {
		if c.ID == aID {
			found = c.IsDeleted()
		}
	}
	if !found {
		t.Fatalf("expected soft-deleted customer in full listing")
	}
	live, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("List live: %v", err)
	}
	for _, c := range live {
		if c.ID == aID {
			t.Fatalf("deleted customer listed as live")
		}
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID > all[i].ID {
			t.Fatalf("List not ordered by id")
		}
	}

	// Fresh profile facts bring a deleted customer back.
	if err := repo.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert after delete: %v", err)
	}
	got, err = repo.GetByID(ctx, aID)
	if err != nil || got.IsDeleted() || !got.Member {
		t.Fatalf("restored customer=%+v err=%v, want live member", got, err)
	}
	matches, err = repo.FindByIdentity(ctx, domain.NewIdentity("Ada", "King", email))
	if err != nil || len(matches) != 1 {
		t.Fatalf("restored customer matches=%+v err=%v, want 1", matches, err)
	}
}

func RunWaiverRepo(t *testing.T, newRepo WaiverRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	email := uuid.NewString() + "@example.com"
	w := domain.Waiver{
		ID:              domain.WaiverID(uuid.NewString()),
		TemplateID:      "tmpl",
		TemplateVersion: "3",
		Status:          domain.WaiverStatusAccepted,
		Email:           email,
		FirstName:       "Grace",
		LastName:        "Hopper",
	}
	if err := repo.Upsert(ctx, w); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := repo.Get(ctx, domain.WaiverID(uuid.NewString())); !errors.Is(err, waiverrepoport.ErrNotFound) {
		t.Fatalf("Get missing err=%v, want ErrNotFound", err)
	}

	got, err := repo.ListUnassignedByIdentity(ctx, domain.NewIdentity("Grace", "Hopper", email))
	if err != nil {
		t.Fatalf("ListUnassignedByIdentity: %v", err)
	}
	if len(got) != 1 || got[0].ID != w.ID {
		t.Fatalf("unexpected waivers: %+v", got)
	}
	got, err = repo.ListUnassignedByIdentity(ctx, domain.NewIdentity("Grace", "Brewster", email))
	if err != nil || len(got) != 0 {
		t.Fatalf("last-name mismatch matched: %+v err=%v", got, err)
	}

	cust := domain.CustomerID(uniqueID())
	if err := repo.Assign(ctx, w.ID, cust); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	// Re-delivery of the waiver must not clear the assignment.
	if err := repo.Upsert(ctx, w); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	stored, err := repo.Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.CustomerID == nil || *stored.CustomerID != cust {
		t.Fatalf("assignment lost: %+v", stored)
	}
	got, err = repo.ListUnassignedByIdentity(ctx, domain.NewIdentity("Grace", "Hopper", email))
	if err != nil || len(got) != 0 {
		t.Fatalf("assigned waiver still listed: %+v err=%v", got, err)
	}
}

func RunCardRepo(t *testing.T, newRepo CardRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	cust := domain.CustomerID(uniqueID())
	number := fmt.Sprintf("00%d", uniqueID())
	if err := repo.Upsert(ctx, domain.Card{Number: number, CustomerID: cust, MemberHasCard: true}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := repo.Get(ctx, domain.NormalizeCardNumber(number))
	if err != nil {
		t.Fatalf("Get normalized: %v", err)
	}
	if got.Active || got.EverActivated || !got.MemberHasCard {
		t.Fatalf("unexpected card: %+v", got)
	}

	if err := repo.SetActiveForCustomer(ctx, cust, true); err != nil {
		t.Fatalf("SetActiveForCustomer(true): %v", err)
	}
	if err := repo.SetActiveForCustomer(ctx, cust, false); err != nil {
		t.Fatalf("SetActiveForCustomer(false): %v", err)
	}
	cards, err := repo.ListByCustomer(ctx, cust)
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(cards) != 1 || cards[0].Active || !cards[0].EverActivated {
		t.Fatalf("unexpected cards: %+v", cards)
	}

	// EverActivated never goes back to false.
	if err := repo.Upsert(ctx, domain.Card{Number: number, CustomerID: cust, MemberHasCard: true}); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	got, err = repo.Get(ctx, number)
	if err != nil || !got.EverActivated {
		t.Fatalf("ever_activated reset: %+v err=%v", got, err)
	}
	if _, err := repo.Get(ctx, "999999999999"); !errors.Is(err, cardrepoport.ErrNotFound) {
		t.Fatalf("Get missing err=%v, want ErrNotFound", err)
	}
}

func RunCardSnapshotStore(t *testing.T, newStore CardSnapshotFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	first := cardsnapshotport.Snapshot{
		CardHolders: []cardsnapshotport.CardHolder{{FirstName: "A", LastName: "B", CardNum: "00123"}},
		TakenAt:     time.Unix(100, 0).UTC(),
	}
	second := cardsnapshotport.Snapshot{
		CardHolders: []cardsnapshotport.CardHolder{
			{FirstName: "A", LastName: "B", CardNum: "00123"},
			{FirstName: "C", LastName: "D", CardNum: "00999"},
		},
		TakenAt: time.Unix(200, 0).UTC(),
	}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save first: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save second: %v", err)
	}
	got, ok, err := store.Latest(ctx)
	if err != nil || !ok {
		t.Fatalf("Latest ok=%v err=%v", ok, err)
	}
	if !got.TakenAt.Equal(second.TakenAt) || len(got.CardHolders) != 2 || got.CardHolders[1].CardNum != "00999" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}
