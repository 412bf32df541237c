package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/denhac/membership-sync/internal/adapters/httpapi"
	memcardrepo "github.com/denhac/membership-sync/internal/adapters/memory/cardrepo"
	memcardsnapshot "github.com/denhac/membership-sync/internal/adapters/memory/cardsnapshot"
	memclock "github.com/denhac/membership-sync/internal/adapters/memory/clock"
	memcustomerrepo "github.com/denhac/membership-sync/internal/adapters/memory/customerrepo"
	memeventstore "github.com/denhac/membership-sync/internal/adapters/memory/eventstore"
	meminbox "github.com/denhac/membership-sync/internal/adapters/memory/inbox"
	memjobqueue "github.com/denhac/membership-sync/internal/adapters/memory/jobqueue"
	memlock "github.com/denhac/membership-sync/internal/adapters/memory/lock"
	memwaiverrepo "github.com/denhac/membership-sync/internal/adapters/memory/waiverrepo"
	pgcardrepo "github.com/denhac/membership-sync/internal/adapters/postgres/cardrepo"
	pgcardsnapshot "github.com/denhac/membership-sync/internal/adapters/postgres/cardsnapshot"
	pgcustomerrepo "github.com/denhac/membership-sync/internal/adapters/postgres/customerrepo"
	pgeventstore "github.com/denhac/membership-sync/internal/adapters/postgres/eventstore"
	pginbox "github.com/denhac/membership-sync/internal/adapters/postgres/inbox"
	postgres_testutil "github.com/denhac/membership-sync/internal/adapters/postgres/testutil"
	pgwaiverrepo "github.com/denhac/membership-sync/internal/adapters/postgres/waiverrepo"
	"github.com/denhac/membership-sync/internal/adapters/woocommerce"
	"github.com/denhac/membership-sync/internal/app/eventbus"
	"github.com/denhac/membership-sync/internal/app/membership"
	"github.com/denhac/membership-sync/internal/app/projectors"
	"github.com/denhac/membership-sync/internal/app/reactors"
	"github.com/denhac/membership-sync/internal/app/waivers"
	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/platform/logger"
	cardrepoport "github.com/denhac/membership-sync/internal/ports/out/cardrepo"
	cardsnapshotport "github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
	customerrepoport "github.com/denhac/membership-sync/internal/ports/out/customerrepo"
	eventstoreport "github.com/denhac/membership-sync/internal/ports/out/eventstore"
	inboxport "github.com/denhac/membership-sync/internal/ports/out/inbox"
	waiverrepoport "github.com/denhac/membership-sync/internal/ports/out/waiverrepo"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|all)")
		return nil
	}
}

const (
	wooSecret = "itest-secret"
	hookToken = "itest-token"
)

type noFlags struct{}

func (noFlags) Enabled(string) bool { return false }

type testServer struct {
	baseURL   string
	client    *http.Client
	queue     *memjobqueue.Queue
	customers customerrepoport.Repository
	waivers   waiverrepoport.Repository
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	log := logger.NewNop()
	clk := memclock.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	var (
		store      eventstoreport.Store
		customers  customerrepoport.Repository
		waiverRepo waiverrepoport.Repository
		cards      cardrepoport.Repository
		snapshots  cardsnapshotport.Store
		in         inboxport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		store = pgeventstore.NewStore(pool, clk)
		customers = pgcustomerrepo.NewRepo(pool)
		waiverRepo = pgwaiverrepo.NewRepo(pool)
		cards = pgcardrepo.NewRepo(pool)
		snapshots = pgcardsnapshot.NewStore(pool)
		in = pginbox.NewStore(pool)
	case backendMemory:
		store = memeventstore.NewStore(clk)
		customers = memcustomerrepo.NewRepo()
		waiverRepo = memwaiverrepo.NewRepo()
		cards = memcardrepo.NewRepo()
		snapshots = memcardsnapshot.NewStore()
		in = meminbox.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	queue := memjobqueue.NewQueue()
	bus := eventbus.New(queue, log)
	bus.AddProjector(projectors.NewCustomers(customers))
	bus.AddProjector(projectors.NewWaivers(waiverRepo))
	bus.AddProjector(projectors.NewCards(cards, customers))
	bus.AddReactor(reactors.NewSlack(noFlags{}, nil))
	bus.AddReactor(reactors.NewGroups(reactors.GroupAddresses{General: "denhac@denhac.org", Members: "members@denhac.org", Board: "board@denhac.org"}))

	svc := membership.NewService(store, memlock.NewLocker(), bus, clk, log)
	bus.AddHandler(waivers.NewMatcher(customers, waiverRepo, svc, log))

	api := httpapi.NewServer(svc, snapshots, in, clk, log)
	handler := httpapi.NewRouter(api, httpapi.RouterOptions{WooCommerceSecret: wooSecret, WebhookToken: hookToken})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL:   srv.URL,
		client:    srv.Client(),
		queue:     queue,
		customers: customers,
		waivers:   waiverRepo,
	}
}

// newCustomerID avoids collisions with rows left by earlier runs against a shared database.
func newCustomerID() domain.CustomerID {
	return domain.CustomerID(rand.Int64N(1<<40) + 1)
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) do(t *testing.T, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func (s *testServer) woo(t *testing.T, topic, delivery string, body any) (int, []byte) {
	t.Helper()
	b := mustMarshal(t, body)
	req, err := http.NewRequest(http.MethodPost, s.url("/webhooks/woocommerce/"+topic), bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(woocommerce.HeaderSignature, woocommerce.Sign(b, wooSecret))
	req.Header.Set(woocommerce.HeaderDeliveryID, delivery)
	return s.do(t, req)
}

func (s *testServer) hook(t *testing.T, path string, body any) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, s.url(path), bytes.NewReader(mustMarshal(t, body)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+hookToken)
	return s.do(t, req)
}

func (s *testServer) get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.url(path), nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	return s.do(t, req)
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return b
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}
