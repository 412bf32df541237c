// Package bootstrap builds the adapters selected by configuration. The binaries under
// cmd/ share it so every process sees the same storage and gateways.
package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	googleadapter "github.com/denhac/membership-sync/internal/adapters/google"
	memcardrepo "github.com/denhac/membership-sync/internal/adapters/memory/cardrepo"
	memcardsnapshot "github.com/denhac/membership-sync/internal/adapters/memory/cardsnapshot"
	memchat "github.com/denhac/membership-sync/internal/adapters/memory/chat"
	memcustomerrepo "github.com/denhac/membership-sync/internal/adapters/memory/customerrepo"
	memdirectory "github.com/denhac/membership-sync/internal/adapters/memory/directory"
	memeventstore "github.com/denhac/membership-sync/internal/adapters/memory/eventstore"
	meminbox "github.com/denhac/membership-sync/internal/adapters/memory/inbox"
	memlegacymembers "github.com/denhac/membership-sync/internal/adapters/memory/legacymembers"
	memlock "github.com/denhac/membership-sync/internal/adapters/memory/lock"
	memwaiverrepo "github.com/denhac/membership-sync/internal/adapters/memory/waiverrepo"
	postgres "github.com/denhac/membership-sync/internal/adapters/postgres"
	pgcardrepo "github.com/denhac/membership-sync/internal/adapters/postgres/cardrepo"
	pgcardsnapshot "github.com/denhac/membership-sync/internal/adapters/postgres/cardsnapshot"
	pgcustomerrepo "github.com/denhac/membership-sync/internal/adapters/postgres/customerrepo"
	pgeventstore "github.com/denhac/membership-sync/internal/adapters/postgres/eventstore"
	pginbox "github.com/denhac/membership-sync/internal/adapters/postgres/inbox"
	pglegacymembers "github.com/denhac/membership-sync/internal/adapters/postgres/legacymembers"
	pgwaiverrepo "github.com/denhac/membership-sync/internal/adapters/postgres/waiverrepo"
	redisadapter "github.com/denhac/membership-sync/internal/adapters/redis"
	redislock "github.com/denhac/membership-sync/internal/adapters/redis/lock"
	slackadapter "github.com/denhac/membership-sync/internal/adapters/slack"
	"github.com/denhac/membership-sync/internal/adapters/woocommerce"
	"github.com/denhac/membership-sync/internal/app/actions"
	"github.com/denhac/membership-sync/internal/app/audit"
	"github.com/denhac/membership-sync/internal/app/eventbus"
	"github.com/denhac/membership-sync/internal/app/membership"
	"github.com/denhac/membership-sync/internal/app/projectors"
	"github.com/denhac/membership-sync/internal/app/reactors"
	"github.com/denhac/membership-sync/internal/app/waivers"
	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/platform/config"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/cardrepo"
	"github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
	"github.com/denhac/membership-sync/internal/ports/out/chat"
	clockport "github.com/denhac/membership-sync/internal/ports/out/clock"
	"github.com/denhac/membership-sync/internal/ports/out/customerrepo"
	"github.com/denhac/membership-sync/internal/ports/out/directory"
	"github.com/denhac/membership-sync/internal/ports/out/eventstore"
	"github.com/denhac/membership-sync/internal/ports/out/inbox"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
	"github.com/denhac/membership-sync/internal/ports/out/legacymembers"
	"github.com/denhac/membership-sync/internal/ports/out/lock"
	"github.com/denhac/membership-sync/internal/ports/out/waiverrepo"
)

// Storage is the set of stores selected by STORAGE_BACKEND.
type Storage struct {
	Events    eventstore.Store
	Customers customerrepo.Repository
	Waivers   waiverrepo.Repository
	Cards     cardrepo.Repository
	Snapshots cardsnapshot.Store
	Legacy    legacymembers.Source
	Inbox     inbox.Store

	close func()
}

func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

func OpenStorage(ctx context.Context, cfg config.App, clk clockport.Clock) (*Storage, error) {
	switch cfg.StorageBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: cfg.DBMaxConns})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return &Storage{
			Events:    pgeventstore.NewStore(pool, clk),
			Customers: pgcustomerrepo.NewRepo(pool),
			Waivers:   pgwaiverrepo.NewRepo(pool),
			Cards:     pgcardrepo.NewRepo(pool),
			Snapshots: pgcardsnapshot.NewStore(pool),
			Legacy:    pglegacymembers.NewSource(pool),
			Inbox:     pginbox.NewStore(pool),
			close:     pool.Close,
		}, nil
	default:
		return &Storage{
			Events:    memeventstore.NewStore(clk),
			Customers: memcustomerrepo.NewRepo(),
			Waivers:   memwaiverrepo.NewRepo(),
			Cards:     memcardrepo.NewRepo(),
			Snapshots: memcardsnapshot.NewStore(),
			Legacy:    memlegacymembers.NewSource(),
			Inbox:     meminbox.NewStore(),
		}, nil
	}
}

// NewLocker returns the per-stream locker and a func releasing its connection.
func NewLocker(ctx context.Context, cfg config.App, log *logger.Logger) (lock.Locker, func(), error) {
	if cfg.LockBackend != "redis" {
		return memlock.NewLocker(), func() {}, nil
	}
	rdb, err := redisadapter.NewClient(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return redislock.NewLocker(rdb, cfg.LockTTL, log.With("component", "redis_lock")), closeRedis(rdb), nil
}

func closeRedis(rdb *goredis.Client) func() {
	return func() { _ = rdb.Close() }
}

// Gateways are the external systems Actions and audits talk to.
type Gateways struct {
	Chat      chat.Platform
	Directory directory.Service
}

// NewGateways builds the chat and directory clients. Memory backends act as dry runs.
func NewGateways(ctx context.Context, cfg config.App, log *logger.Logger) (Gateways, error) {
	var gw Gateways
	switch cfg.ChatBackend {
	case "slack":
		gw.Chat = slackadapter.New(slackadapter.Options{
			Token:      cfg.Slack.Token,
			AdminToken: cfg.Slack.AdminToken,
			Team:       cfg.Slack.Team,
			APIURL:     cfg.Slack.APIURL,
		})
	default:
		log.Warn("chat backend is in-memory; chat Actions are not sent")
		gw.Chat = memchat.NewWorkspace()
	}

	switch cfg.DirectoryBackend {
	case "google":
		var opts []option.ClientOption
		if cfg.Google.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Google.CredentialsFile))
		}
		dir, err := googleadapter.New(ctx, opts...)
		if err != nil {
			return Gateways{}, fmt.Errorf("google directory: %w", err)
		}
		gw.Directory = dir
	default:
		log.Warn("directory backend is in-memory; group Actions are not sent")
		gw.Directory = memdirectory.NewService()
	}
	return gw, nil
}

// NewMembership wires the event bus in dispatch order and returns the service that feeds it.
func NewMembership(cfg config.App, st *Storage, locker lock.Locker, queue jobqueue.Queue, flags reactors.Flags, clk clockport.Clock, log *logger.Logger) *membership.Service {
	if len(cfg.EquipmentPlans) == 0 {
		log.Warn("EQUIPMENT_PLANS is empty; equipment memberships join no channel")
	}
	bus := eventbus.New(queue, log.With("component", "eventbus"))
	bus.AddProjector(projectors.NewCustomers(st.Customers))
	bus.AddProjector(projectors.NewWaivers(st.Waivers))
	bus.AddProjector(projectors.NewCards(st.Cards, st.Customers))
	bus.AddReactor(reactors.NewSlack(flags, EquipmentChannels(cfg)))
	bus.AddReactor(reactors.NewGroups(reactors.GroupAddresses{
		General: cfg.Google.GeneralGroup,
		Members: cfg.Google.MembersGroup,
		Board:   cfg.Google.BoardGroup,
	}))

	svc := membership.NewService(st.Events, locker, bus, clk, log.With("component", "membership"))
	bus.AddHandler(waivers.NewMatcher(st.Customers, st.Waivers, svc, log.With("component", "waivers")))
	return svc
}

func EquipmentChannels(cfg config.App) map[domain.PlanID]string {
	out := make(map[domain.PlanID]string, len(cfg.EquipmentPlans))
	for plan, channel := range cfg.EquipmentPlans {
		out[domain.PlanID(plan)] = channel
	}
	return out
}

func NewExecutor(cfg config.App, gw Gateways, st *Storage, log *logger.Logger) *actions.Executor {
	return actions.NewExecutor(gw.Chat, gw.Directory, st.Customers, actions.Config{
		Channels:           cfg.Slack.Channels,
		UserGroups:         cfg.Slack.UserGroups,
		PublicChannels:     cfg.Slack.PublicChannels,
		NeedIDCheckChannel: cfg.Slack.NeedIDCheckChannel,
		MembershipFieldID:  cfg.Slack.MembershipFieldID,
	}, log.With("component", "actions"))
}

func NewCommerce(cfg config.App) (*woocommerce.Client, error) {
	return woocommerce.New(woocommerce.Options{
		BaseURL:        cfg.WooCommerce.BaseURL,
		ConsumerKey:    cfg.WooCommerce.ConsumerKey,
		ConsumerSecret: cfg.WooCommerce.ConsumerSecret,
		Timeout:        cfg.WooCommerce.HTTPTimeout,
	})
}

func AuditConfig(cfg config.App) audit.Config {
	return audit.Config{
		Domain:         cfg.Google.Domain,
		MembersGroup:   cfg.Google.MembersGroup,
		ExcludedGroups: cfg.Google.ExcludedGroups,
		IgnoredChatIDs: cfg.Slack.IgnoredUserIDs,
	}
}
