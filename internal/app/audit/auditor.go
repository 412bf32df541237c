// Package audit cross-checks the member records against the card system, the chat
// workspace and the group directory, and reports every disagreement it finds.
//
// An audit is read-only and stateless: each run pulls every source fresh.
package audit

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/cardsnapshot"
	"github.com/denhac/membership-sync/internal/ports/out/chat"
	"github.com/denhac/membership-sync/internal/ports/out/commerce"
	"github.com/denhac/membership-sync/internal/ports/out/directory"
	"github.com/denhac/membership-sync/internal/ports/out/legacymembers"
)

// UserLister is the part of the chat platform the auditor reads.
type UserLister interface {
	ListUsers(ctx context.Context) ([]chat.User, error)
}

// GroupReader is the part of the directory the auditor reads.
type GroupReader interface {
	GroupsForDomain(ctx context.Context, domain string, progress directory.ProgressFunc) ([]directory.Group, error)
	MembersOf(ctx context.Context, group string, progress directory.ProgressFunc) ([]string, error)
}

type Config struct {
	Domain         string
	MembersGroup   string
	ExcludedGroups []string
	IgnoredChatIDs []string
}

type Sources struct {
	Commerce  commerce.Source
	Legacy    legacymembers.Source // optional
	Cards     cardsnapshot.Store
	Chat      UserLister
	Directory GroupReader
}

// groupFetchLimit bounds concurrent group member listings.
const groupFetchLimit = 4

type Auditor struct {
	src Sources
	cfg Config
	log *logger.Logger
}

func NewAuditor(src Sources, cfg Config, log *logger.Logger) *Auditor {
	return &Auditor{src: src, cfg: cfg, log: log}
}

type snapshot struct {
	customers []domain.CustomerFacts
	subs      []domain.SubscriptionFacts
	legacy    []legacymembers.Member
	holders   []cardsnapshot.CardHolder
	hasCards  bool
	users     []chat.User
	dir       groupMembership
}

// Run pulls every source in parallel, waits for all of them, then reconciles.
// Mismatches become issues; only a failed pull is an error.
func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	a.log.Info("identifying issues")
	snap, err := a.pull(ctx)
	if err != nil {
		return nil, err
	}

	members := buildMembers(snap.customers, snap.subs, snap.legacy)
	ignored := make(map[string]bool, len(a.cfg.IgnoredChatIDs))
	for _, id := range a.cfg.IgnoredChatIDs {
		ignored[id] = true
	}

	r := NewReport()
	if snap.hasCards {
		checkCards(r, members, snap.holders)
	}
	checkSlack(r, members, snap.users, ignored)
	checkGroups(r, members, snap.dir, strings.ToLower(a.cfg.MembersGroup))

	a.log.Info("audit finished", "members", len(members), "issues", r.Count())
	return r, nil
}

func (a *Auditor) pull(ctx context.Context) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cs, err := a.src.Commerce.ListCustomers(gctx)
		if err != nil {
			return fmt.Errorf("list customers: %w", err)
		}
		snap.customers = cs
		return nil
	})
	g.Go(func() error {
		subs, err := a.src.Commerce.ListSubscriptions(gctx)
		if err != nil {
			return fmt.Errorf("list subscriptions: %w", err)
		}
		snap.subs = subs
		return nil
	})
	if a.src.Legacy != nil {
		g.Go(func() error {
			legacy, err := a.src.Legacy.List(gctx)
			if err != nil {
				return fmt.Errorf("list legacy members: %w", err)
			}
			snap.legacy = legacy
			return nil
		})
	}
	g.Go(func() error {
		s, ok, err := a.src.Cards.Latest(gctx)
		if err != nil {
			return fmt.Errorf("latest card snapshot: %w", err)
		}
		snap.holders, snap.hasCards = s.CardHolders, ok
		return nil
	})
	g.Go(func() error {
		users, err := a.src.Chat.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("list chat users: %w", err)
		}
		snap.users = users
		return nil
	})
	g.Go(func() error {
		dir, err := a.pullDirectory(gctx)
		if err != nil {
			return err
		}
		snap.dir = dir
		return nil
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

func (a *Auditor) pullDirectory(ctx context.Context) (groupMembership, error) {
	listed, err := a.src.Directory.GroupsForDomain(ctx, a.cfg.Domain, a.progress("groups"))
	if err != nil {
		return groupMembership{}, fmt.Errorf("list groups for %s: %w", a.cfg.Domain, err)
	}

	excluded := make(map[string]bool, len(a.cfg.ExcludedGroups))
	for _, e := range a.cfg.ExcludedGroups {
		excluded[strings.ToLower(e)] = true
	}
	var groups []string
	for _, gr := range listed {
		addr := strings.ToLower(gr.Email)
		if !excluded[addr] {
			groups = append(groups, addr)
		}
	}

	results := make([][]string, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(groupFetchLimit)
	for i, group := range groups {
		g.Go(func() error {
			members, err := a.src.Directory.MembersOf(gctx, group, a.progress(group))
			if err != nil {
				return fmt.Errorf("list members of %s: %w", group, err)
			}
			results[i] = members
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return groupMembership{}, err
	}

	dir := groupMembership{groups: groups, members: make(map[string][]string, len(groups))}
	for i, group := range groups {
		dir.members[group] = results[i]
	}
	return dir, nil
}

func (a *Auditor) progress(what string) directory.ProgressFunc {
	return func(done, estimated int) {
		a.log.Debug("directory pull", "what", what, "done", done, "estimated", estimated)
	}
}
