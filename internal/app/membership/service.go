package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/denhac/membership-sync/internal/domain"
	membershipagg "github.com/denhac/membership-sync/internal/domain/membership"
	"github.com/denhac/membership-sync/internal/platform/logger"
	clockport "github.com/denhac/membership-sync/internal/ports/out/clock"
	"github.com/denhac/membership-sync/internal/ports/out/eventstore"
	"github.com/denhac/membership-sync/internal/ports/out/lock"
)

// Dispatcher hands stored events to projectors and reactors (Schedule), then to
// follow-up handlers (FollowUp).
type Dispatcher interface {
	Schedule(ctx context.Context, events []eventstore.StoredEvent) error
	FollowUp(ctx context.Context, events []eventstore.StoredEvent) error
}

// Service records external facts against per-customer aggregates.
//
// Each update holds the stream lock across replay and append; dispatch happens after the
// lock is released. The stream's dispatch cursor advances only once Schedule succeeds, so
// events stored by an update whose dispatch failed go out again with the next update.
type Service struct {
	store  eventstore.Store
	locker lock.Locker
	bus    Dispatcher
	clk    clockport.Clock
	log    *logger.Logger
}

func NewService(store eventstore.Store, locker lock.Locker, bus Dispatcher, clk clockport.Clock, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		locker: locker,
		bus:    bus,
		clk:    clk,
		log:    log,
	}
}

// Handle records one external fact: customer, subscription, user membership or waiver.
func (s *Service) Handle(ctx context.Context, fact domain.Event) error {
	if fact == nil {
		return invalidFact("missing fact")
	}
	switch f := fact.(type) {
	case domain.WaiverAccepted:
		return s.recordWaiver(ctx, f)
	case domain.CustomerDeleted:
		if f.DeletedAt.IsZero() {
			f.DeletedAt = s.clk.Now()
		}
		fact = f
	}

	id, ok := domain.CustomerOf(fact)
	if !ok || id == 0 {
		return invalidFact(fmt.Sprintf("%s does not name a customer", fact.EventType()))
	}
	return s.update(ctx, id, func(a *membershipagg.Aggregate) error {
		return a.Record(fact)
	})
}

// AssignWaiver links a waiver to a customer once.
func (s *Service) AssignWaiver(ctx context.Context, customer domain.CustomerID, waiver domain.WaiverID) error {
	return s.update(ctx, customer, func(a *membershipagg.Aggregate) error {
		if !a.AssignWaiver(waiver) {
			s.log.Debug("waiver already assigned", "customer_id", customer, "waiver_id", waiver)
		}
		return nil
	})
}

// Load rebuilds a customer's aggregate from its stream.
func (s *Service) Load(ctx context.Context, id domain.CustomerID) (*membershipagg.Aggregate, error) {
	history, err := s.store.Replay(ctx, id.StreamID())
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", id.StreamID(), err)
	}
	return membershipagg.Rehydrate(id, eventstore.Events(history)), nil
}

// ImportResult counts what a bulk import recorded.
type ImportResult struct {
	Customers     int
	Subscriptions int
	Failed        int
}

// Import records full customer and subscription lists as imported facts. Customers go
// first so subscription-driven events find a profile. A failing record does not stop the import.
func (s *Service) Import(ctx context.Context, customers []domain.CustomerFacts, subs []domain.SubscriptionFacts) (ImportResult, error) {
	var (
		res  ImportResult
		errs []error
	)
	for _, c := range customers {
		if err := s.Handle(ctx, domain.CustomerImported{Customer: c}); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("customer %s: %w", c.ID, err))
			continue
		}
		res.Customers++
	}
	for _, sub := range subs {
		if err := s.Handle(ctx, domain.SubscriptionImported{Subscription: sub}); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("subscription %d: %w", sub.ID, err))
			continue
		}
		res.Subscriptions++
	}
	s.log.Info("import finished", "customers", res.Customers, "subscriptions", res.Subscriptions, "failed", res.Failed)
	return res, errors.Join(errs...)
}

func (s *Service) update(ctx context.Context, id domain.CustomerID, fn func(*membershipagg.Aggregate) error) error {
	stream := id.StreamID()
	batch, err := s.withLock(ctx, stream, func() ([]eventstore.StoredEvent, error) {
		history, err := s.store.Replay(ctx, stream)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", stream, err)
		}
		agg := membershipagg.Rehydrate(id, eventstore.Events(history))
		if err := fn(agg); err != nil {
			if errors.Is(err, membershipagg.ErrUnsupportedFact) || errors.Is(err, membershipagg.ErrWrongCustomer) {
				return nil, invalidFact(err.Error())
			}
			return nil, err
		}
		return s.appendAndCollect(ctx, stream, history, agg.DrainPending()...)
	})
	if err != nil {
		return err
	}
	return s.dispatch(ctx, stream, batch)
}

func (s *Service) recordWaiver(ctx context.Context, f domain.WaiverAccepted) error {
	if f.Waiver.ID == "" {
		return invalidFact("waiver id is required")
	}
	stream := f.Waiver.ID.StreamID()
	batch, err := s.withLock(ctx, stream, func() ([]eventstore.StoredEvent, error) {
		history, err := s.store.Replay(ctx, stream)
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", stream, err)
		}
		return s.appendAndCollect(ctx, stream, history, f)
	})
	if err != nil {
		return err
	}
	return s.dispatch(ctx, stream, batch)
}

// appendAndCollect appends events to the stream and returns everything past the dispatch
// cursor: earlier undelivered events first, then the new ones.
func (s *Service) appendAndCollect(ctx context.Context, stream string, history []eventstore.StoredEvent, events ...domain.Event) ([]eventstore.StoredEvent, error) {
	cursor, err := s.store.Dispatched(ctx, stream)
	if err != nil {
		return nil, fmt.Errorf("dispatch cursor %s: %w", stream, err)
	}
	batch := append([]eventstore.StoredEvent(nil), eventstore.After(history, cursor)...)
	if len(batch) > 0 {
		s.log.Warn("redispatching undelivered events", "stream", stream, "from_seq", batch[0].Seq, "count", len(batch))
	}
	if len(events) == 0 {
		return batch, nil
	}
	stored, err := s.store.Append(ctx, stream, int64(len(history)), events...)
	if err != nil {
		return nil, err
	}
	return append(batch, stored...), nil
}

func (s *Service) withLock(ctx context.Context, stream string, fn func() ([]eventstore.StoredEvent, error)) ([]eventstore.StoredEvent, error) {
	unlock, err := s.locker.Lock(ctx, stream)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", stream, err)
	}
	defer unlock()
	return fn()
}

func (s *Service) dispatch(ctx context.Context, stream string, batch []eventstore.StoredEvent) error {
	if len(batch) == 0 {
		return nil
	}
	for _, ev := range batch {
		s.log.Debug("event recorded", "stream", ev.Stream, "seq", ev.Seq, "type", ev.Event.EventType())
	}
	if s.bus != nil {
		if err := s.bus.Schedule(ctx, batch); err != nil {
			return err
		}
	}
	if err := s.store.MarkDispatched(ctx, stream, batch[len(batch)-1].Seq); err != nil {
		return fmt.Errorf("advance dispatch cursor %s: %w", stream, err)
	}
	if s.bus == nil {
		return nil
	}
	return s.bus.FollowUp(ctx, batch)
}

func invalidFact(msg string) error {
	return &Error{
		Status:  422,
		Code:    "INVALID_FACT",
		Message: msg,
	}
}
