// Package eventbus fans stored events out to read-model projectors, job-scheduling
// reactors and follow-up handlers, in that order.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/denhac/membership-sync/internal/domain"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/eventstore"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

// Projector keeps a read model in step with the event stream.
type Projector interface {
	Project(ctx context.Context, ev eventstore.StoredEvent) error
}

// Reactor maps an event to the Actions it schedules. It must not perform side effects.
type Reactor interface {
	React(ev domain.Event) []jobqueue.Job
}

// Handler runs in-process follow-up work, such as recording further facts.
type Handler interface {
	Handle(ctx context.Context, ev domain.Event) error
}

type Bus struct {
	mu         sync.RWMutex
	projectors []Projector
	reactors   []Reactor
	handlers   []Handler

	queue jobqueue.Queue
	log   *logger.Logger
}

func New(queue jobqueue.Queue, log *logger.Logger) *Bus {
	return &Bus{queue: queue, log: log}
}

func (b *Bus) AddProjector(p Projector) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projectors = append(b.projectors, p)
}

func (b *Bus) AddReactor(r Reactor) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reactors = append(b.reactors, r)
}

func (b *Bus) AddHandler(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Dispatch schedules events and then runs their follow-up handlers.
func (b *Bus) Dispatch(ctx context.Context, events []eventstore.StoredEvent) error {
	if err := b.Schedule(ctx, events); err != nil {
		return err
	}
	return b.FollowUp(ctx, events)
}

// Schedule projects every event and enqueues the jobs reactors ask for. Job ids derive
// from the stored event id so a re-dispatch schedules the same ids.
func (b *Bus) Schedule(ctx context.Context, events []eventstore.StoredEvent) error {
	b.mu.RLock()
	projectors := append([]Projector(nil), b.projectors...)
	reactors := append([]Reactor(nil), b.reactors...)
	b.mu.RUnlock()

	for _, ev := range events {
		for _, p := range projectors {
			if err := p.Project(ctx, ev); err != nil {
				return fmt.Errorf("project %s %s#%d: %w", ev.Event.EventType(), ev.Stream, ev.Seq, err)
			}
		}
	}

	var jobs []jobqueue.Job
	for _, ev := range events {
		n := 0
		for _, r := range reactors {
			for _, job := range r.React(ev.Event) {
				job.ID = fmt.Sprintf("%s-%d", ev.ID, n)
				n++
				jobs = append(jobs, job)
			}
		}
	}
	if len(jobs) > 0 {
		if err := b.queue.Enqueue(ctx, jobs...); err != nil {
			return fmt.Errorf("enqueue %d jobs: %w", len(jobs), err)
		}
		b.log.Debug("jobs scheduled", "count", len(jobs))
	}
	return nil
}

// FollowUp runs the handlers for every event. All handlers run; their errors are joined.
func (b *Bus) FollowUp(ctx context.Context, events []eventstore.StoredEvent) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	var errs []error
	for _, ev := range events {
		for _, h := range handlers {
			if err := h.Handle(ctx, ev.Event); err != nil {
				errs = append(errs, fmt.Errorf("handle %s: %w", ev.Event.EventType(), err))
			}
		}
	}
	return errors.Join(errs...)
}
