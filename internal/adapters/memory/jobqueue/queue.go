package jobqueue

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

// Queue is an in-process FIFO job queue. Run drains it with a handler; failed jobs are
// handed back by the handler through Enqueue.
type Queue struct {
	mu     sync.Mutex
	jobs   []jobqueue.Job
	notify chan struct{}
}

func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

func (q *Queue) Enqueue(ctx context.Context, jobs ...jobqueue.Job) error {
	_ = ctx
	q.mu.Lock()
	for _, j := range jobs {
		if j.ID == "" {
			j.ID = uuid.NewString()
		}
		q.jobs = append(q.jobs, j)
	}
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns a copy of the queued jobs.
func (q *Queue) Pending() []jobqueue.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]jobqueue.Job(nil), q.jobs...)
}

// Drain runs every queued job once, including jobs enqueued while draining, and returns
// the number processed. Handler errors are the handler's to deal with.
func (q *Queue) Drain(ctx context.Context, h jobqueue.Handler) int {
	n := 0
	for ctx.Err() == nil {
		job, ok := q.pop()
		if !ok {
			return n
		}
		_ = h(ctx, job)
		n++
	}
	return n
}

// Run drains the queue until ctx is done.
func (q *Queue) Run(ctx context.Context, h jobqueue.Handler) {
	for {
		q.Drain(ctx, h)
		select {
		case <-ctx.Done():
			return
		case <-q.notify:
		}
	}
}

func (q *Queue) pop() (jobqueue.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return jobqueue.Job{}, false
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, true
}
