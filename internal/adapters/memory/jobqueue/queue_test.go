package jobqueue

import (
	"context"
	"testing"

	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

func TestQueue_DrainIncludesJobsEnqueuedWhileDraining(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	ctx := context.Background()
	if err := q.Enqueue(ctx, jobqueue.Job{Kind: jobqueue.KindMakeRegularMember, CustomerID: 1}); err != nil {
		t.Fatalf("Enqueue err=%v", err)
	}

	var seen []jobqueue.Job
	n := q.Drain(ctx, func(ctx context.Context, job jobqueue.Job) error {
		seen = append(seen, job)
		if job.Attempt == 0 {
			job.Attempt++
			return q.Enqueue(ctx, job)
		}
		return nil
	})
	if n != 2 || len(seen) != 2 {
		t.Fatalf("processed=%d seen=%d, want 2", n, len(seen))
	}
	if seen[0].ID == "" || seen[0].ID != seen[1].ID {
		t.Fatalf("retry should keep the job id: %q vs %q", seen[0].ID, seen[1].ID)
	}
	if len(q.Pending()) != 0 {
		t.Fatalf("pending=%v", q.Pending())
	}
}
