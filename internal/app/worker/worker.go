// Package worker runs queued Actions and decides what happens to a job that fails.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

// Executor performs one job.
type Executor interface {
	Execute(ctx context.Context, job jobqueue.Job) error
}

// Decision is what the transport should do with a job after it ran.
type Decision int

const (
	Ack Decision = iota
	Retry
	DeadLetter
)

func (d Decision) String() string {
	switch d {
	case Ack:
		return "ack"
	case Retry:
		return "retry"
	case DeadLetter:
		return "dead_letter"
	default:
		return "unknown"
	}
}

// DefaultMaxAttempts applies when a worker is built with a non-positive limit.
const DefaultMaxAttempts = 5

type Worker struct {
	exec        Executor
	permanent   func(error) bool
	maxAttempts int
	log         *logger.Logger

	alerts         jobqueue.Queue
	alertRecipient string
}

// New builds a worker. permanent classifies errors that must not be retried; nil means
// every error is retryable.
func New(exec Executor, permanent func(error) bool, maxAttempts int, log *logger.Logger) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if permanent == nil {
		permanent = func(error) bool { return false }
	}
	return &Worker{
		exec:        exec,
		permanent:   permanent,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// AlertOnDeadLetter schedules a send_message job to recipient, a chat channel or user id,
// for every dead-lettered job. Failed alerts are themselves never alerted on.
func (w *Worker) AlertOnDeadLetter(queue jobqueue.Queue, recipient string) *Worker {
	w.alerts = queue
	w.alertRecipient = recipient
	return w
}

// Run executes the job and returns the decision with the error that caused it.
// job.Attempt counts previous runs, starting at zero.
func (w *Worker) Run(ctx context.Context, job jobqueue.Job) (Decision, error) {
	err := w.exec.Execute(ctx, job)
	if err == nil {
		w.log.Debug("job done", "job_id", job.ID, "kind", job.Kind, "customer_id", job.CustomerID)
		return Ack, nil
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return Retry, err
	}

	switch {
	case w.permanent(err):
		w.log.Error("job failed permanently", "job_id", job.ID, "kind", job.Kind, "customer_id", job.CustomerID, "error", err.Error())
		w.alert(ctx, job, err)
		return DeadLetter, err
	case job.Attempt+1 >= w.maxAttempts:
		w.log.Error("job out of attempts", "job_id", job.ID, "kind", job.Kind, "attempts", job.Attempt+1, "error", err.Error())
		w.alert(ctx, job, err)
		return DeadLetter, err
	default:
		w.log.Warn("job failed, will retry", "job_id", job.ID, "kind", job.Kind, "attempt", job.Attempt+1, "error", err.Error())
		return Retry, err
	}
}

func (w *Worker) alert(ctx context.Context, job jobqueue.Job, cause error) {
	if w.alerts == nil || w.alertRecipient == "" || job.Kind == jobqueue.KindSendMessage {
		return
	}
	text := fmt.Sprintf("Action %s for customer %s gave up after %d attempt(s): %v", job.Kind, job.CustomerID, job.Attempt+1, cause)
	msg := jobqueue.Job{
		ID:        job.ID + "-alert",
		Kind:      jobqueue.KindSendMessage,
		Recipient: w.alertRecipient,
		Text:      text,
	}
	if err := w.alerts.Enqueue(ctx, msg); err != nil {
		w.log.Warn("dead-letter alert not scheduled", "job_id", job.ID, "error", err.Error())
	}
}

// Handler adapts the worker to an in-process queue: retries go back on requeue with the
// attempt bumped, dead letters go to dead.
func (w *Worker) Handler(requeue jobqueue.Queue, dead func(jobqueue.Job, error)) jobqueue.Handler {
	return func(ctx context.Context, job jobqueue.Job) error {
		decision, err := w.Run(ctx, job)
		switch decision {
		case Retry:
			job.Attempt++
			if qerr := requeue.Enqueue(ctx, job); qerr != nil {
				return errors.Join(err, qerr)
			}
		case DeadLetter:
			if dead != nil {
				dead(job, err)
			}
		}
		return err
	}
}
