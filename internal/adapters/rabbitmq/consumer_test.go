package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/denhac/membership-sync/internal/app/worker"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

type ackRecorder struct {
	acks    int
	nacks   int
	requeue bool
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error { return a.Nack(tag, false, requeue) }

type publishRecorder struct {
	mu   sync.Mutex
	keys []string
	jobs []jobqueue.Job
	err  error
}

func (p *publishRecorder) PublishWithContext(_ context.Context, _ string, key string, _, _ bool, msg amqp.Publishing) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	var j jobqueue.Job
	if err := json.Unmarshal(msg.Body, &j); err != nil {
		return err
	}
	p.keys = append(p.keys, key)
	p.jobs = append(p.jobs, j)
	return nil
}

type execFunc func(ctx context.Context, job jobqueue.Job) error

func (f execFunc) Execute(ctx context.Context, job jobqueue.Job) error { return f(ctx, job) }

var errPermanent = errors.New("permanent")

func newTestConsumer(exec execFunc, pub *publishRecorder) *Consumer {
	w := worker.New(exec, func(err error) bool { return errors.Is(err, errPermanent) }, 3, logger.NewNop())
	c := NewConsumer(ConsumerConfig{Exchange: "membership.jobs", Queue: "membership.actions"}, w, logger.NewNop())
	c.pub = pub
	return c
}

func delivery(t *testing.T, job jobqueue.Job) (amqp.Delivery, *ackRecorder) {
	t.Helper()
	b, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ack := &ackRecorder{}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: b}, ack
}

func TestHandle_SuccessAcks(t *testing.T) {
	t.Parallel()

	pub := &publishRecorder{}
	c := newTestConsumer(func(context.Context, jobqueue.Job) error { return nil }, pub)
	d, ack := delivery(t, jobqueue.Job{ID: "j1", Kind: jobqueue.KindAddToChannel})

	c.handle(context.Background(), d)
	if ack.acks != 1 || ack.nacks != 0 || len(pub.jobs) != 0 {
		t.Fatalf("acks=%d nacks=%d republished=%d, want 1/0/0", ack.acks, ack.nacks, len(pub.jobs))
	}
}

func TestHandle_RetryRepublishesWithNextAttempt(t *testing.T) {
	t.Parallel()

	pub := &publishRecorder{}
	c := newTestConsumer(func(context.Context, jobqueue.Job) error { return errors.New("timeout") }, pub)
	d, ack := delivery(t, jobqueue.Job{ID: "j1", Kind: jobqueue.KindSendMessage, Attempt: 0})

	c.handle(context.Background(), d)
	if ack.acks != 1 || ack.nacks != 0 {
		t.Fatalf("acks=%d nacks=%d, want original acked", ack.acks, ack.nacks)
	}
	if len(pub.jobs) != 1 || pub.jobs[0].Attempt != 1 || pub.jobs[0].ID != "j1" {
		t.Fatalf("republished=%+v, want j1 at attempt 1", pub.jobs)
	}
	if pub.keys[0] != "job.send_message" {
		t.Fatalf("routing key=%q, want job.send_message", pub.keys[0])
	}
}

func TestHandle_RepublishFailureRequeuesOriginal(t *testing.T) {
	t.Parallel()

	pub := &publishRecorder{err: errors.New("channel closed")}
	c := newTestConsumer(func(context.Context, jobqueue.Job) error { return errors.New("timeout") }, pub)
	d, ack := delivery(t, jobqueue.Job{ID: "j1", Kind: jobqueue.KindSendMessage})

	c.handle(context.Background(), d)
	if ack.nacks != 1 || !ack.requeue {
		t.Fatalf("nacks=%d requeue=%v, want requeued nack", ack.nacks, ack.requeue)
	}
}

func TestHandle_DeadLetters(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		job  jobqueue.Job
		err  error
	}{
		{name: "permanent", job: jobqueue.Job{ID: "j1"}, err: errPermanent},
		{name: "out_of_attempts", job: jobqueue.Job{ID: "j2", Attempt: 2}, err: errors.New("timeout")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			pub := &publishRecorder{}
			c := newTestConsumer(func(context.Context, jobqueue.Job) error { return tc.err }, pub)
			d, ack := delivery(t, tc.job)

			c.handle(context.Background(), d)
			if ack.nacks != 1 || ack.requeue || len(pub.jobs) != 0 {
				t.Fatalf("nacks=%d requeue=%v republished=%d, want dead-lettered", ack.nacks, ack.requeue, len(pub.jobs))
			}
		})
	}
}

func TestHandle_UndecodableBodyDeadLetters(t *testing.T) {
	t.Parallel()

	c := newTestConsumer(func(context.Context, jobqueue.Job) error {
		t.Fatalf("executor must not run")
		return nil
	}, &publishRecorder{})
	ack := &ackRecorder{}

	c.handle(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{")})
	if ack.nacks != 1 || ack.requeue {
		t.Fatalf("nacks=%d requeue=%v, want dead-lettered", ack.nacks, ack.requeue)
	}
}

func TestPublisher_EnqueueAssignsIDsAndKeys(t *testing.T) {
	t.Parallel()

	rec := &publishRecorder{}
	p := &Publisher{ch: rec, exchange: "membership.jobs"}

	err := p.Enqueue(context.Background(),
		jobqueue.Job{ID: "e1-0", Kind: jobqueue.KindMakeRegularMember},
		jobqueue.Job{Kind: jobqueue.KindAddToDirectoryGroup},
	)
	if err != nil {
		t.Fatalf("Enqueue err=%v", err)
	}
	if len(rec.jobs) != 2 || rec.jobs[0].ID != "e1-0" || rec.jobs[1].ID == "" {
		t.Fatalf("jobs=%+v, want kept id and generated id", rec.jobs)
	}
	if rec.keys[1] != "job.add_to_directory_group" {
		t.Fatalf("key=%q, want job.add_to_directory_group", rec.keys[1])
	}
}
