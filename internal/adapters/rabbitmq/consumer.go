package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/denhac/membership-sync/internal/app/worker"
	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

type ConsumerConfig struct {
	URL      string
	Exchange string
	Queue    string
	Prefetch int
	// ConsumerTag identifies this process in the broker's management UI.
	ConsumerTag string
}

// DeadLetterExchange and DeadLetterQueue hold jobs the worker gave up on.
func (c ConsumerConfig) DeadLetterExchange() string { return c.Exchange + ".dlx" }
func (c ConsumerConfig) DeadLetterQueue() string    { return c.Queue + ".dead" }

// Consumer runs jobs from the queue through a worker. Retries are republished with the
// attempt bumped; dead letters are rejected into the dead-letter exchange.
type Consumer struct {
	cfg    ConsumerConfig
	worker *worker.Worker
	log    *logger.Logger

	conn *amqp.Connection
	ch   *amqp.Channel

	pubMu sync.Mutex
	pub   channel
}

func NewConsumer(cfg ConsumerConfig, w *worker.Worker, log *logger.Logger) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 8
	}
	return &Consumer{cfg: cfg, worker: w, log: log}
}

func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("rabbit dial failed: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel failed: %w", err)
	}
	fail := func(format string, err error) error {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf(format, err)
	}

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange failed: %w", err)
	}
	dlx := c.cfg.DeadLetterExchange()
	if err := ch.ExchangeDeclare(dlx, "topic", true, false, false, false, nil); err != nil {
		return fail("declare dlx failed: %w", err)
	}
	if _, err := ch.QueueDeclare(c.cfg.DeadLetterQueue(), true, false, false, false, nil); err != nil {
		return fail("declare dlq failed: %w", err)
	}
	if err := ch.QueueBind(c.cfg.DeadLetterQueue(), "#", dlx, false, nil); err != nil {
		return fail("bind dlq failed: %w", err)
	}

	q, err := ch.QueueDeclare(c.cfg.Queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": dlx,
	})
	if err != nil {
		return fail("declare queue failed: %w", err)
	}
	if err := ch.QueueBind(q.Name, RoutingKey("*"), c.cfg.Exchange, false, nil); err != nil {
		return fail("bind queue failed: %w", err)
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fail("set qos failed: %w", err)
	}

	c.conn = conn
	c.ch = ch
	c.pub = ch
	return nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Run consumes until ctx is done or the broker closes the delivery channel.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.cfg.Queue, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var job jobqueue.Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.log.Error("undecodable job, dead-lettering", "routing_key", d.RoutingKey, "message_id", d.MessageId, "error", err.Error())
		_ = d.Nack(false, false)
		return
	}

	decision, _ := c.worker.Run(ctx, job)
	switch decision {
	case worker.Ack:
		_ = d.Ack(false)
	case worker.Retry:
		job.Attempt++
		if err := c.republish(ctx, job); err != nil {
			c.log.Warn("republish failed, requeueing original", "job_id", job.ID, "error", err.Error())
			_ = d.Nack(false, true)
			return
		}
		_ = d.Ack(false)
	default:
		_ = d.Nack(false, false)
	}
}

func (c *Consumer) republish(ctx context.Context, job jobqueue.Job) error {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	return publish(ctx, c.pub, c.cfg.Exchange, job)
}
