// Package rabbitmq carries Action jobs over a RabbitMQ topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/denhac/membership-sync/internal/ports/out/jobqueue"
)

// RoutingKey is the key a job of the given kind is published under.
func RoutingKey(kind jobqueue.Kind) string { return "job." + string(kind) }

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher is a jobqueue.Queue that publishes jobs as persistent JSON messages.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) Enqueue(ctx context.Context, jobs ...jobqueue.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, j := range jobs {
		if err := publish(ctx, p.ch, p.exchange, j); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) Close() error {
	if c, ok := p.ch.(*amqp.Channel); ok && c != nil {
		_ = c.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func publish(ctx context.Context, ch channel, exchange string, j jobqueue.Job) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	b, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", j.ID, err)
	}
	err = ch.PublishWithContext(ctx, exchange, RoutingKey(j.Kind), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    j.ID,
		Body:         b,
	})
	if err != nil {
		return fmt.Errorf("publish job %s: %w", j.ID, err)
	}
	return nil
}
