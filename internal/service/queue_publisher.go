// Package service holds the application's use cases.  Services own
// transactions, authorization and side effects (events, cache purges);
// handlers only translate HTTP to service calls and back.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/room-reservation/internal/queue"
)

// EventPublisher delivers reservation events.  Publishing is best effort:
// callers log failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, ev q.ReservationEvent) error
}

// NopPublisher drops every event.  It is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.ReservationEvent) error { return nil }

// AMQPPublisher publishes events to a durable RabbitMQ queue.  Each call
// opens its own connection so a broker outage never leaves a broken
// connection behind in the server.
type AMQPPublisher struct {
	URL   string
	Queue string
}

// NewAMQPPublisher returns a publisher for queue at url.
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	if queue == "" {
		queue = q.QueueName
	}
	return &AMQPPublisher{URL: url, Queue: queue}
}

// Publish sends ev as a persistent JSON message.  Any error is logged and
// returned so the caller can choose to ignore it.
func (p *AMQPPublisher) Publish(ctx context.Context, ev q.ReservationEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	// default exchange, routing key = queue name
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
