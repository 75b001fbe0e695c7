package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// PipelineEvent announces that a request reached a pipeline state.
type PipelineEvent struct {
	RequestID string        `json:"request_id"`
	State     PipelineState `json:"state"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// RoutingKey is the topic the event is published under.
func (e PipelineEvent) RoutingKey() string {
	return "analysis." + string(e.State)
}

// EventPublisher broadcasts pipeline events. Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event PipelineEvent)
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

// Publish implements EventPublisher.
func (noopPublisher) Publish(ctx context.Context, event PipelineEvent) {}

// Close implements EventPublisher.
func (noopPublisher) Close() error { return nil }

type amqpPublisher struct {
	conn     *amqp.Connection
	exchange string
}

// NewAMQPPublisher dials the broker and declares a durable topic exchange.
func NewAMQPPublisher(url, exchange string) (EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	log.Printf("✅ Publishing pipeline events to exchange %s\n", exchange)
	return &amqpPublisher{conn: conn, exchange: exchange}, nil
}

// Publish implements EventPublisher. Failures are logged and dropped.
func (p *amqpPublisher) Publish(ctx context.Context, event PipelineEvent) {
	if err := p.publish(event); err != nil {
		log.Printf("⚠️  Failed to publish %s event for %s: %v\n", event.State, event.RequestID, err)
	}
}

func (p *amqpPublisher) publish(event PipelineEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.Publish(
		p.exchange,
		event.RoutingKey(),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   event.Timestamp,
			Body:        body,
		},
	)
}

// Close implements EventPublisher.
func (p *amqpPublisher) Close() error {
	return p.conn.Close()
}
