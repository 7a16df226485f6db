package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "milk_events"

// AMQPBridge shares one event stream between several server instances. Events
// go out through a fanout exchange and come back, on every instance including
// the sender, through an exclusive queue that feeds the local hub.
type AMQPBridge struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	local    Publisher

	mu sync.Mutex
	// down is set once Run stops consuming; Publish then delivers locally.
	down atomic.Bool
}

func DialAMQP(url, exchange string, local Publisher) (*AMQPBridge, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPBridge{conn: conn, channel: channel, exchange: exchange, local: local}, nil
}

// Run consumes the exchange into the local publisher until ctx is done or the
// broker closes the delivery channel.
func (b *AMQPBridge) Run(ctx context.Context) error {
	defer b.down.Store(true)

	q, err := b.channel.QueueDeclare(
		"",    // name (let server generate)
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := b.channel.QueueBind(q.Name, "", b.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := b.channel.Consume(
		q.Name, // queue
		"",     // consumer
		true,   // auto-ack
		true,   // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming events: %w", err)
	}

	slog.Info("Event bridge consuming", "exchange", b.exchange, "queue", q.Name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("event delivery channel closed")
			}
			b.forward(ctx, d.Body)
		}
	}
}

// DecodeEvent reads an event as published on the exchange. Data is decoded
// into plain values so it streams the same way as a locally published event.
func DecodeEvent(body []byte) (Event, error) {
	var ev struct {
		Name string          `json:"event"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, err
	}
	if ev.Name == "" {
		return Event{}, fmt.Errorf("event without a name")
	}
	var data any
	if len(ev.Data) > 0 {
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			return Event{}, err
		}
	}
	return Event{Name: ev.Name, Data: data}, nil
}

func (b *AMQPBridge) forward(ctx context.Context, body []byte) {
	ev, err := DecodeEvent(body)
	if err != nil {
		slog.Warn("Dropping malformed event", "error", err)
		return
	}
	if err := b.local.Publish(ctx, ev); err != nil {
		slog.Warn("Failed to deliver event locally", "event", ev.Name, "error", err)
	}
}

// Publish sends ev through the exchange. Once the broker is gone the event
// goes straight to the local hub so this instance's listeners still get it.
func (b *AMQPBridge) Publish(ctx context.Context, ev Event) error {
	if b.down.Load() || b.channel == nil || b.channel.IsClosed() {
		return b.local.Publish(ctx, ev)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp channels are not safe for concurrent publishing
	b.mu.Lock()
	err = b.channel.PublishWithContext(pubCtx,
		b.exchange, // exchange
		"",         // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		})
	b.mu.Unlock()
	if err != nil {
		slog.Warn("Broker publish failed, delivering locally", "event", ev.Name, "error", err)
		return b.local.Publish(ctx, ev)
	}
	return nil
}

func (b *AMQPBridge) Close() {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
}
