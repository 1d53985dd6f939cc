package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// CatalogExchange is the fanout exchange catalog events are published to.
const CatalogExchange = "catalog_events"

// Catalog event types.
const (
	EventProductCreated = "product.created"
	EventProductDeleted = "product.deleted"
)

// CatalogEvent announces a confirmed change to the product store.
type CatalogEvent struct {
	Type      string    `json:"type"`
	ProductID int64     `json:"productId"`
	Origin    string    `json:"origin"`
	At        time.Time `json:"at"`
}

// DecodeCatalogEvent parses and checks a message body.
func DecodeCatalogEvent(body []byte) (CatalogEvent, error) {
	var event CatalogEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return CatalogEvent{}, fmt.Errorf("failed to decode catalog event: %w", err)
	}
	switch event.Type {
	case EventProductCreated, EventProductDeleted:
	default:
		return CatalogEvent{}, fmt.Errorf("unknown catalog event type %q", event.Type)
	}
	if event.ProductID <= 0 {
		return CatalogEvent{}, fmt.Errorf("catalog event %s has no product id", event.Type)
	}
	return event, nil
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	instanceID string
	mu         sync.Mutex // guards channel publishes
}

// Config holds RabbitMQ connection details. InstanceID is stamped on every
// published event so an instance can skip its own messages.
type Config struct {
	URL        string
	InstanceID string
}

// NewClient connects to RabbitMQ, opens a channel and declares the catalog
// exchange.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		CatalogExchange, // name
		"fanout",        // kind
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s exchange: %w", CatalogExchange, err)
	}

	zap.L().Info("rabbitmq connected", zap.String("exchange", CatalogExchange), zap.String("instance", cfg.InstanceID))

	return &Client{
		conn:       conn,
		channel:    ch,
		instanceID: cfg.InstanceID,
	}, nil
}

// InstanceID returns the origin stamped on published events.
func (c *Client) InstanceID() string {
	return c.instanceID
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishCatalogEvent publishes event to the catalog exchange as JSON.
// Origin and At are filled in when left empty.
func (c *Client) PublishCatalogEvent(event CatalogEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if event.Origin == "" {
		event.Origin = c.instanceID
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog event: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.channel.Publish(
		CatalogExchange, // exchange
		"",              // routing key: ignored by fanout
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.At,
		})
	if err != nil {
		return fmt.Errorf("failed to publish catalog event: %w", err)
	}

	zap.L().Debug("catalog event sent", zap.ByteString("body", body))
	return nil
}

// ConsumeCatalogEvents binds a private queue to the catalog exchange and
// hands every event from another instance to handler. Messages are acked on
// success and requeued when handler fails. Undecodable messages are dropped.
func (c *Client) ConsumeCatalogEvents(handler func(CatalogEvent) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := c.channel.QueueDeclare(
		"",    // name: server generated
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}
	if err := c.channel.QueueBind(queue.Name, "", CatalogExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to %s: %w", CatalogExchange, err)
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag
		false,      // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	zap.L().Info("waiting for catalog events", zap.String("queue", queue.Name))

	go func() {
		for msg := range msgs {
			c.dispatch(msg, handler)
		}
		zap.L().Info("catalog event consumer stopped")
	}()

	return nil
}

func (c *Client) dispatch(msg amqp.Delivery, handler func(CatalogEvent) error) {
	log := zap.L().With(zap.Uint64("tag", msg.DeliveryTag))

	event, err := DecodeCatalogEvent(msg.Body)
	if err != nil {
		log.Warn("dropping catalog event", zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			log.Error("nack failed", zap.Error(nackErr))
		}
		return
	}

	if event.Origin == c.instanceID {
		if ackErr := msg.Ack(false); ackErr != nil {
			log.Error("ack failed", zap.Error(ackErr))
		}
		return
	}

	if err := handler(event); err != nil {
		log.Error("catalog event handler failed", zap.String("type", event.Type), zap.Error(err))
		if nackErr := msg.Nack(false, true); nackErr != nil {
			log.Error("nack failed", zap.Error(nackErr))
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		log.Error("ack failed", zap.Error(ackErr))
	}
}
