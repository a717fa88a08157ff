package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"crowdpulse/pkg/config"
	"crowdpulse/pkg/logger"
	"crowdpulse/pkg/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	IngestQueueName = "ingest_event_queue"
	IngestExchange  = "ingest_events"
	RunCompletedKey = "run_completed"
)

// IngestEvent is published after each platform finishes one run, so
// downstream consumers (alerting, analytics) can react to fresh posts.
type IngestEvent struct {
	Platform    models.Platform    `json:"platform"`
	Status      models.FetchStatus `json:"status"`
	ItemsSaved  int                `json:"items_saved"`
	CompletedAt time.Time          `json:"completed_at"`
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *logger.Logger
}

func NewRabbitMQClient(cfg *config.Config, log *logger.Logger) (*Client, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.RabbitMQUser,
		cfg.RabbitMQPassword,
		cfg.RabbitMQHost,
		cfg.RabbitMQPort,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare exchange for ingest events
	err = channel.ExchangeDeclare(
		IngestExchange, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = channel.QueueDeclare(
		IngestQueueName, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		IngestQueueName, // queue name
		RunCompletedKey, // routing key
		IngestExchange,  // exchange
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: channel,
		logger:  log,
	}, nil
}

// PublishRunCompleted emits one event per platform per run.
func (c *Client) PublishRunCompleted(event IngestEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode ingest event: %w", err)
	}

	err = c.channel.Publish(
		IngestExchange,  // exchange
		RunCompletedKey, // routing key
		false,           // mandatory
		false,           // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish ingest event: %w", err)
	}

	c.logger.Info("Published %s event for %s (%d saved)", RunCompletedKey, event.Platform, event.ItemsSaved)
	return nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
