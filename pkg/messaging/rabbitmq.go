package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bpadilla17/radladder-game/config"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient publishes game events to durable queues. Publishing is
// serialised because an amqp channel is not safe for concurrent use.
type RabbitMQClient struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	declared map[string]bool
}

func NewRabbitMQClient(cfg *config.RabbitMQConfig, queues ...string) (*RabbitMQClient, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.User, cfg.Password, cfg.Host, cfg.Port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	c := &RabbitMQClient{
		conn:     conn,
		declared: make(map[string]bool),
	}
	if err := c.openChannel(); err != nil {
		conn.Close()
		return nil, err
	}

	for _, q := range queues {
		if err := c.declare(q); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *RabbitMQClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// PublishJSON encodes payload and publishes it to queueName. A channel closed
// by the broker is reopened once before giving up.
func (c *RabbitMQClient) PublishJSON(ctx context.Context, queueName string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.publish(ctx, queueName, body)
	if !errors.Is(err, amqp.ErrClosed) || c.conn.IsClosed() {
		return err
	}

	if err := c.openChannel(); err != nil {
		return err
	}
	return c.publish(ctx, queueName, body)
}

func (c *RabbitMQClient) publish(ctx context.Context, queueName string, body []byte) error {
	if err := c.declare(queueName); err != nil {
		return err
	}

	return c.channel.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Type:         queueName,
			AppId:        "radladder-game",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}

func (c *RabbitMQClient) declare(queueName string) error {
	if c.declared[queueName] {
		return nil
	}
	_, err := c.channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	c.declared[queueName] = true
	return nil
}

// openChannel replaces the current channel. Queue declarations belong to the
// broker, not the channel, so they are kept.
func (c *RabbitMQClient) openChannel() error {
	channel, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	c.channel = channel
	return nil
}
