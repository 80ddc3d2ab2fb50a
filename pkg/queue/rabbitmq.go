package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"akiya-share/pkg/config"
	"akiya-share/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	StorageCleanupQueueName = "storage_cleanup"
	StorageExchange         = "storage"
	cleanupRoutingKey       = "cleanup"

	// MaxCleanupAttempts bounds how often a blob removal is retried.
	MaxCleanupAttempts = 5
)

// CleanupTask names objects whose removal failed after their post was deleted.
type CleanupTask struct {
	Bucket  string   `json:"bucket"`
	Paths   []string `json:"paths"`
	Attempt int      `json:"attempt"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

type Client struct {
	conn    *amqp.Connection
	channel channel
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

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		StorageExchange, // name
		"direct",        // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	_, err = ch.QueueDeclare(
		StorageCleanupQueueName, // name
		true,                    // durable
		false,                   // delete when unused
		false,                   // exclusive
		false,                   // no-wait
		nil,                     // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.QueueBind(
		StorageCleanupQueueName, // queue name
		cleanupRoutingKey,       // routing key
		StorageExchange,         // exchange
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	log.Info("Connected to RabbitMQ at %s:%s", cfg.RabbitMQHost, cfg.RabbitMQPort)

	return &Client{
		conn:    conn,
		channel: ch,
		logger:  log,
	}, nil
}

func newClientWithChannel(ch channel, log *logger.Logger) *Client {
	return &Client{channel: ch, logger: log}
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

// PublishCleanupTask queues blobs for a later removal attempt.
func (c *Client) PublishCleanupTask(ctx context.Context, task CleanupTask) error {
	if len(task.Paths) == 0 {
		return nil
	}

	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = c.channel.PublishWithContext(ctx,
		StorageExchange,   // exchange
		cleanupRoutingKey, // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		c.logger.Error("[CLEANUP] Failed to publish task to exchange=%s: %v", StorageExchange, err)
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Info("[CLEANUP] Queued %d path(s) in bucket=%s, attempt=%d", len(task.Paths), task.Bucket, task.Attempt)
	return nil
}

// ConsumeCleanupTasks runs handler for every queued task until ctx is done.
// A failed task is published again with its attempt counter raised and is
// dropped after MaxCleanupAttempts.
func (c *Client) ConsumeCleanupTasks(ctx context.Context, handler func(ctx context.Context, task CleanupTask) error) error {
	msgs, err := c.channel.Consume(
		StorageCleanupQueueName, // queue
		"",                      // consumer
		false,                   // auto-ack
		false,                   // exclusive
		false,                   // no-local
		false,                   // no-wait
		nil,                     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("[CLEANUP] Started consuming from queue: %s", StorageCleanupQueueName)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c.handleDelivery(ctx, msg, handler)
			}
		}
	}()

	return nil
}

func (c *Client) handleDelivery(ctx context.Context, msg amqp.Delivery, handler func(ctx context.Context, task CleanupTask) error) {
	var task CleanupTask
	if err := json.Unmarshal(msg.Body, &task); err != nil {
		c.logger.Error("[CLEANUP] Failed to unmarshal task: %v, body=%s", err, string(msg.Body))
		msg.Nack(false, false)
		return
	}

	if err := handler(ctx, task); err != nil {
		task.Attempt++
		if task.Attempt >= MaxCleanupAttempts {
			c.logger.Error("[CLEANUP] Giving up on bucket=%s paths=%v after %d attempts: %v", task.Bucket, task.Paths, task.Attempt, err)
			msg.Nack(false, false)
			return
		}
		c.logger.Warn("[CLEANUP] Attempt %d failed for bucket=%s: %v", task.Attempt, task.Bucket, err)
		if perr := c.PublishCleanupTask(ctx, task); perr != nil {
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	msg.Ack(false)
}
