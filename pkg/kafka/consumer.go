package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafka_config "staybook/pkg/kafka/config"
	"staybook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads a topic as part of a consumer group. Offsets are committed
// explicitly once a message is handled or parked, so a crash redelivers.
type Consumer struct {
	reader       messageReader
	dlqWriter    messageWriter
	topic        string
	groupID      string
	dlqTopic     string
	maxRetries   int
	retryBackoff time.Duration
	handler      MessageHandler
	middleware   []Middleware
	log          *logger.Logger

	mu      sync.RWMutex
	closed  bool
	running sync.WaitGroup
}

func NewConsumer(cfg *kafka_config.Config, topic, groupID, dlqTopic string, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config cannot be nil")
	case len(cfg.Brokers) == 0:
		return nil, errors.New("at least one broker is required")
	case topic == "":
		return nil, errors.New("topic cannot be empty")
	case groupID == "":
		return nil, errors.New("group ID cannot be empty")
	case handler == nil:
		return nil, errors.New("message handler cannot be nil")
	}

	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure Kafka dialer: %w", err)
	}

	c := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           cfg.Brokers,
			Topic:             topic,
			GroupID:           groupID,
			Dialer:            dialer,
			MinBytes:          cfg.ConsumerMinBytes,
			MaxBytes:          cfg.ConsumerMaxBytes,
			MaxWait:           cfg.ConsumerMaxWait,
			HeartbeatInterval: cfg.ConsumerHeartbeatInterval,
			SessionTimeout:    cfg.ConsumerSessionTimeout,
			RebalanceTimeout:  cfg.ConsumerRebalanceTimeout,
			StartOffset:       cfg.ConsumerStartOffset,
			Logger:            kafka.LoggerFunc(func(string, ...any) {}),
			ErrorLogger:       kafka.LoggerFunc(log.Printf),
		}),
		topic:        topic,
		groupID:      groupID,
		dlqTopic:     dlqTopic,
		maxRetries:   cfg.ConsumerMaxRetries,
		retryBackoff: cfg.ConsumerRetryBackoff,
		handler:      handler,
		log:          log,
	}

	if dlqTopic != "" {
		transport, err := newTransport(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to configure Kafka transport: %w", err)
		}
		c.dlqWriter = dlqWriter(transport, cfg.Brokers, dlqTopic, log)
	}
	return c, nil
}

func (c *Consumer) Use(mw Middleware) {
	c.mu.Lock()
	c.middleware = append(c.middleware, mw)
	c.mu.Unlock()
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.running.Add(1)
	c.mu.RUnlock()
	defer c.running.Done()

	for {
		raw, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("Kafka consumer failed to fetch message", "topic", c.topic, "error", err)
			if !sleepCtx(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}

		msg := fromKafkaMessage(raw)
		if err := c.processMessage(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error("Kafka consumer failed to process message",
				"topic", c.topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"event_id", msg.EventID(),
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, raw); err != nil {
			c.log.Error("Kafka consumer failed to commit offset", "topic", c.topic, "offset", raw.Offset, "error", err)
		}
	}
}

// processMessage retries transient failures with linear backoff, then parks
// the message on the DLQ.
func (c *Consumer) processMessage(ctx context.Context, msg Message) error {
	c.mu.RLock()
	handle := chain(c.handler, append([]Middleware(nil), c.middleware...))
	c.mu.RUnlock()

	for {
		err := handle(ctx, msg)
		if err == nil {
			return nil
		}

		attempt := msg.RetryCount()
		if ShouldRetry(err, attempt, c.maxRetries) {
			msg.markRetry()
			c.log.Warn("Retrying Kafka message", "attempt", attempt+1, "max_retries", c.maxRetries, "error", err)
			if !sleepCtx(ctx, c.retryBackoff*time.Duration(attempt+1)) {
				return ctx.Err()
			}
			continue
		}

		c.park(ctx, msg, err, attempt)
		return err
	}
}

func (c *Consumer) park(ctx context.Context, msg Message, cause error, retries int) {
	if c.dlqWriter == nil {
		return
	}
	parked := msg.withDLQHeaders(c.topic, c.groupID, cause)
	if err := c.dlqWriter.WriteMessages(ctx, toKafkaMessage(parked)); err != nil {
		c.log.Error("Failed to send message to DLQ", "dlq_topic", c.dlqTopic, "error", err, "original_error", cause)
		return
	}
	c.log.Warn("Message sent to DLQ", "dlq_topic", c.dlqTopic, "retries", retries, "error", cause)
}

// Close waits for Start to return, so cancel its context first.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.running.Wait()

	var errs []error
	if c.reader != nil {
		errs = append(errs, c.reader.Close())
	}
	if c.dlqWriter != nil {
		errs = append(errs, c.dlqWriter.Close())
	}
	return errors.Join(errs...)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
