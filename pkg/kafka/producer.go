package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"

	kafka_config "staybook/pkg/kafka/config"
	"staybook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes synchronously so callers see broker failures. A message
// the broker refuses is parked on the dead letter topic when one is set.
type Producer struct {
	client     *kafka.Client
	writer     messageWriter
	dlqWriter  messageWriter
	topic      string
	dlqTopic   string
	middleware []Middleware
	log        *logger.Logger

	mu     sync.RWMutex
	closed bool
}

func NewProducer(cfg *kafka_config.Config, topic, dlqTopic string, log *logger.Logger) (*Producer, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("topic cannot be empty")
	}

	transport, err := newTransport(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure Kafka transport: %w", err)
	}

	p := &Producer{
		client: &kafka.Client{Addr: kafka.TCP(cfg.Brokers...), Transport: transport},
		writer: newWriter(transport, cfg.Brokers, writerOptions{
			topic:        topic,
			acks:         requiredAcks(cfg.ProducerRequireAcks),
			compression:  compressionCodec(cfg.ProducerCompression),
			maxAttempts:  cfg.ProducerMaxAttempts,
			batchTimeout: cfg.ProducerBatchTimeout,
		}, log),
		topic:    topic,
		dlqTopic: dlqTopic,
		log:      log,
	}
	if dlqTopic != "" {
		p.dlqWriter = dlqWriter(transport, cfg.Brokers, dlqTopic, log)
	}
	return p, nil
}

func (p *Producer) Topic() string {
	return p.topic
}

// Ping asks the cluster for the topic's metadata.
func (p *Producer) Ping(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	resp, err := p.client.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{p.topic}})
	if err != nil {
		return err
	}
	for _, t := range resp.Topics {
		if t.Error != nil {
			return fmt.Errorf("topic %s: %w", t.Name, t.Error)
		}
	}
	return nil
}

func (p *Producer) Use(mw Middleware) {
	p.mu.Lock()
	p.middleware = append(p.middleware, mw)
	p.mu.Unlock()
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	mws := append([]Middleware(nil), p.middleware...)
	p.mu.RUnlock()

	if msg.Topic == "" {
		msg.Topic = p.topic
	}
	return chain(p.write, mws)(ctx, msg)
}

func (p *Producer) write(ctx context.Context, msg Message) error {
	err := p.writer.WriteMessages(ctx, toKafkaMessage(msg))
	if err == nil || p.dlqWriter == nil {
		return err
	}

	parked := msg.withDLQHeaders(p.topic, "", err)
	if dlqErr := p.dlqWriter.WriteMessages(ctx, toKafkaMessage(parked)); dlqErr != nil {
		return fmt.Errorf("failed to send to DLQ: %v (original error: %w)", dlqErr, err)
	}
	p.log.Warn("Message routed to producer DLQ", "topic", p.topic, "dlq_topic", p.dlqTopic, "key", msg.Key, "error", err)
	return err
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	if p.writer != nil {
		errs = append(errs, p.writer.Close())
	}
	if p.dlqWriter != nil {
		errs = append(errs, p.dlqWriter.Close())
	}
	return errors.Join(errs...)
}
