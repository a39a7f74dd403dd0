package kafka

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	kafka_config "staybook/pkg/kafka/config"
	"staybook/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

const dialTimeout = 10 * time.Second

func saslMechanism(cfg *kafka_config.Config) (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case kafka_config.SASLNone:
		return nil, nil
	case kafka_config.SASLPlain:
		return plain.Mechanism{Username: cfg.SASLUsername, Password: cfg.SASLPassword}, nil
	case kafka_config.SASLScramSHA256:
		return scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
	case kafka_config.SASLScramSHA512:
		return scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism %q", cfg.SASLMechanism)
	}
}

func tlsConfig(cfg *kafka_config.Config) *tls.Config {
	if !cfg.TLSEnabled {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// newTransport is used by writers, newDialer by group readers. Both carry the
// same client id and credentials.
func newTransport(cfg *kafka_config.Config) (*kafka.Transport, error) {
	mechanism, err := saslMechanism(cfg)
	if err != nil {
		return nil, err
	}
	return &kafka.Transport{
		ClientID:    cfg.ClientID,
		DialTimeout: dialTimeout,
		TLS:         tlsConfig(cfg),
		SASL:        mechanism,
	}, nil
}

func newDialer(cfg *kafka_config.Config) (*kafka.Dialer, error) {
	mechanism, err := saslMechanism(cfg)
	if err != nil {
		return nil, err
	}
	return &kafka.Dialer{
		ClientID:      cfg.ClientID,
		Timeout:       dialTimeout,
		DualStack:     true,
		TLS:           tlsConfig(cfg),
		SASLMechanism: mechanism,
	}, nil
}

type writerOptions struct {
	topic        string
	acks         kafka.RequiredAcks
	compression  compress.Compression
	maxAttempts  int
	batchTimeout time.Duration
}

func newWriter(transport *kafka.Transport, brokers []string, opts writerOptions, log *logger.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        opts.topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: opts.acks,
		Compression:  opts.compression,
		MaxAttempts:  opts.maxAttempts,
		BatchTimeout: opts.batchTimeout,
		Transport:    transport,
		Logger:       kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:  kafka.LoggerFunc(log.Printf),
	}
}

// dlqWriter favours durability over latency: every replica acks.
func dlqWriter(transport *kafka.Transport, brokers []string, topic string, log *logger.Logger) *kafka.Writer {
	return newWriter(transport, brokers, writerOptions{
		topic:        topic,
		acks:         kafka.RequireAll,
		compression:  compress.Snappy,
		maxAttempts:  3,
		batchTimeout: 10 * time.Millisecond,
	}, log)
}

func requiredAcks(n int) kafka.RequiredAcks {
	switch n {
	case 0:
		return kafka.RequireNone
	case 1:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

func compressionCodec(name string) compress.Compression {
	switch name {
	case "none":
		return 0
	case "gzip":
		return compress.Gzip
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	default:
		return compress.Snappy
	}
}

func toKafkaMessage(msg Message) kafka.Message {
	out := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		out.Headers = append(out.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return out
}

func fromKafkaMessage(m kafka.Message) Message {
	msg := Message{
		Key:       string(m.Key),
		Value:     m.Value,
		Headers:   make(map[string]string, len(m.Headers)),
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Timestamp: m.Time,
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Middleware wraps a handler on either the publish or the consume path.
type Middleware func(ctx context.Context, msg Message, next MessageHandler) error

type (
	ProducerMiddleware = Middleware
	ConsumerMiddleware = Middleware
)

// chain applies mws so the first registered runs outermost.
func chain(h MessageHandler, mws []Middleware) MessageHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		mw, next := mws[i], h
		h = func(ctx context.Context, m Message) error { return mw(ctx, m, next) }
	}
	return h
}
