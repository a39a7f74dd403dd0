package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Message is the broker-independent form of a record. Values are JSON.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
	HeaderRetryCount    = "retry-count"
	HeaderOriginalTopic = "original-topic"

	HeaderDLQError         = "dlq-error"
	HeaderDLQTimestamp     = "dlq-timestamp"
	HeaderDLQConsumerGroup = "dlq-consumer-group"
)

type MessageHandler func(ctx context.Context, msg Message) error

type MessageOption func(*Message)

// WithHeader sets a header. Empty values are skipped.
func WithHeader(key, value string) MessageOption {
	return func(m *Message) {
		if value != "" {
			m.Headers[key] = value
		}
	}
}

func WithEventID(id string) MessageOption { return WithHeader(HeaderEventID, id) }

func WithCorrelationID(id string) MessageOption { return WithHeader(HeaderCorrelationID, id) }

func WithSource(source string) MessageOption { return WithHeader(HeaderSource, source) }

func WithSchemaVersion(v string) MessageOption { return WithHeader(HeaderSchemaVersion, v) }

// NewMessage JSON-encodes value and stamps the event headers. An event id is
// generated unless one is supplied.
func NewMessage(key, eventType string, value any, opts ...MessageOption) (Message, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	now := time.Now().UTC()
	msg := Message{
		Key:       key,
		Value:     data,
		Timestamp: now,
		Headers: map[string]string{
			HeaderEventType: eventType,
			HeaderTimestamp: now.Format(time.RFC3339),
		},
	}
	for _, opt := range opts {
		opt(&msg)
	}
	if msg.Headers[HeaderEventID] == "" {
		msg.Headers[HeaderEventID] = uuid.NewString()
	}
	return msg, nil
}

func (m Message) Decode(v any) error {
	if err := json.Unmarshal(m.Value, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return nil
}

func (m Message) Header(key string) string { return m.Headers[key] }
func (m Message) EventID() string          { return m.Headers[HeaderEventID] }
func (m Message) EventType() string        { return m.Headers[HeaderEventType] }
func (m Message) CorrelationID() string    { return m.Headers[HeaderCorrelationID] }

// RetryCount is the number of in-process redeliveries so far.
func (m Message) RetryCount() int {
	n, err := strconv.Atoi(m.Headers[HeaderRetryCount])
	if err != nil {
		return 0
	}
	return n
}

func (m *Message) markRetry() {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[HeaderRetryCount] = strconv.Itoa(m.RetryCount() + 1)
}

// withDLQHeaders copies m and records where and why it failed.
func (m Message) withDLQHeaders(topic, group string, cause error) Message {
	headers := make(map[string]string, len(m.Headers)+4)
	for k, v := range m.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = topic
	headers[HeaderDLQError] = cause.Error()
	headers[HeaderDLQTimestamp] = time.Now().UTC().Format(time.RFC3339)
	if group != "" {
		headers[HeaderDLQConsumerGroup] = group
	}
	m.Headers = headers
	m.Timestamp = time.Now()
	return m
}
