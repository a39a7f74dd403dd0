package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"staybook/pkg/kafka"
	"staybook/pkg/logger"
)

type counter struct {
	ok     atomic.Int64
	failed atomic.Int64
	nanos  atomic.Int64
}

func (c *counter) observe(start time.Time, err error) {
	c.nanos.Add(int64(time.Since(start)))
	if err != nil {
		c.failed.Add(1)
		return
	}
	c.ok.Add(1)
}

// avg covers both outcomes.
func (c *counter) avg() time.Duration {
	n := c.ok.Load() + c.failed.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(c.nanos.Load() / n)
}

// Metrics counts publish and consume outcomes for the lifetime of a process.
type Metrics struct {
	publish counter
	consume counter
}

type Snapshot struct {
	Published     int64
	PublishFailed int64
	AvgPublish    time.Duration
	Consumed      int64
	ConsumeFailed int64
	AvgConsume    time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Published:     m.publish.ok.Load(),
		PublishFailed: m.publish.failed.Load(),
		AvgPublish:    m.publish.avg(),
		Consumed:      m.consume.ok.Load(),
		ConsumeFailed: m.consume.failed.Load(),
		AvgConsume:    m.consume.avg(),
	}
}

func (m *Metrics) ProducerMiddleware() kafka.Middleware {
	return measure(&m.publish)
}

func (m *Metrics) ConsumerMiddleware() kafka.Middleware {
	return measure(&m.consume)
}

func measure(c *counter) kafka.Middleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		c.observe(start, err)
		return err
	}
}

func (m *Metrics) Log(log *logger.Logger) {
	s := m.Snapshot()
	log.Info("Kafka metrics",
		"published", s.Published,
		"published_failed", s.PublishFailed,
		"avg_publish_duration", s.AvgPublish.String(),
		"consumed", s.Consumed,
		"consumed_failed", s.ConsumeFailed,
		"avg_consume_duration", s.AvgConsume.String(),
	)
}
