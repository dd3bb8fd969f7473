package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Message is one record to publish. Value is sent as is when it is []byte or
// string and JSON encoded otherwise.
type Message struct {
	Key     []byte
	Value   interface{}
	Headers map[string]string
}

// Producer publishes to a single topic.
type Producer struct {
	writer  MessageWriter
	topic   string
	comp    string
	metrics *producerMetrics
}

// NewProducer dials nothing up front; kafka-go connects on the first write.
func NewProducer(topic string, opts ...ProducerOption) (*Producer, error) {
	cfg := defaultProducerConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}

	var balancer kafka.Balancer = &kafka.LeastBytes{}
	if cfg.HashByKey {
		balancer = &kafka.Hash{}
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     balancer,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:  parseCompression(cfg.Compression),
		MaxAttempts:  cfg.MaxAttempts,
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: cfg.BatchTimeout,
	}
	return NewProducerWithWriter(w, topic, cfg.Compression, cfg.Registerer), nil
}

// NewProducerWithWriter wraps w, which must already be bound to topic.
// A nil reg uses the default registerer.
func NewProducerWithWriter(w MessageWriter, topic, compression string, reg prometheus.Registerer) *Producer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Producer{writer: w, topic: topic, comp: compression, metrics: newProducerMetrics(reg)}
}

func (p *Producer) Topic() string { return p.topic }

// Publish writes msgs in one batch. Nothing is sent when any value fails to encode.
func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now()
	out := make([]kafka.Message, len(msgs))
	var size int
	for i, m := range msgs {
		v, err := encode(m.Value)
		if err != nil {
			return fmt.Errorf("encode message %d: %w", i, err)
		}
		out[i] = kafka.Message{Key: m.Key, Value: v, Headers: headers(m.Headers), Time: now}
		size += len(v)
	}

	err := p.writer.WriteMessages(ctx, out...)
	p.metrics.observe(p.topic, p.comp, len(out), size, time.Since(now), err)
	if err != nil {
		return fmt.Errorf("write %d messages to %s: %w", len(out), p.topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return json.Marshal(value)
}

func headers(h map[string]string) []kafka.Header {
	if len(h) == 0 {
		return nil
	}
	out := make([]kafka.Header, 0, len(h))
	for k, v := range h {
		out = append(out, kafka.Header{Key: k, Value: []byte(v)})
	}
	return out
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "none":
		return 0
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	}
	return kafka.Gzip
}

type producerMetrics struct {
	messages *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func newProducerMetrics(reg prometheus.Registerer) *producerMetrics {
	return &producerMetrics{
		messages: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finnotify_kafka_producer_messages_total",
			Help: "Messages published to Kafka by result.",
		}, []string{"topic", "compression", "result"})),
		bytes: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "finnotify_kafka_producer_bytes_total",
			Help: "Encoded payload bytes handed to the Kafka writer.",
		}, []string{"topic", "compression"})),
		latency: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finnotify_kafka_producer_publish_seconds",
			Help:    "Time spent in one batch write.",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"})),
	}
}

// register returns the collector already registered under the same name, if any.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *producerMetrics) observe(topic, comp string, count, size int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.messages.WithLabelValues(topic, comp, result).Add(float64(count))
	m.bytes.WithLabelValues(topic, comp).Add(float64(size))
	m.latency.WithLabelValues(topic).Observe(d.Seconds())
}
