package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishEncodesValues(t *testing.T) {
	w := &recordingWriter{}
	reg := prometheus.NewRegistry()
	p := NewProducerWithWriter(w, "signals", "none", reg)

	err := p.Publish(context.Background(),
		Message{Key: []byte("AAPL"), Value: map[string]bool{"buy": true}, Headers: map[string]string{"type": "buy"}},
		Message{Key: []byte("MSFT"), Value: "raw"},
	)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 2 {
		t.Fatalf("wrote %d messages, want 2", len(w.msgs))
	}
	if got := string(w.msgs[0].Value); got != `{"buy":true}` {
		t.Fatalf("value = %s", got)
	}
	if len(w.msgs[0].Headers) != 1 || string(w.msgs[0].Headers[0].Value) != "buy" {
		t.Fatalf("headers = %+v", w.msgs[0].Headers)
	}
	if w.msgs[1].Topic != "" || string(w.msgs[1].Key) != "MSFT" {
		t.Fatalf("message = %+v", w.msgs[1])
	}
	if got := testutil.ToFloat64(p.metrics.messages.WithLabelValues("signals", "none", "ok")); got != 2 {
		t.Fatalf("messages metric = %v, want 2", got)
	}
}

func TestPublishNothingOnEncodeError(t *testing.T) {
	w := &recordingWriter{}
	p := NewProducerWithWriter(w, "signals", "none", prometheus.NewRegistry())

	err := p.Publish(context.Background(), Message{Value: "ok"}, Message{Value: make(chan int)})
	if err == nil {
		t.Fatal("expected encode error")
	}
	if len(w.msgs) != 0 {
		t.Fatalf("wrote %d messages after encode error", len(w.msgs))
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewProducerWithWriter(&recordingWriter{err: boom}, "signals", "gzip", prometheus.NewRegistry())
	if err := p.Publish(context.Background(), Message{Value: "x"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped broker error", err)
	}
}

func TestProducersShareMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewProducerWithWriter(&recordingWriter{}, "a", "none", reg)
	b := NewProducerWithWriter(&recordingWriter{}, "b", "none", reg)
	if a.metrics.messages != b.metrics.messages {
		t.Fatal("second producer should reuse the registered collectors")
	}
}

func TestNewProducerValidates(t *testing.T) {
	if _, err := NewProducer("signals"); err == nil {
		t.Fatal("expected error without brokers")
	}
	if _, err := NewProducer("", WithBrokers([]string{"localhost:9092"})); err == nil {
		t.Fatal("expected error without topic")
	}
	p, err := NewProducer("signals", WithBrokers([]string{"localhost:9092"}), WithRegisterer(prometheus.NewRegistry()))
	if err != nil {
		t.Fatalf("NewProducer: %v", err)
	}
	if p.Topic() != "signals" {
		t.Fatalf("topic = %q", p.Topic())
	}
	_ = p.Close()
}

func TestParseCompression(t *testing.T) {
	if parseCompression("none") != 0 {
		t.Fatal("none should disable compression")
	}
	if parseCompression("zstd") != kafka.Zstd {
		t.Fatal("zstd not mapped")
	}
}
