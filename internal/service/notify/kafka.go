package notify

import (
	"context"
	"fmt"
	"time"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/domain/repository"
	"FinNotify/pkg/kafka"

	"github.com/google/uuid"
)

var (
	_ repository.Notifier            = (*Kafka)(nil)
	_ repository.EvaluationPublisher = (*Kafka)(nil)
)

// Event types published on the signals topic.
const (
	EventNotification = "notification"
	EventBuy          = "buy"
	EventSell         = "sell"
	EventAggregate    = "aggregate"
)

// Event is the envelope of every message on the signals topic. Key is the symbol.
type Event struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Symbol  string      `json:"symbol,omitempty"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload"`
}

// Kafka publishes notifications and evaluation results as events on the producer's topic.
type Kafka struct {
	producer *kafka.Producer
	now      func() time.Time
}

func NewKafka(p *kafka.Producer) *Kafka {
	return &Kafka{producer: p, now: time.Now}
}

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Notify(ctx context.Context, req models.NotificationRequest) error {
	ev := k.event(EventNotification, req.Symbol, req)
	if req.ID != "" {
		ev.ID = req.ID
	}
	if err := k.producer.Publish(ctx, k.message(ev)); err != nil {
		return fmt.Errorf("kafka notify: %w", err)
	}
	return nil
}

// PublishEvaluation sends one event per rule result present in ev.
func (k *Kafka) PublishEvaluation(ctx context.Context, ev *models.TickerEvaluation) error {
	if ev == nil || ev.Snapshot == nil {
		return nil
	}
	symbol := ev.Snapshot.Symbol

	var msgs []kafka.Message
	if ev.Buy != nil {
		msgs = append(msgs, k.message(k.event(EventBuy, symbol, ev.Buy)))
	}
	if ev.Sell != nil {
		msgs = append(msgs, k.message(k.event(EventSell, symbol, ev.Sell)))
	}
	if ev.Aggregate != nil {
		msgs = append(msgs, k.message(k.event(EventAggregate, symbol, ev.Aggregate)))
	}
	if err := k.producer.Publish(ctx, msgs...); err != nil {
		return fmt.Errorf("publish evaluation %s: %w", symbol, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

func (k *Kafka) event(typ, symbol string, payload interface{}) Event {
	return Event{
		ID:      uuid.NewString(),
		Type:    typ,
		Symbol:  symbol,
		At:      k.now().UTC(),
		Payload: payload,
	}
}

// message keys by symbol and mirrors the event type into a header for consumers that filter without decoding.
func (k *Kafka) message(ev Event) kafka.Message {
	return kafka.Message{Key: []byte(ev.Symbol), Value: ev, Headers: map[string]string{"type": ev.Type}}
}

// NopPublisher drops evaluations. Used when the kafka sink is disabled.
type NopPublisher struct{}

var _ repository.EvaluationPublisher = NopPublisher{}

func (NopPublisher) PublishEvaluation(context.Context, *models.TickerEvaluation) error { return nil }
func (NopPublisher) Close() error { return nil }
