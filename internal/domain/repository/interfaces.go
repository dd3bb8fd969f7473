package repository

import (
	"context"
	"time"

	"FinNotify/internal/domain/models"
)

// IndicatorProvider serves time-series indicators and returns only the latest point.
type IndicatorProvider interface {
	SMA(ctx context.Context, symbol, period string) (models.SeriesPoint, error)
	RSI(ctx context.Context, symbol, period string) (models.SeriesPoint, error)
}

// ScanProvider serves per-symbol scans and quotes.
type ScanProvider interface {
	SupportResistance(ctx context.Context, symbol string) ([]float64, error)
	AggregateIndicators(ctx context.Context, symbol string) (models.AggregateCount, error)
	Quote(ctx context.Context, symbol string) (models.Quote, error)
	Patterns(ctx context.Context, symbol string) ([]models.Pattern, error)
}

// PriceProvider serves current coin prices.
type PriceProvider interface {
	CurrentPrice(ctx context.Context, coin, currency string) (float64, error)
}

// Notifier delivers a notification. Callers treat it as fire-and-forget.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, req models.NotificationRequest) error
}

// EvaluationPublisher ships evaluation results to downstream consumers.
type EvaluationPublisher interface {
	PublishEvaluation(ctx context.Context, ev *models.TickerEvaluation) error
	Close() error
}

// Sleeper waits between notifications. It returns early with ctx.Err() on cancellation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type Metrics interface {
	RecordFetch(provider, family string, seconds float64, err error)
	RecordEvaluation(symbol, outcome string)
	RecordRuleFired(rule string)
	RecordNotification(sink string, kind models.NotificationKind, err error)
	RecordLastPrice(symbol string, price float64)
}
