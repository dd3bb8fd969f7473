package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinNotify/internal/domain/models"
	drepo "FinNotify/internal/domain/repository"
	"FinNotify/internal/services/rules"
	"FinNotify/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Evaluation outcomes recorded per ticker.
const (
	OutcomeNotified = "notified"
	OutcomeQuiet    = "quiet"
	OutcomeFailed   = "failed"
)

// SnapshotSource loads an indicator snapshot for one ticker.
type SnapshotSource interface {
	Fetch(ctx context.Context, symbol string) (*models.IndicatorSnapshot, error)
}

// RunReport summarises one pass over the watch-list.
type RunReport struct {
	Evaluated []string
	Notified  []string
	Failed    map[string]error
}

// AllFailed reports whether the run had tickers and none of them evaluated.
func (r *RunReport) AllFailed() bool {
	return len(r.Failed) > 0 && len(r.Evaluated) == 0
}

// StockNotifier walks the watch-list, evaluates the rules per ticker and
// notifies when the buy rule says the price is approaching support.
type StockNotifier struct {
	source    SnapshotSource
	evaluator *rules.Evaluator
	sink      drepo.Notifier
	publisher drepo.EvaluationPublisher
	sleeper   drepo.Sleeper
	metrics   drepo.Metrics
	log       *logger.Logger

	tickers []string
	icons   map[string]string
	delay   time.Duration
	now     func() time.Time
}

func NewStockNotifier(
	source SnapshotSource,
	evaluator *rules.Evaluator,
	sink drepo.Notifier,
	publisher drepo.EvaluationPublisher,
	sleeper drepo.Sleeper,
	metrics drepo.Metrics,
	l *logger.Logger,
	tickers []string,
	icons map[string]string,
	delay time.Duration,
) *StockNotifier {
	for _, t := range tickers {
		if _, ok := icons[t]; !ok {
			l.Warn("watched ticker has no icon and will fail each run", logger.String("symbol", t))
		}
	}
	return &StockNotifier{
		source:    source,
		evaluator: evaluator,
		sink:      sink,
		publisher: publisher,
		sleeper:   sleeper,
		metrics:   metrics,
		log:       l,
		tickers:   tickers,
		icons:     icons,
		delay:     delay,
		now:       time.Now,
	}
}

// Icon returns the icon for symbol, or ErrUnknownTicker.
func (n *StockNotifier) Icon(symbol string) (string, error) {
	icon, ok := n.icons[symbol]
	if !ok {
		return "", fmt.Errorf("%s: %w", symbol, models.ErrUnknownTicker)
	}
	return icon, nil
}

// Evaluate fetches and evaluates one ticker from the icon table.
func (n *StockNotifier) Evaluate(ctx context.Context, symbol string) (*models.TickerEvaluation, error) {
	if _, err := n.Icon(symbol); err != nil {
		return nil, err
	}
	snap, err := n.source.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	ev := n.evaluator.Evaluate(snap)
	n.logRules(ev)
	return ev, nil
}

// Run evaluates every ticker in watch-list order. A failing ticker is logged,
// counted and skipped. Consecutive notifications are spaced by the configured delay.
// The only error returned is context cancellation.
func (n *StockNotifier) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{Failed: make(map[string]error)}

	for _, symbol := range n.tickers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ev, err := n.Evaluate(ctx, symbol)
		if err == nil && ev.BuyErr != nil {
			err = ev.BuyErr
		}
		if ev != nil {
			n.publish(ctx, ev)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			n.fail(report, symbol, err)
			continue
		}
		report.Evaluated = append(report.Evaluated, symbol)
		n.metrics.RecordLastPrice(symbol, ev.Buy.CurrentPrice)

		if !ev.Buy.ApproachingSupport {
			n.metrics.RecordEvaluation(symbol, OutcomeQuiet)
			continue
		}

		if len(report.Notified) > 0 {
			if err := n.sleeper.Sleep(ctx, n.delay); err != nil {
				return report, err
			}
		}
		n.notify(ctx, symbol, ev.Buy)
		report.Notified = append(report.Notified, symbol)
		n.metrics.RecordEvaluation(symbol, OutcomeNotified)
	}

	n.log.Info("stock run finished",
		logger.Int("evaluated", len(report.Evaluated)),
		logger.Int("notified", len(report.Notified)),
		logger.Int("failed", len(report.Failed)),
	)
	return report, nil
}

func (n *StockNotifier) notify(ctx context.Context, symbol string, buy *models.BuySignal) {
	icon, _ := n.Icon(symbol)
	req := models.NotificationRequest{
		ID:        uuid.NewString(),
		Kind:      models.KindBuy,
		Symbol:    symbol,
		Title:     symbol + " BUY",
		Message:   "Current Price @ $" + decimal.NewFromFloat(buy.CurrentPrice).String(),
		IconRef:   icon,
		CreatedAt: n.now().UTC(),
	}
	n.log.Info("buy signal",
		logger.String("symbol", symbol),
		logger.Float64("price", buy.CurrentPrice),
		logger.Float64("support", buy.Support),
	)
	if err := n.sink.Notify(ctx, req); err != nil {
		n.log.Error("notification failed", logger.String("symbol", symbol), logger.Error(err))
	}
}

func (n *StockNotifier) publish(ctx context.Context, ev *models.TickerEvaluation) {
	if err := n.publisher.PublishEvaluation(ctx, ev); err != nil {
		n.log.Warn("publish evaluation failed", logger.String("symbol", ev.Snapshot.Symbol), logger.Error(err))
	}
}

func (n *StockNotifier) fail(report *RunReport, symbol string, err error) {
	report.Failed[symbol] = err
	n.metrics.RecordEvaluation(symbol, OutcomeFailed)

	msg := "ticker evaluation failed"
	if errors.Is(err, models.ErrNoSupportBelowPrice) {
		msg = "no support below price"
	}
	n.log.Error(msg, logger.String("symbol", symbol), logger.Error(err))
}

// logRules reports sell and aggregate results, which never notify.
func (n *StockNotifier) logRules(ev *models.TickerEvaluation) {
	symbol := ev.Snapshot.Symbol
	for family, msg := range ev.Snapshot.Errors {
		n.log.Debug("family missing", logger.String("symbol", symbol), logger.String("family", family), logger.String("reason", msg))
	}

	if ev.Sell != nil {
		fired := ev.Sell.Fired()
		for rule := range fired {
			n.metrics.RecordRuleFired(rule)
		}
		if len(fired) > 0 {
			n.log.Info("sell signal",
				logger.String("symbol", symbol),
				logger.Any("rules", fired),
			)
		}
	}
	if ev.Buy != nil && ev.Buy.ApproachingSupport {
		n.metrics.RecordRuleFired("BUY")
	}

	switch {
	case ev.Aggregate != nil:
		if ev.Aggregate.Buy {
			n.metrics.RecordRuleFired("AGG_BUY")
		}
		if ev.Aggregate.Sell {
			n.metrics.RecordRuleFired("AGG_SELL")
		}
		n.log.Info("aggregate signal",
			logger.String("symbol", symbol),
			logger.Bool("buy", ev.Aggregate.Buy),
			logger.Bool("sell", ev.Aggregate.Sell),
			logger.Float64("adx", ev.Aggregate.ADX),
		)
	case ev.AggregateErr != nil:
		n.log.Warn("aggregate signal unavailable", logger.String("symbol", symbol), logger.Error(ev.AggregateErr))
	}
}
