package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinNotify/internal/domain/models"
	drepo "FinNotify/internal/domain/repository"
	"FinNotify/pkg/logger"
	"FinNotify/pkg/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const cryptoTitle = "Crypto Prices"

// CryptoReporter fetches the coin watch-list and sends one summary notification.
type CryptoReporter struct {
	prices   drepo.PriceProvider
	sink     drepo.Notifier
	metrics  drepo.Metrics
	log      *logger.Logger
	coins    []string
	currency string
	now      func() time.Time
}

func NewCryptoReporter(
	prices drepo.PriceProvider,
	sink drepo.Notifier,
	metrics drepo.Metrics,
	l *logger.Logger,
	coins []string,
	currency string,
) *CryptoReporter {
	return &CryptoReporter{
		prices:   prices,
		sink:     sink,
		metrics:  metrics,
		log:      l,
		coins:    coins,
		currency: currency,
		now:      time.Now,
	}
}

// Fetch collects prices in coin order. A failing coin is dropped from the report.
func (r *CryptoReporter) Fetch(ctx context.Context, currency string, coins []string) (*models.CryptoReport, error) {
	if currency == "" {
		currency = r.currency
	}
	if len(coins) == 0 {
		coins = r.coins
	}
	currency = strings.ToLower(currency)

	report := &models.CryptoReport{Currency: currency}
	for _, coin := range coins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := r.prices.CurrentPrice(ctx, coin, currency)
		if err != nil {
			if report.Failed == nil {
				report.Failed = make(map[string]string)
			}
			report.Failed[coin] = err.Error()
			r.log.Error("coin price unavailable", logger.String("coin", coin), logger.Error(err))
			continue
		}
		report.Prices = append(report.Prices, models.CoinPrice{Coin: coin, Currency: currency, Price: p})
		r.metrics.RecordLastPrice(coin, p)
	}

	if len(report.Prices) == 0 {
		return report, fmt.Errorf("no coin price available: %w", models.ErrDataUnavailable)
	}
	return report, nil
}

// Run fetches the configured coins and notifies once. Nothing is sent when every coin failed.
func (r *CryptoReporter) Run(ctx context.Context) (*models.CryptoReport, error) {
	report, err := r.Fetch(ctx, r.currency, r.coins)
	if err != nil {
		return report, err
	}

	req := models.NotificationRequest{
		ID:        uuid.NewString(),
		Kind:      models.KindCrypto,
		Title:     cryptoTitle,
		Message:   FormatCryptoReport(report),
		CreatedAt: r.now().UTC(),
	}
	if err := r.sink.Notify(ctx, req); err != nil {
		r.log.Error("crypto notification failed", logger.Error(err))
	}
	r.log.Info("crypto run finished",
		logger.Int("coins", len(report.Prices)),
		logger.Int("failed", len(report.Failed)),
	)
	return report, nil
}

// FormatCryptoReport renders one "Name @ $price" line per coin.
func FormatCryptoReport(report *models.CryptoReport) string {
	lines := make([]string, 0, len(report.Prices))
	for _, p := range report.Prices {
		lines = append(lines, fmt.Sprintf("%s @ $%s", util.TitleCase(p.Coin), decimal.NewFromFloat(p.Price).String()))
	}
	return strings.Join(lines, "\n")
}
