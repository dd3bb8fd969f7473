package usecase

import (
	"context"
	"fmt"
	"time"

	"FinNotify/internal/domain/models"
)

// fakeMarket serves canned data per symbol. Symbols listed in fail return
// ErrDataUnavailable for every family.
type fakeMarket struct {
	rsi    map[string]float64
	sma    map[string]map[string]float64
	levels map[string][]float64
	price  map[string]float64
	agg    map[string]models.AggregateCount
	fail   map[string]bool
	calls  int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		rsi:    map[string]float64{},
		sma:    map[string]map[string]float64{},
		levels: map[string][]float64{},
		price:  map[string]float64{},
		agg:    map[string]models.AggregateCount{},
		fail:   map[string]bool{},
	}
}

// add registers a healthy ticker.
func (m *fakeMarket) add(symbol string, price, rsi float64, levels ...float64) {
	m.price[symbol] = price
	m.rsi[symbol] = rsi
	m.levels[symbol] = levels
	m.sma[symbol] = map[string]float64{"20": price, "50": price, "200": price - 10}
	m.agg[symbol] = models.AggregateCount{Buy: 14, Neutral: 2, Sell: 1, ADX: 24.4602}
}

func (m *fakeMarket) unavailable(symbol, family string) error {
	return fmt.Errorf("%s %s: %w", symbol, family, models.ErrDataUnavailable)
}

func (m *fakeMarket) SMA(_ context.Context, symbol, period string) (models.SeriesPoint, error) {
	m.calls++
	v, ok := m.sma[symbol][period]
	if !ok || m.fail[symbol] {
		return models.SeriesPoint{}, m.unavailable(symbol, "sma")
	}
	return models.SeriesPoint{At: time.Now(), Value: v}, nil
}

func (m *fakeMarket) RSI(_ context.Context, symbol, _ string) (models.SeriesPoint, error) {
	m.calls++
	v, ok := m.rsi[symbol]
	if !ok || m.fail[symbol] {
		return models.SeriesPoint{}, m.unavailable(symbol, "rsi")
	}
	return models.SeriesPoint{At: time.Now(), Value: v}, nil
}

func (m *fakeMarket) SupportResistance(_ context.Context, symbol string) ([]float64, error) {
	m.calls++
	v, ok := m.levels[symbol]
	if !ok || m.fail[symbol] {
		return nil, m.unavailable(symbol, "levels")
	}
	return v, nil
}

func (m *fakeMarket) AggregateIndicators(_ context.Context, symbol string) (models.AggregateCount, error) {
	m.calls++
	v, ok := m.agg[symbol]
	if !ok || m.fail[symbol] {
		return models.AggregateCount{}, m.unavailable(symbol, "aggregate")
	}
	return v, nil
}

func (m *fakeMarket) Quote(_ context.Context, symbol string) (models.Quote, error) {
	m.calls++
	v, ok := m.price[symbol]
	if !ok || m.fail[symbol] {
		return models.Quote{}, m.unavailable(symbol, "quote")
	}
	return models.Quote{Current: v}, nil
}

func (m *fakeMarket) Patterns(context.Context, string) ([]models.Pattern, error) {
	return nil, nil
}

type recordingSink struct {
	got []models.NotificationRequest
	err error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Notify(_ context.Context, req models.NotificationRequest) error {
	s.got = append(s.got, req)
	return s.err
}

type fakeSleeper struct {
	slept []time.Duration
	err   error
}

func (s *fakeSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return s.err
}

type recordingPublisher struct {
	got []*models.TickerEvaluation
}

func (p *recordingPublisher) PublishEvaluation(_ context.Context, ev *models.TickerEvaluation) error {
	p.got = append(p.got, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fakePrices map[string]float64

func (f fakePrices) CurrentPrice(_ context.Context, coin, _ string) (float64, error) {
	p, ok := f[coin]
	if !ok {
		return 0, fmt.Errorf("price %s: %w", coin, models.ErrDataUnavailable)
	}
	return p, nil
}
