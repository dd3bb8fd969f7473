package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FinNotify/internal/domain/models"
	drepo "FinNotify/internal/domain/repository"
	"FinNotify/pkg/logger"
)

// SnapshotFetcher gathers every indicator family for one ticker.
// A failing family is recorded in the snapshot and left absent; Fetch fails
// only when no family could be loaded.
type SnapshotFetcher struct {
	indicators drepo.IndicatorProvider
	scans      drepo.ScanProvider
	smaPeriods []string
	rsiPeriod  string
	log        *logger.Logger
	now        func() time.Time
}

func NewSnapshotFetcher(
	indicators drepo.IndicatorProvider,
	scans drepo.ScanProvider,
	smaPeriods []string,
	rsiPeriod string,
	l *logger.Logger,
) *SnapshotFetcher {
	return &SnapshotFetcher{
		indicators: indicators,
		scans:      scans,
		smaPeriods: smaPeriods,
		rsiPeriod:  rsiPeriod,
		log:        l,
		now:        time.Now,
	}
}

// Fetch issues one request per family (one per SMA period) in a fixed order.
func (f *SnapshotFetcher) Fetch(ctx context.Context, symbol string) (*models.IndicatorSnapshot, error) {
	s := &models.IndicatorSnapshot{Symbol: symbol, FetchedAt: f.now().UTC()}

	steps := []struct {
		family string
		load   func() error
	}{
		{models.FamilySMA, func() error { return f.fetchSMA(ctx, s) }},
		{models.FamilyRSI, func() error {
			p, err := f.indicators.RSI(ctx, symbol, f.rsiPeriod)
			if err == nil {
				s.RSI = &p.Value
			}
			return err
		}},
		{models.FamilyLevels, func() error {
			levels, err := f.scans.SupportResistance(ctx, symbol)
			if err == nil {
				s.Levels = levels
			}
			return err
		}},
		{models.FamilyQuote, func() error {
			q, err := f.scans.Quote(ctx, symbol)
			if err == nil {
				s.Quote = &q
			}
			return err
		}},
		{models.FamilyAggregate, func() error {
			a, err := f.scans.AggregateIndicators(ctx, symbol)
			if err == nil {
				s.Aggregate = &a
			}
			return err
		}},
	}

	failed := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, err)
		}
		if err := step.load(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return nil, fmt.Errorf("fetch %s: %w", symbol, ctxErr)
			}
			s.SetError(step.family, err)
			if !f.partial(s, step.family) {
				failed++
			}
			f.log.Warn("indicator family unavailable",
				logger.String("symbol", symbol),
				logger.String("family", step.family),
				logger.Error(err),
			)
		}
	}

	if failed == len(steps) {
		return nil, fmt.Errorf("fetch %s: every indicator family failed: %w", symbol, models.ErrDataUnavailable)
	}
	return s, nil
}

// fetchSMA keeps the periods that loaded and reports the first failure.
func (f *SnapshotFetcher) fetchSMA(ctx context.Context, s *models.IndicatorSnapshot) error {
	var firstErr error
	for _, period := range f.smaPeriods {
		p, err := f.indicators.SMA(ctx, s.Symbol, period)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if s.SMA == nil {
			s.SMA = make(map[string]float64, len(f.smaPeriods))
		}
		s.SMA[period] = p.Value
	}
	return firstErr
}

// partial reports whether a failed family still produced some data.
func (f *SnapshotFetcher) partial(s *models.IndicatorSnapshot, family string) bool {
	return family == models.FamilySMA && len(s.SMA) > 0
}
