package rules

import (
	"fmt"
	"math"

	"FinNotify/internal/domain/models"
)

// RSINotOverbought holds strictly below level. At exactly level neither this nor RSIOverbought holds.
func RSINotOverbought(rsi, level float64) bool { return rsi < level }

// NearestSupport returns the level strictly below price that is closest to it.
// Non-positive levels are not prices and are ignored, so they never become
// the divisor of the support ratio.
func NearestSupport(levels []float64, price float64) (float64, error) {
	best, found := 0.0, false
	for _, l := range levels {
		if l <= 0 || l >= price {
			continue
		}
		if !found || math.Abs(price-l) < math.Abs(price-best) {
			best, found = l, true
		}
	}
	if !found {
		return 0, fmt.Errorf("price %.2f: %w", price, models.ErrNoSupportBelowPrice)
	}
	return best, nil
}

// Buy needs RSI, levels and quote. It fails with ErrNoSupportBelowPrice when
// the price sits below every level.
func (e *Evaluator) Buy(s *models.IndicatorSnapshot) (models.BuySignal, error) {
	if s.RSI == nil {
		return models.BuySignal{}, missing(s.Symbol, "rsi")
	}
	if len(s.Levels) == 0 {
		return models.BuySignal{}, missing(s.Symbol, "support/resistance levels")
	}
	price, ok := s.CurrentPrice()
	if !ok {
		return models.BuySignal{}, missing(s.Symbol, "quote")
	}

	notOverbought := RSINotOverbought(*s.RSI, e.th.OverboughtLevel)

	support, err := NearestSupport(s.Levels, price)
	if err != nil {
		return models.BuySignal{}, fmt.Errorf("%s: %w", s.Symbol, err)
	}

	ratio := price / support
	return models.BuySignal{
		Symbol:             s.Symbol,
		Support:            support,
		CurrentPrice:       price,
		Ratio:              ratio,
		RSINotOverbought:   notOverbought,
		ApproachingSupport: ratio <= e.th.SupportMargin && notOverbought,
	}, nil
}
