package rules

import (
	"fmt"

	"FinNotify/internal/domain/models"

	"github.com/shopspring/decimal"
)

// RoundADX rounds to three decimal places, half away from zero.
func RoundADX(adx float64) float64 {
	return decimal.NewFromFloat(adx).Round(3).InexactFloat64()
}

// Shares returns the buy and sell vote shares. A zero total is ErrDivisionByZero.
func Shares(c models.AggregateCount) (buy, sell float64, err error) {
	total := c.Buy + c.Neutral + c.Sell
	if total == 0 {
		return 0, 0, models.ErrDivisionByZero
	}
	return c.Buy / total, c.Sell / total, nil
}

// Aggregate flags a buy or sell when that side holds more than the configured share.
// Both can be false; with a share above one half they cannot both be true.
func (e *Evaluator) Aggregate(s *models.IndicatorSnapshot) (models.AggregateSignal, error) {
	if s.Aggregate == nil {
		return models.AggregateSignal{}, missing(s.Symbol, "aggregate indicators")
	}

	buy, sell, err := Shares(*s.Aggregate)
	if err != nil {
		return models.AggregateSignal{}, fmt.Errorf("%s: %w", s.Symbol, err)
	}

	return models.AggregateSignal{
		Symbol:    s.Symbol,
		Buy:       buy > e.th.AggregateShare,
		Sell:      sell > e.th.AggregateShare,
		BuyShare:  buy,
		SellShare: sell,
		ADX:       RoundADX(s.Aggregate.ADX),
	}, nil
}
