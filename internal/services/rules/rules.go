// Package rules turns an IndicatorSnapshot into buy, sell and aggregate signals.
// Every function here is pure: no I/O, no clocks.
package rules

import (
	"fmt"

	"FinNotify/internal/domain/models"
)

// Thresholds parameterises the rules. Zero values are not meaningful; start from DefaultThresholds.
type Thresholds struct {
	OverboughtLevel  float64 // RSI level: sell fires above, buy needs strictly below
	SMAMargin        float64 // max sma200-sma50 gap that counts as an imminent cross
	ResistanceMargin float64 // max L-price distance that counts as approaching resistance
	SupportMargin    float64 // max price/support ratio that counts as approaching support
	AggregateShare   float64 // vote share that makes the aggregate a buy or sell
	StrictResistance bool    // only levels at or above price count as resistance
	FastSMA          string
	SlowSMA          string
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		OverboughtLevel:  70,
		SMAMargin:        1,
		ResistanceMargin: 1,
		SupportMargin:    1.02,
		AggregateShare:   0.8,
		FastSMA:          "50",
		SlowSMA:          "200",
	}
}

type Evaluator struct {
	th Thresholds
}

func New(th Thresholds) *Evaluator {
	return &Evaluator{th: th}
}

// Thresholds returns the configured thresholds.
func (e *Evaluator) Thresholds() Thresholds { return e.th }

// Evaluate runs all three rules. Rule errors are collected per rule name rather than returned,
// so one unusable family never hides the others.
func (e *Evaluator) Evaluate(s *models.IndicatorSnapshot) *models.TickerEvaluation {
	ev := &models.TickerEvaluation{Snapshot: s}
	record := func(rule string, err error) {
		if ev.Errors == nil {
			ev.Errors = make(map[string]string)
		}
		ev.Errors[rule] = err.Error()
	}

	sell := e.Sell(s)
	ev.Sell = &sell

	if buy, err := e.Buy(s); err != nil {
		ev.BuyErr = err
		record("buy", err)
	} else {
		ev.Buy = &buy
	}

	if agg, err := e.Aggregate(s); err != nil {
		ev.AggregateErr = err
		record("aggregate", err)
	} else {
		ev.Aggregate = &agg
	}
	return ev
}

func missing(symbol, what string) error {
	return fmt.Errorf("%s: %s not fetched: %w", symbol, what, models.ErrDataUnavailable)
}
