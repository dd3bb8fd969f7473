package rules

import "FinNotify/internal/domain/models"

// RSIOverbought fires strictly above level.
func RSIOverbought(rsi, level float64) bool { return rsi > level }

// SMACrossoverRisk fires when the slow average is above the fast one and the gap
// has narrowed below margin, i.e. a downward cross is imminent.
func SMACrossoverRisk(slow, fast, margin float64) bool {
	return slow > fast && slow-fast < margin
}

// ApproachingResistance returns the first level within margin of price.
// Without strict, levels already below price also count.
func ApproachingResistance(levels []float64, price, margin float64, strict bool) (float64, bool) {
	for _, l := range levels {
		if strict && l < price {
			continue
		}
		if l-price < margin {
			return l, true
		}
	}
	return 0, false
}

// Sell evaluates each sell rule independently. A rule whose inputs are missing is RuleSkipped.
func (e *Evaluator) Sell(s *models.IndicatorSnapshot) models.SellSignal {
	out := models.SellSignal{
		Symbol:             s.Symbol,
		RSIOverbought:      models.RuleSkipped,
		SMACrossoverRisk:   models.RuleSkipped,
		ResistanceApproach: models.RuleSkipped,
	}

	if s.RSI != nil {
		out.RSIOverbought = models.StateOf(RSIOverbought(*s.RSI, e.th.OverboughtLevel))
	}

	slow, okSlow := s.SMAValue(e.th.SlowSMA)
	fast, okFast := s.SMAValue(e.th.FastSMA)
	if okSlow && okFast {
		out.SMACrossoverRisk = models.StateOf(SMACrossoverRisk(slow, fast, e.th.SMAMargin))
	}

	if price, ok := s.CurrentPrice(); ok && len(s.Levels) > 0 {
		level, fired := ApproachingResistance(s.Levels, price, e.th.ResistanceMargin, e.th.StrictResistance)
		out.ResistanceApproach = models.StateOf(fired)
		if fired {
			out.Resistance = &level
		}
	}
	return out
}
