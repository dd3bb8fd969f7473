package models

// RuleState is the outcome of one rule. Every rule reports one of the three,
// so results are complete records rather than "present only when true" maps.
type RuleState string

const (
	RuleSkipped RuleState = "skipped" // required inputs missing
	RuleClear   RuleState = "clear"
	RuleFired   RuleState = "fired"
)

// StateOf converts a boolean rule outcome.
func StateOf(fired bool) RuleState {
	if fired {
		return RuleFired
	}
	return RuleClear
}

// Sell rule names, as used in the sparse view.
const (
	SellRuleRSI        = "RSI"
	SellRuleSMA        = "SMA"
	SellRuleResistance = "SRL"
)

// SellSignal holds the independent sell rules.
type SellSignal struct {
	Symbol             string    `json:"symbol"`
	RSIOverbought      RuleState `json:"rsi_overbought"`
	SMACrossoverRisk   RuleState `json:"sma_crossover_risk"`
	ResistanceApproach RuleState `json:"resistance_approach"`
	// Resistance is the first level that triggered ResistanceApproach.
	Resistance *float64 `json:"resistance,omitempty"`
}

// Fired returns the sparse view: only rules that fired, keyed by rule name.
func (s SellSignal) Fired() map[string]bool {
	out := make(map[string]bool, 3)
	if s.RSIOverbought == RuleFired {
		out[SellRuleRSI] = true
	}
	if s.SMACrossoverRisk == RuleFired {
		out[SellRuleSMA] = true
	}
	if s.ResistanceApproach == RuleFired {
		out[SellRuleResistance] = true
	}
	return out
}

// Any reports whether at least one sell rule fired.
func (s SellSignal) Any() bool { return len(s.Fired()) > 0 }

// BuySignal is always fully populated when the buy rule succeeds.
type BuySignal struct {
	Symbol             string  `json:"symbol"`
	Support            float64 `json:"support"`
	CurrentPrice       float64 `json:"current_price"`
	Ratio              float64 `json:"ratio"`
	RSINotOverbought   bool    `json:"rsi_not_overbought"`
	ApproachingSupport bool    `json:"approaching_support"`
}

// AggregateSignal is the vote-share rule over the provider's indicator counts.
type AggregateSignal struct {
	Symbol    string  `json:"symbol"`
	Buy       bool    `json:"buy"`
	Sell      bool    `json:"sell"`
	BuyShare  float64 `json:"buy_share"`
	SellShare float64 `json:"sell_share"`
	ADX       float64 `json:"adx"`
}
