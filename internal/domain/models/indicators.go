package models

import "time"

// Indicator families fetched for one ticker. Used as keys of IndicatorSnapshot.Errors.
const (
	FamilySMA       = "sma"
	FamilyRSI       = "rsi"
	FamilyLevels    = "levels"
	FamilyQuote     = "quote"
	FamilyAggregate = "aggregate"

	// FamilyPattern is fetched on demand only and never part of a snapshot.
	FamilyPattern = "pattern"
	// FamilyPrice labels coin price requests.
	FamilyPrice = "price"
)

// Families lists every indicator family in fetch order.
var Families = []string{FamilySMA, FamilyRSI, FamilyLevels, FamilyQuote, FamilyAggregate}

// SeriesPoint is the latest point of a provider time series.
type SeriesPoint struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

type Quote struct {
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Current       float64   `json:"current"`
	PreviousClose float64   `json:"previous_close"`
	Timestamp     time.Time `json:"timestamp"`
}

// AggregateCount is the provider's vote over its technical indicators plus trend strength.
type AggregateCount struct {
	Buy      float64 `json:"buy"`
	Neutral  float64 `json:"neutral"`
	Sell     float64 `json:"sell"`
	Signal   string  `json:"signal,omitempty"`
	ADX      float64 `json:"adx"`
	Trending bool    `json:"trending"`
}

// Pattern is a chart pattern reported by the provider scan. Informational only.
type Pattern struct {
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

// IndicatorSnapshot bundles everything fetched for one ticker in one run.
// A nil pointer, nil slice or missing map key means the family was not fetched;
// Errors says why.
type IndicatorSnapshot struct {
	Symbol    string             `json:"symbol"`
	FetchedAt time.Time          `json:"fetched_at"`
	SMA       map[string]float64 `json:"sma,omitempty"`
	RSI       *float64           `json:"rsi,omitempty"`
	Levels    []float64          `json:"levels,omitempty"`
	Quote     *Quote             `json:"quote,omitempty"`
	Aggregate *AggregateCount    `json:"aggregate,omitempty"`
	Errors    map[string]string  `json:"errors,omitempty"`
}

// SMAValue returns the SMA for period if it was fetched.
func (s *IndicatorSnapshot) SMAValue(period string) (float64, bool) {
	v, ok := s.SMA[period]
	return v, ok
}

// CurrentPrice returns the quote's current price if the quote was fetched.
func (s *IndicatorSnapshot) CurrentPrice() (float64, bool) {
	if s.Quote == nil {
		return 0, false
	}
	return s.Quote.Current, true
}

// Missing reports whether a family failed to load.
func (s *IndicatorSnapshot) Missing(family string) bool {
	_, failed := s.Errors[family]
	return failed
}

// SetError records a family failure.
func (s *IndicatorSnapshot) SetError(family string, err error) {
	if s.Errors == nil {
		s.Errors = make(map[string]string)
	}
	s.Errors[family] = err.Error()
}
