package models

import "time"

type NotificationKind string

const (
	KindBuy    NotificationKind = "buy"
	KindCrypto NotificationKind = "crypto"
)

// NotificationRequest is the only artifact handed to notification sinks.
// IconRef is optional; an empty string means no icon.
type NotificationRequest struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Symbol    string           `json:"symbol,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IconRef   string           `json:"icon_ref,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// CoinPrice is one coin's current price in the report currency.
type CoinPrice struct {
	Coin     string  `json:"coin"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

// CryptoReport collects the prices that could be fetched. Failed holds per-coin errors.
type CryptoReport struct {
	Currency string            `json:"currency"`
	Prices   []CoinPrice       `json:"prices"`
	Failed   map[string]string `json:"failed,omitempty"`
}

// TickerEvaluation is everything one evaluation pass produced for a ticker.
// Errors mirrors BuyErr and AggregateErr for serialization.
type TickerEvaluation struct {
	Snapshot     *IndicatorSnapshot `json:"snapshot"`
	Buy          *BuySignal         `json:"buy,omitempty"`
	Sell         *SellSignal        `json:"sell,omitempty"`
	Aggregate    *AggregateSignal   `json:"aggregate,omitempty"`
	Errors       map[string]string  `json:"errors,omitempty"`
	BuyErr       error              `json:"-"`
	AggregateErr error              `json:"-"`
}
