package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"FinNotify/internal/domain/models"
	drepo "FinNotify/internal/domain/repository"
	"FinNotify/internal/service/provider"
)

const Name = "finnhub"

var _ drepo.ScanProvider = (*Client)(nil)

// Client reads scans and quotes from the Finnhub REST API.
type Client struct {
	base       *provider.Base
	apiKey     string
	resolution string
}

// New creates a Finnhub client. An empty resolution means daily ("D").
func New(base *provider.Base, apiKey, resolution string) *Client {
	if resolution == "" {
		resolution = "D"
	}
	return &Client{base: base, apiKey: apiKey, resolution: resolution}
}

type levelsResponse struct {
	Levels *[]float64 `json:"levels"`
}

// SupportResistance returns the support/resistance levels for symbol.
func (c *Client) SupportResistance(ctx context.Context, symbol string) ([]float64, error) {
	var levels []float64
	err := c.get(ctx, models.FamilyLevels, "/scan/support-resistance", c.scanQuery(symbol), func(body []byte) error {
		var resp levelsResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode levels: %w", err)
		}
		if resp.Levels == nil {
			return fmt.Errorf("response has no levels")
		}
		levels = *resp.Levels
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("support/resistance %s: %w", symbol, err)
	}
	if levels == nil {
		levels = []float64{}
	}
	return levels, nil
}

type aggregateResponse struct {
	TechnicalAnalysis *struct {
		Count struct {
			Buy     float64 `json:"buy"`
			Neutral float64 `json:"neutral"`
			Sell    float64 `json:"sell"`
		} `json:"count"`
		Signal string `json:"signal"`
	} `json:"technicalAnalysis"`
	Trend *struct {
		ADX      float64 `json:"adx"`
		Trending bool    `json:"trending"`
	} `json:"trend"`
}

// AggregateIndicators returns the buy/neutral/sell vote and the trend strength.
func (c *Client) AggregateIndicators(ctx context.Context, symbol string) (models.AggregateCount, error) {
	var out models.AggregateCount
	err := c.get(ctx, models.FamilyAggregate, "/scan/technical-indicator", c.scanQuery(symbol), func(body []byte) error {
		var resp aggregateResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode aggregate: %w", err)
		}
		if resp.TechnicalAnalysis == nil || resp.Trend == nil {
			return fmt.Errorf("response has no technicalAnalysis or trend")
		}
		out = models.AggregateCount{
			Buy:      resp.TechnicalAnalysis.Count.Buy,
			Neutral:  resp.TechnicalAnalysis.Count.Neutral,
			Sell:     resp.TechnicalAnalysis.Count.Sell,
			Signal:   resp.TechnicalAnalysis.Signal,
			ADX:      resp.Trend.ADX,
			Trending: resp.Trend.Trending,
		}
		return nil
	})
	if err != nil {
		return models.AggregateCount{}, fmt.Errorf("aggregate indicators %s: %w", symbol, err)
	}
	return out, nil
}

type quoteResponse struct {
	C  float64 `json:"c"`
	H  float64 `json:"h"`
	L  float64 `json:"l"`
	O  float64 `json:"o"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"` // unix seconds
}

// Quote returns the current quote. Finnhub answers unknown symbols with an all-zero quote.
func (c *Client) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	var out models.Quote
	q := url.Values{"symbol": {symbol}, "token": {c.apiKey}}
	err := c.get(ctx, models.FamilyQuote, "/quote", q, func(body []byte) error {
		var resp quoteResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode quote: %w", err)
		}
		if resp.C == 0 && resp.T == 0 {
			return fmt.Errorf("empty quote")
		}
		out = models.Quote{
			Open:          resp.O,
			High:          resp.H,
			Low:           resp.L,
			Current:       resp.C,
			PreviousClose: resp.PC,
			Timestamp:     time.Unix(resp.T, 0).UTC(),
		}
		return nil
	})
	if err != nil {
		return models.Quote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	return out, nil
}

type patternResponse struct {
	Points *[]struct {
		PatternName string `json:"patternname"`
		PatternType string `json:"patterntype"`
		Status      string `json:"status"`
		SortTime    int64  `json:"sortTime"`
	} `json:"points"`
}

// Patterns returns the chart patterns Finnhub recognised for symbol.
func (c *Client) Patterns(ctx context.Context, symbol string) ([]models.Pattern, error) {
	var out []models.Pattern
	err := c.get(ctx, models.FamilyPattern, "/scan/pattern", c.scanQuery(symbol), func(body []byte) error {
		var resp patternResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode patterns: %w", err)
		}
		if resp.Points == nil {
			return fmt.Errorf("response has no points")
		}
		out = make([]models.Pattern, 0, len(*resp.Points))
		for _, p := range *resp.Points {
			out = append(out, models.Pattern{
				Name:   p.PatternName,
				Type:   p.PatternType,
				Status: p.Status,
				At:     time.Unix(p.SortTime, 0).UTC(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("patterns %s: %w", symbol, err)
	}
	return out, nil
}

func (c *Client) scanQuery(symbol string) url.Values {
	return url.Values{"symbol": {symbol}, "resolution": {c.resolution}, "token": {c.apiKey}}
}

func (c *Client) get(ctx context.Context, family, path string, q url.Values, decode provider.Decoder) error {
	return c.base.Get(ctx, family, path, q, decode)
}
