package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/domain/repository"
	"FinNotify/internal/service/provider"
	"FinNotify/pkg/util"
)

const Name = "alphavantage"

var _ repository.IndicatorProvider = (*Client)(nil)

// Client reads technical indicators from the Alpha Vantage query API.
type Client struct {
	base       *provider.Base
	apiKey     string
	interval   string
	seriesType string
}

type Option func(*Client)

// New creates a client on top of base. Interval defaults to daily, series type to open.
func New(base *provider.Base, apiKey string, opts ...Option) *Client {
	c := &Client{base: base, apiKey: apiKey, interval: "daily", seriesType: "open"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithInterval(interval string) Option {
	return func(c *Client) {
		if interval != "" {
			c.interval = interval
		}
	}
}

func WithSeriesType(seriesType string) Option {
	return func(c *Client) {
		if seriesType != "" {
			c.seriesType = seriesType
		}
	}
}

// SMA returns the most recent simple moving average for period.
func (c *Client) SMA(ctx context.Context, symbol, period string) (models.SeriesPoint, error) {
	return c.latest(ctx, models.FamilySMA, "SMA", symbol, period)
}

// RSI returns the most recent relative strength index for period.
func (c *Client) RSI(ctx context.Context, symbol, period string) (models.SeriesPoint, error) {
	return c.latest(ctx, models.FamilyRSI, "RSI", symbol, period)
}

// seriesResponse covers the success shape and the throttling/error shapes,
// which Alpha Vantage returns with status 200.
type seriesResponse struct {
	Series      map[string]map[string]string `json:"-"`
	Note        string                       `json:"Note"`
	Information string                       `json:"Information"`
	Error       string                       `json:"Error Message"`
}

func (c *Client) latest(ctx context.Context, family, function, symbol, period string) (models.SeriesPoint, error) {
	q := url.Values{
		"function":    {function},
		"symbol":      {symbol},
		"interval":    {c.interval},
		"time_period": {period},
		"series_type": {c.seriesType},
		"apikey":      {c.apiKey},
	}
	seriesKey := "Technical Analysis: " + function

	var point models.SeriesPoint
	err := c.base.Get(ctx, family, "/query", q, func(body []byte) error {
		p, err := parseLatest(body, seriesKey, function)
		if err != nil {
			return err
		}
		point = p
		return nil
	})
	if err != nil {
		return models.SeriesPoint{}, fmt.Errorf("%s(%s) %s: %w", function, period, symbol, err)
	}
	return point, nil
}

// parseLatest picks the entry with the greatest timestamp key; map order is never trusted.
func parseLatest(body []byte, seriesKey, field string) (models.SeriesPoint, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.SeriesPoint{}, fmt.Errorf("decode response: %w", err)
	}

	var resp seriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.SeriesPoint{}, fmt.Errorf("decode response: %w", err)
	}
	switch {
	case resp.Error != "":
		return models.SeriesPoint{}, fmt.Errorf("provider error: %s", resp.Error)
	case resp.Note != "":
		return models.SeriesPoint{}, fmt.Errorf("provider throttled: %s", resp.Note)
	}

	seriesRaw, ok := raw[seriesKey]
	if !ok {
		if resp.Information != "" {
			return models.SeriesPoint{}, fmt.Errorf("provider information: %s", resp.Information)
		}
		return models.SeriesPoint{}, fmt.Errorf("missing %q in response", seriesKey)
	}
	if err := json.Unmarshal(seriesRaw, &resp.Series); err != nil {
		return models.SeriesPoint{}, fmt.Errorf("decode %q: %w", seriesKey, err)
	}

	key, at, ok := util.LatestKey(resp.Series)
	if !ok {
		return models.SeriesPoint{}, fmt.Errorf("series %q is empty or has unparseable timestamps", seriesKey)
	}
	v, ok := util.ParseFloat(resp.Series[key][field])
	if !ok {
		return models.SeriesPoint{}, fmt.Errorf("series %q at %s: bad %s value %q", seriesKey, key, field, resp.Series[key][field])
	}
	return models.SeriesPoint{At: at, Value: v}, nil
}
