package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/domain/repository"
	"FinNotify/internal/service/provider"
)

const Name = "coingecko"

var _ repository.PriceProvider = (*Client)(nil)

// Client reads coin prices from the CoinGecko public API.
type Client struct {
	base *provider.Base
}

func New(base *provider.Base) *Client {
	return &Client{base: base}
}

type coinResponse struct {
	MarketData *struct {
		CurrentPrice map[string]float64 `json:"current_price"`
	} `json:"market_data"`
}

// CurrentPrice returns market_data.current_price[currency] of /coins/{coin}.
func (c *Client) CurrentPrice(ctx context.Context, coin, currency string) (float64, error) {
	currency = strings.ToLower(currency)
	q := url.Values{
		"localization":   {"false"},
		"tickers":        {"false"},
		"community_data": {"false"},
		"developer_data": {"false"},
	}

	var price float64
	err := c.base.Get(ctx, models.FamilyPrice, "/coins/"+url.PathEscape(coin), q, func(body []byte) error {
		var resp coinResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("decode coin: %w", err)
		}
		if resp.MarketData == nil {
			return fmt.Errorf("response has no market_data")
		}
		p, ok := resp.MarketData.CurrentPrice[currency]
		if !ok {
			return fmt.Errorf("no %s price", currency)
		}
		price = p
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("price %s: %w", coin, err)
	}
	return price, nil
}
