package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/service/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, body string, check func(r *http.Request)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(provider.New(Name, srv.URL), "demo")
}

func TestSMAPicksLatestTimestamp(t *testing.T) {
	body := `{
		"Meta Data": {"1: Symbol": "AAPL"},
		"Technical Analysis: SMA": {
			"2020-02-20": {"SMA": "300.0000"},
			"2020-02-25": {"SMA": "392.4239"},
			"2020-02-24": {"SMA": "390.1000"}
		}
	}`
	c := newTestClient(t, body, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "SMA", q.Get("function"))
		assert.Equal(t, "AAPL", q.Get("symbol"))
		assert.Equal(t, "200", q.Get("time_period"))
		assert.Equal(t, "daily", q.Get("interval"))
		assert.Equal(t, "open", q.Get("series_type"))
		assert.Equal(t, "demo", q.Get("apikey"))
	})

	p, err := c.SMA(context.Background(), "AAPL", "200")
	require.NoError(t, err)
	assert.Equal(t, 392.4239, p.Value)
	assert.Equal(t, "2020-02-25", p.At.Format("2006-01-02"))
}

func TestRSIParsesIntradayKeys(t *testing.T) {
	body := `{"Technical Analysis: RSI": {
		"2020-02-25 15:30": {"RSI": "72.6361"},
		"2020-02-25 15:00": {"RSI": "70.1"}
	}}`
	c := newTestClient(t, body, nil)

	p, err := c.RSI(context.Background(), "MSFT", "14")
	require.NoError(t, err)
	assert.Equal(t, 72.6361, p.Value)
}

func TestMalformedPayloadsAreDataUnavailable(t *testing.T) {
	cases := map[string]string{
		"throttled":      `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`,
		"error message":  `{"Error Message": "Invalid API call."}`,
		"missing series": `{"Meta Data": {}}`,
		"empty series":   `{"Technical Analysis: RSI": {}}`,
		"bad timestamp":  `{"Technical Analysis: RSI": {"yesterday": {"RSI": "50"}}}`,
		"bad value":      `{"Technical Analysis: RSI": {"2020-02-25": {"RSI": "n/a"}}}`,
		"not json":       `<html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, body, nil)
			_, err := c.RSI(context.Background(), "AAPL", "14")
			if !errors.Is(err, models.ErrDataUnavailable) {
				t.Fatalf("err = %v, want ErrDataUnavailable", err)
			}
		})
	}
}
