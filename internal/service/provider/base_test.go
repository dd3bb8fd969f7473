package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/service/cache"
	xhttp "FinNotify/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeInto(dst *map[string]float64) Decoder {
	return func(b []byte) error { return json.Unmarshal(b, dst) }
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"c": 12.5}`))
	}))
	defer srv.Close()

	b := New("test", srv.URL, WithRetry(2, time.Millisecond))
	var out map[string]float64
	require.NoError(t, b.Get(context.Background(), models.FamilyQuote, "/quote", nil, decodeInto(&out)))
	assert.Equal(t, 12.5, out["c"])
	assert.EqualValues(t, 3, calls.Load())
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	b := New("test", srv.URL, WithRetry(2, time.Millisecond))
	var out map[string]float64
	err := b.Get(context.Background(), models.FamilyQuote, "/quote", nil, decodeInto(&out))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDataUnavailable))
	assert.EqualValues(t, 1, calls.Load())
}

func TestGetCachesOnlyDecodedBodies(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n == 1 {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		_, _ = w.Write([]byte(`{"c": 1}`))
	}))
	defer srv.Close()

	b := New("test", srv.URL, WithCache(cache.NewTTLCache(10), time.Minute))
	q := url.Values{"symbol": {"AAPL"}, "token": {"secret"}}
	var out map[string]float64

	err := b.Get(context.Background(), models.FamilyQuote, "/quote", q, decodeInto(&out))
	require.ErrorIs(t, err, models.ErrDataUnavailable)

	require.NoError(t, b.Get(context.Background(), models.FamilyQuote, "/quote", q, decodeInto(&out)))
	require.NoError(t, b.Get(context.Background(), models.FamilyQuote, "/quote", q, decodeInto(&out)))
	assert.EqualValues(t, 2, calls.Load(), "third call should be served from cache")
}

func TestCacheKeyDropsCredentials(t *testing.T) {
	b := New("finnhub", "http://example")
	k1 := b.cacheKey("/quote", url.Values{"symbol": {"AAPL"}, "token": {"a"}})
	k2 := b.cacheKey("/quote", url.Values{"token": {"b"}, "symbol": {"AAPL"}})
	assert.Equal(t, "finnhub:/quote?symbol=AAPL", k1)
	assert.Equal(t, k1, k2)
}

func TestGetTimeoutIsDataUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	b := New("test", srv.URL)
	var out map[string]float64
	err := b.Get(ctx, models.FamilySMA, "/query", nil, decodeInto(&out))
	assert.ErrorIs(t, err, models.ErrDataUnavailable)
}

func TestGetClientTimeoutRetriesThenDataUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-r.Context().Done()
	}))
	defer srv.Close()

	b := New("alphavantage", srv.URL,
		WithClient(xhttp.NewClient(xhttp.WithTimeout(20*time.Millisecond))),
		WithRetry(2, time.Millisecond),
	)
	var out map[string]float64
	err := b.Get(context.Background(), models.FamilySMA, "/query",
		url.Values{"apikey": {"SUPERSECRETKEY"}, "function": {"SMA"}}, decodeInto(&out))

	assert.ErrorIs(t, err, models.ErrDataUnavailable)
	assert.NotContains(t, err.Error(), "SUPERSECRETKEY")
	assert.EqualValues(t, 3, calls.Load(), "one attempt plus two retries")
}
