package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/service/ratelimit"
	xlogger "FinNotify/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvaluator struct {
	evals map[string]*models.TickerEvaluation
	err   error
}

func (f *fakeEvaluator) Icon(symbol string) (string, error) {
	if _, ok := f.evals[symbol]; !ok {
		return "", fmt.Errorf("%s: %w", symbol, models.ErrUnknownTicker)
	}
	return "icon", nil
}

func (f *fakeEvaluator) Evaluate(_ context.Context, symbol string) (*models.TickerEvaluation, error) {
	if _, err := f.Icon(symbol); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.evals[symbol], nil
}

type fakeScans struct{}

func (fakeScans) SupportResistance(context.Context, string) ([]float64, error) { return nil, nil }
func (fakeScans) AggregateIndicators(context.Context, string) (models.AggregateCount, error) {
	return models.AggregateCount{}, nil
}
func (fakeScans) Quote(context.Context, string) (models.Quote, error) { return models.Quote{}, nil }
func (fakeScans) Patterns(_ context.Context, symbol string) ([]models.Pattern, error) {
	return []models.Pattern{{Name: "Double Bottom", Type: "bullish"}}, nil
}

type fakeReporter struct {
	gotCurrency string
	gotCoins    []string
}

func (f *fakeReporter) Fetch(_ context.Context, currency string, coins []string) (*models.CryptoReport, error) {
	f.gotCurrency, f.gotCoins = currency, coins
	return &models.CryptoReport{Currency: currency, Prices: []models.CoinPrice{{Coin: "bitcoin", Currency: currency, Price: 1}}}, nil
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestServer(ev *fakeEvaluator, rep *fakeReporter) *echo.Echo {
	e := echo.New()
	NewSignalsEchoHandler(xlogger.Nop(), ev, fakeScans{}, rep, ratelimit.New()).RegisterRoutes(e)
	return e
}

func do(t *testing.T, e *echo.Echo, target string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func aaplEvaluation() *models.TickerEvaluation {
	return &models.TickerEvaluation{
		Snapshot:     &models.IndicatorSnapshot{Symbol: "AAPL"},
		Buy:          &models.BuySignal{Symbol: "AAPL", Support: 383.4, CurrentPrice: 390, ApproachingSupport: true, RSINotOverbought: true},
		Sell:         &models.SellSignal{Symbol: "AAPL", RSIOverbought: models.RuleFired, SMACrossoverRisk: models.RuleClear, ResistanceApproach: models.RuleSkipped},
		AggregateErr: fmt.Errorf("AAPL: %w", models.ErrDivisionByZero),
	}
}

func TestBuyEndpoint(t *testing.T) {
	e := newTestServer(&fakeEvaluator{evals: map[string]*models.TickerEvaluation{"AAPL": aaplEvaluation()}}, &fakeReporter{})

	code, env := do(t, e, "/api/signals/aapl/buy")
	require.Equal(t, http.StatusOK, code)
	var buy models.BuySignal
	require.NoError(t, json.Unmarshal(env.Data, &buy))
	assert.True(t, buy.ApproachingSupport)
	assert.Equal(t, 383.4, buy.Support)
}

func TestSellEndpointIncludesSparseView(t *testing.T) {
	e := newTestServer(&fakeEvaluator{evals: map[string]*models.TickerEvaluation{"AAPL": aaplEvaluation()}}, &fakeReporter{})

	code, env := do(t, e, "/api/signals/AAPL/sell")
	require.Equal(t, http.StatusOK, code)
	var got struct {
		RSIOverbought string          `json:"rsi_overbought"`
		Fired         map[string]bool `json:"fired"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "fired", got.RSIOverbought)
	assert.Equal(t, map[string]bool{"RSI": true}, got.Fired)
}

func TestErrorMapping(t *testing.T) {
	evals := map[string]*models.TickerEvaluation{"AAPL": aaplEvaluation()}

	code, _ := do(t, newTestServer(&fakeEvaluator{evals: evals}, &fakeReporter{}), "/api/signals/ZZZ/buy")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, newTestServer(&fakeEvaluator{evals: evals}, &fakeReporter{}), "/api/signals/AAPL/aggregate")
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	failing := &fakeEvaluator{evals: evals, err: fmt.Errorf("fetch: %w", models.ErrDataUnavailable)}
	code, _ = do(t, newTestServer(failing, &fakeReporter{}), "/api/snapshot/AAPL")
	assert.Equal(t, http.StatusBadGateway, code)
}

func TestPatternsEndpoint(t *testing.T) {
	e := newTestServer(&fakeEvaluator{evals: map[string]*models.TickerEvaluation{"AAPL": aaplEvaluation()}}, &fakeReporter{})

	code, env := do(t, e, "/api/patterns/AAPL")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "Double Bottom")

	code, _ = do(t, e, "/api/patterns/TSLA")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCryptoEndpoint(t *testing.T) {
	rep := &fakeReporter{}
	e := newTestServer(&fakeEvaluator{}, rep)

	code, _ := do(t, e, "/api/crypto?currency=usd&coins=Bitcoin,%20ethereum")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "usd", rep.gotCurrency)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, rep.gotCoins)

	code, _ = do(t, e, "/api/crypto?currency=USD")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCryptoEndpointBoundsCoinList(t *testing.T) {
	rep := &fakeReporter{}
	e := newTestServer(&fakeEvaluator{}, rep)

	coins := make([]string, maxCoinsPerRequest+1)
	for i := range coins {
		coins[i] = fmt.Sprintf("coin%d", i)
	}
	code, _ := do(t, e, "/api/crypto?coins="+strings.Join(coins, ","))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Nil(t, rep.gotCoins, "no provider call for an oversized list")

	code, _ = do(t, e, "/api/crypto?coins="+strings.Join(coins[:maxCoinsPerRequest], ","))
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, rep.gotCoins, maxCoinsPerRequest)
}

func TestRateLimit(t *testing.T) {
	e := newTestServer(&fakeEvaluator{evals: map[string]*models.TickerEvaluation{"AAPL": aaplEvaluation()}}, &fakeReporter{})
	var limited bool
	for i := 0; i < clientBurst+2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/signals/AAPL/buy", nil))
		if rec.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited)
}
