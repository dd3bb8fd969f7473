package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"FinNotify/internal/domain/models"
	domrepo "FinNotify/internal/domain/repository"
	"FinNotify/internal/service/ratelimit"
	xhttp "FinNotify/pkg/http"
	xlogger "FinNotify/pkg/logger"

	"github.com/labstack/echo/v4"
)

// TickerEvaluator evaluates one watched ticker.
type TickerEvaluator interface {
	Icon(symbol string) (string, error)
	Evaluate(ctx context.Context, symbol string) (*models.TickerEvaluation, error)
}

// PriceReporter fetches a crypto price report.
type PriceReporter interface {
	Fetch(ctx context.Context, currency string, coins []string) (*models.CryptoReport, error)
}

// Per-client request budget for the /api group.
const (
	clientBurst     = 10
	clientPerSecond = 1
)

// maxCoinsPerRequest bounds the provider calls one /api/crypto request can queue.
const maxCoinsPerRequest = 10

// SignalsEchoHandler serves on-demand evaluations in serve mode.
type SignalsEchoHandler struct {
	logger *xlogger.Logger
	stocks TickerEvaluator
	scans  domrepo.ScanProvider
	crypto PriceReporter
	rl     *ratelimit.Limiter
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	stocks TickerEvaluator,
	scans domrepo.ScanProvider,
	crypto PriceReporter,
	rl *ratelimit.Limiter,
) *SignalsEchoHandler {
	return &SignalsEchoHandler{logger: logger, stocks: stocks, scans: scans, crypto: crypto, rl: rl}
}

var _ xhttp.Handler = (*SignalsEchoHandler)(nil)

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.rateLimit)
	g.GET("/signals/:symbol/buy", h.Buy)
	g.GET("/signals/:symbol/sell", h.Sell)
	g.GET("/signals/:symbol/aggregate", h.Aggregate)
	g.GET("/snapshot/:symbol", h.Snapshot)
	g.GET("/patterns/:symbol", h.Patterns)
	g.GET("/crypto", h.Crypto)
}

type sellResponse struct {
	*models.SellSignal
	Fired map[string]bool `json:"fired"`
}

func (h *SignalsEchoHandler) Buy(c echo.Context) error {
	ev, err := h.evaluate(c)
	if err != nil {
		return h.fail(c, "buy", err)
	}
	if ev.BuyErr != nil {
		return h.fail(c, "buy", ev.BuyErr)
	}
	return xhttp.OK(c, ev.Buy)
}

func (h *SignalsEchoHandler) Sell(c echo.Context) error {
	ev, err := h.evaluate(c)
	if err != nil {
		return h.fail(c, "sell", err)
	}
	return xhttp.OK(c, sellResponse{SellSignal: ev.Sell, Fired: ev.Sell.Fired()})
}

func (h *SignalsEchoHandler) Aggregate(c echo.Context) error {
	ev, err := h.evaluate(c)
	if err != nil {
		return h.fail(c, "aggregate", err)
	}
	if ev.AggregateErr != nil {
		return h.fail(c, "aggregate", ev.AggregateErr)
	}
	return xhttp.OK(c, ev.Aggregate)
}

// Snapshot returns the raw indicators with every rule result, errors included.
func (h *SignalsEchoHandler) Snapshot(c echo.Context) error {
	ev, err := h.evaluate(c)
	if err != nil {
		return h.fail(c, "snapshot", err)
	}
	return xhttp.OK(c, ev)
}

func (h *SignalsEchoHandler) Patterns(c echo.Context) error {
	req := &models.SymbolRequest{}
	if err := xhttp.Bind(c, req); err != nil {
		return h.fail(c, "patterns", err)
	}
	symbol := strings.ToUpper(req.Symbol)
	if _, err := h.stocks.Icon(symbol); err != nil {
		return h.fail(c, "patterns", err)
	}
	res, err := h.scans.Patterns(c.Request().Context(), symbol)
	if err != nil {
		return h.fail(c, "patterns", err)
	}
	return xhttp.OK(c, res)
}

func (h *SignalsEchoHandler) Crypto(c echo.Context) error {
	req := &models.CryptoRequest{}
	if err := xhttp.Bind(c, req); err != nil {
		return h.fail(c, "crypto", err)
	}
	var coins []string
	for _, coin := range strings.Split(req.Coins, ",") {
		if coin = strings.TrimSpace(coin); coin != "" {
			coins = append(coins, strings.ToLower(coin))
		}
	}
	if len(coins) > maxCoinsPerRequest {
		return h.fail(c, "crypto", &xhttp.ValidationErrors{Fields: []xhttp.FieldError{{
			Code:    "ERR_MAX",
			Field:   "coins",
			Message: fmt.Sprintf("coins must list at most %d ids", maxCoinsPerRequest),
			Param:   strconv.Itoa(maxCoinsPerRequest),
		}}})
	}
	res, err := h.crypto.Fetch(c.Request().Context(), req.Currency, coins)
	if err != nil {
		return h.fail(c, "crypto", err)
	}
	return xhttp.OK(c, res)
}

func (h *SignalsEchoHandler) evaluate(c echo.Context) (*models.TickerEvaluation, error) {
	req := &models.SymbolRequest{}
	if err := xhttp.Bind(c, req); err != nil {
		return nil, err
	}
	return h.stocks.Evaluate(c.Request().Context(), strings.ToUpper(req.Symbol))
}

var evaluationErrors = xhttp.ErrorTable{
	{Target: models.ErrUnknownTicker, Status: http.StatusNotFound, Code: xhttp.CodeNotFound, Message: "ticker is not on the watch-list"},
	{Target: models.ErrNoSupportBelowPrice, Status: http.StatusUnprocessableEntity, Code: "ERR_NO_SUPPORT", Message: "no support level below the current price"},
	{Target: models.ErrDivisionByZero, Status: http.StatusUnprocessableEntity, Code: "ERR_NO_VOTES", Message: "provider returned no indicator votes"},
	{Target: models.ErrDataUnavailable, Status: http.StatusBadGateway, Code: xhttp.CodeUpstream, Message: "market data unavailable"},
}

func (h *SignalsEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	var verr *xhttp.ValidationErrors
	if errors.As(err, &verr) {
		h.logger.Debug("signals request invalid", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		return xhttp.Fail(c, err)
	}
	appErr := evaluationErrors.Map(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("signals endpoint error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	} else {
		h.logger.Debug("signals endpoint rejected", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	}
	return xhttp.Fail(c, appErr)
}

func (h *SignalsEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.rl != nil && !h.rl.Allow(c.RealIP(), clientBurst, clientPerSecond) {
			h.logger.Warn("signals rate limited", xlogger.String("remote", c.RealIP()))
			return xhttp.Fail(c, xhttp.Errorf(http.StatusTooManyRequests, xhttp.CodeRateLimited, "too many requests"))
		}
		return next(c)
	}
}
