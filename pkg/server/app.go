package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/usecase"
	"FinNotify/pkg/config"
	xhttp "FinNotify/pkg/http"
	applogger "FinNotify/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrAllFailed means a one-shot run produced nothing: every ticker, or every coin, failed.
var ErrAllFailed = errors.New("every item of the watch-list failed")

// StockRunner runs one pass over the stock watch-list.
type StockRunner interface {
	Run(ctx context.Context) (*usecase.RunReport, error)
}

// CryptoRunner runs one crypto summary.
type CryptoRunner interface {
	Run(ctx context.Context) (*models.CryptoReport, error)
}

// MetricsExporter exposes collected metrics: scraped in serve mode, dumped
// to a textfile after one-shot runs.
type MetricsExporter interface {
	Gatherer() prometheus.Gatherer
	WriteTextfile(path string) error
}

// App encapsulates the application lifecycle for every run mode.
type App struct {
	cfg     *config.Config
	log     *applogger.Logger
	metrics MetricsExporter
	stocks  StockRunner
	crypto  CryptoRunner
	handler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	metrics MetricsExporter,
	stocks StockRunner,
	crypto CryptoRunner,
	handler xhttp.Handler,
) *App {
	return &App{cfg: cfg, log: l, metrics: metrics, stocks: stocks, crypto: crypto, handler: handler}
}

// Run executes mode and returns when it is done or SIGINT/SIGTERM arrives.
func (a *App) Run(mode string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx, mode)
}

// RunContext is Run with a caller-supplied context.
func (a *App) RunContext(ctx context.Context, mode string) error {
	a.log.Info("starting", applogger.String("mode", mode), applogger.String("env", a.cfg.Environment))

	var err error
	switch mode {
	case config.ModeStocks:
		err = a.runStocks(ctx)
	case config.ModeCrypto:
		err = a.runCrypto(ctx)
	case config.ModeAll:
		if cerr := a.runCrypto(ctx); cerr != nil {
			a.log.Error("crypto run failed", applogger.Error(cerr))
		}
		err = a.runStocks(ctx)
	case config.ModeServe:
		return a.serve(ctx)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	if werr := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); werr != nil {
		a.log.Warn("metrics textfile write failed", applogger.String("path", a.cfg.Metrics.Textfile), applogger.Error(werr))
	}
	if errors.Is(err, context.Canceled) {
		a.log.Info("run interrupted")
	}
	return err
}

func (a *App) runStocks(ctx context.Context) error {
	report, err := a.stocks.Run(ctx)
	if err != nil {
		return fmt.Errorf("stock run: %w", err)
	}
	if report.AllFailed() {
		return fmt.Errorf("stock run: %d tickers: %w", len(report.Failed), ErrAllFailed)
	}
	return nil
}

func (a *App) runCrypto(ctx context.Context) error {
	if _, err := a.crypto.Run(ctx); err != nil {
		if errors.Is(err, models.ErrDataUnavailable) {
			return fmt.Errorf("crypto run: %w: %w", ErrAllFailed, err)
		}
		return fmt.Errorf("crypto run: %w", err)
	}
	return nil
}

func (a *App) serve(ctx context.Context) error {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(a.cfg.Metrics.Path, a.metrics.Gatherer()))
	}
	return xhttp.NewServer(a.log, a.handler, opts...).ListenAndServe(ctx)
}
