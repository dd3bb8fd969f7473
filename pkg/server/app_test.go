package server

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"FinNotify/internal/domain/models"
	"FinNotify/internal/usecase"
	"FinNotify/pkg/config"
	"FinNotify/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
)

type stubStocks struct {
	report *usecase.RunReport
	err    error
	runs   int
}

func (s *stubStocks) Run(context.Context) (*usecase.RunReport, error) {
	s.runs++
	return s.report, s.err
}

type stubCrypto struct {
	err  error
	runs int
}

func (s *stubCrypto) Run(context.Context) (*models.CryptoReport, error) {
	s.runs++
	return &models.CryptoReport{}, s.err
}

type stubTextfile struct{ paths []string }

func (s *stubTextfile) Gatherer() prometheus.Gatherer { return prometheus.NewRegistry() }

func (s *stubTextfile) WriteTextfile(path string) error {
	s.paths = append(s.paths, path)
	return nil
}

func newApp(stocks *stubStocks, crypto *stubCrypto, tf *stubTextfile) *App {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	cfg.Metrics.Textfile = "/tmp/finnotify.prom"
	return New(cfg, logger.Nop(), tf, stocks, crypto, nil)
}

func TestRunAllContinuesAfterCryptoFailure(t *testing.T) {
	stocks := &stubStocks{report: &usecase.RunReport{Evaluated: []string{"AAPL"}, Failed: map[string]error{}}}
	crypto := &stubCrypto{err: fmt.Errorf("no coin: %w", models.ErrDataUnavailable)}
	tf := &stubTextfile{}

	if err := newApp(stocks, crypto, tf).RunContext(context.Background(), config.ModeAll); err != nil {
		t.Fatalf("RunContext: %v", err)
	}
	if stocks.runs != 1 || crypto.runs != 1 {
		t.Fatalf("runs: stocks=%d crypto=%d", stocks.runs, crypto.runs)
	}
	if len(tf.paths) != 1 || tf.paths[0] != "/tmp/finnotify.prom" {
		t.Fatalf("textfile paths = %v", tf.paths)
	}
}

func TestRunStocksAllFailed(t *testing.T) {
	stocks := &stubStocks{report: &usecase.RunReport{Failed: map[string]error{"AAPL": errors.New("x")}}}

	err := newApp(stocks, &stubCrypto{}, &stubTextfile{}).RunContext(context.Background(), config.ModeStocks)
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestRunCryptoAllFailed(t *testing.T) {
	crypto := &stubCrypto{err: fmt.Errorf("no coin: %w", models.ErrDataUnavailable)}

	err := newApp(&stubStocks{}, crypto, &stubTextfile{}).RunContext(context.Background(), config.ModeCrypto)
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestRunUnknownMode(t *testing.T) {
	if err := newApp(&stubStocks{}, &stubCrypto{}, &stubTextfile{}).RunContext(context.Background(), "weekly"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	app := newApp(&stubStocks{}, &stubCrypto{}, &stubTextfile{})
	app.cfg.Server.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx, config.ModeServe) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
