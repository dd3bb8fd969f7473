package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FinNotify/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounters(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordFetch("finnhub", models.FamilyQuote, 0.2, nil)
	r.RecordFetch("finnhub", models.FamilyQuote, 0.3, errors.New("boom"))
	r.RecordNotification("desktop", models.KindBuy, nil)
	r.RecordRuleFired("RSI")
	r.RecordRuleFired("RSI")
	r.RecordLastPrice("AAPL", 190.5)

	if got := testutil.ToFloat64(r.fetchTotal.WithLabelValues("finnhub", "quote", "error")); got != 1 {
		t.Fatalf("fetch errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.notifications.WithLabelValues("desktop", "buy", "ok")); got != 1 {
		t.Fatalf("notifications = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.rulesFired.WithLabelValues("RSI")); got != 2 {
		t.Fatalf("rules fired = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")); got != 190.5 {
		t.Fatalf("last price = %v, want 190.5", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.RecordEvaluation("MSFT", "notified")

	path := filepath.Join(t.TempDir(), "finnotify.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), `finnotify_evaluations_total{outcome="notified",symbol="MSFT"} 1`) {
		t.Fatalf("textfile missing evaluation counter:\n%s", b)
	}

	if err := r.WriteTextfile(""); err != nil {
		t.Fatalf("empty path should be a no-op: %v", err)
	}
}
