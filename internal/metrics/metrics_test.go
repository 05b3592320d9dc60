package metrics

import (
	"context"
	"testing"

	"canary-bot/internal/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentBackendCountsWrites(t *testing.T) {
	backend, err := storage.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	instrumented := InstrumentBackend(backend)

	before := testutil.ToFloat64(storeWrites.WithLabelValues("doc.json", "ok"))
	if err := instrumented.Write(context.Background(), "doc.json", []byte(`{}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	after := testutil.ToFloat64(storeWrites.WithLabelValues("doc.json", "ok"))
	if after-before != 1 {
		t.Fatalf("expected one counted write, got %v", after-before)
	}

	if _, err := instrumented.Read(context.Background(), "doc.json"); err != nil {
		t.Fatalf("read through wrapper: %v", err)
	}
}

func TestObserveVerdict(t *testing.T) {
	before := testutil.ToFloat64(automodVerdicts.WithLabelValues("spam"))
	ObserveVerdict("spam")
	if got := testutil.ToFloat64(automodVerdicts.WithLabelValues("spam")); got-before != 1 {
		t.Fatalf("expected counter increment, got %v", got-before)
	}
}
