package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestImageMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewImageMetrics(reg)

	m.AddUploaded(3)
	m.IncSkipped("unsupported_type")
	m.IncSkipped("unsupported_type")
	m.IncSkipped("")
	m.IncDeleteFailure()
	m.IncResolve(ResolveFallback)
	m.AddOrphansDeleted(2)
	m.AddMissingMarked(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := findMetricFamily(mfs, "image_uploads_total").GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Fatalf("expected uploads=3, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "image_upload_skipped_total", "reason", "unsupported_type"); err != nil || got != 2 {
		t.Fatalf("expected skipped=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "image_upload_skipped_total", "reason", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected empty reason to map to unknown, got %f (%v)", got, err)
	}
	if got := findMetricFamily(mfs, "image_storage_delete_failures_total").GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected delete failures=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "image_resolve_total", "outcome", ResolveFallback); err != nil || got != 1 {
		t.Fatalf("expected fallback=1, got %f (%v)", got, err)
	}
	if got := findMetricFamily(mfs, "image_storage_missing_marked_total").GetMetric()[0].GetCounter().GetValue(); got != 0 {
		t.Fatalf("expected zero marks, got %f", got)
	}
}

func TestNilImageMetricsAreNoops(t *testing.T) {
	var m *ImageMetrics
	m.AddUploaded(1)
	m.IncSkipped("x")
	m.IncDeleteFailure()
	m.IncResolve(ResolveEmpty)

	unregistered := NewImageMetrics(nil)
	unregistered.IncDeleteFailure()
}
