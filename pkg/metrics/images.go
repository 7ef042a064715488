package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resolver outcomes.
const (
	ResolvePassthrough = "passthrough"
	ResolveRelative    = "relative"
	ResolveCacheHit    = "cache_hit"
	ResolveProvider    = "provider"
	ResolveFallback    = "fallback"
	ResolveUnresolved  = "unresolved"
	ResolveEmpty       = "empty"
)

// ImageMetrics tracks the image pipeline. A nil receiver is a no-op.
type ImageMetrics struct {
	uploaded       prometheus.Counter
	skipped        *prometheus.CounterVec
	deleteFailures prometheus.Counter
	resolved       *prometheus.CounterVec
	orphans        prometheus.Counter
	missing        prometheus.Counter
}

func NewImageMetrics(reg prometheus.Registerer) *ImageMetrics {
	if reg == nil {
		return &ImageMetrics{}
	}
	m := &ImageMetrics{
		uploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Images stored and recorded by the upload endpoint.",
		}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "image_upload_skipped_total",
			Help: "Files rejected from an upload batch, by reason.",
		}, []string{"reason"}),
		deleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "image_storage_delete_failures_total",
			Help: "Stored objects that could not be removed after their row was deleted.",
		}),
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "image_resolve_total",
			Help: "Stored reference resolutions, by outcome.",
		}, []string{"outcome"}),
		orphans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "image_orphans_deleted_total",
			Help: "Unreferenced objects removed by reconciliation.",
		}),
		missing: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "image_storage_missing_marked_total",
			Help: "Image rows flagged because their object is gone.",
		}),
	}
	reg.MustRegister(m.uploaded, m.skipped, m.deleteFailures, m.resolved, m.orphans, m.missing)
	return m
}

func (m *ImageMetrics) AddUploaded(n int) {
	if m == nil || m.uploaded == nil || n <= 0 {
		return
	}
	m.uploaded.Add(float64(n))
}

func (m *ImageMetrics) IncSkipped(reason string) {
	if m == nil || m.skipped == nil {
		return
	}
	m.skipped.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *ImageMetrics) IncDeleteFailure() {
	if m == nil || m.deleteFailures == nil {
		return
	}
	m.deleteFailures.Inc()
}

func (m *ImageMetrics) IncResolve(outcome string) {
	if m == nil || m.resolved == nil {
		return
	}
	m.resolved.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *ImageMetrics) AddOrphansDeleted(n int) {
	if m == nil || m.orphans == nil || n <= 0 {
		return
	}
	m.orphans.Add(float64(n))
}

func (m *ImageMetrics) AddMissingMarked(n int) {
	if m == nil || m.missing == nil || n <= 0 {
		return
	}
	m.missing.Add(float64(n))
}
