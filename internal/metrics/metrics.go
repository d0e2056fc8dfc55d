// Package metrics collects Prometheus metrics for archive and store
// operations and writes them in the node_exporter textfile format.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/observability"
)

// Collector implements observability.ArchiveHooks and
// observability.StoreHooks on a private registry.
type Collector struct {
	reg *prometheus.Registry

	Operations *prometheus.CounterVec   // op label: encode|decode
	Errors     *prometheus.CounterVec   // op, code labels
	Records    *prometheus.CounterVec   // op label
	Objects    *prometheus.CounterVec   // op label
	BackRefs   *prometheus.CounterVec   // op label
	Duration   *prometheus.HistogramVec // op label

	StoreHits   *prometheus.CounterVec // backend label
	StoreMisses *prometheus.CounterVec // backend label
	StoreSets   *prometheus.CounterVec // backend label
	StoreBytes  *prometheus.CounterVec // backend label
}

var (
	_ observability.ArchiveHooks = (*Collector)(nil)
	_ observability.StoreHooks   = (*Collector)(nil)
)

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busarchive_operations_total",
			Help: "Archive encode and decode operations.",
		}, []string{"op"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busarchive_errors_total",
			Help: "Failed archive operations by error code.",
		}, []string{"op", "code"}),
		Records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busarchive_records_total",
			Help: "Versioned records written or read.",
		}, []string{"op"}),
		Objects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busarchive_objects_total",
			Help: "Distinct referenced objects written or read.",
		}, []string{"op"}),
		BackRefs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busarchive_backrefs_total",
			Help: "References resolved to an already archived object.",
		}, []string{"op"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "busarchive_operation_duration_seconds",
			Help:    "Duration of archive encode and decode operations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		}, []string{"op"}),
		StoreHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busarchive_store_hits_total",
			Help: "Store lookups that found an archive.",
		}, []string{"backend"}),
		StoreMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busarchive_store_misses_total",
			Help: "Store lookups for missing or expired keys.",
		}, []string{"backend"}),
		StoreSets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busarchive_store_sets_total",
			Help: "Archives written to a store.",
		}, []string{"backend"}),
		StoreBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "busarchive_store_bytes_total",
			Help: "Bytes written to a store.",
		}, []string{"backend"}),
	}

	reg.MustRegister(
		c.Operations, c.Errors, c.Records, c.Objects, c.BackRefs, c.Duration,
		c.StoreHits, c.StoreMisses, c.StoreSets, c.StoreBytes,
	)
	return c
}

// Gatherer exposes the private registry.
func (c *Collector) Gatherer() prometheus.Gatherer { return c.reg }

// WriteToTextfile writes all metrics to path atomically.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.reg); err != nil {
		return aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "write metrics to %s", path)
	}
	return nil
}

func (c *Collector) OnEncode(ev observability.ArchiveEvent) { c.observe("encode", ev) }
func (c *Collector) OnDecode(ev observability.ArchiveEvent) { c.observe("decode", ev) }

func (c *Collector) observe(op string, ev observability.ArchiveEvent) {
	c.Operations.WithLabelValues(op).Inc()
	c.Duration.WithLabelValues(op).Observe(ev.Duration.Seconds())
	if ev.Err != nil {
		code := string(aerrors.GetCode(ev.Err))
		if code == "" {
			code = "unknown"
		}
		c.Errors.WithLabelValues(op, code).Inc()
		return
	}
	c.Records.WithLabelValues(op).Add(float64(ev.Records))
	c.Objects.WithLabelValues(op).Add(float64(ev.Objects))
	c.BackRefs.WithLabelValues(op).Add(float64(ev.BackRefs))
}

func (c *Collector) OnStoreHit(_ context.Context, backend string) {
	c.StoreHits.WithLabelValues(backend).Inc()
}

func (c *Collector) OnStoreMiss(_ context.Context, backend string) {
	c.StoreMisses.WithLabelValues(backend).Inc()
}

func (c *Collector) OnStoreSet(_ context.Context, backend string, size int) {
	c.StoreSets.WithLabelValues(backend).Inc()
	c.StoreBytes.WithLabelValues(backend).Add(float64(size))
}
