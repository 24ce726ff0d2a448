// Package telemetry provides in-process render metrics: lock-free
// counters, gauges, and histograms the frame loop updates without
// blocking, plus a Prometheus bridge for hosts that scrape.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// MetricType identifies the kind of metric.
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric is the common interface for all metric types.
type Metric interface {
	Name() string
	Type() MetricType
}

// Counter is a monotonically increasing metric.
type Counter struct {
	name  string
	value atomic.Int64
}

// NewCounter creates a counter.
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Name returns the metric name.
func (c *Counter) Name() string { return c.name }

// Type returns the metric type.
func (c *Counter) Type() MetricType { return MetricTypeCounter }

// Inc increments the counter by 1.
func (c *Counter) Inc() {
	if c == nil {
		return
	}
	c.value.Add(1)
}

// Add adds a non-negative delta.
func (c *Counter) Add(delta int64) {
	if c == nil || delta < 0 {
		return
	}
	c.value.Add(delta)
}

// Get returns the current value.
func (c *Counter) Get() int64 {
	if c == nil {
		return 0
	}
	return c.value.Load()
}

// MarshalJSON implements json.Marshaler.
func (c *Counter) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"name":  c.name,
		"type":  c.Type(),
		"value": c.Get(),
	})
}

// Gauge is a metric that can go up and down.
type Gauge struct {
	name  string
	value atomic.Int64
}

// NewGauge creates a gauge.
func NewGauge(name string) *Gauge {
	return &Gauge{name: name}
}

// Name returns the metric name.
func (g *Gauge) Name() string { return g.name }

// Type returns the metric type.
func (g *Gauge) Type() MetricType { return MetricTypeGauge }

// Set stores a value.
func (g *Gauge) Set(v int64) {
	if g == nil {
		return
	}
	g.value.Store(v)
}

// Add adjusts the value by delta.
func (g *Gauge) Add(delta int64) {
	if g == nil {
		return
	}
	g.value.Add(delta)
}

// Get returns the current value.
func (g *Gauge) Get() int64 {
	if g == nil {
		return 0
	}
	return g.value.Load()
}

// MarshalJSON implements json.Marshaler.
func (g *Gauge) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"name":  g.name,
		"type":  g.Type(),
		"value": g.Get(),
	})
}

// DefaultFrameBuckets covers frame times from sub-millisecond up through
// dropped-frame territory, in seconds.
var DefaultFrameBuckets = []float64{0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1}

// Histogram buckets observations into fixed upper bounds plus +Inf.
type Histogram struct {
	name    string
	buckets []float64
	counts  []atomic.Int64
	sum     atomic.Int64
	count   atomic.Int64
}

// NewHistogram creates a histogram. Nil buckets use DefaultFrameBuckets.
func NewHistogram(name string, buckets []float64) *Histogram {
	if buckets == nil {
		buckets = DefaultFrameBuckets
	}
	return &Histogram{
		name:    name,
		buckets: buckets,
		counts:  make([]atomic.Int64, len(buckets)+1),
	}
}

// Name returns the metric name.
func (h *Histogram) Name() string { return h.name }

// Type returns the metric type.
func (h *Histogram) Type() MetricType { return MetricTypeHistogram }

// Observe records a value in seconds.
func (h *Histogram) Observe(value float64) {
	if h == nil {
		return
	}
	if value < 0 {
		value = 0
	}
	placed := false
	for i, bucket := range h.buckets {
		if value <= bucket {
			h.counts[i].Add(1)
			placed = true
			break
		}
	}
	if !placed {
		h.counts[len(h.buckets)].Add(1)
	}
	h.sum.Add(int64(value * 1e9))
	h.count.Add(1)
}

// ObserveDuration records a duration observation.
func (h *Histogram) ObserveDuration(d time.Duration) {
	if h == nil {
		return
	}
	h.Observe(d.Seconds())
}

// Count returns the total number of observations.
func (h *Histogram) Count() int64 {
	if h == nil {
		return 0
	}
	return h.count.Load()
}

// Sum returns the sum of all observed values in seconds.
func (h *Histogram) Sum() float64 {
	if h == nil {
		return 0
	}
	return float64(h.sum.Load()) / 1e9
}

// Mean returns the average observation in seconds, or 0 with no data.
func (h *Histogram) Mean() float64 {
	n := h.Count()
	if n == 0 {
		return 0
	}
	return h.Sum() / float64(n)
}

// BucketCounts returns the per-bucket counts, the last entry being +Inf.
func (h *Histogram) BucketCounts() []int64 {
	if h == nil {
		return nil
	}
	out := make([]int64, len(h.counts))
	for i := range h.counts {
		out[i] = h.counts[i].Load()
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (h *Histogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"name":    h.name,
		"type":    h.Type(),
		"count":   h.Count(),
		"sum":     h.Sum(),
		"buckets": h.buckets,
		"counts":  h.BucketCounts(),
	})
}

// Registry holds named metrics for JSON export.
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]Metric)}
}

// Register adds a metric. Re-registering a name replaces the previous one.
func (r *Registry) Register(m Metric) {
	if m == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics[m.Name()] = m
}

// Get returns a registered metric by name.
func (r *Registry) Get(name string) Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics[name]
}

// WriteJSON dumps all metrics as one JSON object keyed by name, in
// sorted order.
func (r *Registry) WriteJSON(w io.Writer) error {
	r.mu.RLock()
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	ordered := make([]Metric, len(names))
	for i, name := range names {
		ordered[i] = r.metrics[name]
	}
	r.mu.RUnlock()

	out := make(map[string]Metric, len(ordered))
	for i, name := range names {
		out[name] = ordered[i]
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}
	return nil
}

// FrameMetrics bundles the metrics the frame loop maintains.
type FrameMetrics struct {
	FramesRendered *Counter
	CellsPresented *Counter
	HitLookups     *Counter
	FrameTime      *Histogram
	CallbackTime   *Histogram
	FPS            *Gauge
	NodesRendered  *Gauge
}

// NewFrameMetrics creates the standard render metric set, registered into
// reg when non-nil.
func NewFrameMetrics(reg *Registry) *FrameMetrics {
	fm := &FrameMetrics{
		FramesRendered: NewCounter("frames_rendered_total"),
		CellsPresented: NewCounter("cells_presented_total"),
		HitLookups:     NewCounter("hit_lookups_total"),
		FrameTime:      NewHistogram("frame_seconds", nil),
		CallbackTime:   NewHistogram("frame_callback_seconds", nil),
		FPS:            NewGauge("fps"),
		NodesRendered:  NewGauge("nodes_rendered"),
	}
	if reg != nil {
		reg.Register(fm.FramesRendered)
		reg.Register(fm.CellsPresented)
		reg.Register(fm.HitLookups)
		reg.Register(fm.FrameTime)
		reg.Register(fm.CallbackTime)
		reg.Register(fm.FPS)
		reg.Register(fm.NodesRendered)
	}
	return fm
}
