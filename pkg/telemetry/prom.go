package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromExporter mirrors the frame metrics into a private Prometheus
// registry for hosts that run a scrape endpoint next to the renderer.
type PromExporter struct {
	registry *prometheus.Registry

	framesTotal  prometheus.Counter
	cellsTotal   prometheus.Counter
	frameSeconds prometheus.Histogram
	fps          prometheus.Gauge
	nodes        prometheus.Gauge
}

// NewPromExporter creates an exporter with all collectors registered
// under the tessera namespace.
func NewPromExporter() *PromExporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &PromExporter{
		registry: reg,
		framesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tessera",
			Subsystem: "render",
			Name:      "frames_total",
			Help:      "Frames presented since start.",
		}),
		cellsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tessera",
			Subsystem: "render",
			Name:      "cells_total",
			Help:      "Cells written to the terminal since start.",
		}),
		frameSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tessera",
			Subsystem: "render",
			Name:      "frame_seconds",
			Help:      "Wall time per rendered frame.",
			Buckets:   DefaultFrameBuckets,
		}),
		fps: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tessera",
			Subsystem: "render",
			Name:      "fps",
			Help:      "Rolling frames per second.",
		}),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "tessera",
			Subsystem: "render",
			Name:      "nodes",
			Help:      "Nodes drawn in the last frame.",
		}),
	}
}

// ObserveFrame records one presented frame.
func (e *PromExporter) ObserveFrame(frameTime time.Duration, fps float64, nodes, cells int) {
	if e == nil {
		return
	}
	e.framesTotal.Inc()
	e.cellsTotal.Add(float64(cells))
	e.frameSeconds.Observe(frameTime.Seconds())
	e.fps.Set(fps)
	e.nodes.Set(float64(nodes))
}

// Handler returns the scrape handler for the exporter's registry.
func (e *PromExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
