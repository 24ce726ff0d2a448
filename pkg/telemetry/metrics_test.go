package telemetry

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Basic(t *testing.T) {
	c := NewCounter("frames_total")
	require.NotNil(t, c)

	assert.Equal(t, "frames_total", c.Name())
	assert.Equal(t, MetricTypeCounter, c.Type())
	assert.Equal(t, int64(0), c.Get())

	c.Inc()
	c.Add(4)
	assert.Equal(t, int64(5), c.Get())

	c.Add(-3)
	assert.Equal(t, int64(5), c.Get(), "counters must not decrease")
}

func TestCounter_NilSafe(t *testing.T) {
	var c *Counter
	c.Inc()
	c.Add(1)
	assert.Equal(t, int64(0), c.Get())
}

func TestCounter_Concurrent(t *testing.T) {
	c := NewCounter("concurrent")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(8000), c.Get())
}

func TestGauge_SetAndAdd(t *testing.T) {
	g := NewGauge("fps")
	g.Set(60)
	assert.Equal(t, int64(60), g.Get())
	g.Add(-10)
	assert.Equal(t, int64(50), g.Get())
}

func TestHistogram_Observe(t *testing.T) {
	h := NewHistogram("frame_seconds", []float64{0.01, 0.1})

	h.Observe(0.005)
	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(-1) // clamps to 0

	assert.Equal(t, int64(4), h.Count())
	counts := h.BucketCounts()
	require.Len(t, counts, 3)
	assert.Equal(t, int64(2), counts[0], "0.005 and clamped 0 land in the first bucket")
	assert.Equal(t, int64(1), counts[1])
	assert.Equal(t, int64(1), counts[2], "0.5 lands in +Inf")
	assert.InDelta(t, 0.555, h.Sum(), 0.001)
}

func TestHistogram_ObserveDuration(t *testing.T) {
	h := NewHistogram("frame_seconds", nil)
	h.ObserveDuration(16 * time.Millisecond)
	assert.Equal(t, int64(1), h.Count())
	assert.InDelta(t, 0.016, h.Mean(), 0.0001)
}

func TestHistogram_MeanEmpty(t *testing.T) {
	h := NewHistogram("empty", nil)
	assert.Zero(t, h.Mean())
}

func TestRegistry_WriteJSON(t *testing.T) {
	reg := NewRegistry()
	c := NewCounter("frames_total")
	c.Add(3)
	reg.Register(c)
	g := NewGauge("fps")
	g.Set(60)
	reg.Register(g)

	var buf bytes.Buffer
	require.NoError(t, reg.WriteJSON(&buf))

	var out map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, float64(3), out["frames_total"]["value"])
	assert.Equal(t, float64(60), out["fps"]["value"])
}

func TestRegistry_GetAndReplace(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewCounter("c"))
	first := reg.Get("c")
	require.NotNil(t, first)

	replacement := NewCounter("c")
	reg.Register(replacement)
	assert.Same(t, replacement, reg.Get("c"))
}

func TestNewFrameMetrics_RegistersAll(t *testing.T) {
	reg := NewRegistry()
	fm := NewFrameMetrics(reg)
	require.NotNil(t, fm)

	for _, name := range []string{
		"frames_rendered_total",
		"cells_presented_total",
		"hit_lookups_total",
		"frame_seconds",
		"frame_callback_seconds",
		"fps",
		"nodes_rendered",
	} {
		assert.NotNil(t, reg.Get(name), "metric %s not registered", name)
	}
}

func TestPromExporter_ServesMetrics(t *testing.T) {
	e := NewPromExporter()
	e.ObserveFrame(16*time.Millisecond, 60, 12, 480)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	e.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "tessera_render_frames_total 1")
	assert.Contains(t, body, "tessera_render_fps 60")
	assert.Contains(t, body, "tessera_render_frame_seconds_count 1")
}
