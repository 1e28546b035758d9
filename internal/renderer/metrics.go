package renderer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultRendered = "rendered"
	resultCached   = "cached"
	resultError    = "error"
)

var (
	// RenderDuration tracks browser rendering time. Cache hits are not observed.
	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ssr_render_duration_seconds",
		Help:    "Time spent rendering a page in the browser",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
	})

	// RendersTotal counts render calls by outcome
	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ssr_renders_total",
		Help: "Total number of render calls by result",
	}, []string{"result"})

	// BrowserRunning is 1 while a browser handle is open
	BrowserRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ssr_browser_running",
		Help: "Whether the renderer currently holds a running browser",
	})
)
