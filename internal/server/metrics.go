package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RejectedRequests counts /render calls refused by the rate limiter
	RejectedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ssr_http_rate_limited_total",
		Help: "Total number of render requests rejected by the rate limiter",
	})

	// RenderResponses counts /render responses by status code
	RenderResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ssr_http_render_responses_total",
		Help: "Total number of render responses by HTTP status code",
	}, []string{"code"})
)
