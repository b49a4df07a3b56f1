// Package metrics defines the prometheus collectors exported by the UI hosts.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "meme_ui"

// Proxy instruments the UI server's reverse proxy to the rendering backend.
type Proxy struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewProxy registers the proxy collectors on reg.
func NewProxy(reg prometheus.Registerer) *Proxy {
	factory := promauto.With(reg)
	return &Proxy{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "proxy_requests_total",
				Help:      "Requests forwarded to the backend, by route and status code",
			},
			[]string{"route", "code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "proxy_request_duration_seconds",
				Help:      "Latency of requests forwarded to the backend",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route"},
		),
	}
}

// Observe records one forwarded request.
func (p *Proxy) Observe(route string, code int, elapsed time.Duration) {
	if p == nil {
		return
	}
	p.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	p.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Controller counts view state transitions.
type Controller struct {
	events   *prometheus.CounterVec
	released prometheus.Counter
}

// NewController registers the controller collectors on reg.
func NewController(reg prometheus.Registerer) *Controller {
	factory := promauto.With(reg)
	return &Controller{
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Events processed by the view state controller",
			},
			[]string{"event", "outcome"},
		),
		released: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handles_released_total",
			Help:      "Result handles released by the view state controller",
		}),
	}
}

// Event records a processed event; applied is false when the event was ignored.
func (c *Controller) Event(name string, applied bool) {
	if c == nil {
		return
	}
	outcome := "applied"
	if !applied {
		outcome = "ignored"
	}
	c.events.WithLabelValues(name, outcome).Inc()
}

// HandleReleased records one released result handle.
func (c *Controller) HandleReleased() {
	if c == nil {
		return
	}
	c.released.Inc()
}
