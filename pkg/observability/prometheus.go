package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pcfguess"

// PrometheusHooks implements GeneratorHooks and HTTPHooks with Prometheus
// collectors.
type PrometheusHooks struct {
	runs         *prometheus.CounterVec
	active       *prometheus.GaugeVec
	guesses      prometheus.Counter
	frontier     prometheus.Gauge
	runDuration  prometheus.Histogram
	requests     *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	mu       sync.Mutex
	reported map[string]*runState
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// It panics if registration fails, like prometheus.MustRegister.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished enumeration runs by outcome.",
		}, []string{"outcome"}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_active",
			Help:      "Enumeration runs in progress by strategy.",
		}, []string{"strategy"}),
		guesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_emitted_total",
			Help:      "Guesses written to a sink.",
		}),
		frontier: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "frontier_size",
			Help:      "Frontier size at the last progress report.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of enumeration runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		reported: make(map[string]*runState),
	}
	reg.MustRegister(h.runs, h.active, h.guesses, h.frontier, h.runDuration, h.requests, h.httpDuration)
	return h
}

// OnRunStart implements GeneratorHooks.
func (h *PrometheusHooks) OnRunStart(_ context.Context, runID, strategy string, _ int) {
	h.mu.Lock()
	h.reported[runID] = &runState{strategy: strategy}
	h.mu.Unlock()
	h.active.WithLabelValues(strategy).Inc()
}

// OnProgress implements GeneratorHooks. Guess counts are added as deltas
// so concurrent runs sum correctly.
func (h *PrometheusHooks) OnProgress(_ context.Context, runID string, emitted int64, frontier int) {
	h.mu.Lock()
	var d int64
	if st, ok := h.reported[runID]; ok {
		d = emitted - st.emitted
		st.emitted = emitted
	}
	h.mu.Unlock()
	h.guesses.Add(float64(d))
	h.frontier.Set(float64(frontier))
}

// OnRunComplete implements GeneratorHooks.
func (h *PrometheusHooks) OnRunComplete(_ context.Context, runID string, emitted int64, duration time.Duration, err error) {
	h.mu.Lock()
	st, ok := h.reported[runID]
	delete(h.reported, runID)
	h.mu.Unlock()
	if !ok {
		return
	}
	h.guesses.Add(float64(emitted - st.emitted))
	h.active.WithLabelValues(st.strategy).Dec()
	h.runDuration.Observe(duration.Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	h.runs.WithLabelValues(outcome).Inc()
}

// OnRequest implements HTTPHooks.
func (h *PrometheusHooks) OnRequest(context.Context, string, string) {}

// OnResponse implements HTTPHooks.
func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	h.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

type runState struct {
	strategy string
	emitted  int64
}

var (
	_ GeneratorHooks = (*PrometheusHooks)(nil)
	_ HTTPHooks      = (*PrometheusHooks)(nil)
)
