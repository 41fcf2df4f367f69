package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	handshakes    *prometheus.CounterVec
	shopifyCalls  *prometheus.HistogramVec
	batchItems    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

// New creates the collectors on a dedicated registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_handshakes_total",
			Help: "OAuth install handshakes by final state.",
		}, []string{"state"}),
		shopifyCalls: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shopify_api_request_duration_seconds",
			Help:    "Latency of outbound Shopify API calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "result"}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_batch_items_total",
			Help: "Items processed in upload and delete batches.",
		}, []string{"operation", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Inbound HTTP requests.",
		}, []string{"route", "method", "status"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Inbound HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	reg.MustRegister(
		m.handshakes,
		m.shopifyCalls,
		m.batchItems,
		m.httpRequests,
		m.httpDurations,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHandshake counts a handshake that reached a terminal state
func (m *Metrics) ObserveHandshake(state string) {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues(state).Inc()
}

// ObserveShopifyCall records one outbound API call
func (m *Metrics) ObserveShopifyCall(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.shopifyCalls.WithLabelValues(operation, result(err)).Observe(time.Since(start).Seconds())
}

// ObserveBatchItem counts one upload or delete item
func (m *Metrics) ObserveBatchItem(operation string, err error) {
	if m == nil {
		return
	}
	m.batchItems.WithLabelValues(operation, result(err)).Inc()
}

// Middleware records inbound request counts and latency per chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
