package metrics

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"strconv"
	"time"
)

const namespace = "tracktivity"

// Metrics holds the collectors of the service
type Metrics struct {
	registry            *prometheus.Registry
	requests            *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	computations        *prometheus.CounterVec
	computationDuration *prometheus.HistogramVec
	computationFailures *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, including the go and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Number of handled HTTP requests.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of handled HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		computations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_computations_total",
			Help:      "Number of analytics results served, by cache outcome.",
		}, []string{"kind", "cache"}),
		computationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analytics_computation_duration_seconds",
			Help:      "Duration of analytics computations including cache lookups.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"kind"}),
		computationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_computation_errors_total",
			Help:      "Number of analytics computations that returned an error.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.computations,
		m.computationDuration,
		m.computationFailures,
	)

	return m
}

// Registry returns the registry the collectors live in
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveComputation records one analytics computation
func (m *Metrics) ObserveComputation(kind string, duration time.Duration, cacheHit bool, err error) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}

	m.computations.WithLabelValues(kind, cache).Inc()
	m.computationDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err != nil {
		m.computationFailures.WithLabelValues(kind).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware counts requests and measures their duration per route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := routeName(request)
		m.requests.WithLabelValues(route, request.Method, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route, request.Method).Observe(time.Since(started).Seconds())
	})
}

func routeName(request *http.Request) string {
	route := mux.CurrentRoute(request)
	if route == nil {
		return "unmatched"
	}

	template, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}

	return template
}
