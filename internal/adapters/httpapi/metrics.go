package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atvirokodosprendimai/feedbackapi/internal/core/usecase"
)

type dispatcherStats interface {
	Metrics() usecase.NotificationDispatcherMetrics
}

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide on the global one.
type Metrics struct {
	registry         *prometheus.Registry
	requestDuration  *prometheus.HistogramVec
	feedbackIngested *prometheus.CounterVec
}

func NewMetrics(dispatcher dispatcherStats) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedbackapi_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		feedbackIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedbackapi_feedback_ingested_total",
			Help: "Feedback submissions by outcome",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration,
		m.feedbackIngested,
	)
	if dispatcher != nil {
		m.registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "feedbackapi_notifications_sent_total",
				Help: "Notifications delivered",
			}, func() float64 { return float64(dispatcher.Metrics().SentTotal) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "feedbackapi_notifications_failed_total",
				Help: "Notifications that failed or were dropped",
			}, func() float64 { return float64(dispatcher.Metrics().FailedTotal) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Name: "feedbackapi_notifications_background_total",
				Help: "Notifications still running when the grace period ended",
			}, func() float64 { return float64(dispatcher.Metrics().BackgroundTotal) }),
		)
	}
	return m
}

// Middleware records request duration labelled by route pattern, keeping
// label cardinality independent of ids in paths.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) observeIngest(outcome string) {
	if m == nil {
		return
	}
	m.feedbackIngested.WithLabelValues(outcome).Inc()
}
