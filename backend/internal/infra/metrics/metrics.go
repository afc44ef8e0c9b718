package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driftapp/drift/backend/internal/domain/enums"
)

// Recorder owns the process collectors. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	swipesTotal          *prometheus.CounterVec
	matchesCreatedTotal  *prometheus.CounterVec
	friendshipsTotal     prometheus.Counter
	storeRetriesTotal    *prometheus.CounterVec
	outboxPublishedTotal prometheus.Counter
	outboxFailuresTotal  prometheus.Counter
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		swipesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "drift_swipes_total",
			Help: "Swipes recorded, by direction and mode.",
		}, []string{"direction", "mode"}),
		matchesCreatedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "drift_matches_created_total",
			Help: "New mutual matches, by mode.",
		}, []string{"mode"}),
		friendshipsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "drift_friendships_established_total",
			Help: "Friend requests that became friendships.",
		}),
		storeRetriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "drift_store_retries_total",
			Help: "Store attempts retried after a conflict or transient failure.",
		}, []string{"op"}),
		outboxPublishedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "drift_outbox_published_total",
			Help: "Outbox events appended to the event stream.",
		}),
		outboxFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "drift_outbox_failures_total",
			Help: "Outbox relay passes that stopped on an error.",
		}),
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "drift_http_requests_total",
			Help: "HTTP requests served.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "drift_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObserveSwipe(direction enums.SwipeDirection, mode enums.SwipeMode) {
	if r == nil {
		return
	}
	r.swipesTotal.WithLabelValues(string(direction), string(mode)).Inc()
}

func (r *Recorder) ObserveMatchCreated(mode enums.SwipeMode) {
	if r == nil {
		return
	}
	r.matchesCreatedTotal.WithLabelValues(string(mode)).Inc()
}

func (r *Recorder) ObserveFriendshipEstablished() {
	if r == nil {
		return
	}
	r.friendshipsTotal.Inc()
}

func (r *Recorder) ObserveStoreRetry(op string) {
	if r == nil {
		return
	}
	r.storeRetriesTotal.WithLabelValues(op).Inc()
}

func (r *Recorder) ObserveOutboxPublished(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.outboxPublishedTotal.Add(float64(n))
}

func (r *Recorder) ObserveOutboxFailure() {
	if r == nil {
		return
	}
	r.outboxFailuresTotal.Inc()
}

func (r *Recorder) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
