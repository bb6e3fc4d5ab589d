/*
Package metrics exposes Prometheus collectors for provider calls and gateway traffic.
*/
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once
	registerErr  error

	remoteRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anychat",
		Name:      "remote_requests_total",
		Help:      "Provider requests by method and outcome.",
	}, []string{"method", "status", "success"})

	remoteRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "anychat",
		Name:      "remote_request_duration_seconds",
		Help:      "Provider request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	tokensMintedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anychat",
		Name:      "tokens_minted_total",
		Help:      "Tokens minted by kind (client, user, grant).",
	}, []string{"kind"})

	gatewayRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anychat",
		Name:      "gateway_requests_total",
		Help:      "Token gateway requests by route pattern and status.",
	}, []string{"method", "route", "status"})

	gatewayRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "anychat",
		Name:      "gateway_request_duration_seconds",
		Help:      "Token gateway request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// Register adds the collectors to reg (prometheus.DefaultRegisterer when nil) once per process.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{
			remoteRequestsTotal,
			remoteRequestDuration,
			tokensMintedTotal,
			gatewayRequestsTotal,
			gatewayRequestDuration,
		} {
			if err := reg.Register(c); err != nil {
				registerErr = err
				return
			}
		}
	})
	return registerErr
}

// Handler serves the default gatherer for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRemote records one provider round trip. Status 0 means the request never got a response.
func ObserveRemote(method string, status int, success bool, elapsed time.Duration) {
	remoteRequestsTotal.WithLabelValues(method, strconv.Itoa(status), strconv.FormatBool(success)).Inc()
	remoteRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// TokenMinted counts a minted token of the given kind.
func TokenMinted(kind string) {
	tokensMintedTotal.WithLabelValues(kind).Inc()
}

// Middleware counts gateway requests by chi route pattern, so path parameters such as
// room ids do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		gatewayRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		gatewayRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
