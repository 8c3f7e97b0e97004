// Package metrics provides Prometheus instrumentation for the keeper.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScansTotal counts keeper scan passes.
	ScansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vperp_keeper_scans_total",
		Help: "Total keeper scan passes",
	})

	// FillCandidatesTotal counts orders found vAMM-fillable, per market.
	FillCandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vperp_fill_candidates_total",
		Help: "Orders found fillable by the vAMM",
	}, []string{"market"})

	// OrdersScanned counts orders evaluated per scan, per market.
	OrdersScanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vperp_orders_scanned_total",
		Help: "Orders evaluated against the vAMM",
	}, []string{"market"})

	// OraclePrice exposes the last oracle price per market (price precision).
	OraclePrice = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vperp_oracle_price",
		Help: "Last oracle price in price-precision units",
	}, []string{"market"})

	// OracleFeedReconnects counts websocket feed reconnects.
	OracleFeedReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vperp_oracle_feed_reconnects_total",
		Help: "Oracle feed reconnect attempts",
	})

	// HTTPRequestsTotal counts API requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vperp_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks API request duration.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vperp_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and duration for every API route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
