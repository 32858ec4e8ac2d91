package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Liquidations counts executed liquidations by kind, loan or leveraged
	Liquidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_liquidations_total",
		Help: "Total number of liquidations executed",
	}, []string{"kind"})

	// MonitorScans counts positions scanned by the monitor
	MonitorScans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lending_monitor_scanned_positions_total",
		Help: "Positions scanned by the liquidation monitor",
	})

	// MonitorErrors counts positions the monitor failed to process
	MonitorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_monitor_errors_total",
		Help: "Positions the liquidation monitor failed to process",
	}, []string{"code"})

	// ReserveUtilization utilization of each reserve in bps
	ReserveUtilization = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lending_reserve_utilization_bps",
		Help: "Reserve utilization in basis points",
	}, []string{"reserve"})

	// ReserveBorrowRate annual borrow rate of each reserve in bps
	ReserveBorrowRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lending_reserve_borrow_rate_bps",
		Help: "Reserve annual borrow rate in basis points",
	}, []string{"reserve"})

	// ReserveSupplyRate annual supply rate of each reserve in bps
	ReserveSupplyRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lending_reserve_supply_rate_bps",
		Help: "Reserve annual supply rate in basis points",
	}, []string{"reserve"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lending_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and duration by route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
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
