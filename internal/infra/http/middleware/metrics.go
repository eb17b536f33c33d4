package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	salesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_sales_created_total",
			Help: "Total number of draft sales created from leads",
		},
	)

	paymentsConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_payments_confirmed_total",
			Help: "Total number of payment updates confirmed on sales",
		},
		[]string{"payment_type"},
	)

	contractsArchived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_contracts_archived_total",
			Help: "Total number of lapsed contract periods moved to history",
		},
	)

	dispositionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_disposition_changes_total",
			Help: "Total number of lead disposition changes",
		},
		[]string{"to"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Metrics rotula pelo padrão da rota (/sales/{saleId}) para não explodir a cardinalidade.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordSaleCreated() {
	salesCreated.Inc()
}

func RecordPaymentConfirmed(paymentType string) {
	if paymentType == "" {
		paymentType = "none"
	}
	paymentsConfirmed.WithLabelValues(paymentType).Inc()
}

func RecordContractArchived() {
	contractsArchived.Inc()
}

func RecordDispositionChange(to string) {
	dispositionChanges.WithLabelValues(to).Inc()
}
