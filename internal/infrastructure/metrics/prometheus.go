package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/lotes-api/internal/application/ports"
)

var _ ports.EngineMetrics = (*Metrics)(nil)

// Metrics métricas Prometheus del servicio en un registro propio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	reservations       *prometheus.CounterVec
	conflictRetries    prometheus.Counter
	scanDuration       prometheus.Histogram
	lotsExpired        prometheus.Counter
	alertsUpserted     prometheus.Counter
	openAlerts         *prometheus.GaugeVec
	lastScanCompletion prometheus.Gauge
}

// New registra las métricas bajo namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total de peticiones HTTP"},
		[]string{"method", "route", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
	m.reservations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reservations_total", Help: "Operaciones de reserva por resultado"},
		[]string{"outcome"},
	)
	m.conflictRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "conflict_retries_total", Help: "Reintentos por conflicto de concurrencia"},
	)
	m.scanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "expiry_scan_duration_seconds",
			Help:      "Duración del barrido de vencimientos",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
	m.lotsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "lots_expired_total", Help: "Lotes pasados a expired por el barrido"},
	)
	m.alertsUpserted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "expiry_alerts_upserted_total", Help: "Alertas creadas o refrescadas"},
	)
	m.openAlerts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Namespace: namespace, Name: "expiry_alerts_open", Help: "Alertas abiertas por empresa y severidad"},
		[]string{"company_id", "severity"},
	)
	m.lastScanCompletion = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "expiry_scan_last_completion_timestamp_seconds", Help: "Fin del último barrido"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration, m.reservations, m.conflictRetries,
		m.scanDuration, m.lotsExpired, m.alertsUpserted, m.openAlerts, m.lastScanCompletion,
	)
	return m
}

// Handler expone el registro en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry registro subyacente (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP registra una petición atendida.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ReservationOutcome(outcome string) {
	m.reservations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ConflictRetried() {
	m.conflictRetries.Inc()
}

func (m *Metrics) ExpiryScanCompleted(duration time.Duration, lotsExpired, alertsUpserted int) {
	m.scanDuration.Observe(duration.Seconds())
	m.lotsExpired.Add(float64(lotsExpired))
	m.alertsUpserted.Add(float64(alertsUpserted))
	m.lastScanCompletion.SetToCurrentTime()
}

func (m *Metrics) OpenAlerts(companyID string, critical, warning int) {
	m.openAlerts.WithLabelValues(companyID, "critical").Set(float64(critical))
	m.openAlerts.WithLabelValues(companyID, "warning").Set(float64(warning))
}
