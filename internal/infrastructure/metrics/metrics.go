package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/ecotrace-api/internal/application/ports"
)

var _ ports.Metrics = (*Metrics)(nil)

// Metrics observabilidad de los motores de lotes y tramos más las peticiones HTTP.
// Todos los métodos toleran un receptor nil.
type Metrics struct {
	BatchesClassified     *prometheus.CounterVec
	ScoreProviderDuration *prometheus.HistogramVec
	TransportsRecorded    *prometheus.CounterVec
	TransportsRejected    *prometheus.CounterVec
	OriginsCache          *prometheus.CounterVec
	HTTPRequests          *prometheus.CounterVec
	HTTPDuration          *prometheus.HistogramVec
}

// New registra las métricas en reg. Pasar prometheus.NewRegistry() en pruebas.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BatchesClassified: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ecotrace_batches_classified_total",
			Help: "Lotes registrados por nivel de validación y tipo de cambio",
		}, []string{"status", "change"}),
		ScoreProviderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecotrace_score_provider_duration_seconds",
			Help:    "Duración de las llamadas al proveedor de puntajes",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}, []string{"outcome"}),
		TransportsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ecotrace_transports_recorded_total",
			Help: "Tramos de transporte registrados por combustible",
		}, []string{"fuel_type"}),
		TransportsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ecotrace_transports_rejected_total",
			Help: "Tramos rechazados por motivo",
		}, []string{"reason"}),
		OriginsCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ecotrace_origins_cache_lookups_total",
			Help: "Consultas de orígenes disponibles a la caché (hit o miss)",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ecotrace_http_requests_total",
			Help: "Peticiones HTTP por método, ruta y estado",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecotrace_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) BatchClassified(status, change string) {
	if m != nil {
		m.BatchesClassified.WithLabelValues(status, change).Inc()
	}
}

func (m *Metrics) ObserveScoreProvider(outcome string, d time.Duration) {
	if m != nil {
		m.ScoreProviderDuration.WithLabelValues(outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) TransportRecorded(fuelType string) {
	if m != nil {
		m.TransportsRecorded.WithLabelValues(fuelType).Inc()
	}
}

func (m *Metrics) TransportRejected(reason string) {
	if m != nil {
		m.TransportsRejected.WithLabelValues(reason).Inc()
	}
}

// OriginsCacheLookup cuenta también como miss las entradas descartadas por versión.
func (m *Metrics) OriginsCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.OriginsCache.WithLabelValues(result).Inc()
}

// ObserveHTTP registra una petición. route es el patrón (/api/batches/:id), no la URL concreta.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
