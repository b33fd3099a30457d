package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics agrupa os medidores da aplicação
type Metrics struct {
	// Total de requisições HTTP (method, path, status_code)
	HTTPRequestsTotal *prometheus.CounterVec

	// Latência das requisições HTTP (method, path)
	HTTPRequestDuration *prometheus.HistogramVec

	// Total de tentativas de inscrição
	// (status: success, no_seats, already_registered, window_closed, error)
	RegistrationsTotal *prometheus.CounterVec

	// Duração das operações de lock distribuído (operation, status)
	DistributedLockDuration *prometheus.HistogramVec

	// Vagas disponíveis por evento e tipo (event_id, seat_type)
	AvailableSeats *prometheus.GaugeVec
}

// New cria uma instância de Metrics registrada no registry padrão
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registra os medidores no registry informado
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrations_total",
				Help: "Total number of registration attempts",
			},
			[]string{"status"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		AvailableSeats: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "available_seats",
				Help: "Current number of available seats per event and seat type",
			},
			[]string{"event_id", "seat_type"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RegistrationsTotal,
		m.DistributedLockDuration,
		m.AvailableSeats,
	)

	return m
}

// Instância padrão dos medidores
var defaultMetrics *Metrics

// Init inicializa a instância padrão
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get retorna a instância padrão (pode ser nil antes de Init)
func Get() *Metrics {
	return defaultMetrics
}
