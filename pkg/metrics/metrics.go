package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medibites"

// Outcome labels. Failures use the error kind code.
const (
	OutcomeSuccess = "success"
)

// Metrics exposes booking and settlement counters. A nil *Metrics is a no-op.
type Metrics struct {
	registry            *prometheus.Registry
	bookingsTotal       *prometheus.CounterVec
	paymentsTotal       *prometheus.CounterVec
	transactionDuration *prometheus.HistogramVec
	eventsPublished     *prometheus.CounterVec
	doctorCacheTotal    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome",
		}, []string{"outcome"}),
		paymentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Payment attempts by outcome",
		}, []string{"outcome"}),
		transactionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transaction_duration_seconds",
			Help:      "Duration of store transactions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Appointment events handed to the broker",
		}, []string{"event_type", "status"}),
		doctorCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "doctor_cache_lookups_total",
			Help:      "Doctor directory cache lookups by result",
		}, []string{"result"}),
	}
	reg.MustRegister(m.bookingsTotal, m.paymentsTotal, m.transactionDuration, m.eventsPublished, m.doctorCacheTotal)
	return m
}

func (m *Metrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePayment(outcome string) {
	if m == nil {
		return
	}
	m.paymentsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveTransaction(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.transactionDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) ObserveEventPublish(eventType string, err error) {
	if m == nil {
		return
	}
	status := "published"
	if err != nil {
		status = "failed"
	}
	m.eventsPublished.WithLabelValues(eventType, status).Inc()
}

func (m *Metrics) ObserveDoctorCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.doctorCacheTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
