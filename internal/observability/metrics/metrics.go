package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking and call flows.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	bookingLatency     prometheus.Histogram
	callsPlacedTotal   *prometheus.CounterVec
	extractionFailures prometheus.Counter
	sideEffectFailures *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "booking",
			Name:      "requests_total",
			Help:      "Booking attempts by result",
		}, []string{"result"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hospital",
			Subsystem: "booking",
			Name:      "latency_seconds",
			Help:      "Latency of booking commits",
			Buckets:   prometheus.DefBuckets,
		}),
		callsPlacedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "calls",
			Name:      "placed_total",
			Help:      "Outbound calls placed by status",
		}, []string{"status"}),
		extractionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "calls",
			Name:      "extraction_failures_total",
			Help:      "Transcript extractions that produced no usable booking",
		}),
		sideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hospital",
			Subsystem: "booking",
			Name:      "side_effect_failures_total",
			Help:      "Post-commit side effects (ledger, export, email) that failed",
		}, []string{"effect"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.bookingLatency, m.callsPlacedTotal, m.extractionFailures, m.sideEffectFailures)
	return m
}

func (m *BookingMetrics) ObserveBooking(result string, seconds float64) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(result).Inc()
	m.bookingLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveCallPlaced(status string) {
	if m == nil {
		return
	}
	m.callsPlacedTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveExtractionFailure() {
	if m == nil {
		return
	}
	m.extractionFailures.Inc()
}

func (m *BookingMetrics) ObserveSideEffectFailure(effect string) {
	if m == nil {
		return
	}
	m.sideEffectFailures.WithLabelValues(effect).Inc()
}
