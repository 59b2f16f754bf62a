package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestBookingMetricsObserve(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())
	m.ObserveBooking("booked", 0.05)
	m.ObserveBooking("slot_conflict", 0.01)
	m.ObserveCallPlaced("created")
	m.ObserveExtractionFailure()
	m.ObserveSideEffectFailure("export")
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("booked", 0.1)
	m.ObserveCallPlaced("failed")
	m.ObserveExtractionFailure()
	m.ObserveSideEffectFailure("ledger")
}
