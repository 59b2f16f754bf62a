package handlers

import (
	"context"
	"net/http"

	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// AppointmentLister reads the full appointment ledger.
type AppointmentLister interface {
	ListAll(ctx context.Context) ([]ledger.Appointment, error)
}

// AppointmentsHandler serves the admin view of the appointment ledger.
type AppointmentsHandler struct {
	ledger AppointmentLister
	logger *logging.Logger
}

// NewAppointmentsHandler constructs an appointments handler.
func NewAppointmentsHandler(appts AppointmentLister, logger *logging.Logger) *AppointmentsHandler {
	if appts == nil {
		panic("handlers: appointment ledger required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{ledger: appts, logger: logger}
}

// List handles GET /admin/appointments.
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.ledger.ListAll(r.Context())
	if err != nil {
		h.logger.Error("listing appointments failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(appts),
		"appointments": appts,
	})
}
