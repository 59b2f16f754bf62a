package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medvoice-ai/hospital-scheduler/internal/availability"
	"github.com/medvoice-ai/hospital-scheduler/internal/booking"
	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/internal/schedule"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// BookingEngine is the subset of the booking engine the HTTP layer needs.
type BookingEngine interface {
	Book(ctx context.Context, req booking.Request) (*booking.Result, error)
	SuggestSlots(ctx context.Context, specialty, doctor string) (available, booked []string, err error)
}

// BookingHandler accepts booking requests from the public API.
type BookingHandler struct {
	engine BookingEngine
	logger *logging.Logger
}

// NewBookingHandler constructs a booking handler.
func NewBookingHandler(engine BookingEngine, logger *logging.Logger) *BookingHandler {
	if engine == nil {
		panic("handlers: booking engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{engine: engine, logger: logger}
}

// BookingRequest is the POST /bookings payload.
type BookingRequest struct {
	Specialty       string `json:"specialty"`
	DoctorName      string `json:"doctor_name"`
	AppointmentType string `json:"appointment_type"`
	TimeSlot        string `json:"time_slot"`
	PatientName     string `json:"patient_name"`
	MobileNumber    string `json:"mobile_number"`
}

// BookingResponse echoes the committed appointment.
type BookingResponse struct {
	Appointment ledger.Appointment `json:"appointment"`
	Message     string             `json:"message"`
}

// Book handles POST /bookings.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	missing := firstMissing(map[string]string{
		"specialty":     req.Specialty,
		"doctor_name":   req.DoctorName,
		"time_slot":     req.TimeSlot,
		"patient_name":  req.PatientName,
		"mobile_number": req.MobileNumber,
	})
	if missing != "" {
		writeError(w, http.StatusBadRequest, missing+" is required")
		return
	}
	if req.AppointmentType == "" {
		req.AppointmentType = ledger.TypeInPerson
	}

	res, err := h.engine.Book(r.Context(), booking.Request{
		Specialty:       req.Specialty,
		DoctorName:      req.DoctorName,
		AppointmentType: req.AppointmentType,
		TimeSlotInput:   req.TimeSlot,
		PatientName:     req.PatientName,
		MobileNumber:    req.MobileNumber,
	})
	if err != nil {
		status := bookingErrorStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("booking failed", "error", err, "specialty", req.Specialty, "doctor", req.DoctorName)
		}
		writeError(w, status, booking.UserFacingError(err))
		return
	}

	writeJSON(w, http.StatusCreated, BookingResponse{
		Appointment: res.Appointment,
		Message:     "Appointment booked successfully",
	})
}

// SuggestSlots handles GET /specialties/{specialty}/doctors/{doctor}/slots.
func (h *BookingHandler) SuggestSlots(w http.ResponseWriter, r *http.Request) {
	specialty := strings.TrimSpace(chi.URLParam(r, "specialty"))
	doctor := strings.TrimSpace(chi.URLParam(r, "doctor"))
	if specialty == "" || doctor == "" {
		writeError(w, http.StatusBadRequest, "specialty and doctor are required")
		return
	}

	available, booked, err := h.engine.SuggestSlots(r.Context(), specialty, doctor)
	if err != nil {
		writeError(w, bookingErrorStatus(err), booking.UserFacingError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{
		"available_slots": available,
		"booked_slots":    booked,
	})
}

func bookingErrorStatus(err error) int {
	switch {
	case errors.Is(err, availability.ErrSpecialtyNotFound),
		errors.Is(err, availability.ErrDoctorNotFound):
		return http.StatusNotFound
	case errors.Is(err, schedule.ErrInvalidDateFormat),
		errors.Is(err, booking.ErrPastTimeSlot):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrSlotConflict),
		errors.Is(err, availability.ErrSlotUnavailable),
		errors.Is(err, availability.ErrVersionConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func firstMissing(fields map[string]string) string {
	// Fixed order so the reported field is deterministic.
	for _, name := range []string{"specialty", "doctor_name", "time_slot", "patient_name", "mobile_number"} {
		if strings.TrimSpace(fields[name]) == "" {
			return name
		}
	}
	return ""
}
