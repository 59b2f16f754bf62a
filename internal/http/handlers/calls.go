package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medvoice-ai/hospital-scheduler/internal/calls"
	"github.com/medvoice-ai/hospital-scheduler/internal/observability/metrics"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// CallPlacer is the subset of the voice client the calls handler uses.
type CallPlacer interface {
	PlaceCall(ctx context.Context, phoneNumber, systemPrompt string) (*calls.Call, error)
	ListCalls(ctx context.Context) ([]calls.Call, error)
}

// CallSessions tracks call sessions for the handler.
type CallSessions interface {
	RecordPlaced(ctx context.Context, sess *calls.Session) error
	Get(ctx context.Context, callID string) (*calls.Session, error)
	LastCallID(ctx context.Context) (string, error)
}

// JobEnqueuer publishes transcript processing jobs.
type JobEnqueuer interface {
	EnqueueProcessCall(ctx context.Context, job calls.ProcessCallJob) error
}

// CallsHandlerConfig wires the calls handler.
type CallsHandlerConfig struct {
	Voice       CallPlacer
	Sessions    CallSessions
	Publisher   JobEnqueuer
	Specialties SpecialtyLister
	Metrics     *metrics.BookingMetrics
	Logger      *logging.Logger

	HospitalName string
	OpenHour     int
	CloseHour    int
}

// CallsHandler places receptionist calls and exposes their processing state.
type CallsHandler struct {
	voice       CallPlacer
	sessions    CallSessions
	publisher   JobEnqueuer
	specialties SpecialtyLister
	metrics     *metrics.BookingMetrics
	logger      *logging.Logger

	hospitalName string
	openHour     int
	closeHour    int
}

// NewCallsHandler constructs a calls handler.
func NewCallsHandler(cfg CallsHandlerConfig) *CallsHandler {
	if cfg.Voice == nil {
		panic("handlers: voice client required")
	}
	if cfg.Sessions == nil {
		panic("handlers: call sessions required")
	}
	if cfg.Publisher == nil {
		panic("handlers: call publisher required")
	}
	if cfg.Specialties == nil {
		panic("handlers: specialty store required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.HospitalName == "" {
		cfg.HospitalName = "Manipal Hospital"
	}
	if cfg.OpenHour == 0 {
		cfg.OpenHour = 9
	}
	if cfg.CloseHour == 0 {
		cfg.CloseHour = 18
	}
	return &CallsHandler{
		voice:        cfg.Voice,
		sessions:     cfg.Sessions,
		publisher:    cfg.Publisher,
		specialties:  cfg.Specialties,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		hospitalName: cfg.HospitalName,
		openHour:     cfg.OpenHour,
		closeHour:    cfg.CloseHour,
	}
}

// PlaceCallRequest is the POST /calls payload.
type PlaceCallRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// Place handles POST /calls: it builds the receptionist prompt from the
// current specialty listing and starts an outbound call.
func (h *CallsHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req PlaceCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		writeError(w, http.StatusBadRequest, "phone_number is required")
		return
	}

	ctx := r.Context()
	specs, err := h.specialties.ListSpecialties(ctx)
	if err != nil {
		h.logger.Error("listing specialties for call prompt failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to prepare call")
		return
	}
	prompt := calls.ReceptionistPrompt(h.hospitalName, h.openHour, h.closeHour, specs)

	call, err := h.voice.PlaceCall(ctx, req.PhoneNumber, prompt)
	if err != nil {
		h.metrics.ObserveCallPlaced("error")
		h.logger.Error("placing call failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to place call")
		return
	}
	h.metrics.ObserveCallPlaced("placed")

	sess := &calls.Session{
		CallID:      call.ID,
		PhoneNumber: req.PhoneNumber,
		Status:      calls.StatusPlaced,
		PlacedAt:    time.Now().UTC(),
	}
	if err := h.sessions.RecordPlaced(ctx, sess); err != nil {
		h.logger.Warn("saving call session failed", "error", err, "call_id", call.ID)
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"call_id": call.ID,
		"status":  calls.StatusPlaced,
	})
}

// List handles GET /calls by proxying the voice API's call log.
func (h *CallsHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.voice.ListCalls(r.Context())
	if err != nil {
		h.logger.Error("fetching call logs failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch call logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"calls": logs})
}

// Get handles GET /calls/{callID}, returning the processing session.
func (h *CallsHandler) Get(w http.ResponseWriter, r *http.Request) {
	callID := strings.TrimSpace(chi.URLParam(r, "callID"))
	if callID == "" {
		writeError(w, http.StatusBadRequest, "callID is required")
		return
	}

	sess, err := h.sessions.Get(r.Context(), callID)
	if err != nil {
		h.logger.Error("fetching call session failed", "error", err, "call_id", callID)
		writeError(w, http.StatusInternalServerError, "failed to fetch call session")
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, "call not found")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Process handles POST /calls/{callID}/process: it enqueues transcript
// processing for a finished call. The callID path segment may be "last" to
// process the most recently placed call.
func (h *CallsHandler) Process(w http.ResponseWriter, r *http.Request) {
	callID := strings.TrimSpace(chi.URLParam(r, "callID"))
	if callID == "" {
		writeError(w, http.StatusBadRequest, "callID is required")
		return
	}

	ctx := r.Context()
	if callID == "last" {
		last, err := h.sessions.LastCallID(ctx)
		if err != nil {
			h.logger.Error("resolving last call failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to resolve last call")
			return
		}
		if last == "" {
			writeError(w, http.StatusNotFound, "no calls placed yet")
			return
		}
		callID = last
	}

	job := calls.ProcessCallJob{CallID: callID}
	if sess, err := h.sessions.Get(ctx, callID); err == nil && sess != nil {
		job.PhoneNumber = sess.PhoneNumber
	}

	if err := h.publisher.EnqueueProcessCall(ctx, job); err != nil {
		h.logger.Error("enqueueing call processing failed", "error", err, "call_id", callID)
		writeError(w, http.StatusInternalServerError, "failed to enqueue call processing")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"call_id": callID,
		"status":  "queued",
	})
}
