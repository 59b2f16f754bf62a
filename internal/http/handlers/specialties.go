package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medvoice-ai/hospital-scheduler/internal/availability"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// SpecialtyLister is the subset of the availability store used for listings.
type SpecialtyLister interface {
	ListSpecialties(ctx context.Context) ([]availability.Specialty, error)
	GetSpecialty(ctx context.Context, name string) (*availability.Specialty, error)
}

// SpecialtiesHandler serves the hospital's specialty and doctor listing.
type SpecialtiesHandler struct {
	store  SpecialtyLister
	logger *logging.Logger
}

// NewSpecialtiesHandler constructs a specialties handler.
func NewSpecialtiesHandler(store SpecialtyLister, logger *logging.Logger) *SpecialtiesHandler {
	if store == nil {
		panic("handlers: specialty store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SpecialtiesHandler{store: store, logger: logger}
}

type specialtyView struct {
	Name    string   `json:"name"`
	Doctors []string `json:"doctors"`
}

// List handles GET /specialties.
func (h *SpecialtiesHandler) List(w http.ResponseWriter, r *http.Request) {
	specs, err := h.store.ListSpecialties(r.Context())
	if err != nil {
		h.logger.Error("listing specialties failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list specialties")
		return
	}

	views := make([]specialtyView, 0, len(specs))
	for _, spec := range specs {
		names := make([]string, 0, len(spec.Doctors))
		for _, doc := range spec.Doctors {
			names = append(names, doc.Name)
		}
		views = append(views, specialtyView{Name: spec.Name, Doctors: names})
	}
	writeJSON(w, http.StatusOK, map[string][]specialtyView{"specialties": views})
}

// Get handles GET /specialties/{specialty}.
func (h *SpecialtiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "specialty"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "specialty is required")
		return
	}

	spec, err := h.store.GetSpecialty(r.Context(), name)
	if err != nil {
		if errors.Is(err, availability.ErrSpecialtyNotFound) {
			writeError(w, http.StatusNotFound, "specialty not found")
			return
		}
		h.logger.Error("fetching specialty failed", "error", err, "specialty", name)
		writeError(w, http.StatusInternalServerError, "failed to fetch specialty")
		return
	}

	writeJSON(w, http.StatusOK, spec)
}
